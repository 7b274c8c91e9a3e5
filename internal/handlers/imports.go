package handlers

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/logistica-platform/api/internal/httpx"
	"github.com/logistica-platform/api/internal/importer"
	"github.com/logistica-platform/api/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PostImport runs the bulk-import pipeline over an uploaded workbook.
func (s *Server) PostImport(w http.ResponseWriter, r *http.Request) {
	entity, ok := s.entityParam(w, r)
	if !ok {
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return
	}

	if !strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_content_type", "Content-Type must be multipart/form-data", nil)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_multipart", "Failed to parse multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "missing_file", "file is required", nil)
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".xlsx" {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_file_type", "Only .xlsx uploads are supported", nil)
		return
	}
	if s.Config.ImportMaxFileBytes > 0 && header.Size > s.Config.ImportMaxFileBytes {
		httpx.WriteError(w, r, http.StatusBadRequest, "file_too_large", "Uploaded file exceeds the size limit", map[string]any{
			"maxBytes": s.Config.ImportMaxFileBytes,
		})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_file", "Failed to read uploaded file", nil)
		return
	}

	result := s.Runner.Run(r.Context(), entity, data, importer.RunMeta{
		FileName:  header.Filename,
		FileSize:  header.Size,
		UserID:    actor.UserID,
		UserName:  actor.FullName,
		IPAddress: clientAddr(r),
		UserAgent: r.UserAgent(),
	})
	httpx.WriteJSON(w, http.StatusOK, result)
}

// GetImportTemplate serves the entity's downloadable workbook template.
func (s *Server) GetImportTemplate(w http.ResponseWriter, r *http.Request) {
	entity, ok := s.entityParam(w, r)
	if !ok {
		return
	}

	data, err := s.Runner.Template(entity)
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to build template", nil)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "modelo-"+string(entity)+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// GetLastImport returns the most recent import log summary for the entity,
// or 204 when the entity was never imported.
func (s *Server) GetLastImport(w http.ResponseWriter, r *http.Request) {
	entity, ok := s.entityParam(w, r)
	if !ok {
		return
	}

	summary, err := s.Runner.LastImport(r.Context(), entity)
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to load import history", nil)
		return
	}
	if summary == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) entityParam(w http.ResponseWriter, r *http.Request) (importer.Entity, bool) {
	entity, err := importer.ParseEntity(chi.URLParam(r, "entity"))
	if err != nil {
		httpx.WriteError(w, r, http.StatusNotFound, "unknown_entity", "Unknown entity type", map[string]string{
			"entity": chi.URLParam(r, "entity"),
		})
		return "", false
	}
	return entity, true
}

func clientAddr(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
