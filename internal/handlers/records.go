package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/logistica-platform/api/internal/httpx"
)

// GetRecords lists every record of an entity's collection, id merged into
// the document body the way the front end expects.
func (s *Server) GetRecords(w http.ResponseWriter, r *http.Request) {
	entity, ok := s.entityParam(w, r)
	if !ok {
		return
	}

	records, err := s.Store.List(r.Context(), entity.Collection())
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to list records", nil)
		return
	}

	items := make([]map[string]any, 0, len(records))
	for _, record := range records {
		item := make(map[string]any, len(record.Data)+2)
		for key, value := range record.Data {
			item[key] = value
		}
		item["id"] = record.ID
		item["createdAt"] = record.CreatedAt
		items = append(items, item)
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

// PostRecord creates one record in an entity's collection.
func (s *Server) PostRecord(w http.ResponseWriter, r *http.Request) {
	entity, ok := s.entityParam(w, r)
	if !ok {
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}
	if len(fields) == 0 {
		httpx.WriteError(w, r, http.StatusBadRequest, "validation_error", "Record body is required", nil)
		return
	}
	delete(fields, "id")

	id, err := s.Store.Create(r.Context(), entity.Collection(), fields)
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to create record", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
}
