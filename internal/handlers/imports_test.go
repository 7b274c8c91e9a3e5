package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"github.com/logistica-platform/api/internal/audit"
	"github.com/logistica-platform/api/internal/config"
	"github.com/logistica-platform/api/internal/importer"
	"github.com/logistica-platform/api/internal/middleware"
	"github.com/logistica-platform/api/internal/store"
)

type memStore struct {
	records map[string][]store.Record
	nextID  int
}

func newMemStore() *memStore {
	return &memStore{records: map[string][]store.Record{}}
}

func (m *memStore) List(_ context.Context, collection string) ([]store.Record, error) {
	return m.records[collection], nil
}

func (m *memStore) Create(_ context.Context, collection string, fields map[string]any) (string, error) {
	m.nextID++
	id := fmt.Sprintf("id-%d", m.nextID)
	m.records[collection] = append(m.records[collection], store.Record{ID: id, Data: fields})
	return id, nil
}

func testServer(s store.Store) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{ImportMaxFileBytes: 25 << 20, ImportMaxRows: 100}
	runner := importer.NewRunner(s, audit.NewRecorder(s), importer.NewRegistry(), logger, cfg.ImportMaxRows)
	return NewServer(cfg, s, runner, nil, logger)
}

func testRoutes(srv *Server) http.Handler {
	r := chi.NewRouter()
	r.Get("/{entity}", srv.GetRecords)
	r.Post("/{entity}", srv.PostRecord)
	r.Get("/imports/{entity}/template", srv.GetImportTemplate)
	r.Get("/imports/{entity}/last", srv.GetLastImport)
	r.Post("/imports/{entity}", srv.PostImport)
	return r
}

func withActor(req *http.Request) *http.Request {
	actor := middleware.Actor{UserID: "u-1", FullName: "Ana", Role: "admin"}
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

func cidadesWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", "Template"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}

	grid := append([][]string{{"Nome *", "Estado *", "Região", "Distância (km)", "Peso Mínimo (kg)", "Observação"}}, rows...)
	for i, row := range grid {
		for j, value := range row {
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue("Template", axis, value); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestPostImportRunsPipeline(t *testing.T) {
	s := newMemStore()
	routes := testRoutes(testServer(s))

	data := cidadesWorkbook(t, [][]string{{"Uberlândia", "MG", "", "590", "", ""}})
	body, contentType := multipartUpload(t, "cidades.xlsx", data)

	req := withActor(httptest.NewRequest(http.MethodPost, "/imports/cidades", body))
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var result importer.ImportResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Success || result.ImportedRows != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(s.records[store.CollectionCidades]) != 1 {
		t.Fatal("record not persisted")
	}
}

func TestPostImportRejectsNonXlsx(t *testing.T) {
	routes := testRoutes(testServer(newMemStore()))

	body, contentType := multipartUpload(t, "dados.csv", []byte("nome,estado"))
	req := withActor(httptest.NewRequest(http.MethodPost, "/imports/cidades", body))
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "invalid_file_type") {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestPostImportRejectsMissingFile(t *testing.T) {
	routes := testRoutes(testServer(newMemStore()))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("nome", "x"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := withActor(httptest.NewRequest(http.MethodPost, "/imports/cidades", body))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "missing_file") {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestPostImportUnknownEntity(t *testing.T) {
	routes := testRoutes(testServer(newMemStore()))

	body, contentType := multipartUpload(t, "dados.xlsx", []byte("x"))
	req := withActor(httptest.NewRequest(http.MethodPost, "/imports/pedidos", body))
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestGetImportTemplate(t *testing.T) {
	routes := testRoutes(testServer(newMemStore()))

	req := withActor(httptest.NewRequest(http.MethodGet, "/imports/veiculos/template", nil))
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != xlsxContentType {
		t.Fatalf("content type = %q", got)
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "modelo-veiculos.xlsx") {
		t.Fatalf("content disposition = %q", got)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("template is not a workbook: %v", err)
	}
	_ = f.Close()
}

func TestGetLastImport(t *testing.T) {
	s := newMemStore()
	srv := testServer(s)
	routes := testRoutes(srv)

	req := withActor(httptest.NewRequest(http.MethodGet, "/imports/cidades/last", nil))
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status with no history = %d, want 204", rr.Code)
	}

	data := cidadesWorkbook(t, [][]string{{"Araxá", "MG", "", "", "", ""}})
	body, contentType := multipartUpload(t, "cidades.xlsx", data)
	importReq := withActor(httptest.NewRequest(http.MethodPost, "/imports/cidades", body))
	importReq.Header.Set("Content-Type", contentType)
	routes.ServeHTTP(httptest.NewRecorder(), importReq)

	rr = httptest.NewRecorder()
	routes.ServeHTTP(rr, withActor(httptest.NewRequest(http.MethodGet, "/imports/cidades/last", nil)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var summary audit.Summary
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.FileName != "cidades.xlsx" || summary.Status != "success" {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	s := newMemStore()
	routes := testRoutes(testServer(s))

	payload := `{"nome":"UBERABA","estado":"MG","id":"forged"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/cidades", strings.NewReader(payload)))
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	routes.ServeHTTP(rr, withActor(httptest.NewRequest(http.MethodGet, "/cidades", nil)))
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var items []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 1 || items[0]["nome"] != "UBERABA" {
		t.Fatalf("items = %v", items)
	}
	// Client-supplied ids are discarded in favor of the store's.
	if items[0]["id"] == "forged" {
		t.Fatal("forged id persisted")
	}
}

func TestPostRecordRejectsEmptyBody(t *testing.T) {
	routes := testRoutes(testServer(newMemStore()))

	req := withActor(httptest.NewRequest(http.MethodPost, "/cidades", strings.NewReader(`{}`)))
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
