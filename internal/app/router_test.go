package app

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
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/logistica-platform/api/internal/auth"
	"github.com/logistica-platform/api/internal/config"
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

// fakeSessions maps raw tokens straight to principals.
type fakeSessions struct {
	actors map[string]middleware.Actor
}

func (f *fakeSessions) PrincipalByToken(_ context.Context, token string) (middleware.Actor, error) {
	actor, ok := f.actors[token]
	if !ok {
		return middleware.Actor{}, middleware.ErrSessionNotFound
	}
	return actor, nil
}

type nopAuth struct{}

func (nopAuth) UserByEmail(context.Context, string) (auth.User, error) {
	return auth.User{}, auth.ErrUserNotFound
}

func (nopAuth) StartSession(context.Context, uuid.UUID) (string, string, time.Time, error) {
	return "", "", time.Time{}, nil
}

func (nopAuth) RevokeSession(context.Context, uuid.UUID) error     { return nil }
func (nopAuth) RevokeSessionByToken(context.Context, string) error { return nil }

func testRouter(s store.Store) http.Handler {
	cfg := config.Config{
		SessionCookieName:  "lg_sess",
		CSRFEnforce:        true,
		Env:                "test",
		APIMaxBodyBytes:    2 << 20,
		ImportMaxFileBytes: 25 << 20,
		ImportMaxRows:      1000,
		RateLimitMaxIPs:    100,
	}
	sessions := &fakeSessions{actors: map[string]middleware.Actor{
		"tok-admin": {SessionID: uuid.NewString(), UserID: "u-1", Email: "ana@logistica.dev", FullName: "Ana", Role: "admin", CSRFToken: "csrf-admin"},
		"tok-user":  {SessionID: uuid.NewString(), UserID: "u-2", Email: "breno@logistica.dev", FullName: "Breno", Role: "user", CSRFToken: "csrf-user"},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(cfg, s, nopAuth{}, sessions, logger)
}

func asAdmin(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "lg_sess", Value: "tok-admin"})
	return req
}

func TestRouterHealthIsPublic(t *testing.T) {
	router := testRouter(newMemStore())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestRouterRequiresSession(t *testing.T) {
	router := testRouter(newMemStore())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/cidades", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status without cookie = %d, want 401", rr.Code)
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cidades", nil)
	req.AddCookie(&http.Cookie{Name: "lg_sess", Value: "tok-desconhecido"})
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status with stale cookie = %d, want 401", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, asAdmin(httptest.NewRequest(http.MethodGet, "/api/cidades", nil)))
	if rr.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, want 200", rr.Code)
	}
}

func TestRouterUnknownEntity(t *testing.T) {
	router := testRouter(newMemStore())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, asAdmin(httptest.NewRequest(http.MethodGet, "/api/pedidos", nil)))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "unknown_entity") {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func importUpload(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", "Template"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	headers := []string{"Nome *", "Estado *", "Região", "Distância (km)", "Peso Mínimo (kg)", "Observação"}
	for col, value := range headers {
		axis, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue("Template", axis, value); err != nil {
			t.Fatalf("set header: %v", err)
		}
	}
	for col, value := range []string{"Uberlândia", "MG"} {
		axis, _ := excelize.CoordinatesToCellName(col+1, 2)
		if err := f.SetCellValue("Template", axis, value); err != nil {
			t.Fatalf("set cell: %v", err)
		}
	}
	workbook, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "cidades.xlsx")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(workbook.Bytes()); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestRouterImportEnforcesCSRFAndRole(t *testing.T) {
	s := newMemStore()
	router := testRouter(s)

	// No CSRF token.
	body, contentType := importUpload(t)
	req := asAdmin(httptest.NewRequest(http.MethodPost, "/api/imports/cidades", body))
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status without CSRF token = %d, want 403", rr.Code)
	}

	// Non-admin role.
	body, contentType = importUpload(t)
	req = httptest.NewRequest(http.MethodPost, "/api/imports/cidades", body)
	req.AddCookie(&http.Cookie{Name: "lg_sess", Value: "tok-user"})
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-CSRF-Token", "csrf-user")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status for non-admin = %d, want 403", rr.Code)
	}

	// Admin with a valid token runs the pipeline.
	body, contentType = importUpload(t)
	req = asAdmin(httptest.NewRequest(http.MethodPost, "/api/imports/cidades", body))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-CSRF-Token", "csrf-admin")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if len(s.records[store.CollectionCidades]) != 1 {
		t.Fatal("import did not persist the row")
	}
}

func TestRouterTemplateDownload(t *testing.T) {
	router := testRouter(newMemStore())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, asAdmin(httptest.NewRequest(http.MethodGet, "/api/imports/folgas/template", nil)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "modelo-folgas.xlsx") {
		t.Fatalf("content disposition = %q", got)
	}
}

func TestRouterRecordsEndpoint(t *testing.T) {
	s := newMemStore()
	s.records[store.CollectionVeiculos] = []store.Record{
		{ID: "id-1", Data: map[string]any{"placa": "ABC1D23", "modelo": "ATEGO"}},
	}
	router := testRouter(s)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, asAdmin(httptest.NewRequest(http.MethodGet, "/api/veiculos", nil)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var items []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0]["placa"] != "ABC1D23" || items[0]["id"] != "id-1" {
		t.Fatalf("items = %v", items)
	}
}
