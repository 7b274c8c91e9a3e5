package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/logistica-platform/api/internal/audit"
	"github.com/logistica-platform/api/internal/store"
)

// fakeStore is an in-memory store.Store. Create failures can be injected
// per collection or on a specific call number.
type fakeStore struct {
	records      map[string][]store.Record
	listErr      map[string]error
	createErr    map[string]error
	failOnCreate int
	createCalls  int
	nextID       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records:   map[string][]store.Record{},
		listErr:   map[string]error{},
		createErr: map[string]error{},
	}
}

func (f *fakeStore) List(_ context.Context, collection string) ([]store.Record, error) {
	if err := f.listErr[collection]; err != nil {
		return nil, err
	}
	return f.records[collection], nil
}

func (f *fakeStore) Create(_ context.Context, collection string, fields map[string]any) (string, error) {
	f.createCalls++
	if err := f.createErr[collection]; err != nil {
		return "", err
	}
	if f.failOnCreate > 0 && f.createCalls == f.failOnCreate {
		return "", errors.New("connection reset")
	}
	f.nextID++
	id := fmt.Sprintf("id-%d", f.nextID)
	f.records[collection] = append(f.records[collection], store.Record{ID: id, Data: fields})
	return id, nil
}

func (f *fakeStore) seed(collection string, docs ...map[string]any) {
	for _, doc := range docs {
		f.nextID++
		f.records[collection] = append(f.records[collection], store.Record{
			ID:   fmt.Sprintf("id-%d", f.nextID),
			Data: doc,
		})
	}
}

func testRunner(t *testing.T, s *fakeStore, maxRows int) *Runner {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRunner(s, audit.NewRecorder(s), NewRegistry(), logger, maxRows)
}

// buildWorkbookSheet writes one sheet with a header row plus data rows.
// Values may be string, float64 or time.Time; time.Time cells receive
// excelize's default date number format and round-trip as native dates.
func buildWorkbookSheet(t *testing.T, sheet string, headers []string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	writeSheetRow(t, f, sheet, 1, toAny(headers))
	for i, row := range rows {
		writeSheetRow(t, f, sheet, i+2, row)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func writeSheetRow(t *testing.T, f *excelize.File, sheet string, row int, values []any) {
	t.Helper()
	for col, value := range values {
		axis, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetCellValue(sheet, axis, value); err != nil {
			t.Fatalf("set cell %s: %v", axis, err)
		}
	}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func entityHeaders(entity Entity) []string {
	return NewRegistry()[entity].Spec().HeaderNames()
}

func findError(errs []ImportError, field string) (ImportError, bool) {
	for _, e := range errs {
		if e.Field == field {
			return e, true
		}
	}
	return ImportError{}, false
}
