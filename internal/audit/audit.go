package audit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/logistica-platform/api/internal/store"
)

// Run statuses derived from the row counters.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Entry is one import run's audit trail, written once at the end of the
// run and never mutated afterwards. Errors and Warnings carry the already
// shaped slices from the import result.
type Entry struct {
	UserID       string
	UserName     string
	EntityType   string
	FileName     string
	FileSize     int64
	TotalRows    int
	ImportedRows int
	FailedRows   int
	Errors       any
	Warnings     any
	StartTime    time.Time
	EndTime      time.Time
	Duration     int64
	IPAddress    string
	UserAgent    string
}

// StatusFor classifies a finished run: success when nothing failed,
// failed when nothing imported, partial otherwise.
func StatusFor(importedRows, failedRows int) string {
	switch {
	case failedRows == 0:
		return StatusSuccess
	case importedRows == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// Recorder appends and reads import logs in the document store.
type Recorder struct {
	store store.Store
}

func NewRecorder(s store.Store) *Recorder {
	return &Recorder{store: s}
}

// Record appends one import log. Callers treat failures as best-effort:
// a lost audit entry never fails the import it describes.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	fields := map[string]any{
		"userId":       entry.UserID,
		"userName":     entry.UserName,
		"entityType":   entry.EntityType,
		"fileName":     entry.FileName,
		"fileSize":     entry.FileSize,
		"totalRows":    entry.TotalRows,
		"importedRows": entry.ImportedRows,
		"failedRows":   entry.FailedRows,
		"errors":       entry.Errors,
		"warnings":     entry.Warnings,
		"startTime":    entry.StartTime.UTC().Format(time.RFC3339Nano),
		"endTime":      entry.EndTime.UTC().Format(time.RFC3339Nano),
		"duration":     entry.Duration,
		"status":       StatusFor(entry.ImportedRows, entry.FailedRows),
		"ipAddress":    entry.IPAddress,
		"userAgent":    entry.UserAgent,
	}

	if _, err := r.store.Create(ctx, store.CollectionImportLogs, fields); err != nil {
		return fmt.Errorf("append import log: %w", err)
	}
	return nil
}

// Summary is the display projection of one import log.
type Summary struct {
	EntityType   string    `json:"entityType"`
	FileName     string    `json:"fileName"`
	UserName     string    `json:"userName"`
	Status       string    `json:"status"`
	TotalRows    int       `json:"totalRows"`
	ImportedRows int       `json:"importedRows"`
	FailedRows   int       `json:"failedRows"`
	StartTime    time.Time `json:"startTime"`
	Duration     int64     `json:"duration"`
}

// LastForEntity returns the most recent import log for an entity type, or
// nil when none exists. Logs are filtered and sorted client-side so the
// store needs no compound index.
func (r *Recorder) LastForEntity(ctx context.Context, entityType string) (*Summary, error) {
	records, err := r.store.List(ctx, store.CollectionImportLogs)
	if err != nil {
		return nil, fmt.Errorf("list import logs: %w", err)
	}

	matched := make([]Summary, 0, len(records))
	for _, record := range records {
		if logString(record.Data, "entityType") != entityType {
			continue
		}
		summary := Summary{
			EntityType:   entityType,
			FileName:     logString(record.Data, "fileName"),
			UserName:     logString(record.Data, "userName"),
			Status:       logString(record.Data, "status"),
			TotalRows:    logInt(record.Data, "totalRows"),
			ImportedRows: logInt(record.Data, "importedRows"),
			FailedRows:   logInt(record.Data, "failedRows"),
			Duration:     int64(logInt(record.Data, "duration")),
		}
		if when, parseErr := time.Parse(time.RFC3339Nano, logString(record.Data, "startTime")); parseErr == nil {
			summary.StartTime = when
		}
		matched = append(matched, summary)
	}
	if len(matched) == 0 {
		return nil, nil
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].StartTime.After(matched[j].StartTime)
	})
	return &matched[0], nil
}

func logString(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return value
}

func logInt(data map[string]any, key string) int {
	switch value := data[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	default:
		return 0
	}
}
