package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/logistica-platform/api/internal/audit"
	"github.com/logistica-platform/api/internal/store"
)

// RunMeta carries the upload context stamped onto the audit log.
type RunMeta struct {
	FileName  string
	FileSize  int64
	UserID    string
	UserName  string
	IPAddress string
	UserAgent string
}

// Runner sequences one import run: parse, identity check, validate,
// transform, persist, audit. Stages execute strictly in order with no
// parallel row processing; duplicate detection and partial-failure
// accounting depend on it.
type Runner struct {
	store    store.Store
	audit    *audit.Recorder
	registry Registry
	logger   *slog.Logger
	maxRows  int
}

// NewRunner builds the orchestrator. maxRows caps the number of data rows
// accepted per upload; zero means no cap.
func NewRunner(s store.Store, recorder *audit.Recorder, registry Registry, logger *slog.Logger, maxRows int) *Runner {
	return &Runner{store: s, audit: recorder, registry: registry, logger: logger, maxRows: maxRows}
}

// Run executes one import of the given entity over an uploaded workbook.
// It always returns a usable ImportResult; errors surface inside it, not
// past it.
func (r *Runner) Run(ctx context.Context, entity Entity, data []byte, meta RunMeta) ImportResult {
	start := time.Now()

	strategy, ok := r.registry[entity]
	if !ok {
		return r.finish(ctx, entity, meta, start, structuralFailure(fmt.Sprintf("tipo de importação desconhecido: %s", entity), 0))
	}
	spec := strategy.Spec()

	workbook, err := ParseWorkbook(data)
	if err != nil {
		return r.finish(ctx, entity, meta, start, structuralFailure(err.Error(), 0))
	}

	if ratio := headerMatchRatio(workbook.Headers, spec.HeaderNames()); ratio < headerMatchThreshold {
		message := fmt.Sprintf("o arquivo não corresponde ao modelo de %s", entity.Label())
		if detected, found := DetectEntity(workbook.Headers); found && detected != entity {
			message = fmt.Sprintf("o arquivo parece ser um modelo de %s, não de %s", detected.Label(), entity.Label())
		}
		return r.finish(ctx, entity, meta, start, structuralFailure(message, len(workbook.Rows)))
	}

	totalRows := len(workbook.Rows)
	if r.maxRows > 0 && totalRows > r.maxRows {
		message := fmt.Sprintf("o arquivo excede o limite de %d linhas", r.maxRows)
		return r.finish(ctx, entity, meta, start, structuralFailure(message, totalRows))
	}

	existing, listErr := r.store.List(ctx, entity.Collection())
	haveExisting := listErr == nil
	if listErr != nil {
		// Partial validation beats total failure: fall back to
		// required-field checks only.
		r.logger.Warn("import_store_lookup_failed",
			"entity", entity,
			"error", listErr,
		)
		existing = nil
	}

	validation := strategy.Validate(workbook.Rows, existing, haveExisting)
	if !validation.IsValid {
		result := ImportResult{
			Success:      false,
			TotalRows:    totalRows,
			ImportedRows: 0,
			FailedRows:   totalRows,
			Errors:       validation.Errors,
			Warnings:     validation.Warnings,
		}
		return r.finish(ctx, entity, meta, start, result)
	}

	prepared, dropped, transformWarnings := strategy.Transform(ctx, workbook.Rows, NewResolver(r.store))

	result := ImportResult{
		TotalRows: totalRows,
		Errors:    append([]ImportError{}, dropped...),
		Warnings:  append(append([]ImportWarning{}, validation.Warnings...), transformWarnings...),
	}
	result.FailedRows = len(dropped)

	// Records persist one at a time, in input order. A failed row is
	// recorded and skipped; the rest of the batch still imports. There is
	// no rollback of rows already persisted.
	for _, record := range prepared {
		if _, createErr := r.store.Create(ctx, entity.Collection(), record.Fields); createErr != nil {
			result.FailedRows++
			result.Errors = append(result.Errors, ImportError{
				Row:      record.RowNumber,
				Field:    "",
				Message:  fmt.Sprintf("falha ao salvar o registro: %v", createErr),
				Severity: "error",
			})
			continue
		}
		result.ImportedRows++
	}

	result.Success = result.FailedRows == 0
	return r.finish(ctx, entity, meta, start, result)
}

// LastImport returns the display summary of the entity's most recent
// import log, or nil when the entity was never imported.
func (r *Runner) LastImport(ctx context.Context, entity Entity) (*audit.Summary, error) {
	return r.audit.LastForEntity(ctx, string(entity))
}

// Template renders the downloadable workbook for the entity.
func (r *Runner) Template(entity Entity) ([]byte, error) {
	strategy, ok := r.registry[entity]
	if !ok {
		return nil, fmt.Errorf("unknown entity type %q", entity)
	}
	return BuildTemplate(strategy.Spec())
}

func structuralFailure(message string, totalRows int) ImportResult {
	return ImportResult{
		Success:    false,
		TotalRows:  totalRows,
		FailedRows: totalRows,
		Errors: []ImportError{{
			Row:      1,
			Field:    "",
			Message:  message,
			Severity: "error",
		}},
	}
}

// finish stamps the duration and writes the audit log. The audit write is
// best-effort: its failure is logged and swallowed, never surfacing to the
// caller.
func (r *Runner) finish(ctx context.Context, entity Entity, meta RunMeta, start time.Time, result ImportResult) ImportResult {
	end := time.Now()
	result.Duration = end.Sub(start).Milliseconds()
	if result.Errors == nil {
		result.Errors = []ImportError{}
	}
	if result.Warnings == nil {
		result.Warnings = []ImportWarning{}
	}

	entry := audit.Entry{
		UserID:       meta.UserID,
		UserName:     meta.UserName,
		EntityType:   string(entity),
		FileName:     meta.FileName,
		FileSize:     meta.FileSize,
		TotalRows:    result.TotalRows,
		ImportedRows: result.ImportedRows,
		FailedRows:   result.FailedRows,
		Errors:       result.Errors,
		Warnings:     result.Warnings,
		StartTime:    start,
		EndTime:      end,
		Duration:     result.Duration,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}
	if err := r.audit.Record(ctx, entry); err != nil {
		r.logger.Warn("import_audit_log_failed",
			"entity", entity,
			"file", meta.FileName,
			"error", err,
		)
	}

	r.logger.Info("import_completed",
		"entity", entity,
		"file", meta.FileName,
		"total_rows", result.TotalRows,
		"imported_rows", result.ImportedRows,
		"failed_rows", result.FailedRows,
		"duration_ms", result.Duration,
	)
	return result
}
