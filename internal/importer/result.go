package importer

// ImportError blocks a row (or, for structural errors, the whole run).
// Row numbers are 1-based over the full sheet, header included, so the
// first data row reports as row 2.
type ImportError struct {
	Row      int    `json:"row"`
	Field    string `json:"field"`
	Message  string `json:"message"`
	Value    string `json:"value,omitempty"`
	Severity string `json:"severity"`
}

// ImportWarning is non-blocking; the row imports with the offending field
// left empty.
type ImportWarning struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ValidationResult is the outcome of validating every row of one upload.
type ValidationResult struct {
	IsValid  bool            `json:"isValid"`
	Errors   []ImportError   `json:"errors"`
	Warnings []ImportWarning `json:"warnings"`
}

func (vr *ValidationResult) addError(row int, field, message, value string) {
	vr.IsValid = false
	vr.Errors = append(vr.Errors, ImportError{
		Row:      row,
		Field:    field,
		Message:  message,
		Value:    value,
		Severity: "error",
	})
}

func (vr *ValidationResult) addWarning(row int, field, message, value string) {
	vr.Warnings = append(vr.Warnings, ImportWarning{
		Row:     row,
		Field:   field,
		Message: message,
		Value:   value,
	})
}

// ImportResult is handed back to the caller at the end of a run.
// Success is true iff FailedRows == 0. Duration is wall-clock milliseconds.
type ImportResult struct {
	Success      bool            `json:"success"`
	TotalRows    int             `json:"totalRows"`
	ImportedRows int             `json:"importedRows"`
	FailedRows   int             `json:"failedRows"`
	Errors       []ImportError   `json:"errors"`
	Warnings     []ImportWarning `json:"warnings"`
	Duration     int64           `json:"duration"`
}
