package importer

import (
	"context"

	"github.com/logistica-platform/api/internal/store"
)

// Header describes one template column. Required headers render with a
// trailing " *" marker in the generated template.
type Header struct {
	Name     string
	Required bool
}

// EntitySpec is the static import configuration of one entity type:
// expected columns, template instructions and example rows.
type EntitySpec struct {
	Entity       Entity
	Headers      []Header
	Instructions []string
	Example      [][]string
}

// HeaderNames renders the template header row, required markers included.
func (s EntitySpec) HeaderNames() []string {
	names := make([]string, 0, len(s.Headers))
	for _, h := range s.Headers {
		name := h.Name
		if h.Required {
			name += " *"
		}
		names = append(names, name)
	}
	return names
}

// Prepared is one canonical domain record ready for persistence, tagged
// with the sheet row it came from so persistence failures can report the
// position the user sees.
type Prepared struct {
	RowNumber int
	Fields    map[string]any
}

// Strategy is the per-entity specialization of the import pipeline.
// Validate must scan rows in sheet order (in-file duplicate detection is
// first-occurrence-wins). When haveExisting is false the store could not be
// read and only structural (required-field) validation applies. Transform
// assumes rows already validated; a row it cannot transform is returned as
// an ImportError and excluded, never aborting the batch.
type Strategy interface {
	Spec() EntitySpec
	Validate(rows []Row, existing []store.Record, haveExisting bool) ValidationResult
	Transform(ctx context.Context, rows []Row, refs *Resolver) ([]Prepared, []ImportError, []ImportWarning)
}

// Registry resolves an entity tag to its strategy at compile time rather
// than by string dispatch.
type Registry map[Entity]Strategy

// NewRegistry wires every entity strategy.
func NewRegistry() Registry {
	return Registry{
		EntityCidades:      cidadesStrategy{},
		EntityFuncionarios: funcionariosStrategy{},
		EntityVeiculos:     veiculosStrategy{},
		EntityVendedores:   vendedoresStrategy{},
		EntityRotas:        rotasStrategy{},
		EntityFolgas:       folgasStrategy{},
	}
}

type requiredField struct {
	col  int
	name string
}

// checkRequiredFields flags blank required cells; reports whether the row
// passed all of them.
func checkRequiredFields(vr *ValidationResult, row Row, fields []requiredField) bool {
	ok := true
	for _, field := range fields {
		if row.Cell(field.col).IsEmpty() {
			vr.addError(row.Number, field.name, field.name+" é obrigatório", "")
			ok = false
		}
	}
	return ok
}

// The persistence layer treats null and absent inconsistently, so fields
// left empty after transformation are omitted from the record rather than
// stored as null.

func setString(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}

func setFloat(fields map[string]any, key string, cell Cell) {
	if cell.IsEmpty() {
		return
	}
	if value, ok := cell.Float(); ok {
		fields[key] = value
	}
}
