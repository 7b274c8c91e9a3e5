package importer

import (
	"context"
	"strings"

	"github.com/logistica-platform/api/internal/store"
)

// Resolver resolves foreign references (city names, employee names/CPFs)
// to store identifiers during row transformation. Each referenced
// collection is fetched once per import run and cached for the remainder
// of the run.
type Resolver struct {
	store store.Store

	cidades       []store.Record
	cidadesLoaded bool

	funcionarios       []store.Record
	funcionariosLoaded bool
}

func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

func (r *Resolver) loadCidades(ctx context.Context) []store.Record {
	if !r.cidadesLoaded {
		records, err := r.store.List(ctx, store.CollectionCidades)
		if err == nil {
			r.cidades = records
		}
		r.cidadesLoaded = true
	}
	return r.cidades
}

func (r *Resolver) loadFuncionarios(ctx context.Context) []store.Record {
	if !r.funcionariosLoaded {
		records, err := r.store.List(ctx, store.CollectionFuncionarios)
		if err == nil {
			r.funcionarios = records
		}
		r.funcionariosLoaded = true
	}
	return r.funcionarios
}

// CityID resolves a city by name: exact normalized match first, then
// substring containment in either direction. Returns false when no city
// matches; the caller omits the reference and records a warning.
func (r *Resolver) CityID(ctx context.Context, name string) (string, bool) {
	target := NormalizeName(name)
	if target == "" {
		return "", false
	}

	records := r.loadCidades(ctx)
	for _, record := range records {
		if NormalizeName(recordString(record, "nome")) == target {
			return record.ID, true
		}
	}
	for _, record := range records {
		candidate := NormalizeName(recordString(record, "nome"))
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, target) || strings.Contains(target, candidate) {
			return record.ID, true
		}
	}
	return "", false
}

// EmployeeID resolves an employee by CPF when the reference looks like
// one, falling back to the same name matching CityID uses.
func (r *Resolver) EmployeeID(ctx context.Context, ref string) (string, bool) {
	records := r.loadFuncionarios(ctx)

	if digits := CleanNumeric(ref); len(digits) == 11 {
		for _, record := range records {
			if CleanNumeric(recordString(record, "cpf")) == digits {
				return record.ID, true
			}
		}
	}

	target := NormalizeName(ref)
	if target == "" {
		return "", false
	}
	for _, record := range records {
		if NormalizeName(recordString(record, "nome")) == target {
			return record.ID, true
		}
	}
	for _, record := range records {
		candidate := NormalizeName(recordString(record, "nome"))
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, target) || strings.Contains(target, candidate) {
			return record.ID, true
		}
	}
	return "", false
}

func recordString(record store.Record, field string) string {
	value, ok := record.Data[field]
	if !ok {
		return ""
	}
	text, ok := value.(string)
	if !ok {
		return ""
	}
	return text
}
