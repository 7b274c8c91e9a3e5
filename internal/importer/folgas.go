package importer

import (
	"context"

	"github.com/logistica-platform/api/internal/store"
)

const (
	folgaColFuncionario = iota
	folgaColInicio
	folgaColFim
	folgaColTipo
	folgaColMotivo
)

type folgasStrategy struct{}

func (folgasStrategy) Spec() EntitySpec {
	return EntitySpec{
		Entity: EntityFolgas,
		Headers: []Header{
			{Name: "Funcionário", Required: true},
			{Name: "Data Início", Required: true},
			{Name: "Data Fim", Required: true},
			{Name: "Tipo"},
			{Name: "Motivo"},
		},
		Instructions: []string{
			"Preencha a aba \"Template\" com uma folga por linha.",
			"Campos marcados com * são obrigatórios.",
			"Funcionário aceita o CPF ou o nome do funcionário cadastrado.",
			"Datas aceitam os formatos DD/MM/AAAA ou AAAA-MM-DD.",
		},
		Example: [][]string{
			{"529.982.247-25", "01/07/2024", "05/07/2024", "Férias", ""},
		},
	}
}

func (folgasStrategy) Validate(rows []Row, existing []store.Record, haveExisting bool) ValidationResult {
	vr := ValidationResult{IsValid: true}

	required := []requiredField{
		{folgaColFuncionario, "Funcionário"},
		{folgaColInicio, "Data Início"},
		{folgaColFim, "Data Fim"},
	}

	for _, row := range rows {
		ok := checkRequiredFields(&vr, row, required)
		if !haveExisting || !ok {
			continue
		}

		// Unlike maintenance metadata, the period itself is the record:
		// unparseable start/end dates block the row.
		inicio, errInicio := DateString(row.Cell(folgaColInicio))
		if errInicio != nil {
			vr.addError(row.Number, "Data Início", "Data Início inválida", row.Cell(folgaColInicio).String())
		}
		fim, errFim := DateString(row.Cell(folgaColFim))
		if errFim != nil {
			vr.addError(row.Number, "Data Fim", "Data Fim inválida", row.Cell(folgaColFim).String())
		}
		if errInicio == nil && errFim == nil && inicio != "" && fim != "" && fim < inicio {
			vr.addError(row.Number, "Data Fim", "Data Fim anterior à Data Início", fim)
		}
	}

	return vr
}

func (folgasStrategy) Transform(ctx context.Context, rows []Row, refs *Resolver) ([]Prepared, []ImportError, []ImportWarning) {
	prepared := make([]Prepared, 0, len(rows))
	var dropped []ImportError
	var warnings []ImportWarning

	for _, row := range rows {
		inicio, errInicio := DateString(row.Cell(folgaColInicio))
		fim, errFim := DateString(row.Cell(folgaColFim))
		if errInicio != nil || errFim != nil {
			dropped = append(dropped, ImportError{
				Row:      row.Number,
				Field:    "Data Início",
				Message:  "Não foi possível converter o período da folga",
				Severity: "error",
			})
			continue
		}

		ref := row.Cell(folgaColFuncionario).String()
		fields := map[string]any{
			"dataInicio": inicio,
			"dataFim":    fim,
		}
		if id, found := refs.EmployeeID(ctx, ref); found {
			fields["funcionarioId"] = id
		} else {
			warnings = append(warnings, ImportWarning{
				Row:     row.Number,
				Field:   "Funcionário",
				Message: "Funcionário não encontrado, vínculo ignorado",
				Value:   ref,
			})
		}
		setString(fields, "funcionarioNome", upperTrim(ref))
		setString(fields, "tipo", upperTrim(row.Cell(folgaColTipo).String()))
		setString(fields, "motivo", row.Cell(folgaColMotivo).String())

		prepared = append(prepared, Prepared{RowNumber: row.Number, Fields: fields})
	}
	return prepared, dropped, warnings
}
