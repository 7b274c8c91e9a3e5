package importer

import (
	"context"

	"github.com/logistica-platform/api/internal/store"
)

const (
	rotaColNome = iota
	rotaColOrigem
	rotaColDestino
	rotaColDistancia
	rotaColDiaSemana
	rotaColPesoMinimo
)

type rotasStrategy struct{}

func (rotasStrategy) Spec() EntitySpec {
	return EntitySpec{
		Entity: EntityRotas,
		Headers: []Header{
			{Name: "Nome", Required: true},
			{Name: "Cidade Origem", Required: true},
			{Name: "Cidade Destino", Required: true},
			{Name: "Distância (km)"},
			{Name: "Dia da Semana"},
			{Name: "Peso Mínimo (kg)"},
		},
		Instructions: []string{
			"Preencha a aba \"Template\" com uma rota por linha.",
			"Campos marcados com * são obrigatórios.",
			"Cidades de origem e destino são vinculadas às cidades cadastradas pelo nome.",
			"Rotas com nome já cadastrado não são importadas.",
		},
		Example: [][]string{
			{"SP-Triângulo", "São Paulo", "Uberlândia", "590", "Segunda", "500"},
		},
	}
}

func (rotasStrategy) Validate(rows []Row, existing []store.Record, haveExisting bool) ValidationResult {
	vr := ValidationResult{IsValid: true}

	unique := newUniqueSet()
	for _, record := range existing {
		unique.addExisting(NormalizeName(recordString(record, "nome")))
	}

	required := []requiredField{
		{rotaColNome, "Nome"},
		{rotaColOrigem, "Cidade Origem"},
		{rotaColDestino, "Cidade Destino"},
	}

	for _, row := range rows {
		ok := checkRequiredFields(&vr, row, required)
		if !haveExisting || !ok {
			continue
		}

		for _, numeric := range []struct {
			col  int
			name string
		}{
			{rotaColDistancia, "Distância (km)"},
			{rotaColPesoMinimo, "Peso Mínimo (kg)"},
		} {
			cell := row.Cell(numeric.col)
			if cell.IsEmpty() {
				continue
			}
			if _, isNum := cell.Float(); !isNum {
				vr.addError(row.Number, numeric.name, numeric.name+" deve ser um número", cell.String())
			}
		}

		nome := row.Cell(rotaColNome).String()
		switch unique.check(NormalizeName(nome)) {
		case uniqueInStore:
			vr.addError(row.Number, "Nome", "Rota já existe", nome)
		case uniqueInFile:
			vr.addError(row.Number, "Nome", "Rota duplicada no arquivo", nome)
		}
	}

	return vr
}

func (rotasStrategy) Transform(ctx context.Context, rows []Row, refs *Resolver) ([]Prepared, []ImportError, []ImportWarning) {
	prepared := make([]Prepared, 0, len(rows))
	var warnings []ImportWarning

	resolveCity := func(row Row, col int, nameField, idField, display string, fields map[string]any) {
		name := row.Cell(col).String()
		fields[nameField] = upperTrim(name)
		id, found := refs.CityID(ctx, name)
		if !found {
			warnings = append(warnings, ImportWarning{
				Row:     row.Number,
				Field:   display,
				Message: "Cidade não encontrada, vínculo ignorado",
				Value:   name,
			})
			return
		}
		fields[idField] = id
	}

	for _, row := range rows {
		fields := map[string]any{
			"nome": upperTrim(row.Cell(rotaColNome).String()),
		}
		resolveCity(row, rotaColOrigem, "cidadeOrigem", "cidadeOrigemId", "Cidade Origem", fields)
		resolveCity(row, rotaColDestino, "cidadeDestino", "cidadeDestinoId", "Cidade Destino", fields)
		setFloat(fields, "distancia", row.Cell(rotaColDistancia))
		setString(fields, "diaSemana", upperTrim(row.Cell(rotaColDiaSemana).String()))
		setFloat(fields, "pesoMinimo", row.Cell(rotaColPesoMinimo))

		prepared = append(prepared, Prepared{RowNumber: row.Number, Fields: fields})
	}
	return prepared, nil, warnings
}
