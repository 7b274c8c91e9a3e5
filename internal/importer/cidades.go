package importer

import (
	"context"

	"github.com/logistica-platform/api/internal/store"
)

// Column layout of the cidades template.
const (
	cidadeColNome = iota
	cidadeColEstado
	cidadeColRegiao
	cidadeColDistancia
	cidadeColPesoMinimo
	cidadeColObservacao
)

type cidadesStrategy struct{}

func (cidadesStrategy) Spec() EntitySpec {
	return EntitySpec{
		Entity: EntityCidades,
		Headers: []Header{
			{Name: "Nome", Required: true},
			{Name: "Estado", Required: true},
			{Name: "Região"},
			{Name: "Distância (km)"},
			{Name: "Peso Mínimo (kg)"},
			{Name: "Observação"},
		},
		Instructions: []string{
			"Preencha a aba \"Template\" com uma cidade por linha.",
			"Campos marcados com * são obrigatórios.",
			"Estado deve ser a sigla da UF com duas letras (ex.: SP, MG).",
			"Distância e Peso Mínimo aceitam apenas números.",
			"Cidades repetidas (mesmo nome e estado) não são importadas.",
		},
		Example: [][]string{
			{"São Paulo", "SP", "Sudeste", "0", "1000", "Capital"},
			{"Uberlândia", "MG", "Sudeste", "590", "500", ""},
		},
	}
}

// cidadeKey is the uniqueness key: normalized name plus upper-cased UF.
// Accent and case variants of the same city compare equal.
func cidadeKey(nome, estado string) string {
	normalized := NormalizeName(nome)
	if normalized == "" {
		return ""
	}
	return normalized + "|" + upperTrim(estado)
}

func (cidadesStrategy) Validate(rows []Row, existing []store.Record, haveExisting bool) ValidationResult {
	vr := ValidationResult{IsValid: true}

	unique := newUniqueSet()
	for _, record := range existing {
		unique.addExisting(cidadeKey(recordString(record, "nome"), recordString(record, "estado")))
	}

	required := []requiredField{
		{cidadeColNome, "Nome"},
		{cidadeColEstado, "Estado"},
	}

	for _, row := range rows {
		ok := checkRequiredFields(&vr, row, required)
		if !haveExisting || !ok {
			continue
		}

		estado := row.Cell(cidadeColEstado).String()
		if !ValidUF(estado) {
			vr.addError(row.Number, "Estado", "Estado inválido: use a sigla da UF", estado)
		}

		for _, numeric := range []struct {
			col  int
			name string
		}{
			{cidadeColDistancia, "Distância (km)"},
			{cidadeColPesoMinimo, "Peso Mínimo (kg)"},
		} {
			cell := row.Cell(numeric.col)
			if cell.IsEmpty() {
				continue
			}
			if _, isNum := cell.Float(); !isNum {
				vr.addError(row.Number, numeric.name, numeric.name+" deve ser um número", cell.String())
			}
		}

		nome := row.Cell(cidadeColNome).String()
		switch unique.check(cidadeKey(nome, estado)) {
		case uniqueInStore:
			vr.addError(row.Number, "Nome", "Cidade já existe", nome)
		case uniqueInFile:
			vr.addError(row.Number, "Nome", "Cidade duplicada no arquivo", nome)
		}
	}

	return vr
}

func (cidadesStrategy) Transform(ctx context.Context, rows []Row, refs *Resolver) ([]Prepared, []ImportError, []ImportWarning) {
	prepared := make([]Prepared, 0, len(rows))
	for _, row := range rows {
		fields := map[string]any{
			"nome":   upperTrim(row.Cell(cidadeColNome).String()),
			"estado": upperTrim(row.Cell(cidadeColEstado).String()),
		}
		setString(fields, "regiao", upperTrim(row.Cell(cidadeColRegiao).String()))
		setFloat(fields, "distancia", row.Cell(cidadeColDistancia))
		setFloat(fields, "pesoMinimo", row.Cell(cidadeColPesoMinimo))
		setString(fields, "observacao", row.Cell(cidadeColObservacao).String())

		prepared = append(prepared, Prepared{RowNumber: row.Number, Fields: fields})
	}
	return prepared, nil, nil
}
