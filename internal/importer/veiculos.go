package importer

import (
	"context"
	"time"

	"github.com/logistica-platform/api/internal/store"
)

const (
	veiculoColPlaca = iota
	veiculoColModelo
	veiculoColMarca
	veiculoColAno
	veiculoColCapacidade
	veiculoColTipo
	veiculoColUltimaManutencao
	veiculoColProximaManutencao
)

type veiculosStrategy struct{}

func (veiculosStrategy) Spec() EntitySpec {
	return EntitySpec{
		Entity: EntityVeiculos,
		Headers: []Header{
			{Name: "Placa", Required: true},
			{Name: "Modelo", Required: true},
			{Name: "Marca"},
			{Name: "Ano"},
			{Name: "Capacidade (kg)"},
			{Name: "Tipo"},
			{Name: "Última Manutenção"},
			{Name: "Próxima Manutenção"},
		},
		Instructions: []string{
			"Preencha a aba \"Template\" com um veículo por linha.",
			"Campos marcados com * são obrigatórios.",
			"Placa aceita o formato antigo (ABC1234) ou Mercosul (ABC1D23).",
			"Ano e Capacidade aceitam apenas números.",
			"Datas de manutenção aceitam DD/MM/AAAA ou AAAA-MM-DD; valores inválidos são ignorados.",
			"Veículos com placa já cadastrada não são importados.",
		},
		Example: [][]string{
			{"ABC1D23", "Atego 1719", "Mercedes-Benz", "2021", "8000", "Truck", "10/01/2024", "10/07/2024"},
		},
	}
}

func (veiculosStrategy) Validate(rows []Row, existing []store.Record, haveExisting bool) ValidationResult {
	vr := ValidationResult{IsValid: true}

	unique := newUniqueSet()
	for _, record := range existing {
		unique.addExisting(NormalizePlaca(recordString(record, "placa")))
	}

	required := []requiredField{
		{veiculoColPlaca, "Placa"},
		{veiculoColModelo, "Modelo"},
	}

	currentYear := time.Now().Year()

	for _, row := range rows {
		ok := checkRequiredFields(&vr, row, required)
		if !haveExisting || !ok {
			continue
		}

		placa := row.Cell(veiculoColPlaca).String()
		if !ValidPlaca(placa) {
			vr.addError(row.Number, "Placa", "Placa inválida", placa)
		} else {
			switch unique.check(NormalizePlaca(placa)) {
			case uniqueInStore:
				vr.addError(row.Number, "Placa", "Veículo já existe", placa)
			case uniqueInFile:
				vr.addError(row.Number, "Placa", "Placa duplicada no arquivo", placa)
			}
		}

		if ano := row.Cell(veiculoColAno); !ano.IsEmpty() {
			value, isNum := ano.Float()
			if !isNum || value < 1950 || value > float64(currentYear+1) {
				vr.addError(row.Number, "Ano", "Ano inválido", ano.String())
			}
		}
		if capacidade := row.Cell(veiculoColCapacidade); !capacidade.IsEmpty() {
			if _, isNum := capacidade.Float(); !isNum {
				vr.addError(row.Number, "Capacidade (kg)", "Capacidade deve ser um número", capacidade.String())
			}
		}

		// Maintenance dates are non-blocking metadata.
		for _, soft := range []struct {
			col  int
			name string
		}{
			{veiculoColUltimaManutencao, "Última Manutenção"},
			{veiculoColProximaManutencao, "Próxima Manutenção"},
		} {
			cell := row.Cell(soft.col)
			if cell.IsEmpty() {
				continue
			}
			if _, err := DateString(cell); err != nil {
				vr.addWarning(row.Number, soft.name, soft.name+" inválida, campo será ignorado", cell.String())
			}
		}
	}

	return vr
}

func (veiculosStrategy) Transform(ctx context.Context, rows []Row, refs *Resolver) ([]Prepared, []ImportError, []ImportWarning) {
	prepared := make([]Prepared, 0, len(rows))
	var warnings []ImportWarning

	for _, row := range rows {
		fields := map[string]any{
			"placa":  NormalizePlaca(row.Cell(veiculoColPlaca).String()),
			"modelo": upperTrim(row.Cell(veiculoColModelo).String()),
		}
		setString(fields, "marca", upperTrim(row.Cell(veiculoColMarca).String()))
		setString(fields, "tipo", upperTrim(row.Cell(veiculoColTipo).String()))
		if ano := row.Cell(veiculoColAno); !ano.IsEmpty() {
			if value, isNum := ano.Float(); isNum {
				fields["ano"] = int(value)
			}
		}
		setFloat(fields, "capacidade", row.Cell(veiculoColCapacidade))

		for _, soft := range []struct {
			col   int
			field string
			name  string
		}{
			{veiculoColUltimaManutencao, "ultimaManutencao", "Última Manutenção"},
			{veiculoColProximaManutencao, "proximaManutencao", "Próxima Manutenção"},
		} {
			cell := row.Cell(soft.col)
			value, err := DateString(cell)
			if err != nil {
				warnings = append(warnings, ImportWarning{
					Row:     row.Number,
					Field:   soft.name,
					Message: soft.name + " inválida, campo ignorado",
					Value:   cell.String(),
				})
				continue
			}
			setString(fields, soft.field, value)
		}

		prepared = append(prepared, Prepared{RowNumber: row.Number, Fields: fields})
	}
	return prepared, nil, warnings
}
