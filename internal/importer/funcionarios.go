package importer

import (
	"context"

	"github.com/logistica-platform/api/internal/store"
)

const (
	funcColNome = iota
	funcColCPF
	funcColCNH
	funcColTelefone
	funcColEmail
	funcColFuncao
	funcColAdmissao
	funcColSalario
)

type funcionariosStrategy struct{}

func (funcionariosStrategy) Spec() EntitySpec {
	return EntitySpec{
		Entity: EntityFuncionarios,
		Headers: []Header{
			{Name: "Nome", Required: true},
			{Name: "CPF", Required: true},
			{Name: "CNH"},
			{Name: "Telefone"},
			{Name: "Email"},
			{Name: "Função"},
			{Name: "Data Admissão"},
			{Name: "Salário"},
		},
		Instructions: []string{
			"Preencha a aba \"Template\" com um funcionário por linha.",
			"Campos marcados com * são obrigatórios.",
			"CPF deve ter 11 dígitos válidos, com ou sem pontuação.",
			"Telefone deve ter DDD + número (10 ou 11 dígitos).",
			"Data Admissão aceita os formatos DD/MM/AAAA ou AAAA-MM-DD.",
			"Funcionários com CPF já cadastrado não são importados.",
		},
		Example: [][]string{
			{"João da Silva", "529.982.247-25", "12345678900", "(34) 99999-1234", "joao@exemplo.com", "Motorista", "15/03/2022", "3200"},
		},
	}
}

func (funcionariosStrategy) Validate(rows []Row, existing []store.Record, haveExisting bool) ValidationResult {
	vr := ValidationResult{IsValid: true}

	unique := newUniqueSet()
	for _, record := range existing {
		unique.addExisting(CleanNumeric(recordString(record, "cpf")))
	}

	required := []requiredField{
		{funcColNome, "Nome"},
		{funcColCPF, "CPF"},
	}

	for _, row := range rows {
		ok := checkRequiredFields(&vr, row, required)
		if !haveExisting || !ok {
			continue
		}

		cpf := row.Cell(funcColCPF).String()
		if !ValidCPF(cpf) {
			vr.addError(row.Number, "CPF", "CPF inválido", cpf)
		} else {
			switch unique.check(CleanNumeric(cpf)) {
			case uniqueInStore:
				vr.addError(row.Number, "CPF", "Funcionário já existe", cpf)
			case uniqueInFile:
				vr.addError(row.Number, "CPF", "CPF duplicado no arquivo", cpf)
			}
		}

		if telefone := row.Cell(funcColTelefone); !telefone.IsEmpty() && !ValidPhone(telefone.String()) {
			vr.addError(row.Number, "Telefone", "Telefone inválido", telefone.String())
		}
		if email := row.Cell(funcColEmail); !email.IsEmpty() && !ValidEmail(email.String()) {
			vr.addError(row.Number, "Email", "Email inválido", email.String())
		}

		// Admission date is non-blocking metadata: an unparseable value
		// degrades to a warning and the row imports without it.
		if admissao := row.Cell(funcColAdmissao); !admissao.IsEmpty() {
			if _, err := DateString(admissao); err != nil {
				vr.addWarning(row.Number, "Data Admissão", "Data Admissão inválida, campo será ignorado", admissao.String())
			}
		}
		if salario := row.Cell(funcColSalario); !salario.IsEmpty() {
			if _, isNum := salario.Float(); !isNum {
				vr.addError(row.Number, "Salário", "Salário deve ser um número", salario.String())
			}
		}
	}

	return vr
}

func (funcionariosStrategy) Transform(ctx context.Context, rows []Row, refs *Resolver) ([]Prepared, []ImportError, []ImportWarning) {
	prepared := make([]Prepared, 0, len(rows))
	var warnings []ImportWarning

	for _, row := range rows {
		fields := map[string]any{
			"nome": upperTrim(row.Cell(funcColNome).String()),
			"cpf":  CleanNumeric(row.Cell(funcColCPF).String()),
		}
		setString(fields, "cnh", CleanNumeric(row.Cell(funcColCNH).String()))
		setString(fields, "telefone", CleanNumeric(row.Cell(funcColTelefone).String()))
		setString(fields, "email", lowerTrim(row.Cell(funcColEmail).String()))
		setString(fields, "funcao", upperTrim(row.Cell(funcColFuncao).String()))
		setFloat(fields, "salario", row.Cell(funcColSalario))

		if admissao, err := DateString(row.Cell(funcColAdmissao)); err == nil {
			setString(fields, "dataAdmissao", admissao)
		} else {
			warnings = append(warnings, ImportWarning{
				Row:     row.Number,
				Field:   "Data Admissão",
				Message: "Data Admissão inválida, campo ignorado",
				Value:   row.Cell(funcColAdmissao).String(),
			})
		}

		prepared = append(prepared, Prepared{RowNumber: row.Number, Fields: fields})
	}
	return prepared, nil, warnings
}
