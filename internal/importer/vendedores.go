package importer

import (
	"context"
	"strings"

	"github.com/logistica-platform/api/internal/store"
)

const (
	vendedorColNome = iota
	vendedorColCPF
	vendedorColEmail
	vendedorColTelefone
	vendedorColRegiao
	vendedorColCodigoSistema
	vendedorColCidades
)

type vendedoresStrategy struct{}

func (vendedoresStrategy) Spec() EntitySpec {
	return EntitySpec{
		Entity: EntityVendedores,
		Headers: []Header{
			{Name: "Nome", Required: true},
			{Name: "CPF", Required: true},
			{Name: "Email"},
			{Name: "Telefone"},
			{Name: "Região"},
			{Name: "Código Sistema"},
			{Name: "Cidades Atendidas"},
		},
		Instructions: []string{
			"Preencha a aba \"Template\" com um vendedor por linha.",
			"Campos marcados com * são obrigatórios.",
			"CPF, Email e Código Sistema não podem repetir vendedores já cadastrados.",
			"Cidades Atendidas é uma lista separada por vírgula; cidades não encontradas são ignoradas.",
		},
		Example: [][]string{
			{"Maria Oliveira", "168.995.350-09", "maria@exemplo.com", "(11) 98888-7777", "Sudeste", "V-1024", "São Paulo, Campinas"},
		},
	}
}

func (vendedoresStrategy) Validate(rows []Row, existing []store.Record, haveExisting bool) ValidationResult {
	vr := ValidationResult{IsValid: true}

	// Each uniqueness-constrained field keeps its own key space.
	cpfs := newUniqueSet()
	emails := newUniqueSet()
	codigos := newUniqueSet()
	for _, record := range existing {
		cpfs.addExisting(CleanNumeric(recordString(record, "cpf")))
		emails.addExisting(lowerTrim(recordString(record, "email")))
		codigos.addExisting(upperTrim(recordString(record, "codigoSistema")))
	}

	required := []requiredField{
		{vendedorColNome, "Nome"},
		{vendedorColCPF, "CPF"},
	}

	for _, row := range rows {
		ok := checkRequiredFields(&vr, row, required)
		if !haveExisting || !ok {
			continue
		}

		cpf := row.Cell(vendedorColCPF).String()
		if !ValidCPF(cpf) {
			vr.addError(row.Number, "CPF", "CPF inválido", cpf)
		} else {
			switch cpfs.check(CleanNumeric(cpf)) {
			case uniqueInStore:
				vr.addError(row.Number, "CPF", "Vendedor já existe", cpf)
			case uniqueInFile:
				vr.addError(row.Number, "CPF", "CPF duplicado no arquivo", cpf)
			}
		}

		if email := row.Cell(vendedorColEmail); !email.IsEmpty() {
			if !ValidEmail(email.String()) {
				vr.addError(row.Number, "Email", "Email inválido", email.String())
			} else {
				switch emails.check(lowerTrim(email.String())) {
				case uniqueInStore:
					vr.addError(row.Number, "Email", "Email já existe", email.String())
				case uniqueInFile:
					vr.addError(row.Number, "Email", "Email duplicado no arquivo", email.String())
				}
			}
		}

		if telefone := row.Cell(vendedorColTelefone); !telefone.IsEmpty() && !ValidPhone(telefone.String()) {
			vr.addError(row.Number, "Telefone", "Telefone inválido", telefone.String())
		}

		if codigo := row.Cell(vendedorColCodigoSistema); !codigo.IsEmpty() {
			switch codigos.check(upperTrim(codigo.String())) {
			case uniqueInStore:
				vr.addError(row.Number, "Código Sistema", "Código Sistema já existe", codigo.String())
			case uniqueInFile:
				vr.addError(row.Number, "Código Sistema", "Código Sistema duplicado no arquivo", codigo.String())
			}
		}
	}

	return vr
}

func (vendedoresStrategy) Transform(ctx context.Context, rows []Row, refs *Resolver) ([]Prepared, []ImportError, []ImportWarning) {
	prepared := make([]Prepared, 0, len(rows))
	var warnings []ImportWarning

	for _, row := range rows {
		fields := map[string]any{
			"nome": upperTrim(row.Cell(vendedorColNome).String()),
			"cpf":  CleanNumeric(row.Cell(vendedorColCPF).String()),
		}
		setString(fields, "email", lowerTrim(row.Cell(vendedorColEmail).String()))
		setString(fields, "telefone", CleanNumeric(row.Cell(vendedorColTelefone).String()))
		setString(fields, "regiao", upperTrim(row.Cell(vendedorColRegiao).String()))
		setString(fields, "codigoSistema", upperTrim(row.Cell(vendedorColCodigoSistema).String()))

		if lista := row.Cell(vendedorColCidades).String(); lista != "" {
			var resolved []string
			for _, name := range strings.Split(lista, ",") {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				id, found := refs.CityID(ctx, name)
				if !found {
					warnings = append(warnings, ImportWarning{
						Row:     row.Number,
						Field:   "Cidades Atendidas",
						Message: "Cidade não encontrada, referência ignorada",
						Value:   name,
					})
					continue
				}
				resolved = append(resolved, id)
			}
			if len(resolved) > 0 {
				fields["cidadesAtendidas"] = resolved
			}
		}

		prepared = append(prepared, Prepared{RowNumber: row.Number, Fields: fields})
	}
	return prepared, nil, warnings
}
