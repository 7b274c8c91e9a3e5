package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	sheetInstrucoes = "Instruções"
	sheetTemplate   = "Template"
	sheetExemplo    = "Exemplo"
)

// BuildTemplate renders the downloadable workbook for an entity: an
// instructions sheet, a header-only "Template" sheet the user fills in,
// and an "Exemplo" sheet with sample rows. A template filled with its own
// example rows must import cleanly.
func BuildTemplate(spec EntitySpec) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetInstrucoes); err != nil {
		return nil, fmt.Errorf("build template: %w", err)
	}
	if _, err := f.NewSheet(sheetTemplate); err != nil {
		return nil, fmt.Errorf("build template: %w", err)
	}
	if _, err := f.NewSheet(sheetExemplo); err != nil {
		return nil, fmt.Errorf("build template: %w", err)
	}

	if err := writeInstructions(f, spec); err != nil {
		return nil, err
	}

	headers := spec.HeaderNames()
	if err := writeRow(f, sheetTemplate, 1, headers); err != nil {
		return nil, err
	}
	if err := writeRow(f, sheetExemplo, 1, headers); err != nil {
		return nil, err
	}
	for i, example := range spec.Example {
		if err := writeRow(f, sheetExemplo, i+2, example); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("build template: %w", err)
	}
	return buf.Bytes(), nil
}

func writeInstructions(f *excelize.File, spec EntitySpec) error {
	lines := make([]string, 0, len(spec.Instructions)+2)
	lines = append(lines, fmt.Sprintf("Importação de %s", spec.Entity.Label()), "")
	lines = append(lines, spec.Instructions...)

	for i, line := range lines {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("build template: %w", err)
		}
		if err := f.SetCellValue(sheetInstrucoes, axis, line); err != nil {
			return fmt.Errorf("build template: %w", err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, value := range values {
		axis, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("build template: %w", err)
		}
		if err := f.SetCellValue(sheet, axis, value); err != nil {
			return fmt.Errorf("build template: %w", err)
		}
	}
	return nil
}
