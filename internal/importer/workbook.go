package importer

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoDataSheet is returned when no sheet of the workbook holds data rows.
var ErrNoDataSheet = errors.New(`nenhuma planilha de dados encontrada no arquivo. Preencha e envie a aba "Template" do modelo`)

// Sheet names containing one of these (case-insensitive) are treated as the
// data sheet when a workbook carries more than one sheet.
var dataSheetKeywords = []string{
	"template",
	"dados",
	"importa",
	"cidades",
	"funcionarios",
	"funcionários",
	"veiculos",
	"veículos",
	"vendedores",
	"rotas",
	"folgas",
}

// Workbook is the outcome of decoding one uploaded spreadsheet: the header
// row of the selected sheet plus its data rows, blank rows removed.
type Workbook struct {
	SheetName string
	Headers   []string
	Rows      []Row
}

// ParseWorkbook decodes an uploaded binary spreadsheet, selects the data
// sheet and materializes its cells. Native date cells (numeric cells styled
// with a date number format) come back as CellDate.
func ParseWorkbook(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("não foi possível ler o arquivo enviado: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoDataSheet
	}

	sheet, err := selectDataSheet(f, sheets)
	if err != nil {
		return nil, err
	}

	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("não foi possível ler a planilha %q: %w", sheet, err)
	}
	if len(grid) == 0 {
		return nil, ErrNoDataSheet
	}

	headers := make([]string, len(grid[0]))
	for i, raw := range grid[0] {
		headers[i] = strings.TrimSpace(raw)
	}

	rows := make([]Row, 0, len(grid)-1)
	for i := 1; i < len(grid); i++ {
		row := Row{Number: i + 1, Cells: make([]Cell, len(grid[i]))}
		for j, raw := range grid[i] {
			row.Cells[j] = materializeCell(f, sheet, j+1, i+1, raw)
		}
		if row.isBlank() {
			continue
		}
		rows = append(rows, row)
	}

	return &Workbook{SheetName: sheet, Headers: headers, Rows: rows}, nil
}

// selectDataSheet prefers the first sheet whose name carries a data keyword.
// Multi-sheet workbooks without a keyword match fall back to the second
// sheet, on the assumption the first is instructional. A single-sheet
// workbook must hold at least one non-empty row beyond the header.
func selectDataSheet(f *excelize.File, sheets []string) (string, error) {
	if len(sheets) > 1 {
		for _, sheet := range sheets {
			name := strings.ToLower(sheet)
			for _, keyword := range dataSheetKeywords {
				if strings.Contains(name, keyword) {
					return sheet, nil
				}
			}
		}
		return sheets[1], nil
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return "", fmt.Errorf("não foi possível ler a planilha %q: %w", sheets[0], err)
	}
	for i := 1; i < len(rows); i++ {
		for _, raw := range rows[i] {
			if strings.TrimSpace(raw) != "" {
				return sheets[0], nil
			}
		}
	}
	return "", ErrNoDataSheet
}

func materializeCell(f *excelize.File, sheet string, col, row int, raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{}
	}

	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return textCell(trimmed)
	}

	cellType, err := f.GetCellType(sheet, axis)
	if err == nil {
		switch cellType {
		case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
			return textCell(trimmed)
		}
	}

	number, parseErr := strconv.ParseFloat(trimmed, 64)
	if parseErr != nil {
		return textCell(trimmed)
	}

	if isDateStyled(f, sheet, axis) {
		when, convErr := excelize.ExcelDateToTime(number, false)
		if convErr == nil {
			return dateCell(when)
		}
	}
	return numberCell(number)
}

// Builtin number formats 14–22 and 45–47 are the date/time formats.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true,
	19: true, 20: true, 21: true, 22: true,
	45: true, 46: true, 47: true,
}

func isDateStyled(f *excelize.File, sheet, axis string) bool {
	styleID, err := f.GetCellStyle(sheet, axis)
	if err != nil {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if builtinDateFormats[style.NumFmt] {
		return true
	}
	if style.CustomNumFmt != nil {
		return customFormatIsDate(*style.CustomNumFmt)
	}
	return false
}

func customFormatIsDate(format string) bool {
	lowered := strings.ToLower(format)
	// Literal text in the format is quoted; strip it before scanning for
	// date tokens so e.g. "kg" units do not read as date codes.
	var sb strings.Builder
	inQuote := false
	for _, r := range lowered {
		if r == '"' {
			inQuote = !inQuote
			continue
		}
		if !inQuote {
			sb.WriteRune(r)
		}
	}
	stripped := sb.String()
	return strings.ContainsAny(stripped, "ymd") && !strings.Contains(stripped, "#")
}
