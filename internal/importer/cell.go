package importer

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// CellKind classifies a spreadsheet cell value after parsing.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	// CellDate is a numeric cell whose number format marks it as a date.
	// These carry the binary spreadsheet epoch quirk; see DateString.
	CellDate
)

// Cell is one raw spreadsheet cell value.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Date   time.Time
}

func textCell(value string) Cell    { return Cell{Kind: CellText, Text: value} }
func numberCell(value float64) Cell { return Cell{Kind: CellNumber, Number: value} }
func dateCell(value time.Time) Cell { return Cell{Kind: CellDate, Date: value} }

// IsEmpty reports whether the cell holds no usable value.
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellText:
		return strings.TrimSpace(c.Text) == ""
	default:
		return false
	}
}

// String renders the cell for display in error messages and for textual
// field transforms. Numbers render without a decimal point when integral.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return strings.TrimSpace(c.Text)
	case CellNumber:
		return cast.ToString(c.Number)
	case CellDate:
		return c.Date.Format("2006-01-02")
	default:
		return ""
	}
}

// Float coerces the cell to a number. Textual cells accept a Brazilian
// decimal comma.
func (c Cell) Float() (float64, bool) {
	switch c.Kind {
	case CellNumber:
		return c.Number, true
	case CellText:
		cleaned := strings.TrimSpace(strings.ReplaceAll(c.Text, ",", "."))
		value, err := cast.ToFloat64E(cleaned)
		if err != nil {
			return 0, false
		}
		return value, true
	default:
		return 0, false
	}
}

// Row is one data row of the selected sheet. Number is the 1-based sheet
// row (header counted as row 1), preserved so reported positions match
// what the user sees in the spreadsheet.
type Row struct {
	Number int
	Cells  []Cell
}

// Cell returns the cell at the given column index, or an empty cell when
// the row is ragged.
func (r Row) Cell(idx int) Cell {
	if idx < 0 || idx >= len(r.Cells) {
		return Cell{}
	}
	return r.Cells[idx]
}

func (r Row) isBlank() bool {
	for _, cell := range r.Cells {
		if !cell.IsEmpty() {
			return false
		}
	}
	return true
}
