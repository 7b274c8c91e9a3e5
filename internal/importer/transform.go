package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticsStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripDiacritics(value string) string {
	stripped, _, err := transform.String(diacriticsStripper, value)
	if err != nil {
		return value
	}
	return stripped
}

// NormalizeName folds a free-text name for uniqueness comparison: Unicode
// decomposition, diacritics and punctuation stripped, whitespace collapsed,
// upper-cased. "São Paulo" and "SAO PAULO" normalize identically.
func NormalizeName(value string) string {
	stripped := stripDiacritics(value)
	var sb strings.Builder
	sb.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(unicode.ToUpper(r))
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// CleanNumeric strips every non-digit character.
func CleanNumeric(value string) string {
	var sb strings.Builder
	sb.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func upperTrim(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

func lowerTrim(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Textual shapes accepted for typed dates. Two-digit years map to 2000+Y
// for Y in [0,29] and 1900+Y for Y in [30,99].
//
// Layouts that look like serialized JavaScript dates are a different case:
// those values originate from binary date cells that went through the
// front end, and carry the same epoch skew as native date cells.
var jsDateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Mon Jan 2 2006 15:04:05 GMT-0700",
}

// DateString resolves one cell into a date-only ISO string ("" for blank
// cells). Native date cells and JavaScript-style date strings are shifted
// forward one day before formatting: the binary spreadsheet date epoch is
// read one day behind local civil time by the parsing layer, and imported
// dates have always been stored with this correction applied. Textual
// D/M/YYYY-family dates are not shifted.
func DateString(c Cell) (string, error) {
	switch c.Kind {
	case CellEmpty:
		return "", nil
	case CellDate:
		return formatShifted(c.Date), nil
	case CellText:
		raw := strings.TrimSpace(c.Text)
		if raw == "" {
			return "", nil
		}
		if when, ok := parseTextualDate(raw); ok {
			return formatDateOnly(when), nil
		}
		if when, ok := parseJSDate(raw); ok {
			return formatShifted(when), nil
		}
		return "", fmt.Errorf("data inválida: %q", raw)
	default:
		return "", fmt.Errorf("data inválida: %q", c.String())
	}
}

func formatShifted(when time.Time) string {
	return formatDateOnly(when.AddDate(0, 0, 1))
}

// formatDateOnly pins the value to local noon before truncating, so a
// timestamp near midnight cannot slip across a day boundary.
func formatDateOnly(when time.Time) string {
	local := time.Date(when.Year(), when.Month(), when.Day(), 12, 0, 0, 0, time.Local)
	return local.Format("2006-01-02")
}

// parseTextualDate accepts YYYY-M-D, D/M/YYYY and D/M/YY. A candidate is
// valid only when rebuilding a date from the parsed components reproduces
// them, which rejects the likes of 31/04.
func parseTextualDate(raw string) (time.Time, bool) {
	var day, month, year int

	switch {
	case strings.Count(raw, "-") == 2:
		parts := strings.Split(raw, "-")
		y, errY := strconv.Atoi(parts[0])
		m, errM := strconv.Atoi(parts[1])
		d, errD := strconv.Atoi(parts[2])
		if errY != nil || errM != nil || errD != nil || len(parts[0]) != 4 {
			return time.Time{}, false
		}
		year, month, day = y, m, d
	case strings.Count(raw, "/") == 2:
		parts := strings.Split(raw, "/")
		d, errD := strconv.Atoi(parts[0])
		m, errM := strconv.Atoi(parts[1])
		y, errY := strconv.Atoi(parts[2])
		if errY != nil || errM != nil || errD != nil {
			return time.Time{}, false
		}
		switch len(parts[2]) {
		case 4:
		case 2:
			if y <= 29 {
				y += 2000
			} else {
				y += 1900
			}
		default:
			return time.Time{}, false
		}
		year, month, day = y, m, d
	default:
		return time.Time{}, false
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	when := time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.Local)
	if when.Year() != year || when.Month() != time.Month(month) || when.Day() != day {
		return time.Time{}, false
	}
	return when, true
}

func parseJSDate(raw string) (time.Time, bool) {
	// JavaScript's Date#toString appends a parenthesized zone name.
	candidate := raw
	if idx := strings.Index(candidate, " ("); idx > 0 {
		candidate = candidate[:idx]
	}
	for _, layout := range jsDateLayouts {
		if when, err := time.Parse(layout, candidate); err == nil {
			return when, true
		}
	}
	return time.Time{}, false
}
