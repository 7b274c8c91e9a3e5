package importer

import (
	"testing"
	"time"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"São Paulo", "SAO PAULO"},
		{"SAO PAULO", "SAO PAULO"},
		{"  uberlândia  ", "UBERLANDIA"},
		{"Patos   de    Minas", "PATOS DE MINAS"},
		{"São-José, do Rio!", "SAOJOSE DO RIO"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanNumeric(t *testing.T) {
	if got := CleanNumeric("529.982.247-25"); got != "52998224725" {
		t.Fatalf("CleanNumeric = %q, want 52998224725", got)
	}
	if got := CleanNumeric("(34) 99999-1234"); got != "34999991234" {
		t.Fatalf("CleanNumeric = %q, want 34999991234", got)
	}
}

func TestDateStringTextualFormats(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"15/01/2024", "2024-01-15"},
		{"2024-01-15", "2024-01-15"},
		{"2024-1-5", "2024-01-05"},
		{"1/2/24", "2024-02-01"},
		{"1/2/85", "1985-02-01"},
	}
	for _, tc := range cases {
		got, err := DateString(textCell(tc.in))
		if err != nil {
			t.Errorf("DateString(%q) returned error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("DateString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDateStringRejectsImpossibleDates(t *testing.T) {
	for _, in := range []string{"31/04/2024", "32/01/2024", "15/13/2024", "abc", "2024/01/15", "15-01-2024"} {
		if _, err := DateString(textCell(in)); err == nil {
			t.Errorf("DateString(%q) accepted an invalid date", in)
		}
	}
}

func TestDateStringShiftsNativeDateCells(t *testing.T) {
	cell := dateCell(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	got, err := DateString(cell)
	if err != nil {
		t.Fatalf("DateString: %v", err)
	}
	if got != "2024-01-16" {
		t.Fatalf("native date cell = %q, want 2024-01-16", got)
	}

	// The same calendar date typed as text must not shift.
	typed, err := DateString(textCell("15/01/2024"))
	if err != nil {
		t.Fatalf("DateString: %v", err)
	}
	if typed != "2024-01-15" {
		t.Fatalf("textual date = %q, want 2024-01-15", typed)
	}
}

func TestDateStringShiftsJSDateStrings(t *testing.T) {
	cases := []string{
		"2024-01-15T00:00:00.000Z",
		"2024-01-15T00:00:00",
		"Mon Jan 15 2024 00:00:00 GMT-0300 (Horário Padrão de Brasília)",
	}
	for _, in := range cases {
		got, err := DateString(textCell(in))
		if err != nil {
			t.Errorf("DateString(%q) returned error: %v", in, err)
			continue
		}
		if got != "2024-01-16" {
			t.Errorf("DateString(%q) = %q, want 2024-01-16", in, got)
		}
	}
}

func TestDateStringBlankCell(t *testing.T) {
	for _, cell := range []Cell{{}, textCell("   ")} {
		got, err := DateString(cell)
		if err != nil {
			t.Fatalf("blank cell returned error: %v", err)
		}
		if got != "" {
			t.Fatalf("blank cell = %q, want empty", got)
		}
	}
}

func TestDateStringRejectsPlainNumbers(t *testing.T) {
	if _, err := DateString(numberCell(45306)); err == nil {
		t.Fatal("unstyled numeric cell accepted as a date")
	}
}

func TestCellFloatAcceptsDecimalComma(t *testing.T) {
	value, ok := textCell("590,5").Float()
	if !ok || value != 590.5 {
		t.Fatalf("Float() = %v, %v, want 590.5, true", value, ok)
	}
	if _, ok := textCell("abc").Float(); ok {
		t.Fatal("Float() accepted non-numeric text")
	}
}
