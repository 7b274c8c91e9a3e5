package importer

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Covers both the old AAA9999 plate format and Mercosul AAA9A99.
	placaPattern = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z0-9][0-9]{2}$`)
)

var brazilianUFs = map[string]bool{
	"AC": true, "AL": true, "AP": true, "AM": true, "BA": true, "CE": true,
	"DF": true, "ES": true, "GO": true, "MA": true, "MT": true, "MS": true,
	"MG": true, "PA": true, "PB": true, "PR": true, "PE": true, "PI": true,
	"RJ": true, "RN": true, "RS": true, "RO": true, "RR": true, "SC": true,
	"SP": true, "SE": true, "TO": true,
}

// ValidCPF checks length, the all-same-digit degenerate cases and both
// check digits of a CPF, ignoring punctuation.
func ValidCPF(value string) bool {
	digits := CleanNumeric(value)
	if len(digits) != 11 {
		return false
	}

	same := true
	for i := 1; i < 11; i++ {
		if digits[i] != digits[0] {
			same = false
			break
		}
	}
	if same {
		return false
	}

	return cpfCheckDigit(digits, 9) == int(digits[9]-'0') &&
		cpfCheckDigit(digits, 10) == int(digits[10]-'0')
}

func cpfCheckDigit(digits string, length int) int {
	sum := 0
	for i := 0; i < length; i++ {
		sum += int(digits[i]-'0') * (length + 1 - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}

// ValidPhone accepts Brazilian landline and mobile numbers (10–11 digits).
func ValidPhone(value string) bool {
	digits := CleanNumeric(value)
	return len(digits) == 10 || len(digits) == 11
}

func ValidEmail(value string) bool {
	return emailPattern.MatchString(strings.TrimSpace(value))
}

// NormalizePlaca strips separators and upper-cases a vehicle plate.
func NormalizePlaca(value string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(value))
	return strings.ToUpper(cleaned)
}

func ValidPlaca(value string) bool {
	return placaPattern.MatchString(NormalizePlaca(value))
}

func ValidUF(value string) bool {
	return brazilianUFs[upperTrim(value)]
}

type uniqueStatus int

const (
	uniqueOK uniqueStatus = iota
	uniqueInStore
	uniqueInFile
)

// uniqueSet tracks one uniqueness key against both the records already in
// the store and the rows previously seen in the same file. Rows must be
// checked in sheet order: the first occurrence of an in-file duplicate key
// passes, later ones report uniqueInFile.
type uniqueSet struct {
	existing map[string]bool
	seen     map[string]bool
}

func newUniqueSet() *uniqueSet {
	return &uniqueSet{existing: map[string]bool{}, seen: map[string]bool{}}
}

func (u *uniqueSet) addExisting(key string) {
	if key != "" {
		u.existing[key] = true
	}
}

// check reports the key's status and records it as seen. The store check
// runs first so a key present in both reports as already existing.
func (u *uniqueSet) check(key string) uniqueStatus {
	if key == "" {
		return uniqueOK
	}
	if u.existing[key] {
		return uniqueInStore
	}
	if u.seen[key] {
		return uniqueInFile
	}
	u.seen[key] = true
	return uniqueOK
}
