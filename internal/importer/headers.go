package importer

import "strings"

// headerMatchThreshold is the fraction of expected headers that must appear
// in the uploaded file. Headers are free text and routinely edited by users,
// so exact matching is too brittle; below this ratio the file is presumed to
// be the wrong template.
const headerMatchThreshold = 0.70

// headerMatchRatio reports matches/expected. An expected header matches when
// any discovered header contains it as a substring, case-insensitive and
// with its trailing required marker stripped.
func headerMatchRatio(found, expected []string) float64 {
	if len(expected) == 0 {
		return 1
	}

	lowered := make([]string, 0, len(found))
	for _, header := range found {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(header)))
	}

	matches := 0
	for _, want := range expected {
		key := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(want), "*")))
		for _, have := range lowered {
			if key != "" && strings.Contains(have, key) {
				matches++
				break
			}
		}
	}
	return float64(matches) / float64(len(expected))
}

// entitySignatures maps pairs of telltale header keywords to the entity
// whose template they belong to. Keywords are compared against
// accent-stripped, lower-cased headers.
var entitySignatures = []struct {
	keywords []string
	entity   Entity
}{
	{[]string{"placa", "marca"}, EntityVeiculos},
	{[]string{"placa", "modelo"}, EntityVeiculos},
	{[]string{"cpf", "cnh"}, EntityFuncionarios},
	{[]string{"cpf", "codigo"}, EntityVendedores},
	{[]string{"cpf", "regiao"}, EntityVendedores},
	{[]string{"origem", "destino"}, EntityRotas},
	{[]string{"funcionario", "motivo"}, EntityFolgas},
	{[]string{"data inicio", "data fim"}, EntityFolgas},
	{[]string{"estado", "distancia"}, EntityCidades},
	{[]string{"nome", "estado"}, EntityCidades},
}

// DetectEntity guesses which entity's template a header row belongs to,
// used to tell the user which importer their file actually fits.
func DetectEntity(headers []string) (Entity, bool) {
	normalized := make([]string, 0, len(headers))
	for _, header := range headers {
		normalized = append(normalized, strings.ToLower(stripDiacritics(strings.TrimSpace(header))))
	}

	contains := func(keyword string) bool {
		for _, header := range normalized {
			if strings.Contains(header, keyword) {
				return true
			}
		}
		return false
	}

	for _, sig := range entitySignatures {
		all := true
		for _, keyword := range sig.keywords {
			if !contains(keyword) {
				all = false
				break
			}
		}
		if all {
			return sig.entity, true
		}
	}
	return "", false
}
