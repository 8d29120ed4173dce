package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

// Fuzzy text normalization lives entirely at this boundary. Everything
// handed to the repositories downstream is already a canonical enum value.

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeText(value string) string {
	folded, _, err := transform.String(stripMarks, value)
	if err != nil {
		folded = value
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

func normalizeKey(value string) string {
	var b strings.Builder
	for _, r := range normalizeText(value) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parseInt(value string, fallback int) int {
	cleaned := strings.TrimSpace(strings.ReplaceAll(value, ",", "."))
	if cleaned == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return fallback
	}
	return int(parsed)
}

var brDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// parseDate accepts ISO (yyyy-mm-dd) and Brazilian (dd/mm/yyyy) forms.
func parseDate(value string) (time.Time, bool) {
	text := strings.TrimSpace(value)
	if text == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", text); err == nil {
		return t, true
	}
	if m := brDatePattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Day() == day && int(t.Month()) == month {
			return t, true
		}
	}
	return time.Time{}, false
}

func normalizeCompanyStatus(value string) types.CompanyStatus {
	if strings.Contains(normalizeText(value), "inativ") {
		return types.CompanyInativo
	}
	return types.CompanyAtivo
}

func normalizeProgressStatus(value string) types.ProgressStatus {
	text := normalizeText(value)
	switch {
	case text == "":
		return types.ProgressNaoIniciado
	case strings.Contains(text, "conclu"):
		return types.ProgressConcluido
	case strings.Contains(text, "execu"):
		return types.ProgressEmExecucao
	case strings.Contains(text, "planej"):
		return types.ProgressPlanejado
	default:
		return types.ProgressNaoIniciado
	}
}

func normalizeOptionalStatus(value string) types.OptionalProgressStatus {
	text := normalizeText(value)
	switch {
	case strings.Contains(text, "conclu"):
		return types.OptionalConcluido
	case strings.Contains(text, "execu"):
		return types.OptionalEmExecucao
	default:
		return types.OptionalPlanejado
	}
}

func normalizeAllocationStatus(value string) types.AllocationStatus {
	text := normalizeText(value)
	switch {
	case strings.Contains(text, "execu"):
		return types.AllocationExecutado
	case strings.Contains(text, "confirm"):
		return types.AllocationConfirmado
	case strings.Contains(text, "cancel"):
		return types.AllocationCancelado
	default:
		return types.AllocationPrevisto
	}
}

func normalizeCohortStatus(value string) types.CohortStatus {
	text := normalizeText(value)
	switch {
	case strings.Contains(text, "confirm"):
		return types.CohortConfirmada
	case strings.Contains(text, "conclu"):
		return types.CohortConcluida
	case strings.Contains(text, "cancel"):
		return types.CohortCancelada
	case strings.Contains(text, "quorum"):
		return types.CohortAguardandoQuorum
	default:
		return types.CohortPlanejada
	}
}

func parseMandatory(value string) bool {
	text := normalizeText(value)
	return strings.Contains(text, "sim") || strings.Contains(text, "obrig")
}
