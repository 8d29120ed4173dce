package importer

import (
	"testing"
	"time"

	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

func TestNormalizeKeyFoldsAccentsAndPunctuation(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "accented header", input: "Código_Modulo", want: "codigomodulo"},
		{name: "plain header", input: "Codigo_Modulo", want: "codigomodulo"},
		{name: "spaces and case", input: "  Data Início ", want: "datainicio"},
		{name: "cedilla", input: "Alocação", want: "alocacao"},
		{name: "empty", input: "", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeKey(tc.input); got != tc.want {
				t.Fatalf("normalizeKey(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestStatusNormalizers(t *testing.T) {
	t.Run("company", func(t *testing.T) {
		cases := []struct {
			input string
			want  types.CompanyStatus
		}{
			{"Ativo", types.CompanyAtivo},
			{"INATIVO", types.CompanyInativo},
			{"inativa", types.CompanyInativo},
			{"", types.CompanyAtivo},
			{"qualquer coisa", types.CompanyAtivo},
		}
		for _, tc := range cases {
			if got := normalizeCompanyStatus(tc.input); got != tc.want {
				t.Fatalf("normalizeCompanyStatus(%q) = %q, want %q", tc.input, got, tc.want)
			}
		}
	})

	t.Run("progress", func(t *testing.T) {
		cases := []struct {
			input string
			want  types.ProgressStatus
		}{
			{"", types.ProgressNaoIniciado},
			{"Concluído", types.ProgressConcluido},
			{"CONCLUIDO", types.ProgressConcluido},
			{"Em execução", types.ProgressEmExecucao},
			{"Planejado", types.ProgressPlanejado},
			{"Não iniciado", types.ProgressNaoIniciado},
			{"desconhecido", types.ProgressNaoIniciado},
		}
		for _, tc := range cases {
			if got := normalizeProgressStatus(tc.input); got != tc.want {
				t.Fatalf("normalizeProgressStatus(%q) = %q, want %q", tc.input, got, tc.want)
			}
		}
	})

	t.Run("optional", func(t *testing.T) {
		cases := []struct {
			input string
			want  types.OptionalProgressStatus
		}{
			{"", types.OptionalPlanejado},
			{"Concluído", types.OptionalConcluido},
			{"em execucao", types.OptionalEmExecucao},
			{"qualquer", types.OptionalPlanejado},
		}
		for _, tc := range cases {
			if got := normalizeOptionalStatus(tc.input); got != tc.want {
				t.Fatalf("normalizeOptionalStatus(%q) = %q, want %q", tc.input, got, tc.want)
			}
		}
	})

	t.Run("allocation", func(t *testing.T) {
		cases := []struct {
			input string
			want  types.AllocationStatus
		}{
			{"Executado", types.AllocationExecutado},
			{"execução concluída?", types.AllocationExecutado},
			{"Confirmado", types.AllocationConfirmado},
			{"CANCELADO", types.AllocationCancelado},
			{"", types.AllocationPrevisto},
			{"previsto", types.AllocationPrevisto},
		}
		for _, tc := range cases {
			if got := normalizeAllocationStatus(tc.input); got != tc.want {
				t.Fatalf("normalizeAllocationStatus(%q) = %q, want %q", tc.input, got, tc.want)
			}
		}
	})

	t.Run("cohort", func(t *testing.T) {
		cases := []struct {
			input string
			want  types.CohortStatus
		}{
			{"Confirmada", types.CohortConfirmada},
			{"Concluída", types.CohortConcluida},
			{"cancelada", types.CohortCancelada},
			{"Aguardando quórum", types.CohortAguardandoQuorum},
			{"", types.CohortPlanejada},
			{"planejada", types.CohortPlanejada},
		}
		for _, tc := range cases {
			if got := normalizeCohortStatus(tc.input); got != tc.want {
				t.Fatalf("normalizeCohortStatus(%q) = %q, want %q", tc.input, got, tc.want)
			}
		}
	})
}

func TestParseMandatory(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"Sim", true},
		{"SIM", true},
		{"Obrigatório", true},
		{"obrigatorio", true},
		{"Não", false},
		{"", false},
		{"opcional", false},
	}
	for _, tc := range cases {
		if got := parseMandatory(tc.input); got != tc.want {
			t.Fatalf("parseMandatory(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{name: "iso", input: "2026-03-02", want: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "brazilian", input: "02/03/2026", want: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "brazilian single digit", input: "2/3/2026", want: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "empty", input: "", ok: false},
		{name: "garbage", input: "amanha", ok: false},
		{name: "invalid day", input: "32/01/2026", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseDate(tc.input)
			if ok != tc.ok {
				t.Fatalf("parseDate(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if ok && !got.Equal(tc.want) {
				t.Fatalf("parseDate(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	cases := []struct {
		input    string
		fallback int
		want     int
	}{
		{"3", 1, 3},
		{"2,5", 1, 2},
		{" 4 ", 1, 4},
		{"", 6, 6},
		{"abc", 6, 6},
	}
	for _, tc := range cases {
		if got := parseInt(tc.input, tc.fallback); got != tc.want {
			t.Fatalf("parseInt(%q, %d) = %d, want %d", tc.input, tc.fallback, got, tc.want)
		}
	}
}

func TestPickMatchesHeaderAliases(t *testing.T) {
	row := sheetRow{
		"Código_Modulo": "mod-01",
		"Diárias":       "3",
		"Observações":   "ok",
	}
	if got := pick(row, "Codigo_Modulo", "Código_Modulo"); got != "mod-01" {
		t.Fatalf("pick code = %q, want mod-01", got)
	}
	if got := pick(row, "Diarias", "Diárias"); got != "3" {
		t.Fatalf("pick diarias = %q, want 3", got)
	}
	if got := pick(row, "Observacoes", "Observações"); got != "ok" {
		t.Fatalf("pick notes = %q, want ok", got)
	}
	if got := pick(row, "Inexistente"); got != "" {
		t.Fatalf("pick missing = %q, want empty", got)
	}
}
