package services

import (
	"context"
	"testing"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

func TestBootstrapApplyCurrentData(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	dormant := &types.Company{Name: "Empresa Antiga", Status: types.CompanyInativo, PriorityLevel: "Normal", Modality: "Turma_Online"}
	if err := env.companyRepo.Create(context.Background(), env.db, dormant); err != nil {
		t.Fatalf("seed company: %v", err)
	}
	existing := env.mustModule(t, "MOD-A", 2)

	input := BootstrapInput{
		Clients: []string{"Empresa Antiga", "Empresa Nova"},
		Modules: []ModuleSeed{
			{Code: "MOD-A", Category: "Treinamento", Name: "Modulo A Revisto", DurationDays: 4},
			{Code: "MOD-B", Name: "Modulo B"},
		},
	}
	summary, err := env.bootstrap.ApplyCurrentData(ctx, input)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if summary.ClientsUpserted != 2 || summary.ModulesUpserted != 2 {
		t.Fatalf("expected 2 clients and 2 modules, got %d/%d", summary.ClientsUpserted, summary.ModulesUpserted)
	}
	// Two companies times two modules, none of them seeded with progress yet.
	if summary.ProgressRowsCreated != 4 {
		t.Fatalf("expected 4 progress rows, got %d", summary.ProgressRowsCreated)
	}

	revived, err := env.companyRepo.GetByName(ctx, env.db, "Empresa Antiga")
	if err != nil {
		t.Fatalf("get company: %v", err)
	}
	if revived.Status != types.CompanyAtivo {
		t.Fatalf("expected revived company to be Ativo, got %s", revived.Status)
	}

	updated, err := env.moduleRepo.GetByID(ctx, env.db, existing.ID)
	if err != nil {
		t.Fatalf("get module: %v", err)
	}
	if updated.Name != "Modulo A Revisto" || updated.DurationDays != 4 {
		t.Fatalf("expected module updated in place, got %q / %d days", updated.Name, updated.DurationDays)
	}
	if created, err := env.moduleRepo.GetByCode(ctx, env.db, "MOD-B"); err != nil {
		t.Fatalf("get seeded module: %v", err)
	} else if created.Category != "Geral" {
		t.Fatalf("expected default category Geral, got %q", created.Category)
	}

	t.Run("second run is a no-op for progress rows", func(t *testing.T) {
		summary, err := env.bootstrap.ApplyCurrentData(ctx, input)
		if err != nil {
			t.Fatalf("bootstrap: %v", err)
		}
		if summary.ProgressRowsCreated != 0 {
			t.Fatalf("expected no new progress rows, got %d", summary.ProgressRowsCreated)
		}
	})

	t.Run("empty client name is rejected", func(t *testing.T) {
		_, err := env.bootstrap.ApplyCurrentData(ctx, BootstrapInput{Clients: []string{""}})
		if !apierr.IsCode(err, apierr.CodeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
