package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
)

func TestModuleDeleteProtections(t *testing.T) {
	env := newTestEnv(t, "960001010")
	ctx := t.Context()

	install := env.mustModule(t, "960001010", 1)
	scheduled := env.mustModule(t, "MOD-SCHED", 3)
	free := env.mustModule(t, "MOD-FREE", 2)

	env.mustCohort(t, "T-DEL", date(2026, time.May, 4), nil, 3, []CohortBlockInput{
		{ModuleID: scheduled.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3},
	})

	t.Run("installation module never goes away", func(t *testing.T) {
		err := env.catalog.Delete(ctx, install.ID)
		if !apierr.IsCode(err, apierr.CodeConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("module used in cohort blocks is kept", func(t *testing.T) {
		err := env.catalog.Delete(ctx, scheduled.ID)
		if !apierr.IsCode(err, apierr.CodeConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("unreferenced module is removed", func(t *testing.T) {
		if err := env.catalog.Delete(ctx, free.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := env.moduleRepo.GetByID(ctx, env.db, free.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Fatalf("expected module gone, got %v", err)
		}
	})

	t.Run("unknown module", func(t *testing.T) {
		err := env.catalog.Delete(ctx, free.ID)
		if !apierr.IsCode(err, apierr.CodeNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}
