package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

func TestTechnicianMonthlyLoad(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	env.technicians.(*technicianService).now = func() time.Time { return date(2026, time.May, 10) }

	module := env.mustModule(t, "MOD-A", 2)
	tech := env.mustTechnician(t, "Joana")
	blocks := []CohortBlockInput{{ModuleID: module.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 2}}

	env.mustCohort(t, "T-MAY-1", date(2026, time.May, 4), &tech.ID, 3, blocks)
	env.mustCohort(t, "T-MAY-2", date(2026, time.May, 18), &tech.ID, 3, blocks)
	cancelled := env.mustCohort(t, "T-MAY-3", date(2026, time.May, 25), &tech.ID, 3, blocks)
	env.mustCohort(t, "T-JUN", date(2026, time.June, 8), &tech.ID, 3, blocks)

	status := types.CohortCancelada
	if _, err := env.cohorts.Update(ctx, cancelled.ID, UpdateCohortInput{Status: &status}); err != nil {
		t.Fatalf("cancel cohort: %v", err)
	}

	detail, err := env.technicians.Get(ctx, tech.ID)
	if err != nil {
		t.Fatalf("get technician: %v", err)
	}
	if detail.MonthlyLoad != 2 {
		t.Fatalf("expected monthly load 2, got %d", detail.MonthlyLoad)
	}
}

func TestTechnicianSkillsSortedByCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	mb := env.mustModule(t, "MOD-B", 1)
	ma := env.mustModule(t, "MOD-A", 1)
	tech, err := env.technicians.Create(ctx, TechnicianInput{
		Name:           "Carlos",
		SkillModuleIDs: []uuid.UUID{mb.ID, ma.ID},
	})
	if err != nil {
		t.Fatalf("create technician: %v", err)
	}

	detail, err := env.technicians.Get(ctx, tech.ID)
	if err != nil {
		t.Fatalf("get technician: %v", err)
	}
	if len(detail.Skills) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(detail.Skills))
	}
	if detail.Skills[0].Code != ma.Code || detail.Skills[1].Code != mb.Code {
		t.Fatalf("expected skills sorted by code, got %s then %s", detail.Skills[0].Code, detail.Skills[1].Code)
	}
}

func TestTechnicianCalendar(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	module := env.mustModule(t, "MOD-A", 3)
	tech := env.mustTechnician(t, "Rita")
	cohort := env.mustCohort(t, "T-CAL", date(2026, time.July, 6), &tech.ID, 3, []CohortBlockInput{
		{ModuleID: module.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3},
	})
	company := env.mustCompany(t, "Empresa Agenda")
	if _, err := env.allocations.Create(ctx, cohort.ID, CreateAllocationInput{CompanyID: company.ID, ModuleID: module.ID, EntryDay: 1}); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	entries, err := env.technicians.Calendar(ctx, tech.ID, nil, nil)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 calendar entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Occupancy != 1 {
		t.Fatalf("expected occupancy 1, got %d", entry.Occupancy)
	}
	if len(entry.Blocks) != 1 || entry.Blocks[0].ModuleCode != module.Code {
		t.Fatalf("expected block with module code %s, got %+v", module.Code, entry.Blocks)
	}

	t.Run("range excludes cohorts outside the window", func(t *testing.T) {
		from := date(2026, time.August, 1)
		entries, err := env.technicians.Calendar(ctx, tech.ID, &from, nil)
		if err != nil {
			t.Fatalf("calendar: %v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("expected no entries from August on, got %d", len(entries))
		}
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		from := date(2026, time.August, 1)
		to := date(2026, time.July, 1)
		_, err := env.technicians.Calendar(ctx, tech.ID, &from, &to)
		if !apierr.IsCode(err, apierr.CodeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
