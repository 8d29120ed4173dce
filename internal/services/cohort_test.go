package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/schedule"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

func TestCreateCohortRejectsBadBlocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	m1 := env.mustModule(t, "MOD-1", 3)
	m2 := env.mustModule(t, "MOD-2", 2)

	cases := []struct {
		name   string
		blocks []CohortBlockInput
	}{
		{name: "no blocks", blocks: nil},
		{
			name: "gap in offsets",
			blocks: []CohortBlockInput{
				{ModuleID: m1.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3},
				{ModuleID: m2.ID, OrderInCohort: 2, StartDayOffset: 5, DurationDays: 2},
			},
		},
		{
			name: "repeated module",
			blocks: []CohortBlockInput{
				{ModuleID: m1.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3},
				{ModuleID: m1.ID, OrderInCohort: 2, StartDayOffset: 4, DurationDays: 2},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.cohorts.Create(ctx, CreateCohortInput{
				Code:              "T-" + tc.name,
				Name:              "Turma",
				StartDate:         date(2026, time.March, 2),
				CapacityCompanies: 3,
				Blocks:            tc.blocks,
			})
			if !apierr.IsCode(err, apierr.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestTechnicianConflictSymmetry(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	m1 := env.mustModule(t, "MOD-1", 5)
	m2 := env.mustModule(t, "MOD-2", 5)
	tech := env.mustTechnician(t, "Tecnico Um")

	// Monday 2026-03-02, five business days: Mar 2..6.
	blocksA := []CohortBlockInput{{ModuleID: m1.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 5}}
	env.mustCohort(t, "T-A", date(2026, time.March, 2), &tech.ID, 3, blocksA)

	// Thursday 2026-03-05 overlaps T-A on Mar 5 and 6.
	spansB := []schedule.BlockSpan{{StartDayOffset: 1, DurationDays: 5}}
	conflict, err := env.cohorts.FindTechnicianConflict(ctx, nil, tech.ID, date(2026, time.March, 5), spansB, uuid.Nil)
	if err != nil {
		t.Fatalf("conflict check: %v", err)
	}
	if conflict == nil || conflict.CohortCode != "T-A" {
		t.Fatalf("expected conflict with T-A, got %+v", conflict)
	}
	if got := conflict.OverlapDate; !got.Equal(date(2026, time.March, 5)) {
		t.Fatalf("expected earliest overlap 2026-03-05, got %s", got)
	}

	// Creating B as a cohort also fails, and the check is symmetric: A's
	// timeline against existing-B reports the same overlap.
	_, err = env.cohorts.Create(ctx, CreateCohortInput{
		Code:              "T-B",
		Name:              "Turma B",
		StartDate:         date(2026, time.March, 5),
		TechnicianID:      &tech.ID,
		CapacityCompanies: 3,
		Blocks:            []CohortBlockInput{{ModuleID: m2.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 5}},
	})
	if !apierr.IsCode(err, apierr.CodeConflict) {
		t.Fatalf("expected conflict error creating overlapping cohort, got %v", err)
	}

	cohortA, err := env.cohortRepo.GetByCode(ctx, nil, "T-A")
	if err != nil {
		t.Fatalf("load T-A: %v", err)
	}
	conflict, err = env.cohorts.FindTechnicianConflict(ctx, nil, tech.ID, cohortA.StartDate,
		[]schedule.BlockSpan{{StartDayOffset: 1, DurationDays: 5}}, cohortA.ID)
	if err != nil {
		t.Fatalf("reverse conflict check: %v", err)
	}
	// Only T-A exists for the technician, so excluding it leaves nothing.
	if conflict != nil {
		t.Fatalf("expected no conflict after excluding self, got %+v", conflict)
	}
}

func TestTechnicianConflictSkipsCancelledAndDisjoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	m1 := env.mustModule(t, "MOD-1", 5)
	tech := env.mustTechnician(t, "Tecnico Dois")

	cohort := env.mustCohort(t, "T-C", date(2026, time.March, 2), &tech.ID, 3,
		[]CohortBlockInput{{ModuleID: m1.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 5}})

	t.Run("disjoint timeline does not conflict", func(t *testing.T) {
		conflict, err := env.cohorts.FindTechnicianConflict(ctx, nil, tech.ID, date(2026, time.March, 9),
			[]schedule.BlockSpan{{StartDayOffset: 1, DurationDays: 5}}, uuid.Nil)
		if err != nil {
			t.Fatalf("conflict check: %v", err)
		}
		if conflict != nil {
			t.Fatalf("expected no conflict for the following week, got %+v", conflict)
		}
	})

	t.Run("cancelled cohorts never conflict", func(t *testing.T) {
		cancelled := types.CohortCancelada
		if _, err := env.cohorts.Update(ctx, cohort.ID, UpdateCohortInput{Status: &cancelled}); err != nil {
			t.Fatalf("cancel cohort: %v", err)
		}
		conflict, err := env.cohorts.FindTechnicianConflict(ctx, nil, tech.ID, date(2026, time.March, 2),
			[]schedule.BlockSpan{{StartDayOffset: 1, DurationDays: 5}}, uuid.Nil)
		if err != nil {
			t.Fatalf("conflict check: %v", err)
		}
		if conflict != nil {
			t.Fatalf("expected no conflict against a cancelled cohort, got %+v", conflict)
		}
	})

	t.Run("unknown technician is a not found error", func(t *testing.T) {
		_, err := env.cohorts.FindTechnicianConflict(ctx, nil, uuid.New(), date(2026, time.March, 2),
			[]schedule.BlockSpan{{StartDayOffset: 1, DurationDays: 5}}, uuid.Nil)
		if !apierr.IsCode(err, apierr.CodeNotFound) {
			t.Fatalf("expected not found error, got %v", err)
		}
	})
}

func TestUpdateCohortBlockGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	m1 := env.mustModule(t, "MOD-1", 3)
	m2 := env.mustModule(t, "MOD-2", 2)
	cohort := env.mustCohort(t, "T-UPD", date(2026, time.March, 2), nil, 3, []CohortBlockInput{
		{ModuleID: m1.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3},
		{ModuleID: m2.ID, OrderInCohort: 2, StartDayOffset: 4, DurationDays: 2},
	})
	company := env.mustCompany(t, "Empresa Upd")
	if _, err := env.allocations.Create(ctx, cohort.ID, CreateAllocationInput{CompanyID: company.ID, ModuleID: m2.ID, EntryDay: 4}); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	t.Run("removing an allocated module is rejected", func(t *testing.T) {
		_, err := env.cohorts.Update(ctx, cohort.ID, UpdateCohortInput{
			Blocks: []CohortBlockInput{{ModuleID: m1.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3}},
		})
		if !apierr.IsCode(err, apierr.CodeConflict) {
			t.Fatalf("expected conflict error, got %v", err)
		}
	})

	t.Run("pushing a block past an allocation entry day is rejected", func(t *testing.T) {
		_, err := env.cohorts.Update(ctx, cohort.ID, UpdateCohortInput{
			Blocks: []CohortBlockInput{
				{ModuleID: m1.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 5},
				{ModuleID: m2.ID, OrderInCohort: 2, StartDayOffset: 6, DurationDays: 2},
			},
		})
		if !apierr.IsCode(err, apierr.CodeConflict) {
			t.Fatalf("expected conflict error, got %v", err)
		}
	})

	t.Run("cancelled allocations do not block changes", func(t *testing.T) {
		row, err := env.allocationRepo.GetByTriple(ctx, nil, cohort.ID, company.ID, m2.ID)
		if err != nil {
			t.Fatalf("load allocation: %v", err)
		}
		if _, err := env.allocations.UpdateStatus(ctx, row.ID, UpdateAllocationStatusInput{Status: types.AllocationCancelado}); err != nil {
			t.Fatalf("cancel allocation: %v", err)
		}
		if _, err := env.cohorts.Update(ctx, cohort.ID, UpdateCohortInput{
			Blocks: []CohortBlockInput{{ModuleID: m1.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3}},
		}); err != nil {
			t.Fatalf("expected block replacement to pass, got %v", err)
		}
	})
}

func TestCohortLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	m1 := env.mustModule(t, "MOD-1", 3)
	cohort := env.mustCohort(t, "T-LIFE", date(2026, time.March, 6), nil, 3,
		[]CohortBlockInput{{ModuleID: m1.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3}})

	t.Run("detail resolves business dates", func(t *testing.T) {
		detail, err := env.cohorts.Get(ctx, cohort.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		// Friday start: Fri, Mon, Tue.
		want := []time.Time{date(2026, time.March, 6), date(2026, time.March, 9), date(2026, time.March, 10)}
		if len(detail.Dates) != len(want) {
			t.Fatalf("expected %d dates, got %d", len(want), len(detail.Dates))
		}
		for i := range want {
			if !detail.Dates[i].Equal(want[i]) {
				t.Fatalf("date %d: expected %s, got %s", i, want[i], detail.Dates[i])
			}
		}
	})

	t.Run("duplicate code is rejected", func(t *testing.T) {
		_, err := env.cohorts.Create(ctx, CreateCohortInput{
			Code:              "T-LIFE",
			Name:              "Outra",
			StartDate:         date(2026, time.April, 1),
			CapacityCompanies: 3,
			Blocks:            []CohortBlockInput{{ModuleID: m1.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3}},
		})
		if !apierr.IsCode(err, apierr.CodeConflict) {
			t.Fatalf("expected conflict error, got %v", err)
		}
	})

	t.Run("delete then get is not found", func(t *testing.T) {
		if err := env.cohorts.Delete(ctx, cohort.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := env.cohorts.Get(ctx, cohort.ID); !apierr.IsCode(err, apierr.CodeNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		if err := env.cohorts.Delete(ctx, cohort.ID); !apierr.IsCode(err, apierr.CodeNotFound) {
			t.Fatalf("expected not found on second delete, got %v", err)
		}
	})
}
