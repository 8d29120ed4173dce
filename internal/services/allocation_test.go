package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

func TestDirectAllocationCapacityBoundary(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	m1 := env.mustModule(t, "MOD-A", 3)
	m2 := env.mustModule(t, "MOD-B", 2)
	cohort := env.mustCohort(t, "T-CAP", date(2026, time.March, 2), nil, 2, []CohortBlockInput{
		{ModuleID: m1.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3},
		{ModuleID: m2.ID, OrderInCohort: 2, StartDayOffset: 4, DurationDays: 2},
	})
	x := env.mustCompany(t, "Empresa X")
	y := env.mustCompany(t, "Empresa Y")
	z := env.mustCompany(t, "Empresa Z")

	if _, err := env.allocations.Create(ctx, cohort.ID, CreateAllocationInput{CompanyID: x.ID, ModuleID: m1.ID, EntryDay: 1}); err != nil {
		t.Fatalf("allocate X: %v", err)
	}
	if _, err := env.allocations.Create(ctx, cohort.ID, CreateAllocationInput{CompanyID: y.ID, ModuleID: m1.ID, EntryDay: 1}); err != nil {
		t.Fatalf("allocate Y: %v", err)
	}

	_, err := env.allocations.Create(ctx, cohort.ID, CreateAllocationInput{CompanyID: z.ID, ModuleID: m1.ID, EntryDay: 1})
	if !apierr.IsCode(err, apierr.CodeCapacity) {
		t.Fatalf("expected capacity error for third company, got %v", err)
	}

	// A company already in the cohort never trips capacity, even on a
	// different module.
	if _, err := env.allocations.Create(ctx, cohort.ID, CreateAllocationInput{CompanyID: x.ID, ModuleID: m2.ID, EntryDay: 4}); err != nil {
		t.Fatalf("re-allocate X on second module: %v", err)
	}
}

func TestDirectAllocationValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	m1 := env.mustModule(t, "MOD-A", 3)
	outside := env.mustModule(t, "MOD-OUT", 1)
	cohort := env.mustCohort(t, "T-VAL", date(2026, time.March, 2), nil, 5, []CohortBlockInput{
		{ModuleID: m1.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3},
	})
	company := env.mustCompany(t, "Empresa Alfa")

	t.Run("module outside the cohort", func(t *testing.T) {
		_, err := env.allocations.Create(ctx, cohort.ID, CreateAllocationInput{CompanyID: company.ID, ModuleID: outside.ID, EntryDay: 1})
		if !apierr.IsCode(err, apierr.CodeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("entry day before block start", func(t *testing.T) {
		_, err := env.allocations.Create(ctx, cohort.ID, CreateAllocationInput{CompanyID: company.ID, ModuleID: m1.ID, EntryDay: 0})
		if !apierr.IsCode(err, apierr.CodeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("disabled module", func(t *testing.T) {
		if err := env.companyRepo.SetActivation(ctx, env.db, &types.CompanyModuleActivation{
			CompanyID: company.ID, ModuleID: m1.ID, IsEnabled: false,
		}); err != nil {
			t.Fatalf("disable module: %v", err)
		}
		_, err := env.allocations.Create(ctx, cohort.ID, CreateAllocationInput{CompanyID: company.ID, ModuleID: m1.ID, EntryDay: 1})
		if !apierr.IsCode(err, apierr.CodeValidation) {
			t.Fatalf("expected validation error for disabled module, got %v", err)
		}
	})
}

func TestGuidedAllocationEntryOrderRule(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	m1 := env.mustModule(t, "MOD-1", 2)
	m2 := env.mustModule(t, "MOD-2", 2)
	m3 := env.mustModule(t, "MOD-3", 2)
	cohort := env.mustCohort(t, "T-GUI", date(2026, time.March, 2), nil, 5, []CohortBlockInput{
		{ModuleID: m1.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 2},
		{ModuleID: m2.ID, OrderInCohort: 2, StartDayOffset: 3, DurationDays: 2},
		{ModuleID: m3.ID, OrderInCohort: 3, StartDayOffset: 5, DurationDays: 2},
	})
	company := env.mustCompany(t, "Empresa Beta")

	t.Run("module before entry is rejected", func(t *testing.T) {
		_, err := env.allocations.AllocateByEntryModule(ctx, cohort.ID, GuidedAllocationInput{
			CompanyID:     company.ID,
			EntryModuleID: m2.ID,
			ModuleIDs:     []uuid.UUID{m1.ID},
		})
		if !apierr.IsCode(err, apierr.CodeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("entry and later modules allocate at block offsets", func(t *testing.T) {
		results, err := env.allocations.AllocateByEntryModule(ctx, cohort.ID, GuidedAllocationInput{
			CompanyID:     company.ID,
			EntryModuleID: m2.ID,
			ModuleIDs:     []uuid.UUID{m2.ID, m3.ID},
		})
		if err != nil {
			t.Fatalf("guided allocation: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 allocations, got %d", len(results))
		}
		if results[0].ModuleID != m2.ID || results[0].EntryDay != 3 {
			t.Fatalf("first allocation: expected module %s at day 3, got %s at day %d", m2.ID, results[0].ModuleID, results[0].EntryDay)
		}
		if results[1].ModuleID != m3.ID || results[1].EntryDay != 5 {
			t.Fatalf("second allocation: expected module %s at day 5, got %s at day %d", m3.ID, results[1].ModuleID, results[1].EntryDay)
		}
	})
}

func TestGuidedAllocationRevivalSemantics(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	m1 := env.mustModule(t, "MOD-1", 2)
	m2 := env.mustModule(t, "MOD-2", 2)
	cohort := env.mustCohort(t, "T-REV", date(2026, time.March, 2), nil, 5, []CohortBlockInput{
		{ModuleID: m1.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 2},
		{ModuleID: m2.ID, OrderInCohort: 2, StartDayOffset: 3, DurationDays: 2},
	})
	company := env.mustCompany(t, "Empresa Gama")

	allocate := func() {
		t.Helper()
		if _, err := env.allocations.AllocateByEntryModule(ctx, cohort.ID, GuidedAllocationInput{
			CompanyID:     company.ID,
			EntryModuleID: m1.ID,
		}); err != nil {
			t.Fatalf("guided allocation: %v", err)
		}
	}
	status := func() types.AllocationStatus {
		t.Helper()
		row, err := env.allocationRepo.GetByTriple(ctx, nil, cohort.ID, company.ID, m1.ID)
		if err != nil {
			t.Fatalf("load allocation: %v", err)
		}
		return row.Status
	}
	setStatus := func(next types.AllocationStatus) {
		t.Helper()
		row, err := env.allocationRepo.GetByTriple(ctx, nil, cohort.ID, company.ID, m1.ID)
		if err != nil {
			t.Fatalf("load allocation: %v", err)
		}
		if _, err := env.allocations.UpdateStatus(ctx, row.ID, UpdateAllocationStatusInput{Status: next}); err != nil {
			t.Fatalf("set status %s: %v", next, err)
		}
	}

	allocate()
	if got := status(); got != types.AllocationPrevisto {
		t.Fatalf("expected Previsto after first allocation, got %s", got)
	}

	setStatus(types.AllocationCancelado)
	allocate()
	if got := status(); got != types.AllocationPrevisto {
		t.Fatalf("expected cancelled allocation revived to Previsto, got %s", got)
	}

	setStatus(types.AllocationConfirmado)
	allocate()
	if got := status(); got != types.AllocationConfirmado {
		t.Fatalf("expected Confirmado untouched by re-allocation, got %s", got)
	}
}

func TestInstallationGateEndToEnd(t *testing.T) {
	env := newTestEnv(t, "960001010", "MOD-01")
	ctx := t.Context()

	installation := env.mustModule(t, "960001010", 1)
	m1 := env.mustModule(t, "MOD-TRAIN", 2)
	cohort := env.mustCohort(t, "T-GATE", date(2026, time.March, 2), nil, 5, []CohortBlockInput{
		{ModuleID: installation.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 1},
		{ModuleID: m1.ID, OrderInCohort: 2, StartDayOffset: 2, DurationDays: 2},
	})
	company := env.mustCompany(t, "Empresa Delta")

	allocation, err := env.allocations.Create(ctx, cohort.ID, CreateAllocationInput{CompanyID: company.ID, ModuleID: m1.ID, EntryDay: 2})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	t.Run("blocked without override", func(t *testing.T) {
		_, err := env.allocations.UpdateStatus(ctx, allocation.ID, UpdateAllocationStatusInput{Status: types.AllocationExecutado})
		if !apierr.IsCode(err, apierr.CodePrerequisite) {
			t.Fatalf("expected prerequisite error, got %v", err)
		}
	})

	t.Run("override needs a reason", func(t *testing.T) {
		_, err := env.allocations.UpdateStatus(ctx, allocation.ID, UpdateAllocationStatusInput{
			Status:               types.AllocationExecutado,
			OverrideInstallation: true,
		})
		if !apierr.IsCode(err, apierr.CodePrerequisite) {
			t.Fatalf("expected prerequisite error without reason, got %v", err)
		}
	})

	t.Run("override with reason executes and cascades progress", func(t *testing.T) {
		reason := "client pre-approved"
		result, err := env.allocations.UpdateStatus(ctx, allocation.ID, UpdateAllocationStatusInput{
			Status:               types.AllocationExecutado,
			OverrideInstallation: true,
			OverrideReason:       &reason,
		})
		if err != nil {
			t.Fatalf("override transition: %v", err)
		}
		if !result.OverrideUsed {
			t.Fatalf("expected override_used to be reported")
		}
		if result.Allocation.ExecutedAt == nil {
			t.Fatalf("expected executed_at to be stamped")
		}
		if !result.Allocation.OverrideInstallationPrereq || result.Allocation.OverrideReason == nil || *result.Allocation.OverrideReason != reason {
			t.Fatalf("expected override trail persisted, got %+v", result.Allocation)
		}
		progress, err := env.companyRepo.GetProgress(ctx, nil, company.ID, m1.ID)
		if err != nil {
			t.Fatalf("load progress: %v", err)
		}
		if progress.Status != types.ProgressConcluido || progress.CompletedAt == nil {
			t.Fatalf("expected progress Concluido with completion date, got %+v", progress)
		}
	})

	t.Run("installation done lets execution pass without override", func(t *testing.T) {
		other := env.mustCompany(t, "Empresa Echo")
		env.markProgressDone(t, other.ID, installation.ID, date(2026, time.February, 10))
		row, err := env.allocations.Create(ctx, cohort.ID, CreateAllocationInput{CompanyID: other.ID, ModuleID: m1.ID, EntryDay: 2})
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		result, err := env.allocations.UpdateStatus(ctx, row.ID, UpdateAllocationStatusInput{Status: types.AllocationExecutado})
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		if result.OverrideUsed {
			t.Fatalf("override should not be needed once installation is complete")
		}
	})

	t.Run("leaving Executado clears the override trail", func(t *testing.T) {
		result, err := env.allocations.UpdateStatus(ctx, allocation.ID, UpdateAllocationStatusInput{Status: types.AllocationConfirmado})
		if err != nil {
			t.Fatalf("transition away: %v", err)
		}
		a := result.Allocation
		if a.ExecutedAt != nil || a.OverrideInstallationPrereq || a.OverrideReason != nil {
			t.Fatalf("expected override trail cleared, got %+v", a)
		}
	})
}

func TestSuggestionsRankingAndExclusions(t *testing.T) {
	env := newTestEnv(t, "960001010")
	ctx := t.Context()

	installation := env.mustModule(t, "960001010", 1)
	m1 := env.mustModule(t, "MOD-SUG", 2)
	cohort := env.mustCohort(t, "T-SUG", date(2026, time.March, 2), nil, 10, []CohortBlockInput{
		{ModuleID: installation.ID, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 1},
		{ModuleID: m1.ID, OrderInCohort: 2, StartDayOffset: 2, DurationDays: 2},
	})

	ready := env.mustCompany(t, "Pronta")
	env.markProgressDone(t, ready.ID, installation.ID, date(2026, time.January, 15))

	blocked := env.mustCompany(t, "Bloqueada")

	allocated := env.mustCompany(t, "Ja Alocada")
	env.markProgressDone(t, allocated.ID, installation.ID, date(2026, time.January, 10))
	if _, err := env.allocations.Create(ctx, cohort.ID, CreateAllocationInput{CompanyID: allocated.ID, ModuleID: m1.ID, EntryDay: 2}); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	done := env.mustCompany(t, "Concluida")
	env.markProgressDone(t, done.ID, m1.ID, date(2026, time.January, 20))

	suggestions, err := env.allocations.Suggestions(ctx, cohort.ID, m1.ID)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if suggestions.EntryDaySuggested != 2 {
		t.Fatalf("expected suggested entry day 2, got %d", suggestions.EntryDaySuggested)
	}
	if len(suggestions.Companies) != 2 {
		t.Fatalf("expected 2 suggested companies, got %d", len(suggestions.Companies))
	}
	if suggestions.Companies[0].CompanyID != ready.ID || !suggestions.Companies[0].CanExecute {
		t.Fatalf("expected ready company ranked first, got %+v", suggestions.Companies[0])
	}
	second := suggestions.Companies[1]
	if second.CompanyID != blocked.ID || second.CanExecute || second.BlockReason == nil {
		t.Fatalf("expected blocked company with reason ranked second, got %+v", second)
	}
}
