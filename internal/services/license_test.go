package services

import (
	"testing"
	"time"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

func TestLicenseProgramLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	program, err := env.licenses.CreateProgram(ctx, "Programa Base", nil)
	if err != nil {
		t.Fatalf("create program: %v", err)
	}
	other, err := env.licenses.CreateProgram(ctx, "Programa Extra", nil)
	if err != nil {
		t.Fatalf("create second program: %v", err)
	}

	t.Run("rename onto an existing name conflicts case-insensitively", func(t *testing.T) {
		name := "programa base"
		_, err := env.licenses.UpdateProgram(ctx, other.ID, &name, nil)
		if !apierr.IsCode(err, apierr.CodeConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	company := env.mustCompany(t, "Empresa Licenciada")
	license, err := env.licenses.Create(ctx, CreateLicenseInput{
		CompanyID:    company.ID,
		ProgramID:    program.ID,
		RenewalCycle: types.RenewalMensal,
		ExpiresAt:    date(2026, time.June, 30),
	})
	if err != nil {
		t.Fatalf("create license: %v", err)
	}

	t.Run("delete is blocked while licenses reference the program", func(t *testing.T) {
		err := env.licenses.DeleteProgram(ctx, program.ID)
		if !apierr.IsCode(err, apierr.CodeConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("delete succeeds once the program is unused", func(t *testing.T) {
		if err := env.licenses.Delete(ctx, license.ID); err != nil {
			t.Fatalf("delete license: %v", err)
		}
		if err := env.licenses.DeleteProgram(ctx, program.ID); err != nil {
			t.Fatalf("delete program: %v", err)
		}
	})
}

func TestLicenseRenewal(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	today := date(2026, time.September, 1)
	env.licenses.(*licenseService).now = func() time.Time { return today }

	company := env.mustCompany(t, "Empresa Renova")
	program, err := env.licenses.CreateProgram(ctx, "Programa Renova", nil)
	if err != nil {
		t.Fatalf("create program: %v", err)
	}

	t.Run("expired monthly license renews from today", func(t *testing.T) {
		license, err := env.licenses.Create(ctx, CreateLicenseInput{
			CompanyID:    company.ID,
			ProgramID:    program.ID,
			RenewalCycle: types.RenewalMensal,
			ExpiresAt:    date(2026, time.August, 10),
		})
		if err != nil {
			t.Fatalf("create license: %v", err)
		}
		renewed, err := env.licenses.Renew(ctx, license.ID)
		if err != nil {
			t.Fatalf("renew: %v", err)
		}
		want := today.AddDate(0, 0, 30)
		if !renewed.ExpiresAt.Equal(want) {
			t.Fatalf("expected expiry %v, got %v", want, renewed.ExpiresAt)
		}
		if renewed.LastRenewedAt == nil || !renewed.LastRenewedAt.Equal(today) {
			t.Fatalf("expected last renewal today, got %v", renewed.LastRenewedAt)
		}
	})

	t.Run("annual license still in force renews from its expiry", func(t *testing.T) {
		license, err := env.licenses.Create(ctx, CreateLicenseInput{
			CompanyID:    company.ID,
			ProgramID:    program.ID,
			RenewalCycle: types.RenewalAnual,
			ExpiresAt:    date(2026, time.December, 1),
		})
		if err != nil {
			t.Fatalf("create license: %v", err)
		}
		renewed, err := env.licenses.Renew(ctx, license.ID)
		if err != nil {
			t.Fatalf("renew: %v", err)
		}
		want := date(2027, time.December, 1)
		if !renewed.ExpiresAt.Equal(want) {
			t.Fatalf("expected expiry %v, got %v", want, renewed.ExpiresAt)
		}
	})
}

func TestLicenseAlertLevels(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	today := date(2026, time.September, 1)
	env.licenses.(*licenseService).now = func() time.Time { return today }

	company := env.mustCompany(t, "Empresa Alertas")
	program, err := env.licenses.CreateProgram(ctx, "Programa Alertas", nil)
	if err != nil {
		t.Fatalf("create program: %v", err)
	}

	mk := func(cycle types.RenewalCycle, expires time.Time) {
		t.Helper()
		if _, err := env.licenses.Create(ctx, CreateLicenseInput{
			CompanyID: company.ID, ProgramID: program.ID, RenewalCycle: cycle, ExpiresAt: expires,
		}); err != nil {
			t.Fatalf("create license: %v", err)
		}
	}
	mk(types.RenewalMensal, date(2026, time.August, 20)) // expired
	mk(types.RenewalMensal, date(2026, time.September, 5))
	mk(types.RenewalAnual, date(2026, time.September, 20))
	mk(types.RenewalAnual, date(2027, time.March, 1)) // comfortably in force

	views, alerts, err := env.licenses.List(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 4 {
		t.Fatalf("expected 4 licenses, got %d", len(views))
	}
	if len(alerts.Expired) != 1 {
		t.Fatalf("expected 1 expired, got %d", len(alerts.Expired))
	}
	if len(alerts.MonthlyDueSoon) != 1 {
		t.Fatalf("expected 1 monthly due soon, got %d", len(alerts.MonthlyDueSoon))
	}
	if len(alerts.AnnualDueSoon) != 1 {
		t.Fatalf("expected 1 annual due soon, got %d", len(alerts.AnnualDueSoon))
	}
	if alerts.TotalAttention != 3 {
		t.Fatalf("expected 3 needing attention, got %d", alerts.TotalAttention)
	}
}
