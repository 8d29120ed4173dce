package schedule

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

func TestEffectivePrerequisites(t *testing.T) {
	install, mod, other := uuid.New(), uuid.New(), uuid.New()

	cases := []struct {
		name     string
		moduleID uuid.UUID
		explicit []uuid.UUID
		want     []uuid.UUID
	}{
		{
			name:     "installation edge is prepended",
			moduleID: mod,
			explicit: []uuid.UUID{other},
			want:     []uuid.UUID{install, other},
		},
		{
			name:     "installation module has no implicit edge",
			moduleID: install,
			explicit: []uuid.UUID{other},
			want:     []uuid.UUID{other},
		},
		{
			name:     "explicit installation edge is not duplicated",
			moduleID: mod,
			explicit: []uuid.UUID{other, install},
			want:     []uuid.UUID{other, install},
		},
		{
			name:     "no explicit edges still gains installation",
			moduleID: mod,
			explicit: nil,
			want:     []uuid.UUID{install},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EffectivePrerequisites(tc.moduleID, tc.explicit, install)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d prerequisites, got %d", len(tc.want), len(got))
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("prerequisite %d: expected %s, got %s", i, tc.want[i], got[i])
				}
			}
		})
	}

	t.Run("no configured installation module", func(t *testing.T) {
		got := EffectivePrerequisites(mod, []uuid.UUID{other}, uuid.Nil)
		if len(got) != 1 || got[0] != other {
			t.Fatalf("expected explicit list unchanged, got %v", got)
		}
	})
}

func TestMergeAllocation(t *testing.T) {
	oldNotes := "agendado com o cliente"
	newNotes := "remarcado"

	cases := []struct {
		name       string
		existing   types.CohortAllocation
		incoming   AllocationDraft
		wantStatus types.AllocationStatus
		wantNotes  *string
		wantEntry  int
	}{
		{
			name:       "entry day always taken from the request",
			existing:   types.CohortAllocation{EntryDay: 1, Status: types.AllocationConfirmado, Notes: &oldNotes},
			incoming:   AllocationDraft{EntryDay: 4},
			wantStatus: types.AllocationConfirmado,
			wantNotes:  &oldNotes,
			wantEntry:  4,
		},
		{
			name:       "notes replaced when provided",
			existing:   types.CohortAllocation{EntryDay: 1, Status: types.AllocationPrevisto, Notes: &oldNotes},
			incoming:   AllocationDraft{EntryDay: 1, Notes: &newNotes},
			wantStatus: types.AllocationPrevisto,
			wantNotes:  &newNotes,
			wantEntry:  1,
		},
		{
			name:       "cancelled allocation is revived",
			existing:   types.CohortAllocation{EntryDay: 2, Status: types.AllocationCancelado},
			incoming:   AllocationDraft{EntryDay: 2},
			wantStatus: types.AllocationPrevisto,
			wantNotes:  nil,
			wantEntry:  2,
		},
		{
			name:       "executed status is never downgraded",
			existing:   types.CohortAllocation{EntryDay: 2, Status: types.AllocationExecutado},
			incoming:   AllocationDraft{EntryDay: 3, Notes: &newNotes},
			wantStatus: types.AllocationExecutado,
			wantNotes:  &newNotes,
			wantEntry:  3,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MergeAllocation(tc.existing, tc.incoming)
			if got.Status != tc.wantStatus {
				t.Fatalf("expected status %s, got %s", tc.wantStatus, got.Status)
			}
			if got.EntryDay != tc.wantEntry {
				t.Fatalf("expected entry day %d, got %d", tc.wantEntry, got.EntryDay)
			}
			switch {
			case tc.wantNotes == nil && got.Notes != nil:
				t.Fatalf("expected no notes, got %q", *got.Notes)
			case tc.wantNotes != nil && (got.Notes == nil || *got.Notes != *tc.wantNotes):
				t.Fatalf("expected notes %q, got %v", *tc.wantNotes, got.Notes)
			}
		})
	}
}
