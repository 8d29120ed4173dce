package schedule

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestValidateBlocks(t *testing.T) {
	m1, m2, m3 := uuid.New(), uuid.New(), uuid.New()

	cases := []struct {
		name       string
		blocks     []BlockDraft
		wantReason BlockReason
	}{
		{
			name:       "empty sequence is rejected",
			blocks:     nil,
			wantReason: ReasonEmptySequence,
		},
		{
			name: "single block starting at day one",
			blocks: []BlockDraft{
				{ModuleID: m1, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3},
			},
		},
		{
			name: "contiguous two block sequence",
			blocks: []BlockDraft{
				{ModuleID: m1, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3},
				{ModuleID: m2, OrderInCohort: 2, StartDayOffset: 4, DurationDays: 2},
			},
		},
		{
			name: "input order does not matter",
			blocks: []BlockDraft{
				{ModuleID: m2, OrderInCohort: 2, StartDayOffset: 4, DurationDays: 2},
				{ModuleID: m1, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3},
			},
		},
		{
			name: "duplicate order",
			blocks: []BlockDraft{
				{ModuleID: m1, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3},
				{ModuleID: m2, OrderInCohort: 1, StartDayOffset: 4, DurationDays: 2},
			},
			wantReason: ReasonDuplicateOrder,
		},
		{
			name: "duplicate module",
			blocks: []BlockDraft{
				{ModuleID: m1, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3},
				{ModuleID: m1, OrderInCohort: 2, StartDayOffset: 4, DurationDays: 2},
			},
			wantReason: ReasonDuplicateModule,
		},
		{
			name: "orders with a hole",
			blocks: []BlockDraft{
				{ModuleID: m1, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3},
				{ModuleID: m2, OrderInCohort: 3, StartDayOffset: 4, DurationDays: 2},
			},
			wantReason: ReasonNonSequentialOrder,
		},
		{
			name: "orders not starting at one",
			blocks: []BlockDraft{
				{ModuleID: m1, OrderInCohort: 2, StartDayOffset: 1, DurationDays: 3},
				{ModuleID: m2, OrderInCohort: 3, StartDayOffset: 4, DurationDays: 2},
			},
			wantReason: ReasonNonSequentialOrder,
		},
		{
			name: "gap between blocks",
			blocks: []BlockDraft{
				{ModuleID: m1, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3},
				{ModuleID: m2, OrderInCohort: 2, StartDayOffset: 5, DurationDays: 2},
			},
			wantReason: ReasonGapOrOverlap,
		},
		{
			name: "overlapping blocks",
			blocks: []BlockDraft{
				{ModuleID: m1, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 3},
				{ModuleID: m2, OrderInCohort: 2, StartDayOffset: 3, DurationDays: 2},
			},
			wantReason: ReasonGapOrOverlap,
		},
		{
			name: "first block not on day one",
			blocks: []BlockDraft{
				{ModuleID: m1, OrderInCohort: 1, StartDayOffset: 2, DurationDays: 3},
			},
			wantReason: ReasonGapOrOverlap,
		},
		{
			name: "zero duration",
			blocks: []BlockDraft{
				{ModuleID: m1, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 0},
			},
			wantReason: ReasonInvalidDuration,
		},
		{
			name: "three contiguous blocks",
			blocks: []BlockDraft{
				{ModuleID: m1, OrderInCohort: 1, StartDayOffset: 1, DurationDays: 2},
				{ModuleID: m2, OrderInCohort: 2, StartDayOffset: 3, DurationDays: 1},
				{ModuleID: m3, OrderInCohort: 3, StartDayOffset: 4, DurationDays: 4},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBlocks(tc.blocks)
			if tc.wantReason == "" {
				if err != nil {
					t.Fatalf("expected valid sequence, got %v", err)
				}
				return
			}
			var be *BlockError
			if !errors.As(err, &be) {
				t.Fatalf("expected BlockError, got %v", err)
			}
			if be.Reason != tc.wantReason {
				t.Fatalf("expected reason %s, got %s (%s)", tc.wantReason, be.Reason, be.Detail)
			}
		})
	}
}
