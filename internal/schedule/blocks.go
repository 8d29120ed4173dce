package schedule

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// BlockDraft is one proposed module block in a cohort sequence, before
// persistence.
type BlockDraft struct {
	ModuleID       uuid.UUID
	OrderInCohort  int
	StartDayOffset int
	DurationDays   int
}

func (b BlockDraft) Span() BlockSpan {
	return BlockSpan{StartDayOffset: b.StartDayOffset, DurationDays: b.DurationDays}
}

// BlockReason classifies why a block sequence was rejected.
type BlockReason string

const (
	ReasonEmptySequence      BlockReason = "empty_sequence"
	ReasonDuplicateOrder     BlockReason = "duplicate_order"
	ReasonDuplicateModule    BlockReason = "duplicate_module"
	ReasonNonSequentialOrder BlockReason = "non_sequential_order"
	ReasonInvalidDuration    BlockReason = "invalid_duration"
	ReasonGapOrOverlap       BlockReason = "gap_or_overlap"
)

// BlockError reports the first violated rule of a block sequence.
type BlockError struct {
	Reason BlockReason
	Detail string
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("invalid block sequence (%s): %s", e.Reason, e.Detail)
}

func blockErrf(reason BlockReason, format string, args ...any) *BlockError {
	return &BlockError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// ValidateBlocks checks that a proposed sequence forms a contiguous
// timeline: orders are exactly 1..N with no duplicate modules, every
// duration is positive, and each start_day_offset equals the running sum
// of prior durations starting at 1.
func ValidateBlocks(blocks []BlockDraft) error {
	if len(blocks) == 0 {
		return blockErrf(ReasonEmptySequence, "a cohort needs at least one module block")
	}

	sorted := make([]BlockDraft, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].OrderInCohort < sorted[j].OrderInCohort
	})

	seenOrder := make(map[int]bool, len(sorted))
	seenModule := make(map[uuid.UUID]bool, len(sorted))
	for _, b := range sorted {
		if seenOrder[b.OrderInCohort] {
			return blockErrf(ReasonDuplicateOrder, "order %d appears more than once", b.OrderInCohort)
		}
		seenOrder[b.OrderInCohort] = true
		if seenModule[b.ModuleID] {
			return blockErrf(ReasonDuplicateModule, "module %s appears more than once", b.ModuleID)
		}
		seenModule[b.ModuleID] = true
	}

	expectedOffset := 1
	for i, b := range sorted {
		if b.OrderInCohort != i+1 {
			return blockErrf(ReasonNonSequentialOrder, "orders must run 1..%d without gaps, found %d at position %d", len(sorted), b.OrderInCohort, i+1)
		}
		if b.DurationDays < 1 {
			return blockErrf(ReasonInvalidDuration, "block %d has non-positive duration %d", b.OrderInCohort, b.DurationDays)
		}
		if b.StartDayOffset != expectedOffset {
			return blockErrf(ReasonGapOrOverlap, "block %d must start on day %d, found %d", b.OrderInCohort, expectedOffset, b.StartDayOffset)
		}
		expectedOffset += b.DurationDays
	}
	return nil
}

// SortBlocks returns the sequence ordered by order_in_cohort.
func SortBlocks(blocks []BlockDraft) []BlockDraft {
	sorted := make([]BlockDraft, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].OrderInCohort < sorted[j].OrderInCohort
	})
	return sorted
}
