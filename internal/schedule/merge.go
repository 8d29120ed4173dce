package schedule

import "github.com/yohannreimer/projeto-treinamentos/internal/types"

// AllocationDraft carries the incoming fields of an allocation upsert.
type AllocationDraft struct {
	EntryDay int
	Notes    *string
}

// MergeAllocation resolves an upsert against an existing allocation row.
// The incoming entry day always wins, notes fall back to the stored value
// when absent, and a cancelled allocation is revived to Previsto. Any other
// status is left untouched.
func MergeAllocation(existing types.CohortAllocation, incoming AllocationDraft) types.CohortAllocation {
	merged := existing
	merged.EntryDay = incoming.EntryDay
	if incoming.Notes != nil {
		merged.Notes = incoming.Notes
	}
	if merged.Status == types.AllocationCancelado {
		merged.Status = types.AllocationPrevisto
	}
	return merged
}
