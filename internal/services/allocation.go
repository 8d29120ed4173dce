package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/repos"
	"github.com/yohannreimer/projeto-treinamentos/internal/schedule"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type CreateAllocationInput struct {
	CompanyID uuid.UUID `json:"company_id"`
	ModuleID  uuid.UUID `json:"module_id"`
	EntryDay  int       `json:"entry_day"`
	Notes     *string   `json:"notes"`
}

type GuidedAllocationInput struct {
	CompanyID     uuid.UUID   `json:"company_id"`
	EntryModuleID uuid.UUID   `json:"entry_module_id"`
	ModuleIDs     []uuid.UUID `json:"module_ids"`
	Notes         *string     `json:"notes"`
}

// GuidedAllocationResult is one created or updated allocation of a guided
// batch, with the module resolved for display.
type GuidedAllocationResult struct {
	AllocationID uuid.UUID `json:"allocation_id"`
	ModuleID     uuid.UUID `json:"module_id"`
	ModuleCode   string    `json:"module_code"`
	ModuleName   string    `json:"module_name"`
	EntryDay     int       `json:"entry_day"`
	Revived      bool      `json:"revived"`
}

type UpdateAllocationStatusInput struct {
	Status               types.AllocationStatus `json:"status"`
	Notes                *string                `json:"notes"`
	OverrideInstallation bool                   `json:"override_installation_prereq"`
	OverrideReason       *string                `json:"override_reason"`
}

type UpdateAllocationStatusResult struct {
	Allocation   *types.CohortAllocation `json:"allocation"`
	OverrideUsed bool                    `json:"override_used"`
}

// SuggestedCompany ranks one eligible company for a cohort module slot.
type SuggestedCompany struct {
	CompanyID       uuid.UUID            `json:"company_id"`
	Name            string               `json:"name"`
	Priority        int                  `json:"priority"`
	ModuleStatus    types.ProgressStatus `json:"module_status"`
	CanExecute      bool                 `json:"can_execute"`
	BlockReason     *string              `json:"block_reason,omitempty"`
	LastCompletedAt *time.Time           `json:"last_completed_at,omitempty"`
}

type AllocationSuggestions struct {
	EntryDaySuggested int                 `json:"entry_day_suggested"`
	Companies         []*SuggestedCompany `json:"companies"`
}

type AllocationService interface {
	Create(ctx context.Context, cohortID uuid.UUID, input CreateAllocationInput) (*types.CohortAllocation, error)
	AllocateByEntryModule(ctx context.Context, cohortID uuid.UUID, input GuidedAllocationInput) ([]*GuidedAllocationResult, error)
	UpdateStatus(ctx context.Context, allocationID uuid.UUID, input UpdateAllocationStatusInput) (*UpdateAllocationStatusResult, error)
	ListByCohort(ctx context.Context, cohortID uuid.UUID) ([]*types.CohortAllocation, error)
	Suggestions(ctx context.Context, cohortID, moduleID uuid.UUID) (*AllocationSuggestions, error)
}

type allocationService struct {
	db             *gorm.DB
	log            *logger.Logger
	allocationRepo repos.AllocationRepo
	cohortRepo     repos.CohortRepo
	companyRepo    repos.CompanyRepo
	moduleRepo     repos.ModuleRepo
	installation   InstallationResolver
	now            func() time.Time
}

func NewAllocationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	allocationRepo repos.AllocationRepo,
	cohortRepo repos.CohortRepo,
	companyRepo repos.CompanyRepo,
	moduleRepo repos.ModuleRepo,
	installation InstallationResolver,
) AllocationService {
	return &allocationService{
		db:             db,
		log:            baseLog.With("service", "AllocationService"),
		allocationRepo: allocationRepo,
		cohortRepo:     cohortRepo,
		companyRepo:    companyRepo,
		moduleRepo:     moduleRepo,
		installation:   installation,
		now:            time.Now,
	}
}

func (s *allocationService) findBlock(blocks []*types.CohortModuleBlock, moduleID uuid.UUID) *types.CohortModuleBlock {
	for _, b := range blocks {
		if b.ModuleID == moduleID {
			return b
		}
	}
	return nil
}

// moduleEnabled resolves the activation flag; a missing row means enabled.
func (s *allocationService) moduleEnabled(ctx context.Context, tx *gorm.DB, companyID, moduleID uuid.UUID) (bool, error) {
	activation, err := s.companyRepo.GetActivation(ctx, tx, companyID, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, err
	}
	return activation.IsEnabled, nil
}

// checkCapacity enforces the distinct-company limit. Counting other
// companies only means a company already in the cohort occupies its slot
// and never trips the check again.
func (s *allocationService) checkCapacity(ctx context.Context, tx *gorm.DB, cohort *types.Cohort, companyID uuid.UUID) error {
	others, err := s.allocationRepo.CountDistinctActiveCompanies(ctx, tx, cohort.ID, companyID)
	if err != nil {
		return err
	}
	if others >= int64(cohort.CapacityCompanies) {
		return apierr.Capacity("cohort %s is full (%d companies)", cohort.Code, cohort.CapacityCompanies)
	}
	return nil
}

func (s *allocationService) Create(ctx context.Context, cohortID uuid.UUID, input CreateAllocationInput) (*types.CohortAllocation, error) {
	var created *types.CohortAllocation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cohort, err := s.cohortRepo.GetByID(ctx, tx, cohortID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("cohort %s not found", cohortID)
			}
			return err
		}
		if _, err := s.companyRepo.GetByID(ctx, tx, input.CompanyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("company %s not found", input.CompanyID)
			}
			return err
		}
		blocks, err := s.cohortRepo.ListBlocks(ctx, tx, cohortID)
		if err != nil {
			return err
		}
		block := s.findBlock(blocks, input.ModuleID)
		if block == nil {
			return apierr.Validation("module %s is not part of this cohort", input.ModuleID)
		}
		if input.EntryDay < block.StartDayOffset {
			return apierr.Validation("entry_day %d falls before the module block's start day %d", input.EntryDay, block.StartDayOffset)
		}
		enabled, err := s.moduleEnabled(ctx, tx, input.CompanyID, input.ModuleID)
		if err != nil {
			return err
		}
		if !enabled {
			return apierr.Validation("module is disabled for this company")
		}
		if _, err := s.allocationRepo.GetByTriple(ctx, tx, cohortID, input.CompanyID, input.ModuleID); err == nil {
			return apierr.Conflict("company is already allocated to this module in this cohort")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.checkCapacity(ctx, tx, cohort, input.CompanyID); err != nil {
			return err
		}
		created = &types.CohortAllocation{
			CohortID:  cohortID,
			CompanyID: input.CompanyID,
			ModuleID:  input.ModuleID,
			EntryDay:  input.EntryDay,
			Status:    types.AllocationPrevisto,
			Notes:     input.Notes,
		}
		return s.allocationRepo.Create(ctx, tx, created)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *allocationService) AllocateByEntryModule(ctx context.Context, cohortID uuid.UUID, input GuidedAllocationInput) ([]*GuidedAllocationResult, error) {
	var results []*GuidedAllocationResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cohort, err := s.cohortRepo.GetByID(ctx, tx, cohortID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("cohort %s not found", cohortID)
			}
			return err
		}
		if _, err := s.companyRepo.GetByID(ctx, tx, input.CompanyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("company %s not found", input.CompanyID)
			}
			return err
		}
		blocks, err := s.cohortRepo.ListBlocks(ctx, tx, cohortID)
		if err != nil {
			return err
		}
		entryBlock := s.findBlock(blocks, input.EntryModuleID)
		if entryBlock == nil {
			return apierr.Validation("entry module %s is not part of this cohort", input.EntryModuleID)
		}

		// Dedupe the requested set; the entry module always participates.
		wanted := map[uuid.UUID]bool{input.EntryModuleID: true}
		for _, id := range input.ModuleIDs {
			if id != uuid.Nil {
				wanted[id] = true
			}
		}

		selected := make([]*types.CohortModuleBlock, 0, len(wanted))
		for id := range wanted {
			block := s.findBlock(blocks, id)
			if block == nil {
				return apierr.Validation("module %s is not part of this cohort", id)
			}
			if block.OrderInCohort < entryBlock.OrderInCohort {
				return apierr.Validation("module %s comes before the entry module in the cohort sequence", id)
			}
			selected = append(selected, block)
		}
		sort.Slice(selected, func(i, j int) bool {
			return selected[i].OrderInCohort < selected[j].OrderInCohort
		})

		for _, block := range selected {
			enabled, err := s.moduleEnabled(ctx, tx, input.CompanyID, block.ModuleID)
			if err != nil {
				return err
			}
			if !enabled {
				return apierr.Validation("module %s is disabled for this company", block.ModuleID)
			}
		}

		if err := s.checkCapacity(ctx, tx, cohort, input.CompanyID); err != nil {
			return err
		}

		moduleIDs := make([]uuid.UUID, 0, len(selected))
		for _, block := range selected {
			moduleIDs = append(moduleIDs, block.ModuleID)
		}
		modules, err := s.moduleRepo.GetByIDs(ctx, tx, moduleIDs)
		if err != nil {
			return err
		}
		moduleByID := make(map[uuid.UUID]*types.ModuleTemplate, len(modules))
		for _, m := range modules {
			moduleByID[m.ID] = m
		}

		for _, block := range selected {
			draft := schedule.AllocationDraft{EntryDay: block.StartDayOffset, Notes: input.Notes}
			existing, err := s.allocationRepo.GetByTriple(ctx, tx, cohortID, input.CompanyID, block.ModuleID)
			var row *types.CohortAllocation
			revived := false
			switch {
			case err == nil:
				revived = existing.Status == types.AllocationCancelado
				merged := schedule.MergeAllocation(*existing, draft)
				row = &merged
				if err := s.allocationRepo.Update(ctx, tx, row); err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				row = &types.CohortAllocation{
					CohortID:  cohortID,
					CompanyID: input.CompanyID,
					ModuleID:  block.ModuleID,
					EntryDay:  block.StartDayOffset,
					Status:    types.AllocationPrevisto,
					Notes:     input.Notes,
				}
				if err := s.allocationRepo.Create(ctx, tx, row); err != nil {
					return err
				}
			default:
				return err
			}

			result := &GuidedAllocationResult{
				AllocationID: row.ID,
				ModuleID:     block.ModuleID,
				EntryDay:     row.EntryDay,
				Revived:      revived,
			}
			if m := moduleByID[block.ModuleID]; m != nil {
				result.ModuleCode = m.Code
				result.ModuleName = m.Name
			}
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *allocationService) UpdateStatus(ctx context.Context, allocationID uuid.UUID, input UpdateAllocationStatusInput) (*UpdateAllocationStatusResult, error) {
	if !input.Status.Valid() {
		return nil, apierr.Validation("unknown allocation status %q", input.Status)
	}
	var result *UpdateAllocationStatusResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		allocation, err := s.allocationRepo.GetByID(ctx, tx, allocationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("allocation %s not found", allocationID)
			}
			return err
		}

		overrideUsed := false
		if input.Status == types.AllocationExecutado {
			used, err := s.checkInstallationGate(ctx, tx, allocation, input)
			if err != nil {
				return err
			}
			overrideUsed = used
			today := dateOnly(s.now())
			allocation.ExecutedAt = &today
			allocation.OverrideInstallationPrereq = overrideUsed
			if overrideUsed {
				allocation.OverrideReason = input.OverrideReason
			} else {
				allocation.OverrideReason = nil
			}
		} else {
			// Leaving Executado clears the override trail.
			allocation.ExecutedAt = nil
			allocation.OverrideInstallationPrereq = false
			allocation.OverrideReason = nil
		}

		allocation.Status = input.Status
		if input.Notes != nil {
			allocation.Notes = input.Notes
		}
		if err := s.allocationRepo.Update(ctx, tx, allocation); err != nil {
			return err
		}

		// Executing an allocation is how curriculum progress advances.
		if input.Status == types.AllocationExecutado {
			if err := s.companyRepo.MarkProgressConcluded(ctx, tx, allocation.CompanyID, allocation.ModuleID, dateOnly(s.now())); err != nil {
				return err
			}
		}

		result = &UpdateAllocationStatusResult{Allocation: allocation, OverrideUsed: overrideUsed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkInstallationGate enforces the installation prerequisite before an
// allocation can be executed. Returns whether the manual override was used.
func (s *allocationService) checkInstallationGate(ctx context.Context, tx *gorm.DB, allocation *types.CohortAllocation, input UpdateAllocationStatusInput) (bool, error) {
	installation, err := s.installation.Resolve(ctx, tx)
	if err != nil {
		return false, err
	}
	if installation == nil || allocation.ModuleID == installation.ID {
		return false, nil
	}
	progress, err := s.companyRepo.GetProgress(ctx, tx, allocation.CompanyID, installation.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if progress != nil && progress.Status == types.ProgressConcluido {
		return false, nil
	}
	if input.OverrideInstallation && input.OverrideReason != nil && strings.TrimSpace(*input.OverrideReason) != "" {
		return true, nil
	}
	return false, apierr.Prerequisite("company has not completed %s; supply override_installation_prereq with a reason to proceed", installation.Code)
}

func (s *allocationService) ListByCohort(ctx context.Context, cohortID uuid.UUID) ([]*types.CohortAllocation, error) {
	if _, err := s.cohortRepo.GetByID(ctx, nil, cohortID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("cohort %s not found", cohortID)
		}
		return nil, err
	}
	return s.allocationRepo.ListByCohort(ctx, nil, cohortID)
}

func (s *allocationService) Suggestions(ctx context.Context, cohortID, moduleID uuid.UUID) (*AllocationSuggestions, error) {
	blocks, err := s.cohortRepo.ListBlocks(ctx, nil, cohortID)
	if err != nil {
		return nil, err
	}
	block := s.findBlock(blocks, moduleID)
	if block == nil {
		return nil, apierr.Validation("module %s is not part of this cohort", moduleID)
	}

	installation, err := s.installation.Resolve(ctx, nil)
	if err != nil {
		return nil, err
	}
	installationLabel := s.installation.PreferredCode()
	if installation != nil {
		installationLabel = installation.Code
	}

	active := types.CompanyAtivo
	companies, err := s.companyRepo.List(ctx, nil, &active)
	if err != nil {
		return nil, err
	}
	moduleProgress, err := s.companyRepo.ListProgressByModule(ctx, nil, moduleID)
	if err != nil {
		return nil, err
	}
	activations, err := s.companyRepo.ListActivationsByModule(ctx, nil, moduleID)
	if err != nil {
		return nil, err
	}
	allocations, err := s.allocationRepo.ListByCohort(ctx, nil, cohortID)
	if err != nil {
		return nil, err
	}
	completed, err := s.companyRepo.ListCompletedProgress(ctx, nil)
	if err != nil {
		return nil, err
	}

	progressByCompany := make(map[uuid.UUID]*types.CompanyModuleProgress, len(moduleProgress))
	for _, p := range moduleProgress {
		progressByCompany[p.CompanyID] = p
	}
	disabled := make(map[uuid.UUID]bool)
	for _, a := range activations {
		if !a.IsEnabled {
			disabled[a.CompanyID] = true
		}
	}
	allocated := make(map[uuid.UUID]bool)
	for _, a := range allocations {
		if a.ModuleID == moduleID && a.Status != types.AllocationCancelado {
			allocated[a.CompanyID] = true
		}
	}
	installationDone := make(map[uuid.UUID]bool)
	lastCompleted := make(map[uuid.UUID]time.Time)
	for _, p := range completed {
		if p.CompletedAt == nil {
			continue
		}
		if installation != nil && p.ModuleID == installation.ID && p.Status == types.ProgressConcluido {
			installationDone[p.CompanyID] = true
		}
		if prev, ok := lastCompleted[p.CompanyID]; !ok || p.CompletedAt.After(prev) {
			lastCompleted[p.CompanyID] = *p.CompletedAt
		}
	}

	var suggestions []*SuggestedCompany
	for _, c := range companies {
		if disabled[c.ID] || allocated[c.ID] {
			continue
		}
		status := types.ProgressNaoIniciado
		if p := progressByCompany[c.ID]; p != nil {
			status = p.Status
		}
		if status == types.ProgressConcluido {
			continue
		}

		canExecute := installation == nil || moduleID == installation.ID || installationDone[c.ID]
		entry := &SuggestedCompany{
			CompanyID:    c.ID,
			Name:         c.Name,
			Priority:     c.Priority,
			ModuleStatus: status,
			CanExecute:   canExecute,
		}
		if !canExecute {
			reason := "Falta " + installationLabel
			entry.BlockReason = &reason
		}
		if last, ok := lastCompleted[c.ID]; ok {
			lastCopy := last
			entry.LastCompletedAt = &lastCopy
		}
		suggestions = append(suggestions, entry)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.CanExecute != b.CanExecute {
			return a.CanExecute
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		aNever, bNever := a.LastCompletedAt == nil, b.LastCompletedAt == nil
		if aNever != bNever {
			return aNever
		}
		if !aNever && !a.LastCompletedAt.Equal(*b.LastCompletedAt) {
			return a.LastCompletedAt.Before(*b.LastCompletedAt)
		}
		return a.Name < b.Name
	})

	return &AllocationSuggestions{
		EntryDaySuggested: block.StartDayOffset,
		Companies:         suggestions,
	}, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
