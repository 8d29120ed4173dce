package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/repos"
	"github.com/yohannreimer/projeto-treinamentos/internal/schedule"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

// CohortBlockInput is one block of a proposed cohort sequence.
type CohortBlockInput struct {
	ModuleID       uuid.UUID `json:"module_id"`
	OrderInCohort  int       `json:"order_in_cohort"`
	StartDayOffset int       `json:"start_day_offset"`
	DurationDays   int       `json:"duration_days"`
}

type CreateCohortInput struct {
	Code              string              `json:"code"`
	Name              string              `json:"name"`
	StartDate         time.Time           `json:"start_date"`
	TechnicianID      *uuid.UUID          `json:"technician_id"`
	Status            *types.CohortStatus `json:"status"`
	CapacityCompanies int                 `json:"capacity_companies"`
	Period            *string             `json:"period"`
	DeliveryMode      *string             `json:"delivery_mode"`
	Notes             *string             `json:"notes"`
	Blocks            []CohortBlockInput  `json:"blocks"`
}

// UpdateCohortInput carries a partial update. Nil fields are left
// untouched; a nil Blocks slice keeps the existing sequence.
type UpdateCohortInput struct {
	Name              *string             `json:"name"`
	StartDate         *time.Time          `json:"start_date"`
	TechnicianID      *uuid.UUID          `json:"technician_id"`
	ClearTechnician   bool                `json:"clear_technician"`
	Status            *types.CohortStatus `json:"status"`
	CapacityCompanies *int                `json:"capacity_companies"`
	Period            *string             `json:"period"`
	DeliveryMode      *string             `json:"delivery_mode"`
	Notes             *string             `json:"notes"`
	Blocks            []CohortBlockInput  `json:"blocks"`
}

// TechnicianConflict describes the first existing cohort whose business-day
// occupancy intersects a candidate timeline.
type TechnicianConflict struct {
	CohortID    uuid.UUID `json:"cohort_id"`
	CohortCode  string    `json:"cohort_code"`
	CohortName  string    `json:"cohort_name"`
	StartDate   time.Time `json:"start_date"`
	OverlapDate time.Time `json:"overlap_date"`
}

// CohortDetail bundles a cohort with its ordered blocks and the resolved
// business-day dates of its timeline.
type CohortDetail struct {
	Cohort *types.Cohort              `json:"cohort"`
	Blocks []*types.CohortModuleBlock `json:"blocks"`
	Dates  []time.Time                `json:"dates"`
}

type CohortService interface {
	Create(ctx context.Context, input CreateCohortInput) (*types.Cohort, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCohortInput) (*types.Cohort, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*CohortDetail, error)
	List(ctx context.Context, status *types.CohortStatus) ([]*types.Cohort, error)
	CalendarFeed(ctx context.Context) ([]*CalendarFeedEntry, error)
	FindTechnicianConflict(ctx context.Context, tx *gorm.DB, technicianID uuid.UUID, startDate time.Time, spans []schedule.BlockSpan, excludeCohortID uuid.UUID) (*TechnicianConflict, error)
}

// CalendarFeedEntry is one cohort as the planning calendar renders it:
// occupancy over distinct companies still in, participant names, and the
// module sequence in block order.
type CalendarFeedEntry struct {
	Cohort            *types.Cohort `json:"cohort"`
	TechnicianName    *string       `json:"technician_name"`
	Occupancy         int           `json:"occupancy"`
	ParticipantNames  []string      `json:"participant_names"`
	ModuleCodes       []string      `json:"module_codes"`
	ModuleNames       []string      `json:"module_names"`
	TotalDurationDays int           `json:"total_duration_days"`
}

type cohortService struct {
	db             *gorm.DB
	log            *logger.Logger
	cohortRepo     repos.CohortRepo
	moduleRepo     repos.ModuleRepo
	technicianRepo repos.TechnicianRepo
	allocationRepo repos.AllocationRepo
	companyRepo    repos.CompanyRepo
}

func NewCohortService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cohortRepo repos.CohortRepo,
	moduleRepo repos.ModuleRepo,
	technicianRepo repos.TechnicianRepo,
	allocationRepo repos.AllocationRepo,
	companyRepo repos.CompanyRepo,
) CohortService {
	return &cohortService{
		db:             db,
		log:            baseLog.With("service", "CohortService"),
		cohortRepo:     cohortRepo,
		moduleRepo:     moduleRepo,
		technicianRepo: technicianRepo,
		allocationRepo: allocationRepo,
		companyRepo:    companyRepo,
	}
}

func toDrafts(blocks []CohortBlockInput) []schedule.BlockDraft {
	drafts := make([]schedule.BlockDraft, 0, len(blocks))
	for _, b := range blocks {
		drafts = append(drafts, schedule.BlockDraft{
			ModuleID:       b.ModuleID,
			OrderInCohort:  b.OrderInCohort,
			StartDayOffset: b.StartDayOffset,
			DurationDays:   b.DurationDays,
		})
	}
	return drafts
}

func spansOf(blocks []*types.CohortModuleBlock) []schedule.BlockSpan {
	spans := make([]schedule.BlockSpan, 0, len(blocks))
	for _, b := range blocks {
		spans = append(spans, schedule.BlockSpan{StartDayOffset: b.StartDayOffset, DurationDays: b.DurationDays})
	}
	return spans
}

func validateBlockInput(blocks []CohortBlockInput) error {
	if err := schedule.ValidateBlocks(toDrafts(blocks)); err != nil {
		var be *schedule.BlockError
		if errors.As(err, &be) {
			return apierr.Validation("%s", be.Detail)
		}
		return apierr.Validation("invalid block sequence")
	}
	return nil
}

func (s *cohortService) checkModulesExist(ctx context.Context, tx *gorm.DB, blocks []CohortBlockInput) error {
	ids := make([]uuid.UUID, 0, len(blocks))
	for _, b := range blocks {
		ids = append(ids, b.ModuleID)
	}
	modules, err := s.moduleRepo.GetByIDs(ctx, tx, ids)
	if err != nil {
		return err
	}
	if len(modules) != len(ids) {
		return apierr.Validation("one or more block modules do not exist")
	}
	return nil
}

func (s *cohortService) Create(ctx context.Context, input CreateCohortInput) (*types.Cohort, error) {
	if input.Code == "" || input.Name == "" {
		return nil, apierr.Validation("code and name are required")
	}
	if input.CapacityCompanies < 1 {
		return nil, apierr.Validation("capacity_companies must be at least 1")
	}
	status := types.CohortPlanejada
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apierr.Validation("unknown cohort status %q", *input.Status)
		}
		status = *input.Status
	}
	if err := validateBlockInput(input.Blocks); err != nil {
		return nil, err
	}

	cohort := &types.Cohort{
		Code:              input.Code,
		Name:              input.Name,
		StartDate:         input.StartDate,
		TechnicianID:      input.TechnicianID,
		Status:            status,
		CapacityCompanies: input.CapacityCompanies,
		Notes:             input.Notes,
	}
	if input.Period != nil {
		cohort.Period = *input.Period
	}
	if input.DeliveryMode != nil {
		cohort.DeliveryMode = *input.DeliveryMode
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkModulesExist(ctx, tx, input.Blocks); err != nil {
			return err
		}
		if _, err := s.cohortRepo.GetByCode(ctx, tx, input.Code); err == nil {
			return apierr.Conflict("a cohort with code %q already exists", input.Code)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if input.TechnicianID != nil && status != types.CohortCancelada {
			conflict, err := s.FindTechnicianConflict(ctx, tx, *input.TechnicianID, input.StartDate, spanInputs(input.Blocks), uuid.Nil)
			if err != nil {
				return err
			}
			if conflict != nil {
				return apierr.Conflict("technician already booked by cohort %s (%s) on %s",
					conflict.CohortCode, conflict.CohortName, conflict.OverlapDate.Format("2006-01-02"))
			}
		}
		if err := s.cohortRepo.Create(ctx, tx, cohort); err != nil {
			return err
		}
		blocks := make([]*types.CohortModuleBlock, 0, len(input.Blocks))
		for _, b := range input.Blocks {
			blocks = append(blocks, &types.CohortModuleBlock{
				CohortID:       cohort.ID,
				ModuleID:       b.ModuleID,
				OrderInCohort:  b.OrderInCohort,
				StartDayOffset: b.StartDayOffset,
				DurationDays:   b.DurationDays,
			})
		}
		return s.cohortRepo.ReplaceBlocks(ctx, tx, cohort.ID, blocks)
	})
	if err != nil {
		return nil, err
	}
	return cohort, nil
}

func spanInputs(blocks []CohortBlockInput) []schedule.BlockSpan {
	spans := make([]schedule.BlockSpan, 0, len(blocks))
	for _, b := range blocks {
		spans = append(spans, schedule.BlockSpan{StartDayOffset: b.StartDayOffset, DurationDays: b.DurationDays})
	}
	return spans
}

func (s *cohortService) Update(ctx context.Context, id uuid.UUID, input UpdateCohortInput) (*types.Cohort, error) {
	var updated *types.Cohort
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cohort, err := s.cohortRepo.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("cohort %s not found", id)
			}
			return err
		}

		replacingBlocks := input.Blocks != nil
		if replacingBlocks {
			if err := validateBlockInput(input.Blocks); err != nil {
				return err
			}
			if err := s.checkModulesExist(ctx, tx, input.Blocks); err != nil {
				return err
			}
			if err := s.checkActiveAllocationsAgainstBlocks(ctx, tx, id, input.Blocks); err != nil {
				return err
			}
		}

		if input.Name != nil {
			cohort.Name = *input.Name
		}
		if input.StartDate != nil {
			cohort.StartDate = *input.StartDate
		}
		if input.ClearTechnician {
			cohort.TechnicianID = nil
		} else if input.TechnicianID != nil {
			cohort.TechnicianID = input.TechnicianID
		}
		if input.Status != nil {
			if !input.Status.Valid() {
				return apierr.Validation("unknown cohort status %q", *input.Status)
			}
			cohort.Status = *input.Status
		}
		if input.CapacityCompanies != nil {
			if *input.CapacityCompanies < 1 {
				return apierr.Validation("capacity_companies must be at least 1")
			}
			cohort.CapacityCompanies = *input.CapacityCompanies
		}
		if input.Period != nil {
			cohort.Period = *input.Period
		}
		if input.DeliveryMode != nil {
			cohort.DeliveryMode = *input.DeliveryMode
		}
		if input.Notes != nil {
			cohort.Notes = input.Notes
		}

		// Conflict detection runs against the effective state, not the
		// stored one, so a start-date move and a block change are checked
		// together.
		if cohort.TechnicianID != nil && cohort.Status != types.CohortCancelada {
			var spans []schedule.BlockSpan
			if replacingBlocks {
				spans = spanInputs(input.Blocks)
			} else {
				existing, err := s.cohortRepo.ListBlocks(ctx, tx, id)
				if err != nil {
					return err
				}
				spans = spansOf(existing)
			}
			conflict, err := s.FindTechnicianConflict(ctx, tx, *cohort.TechnicianID, cohort.StartDate, spans, id)
			if err != nil {
				return err
			}
			if conflict != nil {
				return apierr.Conflict("technician already booked by cohort %s (%s) on %s",
					conflict.CohortCode, conflict.CohortName, conflict.OverlapDate.Format("2006-01-02"))
			}
		}

		if err := s.cohortRepo.Update(ctx, tx, cohort); err != nil {
			return err
		}
		if replacingBlocks {
			blocks := make([]*types.CohortModuleBlock, 0, len(input.Blocks))
			for _, b := range input.Blocks {
				blocks = append(blocks, &types.CohortModuleBlock{
					CohortID:       id,
					ModuleID:       b.ModuleID,
					OrderInCohort:  b.OrderInCohort,
					StartDayOffset: b.StartDayOffset,
					DurationDays:   b.DurationDays,
				})
			}
			if err := s.cohortRepo.ReplaceBlocks(ctx, tx, id, blocks); err != nil {
				return err
			}
		}
		updated = cohort
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// checkActiveAllocationsAgainstBlocks guards a block replacement: active
// allocations must keep a block for their module, and their entry day must
// not fall before the module's new start offset.
func (s *cohortService) checkActiveAllocationsAgainstBlocks(ctx context.Context, tx *gorm.DB, cohortID uuid.UUID, blocks []CohortBlockInput) error {
	allocations, err := s.allocationRepo.ListByCohort(ctx, tx, cohortID)
	if err != nil {
		return err
	}
	offsets := make(map[uuid.UUID]int, len(blocks))
	for _, b := range blocks {
		offsets[b.ModuleID] = b.StartDayOffset
	}
	for _, a := range allocations {
		if a.Status == types.AllocationCancelado {
			continue
		}
		offset, ok := offsets[a.ModuleID]
		if !ok {
			return apierr.Conflict("cannot remove module %s: active allocations reference it", a.ModuleID)
		}
		if a.EntryDay < offset {
			return apierr.Conflict("allocation for company %s would start on day %d, before the module's new start day %d",
				a.CompanyID, a.EntryDay, offset)
		}
	}
	return nil
}

func (s *cohortService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.cohortRepo.GetByID(ctx, tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("cohort %s not found", id)
			}
			return err
		}
		return s.cohortRepo.Delete(ctx, tx, id)
	})
}

func (s *cohortService) Get(ctx context.Context, id uuid.UUID) (*CohortDetail, error) {
	cohort, err := s.cohortRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("cohort %s not found", id)
		}
		return nil, err
	}
	blocks, err := s.cohortRepo.ListBlocks(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return &CohortDetail{
		Cohort: cohort,
		Blocks: blocks,
		Dates:  schedule.CohortBusinessDates(cohort.StartDate, spansOf(blocks)),
	}, nil
}

func (s *cohortService) List(ctx context.Context, status *types.CohortStatus) ([]*types.Cohort, error) {
	if status != nil && !status.Valid() {
		return nil, apierr.Validation("unknown cohort status %q", *status)
	}
	return s.cohortRepo.List(ctx, nil, status)
}

func (s *cohortService) CalendarFeed(ctx context.Context) ([]*CalendarFeedEntry, error) {
	cohorts, err := s.cohortRepo.List(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	cohortIDs := make([]uuid.UUID, 0, len(cohorts))
	for _, c := range cohorts {
		cohortIDs = append(cohortIDs, c.ID)
	}
	blocks, err := s.cohortRepo.ListBlocksByCohorts(ctx, nil, cohortIDs)
	if err != nil {
		return nil, err
	}
	allocations, err := s.allocationRepo.ListByCohorts(ctx, nil, cohortIDs)
	if err != nil {
		return nil, err
	}
	companies, err := s.companyRepo.List(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	technicians, err := s.technicianRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}

	moduleIDs := make([]uuid.UUID, 0, len(blocks))
	seenModule := make(map[uuid.UUID]bool, len(blocks))
	for _, b := range blocks {
		if !seenModule[b.ModuleID] {
			seenModule[b.ModuleID] = true
			moduleIDs = append(moduleIDs, b.ModuleID)
		}
	}
	modules, err := s.moduleRepo.GetByIDs(ctx, nil, moduleIDs)
	if err != nil {
		return nil, err
	}
	moduleByID := make(map[uuid.UUID]*types.ModuleTemplate, len(modules))
	for _, m := range modules {
		moduleByID[m.ID] = m
	}
	companyByID := make(map[uuid.UUID]*types.Company, len(companies))
	for _, c := range companies {
		companyByID[c.ID] = c
	}
	technicianByID := make(map[uuid.UUID]*types.Technician, len(technicians))
	for _, t := range technicians {
		technicianByID[t.ID] = t
	}
	blocksByCohort := make(map[uuid.UUID][]*types.CohortModuleBlock, len(cohorts))
	for _, b := range blocks {
		blocksByCohort[b.CohortID] = append(blocksByCohort[b.CohortID], b)
	}
	allocationsByCohort := make(map[uuid.UUID][]*types.CohortAllocation, len(cohorts))
	for _, a := range allocations {
		allocationsByCohort[a.CohortID] = append(allocationsByCohort[a.CohortID], a)
	}

	entries := make([]*CalendarFeedEntry, 0, len(cohorts))
	for _, c := range cohorts {
		entry := &CalendarFeedEntry{Cohort: c}
		if c.TechnicianID != nil {
			if t := technicianByID[*c.TechnicianID]; t != nil {
				name := t.Name
				entry.TechnicianName = &name
			}
		}
		// Occupancy counts distinct companies still in the cohort.
		participants := make(map[uuid.UUID]bool)
		for _, a := range allocationsByCohort[c.ID] {
			if a.Status == types.AllocationCancelado || participants[a.CompanyID] {
				continue
			}
			participants[a.CompanyID] = true
			if company := companyByID[a.CompanyID]; company != nil {
				entry.ParticipantNames = append(entry.ParticipantNames, company.Name)
			}
		}
		entry.Occupancy = len(participants)
		sort.Strings(entry.ParticipantNames)
		for _, b := range blocksByCohort[c.ID] {
			duration := b.DurationDays
			if duration < 1 {
				duration = 1
			}
			entry.TotalDurationDays += duration
			if m := moduleByID[b.ModuleID]; m != nil {
				entry.ModuleCodes = append(entry.ModuleCodes, m.Code)
				entry.ModuleNames = append(entry.ModuleNames, m.Name)
			}
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Cohort.StartDate.Before(entries[j].Cohort.StartDate)
	})
	return entries, nil
}

// FindTechnicianConflict intersects the candidate timeline's business-day
// date set with every non-cancelled cohort of the technician, in start-date
// order, and reports the first overlap. Occupancy is a date set, not an
// interval, so mid-cohort gaps never produce false positives.
func (s *cohortService) FindTechnicianConflict(ctx context.Context, tx *gorm.DB, technicianID uuid.UUID, startDate time.Time, spans []schedule.BlockSpan, excludeCohortID uuid.UUID) (*TechnicianConflict, error) {
	if _, err := s.technicianRepo.GetByID(ctx, tx, technicianID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("technician %s not found", technicianID)
		}
		return nil, err
	}

	candidate := make(map[string]time.Time)
	for _, d := range schedule.CohortBusinessDates(startDate, spans) {
		candidate[schedule.DateKey(d)] = d
	}

	existing, err := s.cohortRepo.ListActiveByTechnician(ctx, tx, technicianID, excludeCohortID)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		blocks, err := s.cohortRepo.ListBlocks(ctx, tx, other.ID)
		if err != nil {
			return nil, err
		}
		var overlap *time.Time
		for _, d := range schedule.CohortBusinessDates(other.StartDate, spansOf(blocks)) {
			if _, ok := candidate[schedule.DateKey(d)]; ok {
				if overlap == nil || d.Before(*overlap) {
					day := d
					overlap = &day
				}
			}
		}
		if overlap != nil {
			return &TechnicianConflict{
				CohortID:    other.ID,
				CohortCode:  other.Code,
				CohortName:  other.Name,
				StartDate:   other.StartDate,
				OverlapDate: *overlap,
			}, nil
		}
	}
	return nil, nil
}
