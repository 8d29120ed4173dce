package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/repos"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type CreateCompanyInput struct {
	Name          string               `json:"name"`
	Status        *types.CompanyStatus `json:"status"`
	Notes         *string              `json:"notes"`
	Priority      *int                 `json:"priority"`
	PriorityLevel *string              `json:"priority_level"`
	ContactName   *string              `json:"contact_name"`
	ContactPhone  *string              `json:"contact_phone"`
	ContactEmail  *string              `json:"contact_email"`
	Modality      *string              `json:"modality"`
}

type UpdateCompanyInput struct {
	Name          *string              `json:"name"`
	Status        *types.CompanyStatus `json:"status"`
	Notes         *string              `json:"notes"`
	Priority      *int                 `json:"priority"`
	PriorityLevel *string              `json:"priority_level"`
	ContactName   *string              `json:"contact_name"`
	ContactPhone  *string              `json:"contact_phone"`
	ContactEmail  *string              `json:"contact_email"`
	Modality      *string              `json:"modality"`
}

type UpsertProgressInput struct {
	ModuleID           uuid.UUID            `json:"module_id"`
	Status             types.ProgressStatus `json:"status"`
	Notes              *string              `json:"notes"`
	CompletedAt        *time.Time           `json:"completed_at"`
	CustomDurationDays *int                 `json:"custom_duration_days"`
	CustomUnits        *int                 `json:"custom_units"`
}

// JourneyEntry is one module of a company's curriculum with the resolved
// progress and activation state.
type JourneyEntry struct {
	Module      *types.ModuleTemplate        `json:"module"`
	Progress    *types.CompanyModuleProgress `json:"progress"`
	IsEnabled   bool                         `json:"is_enabled"`
	Allocations []*types.CohortAllocation    `json:"allocations,omitempty"`
}

// CompanyOverview is the listing row: curriculum completion rollup over
// enabled modules plus the installation alert.
type CompanyOverview struct {
	Company           *types.Company `json:"company"`
	TotalModules      int            `json:"total_modules"`
	ModulesCompleted  int            `json:"modules_completed"`
	CompletionPercent float64        `json:"completion_percent"`
	NextModuleCode    *string        `json:"next_module_code"`
	NextModuleName    *string        `json:"next_module_name"`
	Alert             *string        `json:"alert"`
}

// OptionalStatusEntry pairs an optional-catalog module with the company's
// progress (missing row resolves to Planejado).
type OptionalStatusEntry struct {
	Optional *types.OptionalModule        `json:"optional"`
	Status   types.OptionalProgressStatus `json:"status"`
	Notes    *string                      `json:"notes,omitempty"`
}

type AllocationHistoryEntry struct {
	AllocationID uuid.UUID              `json:"allocation_id"`
	Status       types.AllocationStatus `json:"status"`
	EntryDay     int                    `json:"entry_day"`
	CohortName   string                 `json:"cohort_name"`
	StartDate    time.Time              `json:"start_date"`
	ModuleCode   string                 `json:"module_code"`
	ModuleName   string                 `json:"module_name"`
}

type CompanyDetail struct {
	Company   *types.Company            `json:"company"`
	Timeline  []*JourneyEntry           `json:"timeline"`
	Optionals []*OptionalStatusEntry    `json:"optionals"`
	History   []*AllocationHistoryEntry `json:"history"`
}

type CompanyService interface {
	Create(ctx context.Context, input CreateCompanyInput) (*types.Company, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCompanyInput) (*types.Company, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*types.Company, error)
	List(ctx context.Context, status *types.CompanyStatus) ([]*types.Company, error)
	Overview(ctx context.Context) ([]*CompanyOverview, error)
	Detail(ctx context.Context, id uuid.UUID) (*CompanyDetail, error)
	Journey(ctx context.Context, id uuid.UUID) ([]*JourneyEntry, error)
	SetPriority(ctx context.Context, id uuid.UUID, priority int) error
	UpsertProgress(ctx context.Context, companyID uuid.UUID, input UpsertProgressInput) (*types.CompanyModuleProgress, error)
	SetActivation(ctx context.Context, companyID, moduleID uuid.UUID, enabled bool) error
	EnsureDefaults(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) error
}

type companyService struct {
	db             *gorm.DB
	log            *logger.Logger
	companyRepo    repos.CompanyRepo
	moduleRepo     repos.ModuleRepo
	allocationRepo repos.AllocationRepo
	cohortRepo     repos.CohortRepo
	optionalRepo   repos.OptionalRepo
	installation   InstallationResolver
	now            func() time.Time
}

func NewCompanyService(
	db *gorm.DB,
	baseLog *logger.Logger,
	companyRepo repos.CompanyRepo,
	moduleRepo repos.ModuleRepo,
	allocationRepo repos.AllocationRepo,
	cohortRepo repos.CohortRepo,
	optionalRepo repos.OptionalRepo,
	installation InstallationResolver,
) CompanyService {
	return &companyService{
		db:             db,
		log:            baseLog.With("service", "CompanyService"),
		companyRepo:    companyRepo,
		moduleRepo:     moduleRepo,
		allocationRepo: allocationRepo,
		cohortRepo:     cohortRepo,
		optionalRepo:   optionalRepo,
		installation:   installation,
		now:            time.Now,
	}
}

func (s *companyService) Create(ctx context.Context, input CreateCompanyInput) (*types.Company, error) {
	if input.Name == "" {
		return nil, apierr.Validation("name is required")
	}
	company := &types.Company{Name: input.Name}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apierr.Validation("unknown company status %q", *input.Status)
		}
		company.Status = *input.Status
	}
	applyCompanyFields(company, UpdateCompanyInput{
		Notes:         input.Notes,
		Priority:      input.Priority,
		PriorityLevel: input.PriorityLevel,
		ContactName:   input.ContactName,
		ContactPhone:  input.ContactPhone,
		ContactEmail:  input.ContactEmail,
		Modality:      input.Modality,
	})

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.companyRepo.GetByName(ctx, tx, input.Name); err == nil {
			return apierr.Conflict("a company named %q already exists", input.Name)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.companyRepo.Create(ctx, tx, company); err != nil {
			return err
		}
		return s.EnsureDefaults(ctx, tx, company.ID)
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

func applyCompanyFields(company *types.Company, input UpdateCompanyInput) {
	if input.Notes != nil {
		company.Notes = input.Notes
	}
	if input.Priority != nil {
		company.Priority = *input.Priority
	}
	if input.PriorityLevel != nil {
		company.PriorityLevel = *input.PriorityLevel
	}
	if input.ContactName != nil {
		company.ContactName = input.ContactName
	}
	if input.ContactPhone != nil {
		company.ContactPhone = input.ContactPhone
	}
	if input.ContactEmail != nil {
		company.ContactEmail = input.ContactEmail
	}
	if input.Modality != nil {
		company.Modality = *input.Modality
	}
}

func (s *companyService) Update(ctx context.Context, id uuid.UUID, input UpdateCompanyInput) (*types.Company, error) {
	var updated *types.Company
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		company, err := s.companyRepo.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("company %s not found", id)
			}
			return err
		}
		if input.Name != nil {
			company.Name = *input.Name
		}
		if input.Status != nil {
			if !input.Status.Valid() {
				return apierr.Validation("unknown company status %q", *input.Status)
			}
			company.Status = *input.Status
		}
		applyCompanyFields(company, input)
		if err := s.companyRepo.Update(ctx, tx, company); err != nil {
			return err
		}
		updated = company
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *companyService) Get(ctx context.Context, id uuid.UUID) (*types.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("company %s not found", id)
		}
		return nil, err
	}
	return company, nil
}

func (s *companyService) List(ctx context.Context, status *types.CompanyStatus) ([]*types.Company, error) {
	if status != nil && !status.Valid() {
		return nil, apierr.Validation("unknown company status %q", *status)
	}
	return s.companyRepo.List(ctx, nil, status)
}

func (s *companyService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.companyRepo.GetByID(ctx, tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("company %s not found", id)
			}
			return err
		}
		if err := s.companyRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		s.log.Info("company deleted", "company_id", id)
		return nil
	})
}

func (s *companyService) SetPriority(ctx context.Context, id uuid.UUID, priority int) error {
	if priority < 0 || priority > 100 {
		return apierr.Validation("priority must be between 0 and 100")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		company, err := s.companyRepo.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("company %s not found", id)
			}
			return err
		}
		company.Priority = priority
		return s.companyRepo.Update(ctx, tx, company)
	})
}

func (s *companyService) Overview(ctx context.Context) ([]*CompanyOverview, error) {
	companies, err := s.companyRepo.List(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	modules, err := s.moduleRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	installation, err := s.installation.Resolve(ctx, nil)
	if err != nil {
		return nil, err
	}

	rows := make([]*CompanyOverview, 0, len(companies))
	for _, company := range companies {
		progress, err := s.companyRepo.ListProgressByCompany(ctx, nil, company.ID)
		if err != nil {
			return nil, err
		}
		activations, err := s.companyRepo.ListActivationsByCompany(ctx, nil, company.ID)
		if err != nil {
			return nil, err
		}
		statusByModule := make(map[uuid.UUID]types.ProgressStatus, len(progress))
		for _, p := range progress {
			statusByModule[p.ModuleID] = p.Status
		}
		enabledByModule := make(map[uuid.UUID]bool, len(activations))
		for _, a := range activations {
			enabledByModule[a.ModuleID] = a.IsEnabled
		}

		row := &CompanyOverview{Company: company}
		for _, m := range modules {
			if enabled, ok := enabledByModule[m.ID]; ok && !enabled {
				continue
			}
			row.TotalModules++
			if statusByModule[m.ID] == types.ProgressConcluido {
				row.ModulesCompleted++
				continue
			}
			// Modules are code-ordered, so the first pending one is next.
			if row.NextModuleCode == nil {
				code, name := m.Code, m.Name
				row.NextModuleCode = &code
				row.NextModuleName = &name
			}
			if installation != nil && m.ID == installation.ID {
				alert := "Falta " + installation.Code
				row.Alert = &alert
			}
		}
		if row.TotalModules > 0 {
			pct := float64(row.ModulesCompleted) / float64(row.TotalModules) * 100
			row.CompletionPercent = math.Round(pct*10) / 10
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *companyService) Detail(ctx context.Context, id uuid.UUID) (*CompanyDetail, error) {
	company, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	timeline, err := s.Journey(ctx, id)
	if err != nil {
		return nil, err
	}

	optionals, err := s.optionalRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	optionalProgress, err := s.optionalRepo.ListProgressByCompany(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	optionalByID := make(map[uuid.UUID]*types.CompanyOptionalProgress, len(optionalProgress))
	for _, p := range optionalProgress {
		optionalByID[p.OptionalModuleID] = p
	}
	optionalEntries := make([]*OptionalStatusEntry, 0, len(optionals))
	for _, opt := range optionals {
		entry := &OptionalStatusEntry{Optional: opt, Status: types.OptionalPlanejado}
		if p, ok := optionalByID[opt.ID]; ok {
			entry.Status = p.Status
			entry.Notes = p.Notes
		}
		optionalEntries = append(optionalEntries, entry)
	}

	history, err := s.allocationHistory(ctx, id, timeline)
	if err != nil {
		return nil, err
	}

	return &CompanyDetail{
		Company:   company,
		Timeline:  timeline,
		Optionals: optionalEntries,
		History:   history,
	}, nil
}

func (s *companyService) allocationHistory(ctx context.Context, companyID uuid.UUID, timeline []*JourneyEntry) ([]*AllocationHistoryEntry, error) {
	allocations, err := s.allocationRepo.ListByCompany(ctx, nil, companyID)
	if err != nil {
		return nil, err
	}
	moduleByID := make(map[uuid.UUID]*types.ModuleTemplate, len(timeline))
	for _, entry := range timeline {
		moduleByID[entry.Module.ID] = entry.Module
	}
	cohortByID := make(map[uuid.UUID]*types.Cohort)
	entries := make([]*AllocationHistoryEntry, 0, len(allocations))
	for _, a := range allocations {
		cohort, ok := cohortByID[a.CohortID]
		if !ok {
			cohort, err = s.cohortRepo.GetByID(ctx, nil, a.CohortID)
			if err != nil {
				return nil, err
			}
			cohortByID[a.CohortID] = cohort
		}
		entry := &AllocationHistoryEntry{
			AllocationID: a.ID,
			Status:       a.Status,
			EntryDay:     a.EntryDay,
			CohortName:   cohort.Name,
			StartDate:    cohort.StartDate,
		}
		if m := moduleByID[a.ModuleID]; m != nil {
			entry.ModuleCode = m.Code
			entry.ModuleName = m.Name
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartDate.After(entries[j].StartDate)
	})
	return entries, nil
}

func (s *companyService) Journey(ctx context.Context, id uuid.UUID) ([]*JourneyEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	modules, err := s.moduleRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	progress, err := s.companyRepo.ListProgressByCompany(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	activations, err := s.companyRepo.ListActivationsByCompany(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	allocations, err := s.allocationRepo.ListByCompany(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	progressByModule := make(map[uuid.UUID]*types.CompanyModuleProgress, len(progress))
	for _, p := range progress {
		progressByModule[p.ModuleID] = p
	}
	enabledByModule := make(map[uuid.UUID]bool, len(activations))
	for _, a := range activations {
		enabledByModule[a.ModuleID] = a.IsEnabled
	}
	allocationsByModule := make(map[uuid.UUID][]*types.CohortAllocation)
	for _, a := range allocations {
		allocationsByModule[a.ModuleID] = append(allocationsByModule[a.ModuleID], a)
	}

	entries := make([]*JourneyEntry, 0, len(modules))
	for _, m := range modules {
		entry := &JourneyEntry{
			Module:      m,
			Progress:    progressByModule[m.ID],
			IsEnabled:   true,
			Allocations: allocationsByModule[m.ID],
		}
		if enabled, ok := enabledByModule[m.ID]; ok {
			entry.IsEnabled = enabled
		}
		if entry.Progress == nil {
			entry.Progress = &types.CompanyModuleProgress{
				CompanyID: id,
				ModuleID:  m.ID,
				Status:    types.ProgressNaoIniciado,
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *companyService) UpsertProgress(ctx context.Context, companyID uuid.UUID, input UpsertProgressInput) (*types.CompanyModuleProgress, error) {
	if !input.Status.Valid() {
		return nil, apierr.Validation("unknown progress status %q", input.Status)
	}
	row := &types.CompanyModuleProgress{
		CompanyID:          companyID,
		ModuleID:           input.ModuleID,
		Status:             input.Status,
		Notes:              input.Notes,
		CompletedAt:        input.CompletedAt,
		CustomDurationDays: input.CustomDurationDays,
		CustomUnits:        input.CustomUnits,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.companyRepo.GetByID(ctx, tx, companyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("company %s not found", companyID)
			}
			return err
		}
		if _, err := s.moduleRepo.GetByID(ctx, tx, input.ModuleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("module %s not found", input.ModuleID)
			}
			return err
		}
		activation, err := s.companyRepo.GetActivation(ctx, tx, companyID, input.ModuleID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if activation != nil && !activation.IsEnabled {
			return apierr.Validation("module is disabled for this company")
		}
		// Completion date follows the status: Concluido stamps one,
		// anything else clears it.
		if input.Status == types.ProgressConcluido {
			if row.CompletedAt == nil {
				today := dateOnly(s.now())
				row.CompletedAt = &today
			}
		} else {
			row.CompletedAt = nil
		}
		return s.companyRepo.UpsertProgress(ctx, tx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *companyService) SetActivation(ctx context.Context, companyID, moduleID uuid.UUID, enabled bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.companyRepo.GetByID(ctx, tx, companyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("company %s not found", companyID)
			}
			return err
		}
		if _, err := s.moduleRepo.GetByID(ctx, tx, moduleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("module %s not found", moduleID)
			}
			return err
		}
		err := s.companyRepo.SetActivation(ctx, tx, &types.CompanyModuleActivation{
			CompanyID: companyID,
			ModuleID:  moduleID,
			IsEnabled: enabled,
		})
		if err != nil {
			return err
		}
		if !enabled {
			return nil
		}
		// Re-enabling restores a progress row if one was never created.
		if _, err := s.companyRepo.GetProgress(ctx, tx, companyID, moduleID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return s.companyRepo.UpsertProgress(ctx, tx, &types.CompanyModuleProgress{
				CompanyID: companyID,
				ModuleID:  moduleID,
				Status:    types.ProgressNaoIniciado,
			})
		}
		return nil
	})
}

// EnsureDefaults backfills progress and activation rows for every module so
// any (company, module) pair resolves without special-casing missing rows.
func (s *companyService) EnsureDefaults(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) error {
	modules, err := s.moduleRepo.ListAll(ctx, tx)
	if err != nil {
		return err
	}
	existingProgress, err := s.companyRepo.ListProgressByCompany(ctx, tx, companyID)
	if err != nil {
		return err
	}
	existingActivation, err := s.companyRepo.ListActivationsByCompany(ctx, tx, companyID)
	if err != nil {
		return err
	}
	hasProgress := make(map[uuid.UUID]bool, len(existingProgress))
	for _, p := range existingProgress {
		hasProgress[p.ModuleID] = true
	}
	hasActivation := make(map[uuid.UUID]bool, len(existingActivation))
	for _, a := range existingActivation {
		hasActivation[a.ModuleID] = true
	}
	for _, m := range modules {
		if !hasProgress[m.ID] {
			row := &types.CompanyModuleProgress{
				CompanyID: companyID,
				ModuleID:  m.ID,
				Status:    types.ProgressNaoIniciado,
			}
			if err := s.companyRepo.UpsertProgress(ctx, tx, row); err != nil {
				return err
			}
		}
		if !hasActivation[m.ID] {
			row := &types.CompanyModuleActivation{
				CompanyID: companyID,
				ModuleID:  m.ID,
				IsEnabled: true,
			}
			if err := s.companyRepo.SetActivation(ctx, tx, row); err != nil {
				return err
			}
		}
	}
	return nil
}
