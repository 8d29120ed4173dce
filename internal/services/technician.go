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
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type TechnicianInput struct {
	Name              string      `json:"name"`
	AvailabilityNotes *string     `json:"availability_notes"`
	SkillModuleIDs    []uuid.UUID `json:"skill_module_ids"`
}

// TechnicianSkill is one deliverable module, resolved to its catalog entry.
type TechnicianSkill struct {
	ModuleID uuid.UUID `json:"module_id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
}

// TechnicianDetail pairs a technician with the modules they can deliver and
// the number of cohorts on their plate in the current month.
type TechnicianDetail struct {
	Technician  *types.Technician  `json:"technician"`
	SkillIDs    []uuid.UUID        `json:"skill_module_ids"`
	Skills      []*TechnicianSkill `json:"skills"`
	MonthlyLoad int                `json:"monthly_load"`
}

type TechnicianCalendarBlock struct {
	Block      *types.CohortModuleBlock `json:"block"`
	ModuleCode string                   `json:"module_code"`
	ModuleName string                   `json:"module_name"`
}

type TechnicianCalendarEntry struct {
	Cohort    *types.Cohort              `json:"cohort"`
	Occupancy int64                      `json:"occupancy"`
	Blocks    []*TechnicianCalendarBlock `json:"blocks"`
}

type TechnicianService interface {
	Create(ctx context.Context, input TechnicianInput) (*types.Technician, error)
	Update(ctx context.Context, id uuid.UUID, input TechnicianInput) (*types.Technician, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*TechnicianDetail, error)
	List(ctx context.Context) ([]*TechnicianDetail, error)
	Calendar(ctx context.Context, id uuid.UUID, from, to *time.Time) ([]*TechnicianCalendarEntry, error)
}

type technicianService struct {
	db             *gorm.DB
	log            *logger.Logger
	technicianRepo repos.TechnicianRepo
	moduleRepo     repos.ModuleRepo
	cohortRepo     repos.CohortRepo
	allocationRepo repos.AllocationRepo
	now            func() time.Time
}

func NewTechnicianService(
	db *gorm.DB,
	baseLog *logger.Logger,
	technicianRepo repos.TechnicianRepo,
	moduleRepo repos.ModuleRepo,
	cohortRepo repos.CohortRepo,
	allocationRepo repos.AllocationRepo,
) TechnicianService {
	return &technicianService{
		db:             db,
		log:            baseLog.With("service", "TechnicianService"),
		technicianRepo: technicianRepo,
		moduleRepo:     moduleRepo,
		cohortRepo:     cohortRepo,
		allocationRepo: allocationRepo,
		now:            time.Now,
	}
}

func (s *technicianService) validateSkills(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(moduleIDs))
	deduped := make([]uuid.UUID, 0, len(moduleIDs))
	for _, id := range moduleIDs {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		deduped = append(deduped, id)
	}
	modules, err := s.moduleRepo.GetByIDs(ctx, tx, deduped)
	if err != nil {
		return nil, err
	}
	if len(modules) != len(deduped) {
		return nil, apierr.Validation("one or more skill modules do not exist")
	}
	return deduped, nil
}

func (s *technicianService) Create(ctx context.Context, input TechnicianInput) (*types.Technician, error) {
	if input.Name == "" {
		return nil, apierr.Validation("name is required")
	}
	technician := &types.Technician{
		Name:              input.Name,
		AvailabilityNotes: input.AvailabilityNotes,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skills, err := s.validateSkills(ctx, tx, input.SkillModuleIDs)
		if err != nil {
			return err
		}
		if err := s.technicianRepo.Create(ctx, tx, technician); err != nil {
			return err
		}
		return s.technicianRepo.ReplaceSkills(ctx, tx, technician.ID, skills)
	})
	if err != nil {
		return nil, err
	}
	return technician, nil
}

func (s *technicianService) Update(ctx context.Context, id uuid.UUID, input TechnicianInput) (*types.Technician, error) {
	var updated *types.Technician
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		technician, err := s.technicianRepo.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("technician %s not found", id)
			}
			return err
		}
		if input.Name != "" {
			technician.Name = input.Name
		}
		if input.AvailabilityNotes != nil {
			technician.AvailabilityNotes = input.AvailabilityNotes
		}
		if err := s.technicianRepo.Update(ctx, tx, technician); err != nil {
			return err
		}
		if input.SkillModuleIDs != nil {
			skills, err := s.validateSkills(ctx, tx, input.SkillModuleIDs)
			if err != nil {
				return err
			}
			if err := s.technicianRepo.ReplaceSkills(ctx, tx, id, skills); err != nil {
				return err
			}
		}
		updated = technician
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *technicianService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.technicianRepo.GetByID(ctx, tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("technician %s not found", id)
			}
			return err
		}
		if err := s.technicianRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		s.log.Info("technician deleted", "technician_id", id)
		return nil
	})
}

func (s *technicianService) detail(ctx context.Context, technician *types.Technician) (*TechnicianDetail, error) {
	skills, err := s.technicianRepo.ListSkills(ctx, nil, technician.ID)
	if err != nil {
		return nil, err
	}
	detail := &TechnicianDetail{Technician: technician}
	moduleIDs := make([]uuid.UUID, 0, len(skills))
	for _, skill := range skills {
		detail.SkillIDs = append(detail.SkillIDs, skill.ModuleID)
		moduleIDs = append(moduleIDs, skill.ModuleID)
	}
	modules, err := s.moduleRepo.GetByIDs(ctx, nil, moduleIDs)
	if err != nil {
		return nil, err
	}
	for _, m := range modules {
		detail.Skills = append(detail.Skills, &TechnicianSkill{
			ModuleID: m.ID,
			Code:     m.Code,
			Name:     m.Name,
		})
	}
	sort.Slice(detail.Skills, func(i, j int) bool {
		return detail.Skills[i].Code < detail.Skills[j].Code
	})
	load, err := s.monthlyLoad(ctx, technician.ID)
	if err != nil {
		return nil, err
	}
	detail.MonthlyLoad = load
	return detail, nil
}

// monthlyLoad counts cohorts still in play this calendar month. Concluded and
// cancelled cohorts do not weigh on the technician.
func (s *technicianService) monthlyLoad(ctx context.Context, id uuid.UUID) (int, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	cohorts, err := s.cohortRepo.ListByTechnician(ctx, nil, id, &from, &to)
	if err != nil {
		return 0, err
	}
	load := 0
	for _, c := range cohorts {
		switch c.Status {
		case types.CohortPlanejada, types.CohortAguardandoQuorum, types.CohortConfirmada:
			load++
		}
	}
	return load, nil
}

func (s *technicianService) Get(ctx context.Context, id uuid.UUID) (*TechnicianDetail, error) {
	technician, err := s.technicianRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("technician %s not found", id)
		}
		return nil, err
	}
	return s.detail(ctx, technician)
}

func (s *technicianService) List(ctx context.Context) ([]*TechnicianDetail, error) {
	technicians, err := s.technicianRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	details := make([]*TechnicianDetail, 0, len(technicians))
	for _, t := range technicians {
		detail, err := s.detail(ctx, t)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *technicianService) Calendar(ctx context.Context, id uuid.UUID, from, to *time.Time) ([]*TechnicianCalendarEntry, error) {
	if _, err := s.technicianRepo.GetByID(ctx, nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("technician %s not found", id)
		}
		return nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, apierr.Validation("date_to must not precede date_from")
	}
	cohorts, err := s.cohortRepo.ListByTechnician(ctx, nil, id, from, to)
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
	moduleIDs := make([]uuid.UUID, 0, len(blocks))
	seen := make(map[uuid.UUID]bool, len(blocks))
	for _, b := range blocks {
		if !seen[b.ModuleID] {
			seen[b.ModuleID] = true
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
	blocksByCohort := make(map[uuid.UUID][]*types.CohortModuleBlock, len(cohorts))
	for _, b := range blocks {
		blocksByCohort[b.CohortID] = append(blocksByCohort[b.CohortID], b)
	}

	entries := make([]*TechnicianCalendarEntry, 0, len(cohorts))
	for _, c := range cohorts {
		occupancy, err := s.allocationRepo.CountActiveByCohort(ctx, nil, c.ID)
		if err != nil {
			return nil, err
		}
		entry := &TechnicianCalendarEntry{Cohort: c, Occupancy: occupancy}
		for _, b := range blocksByCohort[c.ID] {
			calBlock := &TechnicianCalendarBlock{Block: b}
			if m := moduleByID[b.ModuleID]; m != nil {
				calBlock.ModuleCode = m.Code
				calBlock.ModuleName = m.Name
			}
			entry.Blocks = append(entry.Blocks, calBlock)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
