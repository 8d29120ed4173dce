package importer

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/repos"
	"github.com/yohannreimer/projeto-treinamentos/internal/services"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type Options struct {
	// ResetData wipes every domain table before applying the workbook, so
	// the import is the new source of truth. Leave false to merge into the
	// existing dataset with upsert semantics.
	ResetData bool
}

type Summary struct {
	Dir                     string `json:"dir"`
	Modules                 int    `json:"modules"`
	Companies               int    `json:"companies"`
	Technicians             int    `json:"technicians"`
	Cohorts                 int    `json:"cohorts"`
	CohortBlocks            int    `json:"cohort_blocks"`
	Allocations             int    `json:"allocations"`
	Optionals               int    `json:"optionals"`
	CompanyProgressUpdates  int    `json:"company_progress_updates"`
	OptionalProgressUpdates int    `json:"optional_progress_updates"`
}

// WorkbookImporter bulk-loads the operations workbook (one CSV file per
// sheet) through the same repositories the interactive API uses. The whole
// load runs in a single transaction; either every sheet lands or none do.
type WorkbookImporter interface {
	ImportDir(ctx context.Context, dir string, opts Options) (*Summary, error)
}

type workbookImporter struct {
	db             *gorm.DB
	log            *logger.Logger
	moduleRepo     repos.ModuleRepo
	companyRepo    repos.CompanyRepo
	technicianRepo repos.TechnicianRepo
	cohortRepo     repos.CohortRepo
	allocationRepo repos.AllocationRepo
	optionalRepo   repos.OptionalRepo
	installation   services.InstallationResolver
	now            func() time.Time
}

func NewWorkbookImporter(
	db *gorm.DB,
	baseLog *logger.Logger,
	moduleRepo repos.ModuleRepo,
	companyRepo repos.CompanyRepo,
	technicianRepo repos.TechnicianRepo,
	cohortRepo repos.CohortRepo,
	allocationRepo repos.AllocationRepo,
	optionalRepo repos.OptionalRepo,
	installation services.InstallationResolver,
) WorkbookImporter {
	return &workbookImporter{
		db:             db,
		log:            baseLog.With("service", "WorkbookImporter"),
		moduleRepo:     moduleRepo,
		companyRepo:    companyRepo,
		technicianRepo: technicianRepo,
		cohortRepo:     cohortRepo,
		allocationRepo: allocationRepo,
		optionalRepo:   optionalRepo,
		installation:   installation,
		now:            time.Now,
	}
}

type workbookSheets struct {
	journey          []sheetRow
	companies        []sheetRow
	companyProgress  []sheetRow
	technicians      []sheetRow
	cohorts          []sheetRow
	cohortModules    []sheetRow
	allocations      []sheetRow
	optionals        []sheetRow
	optionalProgress []sheetRow
}

func (s *workbookImporter) ImportDir(ctx context.Context, dir string, opts Options) (*Summary, error) {
	sheets, err := s.readSheets(ctx, dir)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Dir: dir}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.apply(ctx, tx, sheets, opts, summary)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("workbook import complete",
		"dir", dir,
		"modules", summary.Modules,
		"companies", summary.Companies,
		"cohorts", summary.Cohorts,
		"allocations", summary.Allocations)
	return summary, nil
}

func (s *workbookImporter) readSheets(ctx context.Context, dir string) (*workbookSheets, error) {
	sheets := &workbookSheets{}
	g, _ := errgroup.WithContext(ctx)
	read := func(name string, dst *[]sheetRow) {
		g.Go(func() error {
			rows, err := readSheet(dir, name)
			if err != nil {
				return err
			}
			*dst = rows
			return nil
		})
	}
	read(sheetJourney, &sheets.journey)
	read(sheetCompanies, &sheets.companies)
	read(sheetCompanyProgress, &sheets.companyProgress)
	read(sheetTechnicians, &sheets.technicians)
	read(sheetCohorts, &sheets.cohorts)
	read(sheetCohortModules, &sheets.cohortModules)
	read(sheetAllocations, &sheets.allocations)
	read(sheetOptionals, &sheets.optionals)
	read(sheetOptionalProgress, &sheets.optionalProgress)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sheets, nil
}

// importState carries the name/code lookup maps across sheets. Keys follow
// the workbook's identity rules: codes uppercased, names accent-folded.
type importState struct {
	modulesByCode    map[string]*types.ModuleTemplate
	companiesByName  map[string]*types.Company
	techsByName      map[string]*types.Technician
	cohortsByCode    map[string]*types.Cohort
	optionalsByCode  map[string]*types.OptionalModule
	blocksByCohort   map[uuid.UUID]map[int]*types.CohortModuleBlock
	rewrittenCohorts map[uuid.UUID]bool
}

func (s *workbookImporter) apply(ctx context.Context, tx *gorm.DB, sheets *workbookSheets, opts Options, summary *Summary) error {
	if opts.ResetData {
		if err := s.clearAll(tx); err != nil {
			return err
		}
	}
	state, err := s.loadState(ctx, tx)
	if err != nil {
		return err
	}
	if err := s.applyModules(ctx, tx, sheets.journey, state, summary); err != nil {
		return err
	}
	if err := s.applyCompanies(ctx, tx, sheets.companies, state, summary); err != nil {
		return err
	}
	if err := s.applyTechnicians(ctx, tx, sheets.technicians, state, summary); err != nil {
		return err
	}
	if err := s.applyCohorts(ctx, tx, sheets.cohorts, state, summary); err != nil {
		return err
	}
	if err := s.applyBlocks(ctx, tx, sheets.cohortModules, state, summary); err != nil {
		return err
	}
	if err := s.applyCompanyProgress(ctx, tx, sheets.companyProgress, state, summary); err != nil {
		return err
	}
	if err := s.applyOptionals(ctx, tx, sheets.optionals, state, summary); err != nil {
		return err
	}
	if err := s.applyOptionalProgress(ctx, tx, sheets.optionalProgress, state, summary); err != nil {
		return err
	}
	if err := s.applyAllocations(ctx, tx, sheets.allocations, state, summary); err != nil {
		return err
	}
	// Runs last so companies auto-created by later sheets get rows too.
	return s.ensureDefaultProgress(ctx, tx, state)
}

// clearAll deletes domain rows in reverse dependency order. User accounts
// survive a reset.
func (s *workbookImporter) clearAll(tx *gorm.DB) error {
	models := []interface{}{
		&types.CompanyLicense{},
		&types.LicenseProgram{},
		&types.CompanyOptionalProgress{},
		&types.OptionalModule{},
		&types.CompanyModuleActivation{},
		&types.CohortAllocation{},
		&types.CohortModuleBlock{},
		&types.Cohort{},
		&types.TechnicianSkill{},
		&types.Technician{},
		&types.CompanyModuleProgress{},
		&types.Company{},
		&types.ModulePrerequisite{},
		&types.ModuleTemplate{},
	}
	for _, model := range models {
		if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *workbookImporter) loadState(ctx context.Context, tx *gorm.DB) (*importState, error) {
	state := &importState{
		modulesByCode:    map[string]*types.ModuleTemplate{},
		companiesByName:  map[string]*types.Company{},
		techsByName:      map[string]*types.Technician{},
		cohortsByCode:    map[string]*types.Cohort{},
		optionalsByCode:  map[string]*types.OptionalModule{},
		blocksByCohort:   map[uuid.UUID]map[int]*types.CohortModuleBlock{},
		rewrittenCohorts: map[uuid.UUID]bool{},
	}
	modules, err := s.moduleRepo.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	for _, m := range modules {
		state.modulesByCode[strings.ToUpper(m.Code)] = m
	}
	companies, err := s.companyRepo.List(ctx, tx, nil)
	if err != nil {
		return nil, err
	}
	for _, c := range companies {
		state.companiesByName[normalizeText(c.Name)] = c
	}
	technicians, err := s.technicianRepo.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	for _, t := range technicians {
		state.techsByName[normalizeText(t.Name)] = t
	}
	cohorts, err := s.cohortRepo.List(ctx, tx, nil)
	if err != nil {
		return nil, err
	}
	for _, c := range cohorts {
		state.cohortsByCode[strings.ToUpper(c.Code)] = c
	}
	optionals, err := s.optionalRepo.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	for _, o := range optionals {
		state.optionalsByCode[strings.ToUpper(o.Code)] = o
	}
	return state, nil
}

func (s *workbookImporter) applyModules(ctx context.Context, tx *gorm.DB, rows []sheetRow, state *importState, summary *Summary) error {
	for _, row := range rows {
		code := strings.ToUpper(strings.TrimSpace(pick(row, "Codigo_Modulo", "Código_Modulo")))
		if code == "" {
			continue
		}
		category := strings.TrimSpace(pick(row, "Categoria"))
		if category == "" {
			category = "Geral"
		}
		description := strings.TrimSpace(pick(row, "Descricao", "Descrição"))
		duration := parseInt(pick(row, "Diarias", "Diárias"), 1)
		if duration < 1 {
			duration = 1
		}
		profile := optionalString(pick(row, "Perfil"))
		mandatory := parseMandatory(pick(row, "Obrigatorio", "Obrigatório"))

		if existing, ok := state.modulesByCode[code]; ok {
			existing.Category = category
			existing.Name = moduleNameFromDescription(description, code)
			existing.Description = optionalString(description)
			existing.DurationDays = duration
			existing.Profile = profile
			existing.IsMandatory = mandatory
			if err := s.moduleRepo.Update(ctx, tx, existing); err != nil {
				return err
			}
		} else {
			module := &types.ModuleTemplate{
				Code:         code,
				Category:     category,
				Name:         moduleNameFromDescription(description, code),
				Description:  optionalString(description),
				DurationDays: duration,
				Profile:      profile,
				IsMandatory:  mandatory,
			}
			if err := s.moduleRepo.Create(ctx, tx, module); err != nil {
				return err
			}
			state.modulesByCode[code] = module
		}
		summary.Modules++
	}
	if len(rows) == 0 {
		return nil
	}
	return s.rewireInstallationPrerequisites(ctx, tx, state)
}

// rewireInstallationPrerequisites makes the installation module an explicit
// prerequisite of every other catalog module after a journey import.
func (s *workbookImporter) rewireInstallationPrerequisites(ctx context.Context, tx *gorm.DB, state *importState) error {
	installation, err := s.installation.Resolve(ctx, tx)
	if err != nil {
		return err
	}
	if installation == nil {
		return nil
	}
	for _, module := range state.modulesByCode {
		if module.ID == installation.ID {
			continue
		}
		if err := s.moduleRepo.ReplacePrerequisites(ctx, tx, module.ID, []uuid.UUID{installation.ID}); err != nil {
			return err
		}
	}
	return nil
}

func (s *workbookImporter) applyCompanies(ctx context.Context, tx *gorm.DB, rows []sheetRow, state *importState, summary *Summary) error {
	for _, row := range rows {
		name := strings.TrimSpace(pick(row, "Empresa"))
		if name == "" {
			continue
		}
		status := normalizeCompanyStatus(pick(row, "Status"))
		notes := optionalString(pick(row, "Observacoes", "Observações"))
		key := normalizeText(name)
		if existing, ok := state.companiesByName[key]; ok {
			existing.Status = status
			existing.Notes = notes
			if err := s.companyRepo.Update(ctx, tx, existing); err != nil {
				return err
			}
		} else {
			company := &types.Company{Name: name, Status: status, Notes: notes}
			if err := s.companyRepo.Create(ctx, tx, company); err != nil {
				return err
			}
			state.companiesByName[key] = company
		}
		summary.Companies++
	}
	return nil
}

func (s *workbookImporter) ensureCompany(ctx context.Context, tx *gorm.DB, name string, state *importState) (*types.Company, error) {
	key := normalizeText(name)
	if existing, ok := state.companiesByName[key]; ok {
		return existing, nil
	}
	notes := "Criado automaticamente no import"
	company := &types.Company{Name: name, Status: types.CompanyAtivo, Notes: &notes}
	if err := s.companyRepo.Create(ctx, tx, company); err != nil {
		return nil, err
	}
	state.companiesByName[key] = company
	return company, nil
}

func (s *workbookImporter) ensureTechnician(ctx context.Context, tx *gorm.DB, name string, state *importState) (*types.Technician, error) {
	key := normalizeText(name)
	if existing, ok := state.techsByName[key]; ok {
		return existing, nil
	}
	technician := &types.Technician{Name: name}
	if err := s.technicianRepo.Create(ctx, tx, technician); err != nil {
		return nil, err
	}
	state.techsByName[key] = technician
	return technician, nil
}

func (s *workbookImporter) applyTechnicians(ctx context.Context, tx *gorm.DB, rows []sheetRow, state *importState, summary *Summary) error {
	for _, row := range rows {
		name := strings.TrimSpace(pick(row, "Tecnico", "Técnico"))
		if name == "" {
			continue
		}
		notes := optionalString(pick(row, "Observacoes", "Observações"))
		key := normalizeText(name)
		technician, ok := state.techsByName[key]
		if ok {
			technician.Name = name
			technician.AvailabilityNotes = notes
			if err := s.technicianRepo.Update(ctx, tx, technician); err != nil {
				return err
			}
		} else {
			technician = &types.Technician{Name: name, AvailabilityNotes: notes}
			if err := s.technicianRepo.Create(ctx, tx, technician); err != nil {
				return err
			}
			state.techsByName[key] = technician
		}
		summary.Technicians++

		rawSkills := pick(row, "Especialidades (codigos modulos separados por virgula)", "Especialidades")
		var skillIDs []uuid.UUID
		for _, raw := range strings.Split(rawSkills, ",") {
			code := strings.ToUpper(strings.TrimSpace(raw))
			if code == "" {
				continue
			}
			if module, ok := state.modulesByCode[code]; ok {
				skillIDs = append(skillIDs, module.ID)
			}
		}
		if len(skillIDs) > 0 {
			if err := s.technicianRepo.ReplaceSkills(ctx, tx, technician.ID, skillIDs); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *workbookImporter) applyCohorts(ctx context.Context, tx *gorm.DB, rows []sheetRow, state *importState, summary *Summary) error {
	for _, row := range rows {
		code := strings.ToUpper(strings.TrimSpace(pick(row, "ID_Turma")))
		if code == "" {
			continue
		}
		name := strings.TrimSpace(pick(row, "Nome_Turma"))
		if name == "" {
			name = code
		}
		startDate, ok := parseDate(pick(row, "Data_Inicio", "Data Início"))
		if !ok {
			startDate = s.now()
		}
		var technicianID *uuid.UUID
		if techName := strings.TrimSpace(pick(row, "Tecnico", "Técnico")); techName != "" {
			technician, err := s.ensureTechnician(ctx, tx, techName, state)
			if err != nil {
				return err
			}
			id := technician.ID
			technicianID = &id
		}
		status := normalizeCohortStatus(pick(row, "Status"))
		capacity := parseInt(pick(row, "Capacidade_empresas"), 6)
		if capacity < 1 {
			capacity = 1
		}
		notes := optionalString(pick(row, "Obs", "Observacoes", "Observações"))

		if existing, ok := state.cohortsByCode[code]; ok {
			existing.Name = name
			existing.StartDate = startDate
			existing.TechnicianID = technicianID
			existing.Status = status
			existing.CapacityCompanies = capacity
			existing.Notes = notes
			if err := s.cohortRepo.Update(ctx, tx, existing); err != nil {
				return err
			}
		} else {
			cohort := &types.Cohort{
				Code:              code,
				Name:              name,
				StartDate:         startDate,
				TechnicianID:      technicianID,
				Status:            status,
				CapacityCompanies: capacity,
				Notes:             notes,
			}
			if err := s.cohortRepo.Create(ctx, tx, cohort); err != nil {
				return err
			}
			state.cohortsByCode[code] = cohort
		}
		summary.Cohorts++
	}
	return nil
}

func (s *workbookImporter) cohortBlocks(ctx context.Context, tx *gorm.DB, cohortID uuid.UUID, state *importState) (map[int]*types.CohortModuleBlock, error) {
	if blocks, ok := state.blocksByCohort[cohortID]; ok {
		return blocks, nil
	}
	rows, err := s.cohortRepo.ListBlocks(ctx, tx, cohortID)
	if err != nil {
		return nil, err
	}
	blocks := make(map[int]*types.CohortModuleBlock, len(rows))
	for _, b := range rows {
		blocks[b.OrderInCohort] = b
	}
	state.blocksByCohort[cohortID] = blocks
	return blocks, nil
}

func (s *workbookImporter) applyBlocks(ctx context.Context, tx *gorm.DB, rows []sheetRow, state *importState, summary *Summary) error {
	for _, row := range rows {
		cohortCode := strings.ToUpper(strings.TrimSpace(pick(row, "ID_Turma")))
		moduleCode := strings.ToUpper(strings.TrimSpace(pick(row, "Codigo_Modulo", "Código_Modulo")))
		cohort, cohortOK := state.cohortsByCode[cohortCode]
		module, moduleOK := state.modulesByCode[moduleCode]
		if !cohortOK || !moduleOK {
			continue
		}
		order := parseInt(pick(row, "Ordem_no_Turma", "Ordem_na_Turma"), 1)
		if order < 1 {
			order = 1
		}
		start := parseInt(pick(row, "Dia_Inicio_na_Turma"), order)
		if start < 1 {
			start = 1
		}
		duration := parseInt(pick(row, "Duracao_dias", "Duração_dias"), 1)
		if duration < 1 {
			duration = 1
		}
		blocks, err := s.cohortBlocks(ctx, tx, cohort.ID, state)
		if err != nil {
			return err
		}
		if existing, ok := blocks[order]; ok {
			existing.ModuleID = module.ID
			existing.StartDayOffset = start
			existing.DurationDays = duration
		} else {
			blocks[order] = &types.CohortModuleBlock{
				CohortID:       cohort.ID,
				ModuleID:       module.ID,
				OrderInCohort:  order,
				StartDayOffset: start,
				DurationDays:   duration,
			}
		}
		state.rewrittenCohorts[cohort.ID] = true
		summary.CohortBlocks++
	}

	for cohortID := range state.rewrittenCohorts {
		blocks := state.blocksByCohort[cohortID]
		orders := make([]int, 0, len(blocks))
		for order := range blocks {
			orders = append(orders, order)
		}
		sort.Ints(orders)
		rows := make([]*types.CohortModuleBlock, 0, len(blocks))
		for _, order := range orders {
			b := blocks[order]
			rows = append(rows, &types.CohortModuleBlock{
				CohortID:       cohortID,
				ModuleID:       b.ModuleID,
				OrderInCohort:  b.OrderInCohort,
				StartDayOffset: b.StartDayOffset,
				DurationDays:   b.DurationDays,
			})
		}
		if err := s.cohortRepo.ReplaceBlocks(ctx, tx, cohortID, rows); err != nil {
			return err
		}
		// ReplaceBlocks assigned fresh IDs; re-read on next lookup.
		delete(state.blocksByCohort, cohortID)
	}
	state.rewrittenCohorts = map[uuid.UUID]bool{}
	return nil
}

// ensureDefaultProgress backfills a Nao_iniciado row for every
// (company, module) pair that has none, so journey views never miss rows.
func (s *workbookImporter) ensureDefaultProgress(ctx context.Context, tx *gorm.DB, state *importState) error {
	for _, company := range state.companiesByName {
		existing, err := s.companyRepo.ListProgressByCompany(ctx, tx, company.ID)
		if err != nil {
			return err
		}
		seen := make(map[uuid.UUID]bool, len(existing))
		for _, p := range existing {
			seen[p.ModuleID] = true
		}
		for _, module := range state.modulesByCode {
			if seen[module.ID] {
				continue
			}
			row := &types.CompanyModuleProgress{
				CompanyID: company.ID,
				ModuleID:  module.ID,
				Status:    types.ProgressNaoIniciado,
			}
			if err := s.companyRepo.UpsertProgress(ctx, tx, row); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *workbookImporter) applyCompanyProgress(ctx context.Context, tx *gorm.DB, rows []sheetRow, state *importState, summary *Summary) error {
	for _, row := range rows {
		companyName := strings.TrimSpace(pick(row, "Empresa"))
		moduleCode := strings.ToUpper(strings.TrimSpace(pick(row, "Codigo_Modulo", "Código_Modulo")))
		if companyName == "" || moduleCode == "" {
			continue
		}
		module, ok := state.modulesByCode[moduleCode]
		if !ok {
			continue
		}
		company, err := s.ensureCompany(ctx, tx, companyName, state)
		if err != nil {
			return err
		}
		status := normalizeProgressStatus(pick(row, "Status"))
		progress := &types.CompanyModuleProgress{
			CompanyID: company.ID,
			ModuleID:  module.ID,
			Status:    status,
			Notes:     optionalString(pick(row, "Obs")),
		}
		if status == types.ProgressConcluido {
			today := dateOnly(s.now())
			progress.CompletedAt = &today
		}
		// Preserve per-company duration overrides across the upsert.
		if existing, err := s.companyRepo.GetProgress(ctx, tx, company.ID, module.ID); err == nil {
			progress.CustomDurationDays = existing.CustomDurationDays
			progress.CustomUnits = existing.CustomUnits
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.companyRepo.UpsertProgress(ctx, tx, progress); err != nil {
			return err
		}
		summary.CompanyProgressUpdates++
	}
	return nil
}

func (s *workbookImporter) applyOptionals(ctx context.Context, tx *gorm.DB, rows []sheetRow, state *importState, summary *Summary) error {
	for _, row := range rows {
		code := strings.ToUpper(strings.TrimSpace(pick(row, "Codigo_Opcional", "Código_Opcional")))
		if code == "" {
			continue
		}
		category := strings.TrimSpace(pick(row, "Categoria"))
		if category == "" {
			category = "Geral"
		}
		description := strings.TrimSpace(pick(row, "Descricao", "Descrição"))
		if description == "" {
			description = code
		}
		duration := parseInt(pick(row, "Diarias", "Diárias"), 1)
		if duration < 1 {
			duration = 1
		}
		profile := optionalString(pick(row, "Perfil"))
		notes := optionalString(pick(row, "Obs"))

		if existing, ok := state.optionalsByCode[code]; ok {
			existing.Category = &category
			existing.Name = description
			existing.DurationDays = duration
			existing.Profile = profile
			existing.Notes = notes
			if err := s.optionalRepo.Update(ctx, tx, existing); err != nil {
				return err
			}
		} else {
			optional := &types.OptionalModule{
				Code:         code,
				Category:     &category,
				Name:         description,
				DurationDays: duration,
				Profile:      profile,
				Notes:        notes,
			}
			if err := s.optionalRepo.Create(ctx, tx, optional); err != nil {
				return err
			}
			state.optionalsByCode[code] = optional
		}
		summary.Optionals++
	}
	return nil
}

func (s *workbookImporter) applyOptionalProgress(ctx context.Context, tx *gorm.DB, rows []sheetRow, state *importState, summary *Summary) error {
	for _, row := range rows {
		companyName := strings.TrimSpace(pick(row, "Empresa"))
		optionalCode := strings.ToUpper(strings.TrimSpace(pick(row, "Codigo_Opcional", "Código_Opcional")))
		if companyName == "" || optionalCode == "" {
			continue
		}
		optional, ok := state.optionalsByCode[optionalCode]
		if !ok {
			continue
		}
		company, err := s.ensureCompany(ctx, tx, companyName, state)
		if err != nil {
			return err
		}
		progress := &types.CompanyOptionalProgress{
			CompanyID:        company.ID,
			OptionalModuleID: optional.ID,
			Status:           normalizeOptionalStatus(pick(row, "Status")),
			Notes:            optionalString(pick(row, "Obs")),
		}
		if err := s.optionalRepo.UpsertProgress(ctx, tx, progress); err != nil {
			return err
		}
		summary.OptionalProgressUpdates++
	}
	return nil
}

func (s *workbookImporter) applyAllocations(ctx context.Context, tx *gorm.DB, rows []sheetRow, state *importState, summary *Summary) error {
	for _, row := range rows {
		cohortCode := strings.ToUpper(strings.TrimSpace(pick(row, "ID_Turma")))
		companyName := strings.TrimSpace(pick(row, "Empresa"))
		moduleCode := strings.ToUpper(strings.TrimSpace(pick(row, "Codigo_Modulo", "Código_Modulo")))
		if cohortCode == "" || companyName == "" || moduleCode == "" {
			continue
		}
		cohort, cohortOK := state.cohortsByCode[cohortCode]
		module, moduleOK := state.modulesByCode[moduleCode]
		if !cohortOK || !moduleOK {
			continue
		}
		company, err := s.ensureCompany(ctx, tx, companyName, state)
		if err != nil {
			return err
		}
		blocks, err := s.cohortBlocks(ctx, tx, cohort.ID, state)
		if err != nil {
			return err
		}
		var block *types.CohortModuleBlock
		for _, b := range blocks {
			if b.ModuleID == module.ID {
				block = b
				break
			}
		}
		if block == nil {
			continue
		}
		entryDay := parseInt(pick(row, "Dia_Entrada"), block.StartDayOffset)
		if entryDay < block.StartDayOffset {
			entryDay = block.StartDayOffset
		}
		status := normalizeAllocationStatus(pick(row, "Status_participacao", "Status_participação"))
		notes := optionalString(pick(row, "Obs"))

		existing, err := s.allocationRepo.GetByTriple(ctx, tx, cohort.ID, company.ID, module.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil {
			existing.EntryDay = entryDay
			existing.Status = status
			existing.Notes = notes
			if err := s.allocationRepo.Update(ctx, tx, existing); err != nil {
				return err
			}
		} else {
			allocation := &types.CohortAllocation{
				CohortID:  cohort.ID,
				CompanyID: company.ID,
				ModuleID:  module.ID,
				EntryDay:  entryDay,
				Status:    status,
				Notes:     notes,
			}
			if err := s.allocationRepo.Create(ctx, tx, allocation); err != nil {
				return err
			}
		}
		summary.Allocations++
	}
	return nil
}

// moduleNameFromDescription derives the display name from the workbook's
// "CODE - Name" description convention.
func moduleNameFromDescription(description, code string) string {
	parts := strings.Split(description, " - ")
	if len(parts) > 1 {
		if name := strings.Join(parts[1:], " - "); name != "" {
			return name
		}
	}
	if description != "" {
		return description
	}
	return code
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
