package importer

import (
	"os"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/repos"
	"github.com/yohannreimer/projeto-treinamentos/internal/services"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type testEnv struct {
	db             *gorm.DB
	moduleRepo     repos.ModuleRepo
	companyRepo    repos.CompanyRepo
	technicianRepo repos.TechnicianRepo
	cohortRepo     repos.CohortRepo
	allocationRepo repos.AllocationRepo
	optionalRepo   repos.OptionalRepo
	importer       WorkbookImporter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.ModuleTemplate{},
		&types.ModulePrerequisite{},
		&types.Company{},
		&types.CompanyModuleProgress{},
		&types.CompanyModuleActivation{},
		&types.Technician{},
		&types.TechnicianSkill{},
		&types.Cohort{},
		&types.CohortModuleBlock{},
		&types.CohortAllocation{},
		&types.OptionalModule{},
		&types.CompanyOptionalProgress{},
		&types.LicenseProgram{},
		&types.CompanyLicense{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	baseLog, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	env := &testEnv{
		db:             db,
		moduleRepo:     repos.NewModuleRepo(db, baseLog),
		companyRepo:    repos.NewCompanyRepo(db, baseLog),
		technicianRepo: repos.NewTechnicianRepo(db, baseLog),
		cohortRepo:     repos.NewCohortRepo(db, baseLog),
		allocationRepo: repos.NewAllocationRepo(db, baseLog),
		optionalRepo:   repos.NewOptionalRepo(db, baseLog),
	}
	installation := services.NewInstallationResolver([]string{"960001010", "MOD-01"}, env.moduleRepo, baseLog)
	env.importer = NewWorkbookImporter(db, baseLog, env.moduleRepo, env.companyRepo, env.technicianRepo, env.cohortRepo, env.allocationRepo, env.optionalRepo, installation)
	return env
}

func writeWorkbook(t *testing.T, sheets map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range sheets {
		if err := os.WriteFile(filepath.Join(dir, name+".csv"), []byte(content), 0o644); err != nil {
			t.Fatalf("write sheet %s: %v", name, err)
		}
	}
	return dir
}

func fullWorkbook(t *testing.T) string {
	return writeWorkbook(t, map[string]string{
		sheetJourney: "Código_Modulo,Categoria,Descrição,Diárias,Perfil,Obrigatório\n" +
			"MOD-01,Instalação,MOD-01 - Instalação do Sistema,2,Técnico,Sim\n" +
			"MOD-02,Treinamento,MOD-02 - Operação Básica,3,,Não\n" +
			"MOD-03,Treinamento,MOD-03 - Operação Avançada,2,,Não\n",
		sheetCompanies: "Empresa,Status,Observações\n" +
			"Acme Ltda,Ativo,Cliente antigo\n" +
			"Beta Corp,Inativa,\n",
		sheetTechnicians: "Técnico,Especialidades (codigos modulos separados por virgula),Observações\n" +
			"João Silva,\"MOD-01, MOD-02\",Disponível\n",
		sheetCohorts: "ID_Turma,Nome_Turma,Data_Inicio,Técnico,Status,Capacidade_empresas,Obs\n" +
			"T-2026-01,Turma Março,02/03/2026,João Silva,Confirmada,4,\n",
		sheetCohortModules: "ID_Turma,Código_Modulo,Ordem_no_Turma,Dia_Inicio_na_Turma,Duração_dias\n" +
			"T-2026-01,MOD-01,1,1,2\n" +
			"T-2026-01,MOD-02,2,3,3\n",
		sheetCompanyProgress: "Empresa,Código_Modulo,Status,Obs\n" +
			"Acme Ltda,MOD-01,Concluído,instalado\n",
		sheetAllocations: "ID_Turma,Empresa,Código_Modulo,Dia_Entrada,Status_participação,Obs\n" +
			"T-2026-01,Acme Ltda,MOD-02,1,Confirmado,\n" +
			"T-2026-01,Gamma Nova,MOD-01,1,,\n",
		sheetOptionals: "Código_Opcional,Categoria,Descrição,Diárias,Perfil,Obs\n" +
			"OPT-01,Extra,Relatórios Gerenciais,1,,\n",
		sheetOptionalProgress: "Empresa,Código_Opcional,Status,Obs\n" +
			"Acme Ltda,OPT-01,Em execução,\n",
	})
}

func TestImportWorkbook(t *testing.T) {
	env := newTestEnv(t)
	dir := fullWorkbook(t)

	summary, err := env.importer.ImportDir(t.Context(), dir, Options{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Modules != 3 || summary.Companies != 2 || summary.Technicians != 1 {
		t.Fatalf("catalog counts = %d/%d/%d, want 3/2/1", summary.Modules, summary.Companies, summary.Technicians)
	}
	if summary.Cohorts != 1 || summary.CohortBlocks != 2 || summary.Allocations != 2 {
		t.Fatalf("schedule counts = %d/%d/%d, want 1/2/2", summary.Cohorts, summary.CohortBlocks, summary.Allocations)
	}
	if summary.Optionals != 1 || summary.OptionalProgressUpdates != 1 || summary.CompanyProgressUpdates != 1 {
		t.Fatalf("optional/progress counts = %d/%d/%d, want 1/1/1", summary.Optionals, summary.OptionalProgressUpdates, summary.CompanyProgressUpdates)
	}

	ctx := t.Context()

	mod2, err := env.moduleRepo.GetByCode(ctx, nil, "MOD-02")
	if err != nil {
		t.Fatalf("get MOD-02: %v", err)
	}
	if mod2.Name != "Operação Básica" {
		t.Fatalf("module name = %q, want description suffix", mod2.Name)
	}
	if mod2.DurationDays != 3 {
		t.Fatalf("module duration = %d, want 3", mod2.DurationDays)
	}

	// Installation becomes an explicit prerequisite of every other module.
	prereqs, err := env.moduleRepo.ListPrerequisitesFor(ctx, nil, mod2.ID)
	if err != nil {
		t.Fatalf("prereqs: %v", err)
	}
	mod1, err := env.moduleRepo.GetByCode(ctx, nil, "MOD-01")
	if err != nil {
		t.Fatalf("get MOD-01: %v", err)
	}
	if len(prereqs) != 1 || prereqs[0].PrerequisiteModuleID != mod1.ID {
		t.Fatalf("MOD-02 prerequisites = %+v, want [MOD-01]", prereqs)
	}

	beta, err := env.companyRepo.GetByName(ctx, nil, "Beta Corp")
	if err != nil {
		t.Fatalf("get Beta Corp: %v", err)
	}
	if beta.Status != types.CompanyInativo {
		t.Fatalf("beta status = %q, want Inativo", beta.Status)
	}

	// Companies referenced only by later sheets are auto-created active.
	gamma, err := env.companyRepo.GetByName(ctx, nil, "Gamma Nova")
	if err != nil {
		t.Fatalf("get Gamma Nova: %v", err)
	}
	if gamma.Status != types.CompanyAtivo || gamma.Notes == nil {
		t.Fatalf("gamma = %+v, want active with import note", gamma)
	}

	cohort, err := env.cohortRepo.GetByCode(ctx, nil, "T-2026-01")
	if err != nil {
		t.Fatalf("get cohort: %v", err)
	}
	if cohort.Status != types.CohortConfirmada || cohort.CapacityCompanies != 4 {
		t.Fatalf("cohort = %q/%d, want Confirmada/4", cohort.Status, cohort.CapacityCompanies)
	}
	if cohort.StartDate.Month() != 3 || cohort.StartDate.Day() != 2 || cohort.StartDate.Year() != 2026 {
		t.Fatalf("cohort start = %v, want 2026-03-02", cohort.StartDate)
	}
	if cohort.TechnicianID == nil {
		t.Fatalf("cohort technician not linked")
	}

	blocks, err := env.cohortRepo.ListBlocks(ctx, nil, cohort.ID)
	if err != nil {
		t.Fatalf("blocks: %v", err)
	}
	if len(blocks) != 2 || blocks[1].StartDayOffset != 3 {
		t.Fatalf("blocks = %+v, want two blocks with second at day 3", blocks)
	}

	// Entry day below the block start is clamped up to it.
	acme, err := env.companyRepo.GetByName(ctx, nil, "Acme Ltda")
	if err != nil {
		t.Fatalf("get Acme: %v", err)
	}
	allocation, err := env.allocationRepo.GetByTriple(ctx, nil, cohort.ID, acme.ID, mod2.ID)
	if err != nil {
		t.Fatalf("allocation: %v", err)
	}
	if allocation.EntryDay != 3 {
		t.Fatalf("entry day = %d, want clamped to 3", allocation.EntryDay)
	}
	if allocation.Status != types.AllocationConfirmado {
		t.Fatalf("allocation status = %q, want Confirmado", allocation.Status)
	}

	progress, err := env.companyRepo.GetProgress(ctx, nil, acme.ID, mod1.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.Status != types.ProgressConcluido || progress.CompletedAt == nil {
		t.Fatalf("progress = %+v, want Concluido with completion date", progress)
	}

	// Every (company, module) pair gets a default row.
	gammaProgress, err := env.companyRepo.ListProgressByCompany(ctx, nil, gamma.ID)
	if err != nil {
		t.Fatalf("gamma progress: %v", err)
	}
	if len(gammaProgress) != 3 {
		t.Fatalf("gamma progress rows = %d, want 3", len(gammaProgress))
	}
}

func TestImportWorkbookIsRepeatable(t *testing.T) {
	env := newTestEnv(t)
	dir := fullWorkbook(t)

	if _, err := env.importer.ImportDir(t.Context(), dir, Options{}); err != nil {
		t.Fatalf("first import: %v", err)
	}
	summary, err := env.importer.ImportDir(t.Context(), dir, Options{})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if summary.Modules != 3 || summary.Cohorts != 1 || summary.Allocations != 2 {
		t.Fatalf("second summary = %+v, want same counts", summary)
	}

	modules, err := env.moduleRepo.ListAll(t.Context(), nil)
	if err != nil {
		t.Fatalf("list modules: %v", err)
	}
	if len(modules) != 3 {
		t.Fatalf("modules after re-import = %d, want 3", len(modules))
	}
	companies, err := env.companyRepo.List(t.Context(), nil, nil)
	if err != nil {
		t.Fatalf("list companies: %v", err)
	}
	if len(companies) != 3 {
		t.Fatalf("companies after re-import = %d, want 3", len(companies))
	}
}

func TestImportWorkbookResetWipesExistingData(t *testing.T) {
	env := newTestEnv(t)

	stale := &types.ModuleTemplate{Code: "OLD-99", Category: "Geral", Name: "Legado", DurationDays: 1}
	if err := env.moduleRepo.Create(t.Context(), nil, stale); err != nil {
		t.Fatalf("seed stale module: %v", err)
	}

	dir := fullWorkbook(t)
	if _, err := env.importer.ImportDir(t.Context(), dir, Options{ResetData: true}); err != nil {
		t.Fatalf("import: %v", err)
	}

	if _, err := env.moduleRepo.GetByCode(t.Context(), nil, "OLD-99"); err == nil {
		t.Fatalf("stale module survived reset")
	}
	modules, err := env.moduleRepo.ListAll(t.Context(), nil)
	if err != nil {
		t.Fatalf("list modules: %v", err)
	}
	if len(modules) != 3 {
		t.Fatalf("modules after reset import = %d, want 3", len(modules))
	}
}

func TestImportWorkbookMissingSheetsAreEmpty(t *testing.T) {
	env := newTestEnv(t)
	dir := writeWorkbook(t, map[string]string{
		sheetCompanies: "Empresa,Status\nSolo SA,Ativo\n",
	})

	summary, err := env.importer.ImportDir(t.Context(), dir, Options{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Companies != 1 || summary.Modules != 0 || summary.Cohorts != 0 {
		t.Fatalf("summary = %+v, want only one company", summary)
	}
}
