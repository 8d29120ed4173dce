package types

// Canonical status values. The scheduling core only ever accepts these;
// fuzzy text normalization lives entirely in the import boundary.

type CohortStatus string

const (
	CohortPlanejada        CohortStatus = "Planejada"
	CohortAguardandoQuorum CohortStatus = "Aguardando_quorum"
	CohortConfirmada       CohortStatus = "Confirmada"
	CohortConcluida        CohortStatus = "Concluida"
	CohortCancelada        CohortStatus = "Cancelada"
)

func (s CohortStatus) Valid() bool {
	switch s {
	case CohortPlanejada, CohortAguardandoQuorum, CohortConfirmada, CohortConcluida, CohortCancelada:
		return true
	}
	return false
}

type AllocationStatus string

const (
	AllocationPrevisto   AllocationStatus = "Previsto"
	AllocationConfirmado AllocationStatus = "Confirmado"
	AllocationExecutado  AllocationStatus = "Executado"
	AllocationCancelado  AllocationStatus = "Cancelado"
)

func (s AllocationStatus) Valid() bool {
	switch s {
	case AllocationPrevisto, AllocationConfirmado, AllocationExecutado, AllocationCancelado:
		return true
	}
	return false
}

type ProgressStatus string

const (
	ProgressNaoIniciado ProgressStatus = "Nao_iniciado"
	ProgressPlanejado   ProgressStatus = "Planejado"
	ProgressEmExecucao  ProgressStatus = "Em_execucao"
	ProgressConcluido   ProgressStatus = "Concluido"
)

func (s ProgressStatus) Valid() bool {
	switch s {
	case ProgressNaoIniciado, ProgressPlanejado, ProgressEmExecucao, ProgressConcluido:
		return true
	}
	return false
}

type CompanyStatus string

const (
	CompanyAtivo   CompanyStatus = "Ativo"
	CompanyInativo CompanyStatus = "Inativo"
)

func (s CompanyStatus) Valid() bool {
	return s == CompanyAtivo || s == CompanyInativo
}

type OptionalProgressStatus string

const (
	OptionalPlanejado  OptionalProgressStatus = "Planejado"
	OptionalEmExecucao OptionalProgressStatus = "Em_execucao"
	OptionalConcluido  OptionalProgressStatus = "Concluido"
)

func (s OptionalProgressStatus) Valid() bool {
	switch s {
	case OptionalPlanejado, OptionalEmExecucao, OptionalConcluido:
		return true
	}
	return false
}

type RenewalCycle string

const (
	RenewalMensal RenewalCycle = "Mensal"
	RenewalAnual  RenewalCycle = "Anual"
)

func (c RenewalCycle) Valid() bool {
	return c == RenewalMensal || c == RenewalAnual
}
