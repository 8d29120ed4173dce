package importer

import (
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Sheet names mirror the spreadsheet tabs the operations team maintains.
// Each sheet is expected as <dir>/<name>.csv; a missing file is an empty
// sheet, not an error.
const (
	sheetJourney          = "Jornada_Padrao"
	sheetCompanies        = "Clientes"
	sheetCompanyProgress  = "Progresso_do_Cliente"
	sheetTechnicians      = "Tecnicos"
	sheetCohorts          = "Turmas"
	sheetCohortModules    = "Turma_Modulos"
	sheetAllocations      = "Alocacao_Turma_Modulo"
	sheetOptionals        = "Modulos_Opcionais"
	sheetOptionalProgress = "Progresso_Opcionais"
)

type sheetRow map[string]string

// pick resolves a cell by column alias, tolerant of accents, casing and
// punctuation differences in the header row.
func pick(row sheetRow, aliases ...string) string {
	for _, alias := range aliases {
		want := normalizeKey(alias)
		for key, value := range row {
			if normalizeKey(key) == want {
				return value
			}
		}
	}
	return ""
}

func readSheet(dir, name string) ([]sheetRow, error) {
	f, err := os.Open(filepath.Join(dir, name+".csv"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var rows []sheetRow
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		row := make(sheetRow, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
