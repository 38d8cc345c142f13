// importer/csv.go
package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/evn/timesheet_backend/internal/models"
)

// ParseShiftCSV reads a shift-level CSV (header + one row per shift).
func ParseShiftCSV(r io.Reader) ([]models.ShiftRecord, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading csv: %w", err)
	}
	return RecordsFromRows(rows)
}
