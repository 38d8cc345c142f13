// importer/excel.go
package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/evn/timesheet_backend/internal/models"
)

// ParseShiftWorkbook reads shift-level rows from an uploaded .xlsx file.
// "Sheet1" is tried first, then the first sheet of the workbook.
func ParseShiftWorkbook(r io.Reader) ([]models.ShiftRecord, []string, error) {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer xlsx.Close()

	rows, err := xlsx.GetRows("Sheet1")
	if err != nil {
		sheets := xlsx.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("workbook has no sheets")
		}
		rows, err = xlsx.GetRows(sheets[0])
		if err != nil {
			return nil, nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
		}
	}
	return RecordsFromRows(rows)
}
