// importer/importer.go
package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/evn/timesheet_backend/internal/models"
)

// Shift-level inputs share one tabular layout regardless of source (CSV,
// Excel, Google Sheets): a header line naming the columns, then one row
// per shift. Rows that cannot be parsed are skipped and reported, not
// fatal — partial files are normal input here.

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type columnIndex struct {
	employeeID int
	employee   int
	date       int
	start      int
	end        int
	shiftType  int
}

// mapHeader resolves column positions by name, case-insensitively.
// shift_type is optional, everything else is required.
func mapHeader(header []string) (columnIndex, error) {
	idx := columnIndex{employeeID: -1, employee: -1, date: -1, start: -1, end: -1, shiftType: -1}
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "employee_id", "employee id":
			idx.employeeID = i
		case "employee", "name":
			idx.employee = i
		case "date":
			idx.date = i
		case "start", "start_time", "start time":
			idx.start = i
		case "end", "end_time", "end time":
			idx.end = i
		case "shift_type", "shift type", "type":
			idx.shiftType = i
		}
	}
	if idx.employeeID == -1 || idx.date == -1 || idx.start == -1 || idx.end == -1 {
		return idx, fmt.Errorf("header must contain employee_id, date, start and end columns, got %v", header)
	}
	return idx, nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseShiftRow builds one record from a data row.
func parseShiftRow(row []string, idx columnIndex, line int) (models.ShiftRecord, error) {
	employeeID := cellAt(row, idx.employeeID)
	if employeeID == "" {
		return models.ShiftRecord{}, fmt.Errorf("row %d: empty employee_id", line)
	}

	day, err := time.Parse(dateLayout, cellAt(row, idx.date))
	if err != nil {
		return models.ShiftRecord{}, fmt.Errorf("row %d: invalid date %q, expected YYYY-MM-DD", line, cellAt(row, idx.date))
	}
	startClock, err := time.Parse(timeLayout, cellAt(row, idx.start))
	if err != nil {
		return models.ShiftRecord{}, fmt.Errorf("row %d: invalid start %q, expected HH:MM", line, cellAt(row, idx.start))
	}
	endClock, err := time.Parse(timeLayout, cellAt(row, idx.end))
	if err != nil {
		return models.ShiftRecord{}, fmt.Errorf("row %d: invalid end %q, expected HH:MM", line, cellAt(row, idx.end))
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), startClock.Hour(), startClock.Minute(), 0, 0, time.UTC)
	end := time.Date(day.Year(), day.Month(), day.Day(), endClock.Hour(), endClock.Minute(), 0, 0, time.UTC)
	// An end before the start means the shift ran past midnight. Equal
	// times stay equal; the engine rejects them as invalid records.
	if end.Before(start) {
		end = end.AddDate(0, 0, 1)
	}

	employee := cellAt(row, idx.employee)
	if employee == "" {
		employee = employeeID
	}

	return models.ShiftRecord{
		EmployeeID: employeeID,
		Employee:   employee,
		Start:      start,
		End:        end,
		ShiftType:  cellAt(row, idx.shiftType),
	}, nil
}

// RecordsFromRows converts raw tabular data (header included) into shift
// records. Returns the parsed records and a message per skipped row.
func RecordsFromRows(rows [][]string) ([]models.ShiftRecord, []string, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("input contains no rows")
	}
	idx, err := mapHeader(rows[0])
	if err != nil {
		return nil, nil, err
	}

	var records []models.ShiftRecord
	var skipped []string
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec, err := parseShiftRow(row, idx, i+2)
		if err != nil {
			skipped = append(skipped, err.Error())
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
