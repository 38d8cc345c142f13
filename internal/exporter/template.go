// exporter/template.go
package exporter

import (
	"fmt"
	"io"
	"log"

	"github.com/xuri/excelize/v2"

	"github.com/evn/timesheet_backend/internal/importer"
)

// The payroll template keeps employee names in column C and takes
// regular/overtime hours in S/T for the first week of the pay period and
// V/W for the second. Names not present in the template are appended
// after the last occupied row of column B and highlighted red so payroll
// notices them.

const (
	week1RegularCol  = "S"
	week1OvertimeCol = "T"
	week2RegularCol  = "V"
	week2OvertimeCol = "W"
)

// DefaultIgnoreNames are house accounts that show up in POS exports but
// never belong on a payroll sheet. Compared after NormalizeName.
var DefaultIgnoreNames = []string{"H-R Host", "Online", "S-COMMON Server", "S-Johnny Server"}

type FillOptions struct {
	Week                 string // "Week 1" or "Week 2"
	WeeklyThresholdHours float64
	IgnoreNames          []string
}

// FillTemplate writes POS hours into an uploaded payroll template.
// Hours are split at the weekly threshold (default 40) into regular and
// overtime; duplicate names keep their first value.
func FillTemplate(template io.Reader, rows []importer.POSRow, opts FillOptions) (*excelize.File, error) {
	var regCol, otCol string
	switch opts.Week {
	case "Week 1":
		regCol, otCol = week1RegularCol, week1OvertimeCol
	case "Week 2":
		regCol, otCol = week2RegularCol, week2OvertimeCol
	default:
		return nil, fmt.Errorf("invalid week choice %q, must be \"Week 1\" or \"Week 2\"", opts.Week)
	}

	threshold := opts.WeeklyThresholdHours
	if threshold <= 0 {
		threshold = 40
	}

	ignoreNames := opts.IgnoreNames
	if ignoreNames == nil {
		ignoreNames = DefaultIgnoreNames
	}
	ignored := make(map[string]bool, len(ignoreNames))
	for _, name := range ignoreNames {
		ignored[importer.NormalizeName(name)] = true
	}

	f, err := excelize.OpenReader(template)
	if err != nil {
		return nil, fmt.Errorf("opening template: %w", err)
	}

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	sheetRows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading template sheet: %w", err)
	}
	maxRow := len(sheetRows)

	// Template rows are matched by normalized name in column C.
	nameToRow := make(map[string]int)
	for row := 2; row <= maxRow; row++ {
		val, err := f.GetCellValue(sheet, fmt.Sprintf("C%d", row))
		if err != nil {
			return nil, err
		}
		if val != "" {
			nameToRow[importer.NormalizeName(val)] = row
		}
	}

	redFill, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FF0000"}},
	})
	if err != nil {
		return nil, fmt.Errorf("creating highlight style: %w", err)
	}

	processed := make(map[string]bool)
	for _, posRow := range rows {
		key := importer.NormalizeName(posRow.Name)
		if key == "" {
			continue
		}
		if ignored[key] {
			log.Printf("Skipping ignored name %q", posRow.Name)
			continue
		}
		if processed[key] {
			log.Printf("Duplicate POS entry for %q, keeping first", posRow.Name)
			continue
		}
		processed[key] = true

		regular := posRow.Hours
		if regular > threshold {
			regular = threshold
		}
		overtime := posRow.Hours - regular

		target, found := nameToRow[key]
		if !found {
			// Append after the last row with a value in column B.
			lastB := 1
			for row := 2; row <= maxRow; row++ {
				val, _ := f.GetCellValue(sheet, fmt.Sprintf("B%d", row))
				if val != "" {
					lastB = row
				}
			}
			target = lastB + 1
			if err := f.InsertRows(sheet, target, 1); err != nil {
				return nil, fmt.Errorf("inserting row for %q: %w", posRow.Name, err)
			}
			maxRow++
			// Inserting above existing matches shifts them down.
			for name, row := range nameToRow {
				if row >= target {
					nameToRow[name] = row + 1
				}
			}
			nameCell := fmt.Sprintf("B%d", target)
			if err := f.SetCellValue(sheet, nameCell, posRow.Name); err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(sheet, nameCell, nameCell, redFill); err != nil {
				return nil, err
			}
			log.Printf("Added unmatched employee %q at row %d", posRow.Name, target)
		}

		if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", regCol, target), regular); err != nil {
			return nil, err
		}
		otCell := fmt.Sprintf("%s%d", otCol, target)
		if overtime > 0 {
			err = f.SetCellValue(sheet, otCell, overtime)
		} else {
			err = f.SetCellValue(sheet, otCell, "")
		}
		if err != nil {
			return nil, err
		}
	}

	return f, nil
}
