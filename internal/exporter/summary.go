// exporter/summary.go
package exporter

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/evn/timesheet_backend/internal/models"
)

// BuildSummaryWorkbook renders aggregated reports into a two-sheet
// workbook: per-employee totals on "Summary", all flagged issues on
// "Issues". The caller owns the returned file and writes it wherever it
// needs to (HTTP response, disk).
func BuildSummaryWorkbook(reports map[string]*models.SummaryReport) (*excelize.File, error) {
	f := excelize.NewFile()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	issuesSheet := "Issues"
	if _, err := f.NewSheet(issuesSheet); err != nil {
		return nil, fmt.Errorf("creating issues sheet: %w", err)
	}

	ids := make([]string, 0, len(reports))
	for id := range reports {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	header := []interface{}{
		"Employee ID", "Employee", "From", "To",
		"Total Hours", "Regular Hours", "Overtime Hours", "Weighted Hours", "Issues",
	}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return nil, err
	}

	issueHeader := []interface{}{"Employee ID", "Kind", "Message"}
	if err := f.SetSheetRow(issuesSheet, "A1", &issueHeader); err != nil {
		return nil, err
	}

	summaryRow := 2
	issueRow := 2
	for _, id := range ids {
		r := reports[id]
		row := []interface{}{
			r.EmployeeID,
			r.Employee,
			r.Period.From.Format("2006-01-02"),
			r.Period.To.Format("2006-01-02"),
			r.TotalHours,
			r.RegularHours,
			r.OvertimeHours,
			r.WeightedHours,
			len(r.Issues),
		}
		cell := fmt.Sprintf("A%d", summaryRow)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, err
		}
		summaryRow++

		for _, issue := range r.Issues {
			cell := fmt.Sprintf("A%d", issueRow)
			line := []interface{}{issue.EmployeeID, string(issue.Kind), issue.Message}
			if err := f.SetSheetRow(issuesSheet, cell, &line); err != nil {
				return nil, err
			}
			issueRow++
		}
	}

	return f, nil
}
