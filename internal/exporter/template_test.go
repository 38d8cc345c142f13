package exporter

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/evn/timesheet_backend/internal/importer"
	"github.com/evn/timesheet_backend/internal/models"
)

func buildTemplate(t *testing.T, names ...string) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	for i, name := range names {
		row := i + 2
		if err := f.SetCellValue("Sheet1", cell("B", row), name); err != nil {
			t.Fatalf("building template: %v", err)
		}
		if err := f.SetCellValue("Sheet1", cell("C", row), name); err != nil {
			t.Fatalf("building template: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("writing template: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func cell(col string, row int) string {
	return col + string(rune('0'+row))
}

func getCell(t *testing.T, f *excelize.File, ref string) string {
	t.Helper()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	val, err := f.GetCellValue(sheet, ref)
	if err != nil {
		t.Fatalf("reading %s: %v", ref, err)
	}
	return val
}

func TestFillTemplate_Week1SplitsAtForty(t *testing.T) {
	template := buildTemplate(t, "Alice Smith", "Bob Jones")
	rows := []importer.POSRow{
		{Name: "Alice Smith", Hours: 45.5},
		{Name: "Bob Jones", Hours: 38},
	}

	f, err := FillTemplate(template, rows, FillOptions{Week: "Week 1"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Regular hours are capped at the weekly threshold.
	if got := getCell(t, f, "S2"); got != "40" {
		t.Errorf("Expected S2=40, got %q", got)
	}
	if got := getCell(t, f, "T2"); got != "5.5" {
		t.Errorf("Expected T2=5.5, got %q", got)
	}
	if got := getCell(t, f, "S3"); got != "38" {
		t.Errorf("Expected S3=38, got %q", got)
	}
	if got := getCell(t, f, "T3"); got != "" {
		t.Errorf("Expected empty T3 for no overtime, got %q", got)
	}
}

func TestFillTemplate_Week2UsesVWColumns(t *testing.T) {
	template := buildTemplate(t, "Alice Smith")
	rows := []importer.POSRow{{Name: "alice  smith", Hours: 42}}

	f, err := FillTemplate(template, rows, FillOptions{Week: "Week 2"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := getCell(t, f, "V2"); got != "40" {
		t.Errorf("Expected V2=40, got %q", got)
	}
	if got := getCell(t, f, "W2"); got != "2" {
		t.Errorf("Expected W2=2, got %q", got)
	}
	// Week 1 columns stay untouched.
	if got := getCell(t, f, "S2"); got != "" {
		t.Errorf("Expected S2 empty in Week 2 mode, got %q", got)
	}
}

func TestFillTemplate_UnmatchedNameAppended(t *testing.T) {
	template := buildTemplate(t, "Alice Smith", "Bob Jones")
	rows := []importer.POSRow{{Name: "New Person", Hours: 30}}

	f, err := FillTemplate(template, rows, FillOptions{Week: "Week 1"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := getCell(t, f, "B4"); got != "New Person" {
		t.Errorf("Expected new employee inserted at B4, got %q", got)
	}
	if got := getCell(t, f, "S4"); got != "30" {
		t.Errorf("Expected S4=30, got %q", got)
	}
}

func TestFillTemplate_IgnoredAndDuplicateNames(t *testing.T) {
	template := buildTemplate(t, "Alice Smith")
	rows := []importer.POSRow{
		{Name: "Online", Hours: 99}, // house account, ignored
		{Name: "Alice Smith", Hours: 40},
		{Name: "ALICE SMITH", Hours: 10}, // duplicate, first wins
	}

	f, err := FillTemplate(template, rows, FillOptions{Week: "Week 1"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := getCell(t, f, "S2"); got != "40" {
		t.Errorf("Expected first value kept, got %q", got)
	}
	// "Online" must not have been appended anywhere.
	if got := getCell(t, f, "B3"); got != "" {
		t.Errorf("Expected ignored name not appended, found %q at B3", got)
	}
}

func TestFillTemplate_InvalidWeek(t *testing.T) {
	template := buildTemplate(t, "Alice Smith")
	if _, err := FillTemplate(template, nil, FillOptions{Week: "Week 3"}); err == nil {
		t.Fatal("Expected error for invalid week choice")
	}
}

func TestBuildSummaryWorkbook(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	reports := map[string]*models.SummaryReport{
		"E1": {
			EmployeeID:    "E1",
			Employee:      "Alice",
			Period:        models.Period{From: day, To: day.AddDate(0, 0, 5)},
			TotalHours:    42,
			RegularHours:  40,
			OvertimeHours: 2,
			WeightedHours: 43,
			Issues: []models.ValidationIssue{
				{Kind: models.IssueOverlap, EmployeeID: "E1", Message: "shifts overlap"},
			},
		},
	}

	f, err := BuildSummaryWorkbook(reports)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rows, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("reading summary sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header + 1 row, got %d", len(rows))
	}
	if rows[1][0] != "E1" || rows[1][1] != "Alice" {
		t.Errorf("Bad summary row: %v", rows[1])
	}

	issues, err := f.GetRows("Issues")
	if err != nil {
		t.Fatalf("reading issues sheet: %v", err)
	}
	if len(issues) != 2 || issues[1][1] != "overlap" {
		t.Errorf("Bad issues sheet: %v", issues)
	}
}
