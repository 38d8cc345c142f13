package importer

import (
	"strings"
	"testing"
)

func TestParseShiftCSV(t *testing.T) {
	input := strings.Join([]string{
		"employee_id,name,date,start,end,shift_type",
		"E1,Alice,2024-03-04,09:00,17:00,day",
		"E2,Bob,2024-03-04,22:00,06:00,night",
		"E1,Alice,2024-03-05,09:00,17:00,",
		"",
	}, "\n")

	records, skipped, err := ParseShiftCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("Expected no skipped rows, got %v", skipped)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	if records[0].EmployeeID != "E1" || records[0].Employee != "Alice" {
		t.Errorf("Bad first record: %+v", records[0])
	}
	if records[0].Duration().Hours() != 8 {
		t.Errorf("Expected 8h duration, got %v", records[0].Duration())
	}
	if records[0].ShiftType != "day" {
		t.Errorf("Expected shift type day, got %q", records[0].ShiftType)
	}

	// Overnight shift rolls the end over to the next day.
	night := records[1]
	if night.Duration().Hours() != 8 {
		t.Errorf("Expected overnight shift of 8h, got %v", night.Duration())
	}
	if !night.End.After(night.Start) {
		t.Errorf("Overnight shift not rolled over: %+v", night)
	}
}

func TestParseShiftCSV_SkipsBadRows(t *testing.T) {
	input := strings.Join([]string{
		"employee_id,name,date,start,end",
		"E1,Alice,2024-03-04,09:00,17:00",
		",NoID,2024-03-04,09:00,17:00",
		"E2,Bob,04/03/2024,09:00,17:00",
		"E3,Carol,2024-03-04,morning,17:00",
	}, "\n")

	records, skipped, err := ParseShiftCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 good record, got %d", len(records))
	}
	if len(skipped) != 3 {
		t.Errorf("Expected 3 skipped rows, got %d: %v", len(skipped), skipped)
	}
}

func TestParseShiftCSV_MissingHeaderColumns(t *testing.T) {
	input := "name,date\nAlice,2024-03-04\n"
	if _, _, err := ParseShiftCSV(strings.NewReader(input)); err == nil {
		t.Fatal("Expected error for missing header columns, got nil")
	}
}

func TestRecordsFromRows_HeaderAliases(t *testing.T) {
	rows := [][]string{
		{"Employee ID", "Name", "Date", "Start Time", "End Time", "Type"},
		{"E1", "Alice", "2024-03-04", "09:00", "17:00", "day"},
	}

	records, _, err := RecordsFromRows(rows)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 1 || records[0].ShiftType != "day" {
		t.Errorf("Header aliases not honored: %+v", records)
	}
}

func TestRecordsFromRows_EmployeeNameFallsBackToID(t *testing.T) {
	rows := [][]string{
		{"employee_id", "date", "start", "end"},
		{"E1", "2024-03-04", "09:00", "17:00"},
	}

	records, _, err := RecordsFromRows(rows)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if records[0].Employee != "E1" {
		t.Errorf("Expected employee name fallback to ID, got %q", records[0].Employee)
	}
}
