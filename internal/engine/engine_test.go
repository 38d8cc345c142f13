package engine

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/evn/timesheet_backend/internal/models"
)

func shift(emp string, day string, from, to string) models.ShiftRecord {
	start, err := time.Parse("2006-01-02 15:04", day+" "+from)
	if err != nil {
		panic(err)
	}
	end, err := time.Parse("2006-01-02 15:04", day+" "+to)
	if err != nil {
		panic(err)
	}
	if end.Before(start) {
		end = end.AddDate(0, 0, 1)
	}
	return models.ShiftRecord{EmployeeID: emp, Employee: emp, Start: start, End: end}
}

func defWith(daily, weekly, mult float64) models.ShiftDefinition {
	return models.ShiftDefinition{
		Name:                 "test",
		DailyThresholdHours:  daily,
		WeeklyThresholdHours: weekly,
		OvertimeMultiplier:   mult,
	}
}

func countKind(issues []models.ValidationIssue, kind models.IssueKind) int {
	n := 0
	for _, i := range issues {
		if i.Kind == kind {
			n++
		}
	}
	return n
}

func TestValidate_OverlapExactlyOnePerPair(t *testing.T) {
	records := []models.ShiftRecord{
		shift("A", "2024-03-04", "09:00", "17:00"),
		shift("A", "2024-03-04", "12:00", "20:00"),
	}

	issues, err := Validate(records, defWith(8, 40, 1.5))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := countKind(issues, models.IssueOverlap); got != 1 {
		t.Errorf("Expected exactly 1 overlap issue, got %d", got)
	}
	if len(issues[0].Records) != 2 {
		t.Errorf("Expected both records implicated, got %d", len(issues[0].Records))
	}
}

func TestValidate_AdjacentShiftsDoNotOverlap(t *testing.T) {
	records := []models.ShiftRecord{
		shift("A", "2024-03-04", "09:00", "13:00"),
		shift("A", "2024-03-04", "13:00", "17:00"),
	}

	issues, err := Validate(records, defWith(8, 40, 1.5))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := countKind(issues, models.IssueOverlap); got != 0 {
		t.Errorf("Adjacent shifts reported as overlapping: %d issues", got)
	}
}

func TestValidate_DifferentEmployeesNeverOverlap(t *testing.T) {
	records := []models.ShiftRecord{
		shift("A", "2024-03-04", "09:00", "17:00"),
		shift("B", "2024-03-04", "09:00", "17:00"),
	}

	issues, err := Validate(records, defWith(8, 40, 1.5))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("Expected no issues across employees, got %v", issues)
	}
}

func TestValidate_ZeroDurationRejected(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	records := []models.ShiftRecord{{EmployeeID: "A", Start: start, End: start}}

	_, err := Validate(records, defWith(8, 40, 1.5))
	var invalid *InvalidRecordError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidRecordError, got %v", err)
	}
	if invalid.Record.EmployeeID != "A" {
		t.Errorf("Expected offending record for A, got %s", invalid.Record.EmployeeID)
	}
}

func TestValidate_NegativeDurationRejected(t *testing.T) {
	records := []models.ShiftRecord{{
		EmployeeID: "A",
		Start:      time.Date(2024, 3, 4, 17, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
	}}

	if _, err := Validate(records, defWith(8, 40, 1.5)); err == nil {
		t.Fatal("Expected error for negative duration, got nil")
	}
	if _, err := Aggregate(records, defWith(8, 40, 1.5)); err == nil {
		t.Fatal("Expected Aggregate to reject negative duration")
	}
}

func TestValidate_DurationBounds(t *testing.T) {
	def := defWith(8, 40, 1.5)
	def.MinDurationHours = 1
	def.MaxDurationHours = 12

	records := []models.ShiftRecord{
		shift("A", "2024-03-04", "09:00", "09:30"), // under minimum
		shift("A", "2024-03-05", "06:00", "22:00"), // over maximum
		shift("A", "2024-03-06", "09:00", "17:00"), // fine
	}

	issues, err := Validate(records, def)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := countKind(issues, models.IssueDurationRange); got != 2 {
		t.Errorf("Expected 2 duration issues, got %d: %v", got, issues)
	}
}

func TestValidate_UnknownShiftType(t *testing.T) {
	def := defWith(8, 40, 1.5)
	def.AllowedShiftTypes = []string{"morning", "evening"}

	rec := shift("A", "2024-03-04", "09:00", "17:00")
	rec.ShiftType = "graveyard"

	issues, err := Validate([]models.ShiftRecord{rec}, def)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := countKind(issues, models.IssueUnknownShiftType); got != 1 {
		t.Errorf("Expected 1 unknown-type issue, got %d", got)
	}
}

func TestValidate_MissingExpectedSlot(t *testing.T) {
	def := defWith(8, 40, 1.5)
	def.ExpectedSlots = []models.ExpectedSlot{{Label: "morning", Start: "07:00", End: "15:00"}}

	// Monday and Wednesday covered, Tuesday empty.
	records := []models.ShiftRecord{
		shift("A", "2024-03-04", "07:00", "15:00"),
		shift("A", "2024-03-06", "07:00", "15:00"),
	}

	issues, err := Validate(records, def)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := countKind(issues, models.IssueMissingEntry); got != 1 {
		t.Fatalf("Expected 1 missing-entry issue, got %d: %v", got, issues)
	}
	if issues[0].Message == "" || issues[0].EmployeeID != "A" {
		t.Errorf("Malformed missing-entry issue: %+v", issues[0])
	}
}

func TestValidate_ExpectedSlotWeekdayFilter(t *testing.T) {
	def := defWith(8, 40, 1.5)
	def.ExpectedSlots = []models.ExpectedSlot{{
		Label:    "weekday morning",
		Start:    "07:00",
		End:      "15:00",
		Weekdays: []time.Weekday{time.Monday, time.Wednesday},
	}}

	// Friday 2024-03-08 has no shift, but the slot does not apply there.
	records := []models.ShiftRecord{
		shift("A", "2024-03-04", "07:00", "15:00"),
		shift("A", "2024-03-06", "07:00", "15:00"),
	}

	issues, err := Validate(records, def)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := countKind(issues, models.IssueMissingEntry); got != 0 {
		t.Errorf("Expected no missing-entry issues, got %d", got)
	}
}

func TestAggregate_DailyOvertimeSplit(t *testing.T) {
	// 10h in one day against an 8h threshold: regular=8, overtime=2.
	records := []models.ShiftRecord{
		shift("A", "2024-03-04", "08:00", "18:00"),
	}

	reports, err := Aggregate(records, defWith(8, 0, 1.5))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	r := reports["A"]
	if r == nil {
		t.Fatal("No report for employee A")
	}
	if r.RegularHours != 8 || r.OvertimeHours != 2 {
		t.Errorf("Expected 8 regular / 2 overtime, got %v / %v", r.RegularHours, r.OvertimeHours)
	}
	if r.WeightedHours != 8+2*1.5 {
		t.Errorf("Expected weighted hours 11, got %v", r.WeightedHours)
	}
}

func TestAggregate_AdjacentShiftsNoOvertime(t *testing.T) {
	// Two back-to-back 4h shifts against an 8h threshold.
	records := []models.ShiftRecord{
		shift("A", "2024-03-04", "09:00", "13:00"),
		shift("A", "2024-03-04", "13:00", "17:00"),
	}

	reports, err := Aggregate(records, defWith(8, 40, 1.5))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	r := reports["A"]
	if r.RegularHours != 8 || r.OvertimeHours != 0 {
		t.Errorf("Expected 8 regular / 0 overtime, got %v / %v", r.RegularHours, r.OvertimeHours)
	}
	if countKind(r.Issues, models.IssueOverlap) != 0 {
		t.Errorf("Adjacent shifts flagged as overlap: %v", r.Issues)
	}
}

func TestAggregate_WeeklyThreshold(t *testing.T) {
	// Five 9h days with a 10h daily cap: no daily overtime, but the
	// 40h weekly cap turns the last 5h into overtime.
	records := []models.ShiftRecord{
		shift("A", "2024-03-04", "08:00", "17:00"),
		shift("A", "2024-03-05", "08:00", "17:00"),
		shift("A", "2024-03-06", "08:00", "17:00"),
		shift("A", "2024-03-07", "08:00", "17:00"),
		shift("A", "2024-03-08", "08:00", "17:00"),
	}

	reports, err := Aggregate(records, defWith(10, 40, 2))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	r := reports["A"]
	if r.TotalHours != 45 {
		t.Fatalf("Expected 45 total hours, got %v", r.TotalHours)
	}
	if r.RegularHours != 40 || r.OvertimeHours != 5 {
		t.Errorf("Expected 40 regular / 5 overtime, got %v / %v", r.RegularHours, r.OvertimeHours)
	}
	if r.WeightedHours != 40+5*2 {
		t.Errorf("Expected weighted 50, got %v", r.WeightedHours)
	}
}

func TestAggregate_TotalsMatchRecordDurations(t *testing.T) {
	records := []models.ShiftRecord{
		shift("A", "2024-03-04", "09:00", "17:30"),
		shift("A", "2024-03-05", "10:15", "19:00"),
		shift("B", "2024-03-04", "22:00", "06:00"), // crosses midnight
		shift("B", "2024-03-06", "09:00", "12:00"),
	}

	reports, err := Aggregate(records, defWith(8, 40, 1.5))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := make(map[string]float64)
	for _, r := range records {
		want[r.EmployeeID] += r.Duration().Hours()
	}
	for id, w := range want {
		r := reports[id]
		if r == nil {
			t.Fatalf("No report for %s", id)
		}
		if math.Abs(r.TotalHours-w) > 1e-9 {
			t.Errorf("%s: total %v, want %v", id, r.TotalHours, w)
		}
		if math.Abs((r.RegularHours+r.OvertimeHours)-w) > 1e-9 {
			t.Errorf("%s: regular+overtime %v, want %v", id, r.RegularHours+r.OvertimeHours, w)
		}
	}
}

func TestAggregate_OverlapStillCounted(t *testing.T) {
	records := []models.ShiftRecord{
		shift("A", "2024-03-04", "09:00", "13:00"),
		shift("A", "2024-03-04", "12:00", "16:00"),
	}

	reports, err := Aggregate(records, defWith(24, 0, 1.5))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	r := reports["A"]
	if r.TotalHours != 8 {
		t.Errorf("Expected both overlapping shifts counted (8h), got %v", r.TotalHours)
	}
	if countKind(r.Issues, models.IssueOverlap) != 1 {
		t.Errorf("Expected the overlap flagged on the report, got %v", r.Issues)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	records := []models.ShiftRecord{
		shift("B", "2024-03-05", "10:00", "20:00"),
		shift("A", "2024-03-04", "09:00", "13:00"),
		shift("A", "2024-03-04", "12:00", "18:00"),
	}
	def := defWith(8, 40, 1.5)
	def.MinDurationHours = 1

	first, err := Aggregate(records, def)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := Aggregate(records, def)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Aggregate is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAggregate_InputNotMutated(t *testing.T) {
	records := []models.ShiftRecord{
		shift("B", "2024-03-05", "10:00", "20:00"),
		shift("A", "2024-03-04", "09:00", "13:00"),
	}
	snapshot := make([]models.ShiftRecord, len(records))
	copy(snapshot, records)

	if _, err := Aggregate(records, defWith(8, 40, 1.5)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(records, snapshot) {
		t.Errorf("Input slice was reordered or mutated: %+v", records)
	}
}

func TestAggregate_PeriodCoversObservedDays(t *testing.T) {
	records := []models.ShiftRecord{
		shift("A", "2024-03-04", "09:00", "17:00"),
		shift("A", "2024-03-08", "09:00", "17:00"),
	}

	reports, err := Aggregate(records, defWith(8, 40, 1.5))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	p := reports["A"].Period
	if p.From.Format("2006-01-02") != "2024-03-04" {
		t.Errorf("Expected period start 2024-03-04, got %s", p.From)
	}
	if p.To.Format("2006-01-02") != "2024-03-09" {
		t.Errorf("Expected half-open period end 2024-03-09, got %s", p.To)
	}
}
