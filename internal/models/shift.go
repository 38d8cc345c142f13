// models/shift.go
package models

import (
	"fmt"
	"time"
)

// ShiftRecord is one worked interval for one employee. Records come from
// the importers (CSV, Excel, Google Sheets) and are never mutated after
// parsing. Invariant: Start < End.
type ShiftRecord struct {
	ID         int       `json:"id,omitempty"`
	BatchID    int       `json:"batch_id,omitempty"`
	EmployeeID string    `json:"employee_id"`
	Employee   string    `json:"employee"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	ShiftType  string    `json:"shift_type,omitempty"`
}

// Duration returns the worked hours of the record.
func (r ShiftRecord) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Day returns the calendar day the shift is attributed to. Shifts that
// cross midnight count towards the day they start in.
func (r ShiftRecord) Day() time.Time {
	y, m, d := r.Start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.Start.Location())
}

// ExpectedSlot is a daily time window that should be covered by at least
// one shift, e.g. "07:00-15:00". An empty Weekdays list means every day.
type ExpectedSlot struct {
	Label    string         `json:"label"`
	Start    string         `json:"start"` // "15:04"
	End      string         `json:"end"`
	Weekdays []time.Weekday `json:"weekdays,omitempty"`
}

// AppliesTo reports whether the slot is expected on the given day.
func (s ExpectedSlot) AppliesTo(day time.Time) bool {
	if len(s.Weekdays) == 0 {
		return true
	}
	for _, wd := range s.Weekdays {
		if day.Weekday() == wd {
			return true
		}
	}
	return false
}

// Window resolves the slot to concrete timestamps on the given day.
func (s ExpectedSlot) Window(day time.Time) (time.Time, time.Time, error) {
	start, err := time.Parse("15:04", s.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid slot start %q: %w", s.Start, err)
	}
	end, err := time.Parse("15:04", s.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid slot end %q: %w", s.End, err)
	}
	y, m, d := day.Date()
	from := time.Date(y, m, d, start.Hour(), start.Minute(), 0, 0, day.Location())
	to := time.Date(y, m, d, end.Hour(), end.Minute(), 0, 0, day.Location())
	if !to.After(from) {
		// slots like "23:00-07:00" roll over to the next day
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}

// ShiftDefinition is a named rule set for validation and aggregation.
// Thresholds are in hours; zero disables the corresponding check.
type ShiftDefinition struct {
	Name                 string         `json:"name"`
	DailyThresholdHours  float64        `json:"daily_threshold_hours"`
	WeeklyThresholdHours float64        `json:"weekly_threshold_hours"`
	OvertimeMultiplier   float64        `json:"overtime_multiplier"`
	MinDurationHours     float64        `json:"min_duration_hours"`
	MaxDurationHours     float64        `json:"max_duration_hours"`
	AllowedShiftTypes    []string       `json:"allowed_shift_types,omitempty"`
	ExpectedSlots        []ExpectedSlot `json:"expected_slots,omitempty"`
}

// DefaultShiftDefinition mirrors the "default" row seeded by schema.sql.
func DefaultShiftDefinition() ShiftDefinition {
	return ShiftDefinition{
		Name:                 "default",
		DailyThresholdHours:  8,
		WeeklyThresholdHours: 40,
		OvertimeMultiplier:   1.5,
		MinDurationHours:     0.25,
		MaxDurationHours:     16,
	}
}
