// models/report.go
package models

import "time"

type IssueKind string

const (
	IssueOverlap          IssueKind = "overlap"
	IssueMissingEntry     IssueKind = "missing_entry"
	IssueDurationRange    IssueKind = "duration_range"
	IssueUnknownShiftType IssueKind = "unknown_shift_type"
)

// ValidationIssue is a data-level finding. Issues are result values, not
// errors: partial or inconsistent timesheets are expected input.
type ValidationIssue struct {
	Kind       IssueKind     `json:"kind"`
	EmployeeID string        `json:"employee_id"`
	Message    string        `json:"message"`
	Records    []ShiftRecord `json:"records,omitempty"`
}

// Period is the half-open date range [From, To) a report was computed over.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// DayTotal is the per-day breakdown inside a SummaryReport.
type DayTotal struct {
	Day           time.Time `json:"day"`
	TotalHours    float64   `json:"total_hours"`
	RegularHours  float64   `json:"regular_hours"`
	OvertimeHours float64   `json:"overtime_hours"`
}

// SummaryReport is the per-employee aggregate produced by the engine.
// WeightedHours = RegularHours + OvertimeHours * OvertimeMultiplier.
type SummaryReport struct {
	EmployeeID    string            `json:"employee_id"`
	Employee      string            `json:"employee"`
	Period        Period            `json:"period"`
	TotalHours    float64           `json:"total_hours"`
	RegularHours  float64           `json:"regular_hours"`
	OvertimeHours float64           `json:"overtime_hours"`
	WeightedHours float64           `json:"weighted_hours"`
	Days          []DayTotal        `json:"days"`
	Issues        []ValidationIssue `json:"issues"`
}
