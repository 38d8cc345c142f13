// engine/engine.go
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/evn/timesheet_backend/internal/models"
)

// The engine is a pure function of (records, definition) to (issues,
// reports). No state is kept between invocations; callers may run it from
// any goroutine as long as they do not share the input slice mutably.

// InvalidRecordError reports a record that violates the Start < End
// invariant. Unlike ValidationIssues this is a hard error: zero or
// negative durations are malformed input, not plausible timesheet data.
type InvalidRecordError struct {
	Record models.ShiftRecord
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid shift record for employee %s: %s", e.Record.EmployeeID, e.Reason)
}

// Validate checks a batch of shift records against a definition and
// returns all data-level findings: overlapping shifts, missing expected
// slots and out-of-range durations. Findings are result values; the only
// error condition is a record with Start >= End.
func Validate(records []models.ShiftRecord, def models.ShiftDefinition) ([]models.ValidationIssue, error) {
	byEmployee, order, err := groupRecords(records)
	if err != nil {
		return nil, err
	}

	var issues []models.ValidationIssue
	for _, id := range order {
		issues = append(issues, validateEmployee(id, byEmployee[id], def)...)
	}
	return issues, nil
}

// Aggregate sums worked hours per employee per day, splits them into
// regular and overtime against the daily and weekly thresholds, and
// attaches that employee's validation issues to the report. Overlapping
// shifts are flagged but still counted; dropping them silently would
// misstate the totals.
func Aggregate(records []models.ShiftRecord, def models.ShiftDefinition) (map[string]*models.SummaryReport, error) {
	byEmployee, order, err := groupRecords(records)
	if err != nil {
		return nil, err
	}

	reports := make(map[string]*models.SummaryReport, len(order))
	for _, id := range order {
		recs := byEmployee[id]
		report := aggregateEmployee(id, recs, def)
		report.Issues = validateEmployee(id, recs, def)
		if report.Issues == nil {
			report.Issues = []models.ValidationIssue{}
		}
		reports[id] = report
	}
	return reports, nil
}

// groupRecords checks the invariant, then buckets a sorted copy of the
// input by employee. The input slice itself is left untouched so repeated
// runs over the same data stay idempotent.
func groupRecords(records []models.ShiftRecord) (map[string][]models.ShiftRecord, []string, error) {
	for _, r := range records {
		if !r.Start.Before(r.End) {
			return nil, nil, &InvalidRecordError{Record: r, Reason: "start is not before end"}
		}
	}

	sorted := make([]models.ShiftRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].EmployeeID != sorted[j].EmployeeID {
			return sorted[i].EmployeeID < sorted[j].EmployeeID
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})

	byEmployee := make(map[string][]models.ShiftRecord)
	var order []string
	for _, r := range sorted {
		if _, seen := byEmployee[r.EmployeeID]; !seen {
			order = append(order, r.EmployeeID)
		}
		byEmployee[r.EmployeeID] = append(byEmployee[r.EmployeeID], r)
	}
	return byEmployee, order, nil
}

func validateEmployee(id string, recs []models.ShiftRecord, def models.ShiftDefinition) []models.ValidationIssue {
	var issues []models.ValidationIssue

	// Overlaps: recs are sorted by start, so for each record only the
	// following ones can intersect, and the scan stops at the first
	// record starting at or after its end. Intervals are half-open, so
	// back-to-back shifts (13:00-17:00 after 09:00-13:00) do not clash.
	for i := 0; i < len(recs); i++ {
		for j := i + 1; j < len(recs); j++ {
			if !recs[j].Start.Before(recs[i].End) {
				break
			}
			issues = append(issues, models.ValidationIssue{
				Kind:       models.IssueOverlap,
				EmployeeID: id,
				Message: fmt.Sprintf("shifts %s and %s overlap",
					formatInterval(recs[i]), formatInterval(recs[j])),
				Records: []models.ShiftRecord{recs[i], recs[j]},
			})
		}
	}

	// Duration sanity bounds.
	for _, r := range recs {
		hours := r.Duration().Hours()
		switch {
		case def.MinDurationHours > 0 && hours < def.MinDurationHours:
			issues = append(issues, models.ValidationIssue{
				Kind:       models.IssueDurationRange,
				EmployeeID: id,
				Message:    fmt.Sprintf("shift %s is shorter than %.2fh", formatInterval(r), def.MinDurationHours),
				Records:    []models.ShiftRecord{r},
			})
		case def.MaxDurationHours > 0 && hours > def.MaxDurationHours:
			issues = append(issues, models.ValidationIssue{
				Kind:       models.IssueDurationRange,
				EmployeeID: id,
				Message:    fmt.Sprintf("shift %s is longer than %.2fh", formatInterval(r), def.MaxDurationHours),
				Records:    []models.ShiftRecord{r},
			})
		}
	}

	// Shift type labels, when the definition restricts them.
	if len(def.AllowedShiftTypes) > 0 {
		allowed := make(map[string]bool, len(def.AllowedShiftTypes))
		for _, t := range def.AllowedShiftTypes {
			allowed[t] = true
		}
		for _, r := range recs {
			if r.ShiftType != "" && !allowed[r.ShiftType] {
				issues = append(issues, models.ValidationIssue{
					Kind:       models.IssueUnknownShiftType,
					EmployeeID: id,
					Message:    fmt.Sprintf("unknown shift type %q on %s", r.ShiftType, r.Day().Format("2006-01-02")),
					Records:    []models.ShiftRecord{r},
				})
			}
		}
	}

	issues = append(issues, missingSlotIssues(id, recs, def)...)
	return issues
}

// missingSlotIssues flags every configured expected slot with no
// intersecting record, for each day between the employee's first and
// last recorded shift.
func missingSlotIssues(id string, recs []models.ShiftRecord, def models.ShiftDefinition) []models.ValidationIssue {
	if len(def.ExpectedSlots) == 0 || len(recs) == 0 {
		return nil
	}

	first := recs[0].Day()
	last := recs[len(recs)-1].Day()

	var issues []models.ValidationIssue
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		for _, slot := range def.ExpectedSlots {
			if !slot.AppliesTo(day) {
				continue
			}
			from, to, err := slot.Window(day)
			if err != nil {
				// Malformed slot configuration: report once per day
				// rather than abort the whole validation run.
				issues = append(issues, models.ValidationIssue{
					Kind:       models.IssueMissingEntry,
					EmployeeID: id,
					Message:    err.Error(),
				})
				continue
			}
			covered := false
			for _, r := range recs {
				if r.Start.Before(to) && from.Before(r.End) {
					covered = true
					break
				}
			}
			if !covered {
				label := slot.Label
				if label == "" {
					label = slot.Start + "-" + slot.End
				}
				issues = append(issues, models.ValidationIssue{
					Kind:       models.IssueMissingEntry,
					EmployeeID: id,
					Message:    fmt.Sprintf("no shift covering slot %s on %s", label, day.Format("2006-01-02")),
				})
			}
		}
	}
	return issues
}

func aggregateEmployee(id string, recs []models.ShiftRecord, def models.ShiftDefinition) *models.SummaryReport {
	report := &models.SummaryReport{
		EmployeeID: id,
		Employee:   recs[0].Employee,
	}

	// Daily totals. A shift belongs to the day it starts in, including
	// shifts that run past midnight.
	totals := make(map[time.Time]float64)
	var days []time.Time
	for _, r := range recs {
		day := r.Day()
		if _, seen := totals[day]; !seen {
			days = append(days, day)
		}
		totals[day] += r.Duration().Hours()
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	// Daily threshold split.
	dayTotals := make([]models.DayTotal, 0, len(days))
	for _, day := range days {
		total := totals[day]
		regular := total
		if def.DailyThresholdHours > 0 && regular > def.DailyThresholdHours {
			regular = def.DailyThresholdHours
		}
		dayTotals = append(dayTotals, models.DayTotal{
			Day:           day,
			TotalHours:    total,
			RegularHours:  regular,
			OvertimeHours: total - regular,
		})
	}

	// Weekly threshold: regular hours beyond the weekly cap roll into
	// overtime, clipped from the later days of the ISO week.
	if def.WeeklyThresholdHours > 0 {
		weekRegular := make(map[[2]int]float64)
		for i := range dayTotals {
			y, w := dayTotals[i].Day.ISOWeek()
			key := [2]int{y, w}
			weekRegular[key] += dayTotals[i].RegularHours
			if excess := weekRegular[key] - def.WeeklyThresholdHours; excess > 0 {
				if excess > dayTotals[i].RegularHours {
					excess = dayTotals[i].RegularHours
				}
				dayTotals[i].RegularHours -= excess
				dayTotals[i].OvertimeHours += excess
				weekRegular[key] -= excess
			}
		}
	}

	for _, dt := range dayTotals {
		report.TotalHours += dt.TotalHours
		report.RegularHours += dt.RegularHours
		report.OvertimeHours += dt.OvertimeHours
	}

	multiplier := def.OvertimeMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}
	report.WeightedHours = report.RegularHours + report.OvertimeHours*multiplier
	report.Days = dayTotals
	report.Period = models.Period{
		From: days[0],
		To:   days[len(days)-1].AddDate(0, 0, 1),
	}
	return report
}

func formatInterval(r models.ShiftRecord) string {
	return fmt.Sprintf("[%s - %s]",
		r.Start.Format("2006-01-02 15:04"),
		r.End.Format("2006-01-02 15:04"))
}
