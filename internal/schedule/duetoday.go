package schedule

import (
	"math"
	"time"

	"github.com/pewos/backend/internal/storage/models"
)

// DateOnly truncates a moment to its calendar day, normalized to UTC
// midnight so day arithmetic is exact across DST transitions. Every due
// filter takes "today" in this form; callers freeze it once per pass.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the rounded number of days from a to b. The rounding
// (not flooring) mirrors the interval gating below: fractional-day drift must
// round to the nearest day or a multi-day cycle could skip or double a dose.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// MedicationDueOn reports whether a medication produces occurrences on the
// given day. For frequencies over 24h the day count since the start date,
// modulo the rounded day interval, gates which days are due (e.g. 48h ->
// every second day; 36h -> round(1.5) = every second day).
func MedicationDueOn(m *models.Medication, today time.Time) bool {
	if !m.IsActive {
		return false
	}
	start := DateOnly(m.StartDate)
	if start.After(today) {
		return false
	}
	if !m.Continuous() && DateOnly(m.EndDate).Before(today) {
		return false
	}
	if m.FrequencyHours != nil && *m.FrequencyHours > 24 {
		interval := int(math.Round(float64(*m.FrequencyHours) / 24))
		if interval < 1 {
			interval = 1
		}
		if daysBetween(start, today)%interval != 0 {
			return false
		}
	}
	return true
}

// ExerciseDueOn reports whether an exercise routine produces occurrences on
// the given day.
func ExerciseDueOn(e *models.Exercise, today time.Time) bool {
	if !e.IsActive {
		return false
	}
	if DateOnly(e.StartDate).After(today) {
		return false
	}
	if !e.IsPermanent && e.EndDate != nil && DateOnly(*e.EndDate).Before(today) {
		return false
	}
	return true
}

// CareDueOn reports whether a care routine produces occurrences on the given
// day.
func CareDueOn(c *models.Care, today time.Time) bool {
	if !c.IsActive {
		return false
	}
	if DateOnly(c.StartDate).After(today) {
		return false
	}
	if !c.IsPermanent && c.EndDate != nil && DateOnly(*c.EndDate).Before(today) {
		return false
	}
	return true
}

// AppointmentDueOn reports whether an appointment occurs on the given day,
// either directly or through its recurrence pattern. Recurrence matching is
// by day-difference modulo for daily/weekly/biweekly and by same day-of-month
// for monthly; days before the base date never match.
func AppointmentDueOn(a *models.Appointment, today time.Time) bool {
	base := DateOnly(a.Date)
	if base.Equal(today) {
		return true
	}
	if !a.Recurs() {
		return false
	}
	diff := daysBetween(base, today)
	if diff < 0 {
		return false
	}
	if a.RecurrenceEndDate != nil && DateOnly(*a.RecurrenceEndDate).Before(today) {
		return false
	}

	switch a.RecurrencePattern {
	case models.RecurrenceDaily:
		return true
	case models.RecurrenceWeekly:
		return diff%7 == 0
	case models.RecurrenceBiweekly:
		return diff%14 == 0
	case models.RecurrenceMonthly:
		return base.Day() == today.Day()
	default:
		return false
	}
}
