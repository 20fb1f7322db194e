package schedule

import (
	"strings"
	"time"

	"github.com/pewos/backend/internal/storage/models"
)

// maxExpansionSteps caps recurrence expansion so a pathological pattern can
// never loop unbounded; hitting the cap stops expansion silently.
const maxExpansionSteps = 1000

// occurrenceIDSeparator joins a base appointment id with an occurrence date.
// Appointment ids are UUIDs, so '#' cannot collide with id content.
const occurrenceIDSeparator = "#"

// Occurrence is one concrete calendar date on which a recurring appointment
// takes place. Only the first occurrence is backed by a stored row; later
// ones are virtual and carry a synthetic id from which the base id can be
// recovered for edit and delete.
type Occurrence struct {
	ID          string
	Appointment *models.Appointment
	Date        time.Time
}

// OccurrenceID builds the synthetic id for a virtual occurrence.
func OccurrenceID(baseID string, date time.Time) string {
	return baseID + occurrenceIDSeparator + date.Format("2006-01-02")
}

// SplitOccurrenceID recovers the base appointment id from an occurrence id.
// Plain (non-synthetic) ids pass through unchanged with ok=false.
func SplitOccurrenceID(id string) (baseID string, date string, ok bool) {
	i := strings.Index(id, occurrenceIDSeparator)
	if i < 0 {
		return id, "", false
	}
	return id[:i], id[i+1:], true
}

// Expand materializes a recurring appointment's occurrences over
// [rangeStart, rangeEnd]. Expansion starts at the appointment's own date and
// steps by the pattern unit while current <= min(recurrenceEndDate,
// rangeEnd). The first occurrence keeps the stored id; later ones get
// synthetic ids. Monthly steps keep the base day-of-month, clamped to the
// last day of shorter months (Jan 31 -> Feb 28 -> Mar 31).
func Expand(a *models.Appointment, rangeStart, rangeEnd time.Time) []Occurrence {
	if !a.Recurs() {
		return nil
	}

	rangeStart = DateOnly(rangeStart)
	rangeEnd = DateOnly(rangeEnd)
	base := DateOnly(a.Date)

	end := rangeEnd
	if a.RecurrenceEndDate != nil {
		if recurEnd := DateOnly(*a.RecurrenceEndDate); recurEnd.Before(end) {
			end = recurEnd
		}
	}

	var occurrences []Occurrence
	current := base
	for step := 0; step < maxExpansionSteps && !current.After(end); step++ {
		if !current.Before(rangeStart) {
			id := a.ID
			if step > 0 {
				id = OccurrenceID(a.ID, current)
			}
			occurrences = append(occurrences, Occurrence{
				ID:          id,
				Appointment: a,
				Date:        current,
			})
		}
		current = nextOccurrence(current, base.Day(), step+1, a.RecurrencePattern)
		if current.IsZero() {
			break
		}
	}

	return occurrences
}

// nextOccurrence computes the date of occurrence number step (1-based) after
// the base pattern. Daily/weekly/biweekly advance by fixed day counts;
// monthly is calendar arithmetic anchored at the base day-of-month.
func nextOccurrence(current time.Time, baseDay, step int, pattern models.RecurrencePattern) time.Time {
	switch pattern {
	case models.RecurrenceDaily:
		return current.AddDate(0, 0, 1)
	case models.RecurrenceWeekly:
		return current.AddDate(0, 0, 7)
	case models.RecurrenceBiweekly:
		return current.AddDate(0, 0, 14)
	case models.RecurrenceMonthly:
		return addMonthClamped(current, baseDay)
	default:
		return time.Time{}
	}
}

// addMonthClamped moves to the next calendar month, restoring the anchor
// day-of-month where the month is long enough and clamping to the month's
// last day otherwise. time.AddDate is avoided here: it normalizes Jan 31 +
// 1 month to March, silently skipping February.
func addMonthClamped(t time.Time, anchorDay int) time.Time {
	year, month := t.Year(), t.Month()+1
	if month > time.December {
		month = time.January
		year++
	}

	day := anchorDay
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
