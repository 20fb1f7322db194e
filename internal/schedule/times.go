// Package schedule computes daily reminder times and decides which care
// items produce an occurrence on a given calendar day.
package schedule

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pewos/backend/internal/storage/models"
)

const minutesPerDay = 24 * 60

// parseClock parses a zero-padded 24h "HH:MM" string into minutes since
// midnight. Returns -1 for anything unparsable.
func parseClock(s string) int {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return -1
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || m < 0 || m > 59 {
		return -1
	}
	return h*60 + m
}

// formatClock renders minutes since midnight as "HH:MM", wrapping the hour
// past midnight.
func formatClock(minutes int) string {
	h := (minutes / 60) % 24
	m := minutes % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}

// WindowTimes spreads perDay occurrences evenly across the [start, end]
// window. The first time always equals the window start. Degenerate input
// (end <= start, perDay < 1, unparsable times) yields no times; callers treat
// an empty schedule as "no reminders", not an error.
func WindowTimes(startTime, endTime string, perDay int) []string {
	startMin := parseClock(startTime)
	endMin := parseClock(endTime)
	if startMin < 0 || endMin < 0 || perDay < 1 || endMin <= startMin {
		return nil
	}
	if perDay == 1 {
		return []string{formatClock(startMin)}
	}

	interval := float64(endMin-startMin) / float64(perDay-1)
	times := make([]string, 0, perDay)
	for i := 0; i < perDay; i++ {
		total := int(math.Round(float64(startMin) + interval*float64(i)))
		times = append(times, formatClock(total))
	}
	return times
}

// HourFrequencyTimes steps from the start time every freqHours until the end
// of the day. There is no wraparound past midnight: a dose cycle that would
// land on the next day is simply not emitted. Frequencies of a day or longer
// yield the start time alone; which calendar days are due is decided by
// MedicationDueOn, not by the time list.
func HourFrequencyTimes(startTime string, freqHours int) []string {
	if freqHours < 1 {
		return nil
	}
	startMin := parseClock(startTime)
	if startMin < 0 {
		return nil
	}
	if freqHours >= 24 {
		return []string{formatClock(startMin)}
	}

	var times []string
	for cur := startMin; cur < minutesPerDay; cur += freqHours * 60 {
		times = append(times, formatClock(cur))
	}
	return times
}

// MealAnchorTimes resolves a medication's referenced meal times into a
// sorted, deduplicated time list. References to deleted meals drop silently.
// Lexicographic order is chronological order for zero-padded "HH:MM".
func MealAnchorTimes(mealIDs []string, meals []models.MealTime) []string {
	selected := make(map[string]bool, len(mealIDs))
	for _, id := range mealIDs {
		selected[id] = true
	}

	seen := make(map[string]bool)
	var times []string
	for _, m := range meals {
		if !selected[m.ID] || seen[m.Time] {
			continue
		}
		seen[m.Time] = true
		times = append(times, m.Time)
	}

	sort.Strings(times)
	return times
}

// MedicationTimes recomputes a medication's derived time list from its own
// schedule fields. Write paths must call this before persisting so that
// scheduled_times never drifts from its source fields.
func MedicationTimes(m *models.Medication, meals []models.MealTime) []string {
	switch m.ScheduleType {
	case models.ScheduleTypeMeals:
		return MealAnchorTimes(m.MealIDs, meals)
	default:
		if m.FrequencyHours == nil || m.StartTime == nil {
			return nil
		}
		return HourFrequencyTimes(*m.StartTime, *m.FrequencyHours)
	}
}
