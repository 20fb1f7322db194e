package schedule

import (
	"testing"
	"time"

	"github.com/pewos/backend/internal/storage/models"
)

func weeklyAppointment() *models.Appointment {
	recurEnd := date(2026, 2, 2)
	return &models.Appointment{
		ID:                "apt-1",
		Date:              date(2026, 1, 5), // a Monday
		RecurrencePattern: models.RecurrenceWeekly,
		RecurrenceEndDate: &recurEnd,
	}
}

func TestExpandWeekly(t *testing.T) {
	occurrences := Expand(weeklyAppointment(), date(2026, 1, 1), date(2026, 3, 1))

	wantDates := []time.Time{
		date(2026, 1, 5), date(2026, 1, 12), date(2026, 1, 19),
		date(2026, 1, 26), date(2026, 2, 2),
	}
	if len(occurrences) != len(wantDates) {
		t.Fatalf("got %d occurrences, want %d", len(occurrences), len(wantDates))
	}

	for i, occ := range occurrences {
		if !occ.Date.Equal(wantDates[i]) {
			t.Errorf("occurrence %d on %s, want %s", i,
				occ.Date.Format("2006-01-02"), wantDates[i].Format("2006-01-02"))
		}
	}

	// The first occurrence keeps the stored id; the rest are synthetic and
	// must round-trip back to the base id.
	if occurrences[0].ID != "apt-1" {
		t.Errorf("first occurrence id = %q, want apt-1", occurrences[0].ID)
	}
	for _, occ := range occurrences[1:] {
		base, day, ok := SplitOccurrenceID(occ.ID)
		if !ok {
			t.Errorf("occurrence id %q is not synthetic", occ.ID)
			continue
		}
		if base != "apt-1" {
			t.Errorf("synthetic id %q recovers base %q", occ.ID, base)
		}
		if day != occ.Date.Format("2006-01-02") {
			t.Errorf("synthetic id %q carries date %q, want %q", occ.ID, day, occ.Date.Format("2006-01-02"))
		}
	}
}

func TestExpandRangeClipsOccurrences(t *testing.T) {
	// Range starting after the base date must drop early occurrences but
	// keep stepping from the base so the cycle phase is preserved.
	occurrences := Expand(weeklyAppointment(), date(2026, 1, 14), date(2026, 3, 1))

	wantDates := []time.Time{date(2026, 1, 19), date(2026, 1, 26), date(2026, 2, 2)}
	if len(occurrences) != len(wantDates) {
		t.Fatalf("got %d occurrences, want %d", len(occurrences), len(wantDates))
	}
	for i, occ := range occurrences {
		if !occ.Date.Equal(wantDates[i]) {
			t.Errorf("occurrence %d on %s, want %s", i,
				occ.Date.Format("2006-01-02"), wantDates[i].Format("2006-01-02"))
		}
		if _, _, ok := SplitOccurrenceID(occ.ID); !ok {
			t.Errorf("clipped occurrence %q should keep its synthetic id", occ.ID)
		}
	}
}

func TestExpandWithoutRecurrenceEnd(t *testing.T) {
	a := &models.Appointment{
		ID:                "apt-2",
		Date:              date(2026, 1, 1),
		RecurrencePattern: models.RecurrenceDaily,
	}

	occurrences := Expand(a, date(2026, 1, 1), date(2026, 1, 10))
	if len(occurrences) != 10 {
		t.Fatalf("got %d occurrences, want 10", len(occurrences))
	}
}

func TestExpandNonRecurring(t *testing.T) {
	a := &models.Appointment{
		ID:                "apt-3",
		Date:              date(2026, 1, 5),
		RecurrencePattern: models.RecurrenceNone,
	}
	if occ := Expand(a, date(2026, 1, 1), date(2026, 3, 1)); occ != nil {
		t.Errorf("non-recurring appointment expanded to %d occurrences", len(occ))
	}
}

func TestExpandMonthlyClampsShortMonths(t *testing.T) {
	a := &models.Appointment{
		ID:                "apt-4",
		Date:              date(2026, 1, 31),
		RecurrencePattern: models.RecurrenceMonthly,
	}

	occurrences := Expand(a, date(2026, 1, 1), date(2026, 5, 31))

	wantDates := []time.Time{
		date(2026, 1, 31),
		date(2026, 2, 28), // clamped, 2026 is not a leap year
		date(2026, 3, 31), // anchor day restored
		date(2026, 4, 30),
		date(2026, 5, 31),
	}
	if len(occurrences) != len(wantDates) {
		t.Fatalf("got %d occurrences, want %d", len(occurrences), len(wantDates))
	}
	for i, occ := range occurrences {
		if !occ.Date.Equal(wantDates[i]) {
			t.Errorf("occurrence %d on %s, want %s", i,
				occ.Date.Format("2006-01-02"), wantDates[i].Format("2006-01-02"))
		}
	}
}

func TestExpandMonthlyLeapFebruary(t *testing.T) {
	a := &models.Appointment{
		ID:                "apt-5",
		Date:              date(2028, 1, 30),
		RecurrencePattern: models.RecurrenceMonthly,
	}

	occurrences := Expand(a, date(2028, 1, 1), date(2028, 3, 31))
	wantDates := []time.Time{date(2028, 1, 30), date(2028, 2, 29), date(2028, 3, 30)}
	if len(occurrences) != len(wantDates) {
		t.Fatalf("got %d occurrences, want %d", len(occurrences), len(wantDates))
	}
	for i, occ := range occurrences {
		if !occ.Date.Equal(wantDates[i]) {
			t.Errorf("occurrence %d on %s, want %s", i,
				occ.Date.Format("2006-01-02"), wantDates[i].Format("2006-01-02"))
		}
	}
}

func TestExpandIterationCap(t *testing.T) {
	a := &models.Appointment{
		ID:                "apt-6",
		Date:              date(2000, 1, 1),
		RecurrencePattern: models.RecurrenceDaily,
	}

	// A ~36500-day range would need far more steps than the cap allows;
	// expansion must stop silently at the cap, not loop or fail.
	occurrences := Expand(a, date(2000, 1, 1), date(2100, 1, 1))
	if len(occurrences) != maxExpansionSteps {
		t.Errorf("got %d occurrences, want cap of %d", len(occurrences), maxExpansionSteps)
	}
}

func TestSplitOccurrenceID(t *testing.T) {
	base, day, ok := SplitOccurrenceID("abc-123#2026-02-02")
	if !ok || base != "abc-123" || day != "2026-02-02" {
		t.Errorf("SplitOccurrenceID = (%q, %q, %v)", base, day, ok)
	}

	base, _, ok = SplitOccurrenceID("abc-123")
	if ok || base != "abc-123" {
		t.Errorf("plain id: SplitOccurrenceID = (%q, _, %v)", base, ok)
	}
}
