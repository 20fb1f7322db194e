package notify

import (
	"reflect"
	"testing"
	"time"

	"github.com/pewos/backend/internal/storage/models"
)

func intPtr(v int) *int          { return &v }
func strPtr(s string) *string    { return &s }
func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testSchedule() DaySchedule {
	start := day(2026, 3, 1)
	return DaySchedule{
		UserID: "u1",
		Dogs:   []models.Dog{{ID: "dog-1", UserID: "u1", Name: "Luna"}},
		Appointments: []models.Appointment{{
			ID: "a1", UserID: "u1", DogID: "dog-1",
			Date: day(2026, 3, 10), Time: "10:00", Type: "revisión",
			NotificationTime:  models.Notify30Min,
			RecurrencePattern: models.RecurrenceNone,
		}},
		Medications: []models.Medication{{
			ID: "m1", UserID: "u1", DogID: "dog-1",
			Name: "Amoxicilina", Dosage: "250mg",
			ScheduleType:   models.ScheduleTypeHours,
			FrequencyHours: intPtr(8), StartTime: strPtr("08:00"),
			StartDate: start, IsActive: true,
			NotificationTime: models.Notify15Min,
		}},
		Exercises: []models.Exercise{{
			ID: "e1", UserID: "u1", DogID: "dog-1", Type: "paseo",
			TimesPerDay: 2, StartTime: "09:00", EndTime: "19:00",
			StartDate: start, IsPermanent: true, IsActive: true,
			NotificationTime: models.Notify15Min,
		}},
		Cares: []models.Care{{
			ID: "c1", UserID: "u1", DogID: "dog-1", Type: "cura",
			TimesPerDay: 1, StartTime: "11:00", EndTime: "12:00",
			StartDate: start, IsPermanent: true, IsActive: true,
			NotificationTime: models.NotifyNone, // skipped
		}},
	}
}

func ids(set []ScheduledNotification) []string {
	out := make([]string, len(set))
	for i, n := range set {
		out[i] = n.ID
	}
	return out
}

func TestBuildForDay(t *testing.T) {
	set := BuildForDay(testSchedule(), day(2026, 3, 10), time.UTC)

	want := []string{
		"med-m1-08:00", // 07:45
		"ex-e1-09:00",  // 08:45
		"apt-a1-10:00", // 09:30
		"med-m1-16:00", // 15:45
		"ex-e1-19:00",  // 18:45
	}
	if got := ids(set); !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}

	// Timestamps carry the lead
	if got := set[2].Timestamp; got != day(2026, 3, 10).Add(9*time.Hour+30*time.Minute).UnixMilli() {
		t.Errorf("appointment timestamp = %d, want 09:30", got)
	}
	if set[2].Title != "🐾 Cita de Luna" {
		t.Errorf("appointment title = %q", set[2].Title)
	}
	if set[0].Title != "💊 Medicamento de Luna" {
		t.Errorf("medication title = %q", set[0].Title)
	}
	if set[0].Body != "Amoxicilina (250mg) a las 08:00" {
		t.Errorf("medication body = %q", set[0].Body)
	}
	if set[1].Title != "🏃 Ejercicio de Luna" {
		t.Errorf("exercise title = %q", set[1].Title)
	}
	for _, n := range set {
		if n.UserID != "u1" {
			t.Errorf("notification %s owner = %q, want u1", n.ID, n.UserID)
		}
	}
}

func TestBuildForDaySkipsNotDue(t *testing.T) {
	in := testSchedule()
	in.Appointments[0].Date = day(2026, 3, 11) // tomorrow
	in.Medications[0].IsActive = false

	set := BuildForDay(in, day(2026, 3, 10), time.UTC)
	want := []string{"ex-e1-09:00", "ex-e1-19:00"}
	if got := ids(set); !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
}

func TestBuildForDayIDsStableAcrossUnrelatedEdits(t *testing.T) {
	before := BuildForDay(testSchedule(), day(2026, 3, 10), time.UTC)

	// Editing one item must not shift the ids of the others
	in := testSchedule()
	in.Appointments[0].Time = "17:00"
	after := BuildForDay(in, day(2026, 3, 10), time.UTC)

	stable := func(set []ScheduledNotification) map[string]bool {
		out := make(map[string]bool)
		for _, n := range set {
			if n.ID != "apt-a1-10:00" && n.ID != "apt-a1-17:00" {
				out[n.ID] = true
			}
		}
		return out
	}
	if !reflect.DeepEqual(stable(before), stable(after)) {
		t.Errorf("unrelated ids changed: %v vs %v", ids(before), ids(after))
	}
}

func TestBuildForDayRecurringAppointment(t *testing.T) {
	in := testSchedule()
	in.Appointments[0].Date = day(2026, 3, 3) // a week earlier
	in.Appointments[0].RecurrencePattern = models.RecurrenceWeekly

	set := BuildForDay(in, day(2026, 3, 10), time.UTC)
	found := false
	for _, n := range set {
		if n.ID == "apt-a1-10:00" {
			found = true
		}
	}
	if !found {
		t.Errorf("weekly appointment missing on its recurrence day: %v", ids(set))
	}

	// Off-cycle day
	set = BuildForDay(in, day(2026, 3, 11), time.UTC)
	for _, n := range set {
		if n.ID == "apt-a1-10:00" {
			t.Errorf("weekly appointment present off cycle: %v", ids(set))
		}
	}
}

func TestBuildForDayMealAnchoredMedication(t *testing.T) {
	in := testSchedule()
	in.Medications[0].ScheduleType = models.ScheduleTypeMeals
	in.Medications[0].MealIDs = []string{"meal-1", "meal-2", "gone"}
	in.MealTimes = []models.MealTime{
		{ID: "meal-1", UserID: "u1", Name: "Desayuno", Time: "08:30"},
		{ID: "meal-2", UserID: "u1", Name: "Cena", Time: "21:00"},
	}

	set := BuildForDay(in, day(2026, 3, 10), time.UTC)
	var medIDs []string
	for _, n := range set {
		if n.ID[:4] == "med-" {
			medIDs = append(medIDs, n.ID)
		}
	}
	want := []string{"med-m1-08:30", "med-m1-21:00"}
	if !reflect.DeepEqual(medIDs, want) {
		t.Errorf("meal-anchored ids = %v, want %v", medIDs, want)
	}
}
