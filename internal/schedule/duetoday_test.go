package schedule

import (
	"testing"
	"time"

	"github.com/pewos/backend/internal/storage/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMedicationDueOn(t *testing.T) {
	freq48 := 48
	freq36 := 36
	freq8 := 8

	tests := []struct {
		name string
		med  models.Medication
		day  time.Time
		want bool
	}{
		{
			name: "inactive never due",
			med: models.Medication{
				IsActive: false, StartDate: date(2026, 3, 1), DurationDays: 0,
			},
			day: date(2026, 3, 1), want: false,
		},
		{
			name: "not yet started",
			med: models.Medication{
				IsActive: true, StartDate: date(2026, 3, 10), DurationDays: 0,
			},
			day: date(2026, 3, 9), want: false,
		},
		{
			name: "due on start day",
			med: models.Medication{
				IsActive: true, StartDate: date(2026, 3, 10), DurationDays: 0,
			},
			day: date(2026, 3, 10), want: true,
		},
		{
			name: "ended yesterday",
			med: models.Medication{
				IsActive: true, StartDate: date(2026, 3, 1),
				DurationDays: 5, EndDate: date(2026, 3, 5),
			},
			day: date(2026, 3, 6), want: false,
		},
		{
			name: "due on final day",
			med: models.Medication{
				IsActive: true, StartDate: date(2026, 3, 1),
				DurationDays: 5, EndDate: date(2026, 3, 5),
			},
			day: date(2026, 3, 5), want: true,
		},
		{
			name: "continuous has no end",
			med: models.Medication{
				IsActive: true, StartDate: date(2020, 1, 1), DurationDays: 0,
			},
			day: date(2026, 3, 1), want: true,
		},
		{
			name: "sub-daily frequency due every day",
			med: models.Medication{
				IsActive: true, StartDate: date(2026, 3, 1), DurationDays: 0,
				FrequencyHours: &freq8,
			},
			day: date(2026, 3, 2), want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MedicationDueOn(&tt.med, tt.day); got != tt.want {
				t.Errorf("MedicationDueOn(%s) = %v, want %v", tt.day.Format("2006-01-02"), got, tt.want)
			}
		})
	}

	t.Run("48h gating over a fortnight", func(t *testing.T) {
		med := models.Medication{
			IsActive: true, StartDate: date(2026, 3, 1), DurationDays: 0,
			FrequencyHours: &freq48,
		}
		for offset := 0; offset < 14; offset++ {
			day := date(2026, 3, 1).AddDate(0, 0, offset)
			want := offset%2 == 0
			if got := MedicationDueOn(&med, day); got != want {
				t.Errorf("day D+%d: due = %v, want %v", offset, got, want)
			}
		}
	})

	t.Run("36h rounds to a two day interval", func(t *testing.T) {
		// round(36/24) = round(1.5) = 2, so gating matches the 48h case.
		med := models.Medication{
			IsActive: true, StartDate: date(2026, 3, 1), DurationDays: 0,
			FrequencyHours: &freq36,
		}
		if !MedicationDueOn(&med, date(2026, 3, 1)) {
			t.Error("due on start day")
		}
		if MedicationDueOn(&med, date(2026, 3, 2)) {
			t.Error("not due on D+1")
		}
		if !MedicationDueOn(&med, date(2026, 3, 3)) {
			t.Error("due on D+2")
		}
	})
}

func TestExerciseDueOn(t *testing.T) {
	end := date(2026, 4, 1)

	tests := []struct {
		name string
		ex   models.Exercise
		day  time.Time
		want bool
	}{
		{
			name: "permanent and started",
			ex: models.Exercise{
				IsActive: true, IsPermanent: true, StartDate: date(2026, 1, 1),
			},
			day: date(2026, 3, 15), want: true,
		},
		{
			name: "inactive",
			ex: models.Exercise{
				IsActive: false, IsPermanent: true, StartDate: date(2026, 1, 1),
			},
			day: date(2026, 3, 15), want: false,
		},
		{
			name: "bounded and past end",
			ex: models.Exercise{
				IsActive: true, IsPermanent: false,
				StartDate: date(2026, 1, 1), EndDate: &end,
			},
			day: date(2026, 4, 2), want: false,
		},
		{
			name: "bounded and on end day",
			ex: models.Exercise{
				IsActive: true, IsPermanent: false,
				StartDate: date(2026, 1, 1), EndDate: &end,
			},
			day: date(2026, 4, 1), want: true,
		},
		{
			name: "starts tomorrow",
			ex: models.Exercise{
				IsActive: true, IsPermanent: true, StartDate: date(2026, 3, 16),
			},
			day: date(2026, 3, 15), want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExerciseDueOn(&tt.ex, tt.day); got != tt.want {
				t.Errorf("ExerciseDueOn = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCareDueOn(t *testing.T) {
	end := date(2026, 3, 20)
	care := models.Care{
		IsActive: true, IsPermanent: false,
		StartDate: date(2026, 3, 10), EndDate: &end,
	}

	if !CareDueOn(&care, date(2026, 3, 10)) {
		t.Error("due on start day")
	}
	if !CareDueOn(&care, date(2026, 3, 20)) {
		t.Error("due on end day")
	}
	if CareDueOn(&care, date(2026, 3, 21)) {
		t.Error("not due past end")
	}
	if CareDueOn(&care, date(2026, 3, 9)) {
		t.Error("not due before start")
	}
}

func TestAppointmentDueOn(t *testing.T) {
	recurEnd := date(2026, 2, 2)

	tests := []struct {
		name string
		appt models.Appointment
		day  time.Time
		want bool
	}{
		{
			name: "exact date matches",
			appt: models.Appointment{Date: date(2026, 1, 5), RecurrencePattern: models.RecurrenceNone},
			day:  date(2026, 1, 5), want: true,
		},
		{
			name: "non-recurring other day",
			appt: models.Appointment{Date: date(2026, 1, 5), RecurrencePattern: models.RecurrenceNone},
			day:  date(2026, 1, 6), want: false,
		},
		{
			name: "daily matches any later day",
			appt: models.Appointment{Date: date(2026, 1, 5), RecurrencePattern: models.RecurrenceDaily},
			day:  date(2026, 1, 20), want: true,
		},
		{
			name: "weekly matches a multiple of seven",
			appt: models.Appointment{Date: date(2026, 1, 5), RecurrencePattern: models.RecurrenceWeekly},
			day:  date(2026, 1, 19), want: true,
		},
		{
			name: "weekly rejects off-cycle day",
			appt: models.Appointment{Date: date(2026, 1, 5), RecurrencePattern: models.RecurrenceWeekly},
			day:  date(2026, 1, 13), want: false,
		},
		{
			name: "biweekly matches a multiple of fourteen",
			appt: models.Appointment{Date: date(2026, 1, 5), RecurrencePattern: models.RecurrenceBiweekly},
			day:  date(2026, 2, 2), want: true,
		},
		{
			name: "monthly matches same day of month",
			appt: models.Appointment{Date: date(2026, 1, 5), RecurrencePattern: models.RecurrenceMonthly},
			day:  date(2026, 4, 5), want: true,
		},
		{
			name: "recurrence never matches before base",
			appt: models.Appointment{Date: date(2026, 1, 5), RecurrencePattern: models.RecurrenceDaily},
			day:  date(2026, 1, 4), want: false,
		},
		{
			name: "recurrence end bounds matching",
			appt: models.Appointment{
				Date: date(2026, 1, 5), RecurrencePattern: models.RecurrenceWeekly,
				RecurrenceEndDate: &recurEnd,
			},
			day: date(2026, 2, 9), want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AppointmentDueOn(&tt.appt, tt.day); got != tt.want {
				t.Errorf("AppointmentDueOn(%s) = %v, want %v", tt.day.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("ART", -3*3600)
	moment := time.Date(2026, 3, 15, 23, 45, 0, 0, loc)
	got := DateOnly(moment)
	want := date(2026, 3, 15)
	if !got.Equal(want) {
		t.Errorf("DateOnly = %v, want %v", got, want)
	}
}
