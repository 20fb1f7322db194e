package schedule

import (
	"reflect"
	"testing"

	"github.com/pewos/backend/internal/storage/models"
)

func TestWindowTimes(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		end    string
		perDay int
		want   []string
	}{
		{
			name:  "evenly spaced three times",
			start: "08:00", end: "20:00", perDay: 3,
			want: []string{"08:00", "14:00", "20:00"},
		},
		{
			name:  "two times span window",
			start: "08:00", end: "20:00", perDay: 2,
			want: []string{"08:00", "20:00"},
		},
		{
			name:  "single time equals start",
			start: "09:30", end: "18:00", perDay: 1,
			want: []string{"09:30"},
		},
		{
			name:  "rounding of uneven interval",
			start: "08:00", end: "09:00", perDay: 4,
			want: []string{"08:00", "08:20", "08:40", "09:00"},
		},
		{
			name:  "end before start is degenerate",
			start: "10:00", end: "09:00", perDay: 2,
			want: nil,
		},
		{
			name:  "end equals start is degenerate",
			start: "10:00", end: "10:00", perDay: 2,
			want: nil,
		},
		{
			name:  "zero per day is degenerate",
			start: "08:00", end: "20:00", perDay: 0,
			want: nil,
		},
		{
			name:  "unparsable start is degenerate",
			start: "8am", end: "20:00", perDay: 2,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindowTimes(tt.start, tt.end, tt.perDay)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("WindowTimes(%q, %q, %d) = %v, want %v",
					tt.start, tt.end, tt.perDay, got, tt.want)
			}
		})
	}
}

func TestWindowTimesMonotonic(t *testing.T) {
	// First time must equal the window start and the sequence must never
	// decrease, for any occurrence count.
	for perDay := 2; perDay <= 12; perDay++ {
		times := WindowTimes("06:15", "22:45", perDay)
		if len(times) != perDay {
			t.Fatalf("perDay=%d: got %d times", perDay, len(times))
		}
		if times[0] != "06:15" {
			t.Errorf("perDay=%d: first time = %q, want 06:15", perDay, times[0])
		}
		for i := 1; i < len(times); i++ {
			if times[i] < times[i-1] {
				t.Errorf("perDay=%d: times not non-decreasing: %v", perDay, times)
			}
		}
	}
}

func TestHourFrequencyTimes(t *testing.T) {
	tests := []struct {
		name  string
		start string
		freq  int
		want  []string
	}{
		{
			// 08:00 + 8h = 16:00 stays; 16:00 + 8h = 24:00 crosses
			// midnight and must not be emitted.
			name:  "no wraparound past midnight",
			start: "08:00", freq: 8,
			want: []string{"08:00", "16:00"},
		},
		{
			name:  "six hour cycle",
			start: "06:00", freq: 6,
			want: []string{"06:00", "12:00", "18:00"},
		},
		{
			name:  "twelve hour cycle",
			start: "09:00", freq: 12,
			want: []string{"09:00", "21:00"},
		},
		{
			name:  "late start emits only itself",
			start: "23:00", freq: 4,
			want: []string{"23:00"},
		},
		{
			name:  "daily frequency is the start alone",
			start: "08:00", freq: 24,
			want: []string{"08:00"},
		},
		{
			name:  "multi-day frequency is the start alone",
			start: "08:00", freq: 48,
			want: []string{"08:00"},
		},
		{
			name:  "zero frequency is degenerate",
			start: "08:00", freq: 0,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HourFrequencyTimes(tt.start, tt.freq)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("HourFrequencyTimes(%q, %d) = %v, want %v",
					tt.start, tt.freq, got, tt.want)
			}
		})
	}
}

func TestMealAnchorTimes(t *testing.T) {
	meals := []models.MealTime{
		{ID: "m1", Name: "Desayuno", Time: "08:00", SortOrder: 0},
		{ID: "m2", Name: "Almuerzo", Time: "13:00", SortOrder: 1},
		{ID: "m3", Name: "Merienda", Time: "13:00", SortOrder: 2},
		{ID: "m4", Name: "Cena", Time: "21:00", SortOrder: 3},
	}

	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{
			name: "sorted regardless of selection order",
			ids:  []string{"m4", "m1"},
			want: []string{"08:00", "21:00"},
		},
		{
			name: "duplicate times deduplicated",
			ids:  []string{"m2", "m3"},
			want: []string{"13:00"},
		},
		{
			name: "dangling reference drops silently",
			ids:  []string{"m1", "deleted"},
			want: []string{"08:00"},
		},
		{
			name: "no selection yields nothing",
			ids:  nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MealAnchorTimes(tt.ids, meals)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MealAnchorTimes(%v) = %v, want %v", tt.ids, got, tt.want)
			}
		})
	}
}

func TestMedicationTimes(t *testing.T) {
	freq := 8
	start := "08:00"

	hours := &models.Medication{
		ScheduleType:   models.ScheduleTypeHours,
		FrequencyHours: &freq,
		StartTime:      &start,
	}
	if got := MedicationTimes(hours, nil); !reflect.DeepEqual(got, []string{"08:00", "16:00"}) {
		t.Errorf("hour-based MedicationTimes = %v", got)
	}

	meals := &models.Medication{
		ScheduleType: models.ScheduleTypeMeals,
		MealIDs:      []string{"m1"},
	}
	table := []models.MealTime{{ID: "m1", Time: "07:30"}}
	if got := MedicationTimes(meals, table); !reflect.DeepEqual(got, []string{"07:30"}) {
		t.Errorf("meal-based MedicationTimes = %v", got)
	}

	missing := &models.Medication{ScheduleType: models.ScheduleTypeHours}
	if got := MedicationTimes(missing, nil); got != nil {
		t.Errorf("MedicationTimes without frequency fields = %v, want nil", got)
	}
}
