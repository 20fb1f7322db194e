package notify

import (
	"testing"
	"time"

	"github.com/pewos/backend/internal/storage/models"
)

func TestAt(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		clock string
		lead  models.NotificationTime
		want  time.Time
	}{
		{"no lead", "10:00", models.NotifyNone, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)},
		{"15 minutes", "10:00", models.Notify15Min, time.Date(2026, 3, 10, 9, 45, 0, 0, time.UTC)},
		{"30 minutes", "10:00", models.Notify30Min, time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)},
		{"one hour", "10:00", models.Notify1H, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
		{"two hours", "01:30", models.Notify2H, time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)},
		{"one day lands on previous date", "08:00", models.Notify1Day, time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := At(day, tt.clock, tt.lead, time.UTC)
			if got != tt.want.UnixMilli() {
				t.Errorf("At(%q, %s) = %d, want %d (%s)", tt.clock, tt.lead, got, tt.want.UnixMilli(), tt.want)
			}
		})
	}
}

func TestAtRespectsLocation(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	madrid := time.FixedZone("CET", 1*3600)

	got := At(day, "10:00", models.NotifyNone, madrid)
	want := time.Date(2026, 3, 10, 10, 0, 0, 0, madrid).UnixMilli()
	if got != want {
		t.Errorf("At in CET = %d, want %d", got, want)
	}
	if got == At(day, "10:00", models.NotifyNone, time.UTC) {
		t.Error("expected CET and UTC timestamps to differ")
	}
}

func TestAtInvalidClock(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, clock := range []string{"", "10", "1000", "25:00", "10:70", "1O:00"} {
		if got := At(day, clock, models.NotifyNone, time.UTC); got != 0 {
			t.Errorf("At(%q) = %d, want 0", clock, got)
		}
	}
}
