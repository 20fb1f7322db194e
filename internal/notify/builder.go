package notify

import (
	"fmt"
	"sort"
	"time"

	"github.com/pewos/backend/internal/schedule"
	"github.com/pewos/backend/internal/storage/models"
)

// ScheduledNotification is a single reminder resolved to an absolute
// fire timestamp. ID is stable across rebuilds for the same item and
// clock time, which lets the delivery agent diff sets instead of
// rescheduling everything.
type ScheduledNotification struct {
	ID        string
	UserID    string
	Title     string
	Body      string
	Timestamp int64
}

// DaySchedule groups everything the builder needs for one user's day.
type DaySchedule struct {
	UserID       string
	Dogs         []models.Dog
	Appointments []models.Appointment
	Medications  []models.Medication
	Exercises    []models.Exercise
	Cares        []models.Care
	MealTimes    []models.MealTime
}

// BuildForDay computes the full reminder set for the given calendar day.
// Items whose notification preference is "none" and items not due on the
// day are skipped. The result is sorted by timestamp, then id.
func BuildForDay(in DaySchedule, day time.Time, loc *time.Location) []ScheduledNotification {
	names := make(map[string]string, len(in.Dogs))
	for _, d := range in.Dogs {
		names[d.ID] = d.Name
	}

	var out []ScheduledNotification

	for _, a := range in.Appointments {
		if a.NotificationTime == models.NotifyNone {
			continue
		}
		if !schedule.AppointmentDueOn(&a, day) {
			continue
		}
		ts := At(day, a.Time, a.NotificationTime, loc)
		if ts == 0 {
			continue
		}
		out = append(out, ScheduledNotification{
			ID:        fmt.Sprintf("apt-%s-%s", a.ID, a.Time),
			Title:     fmt.Sprintf("🐾 Cita de %s", names[a.DogID]),
			Body:      fmt.Sprintf("%s a las %s", a.Label(), a.Time),
			Timestamp: ts,
		})
	}

	for _, m := range in.Medications {
		if m.NotificationTime == models.NotifyNone || !m.IsActive {
			continue
		}
		if !schedule.MedicationDueOn(&m, day) {
			continue
		}
		for _, clock := range schedule.MedicationTimes(&m, in.MealTimes) {
			ts := At(day, clock, m.NotificationTime, loc)
			if ts == 0 {
				continue
			}
			body := m.Name
			if m.Dosage != "" {
				body = fmt.Sprintf("%s (%s)", m.Name, m.Dosage)
			}
			out = append(out, ScheduledNotification{
				ID:        fmt.Sprintf("med-%s-%s", m.ID, clock),
				Title:     fmt.Sprintf("💊 Medicamento de %s", names[m.DogID]),
				Body:      fmt.Sprintf("%s a las %s", body, clock),
				Timestamp: ts,
			})
		}
	}

	for _, e := range in.Exercises {
		if e.NotificationTime == models.NotifyNone || !e.IsActive {
			continue
		}
		if !schedule.ExerciseDueOn(&e, day) {
			continue
		}
		for _, clock := range schedule.WindowTimes(e.StartTime, e.EndTime, e.TimesPerDay) {
			ts := At(day, clock, e.NotificationTime, loc)
			if ts == 0 {
				continue
			}
			out = append(out, ScheduledNotification{
				ID:        fmt.Sprintf("ex-%s-%s", e.ID, clock),
				Title:     fmt.Sprintf("🏃 Ejercicio de %s", names[e.DogID]),
				Body:      fmt.Sprintf("%s a las %s", e.Label(), clock),
				Timestamp: ts,
			})
		}
	}

	for _, c := range in.Cares {
		if c.NotificationTime == models.NotifyNone || !c.IsActive {
			continue
		}
		if !schedule.CareDueOn(&c, day) {
			continue
		}
		for _, clock := range schedule.WindowTimes(c.StartTime, c.EndTime, c.TimesPerDay) {
			ts := At(day, clock, c.NotificationTime, loc)
			if ts == 0 {
				continue
			}
			out = append(out, ScheduledNotification{
				ID:        fmt.Sprintf("care-%s-%s", c.ID, clock),
				Title:     fmt.Sprintf("❤️ Cuidado de %s", names[c.DogID]),
				Body:      fmt.Sprintf("%s a las %s", c.Label(), clock),
				Timestamp: ts,
			})
		}
	}

	for i := range out {
		out[i].UserID = in.UserID
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out
}
