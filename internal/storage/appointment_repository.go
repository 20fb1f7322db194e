package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pewos/backend/internal/storage/models"
)

// AppointmentRepository provides data access for veterinary appointments.
type AppointmentRepository struct {
	BaseRepository
}

// NewAppointmentRepository creates a new appointment repository.
func NewAppointmentRepository(db *DB) *AppointmentRepository {
	return &AppointmentRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const appointmentColumns = `
	a.id, a.user_id, a.dog_id, COALESCE(d.name, ''), a.date, a.time, a.type,
	a.custom_type_description, a.notes, a.notification_time,
	a.recurrence_pattern, a.recurrence_end_date, a.created_at, a.updated_at
`

// Create inserts a new appointment.
func (r *AppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	a.ID = GenerateID()
	a.CreatedAt = r.Now()
	a.UpdatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO appointments (
			id, user_id, dog_id, date, time, type, custom_type_description,
			notes, notification_time, recurrence_pattern, recurrence_end_date,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID, a.UserID, a.DogID, dateString(a.Date), a.Time, a.Type,
		a.CustomTypeDescription, a.Notes, string(a.NotificationTime),
		string(a.RecurrencePattern), nullableDateString(a.RecurrenceEndDate),
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting appointment: %w", err)
	}

	return nil
}

// GetByID retrieves an appointment by its ID. Returns nil if not found.
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	row := r.DB().QueryRowContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a LEFT JOIN dogs d ON d.id = a.dog_id
		WHERE a.id = ?
	`, id)

	a, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying appointment: %w", err)
	}
	return a, nil
}

// ListByUser retrieves all appointments owned by a user, ordered by date.
func (r *AppointmentRepository) ListByUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a LEFT JOIN dogs d ON d.id = a.dog_id
		WHERE a.user_id = ?
		ORDER BY a.date, a.time
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying appointments: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListNotifiable retrieves all appointments across all users that carry a
// notification lead. The batch notifier re-derives due-ness from this set.
func (r *AppointmentRepository) ListNotifiable(ctx context.Context) ([]models.Appointment, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a LEFT JOIN dogs d ON d.id = a.dog_id
		WHERE a.notification_time != 'none'
		ORDER BY a.date, a.time
	`)
	if err != nil {
		return nil, fmt.Errorf("querying notifiable appointments: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// Update updates an existing appointment.
func (r *AppointmentRepository) Update(ctx context.Context, a *models.Appointment) error {
	a.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE appointments SET
			dog_id = ?, date = ?, time = ?, type = ?, custom_type_description = ?,
			notes = ?, notification_time = ?, recurrence_pattern = ?,
			recurrence_end_date = ?, updated_at = ?
		WHERE id = ?
	`,
		a.DogID, dateString(a.Date), a.Time, a.Type, a.CustomTypeDescription,
		a.Notes, string(a.NotificationTime), string(a.RecurrencePattern),
		nullableDateString(a.RecurrenceEndDate), a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating appointment: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("appointment not found: %s", a.ID)
	}

	return nil
}

// Delete removes an appointment by ID.
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM appointments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting appointment: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("appointment not found: %s", id)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*models.Appointment, error) {
	a := &models.Appointment{}
	var date string
	var recurEnd *string
	var notif, pattern string

	if err := row.Scan(
		&a.ID, &a.UserID, &a.DogID, &a.DogName, &date, &a.Time, &a.Type,
		&a.CustomTypeDescription, &a.Notes, &notif, &pattern, &recurEnd,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if a.Date, err = parseDate(date); err != nil {
		return nil, fmt.Errorf("decoding appointment date: %w", err)
	}
	a.NotificationTime = models.ParseNotificationTime(notif)
	a.RecurrencePattern = models.ParseRecurrencePattern(pattern)
	if a.RecurrenceEndDate, err = parseNullableDate(recurEnd); err != nil {
		return nil, fmt.Errorf("decoding recurrence end date: %w", err)
	}

	return a, nil
}

func scanAppointments(rows *sql.Rows) ([]models.Appointment, error) {
	var appointments []models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning appointment: %w", err)
		}
		appointments = append(appointments, *a)
	}
	return appointments, rows.Err()
}

// dateString formats a date-only value for a DATE column.
func dateString(t time.Time) string {
	return t.Format("2006-01-02")
}

func nullableDateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := dateString(*t)
	return &s
}

// parseDate decodes a DATE column into a UTC midnight time value, so that
// date-only comparisons and day arithmetic stay exact.
func parseDate(s string) (time.Time, error) {
	if len(s) > 10 {
		s = s[:10]
	}
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

func parseNullableDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
