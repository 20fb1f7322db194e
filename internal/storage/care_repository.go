package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pewos/backend/internal/storage/models"
)

// CareRepository provides data access for post-operative care routines.
type CareRepository struct {
	BaseRepository
}

// NewCareRepository creates a new care repository.
func NewCareRepository(db *DB) *CareRepository {
	return &CareRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const careColumns = `
	c.id, c.user_id, c.dog_id, COALESCE(d.name, ''), c.type,
	c.custom_type_description, c.duration_minutes, c.times_per_day,
	c.start_time, c.end_time, c.scheduled_times, c.start_date, c.is_permanent,
	c.duration_days, c.end_date, c.notes, c.is_active, c.notification_time,
	c.created_at, c.updated_at
`

// Create inserts a new care routine.
func (r *CareRepository) Create(ctx context.Context, c *models.Care) error {
	c.ID = GenerateID()
	c.CreatedAt = r.Now()
	c.UpdatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO cares (
			id, user_id, dog_id, type, custom_type_description, duration_minutes,
			times_per_day, start_time, end_time, scheduled_times, start_date,
			is_permanent, duration_days, end_date, notes, is_active,
			notification_time, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID, c.UserID, c.DogID, c.Type, c.CustomTypeDescription,
		c.DurationMinutes, c.TimesPerDay, c.StartTime, c.EndTime,
		models.EncodeStringList(c.ScheduledTimes), dateString(c.StartDate),
		c.IsPermanent, c.DurationDays, nullableDateString(c.EndDate), c.Notes,
		c.IsActive, string(c.NotificationTime), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting care: %w", err)
	}

	return nil
}

// GetByID retrieves a care routine by its ID. Returns nil if not found.
func (r *CareRepository) GetByID(ctx context.Context, id string) (*models.Care, error) {
	row := r.DB().QueryRowContext(ctx, `
		SELECT `+careColumns+`
		FROM cares c LEFT JOIN dogs d ON d.id = c.dog_id
		WHERE c.id = ?
	`, id)

	c, err := scanCare(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying care: %w", err)
	}
	return c, nil
}

// ListByUser retrieves all care routines owned by a user.
func (r *CareRepository) ListByUser(ctx context.Context, userID string) ([]models.Care, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+careColumns+`
		FROM cares c LEFT JOIN dogs d ON d.id = c.dog_id
		WHERE c.user_id = ?
		ORDER BY c.created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying cares: %w", err)
	}
	defer rows.Close()

	return scanCares(rows)
}

// ListNotifiable retrieves all active care routines across all users that
// carry a notification lead.
func (r *CareRepository) ListNotifiable(ctx context.Context) ([]models.Care, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+careColumns+`
		FROM cares c LEFT JOIN dogs d ON d.id = c.dog_id
		WHERE c.is_active = 1 AND c.notification_time != 'none'
		ORDER BY c.created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying notifiable cares: %w", err)
	}
	defer rows.Close()

	return scanCares(rows)
}

// Update updates an existing care routine.
func (r *CareRepository) Update(ctx context.Context, c *models.Care) error {
	c.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE cares SET
			dog_id = ?, type = ?, custom_type_description = ?, duration_minutes = ?,
			times_per_day = ?, start_time = ?, end_time = ?, scheduled_times = ?,
			start_date = ?, is_permanent = ?, duration_days = ?, end_date = ?,
			notes = ?, is_active = ?, notification_time = ?, updated_at = ?
		WHERE id = ?
	`,
		c.DogID, c.Type, c.CustomTypeDescription, c.DurationMinutes,
		c.TimesPerDay, c.StartTime, c.EndTime,
		models.EncodeStringList(c.ScheduledTimes), dateString(c.StartDate),
		c.IsPermanent, c.DurationDays, nullableDateString(c.EndDate), c.Notes,
		c.IsActive, string(c.NotificationTime), c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating care: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("care not found: %s", c.ID)
	}

	return nil
}

// Delete removes a care routine by ID.
func (r *CareRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM cares WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting care: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("care not found: %s", id)
	}

	return nil
}

func scanCare(row rowScanner) (*models.Care, error) {
	c := &models.Care{}
	var startDate, times, notif string
	var endDate *string

	if err := row.Scan(
		&c.ID, &c.UserID, &c.DogID, &c.DogName, &c.Type,
		&c.CustomTypeDescription, &c.DurationMinutes, &c.TimesPerDay,
		&c.StartTime, &c.EndTime, &times, &startDate, &c.IsPermanent,
		&c.DurationDays, &endDate, &c.Notes, &c.IsActive, &notif,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if c.StartDate, err = parseDate(startDate); err != nil {
		return nil, fmt.Errorf("decoding care start date: %w", err)
	}
	if c.EndDate, err = parseNullableDate(endDate); err != nil {
		return nil, fmt.Errorf("decoding care end date: %w", err)
	}
	c.ScheduledTimes = models.DecodeStringList(times)
	c.NotificationTime = models.ParseNotificationTime(notif)

	return c, nil
}

func scanCares(rows *sql.Rows) ([]models.Care, error) {
	var cares []models.Care
	for rows.Next() {
		c, err := scanCare(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning care: %w", err)
		}
		cares = append(cares, *c)
	}
	return cares, rows.Err()
}
