package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pewos/backend/internal/storage/models"
)

// ExerciseRepository provides data access for exercise routines.
type ExerciseRepository struct {
	BaseRepository
}

// NewExerciseRepository creates a new exercise repository.
func NewExerciseRepository(db *DB) *ExerciseRepository {
	return &ExerciseRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const exerciseColumns = `
	e.id, e.user_id, e.dog_id, COALESCE(d.name, ''), e.type,
	e.custom_type_description, e.duration_minutes, e.times_per_day,
	e.start_time, e.end_time, e.scheduled_times, e.start_date, e.is_permanent,
	e.duration_weeks, e.end_date, e.notes, e.is_active, e.notification_time,
	e.created_at, e.updated_at
`

// Create inserts a new exercise.
func (r *ExerciseRepository) Create(ctx context.Context, e *models.Exercise) error {
	e.ID = GenerateID()
	e.CreatedAt = r.Now()
	e.UpdatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO exercises (
			id, user_id, dog_id, type, custom_type_description, duration_minutes,
			times_per_day, start_time, end_time, scheduled_times, start_date,
			is_permanent, duration_weeks, end_date, notes, is_active,
			notification_time, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.UserID, e.DogID, e.Type, e.CustomTypeDescription,
		e.DurationMinutes, e.TimesPerDay, e.StartTime, e.EndTime,
		models.EncodeStringList(e.ScheduledTimes), dateString(e.StartDate),
		e.IsPermanent, e.DurationWeeks, nullableDateString(e.EndDate), e.Notes,
		e.IsActive, string(e.NotificationTime), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting exercise: %w", err)
	}

	return nil
}

// GetByID retrieves an exercise by its ID. Returns nil if not found.
func (r *ExerciseRepository) GetByID(ctx context.Context, id string) (*models.Exercise, error) {
	row := r.DB().QueryRowContext(ctx, `
		SELECT `+exerciseColumns+`
		FROM exercises e LEFT JOIN dogs d ON d.id = e.dog_id
		WHERE e.id = ?
	`, id)

	e, err := scanExercise(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return e, nil
}

// ListByUser retrieves all exercises owned by a user.
func (r *ExerciseRepository) ListByUser(ctx context.Context, userID string) ([]models.Exercise, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+exerciseColumns+`
		FROM exercises e LEFT JOIN dogs d ON d.id = e.dog_id
		WHERE e.user_id = ?
		ORDER BY e.created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

// ListNotifiable retrieves all active exercises across all users that carry a
// notification lead.
func (r *ExerciseRepository) ListNotifiable(ctx context.Context) ([]models.Exercise, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+exerciseColumns+`
		FROM exercises e LEFT JOIN dogs d ON d.id = e.dog_id
		WHERE e.is_active = 1 AND e.notification_time != 'none'
		ORDER BY e.created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying notifiable exercises: %w", err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

// Update updates an existing exercise.
func (r *ExerciseRepository) Update(ctx context.Context, e *models.Exercise) error {
	e.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE exercises SET
			dog_id = ?, type = ?, custom_type_description = ?, duration_minutes = ?,
			times_per_day = ?, start_time = ?, end_time = ?, scheduled_times = ?,
			start_date = ?, is_permanent = ?, duration_weeks = ?, end_date = ?,
			notes = ?, is_active = ?, notification_time = ?, updated_at = ?
		WHERE id = ?
	`,
		e.DogID, e.Type, e.CustomTypeDescription, e.DurationMinutes,
		e.TimesPerDay, e.StartTime, e.EndTime,
		models.EncodeStringList(e.ScheduledTimes), dateString(e.StartDate),
		e.IsPermanent, e.DurationWeeks, nullableDateString(e.EndDate), e.Notes,
		e.IsActive, string(e.NotificationTime), e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating exercise: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("exercise not found: %s", e.ID)
	}

	return nil
}

// Delete removes an exercise by ID.
func (r *ExerciseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM exercises WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting exercise: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("exercise not found: %s", id)
	}

	return nil
}

func scanExercise(row rowScanner) (*models.Exercise, error) {
	e := &models.Exercise{}
	var startDate, times, notif string
	var endDate *string

	if err := row.Scan(
		&e.ID, &e.UserID, &e.DogID, &e.DogName, &e.Type,
		&e.CustomTypeDescription, &e.DurationMinutes, &e.TimesPerDay,
		&e.StartTime, &e.EndTime, &times, &startDate, &e.IsPermanent,
		&e.DurationWeeks, &endDate, &e.Notes, &e.IsActive, &notif,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if e.StartDate, err = parseDate(startDate); err != nil {
		return nil, fmt.Errorf("decoding exercise start date: %w", err)
	}
	if e.EndDate, err = parseNullableDate(endDate); err != nil {
		return nil, fmt.Errorf("decoding exercise end date: %w", err)
	}
	e.ScheduledTimes = models.DecodeStringList(times)
	e.NotificationTime = models.ParseNotificationTime(notif)

	return e, nil
}

func scanExercises(rows *sql.Rows) ([]models.Exercise, error) {
	var exercises []models.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		exercises = append(exercises, *e)
	}
	return exercises, rows.Err()
}
