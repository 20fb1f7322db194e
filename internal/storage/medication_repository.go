package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pewos/backend/internal/storage/models"
)

// MedicationRepository provides data access for medications.
type MedicationRepository struct {
	BaseRepository
}

// NewMedicationRepository creates a new medication repository.
func NewMedicationRepository(db *DB) *MedicationRepository {
	return &MedicationRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const medicationColumns = `
	m.id, m.user_id, m.dog_id, COALESCE(d.name, ''), m.name, m.dosage,
	m.schedule_type, m.frequency_hours, m.start_time, m.meal_ids,
	m.duration_days, m.start_date, m.end_date, m.scheduled_times, m.notes,
	m.is_active, m.notification_time, m.created_at, m.updated_at
`

// Create inserts a new medication.
func (r *MedicationRepository) Create(ctx context.Context, m *models.Medication) error {
	m.ID = GenerateID()
	m.CreatedAt = r.Now()
	m.UpdatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO medications (
			id, user_id, dog_id, name, dosage, schedule_type, frequency_hours,
			start_time, meal_ids, duration_days, start_date, end_date,
			scheduled_times, notes, is_active, notification_time, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.ID, m.UserID, m.DogID, m.Name, m.Dosage, m.ScheduleType,
		m.FrequencyHours, m.StartTime, models.EncodeStringList(m.MealIDs),
		m.DurationDays, dateString(m.StartDate), dateString(m.EndDate),
		models.EncodeStringList(m.ScheduledTimes), m.Notes, m.IsActive,
		string(m.NotificationTime), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting medication: %w", err)
	}

	return nil
}

// GetByID retrieves a medication by its ID. Returns nil if not found.
func (r *MedicationRepository) GetByID(ctx context.Context, id string) (*models.Medication, error) {
	row := r.DB().QueryRowContext(ctx, `
		SELECT `+medicationColumns+`
		FROM medications m LEFT JOIN dogs d ON d.id = m.dog_id
		WHERE m.id = ?
	`, id)

	m, err := scanMedication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying medication: %w", err)
	}
	return m, nil
}

// ListByUser retrieves all medications owned by a user.
func (r *MedicationRepository) ListByUser(ctx context.Context, userID string) ([]models.Medication, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+medicationColumns+`
		FROM medications m LEFT JOIN dogs d ON d.id = m.dog_id
		WHERE m.user_id = ?
		ORDER BY m.created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying medications: %w", err)
	}
	defer rows.Close()

	return scanMedications(rows)
}

// ListNotifiable retrieves all active medications across all users that carry
// a notification lead.
func (r *MedicationRepository) ListNotifiable(ctx context.Context) ([]models.Medication, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+medicationColumns+`
		FROM medications m LEFT JOIN dogs d ON d.id = m.dog_id
		WHERE m.is_active = 1 AND m.notification_time != 'none'
		ORDER BY m.created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying notifiable medications: %w", err)
	}
	defer rows.Close()

	return scanMedications(rows)
}

// ListByMealTime retrieves the medications of a user whose schedule is
// anchored to the given meal time. Their derived times must be recomputed
// when the meal changes.
func (r *MedicationRepository) ListByMealTime(ctx context.Context, userID, mealID string) ([]models.Medication, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+medicationColumns+`
		FROM medications m LEFT JOIN dogs d ON d.id = m.dog_id
		WHERE m.user_id = ? AND m.schedule_type = 'meals'
		  AND EXISTS (SELECT 1 FROM json_each(m.meal_ids) WHERE value = ?)
	`, userID, mealID)
	if err != nil {
		return nil, fmt.Errorf("querying meal-anchored medications: %w", err)
	}
	defer rows.Close()

	return scanMedications(rows)
}

// Update updates an existing medication.
func (r *MedicationRepository) Update(ctx context.Context, m *models.Medication) error {
	m.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE medications SET
			dog_id = ?, name = ?, dosage = ?, schedule_type = ?,
			frequency_hours = ?, start_time = ?, meal_ids = ?, duration_days = ?,
			start_date = ?, end_date = ?, scheduled_times = ?, notes = ?,
			is_active = ?, notification_time = ?, updated_at = ?
		WHERE id = ?
	`,
		m.DogID, m.Name, m.Dosage, m.ScheduleType, m.FrequencyHours,
		m.StartTime, models.EncodeStringList(m.MealIDs), m.DurationDays,
		dateString(m.StartDate), dateString(m.EndDate),
		models.EncodeStringList(m.ScheduledTimes), m.Notes, m.IsActive,
		string(m.NotificationTime), m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("updating medication: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("medication not found: %s", m.ID)
	}

	return nil
}

// Delete removes a medication by ID.
func (r *MedicationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM medications WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting medication: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("medication not found: %s", id)
	}

	return nil
}

func scanMedication(row rowScanner) (*models.Medication, error) {
	m := &models.Medication{}
	var startDate, endDate, mealIDs, times, notif string

	if err := row.Scan(
		&m.ID, &m.UserID, &m.DogID, &m.DogName, &m.Name, &m.Dosage,
		&m.ScheduleType, &m.FrequencyHours, &m.StartTime, &mealIDs,
		&m.DurationDays, &startDate, &endDate, &times, &m.Notes,
		&m.IsActive, &notif, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if m.StartDate, err = parseDate(startDate); err != nil {
		return nil, fmt.Errorf("decoding medication start date: %w", err)
	}
	if m.EndDate, err = parseDate(endDate); err != nil {
		return nil, fmt.Errorf("decoding medication end date: %w", err)
	}
	m.MealIDs = models.DecodeStringList(mealIDs)
	m.ScheduledTimes = models.DecodeStringList(times)
	m.NotificationTime = models.ParseNotificationTime(notif)

	return m, nil
}

func scanMedications(rows *sql.Rows) ([]models.Medication, error) {
	var medications []models.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning medication: %w", err)
		}
		medications = append(medications, *m)
	}
	return medications, rows.Err()
}
