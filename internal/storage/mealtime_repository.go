package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pewos/backend/internal/storage/models"
)

// MealTimeRepository provides data access for user-global meal times.
type MealTimeRepository struct {
	BaseRepository
}

// NewMealTimeRepository creates a new meal time repository.
func NewMealTimeRepository(db *DB) *MealTimeRepository {
	return &MealTimeRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new meal time.
func (r *MealTimeRepository) Create(ctx context.Context, m *models.MealTime) error {
	m.ID = GenerateID()
	m.CreatedAt = r.Now()
	m.UpdatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO meal_times (id, user_id, name, time, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.UserID, m.Name, m.Time, m.SortOrder, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting meal time: %w", err)
	}

	return nil
}

// GetByID retrieves a meal time by its ID. Returns nil if not found.
func (r *MealTimeRepository) GetByID(ctx context.Context, id string) (*models.MealTime, error) {
	m := &models.MealTime{}
	err := r.DB().QueryRowContext(ctx, `
		SELECT id, user_id, name, time, sort_order, created_at, updated_at
		FROM meal_times WHERE id = ?
	`, id).Scan(&m.ID, &m.UserID, &m.Name, &m.Time, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying meal time: %w", err)
	}
	return m, nil
}

// ListByUser retrieves a user's meal times in display order.
func (r *MealTimeRepository) ListByUser(ctx context.Context, userID string) ([]models.MealTime, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, user_id, name, time, sort_order, created_at, updated_at
		FROM meal_times
		WHERE user_id = ?
		ORDER BY sort_order, time
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying meal times: %w", err)
	}
	defer rows.Close()

	var meals []models.MealTime
	for rows.Next() {
		var m models.MealTime
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Time, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning meal time: %w", err)
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

// Update updates an existing meal time.
func (r *MealTimeRepository) Update(ctx context.Context, m *models.MealTime) error {
	m.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE meal_times SET name = ?, time = ?, sort_order = ?, updated_at = ?
		WHERE id = ?
	`, m.Name, m.Time, m.SortOrder, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("updating meal time: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("meal time not found: %s", m.ID)
	}

	return nil
}

// Delete removes a meal time by ID. Medications referencing it keep the
// dangling id; the reference drops from their computed schedule on the next
// recompute.
func (r *MealTimeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM meal_times WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting meal time: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("meal time not found: %s", id)
	}

	return nil
}
