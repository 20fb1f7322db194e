package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pewos/backend/internal/storage/models"
)

// CompletionRepository provides data access for per-day completion records.
type CompletionRepository struct {
	BaseRepository
}

// NewCompletionRepository creates a new completion repository.
func NewCompletionRepository(db *DB) *CompletionRepository {
	return &CompletionRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Upsert marks an occurrence complete. Marking the same occurrence twice
// updates the existing record's timestamp instead of inserting a duplicate.
func (r *CompletionRepository) Upsert(ctx context.Context, c *models.Completion) error {
	if c.ID == "" {
		c.ID = GenerateID()
	}
	c.CompletedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO completions (id, user_id, item_type, item_id, scheduled_time, completed_date, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, item_type, item_id, scheduled_time, completed_date) DO UPDATE SET
			completed_at = excluded.completed_at
	`, c.ID, c.UserID, c.ItemType, c.ItemID, c.ScheduledTime, c.CompletedDate, c.CompletedAt)
	if err != nil {
		return fmt.Errorf("upserting completion: %w", err)
	}

	return nil
}

// Get retrieves the completion for one occurrence key. Returns nil if the
// occurrence has not been completed.
func (r *CompletionRepository) Get(ctx context.Context, userID, itemType, itemID, scheduledTime, completedDate string) (*models.Completion, error) {
	c := &models.Completion{}
	err := r.DB().QueryRowContext(ctx, `
		SELECT id, user_id, item_type, item_id, scheduled_time, completed_date, completed_at
		FROM completions
		WHERE user_id = ? AND item_type = ? AND item_id = ? AND scheduled_time = ? AND completed_date = ?
	`, userID, itemType, itemID, scheduledTime, completedDate).Scan(
		&c.ID, &c.UserID, &c.ItemType, &c.ItemID, &c.ScheduledTime, &c.CompletedDate, &c.CompletedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying completion: %w", err)
	}
	return c, nil
}

// ListByDay retrieves all of a user's completions for one calendar day.
func (r *CompletionRepository) ListByDay(ctx context.Context, userID, completedDate string) ([]models.Completion, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, user_id, item_type, item_id, scheduled_time, completed_date, completed_at
		FROM completions
		WHERE user_id = ? AND completed_date = ?
		ORDER BY completed_at
	`, userID, completedDate)
	if err != nil {
		return nil, fmt.Errorf("querying completions: %w", err)
	}
	defer rows.Close()

	var completions []models.Completion
	for rows.Next() {
		var c models.Completion
		if err := rows.Scan(&c.ID, &c.UserID, &c.ItemType, &c.ItemID, &c.ScheduledTime, &c.CompletedDate, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning completion: %w", err)
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// CountForKey returns the number of stored records for one occurrence key.
// Exists for verifying upsert idempotency.
func (r *CompletionRepository) CountForKey(ctx context.Context, userID, itemType, itemID, scheduledTime, completedDate string) (int, error) {
	var n int
	err := r.DB().QueryRowContext(ctx, `
		SELECT COUNT(*) FROM completions
		WHERE user_id = ? AND item_type = ? AND item_id = ? AND scheduled_time = ? AND completed_date = ?
	`, userID, itemType, itemID, scheduledTime, completedDate).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting completions: %w", err)
	}
	return n, nil
}
