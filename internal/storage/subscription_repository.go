package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pewos/backend/internal/storage/models"
)

// SubscriptionRepository provides data access for Web Push subscriptions.
type SubscriptionRepository struct {
	BaseRepository
}

// NewSubscriptionRepository creates a new push subscription repository.
func NewSubscriptionRepository(db *DB) *SubscriptionRepository {
	return &SubscriptionRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Upsert stores a user's current subscription. Re-subscribing overwrites the
// previous endpoint: one row per user.
func (r *SubscriptionRepository) Upsert(ctx context.Context, s *models.PushSubscription) error {
	s.UpdatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			endpoint = excluded.endpoint,
			p256dh = excluded.p256dh,
			auth = excluded.auth,
			updated_at = excluded.updated_at
	`, s.UserID, s.Endpoint, s.P256dh, s.Auth, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting push subscription: %w", err)
	}

	return nil
}

// GetByUser retrieves a user's subscription. Returns nil if not registered.
func (r *SubscriptionRepository) GetByUser(ctx context.Context, userID string) (*models.PushSubscription, error) {
	s := &models.PushSubscription{}
	err := r.DB().QueryRowContext(ctx, `
		SELECT user_id, endpoint, p256dh, auth, updated_at
		FROM push_subscriptions WHERE user_id = ?
	`, userID).Scan(&s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &s.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying push subscription: %w", err)
	}
	return s, nil
}

// ListAll retrieves every registered subscription.
func (r *SubscriptionRepository) ListAll(ctx context.Context) ([]models.PushSubscription, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT user_id, endpoint, p256dh, auth, updated_at
		FROM push_subscriptions
	`)
	if err != nil {
		return nil, fmt.Errorf("querying push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.PushSubscription
	for rows.Next() {
		var s models.PushSubscription
		if err := rows.Scan(&s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning push subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// Delete removes a user's subscription. Deleting an absent row is not an
// error; the batch notifier calls this on endpoints reported gone.
func (r *SubscriptionRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.DB().ExecContext(ctx, "DELETE FROM push_subscriptions WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("deleting push subscription: %w", err)
	}
	return nil
}
