package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pewos/backend/internal/storage/models"
)

// SharedAccessRepository provides data access for shared-access grants.
type SharedAccessRepository struct {
	BaseRepository
}

// NewSharedAccessRepository creates a new shared access repository.
func NewSharedAccessRepository(db *DB) *SharedAccessRepository {
	return &SharedAccessRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new pending grant from an owner to an email address.
func (r *SharedAccessRepository) Create(ctx context.Context, s *models.SharedAccess) error {
	s.ID = GenerateID()
	s.Status = models.SharedStatusPending
	s.CreatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO shared_access (id, owner_id, owner_email, shared_with_email, shared_with_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.OwnerID, s.OwnerEmail, s.SharedWithEmail, s.SharedWithID, s.Status, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting shared access grant: %w", err)
	}

	return nil
}

// GetByID retrieves a grant by its ID. Returns nil if not found.
func (r *SharedAccessRepository) GetByID(ctx context.Context, id string) (*models.SharedAccess, error) {
	row := r.DB().QueryRowContext(ctx, `
		SELECT id, owner_id, owner_email, shared_with_email, shared_with_id, status, created_at
		FROM shared_access WHERE id = ?
	`, id)

	s := &models.SharedAccess{}
	err := row.Scan(&s.ID, &s.OwnerID, &s.OwnerEmail, &s.SharedWithEmail, &s.SharedWithID, &s.Status, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying shared access grant: %w", err)
	}
	return s, nil
}

// ListByOwner retrieves the grants an owner has issued.
func (r *SharedAccessRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.SharedAccess, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, owner_id, owner_email, shared_with_email, shared_with_id, status, created_at
		FROM shared_access
		WHERE owner_id = ?
		ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying grants by owner: %w", err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

// ListForRecipient retrieves the grants addressed to a user, by resolved id
// or by invite email.
func (r *SharedAccessRepository) ListForRecipient(ctx context.Context, userID, email string) ([]models.SharedAccess, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, owner_id, owner_email, shared_with_email, shared_with_id, status, created_at
		FROM shared_access
		WHERE shared_with_id = ? OR shared_with_email = ?
		ORDER BY created_at
	`, userID, email)
	if err != nil {
		return nil, fmt.Errorf("querying grants for recipient: %w", err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

// ListAccepted retrieves every accepted grant with a resolved recipient.
// The batch notifier fans owner notifications out along these edges.
func (r *SharedAccessRepository) ListAccepted(ctx context.Context) ([]models.SharedAccess, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, owner_id, owner_email, shared_with_email, shared_with_id, status, created_at
		FROM shared_access
		WHERE status = 'accepted' AND shared_with_id IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("querying accepted grants: %w", err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

// SetStatus resolves a grant: accepting records the recipient's user id so
// fan-out can address them.
func (r *SharedAccessRepository) SetStatus(ctx context.Context, id, status string, sharedWithID *string) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE shared_access SET status = ?, shared_with_id = COALESCE(?, shared_with_id)
		WHERE id = ?
	`, status, sharedWithID, id)
	if err != nil {
		return fmt.Errorf("updating grant status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("shared access grant not found: %s", id)
	}

	return nil
}

// Delete removes a grant by ID.
func (r *SharedAccessRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM shared_access WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting shared access grant: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("shared access grant not found: %s", id)
	}

	return nil
}

func scanGrants(rows *sql.Rows) ([]models.SharedAccess, error) {
	var grants []models.SharedAccess
	for rows.Next() {
		var s models.SharedAccess
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.OwnerEmail, &s.SharedWithEmail, &s.SharedWithID, &s.Status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning shared access grant: %w", err)
		}
		grants = append(grants, s)
	}
	return grants, rows.Err()
}
