package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pewos/backend/internal/storage/models"
)

// DogRepository provides data access for pet profiles.
type DogRepository struct {
	BaseRepository
}

// NewDogRepository creates a new dog repository.
func NewDogRepository(db *DB) *DogRepository {
	return &DogRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new dog.
func (r *DogRepository) Create(ctx context.Context, d *models.Dog) error {
	d.ID = GenerateID()
	d.CreatedAt = r.Now()
	d.UpdatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO dogs (id, user_id, name, breed, birth_date, gender, is_neutered, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.UserID, d.Name, d.Breed, nullableDateString(d.BirthDate), d.Gender, d.IsNeutered, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting dog: %w", err)
	}

	return nil
}

// GetByID retrieves a dog by its ID. Returns nil if not found.
func (r *DogRepository) GetByID(ctx context.Context, id string) (*models.Dog, error) {
	row := r.DB().QueryRowContext(ctx, `
		SELECT id, user_id, name, breed, birth_date, gender, is_neutered, created_at, updated_at
		FROM dogs WHERE id = ?
	`, id)

	d, err := scanDog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying dog: %w", err)
	}
	return d, nil
}

// ListByUser retrieves all dogs owned by a user.
func (r *DogRepository) ListByUser(ctx context.Context, userID string) ([]models.Dog, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, user_id, name, breed, birth_date, gender, is_neutered, created_at, updated_at
		FROM dogs
		WHERE user_id = ?
		ORDER BY name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying dogs: %w", err)
	}
	defer rows.Close()

	var dogs []models.Dog
	for rows.Next() {
		d, err := scanDog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning dog: %w", err)
		}
		dogs = append(dogs, *d)
	}
	return dogs, rows.Err()
}

// ListVisibleTo retrieves the dogs a user may read: their own plus those of
// every owner whose accepted grant names them as recipient.
func (r *DogRepository) ListVisibleTo(ctx context.Context, userID string) ([]models.Dog, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, user_id, name, breed, birth_date, gender, is_neutered, created_at, updated_at
		FROM dogs
		WHERE user_id = ?
		   OR user_id IN (
			SELECT owner_id FROM shared_access
			WHERE shared_with_id = ? AND status = 'accepted'
		   )
		ORDER BY name
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying visible dogs: %w", err)
	}
	defer rows.Close()

	var dogs []models.Dog
	for rows.Next() {
		d, err := scanDog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning dog: %w", err)
		}
		dogs = append(dogs, *d)
	}
	return dogs, rows.Err()
}

// Update updates an existing dog.
func (r *DogRepository) Update(ctx context.Context, d *models.Dog) error {
	d.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE dogs SET name = ?, breed = ?, birth_date = ?, gender = ?, is_neutered = ?, updated_at = ?
		WHERE id = ?
	`, d.Name, d.Breed, nullableDateString(d.BirthDate), d.Gender, d.IsNeutered, d.UpdatedAt, d.ID)
	if err != nil {
		return fmt.Errorf("updating dog: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("dog not found: %s", d.ID)
	}

	return nil
}

// Delete removes a dog and, through foreign keys, all of its care items.
func (r *DogRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM dogs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting dog: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("dog not found: %s", id)
	}

	return nil
}

func scanDog(row rowScanner) (*models.Dog, error) {
	d := &models.Dog{}
	var birth *string

	if err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Breed, &birth, &d.Gender, &d.IsNeutered, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if d.BirthDate, err = parseNullableDate(birth); err != nil {
		return nil, fmt.Errorf("decoding dog birth date: %w", err)
	}

	return d, nil
}
