package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cartracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCarRepository is a GORM implementation of CarRepository.
type GORMCarRepository struct {
	db *gorm.DB
}

// NewGORMCarRepository creates a new instance of GORMCarRepository.
func NewGORMCarRepository(db *gorm.DB) *GORMCarRepository {
	return &GORMCarRepository{
		db: db,
	}
}

// ListByUser returns the cars owned by userID in insertion order.
func (r *GORMCarRepository) ListByUser(ctx context.Context, userID string) ([]models.Car, error) {
	cars := []models.Car{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&cars).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cars for user %s: %w", userID, err)
	}
	return cars, nil
}

// GetByID retrieves a single car by its ID.
func (r *GORMCarRepository) GetByID(ctx context.Context, id string) (*models.Car, error) {
	var car models.Car
	if err := r.db.WithContext(ctx).First(&car, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("car with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get car by ID %s: %w", id, err)
	}
	return &car, nil
}

// Create inserts a new car, assigning its ID and timestamps.
func (r *GORMCarRepository) Create(ctx context.Context, car *models.Car) error {
	if car.ID == "" {
		car.ID = uuid.New().String()
	}
	now := time.Now()
	car.CreatedAt = now
	car.UpdatedAt = now
	if car.Features == nil {
		car.Features = []string{}
	}
	if err := r.db.WithContext(ctx).Create(car).Error; err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}
	return nil
}

// Update applies upd to the car with the given ID and refreshes UpdatedAt.
func (r *GORMCarRepository) Update(ctx context.Context, id string, upd models.CarUpdate) error {
	car, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	car.Apply(upd, time.Now())

	res := r.db.WithContext(ctx).
		Model(car).
		Select("model", "year", "mpg", "fuel_type", "features", "updated_at").
		Updates(car)
	if res.Error != nil {
		return fmt.Errorf("failed to update car %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// deleted between the read and the write
		return fmt.Errorf("car with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a car by its ID.
func (r *GORMCarRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Car{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete car %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("car with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
