package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cartracker/internal/models"

	"github.com/google/uuid"
)

// MemoryCarRepository is an in-memory implementation of CarRepository used
// when no database is reachable. Contents are lost on restart.
type MemoryCarRepository struct {
	cars []models.Car
	mu   sync.RWMutex
}

// NewMemoryCarRepository creates an empty MemoryCarRepository.
func NewMemoryCarRepository() *MemoryCarRepository {
	return &MemoryCarRepository{}
}

// ListByUser returns the cars owned by userID in insertion order.
func (r *MemoryCarRepository) ListByUser(_ context.Context, userID string) ([]models.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cars := []models.Car{}
	for _, c := range r.cars {
		if c.UserID == userID {
			cars = append(cars, clone(c))
		}
	}
	return cars, nil
}

// GetByID returns a car by its ID.
func (r *MemoryCarRepository) GetByID(_ context.Context, id string) (*models.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("car with ID %s: %w", id, ErrNotFound)
	}
	c := clone(r.cars[i])
	return &c, nil
}

// Create appends a new car, assigning its ID and timestamps.
func (r *MemoryCarRepository) Create(_ context.Context, car *models.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if car.ID == "" {
		car.ID = uuid.New().String()
	}
	now := time.Now()
	car.CreatedAt = now
	car.UpdatedAt = now
	if car.Features == nil {
		car.Features = []string{}
	}
	r.cars = append(r.cars, clone(*car))
	return nil
}

// Update applies upd to the car with the given ID.
func (r *MemoryCarRepository) Update(_ context.Context, id string, upd models.CarUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("car with ID %s: %w", id, ErrNotFound)
	}
	r.cars[i].Apply(upd, time.Now())
	return nil
}

// Delete removes a car by its ID.
func (r *MemoryCarRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("car with ID %s: %w", id, ErrNotFound)
	}
	r.cars = append(r.cars[:i], r.cars[i+1:]...)
	return nil
}

func (r *MemoryCarRepository) indexOf(id string) int {
	for i := range r.cars {
		if r.cars[i].ID == id {
			return i
		}
	}
	return -1
}

// clone detaches the features slice so callers cannot mutate stored state.
func clone(c models.Car) models.Car {
	c.Features = append([]string{}, c.Features...)
	return c
}
