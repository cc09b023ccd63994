package repositories

import (
	"context"

	"cartracker/internal/models"
)

// CarRepository defines the interface for car record data access.
// Implementations do not check ownership; callers scope by user.
type CarRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Car, error)
	GetByID(ctx context.Context, id string) (*models.Car, error)
	Create(ctx context.Context, car *models.Car) error
	Update(ctx context.Context, id string, upd models.CarUpdate) error
	Delete(ctx context.Context, id string) error
}
