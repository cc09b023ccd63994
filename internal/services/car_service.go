package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cartracker/internal/models"
	"cartracker/internal/repositories"

	"go.uber.org/zap"
)

// Routing keys for car change notifications.
const (
	EventCarCreated = "car.created"
	EventCarUpdated = "car.updated"
	EventCarDeleted = "car.deleted"
)

// EventPublisher delivers change notifications. Implemented by rabbitmq.Client.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// CarEvent is the payload of a car change notification.
type CarEvent struct {
	Event  string    `json:"event"`
	CarID  string    `json:"carId"`
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

// CarInput holds the fields of a new car as submitted by a client.
type CarInput struct {
	Model    string
	Year     int
	MPG      int
	FuelType models.FuelType
	Features []string
}

// CarService handles business logic related to car records.
type CarService struct {
	repo   repositories.CarRepository
	events EventPublisher
	log    *zap.Logger
	now    func() time.Time
}

// NewCarService creates a new CarService. events may be nil.
func NewCarService(repo repositories.CarRepository, events EventPublisher, log *zap.Logger) *CarService {
	return &CarService{
		repo:   repo,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// List returns the user's cars, each annotated with its age in the current year.
func (s *CarService) List(ctx context.Context, userID string) ([]models.CarView, error) {
	cars, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	year := s.now().Year()
	views := make([]models.CarView, 0, len(cars))
	for _, c := range cars {
		if c.Features == nil {
			c.Features = []string{}
		}
		views = append(views, models.CarView{Car: c, Age: c.AgeIn(year)})
	}
	return views, nil
}

// Add stores a new car for the user and returns its ID.
func (s *CarService) Add(ctx context.Context, userID, username string, in CarInput) (string, error) {
	fuel := in.FuelType
	if fuel == "" {
		fuel = models.DefaultFuelType
	}
	features := in.Features
	if features == nil {
		features = []string{}
	}
	car := &models.Car{
		UserID:   userID,
		Username: username,
		Model:    in.Model,
		Year:     in.Year,
		MPG:      in.MPG,
		FuelType: fuel,
		Features: features,
	}
	if err := s.repo.Create(ctx, car); err != nil {
		return "", err
	}
	s.publish(EventCarCreated, car.ID, userID)
	return car.ID, nil
}

// Update applies upd to one of the user's cars. An unknown ID, or a car owned
// by someone else, leaves everything untouched and is not reported as an error.
func (s *CarService) Update(ctx context.Context, userID, id string, upd models.CarUpdate) error {
	ok, err := s.owned(ctx, userID, id)
	if err != nil || !ok {
		return err
	}
	if err := s.repo.Update(ctx, id, upd); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return err
	}
	s.publish(EventCarUpdated, id, userID)
	return nil
}

// Delete removes one of the user's cars, with the same not-found semantics as Update.
func (s *CarService) Delete(ctx context.Context, userID, id string) error {
	ok, err := s.owned(ctx, userID, id)
	if err != nil || !ok {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return err
	}
	s.publish(EventCarDeleted, id, userID)
	return nil
}

func (s *CarService) owned(ctx context.Context, userID, id string) (bool, error) {
	car, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.log.Debug("car not found", zap.String("car_id", id))
			return false, nil
		}
		return false, err
	}
	if car.UserID != userID {
		s.log.Warn("ignoring change to car owned by another user",
			zap.String("car_id", id), zap.String("user_id", userID))
		return false, nil
	}
	return true, nil
}

func (s *CarService) publish(event, carID, userID string) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(CarEvent{Event: event, CarID: carID, UserID: userID, At: s.now()})
	if err != nil {
		s.log.Error("failed to encode car event", zap.Error(err))
		return
	}
	if err := s.events.Publish(event, body); err != nil {
		s.log.Warn(fmt.Sprintf("failed to publish %s", event), zap.String("car_id", carID), zap.Error(err))
	}
}
