// Package sessions holds server-side session storage backends.
package sessions

import (
	"context"
	"errors"
	"time"

	"cartracker/internal/models"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Store persists sessions keyed by session ID.
type Store interface {
	Save(ctx context.Context, sess *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// nowFunc is swapped in tests.
var nowFunc = time.Now
