package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cartracker/internal/models"
	"cartracker/internal/sessions"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a session stays valid after login.
const DefaultSessionTTL = 24 * time.Hour

// SessionService maps signed session tokens to server-side sessions.
type SessionService struct {
	store  sessions.Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionService creates a SessionService. A non-positive ttl selects DefaultSessionTTL.
func NewSessionService(store sessions.Store, secret string, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the session lifetime.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Establish starts a session for user and returns the token to hand to the client.
func (s *SessionService) Establish(ctx context.Context, user *models.User) (string, error) {
	now := s.now()
	sess := &models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Id:        sess.ID,
		Subject:   sess.UserID,
		IssuedAt:  now.Unix(),
		ExpiresAt: sess.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Resolve returns the live session behind token.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.Session, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	sess, err := s.store.Get(ctx, claims.Id)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if sess.UserID != claims.Subject {
		return nil, ErrInvalidSession
	}
	if sess.Expired(s.now()) {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Destroy ends the session behind token. Unverifiable tokens are ignored.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	return s.store.Delete(ctx, claims.Id)
}

func (s *SessionService) parse(token string) (*jwt.StandardClaims, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	claims := &jwt.StandardClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Id == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
