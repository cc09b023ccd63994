package middleware

import (
	"context"
	"errors"

	"cartracker/internal/models"
	"cartracker/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Keys under which the resolved identity is stored in fiber.Ctx locals.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
)

// OnMissing selects how a request without a valid session is turned away.
type OnMissing int

const (
	// RedirectHome sends the browser back to the landing page.
	RedirectHome OnMissing = iota
	// RespondUnauthorized answers with a 401 JSON envelope.
	RespondUnauthorized
)

// SessionResolver resolves a session token to a live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Session, error)
}

// Lookup resolves the session carried by the named cookie. It returns nil
// with no error when the request is simply not authenticated.
func Lookup(c *fiber.Ctx, resolver SessionResolver, cookie string) (*models.Session, error) {
	token := c.Cookies(cookie)
	if token == "" {
		return nil, nil
	}
	sess, err := resolver.Resolve(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSession) || errors.Is(err, services.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sess, nil
}

// RequireSession only lets requests with a valid session cookie through.
func RequireSession(resolver SessionResolver, cookie string, onMissing OnMissing, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := Lookup(c, resolver, cookie)
		if err != nil {
			log.Error("session lookup failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Server error",
			})
		}
		if sess == nil {
			if onMissing == RedirectHome {
				return c.Redirect("/", fiber.StatusFound)
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Not authenticated",
			})
		}

		c.Locals(LocalUserID, sess.UserID)
		c.Locals(LocalUsername, sess.Username)
		return c.Next()
	}
}

// Identity returns the user stored by RequireSession.
func Identity(c *fiber.Ctx) (userID, username string) {
	userID, _ = c.Locals(LocalUserID).(string)
	username, _ = c.Locals(LocalUsername).(string)
	return userID, username
}
