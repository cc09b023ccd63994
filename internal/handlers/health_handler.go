package handlers

import (
	"time"

	"cartracker/internal/database"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports liveness and the persistence mode chosen at startup.
type HealthHandler struct {
	mode database.Mode
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(mode database.Mode) *HealthHandler {
	return &HealthHandler{mode: mode}
}

// RegisterRoutes registers the health route with the Fiber app.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth reports liveness, the persistence mode and the current time.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "OK",
		"persistenceMode": string(h.mode),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
