package handlers

import (
	"embed"

	"cartracker/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

//go:embed views/*.html
var views embed.FS

// PageHandler serves the landing and dashboard pages.
type PageHandler struct {
	resolver middleware.SessionResolver
	cookie   string
	log      *zap.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(resolver middleware.SessionResolver, cookie string, log *zap.Logger) *PageHandler {
	return &PageHandler{resolver: resolver, cookie: cookie, log: log}
}

// RegisterRoutes registers the page routes with the Fiber app.
func (h *PageHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleIndex)
}

// HandleIndex serves the dashboard to signed-in users and the login page to everyone else.
func (h *PageHandler) HandleIndex(c *fiber.Ctx) error {
	page := "views/login.html"
	sess, err := middleware.Lookup(c, h.resolver, h.cookie)
	if err != nil {
		h.log.Warn("session lookup failed, serving login page", zap.Error(err))
	} else if sess != nil {
		page = "views/dashboard.html"
	}

	body, err := views.ReadFile(page)
	if err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(body)
}
