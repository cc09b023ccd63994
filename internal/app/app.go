// Package app assembles the HTTP application from its backends.
package app

import (
	"context"
	"errors"
	"io"
	"time"

	"cartracker/internal/config"
	"cartracker/internal/database"
	"cartracker/internal/handlers"
	"cartracker/internal/middleware"
	"cartracker/internal/services"
	"cartracker/internal/sessions"
	"cartracker/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options are the dependencies of the HTTP application.
type Options struct {
	Config    *config.Config
	Backend   *database.Backend
	Sessions  sessions.Store
	Events    services.EventPublisher // optional
	Log       *zap.Logger
	AccessLog io.Writer // request log destination, stdout when nil
}

// New builds the fiber app with every route registered.
func New(opts Options) *fiber.App {
	cfg, log := opts.Config, opts.Log

	authService := services.NewAuthService(opts.Backend.Users, log)
	sessionService := services.NewSessionService(opts.Sessions, cfg.SessionSecret, cfg.SessionTTL)
	carService := services.NewCarService(opts.Backend.Cars, opts.Events, log)

	authHandler := handlers.NewAuthHandler(authService, sessionService,
		handlers.CookieConfig{Name: cfg.SessionCookie, Secure: cfg.CookieSecure}, log)
	carHandler := handlers.NewCarHandler(carService, log)
	pageHandler := handlers.NewPageHandler(sessionService, cfg.SessionCookie, log)
	healthHandler := handlers.NewHealthHandler(opts.Backend.Mode)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
		ErrorHandler:          errorHandler(log),
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{Output: opts.AccessLog}))

	browserAuth := middleware.RequireSession(sessionService, cfg.SessionCookie, middleware.RedirectHome, log)
	apiAuth := middleware.RequireSession(sessionService, cfg.SessionCookie, middleware.RespondUnauthorized, log)

	pageHandler.RegisterRoutes(app)
	authHandler.RegisterRoutes(app)
	carHandler.RegisterRoutes(app, browserAuth, apiAuth)
	healthHandler.RegisterRoutes(app)

	return app
}

// errorHandler renders errors that escape handlers as the JSON envelope.
// Details of unexpected errors are logged, never returned.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		} else {
			log.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}

// Server is a fully wired application together with the resources it owns.
type Server struct {
	App     *fiber.App
	Backend *database.Backend
	closers []func() error
}

// Build selects backends from cfg and wires the application. Unreachable
// optional backends degrade to in-process substitutes instead of failing.
func Build(cfg *config.Config, log *zap.Logger) (*Server, error) {
	s := &Server{}

	s.Backend = database.Select(cfg.DatabaseDriver, cfg.DatabaseDSN, database.Open, log)
	s.closers = append(s.closers, s.Backend.Close)

	store, closeStore := newSessionStore(cfg, log)
	if closeStore != nil {
		s.closers = append(s.closers, closeStore)
	}

	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Warn("car events disabled", zap.Error(err))
		} else {
			events = mq
			s.closers = append(s.closers, mq.Close)
		}
	}

	s.App = New(Options{
		Config:   cfg,
		Backend:  s.Backend,
		Sessions: store,
		Events:   events,
		Log:      log,
	})
	return s, nil
}

// Close releases backend connections in reverse order of acquisition.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newSessionStore(cfg *config.Config, log *zap.Logger) (sessions.Store, func() error) {
	if cfg.SessionStore != "redis" {
		return sessions.NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Warn("invalid REDIS_URL, using in-memory sessions", zap.Error(err))
		return sessions.NewMemoryStore(), nil
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, using in-memory sessions", zap.Error(err))
		rdb.Close()
		return sessions.NewMemoryStore(), nil
	}
	log.Info("using redis session store", zap.String("addr", opts.Addr))
	return sessions.NewRedisStore(rdb, ""), rdb.Close
}
