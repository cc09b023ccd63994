package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"cartracker/internal/app"
	"cartracker/internal/config"
	"cartracker/internal/logger"

	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// --- Wire backends and routes ---
	srv, err := app.Build(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to build application", zap.Error(err))
	}
	defer srv.Close()

	ln, err := net.Listen("tcp", cfg.AppPort)
	if err != nil {
		zlog.Fatal("failed to listen", zap.String("addr", cfg.AppPort), zap.Error(err))
	}

	// Graceful shutdown handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, srv, ln, zlog); err != nil {
		zlog.Error("server stopped with error", zap.Error(err))
	}
}

// serve runs srv on ln until ctx is cancelled, then shuts the app down.
func serve(ctx context.Context, srv *app.Server, ln net.Listener, log *zap.Logger) error {
	log.Info("starting server",
		zap.String("addr", ln.Addr().String()),
		zap.String("persistence_mode", string(srv.Backend.Mode)))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.App.Listener(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := srv.App.Shutdown(); err != nil {
		return err
	}
	<-errCh
	log.Info("server gracefully stopped")
	return nil
}
