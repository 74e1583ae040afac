package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/janisto/cicd-demo/internal/config"
	applog "github.com/janisto/cicd-demo/internal/platform/logging"
	"github.com/janisto/cicd-demo/internal/server"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "1.0.0"

func main() {
	os.Exit(realMain())
}

func realMain() int {
	defer func() {
		// Syncing stdout can fail with EINVAL on some platforms; nothing to do about it.
		_ = applog.Sync()
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		applog.LogError(context.Background(), "invalid configuration", err)
		return 1
	}
	applog.SetLevel(cfg.LogLevel)

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		applog.LogError(context.Background(), "listen failed", err, zap.String("addr", cfg.Addr()))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, ln); err != nil {
		applog.LogError(context.Background(), "server error", err)
		return 1
	}
	return 0
}

// run serves on ln until ctx is cancelled, then shuts down gracefully within
// cfg.ShutdownTimeout. It returns nil after a clean shutdown.
func run(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	srv := server.New(cfg, Version).HTTPServer()

	serveErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening",
			zap.String("addr", ln.Addr().String()),
			zap.String("version", Version),
			zap.Stringer("logLevel", applog.Level()),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		applog.LogInfo(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	applog.LogInfo(context.Background(), "server exited")
	return nil
}
