package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/expiring-shortener/internal/container"
	"github.com/serroba/expiring-shortener/internal/messaging"
	"github.com/serroba/expiring-shortener/internal/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// app owns the server lifecycle. humacli calls run and stop from different
// goroutines, so every field below mu is read and written under it.
type app struct {
	options *container.Options

	mu       sync.Mutex
	stopped  bool
	injector *do.Injector
	logger   *zap.Logger
	server   *http.Server
	shutdown tracing.Shutdown
}

func newApp(options *container.Options) *app {
	return &app{
		options:  options,
		shutdown: func(context.Context) error { return nil },
	}
}

// run builds the service and serves until stop is called. It returns nil
// without starting anything when stop already ran.
func (a *app) run() error {
	a.mu.Lock()

	if a.stopped {
		a.mu.Unlock()

		return nil
	}

	err := a.init()
	server, logger := a.server, a.logger
	a.mu.Unlock()

	if err != nil {
		return err
	}

	logger.Info("server starting", zap.Int("port", a.options.Port), zap.String("store", a.options.Store))

	// A stop between init and here has already shut the server down, and
	// ListenAndServe then returns ErrServerClosed immediately.
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// init must be called with mu held.
func (a *app) init() error {
	a.injector = container.NewServer(a.options)
	a.logger = do.MustInvoke[*zap.Logger](a.injector)

	if err := a.options.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	shutdown, err := tracing.Init(context.Background(), a.options.OTLPEndpoint, serviceName)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	a.shutdown = shutdown

	// Connect, ping and migrate before accepting requests.
	if _, err := do.Invoke[huma.API](a.injector); err != nil {
		return fmt.Errorf("initialize service: %w", err)
	}

	// Without Redis the analytics consumers run in this process.
	if a.options.InMemory() {
		if err := do.MustInvoke[*messaging.ConsumerGroup](a.injector).Start(context.Background()); err != nil {
			return fmt.Errorf("start in-process consumers: %w", err)
		}
	}

	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.options.Port),
		Handler:           otelhttp.NewHandler(do.MustInvoke[*chi.Mux](a.injector), serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nil
}

// stop shuts down whatever run has built so far and prevents a later run
// from starting.
func (a *app) stop(ctx context.Context) {
	a.mu.Lock()
	a.stopped = true
	injector, logger, server, shutdown := a.injector, a.logger, a.server, a.shutdown
	a.mu.Unlock()

	if logger == nil {
		return
	}

	logger.Info("shutting down")

	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}

	if err := injector.Shutdown(); err != nil {
		logger.Error("service shutdown error", zap.Error(err))
	}

	if err := shutdown(ctx); err != nil {
		logger.Error("tracing shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
	_ = logger.Sync()
}

func (a *app) listening() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.server != nil
}
