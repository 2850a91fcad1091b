// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/bardisplay/internal/config"
	xglog "github.com/ManuGH/bardisplay/internal/log"
)

// ShutdownHook releases a resource during shutdown. Hooks run in reverse
// registration order.
type ShutdownHook func(ctx context.Context) error

// Manager owns the HTTP listeners of the display server.
type Manager interface {
	// Start binds every listener and serves until ctx is cancelled or a
	// listener fails. It always returns after a full shutdown.
	Start(ctx context.Context) error

	// Shutdown drains the listeners and runs the shutdown hooks once.
	Shutdown(ctx context.Context) error

	RegisterShutdownHook(name string, hook ShutdownHook)
}

// endpoint is one listener served by the manager.
type endpoint struct {
	name string
	addr string
	srv  *http.Server
}

type namedHook struct {
	name string
	hook ShutdownHook
}

type manager struct {
	cfg    config.ServerConfig
	deps   Deps
	logger zerolog.Logger

	mu        sync.Mutex
	started   bool
	stopping  bool
	endpoints []endpoint
	hooks     []namedHook
}

// NewManager validates deps and returns a Manager for cfg.
func NewManager(cfg config.ServerConfig, deps Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	return &manager{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger.With().Str(xglog.FieldComponent, "manager").Logger(),
	}, nil
}

func (m *manager) plan() []endpoint {
	api := endpoint{name: "API server", addr: m.cfg.ListenAddr, srv: &http.Server{
		Handler:           m.deps.APIHandler,
		ReadTimeout:       m.cfg.ReadTimeout,
		ReadHeaderTimeout: m.cfg.ReadTimeout / 2,
		WriteTimeout:      m.cfg.WriteTimeout,
		IdleTimeout:       m.cfg.IdleTimeout,
		MaxHeaderBytes:    m.cfg.MaxHeaderBytes,
	}}
	if m.deps.MetricsHandler == nil || m.deps.MetricsAddr == "" {
		return []endpoint{api}
	}
	metrics := endpoint{name: "metrics server", addr: m.deps.MetricsAddr, srv: &http.Server{
		Handler:           m.deps.MetricsHandler,
		ReadHeaderTimeout: m.cfg.ReadTimeout / 2,
	}}
	return []endpoint{metrics, api}
}

func (m *manager) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("start context is nil")
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrManagerAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	m.logger.Info().
		Str(xglog.FieldEvent, "server.starting").
		Str("listen", m.cfg.ListenAddr).
		Str("metrics_listen", m.deps.MetricsAddr).
		Dur("shutdown_timeout", m.cfg.ShutdownTimeout).
		Msg("starting display server")

	failed := make(chan error, 2)
	for _, ep := range m.plan() {
		ln, err := net.Listen("tcp", ep.addr)
		if err != nil {
			return m.stopAfter(ctx, fmt.Errorf("failed to start %s: %w", ep.name, err))
		}
		m.mu.Lock()
		m.endpoints = append(m.endpoints, ep)
		m.mu.Unlock()
		m.logger.Info().Str("addr", ln.Addr().String()).Msgf("%s listening", ep.name)
		go m.serve(ep, ln, failed)
	}

	select {
	case err := <-failed:
		m.logger.Error().Err(err).Str(xglog.FieldEvent, "server.failed").Msg("listener failed, shutting down")
		return m.stopAfter(ctx, err)
	case <-ctx.Done():
		m.logger.Info().Str(xglog.FieldEvent, "server.stopping").Msg("shutdown requested")
		return m.stopAfter(ctx, nil)
	}
}

func (m *manager) serve(ep endpoint, ln net.Listener, failed chan<- error) {
	if err := ep.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		failed <- fmt.Errorf("%s: %w", ep.name, err)
	}
}

// stopAfter shuts down on a context detached from ctx and joins cause with
// any shutdown failure.
func (m *manager) stopAfter(ctx context.Context, cause error) error {
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.ShutdownTimeout)
	defer cancel()
	err := m.Shutdown(stopCtx)
	switch {
	case cause == nil:
		return err
	case err == nil:
		return cause
	default:
		return errors.Join(cause, err)
	}
}

func (m *manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return errors.New("shutdown context is nil")
	}

	m.mu.Lock()
	switch {
	case m.stopping:
		m.mu.Unlock()
		return nil
	case !m.started:
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	m.stopping = true
	endpoints := append([]endpoint(nil), m.endpoints...)
	hooks := append([]namedHook(nil), m.hooks...)
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(endpoints) - 1; i >= 0; i-- {
		if err := endpoints[i].srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s shutdown: %w", endpoints[i].name, err))
		}
	}
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		began := time.Now()
		err := h.hook(ctx)
		ev := m.logger.Debug()
		if err != nil {
			ev = m.logger.Error().Err(err)
			errs = append(errs, fmt.Errorf("hook %s: %w", h.name, err))
		}
		ev.Str("hook", h.name).Dur("duration", time.Since(began)).Msg("shutdown hook finished")
	}

	if len(errs) > 0 {
		m.logger.Error().Str(xglog.FieldEvent, "server.stopped").Int("errors", len(errs)).Msg("display server stopped with errors")
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	m.logger.Info().Str(xglog.FieldEvent, "server.stopped").Msg("display server stopped")
	return nil
}

func (m *manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, namedHook{name: name, hook: hook})
}
