package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const readinessTimeout = 3 * time.Second

// App owns the HTTP server lifecycle.
type App struct {
	cfg    Config
	logger zerolog.Logger
	probe  ReadinessProbe
	server *http.Server
	ready  atomic.Bool
}

// New mounts api under the health endpoints. probe may be nil.
func New(cfg Config, api http.Handler, probe ReadinessProbe, logger zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new app config: %w", err)
	}
	if api == nil {
		return nil, errors.New("new app: nil api handler")
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		probe:  probe,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealthz)
	mux.HandleFunc("GET /readyz", a.handleReadyz)
	mux.Handle("/", api)
	a.server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLoggingMiddleware(logger)(mux),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	return a, nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Start() error {
	a.ready.Store(true)
	a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")

	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	a.ready.Store(false)
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	a.ready.Store(false)

	err := a.server.Shutdown(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		a.logger.Warn().Msg("graceful shutdown timed out; forcing connection close")
		if closeErr := a.server.Close(); closeErr != nil {
			return fmt.Errorf("shutdown timeout and forced close failed: %w", errors.Join(err, closeErr))
		}
		return nil
	}
	return err
}

func (a *App) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writePlain(w, http.StatusOK, "ok")
}

func (a *App) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if !a.ready.Load() {
		writePlain(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	if a.probe != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := a.probe(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("readiness probe failed")
			writePlain(w, http.StatusServiceUnavailable, "inference backend unavailable")
			return
		}
	}
	writePlain(w, http.StatusOK, "ready")
}

func writePlain(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
