// Package app wires the capture source, the rate engine and the renderer
// together and owns the session lifecycle: three execution units that share
// one rate.State and stop together once shutdown is requested.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/corey/apm/internal/domain/rate"
	"github.com/corey/apm/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds initialization parameters for the App.
type Config struct {
	Rate     rate.Config
	Source   ports.EventSource
	Renderer ports.Renderer
	Logger   *zap.Logger // optional: nil = no logging

	// Buffer is the capture queue size. Zero applies events inside the
	// source callback.
	Buffer int
}

// App is the top-level container wiring all components together.
type App struct {
	SessionID string

	State    *rate.State
	Ingestor *rate.Ingestor
	Ticker   *rate.Ticker
	Source   ports.EventSource
	Renderer ports.Renderer

	logger *zap.Logger
	buffer int

	mu         sync.Mutex // guards captureErr
	captureErr error
}

// New creates an App with all dependencies wired. Does not start anything.
func New(cfg Config) (*App, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("event source required")
	}
	if cfg.Renderer == nil {
		return nil, fmt.Errorf("renderer required")
	}
	if err := cfg.Rate.Validate(); err != nil {
		return nil, fmt.Errorf("rate config: %w", err)
	}
	if cfg.Buffer < 0 {
		return nil, fmt.Errorf("capture buffer must not be negative")
	}

	id := uuid.NewString()
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session", id))

	state := rate.NewState(cfg.Rate)
	ticker := rate.NewTicker(state, cfg.Rate.TickPeriod)
	ticker.OnWindowClose = func(window string, value uint64) {
		logger.Debug("window closed", zap.String("window", window), zap.Uint64("rate", value))
	}

	return &App{
		SessionID: id,
		State:     state,
		Ingestor:  rate.NewIngestor(state, cfg.Rate.ShutdownKey),
		Ticker:    ticker,
		Source:    cfg.Source,
		Renderer:  cfg.Renderer,
		logger:    logger,
		buffer:    cfg.Buffer,
	}, nil
}

// Run starts capture and ticking in the background and renders in the
// calling goroutine. It returns once all three have stopped. A capture
// failure is logged and recorded; counting stops but the session goes on
// until the renderer returns.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	a.logger.Info("session started",
		zap.String("source", a.Source.Name()),
		zap.Int("buffer", a.buffer),
	)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		if a.buffer > 0 {
			err = a.Ingestor.ConsumeBuffered(ctx, a.Source, a.buffer)
		} else {
			err = a.Ingestor.Consume(ctx, a.Source)
		}
		if err != nil {
			a.setCaptureErr(err)
			a.logger.Error("capture stopped, rates will no longer count actions", zap.Error(err))
			return
		}
		a.logger.Debug("capture finished")
	}()

	go func() {
		defer wg.Done()
		if err := a.Ticker.Run(ctx); err != nil && ctx.Err() == nil {
			a.logger.Warn("ticker stopped", zap.Error(err))
		}
	}()

	renderErr := a.Renderer.Render(ctx, a.State)

	a.State.RequestShutdown()
	cancel()
	wg.Wait()

	snap := a.State.Snapshot()
	a.logger.Info("session ended",
		zap.Duration("elapsed", time.Since(start)),
		zap.Uint64("current_rate", snap.CurrentRate),
		zap.Uint64("average_rate", snap.AverageRate),
	)

	if renderErr != nil {
		return fmt.Errorf("render: %w", renderErr)
	}
	return nil
}

// CaptureErr returns the error that stopped capture, if any.
func (a *App) CaptureErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.captureErr
}

func (a *App) setCaptureErr(err error) {
	a.mu.Lock()
	a.captureErr = err
	a.mu.Unlock()
}
