package rate

import (
	"context"
	"errors"
	"fmt"

	"github.com/corey/apm/internal/ports"
)

// Ingestor classifies input events and applies actions to a State.
// Only key and button releases count; presses are ignored so OS autorepeat
// can't inflate the rate. Releasing the shutdown key ends the session and is
// not counted.
type Ingestor struct {
	state       *State
	shutdownKey ports.Key
}

// NewIngestor creates an ingestor applying events to state.
func NewIngestor(state *State, shutdownKey ports.Key) *Ingestor {
	return &Ingestor{state: state, shutdownKey: shutdownKey}
}

// Ingest applies a single event. Returns ErrShutdown once the session is
// ending (including for the shutdown-key release itself), nil otherwise.
func (in *Ingestor) Ingest(ev ports.InputEvent) error {
	switch ev.Kind {
	case ports.KeyRelease:
		return in.state.ingest(ev.Key == in.shutdownKey)
	case ports.ButtonRelease:
		return in.state.ingest(false)
	default:
		if in.state.IsShutdown() {
			return ErrShutdown
		}
		return nil
	}
}

// Consume streams src, applying each event synchronously inside the
// source's callback. Returns nil when the stream ends, shutdown is reached,
// or ctx is cancelled. Any other source failure is wrapped with ErrCapture.
func (in *Ingestor) Consume(ctx context.Context, src ports.EventSource) error {
	err := src.Stream(ctx, in.Ingest)
	return streamResult(ctx, src, err)
}

// ConsumeBuffered is Consume with a bounded queue between the source
// callback and a dedicated ingestion goroutine. The callback blocks while
// the queue is full; no event is dropped.
func (in *Ingestor) ConsumeBuffered(ctx context.Context, src ports.EventSource, size int) error {
	if size <= 0 {
		return in.Consume(ctx, src)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan ports.InputEvent, size)
	done := make(chan error, 1)
	go func() {
		var ingestErr error
		for ev := range queue {
			if ingestErr != nil {
				continue // drain so the producer never blocks
			}
			if err := in.Ingest(ev); err != nil {
				ingestErr = err
				cancel()
			}
		}
		done <- ingestErr
	}()

	streamErr := src.Stream(streamCtx, func(ev ports.InputEvent) error {
		select {
		case queue <- ev:
			return nil
		case <-streamCtx.Done():
			return streamCtx.Err()
		}
	})
	close(queue)

	if ingestErr := <-done; errors.Is(ingestErr, ErrShutdown) {
		return nil
	}
	return streamResult(ctx, src, streamErr)
}

func streamResult(ctx context.Context, src ports.EventSource, err error) error {
	switch {
	case err == nil, errors.Is(err, ErrShutdown):
		return nil
	case ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		return nil
	default:
		return fmt.Errorf("%w: %s: %w", ErrCapture, src.Name(), err)
	}
}
