package app

import (
	"errors"
	"fmt"

	"github.com/corey/apm/internal/adapters/evdev"
	fsw "github.com/corey/apm/internal/adapters/fsnotify"
	"github.com/corey/apm/internal/adapters/synthetic"
	"github.com/corey/apm/internal/adapters/x11"
	"github.com/corey/apm/internal/config"
	"github.com/corey/apm/internal/ports"
	"go.uber.org/zap"
)

// Probe is the outcome of checking one capture backend.
type Probe struct {
	Name    string
	Err     error // nil = usable
	Devices []evdev.Device
}

// NewSource builds the capture source named by cfg.Capture.Source. "auto"
// prefers evdev and falls back to X11.
func NewSource(cfg config.Config, logger *zap.Logger) (ports.EventSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	stopKey, err := ports.ParseKey(cfg.Telemetry.ShutdownKey)
	if err != nil {
		return nil, fmt.Errorf("%w: telemetry.shutdown_key: %v", config.ErrInvalid, err)
	}

	switch cfg.Capture.Source {
	case config.SourceEvdev:
		return newEvdev(cfg, logger), nil
	case config.SourceX11:
		return newX11(cfg, logger), nil
	case config.SourceSynthetic:
		return &synthetic.Metronome{
			RatePerMinute: cfg.Synthetic.RatePerMinute,
			StopAfter:     cfg.Synthetic.StopAfter,
			StopKey:       stopKey,
		}, nil
	case config.SourceAuto, "":
		probes := ProbeSources(cfg, logger)
		var errs []error
		for _, p := range probes {
			if p.Err == nil {
				logger.Debug("capture source selected", zap.String("source", p.Name))
				if p.Name == config.SourceEvdev {
					return newEvdev(cfg, logger), nil
				}
				return newX11(cfg, logger), nil
			}
			errs = append(errs, p.Err)
		}
		return nil, fmt.Errorf("no capture backend available: %w", errors.Join(errs...))
	default:
		return nil, fmt.Errorf("%w: capture.source %q", config.ErrInvalid, cfg.Capture.Source)
	}
}

// ProbeSources checks every real capture backend in preference order.
func ProbeSources(cfg config.Config, logger *zap.Logger) []Probe {
	if logger == nil {
		logger = zap.NewNop()
	}
	ev := newEvdev(cfg, logger)
	devs, err := ev.Devices()
	if err == nil && len(devs) == 0 {
		err = fmt.Errorf("%w in %s", evdev.ErrNoDevices, ev.Dir)
	}
	probes := []Probe{{Name: config.SourceEvdev, Err: err, Devices: devs}}

	probes = append(probes, Probe{Name: config.SourceX11, Err: newX11(cfg, logger).Probe()})
	return probes
}

func newEvdev(cfg config.Config, logger *zap.Logger) *evdev.Source {
	src := evdev.New(cfg.Capture.DevicesDir, logger.Named("evdev"))
	src.NewWatcher = func() (ports.Watcher, error) {
		w, err := fsw.NewWatcher()
		if err != nil {
			return nil, err
		}
		w.OnError = func(err error) {
			logger.Debug("hotplug watcher error", zap.Error(err))
		}
		return w, nil
	}
	return src
}

func newX11(cfg config.Config, logger *zap.Logger) *x11.Source {
	return x11.New("", cfg.PollInterval(), logger.Named("x11"))
}
