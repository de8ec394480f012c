package evdev

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/corey/apm/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultDir is where udev creates event nodes.
const DefaultDir = "/dev/input"

// readBatch is how many records one read may return.
const readBatch = 64

// Device describes an opened event node.
type Device struct {
	Path string
	Name string
}

// ProbeFunc inspects an opened node and reports whether it emits key events.
type ProbeFunc func(f *os.File) (name string, keys bool, err error)

// Source implements ports.EventSource over every keyboard-like event node
// in Dir. Nodes plugged in while streaming are picked up through the
// watcher returned by NewWatcher.
type Source struct {
	Dir    string
	Logger *zap.Logger

	// Probe defaults to the EVIOCGNAME/EVIOCGBIT ioctls.
	Probe ProbeFunc

	// NewWatcher creates the hotplug watcher. Nil disables hotplug.
	NewWatcher func() (ports.Watcher, error)
}

var _ ports.EventSource = (*Source)(nil)

// New creates a Source for dir.
func New(dir string, logger *zap.Logger) *Source {
	if dir == "" {
		dir = DefaultDir
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{Dir: dir, Logger: logger}
}

// Name returns "evdev".
func (s *Source) Name() string { return "evdev" }

// Devices probes every event node in Dir and returns the ones that would be
// captured. Nodes that cannot be opened are skipped; when none can, the
// last open error is wrapped with ErrNoDevices.
func (s *Source) Devices() ([]Device, error) {
	if !supported && s.Probe == nil {
		return nil, ErrUnsupported
	}
	paths, err := nodes(s.Dir)
	if err != nil {
		return nil, err
	}
	var devs []Device
	var lastErr error
	for _, p := range paths {
		f, dev, err := s.open(p)
		if err != nil {
			lastErr = err
			continue
		}
		f.Close()
		devs = append(devs, dev)
	}
	if len(devs) == 0 && lastErr != nil {
		return nil, fmt.Errorf("%w in %s: %w", ErrNoDevices, s.Dir, lastErr)
	}
	return devs, nil
}

// nodes lists event* nodes in dir, sorted.
func nodes(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "event*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// open opens and probes one node. Nodes that do not advertise key events
// are closed and reported as errors.
func (s *Source) open(path string) (*os.File, Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Device{}, err
	}
	probe := s.Probe
	if probe == nil {
		probe = probeDevice
	}
	name, keys, err := probe(f)
	if err != nil {
		f.Close()
		return nil, Device{}, fmt.Errorf("probe %s: %w", path, err)
	}
	if !keys {
		f.Close()
		return nil, Device{}, fmt.Errorf("%s: no key events", path)
	}
	return f, Device{Path: path, Name: name}, nil
}

// hotplug is a watcher notification forwarded to the stream loop.
type hotplug struct {
	path   string
	change ports.DeviceChange
}

// stream holds the per-Stream bookkeeping. Only the Stream goroutine touches
// files; readers only send.
type stream struct {
	src    *Source
	events chan ports.InputEvent
	gone   chan string
	done   chan struct{}
	files  map[string]*os.File
	wg     sync.WaitGroup

	// udev emits bursts of chmod events per node; failed reopen attempts
	// are logged at most a few times per second.
	retryLog *rate.Limiter
}

// Stream reads every capturable device until ctx is cancelled or emit fails.
// It returns ErrNoDevices when no device could be opened at start.
func (s *Source) Stream(ctx context.Context, emit func(ports.InputEvent) error) error {
	if !supported && s.Probe == nil {
		return ErrUnsupported
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	st := &stream{
		src:    s,
		events: make(chan ports.InputEvent, readBatch),
		gone:   make(chan string, 4),
		done:   make(chan struct{}),
		files:  make(map[string]*os.File),

		retryLog: rate.NewLimiter(rate.Every(time.Second), 3),
	}
	defer st.close()

	paths, err := nodes(s.Dir)
	if err != nil {
		return err
	}
	var lastErr error
	for _, p := range paths {
		if err := st.open(p, logger); err != nil {
			logger.Debug("skipping input node", zap.String("path", p), zap.Error(err))
			lastErr = err
		}
	}
	if len(st.files) == 0 {
		if lastErr != nil {
			return fmt.Errorf("%w in %s: %w", ErrNoDevices, s.Dir, lastErr)
		}
		return fmt.Errorf("%w in %s", ErrNoDevices, s.Dir)
	}

	plugs := make(chan hotplug, 8)
	if s.NewWatcher != nil {
		w, err := s.NewWatcher()
		if err != nil {
			logger.Warn("hotplug disabled", zap.Error(err))
		} else {
			defer w.Stop()
			err := w.Watch(s.Dir, func(path string, change ports.DeviceChange) {
				select {
				case plugs <- hotplug{path: path, change: change}:
				case <-st.done:
				}
			})
			if err != nil {
				logger.Warn("hotplug disabled", zap.Error(err))
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-st.events:
			if err := emit(ev); err != nil {
				return err
			}
		case path := <-st.gone:
			if st.remove(path) {
				logger.Info("input device lost", zap.String("path", path))
			}
		case hp := <-plugs:
			switch hp.change {
			case ports.DeviceAdded:
				if _, ok := st.files[hp.path]; ok {
					continue
				}
				if err := st.open(hp.path, logger); err != nil && st.retryLog.Allow() {
					logger.Debug("hotplug open failed", zap.String("path", hp.path), zap.Error(err))
				}
			case ports.DeviceRemoved:
				if st.remove(hp.path) {
					logger.Info("input device removed", zap.String("path", hp.path))
				}
			}
		}
	}
}

// open opens path and starts its reader.
func (st *stream) open(path string, logger *zap.Logger) error {
	f, dev, err := st.src.open(path)
	if err != nil {
		return err
	}
	st.files[path] = f
	logger.Info("input device opened", zap.String("path", dev.Path), zap.String("name", dev.Name))

	st.wg.Add(1)
	go st.read(path, f)
	return nil
}

// remove closes path if it is open.
func (st *stream) remove(path string) bool {
	f, ok := st.files[path]
	if !ok {
		return false
	}
	delete(st.files, path)
	f.Close()
	return true
}

// read decodes records from f until it is closed or fails.
func (st *stream) read(path string, f *os.File) {
	defer st.wg.Done()

	buf := make([]byte, RecordSize*readBatch)
	var pending []byte
	for {
		n, err := f.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			for len(pending) >= RecordSize {
				r, _ := Decode(pending)
				pending = pending[RecordSize:]
				ev, ok := Translate(r)
				if !ok {
					continue
				}
				select {
				case st.events <- ev:
				case <-st.done:
					return
				}
			}
		}
		if err != nil {
			if errors.Is(err, os.ErrClosed) || errors.Is(err, io.EOF) {
				return
			}
			select {
			case st.gone <- path:
			case <-st.done:
			}
			return
		}
	}
}

// close stops readers and releases every file.
func (st *stream) close() {
	close(st.done)
	for path := range st.files {
		st.remove(path)
	}
	st.wg.Wait()
}
