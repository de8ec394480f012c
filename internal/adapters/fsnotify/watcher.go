// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches an input device directory (normally /dev/input) and reports event device
// nodes as they are plugged in, re-permissioned by udev, or unplugged.
package fsnotify

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/corey/apm/internal/ports"
	"github.com/fsnotify/fsnotify"
)

// DevicePrefix is the name prefix of evdev character devices.
const DevicePrefix = "event"

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	stopped bool
	mu      sync.Mutex

	// OnError receives watcher errors. Optional; errors are dropped when nil
	// because fsnotify recovers on its own.
	OnError func(error)
}

// NewWatcher creates a new device directory watcher.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:   fw,
		done: make(chan struct{}),
	}, nil
}

// Watch starts monitoring dir for event device nodes.
func (w *Watcher) Watch(dir string, onChange func(devicePath string, change ports.DeviceChange)) error {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := w.fw.Add(absPath); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if !IsDeviceNode(event.Name) {
					continue
				}
				change, relevant := classify(event.Op)
				if !relevant {
					continue
				}
				if w.isStopped() {
					return
				}
				onChange(event.Name, change)

			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				if w.OnError != nil {
					w.OnError(err)
				}

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}

func (w *Watcher) isStopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

// IsDeviceNode returns true if path names an evdev node (event0, event17, ...).
func IsDeviceNode(path string) bool {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, DevicePrefix) {
		return false
	}
	suffix := base[len(DevicePrefix):]
	if suffix == "" {
		return false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// classify maps an fsnotify op onto a device change.
// Remove and Rename win over Create/Chmod when ops are coalesced.
func classify(op fsnotify.Op) (ports.DeviceChange, bool) {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return ports.DeviceRemoved, true
	case op.Has(fsnotify.Create), op.Has(fsnotify.Chmod):
		return ports.DeviceAdded, true
	default:
		return 0, false
	}
}
