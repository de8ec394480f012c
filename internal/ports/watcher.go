package ports

// DeviceChange describes what happened to a device node.
type DeviceChange int

const (
	// DeviceAdded fires when a node appears or its permissions change
	// (udev creates nodes first and fixes ownership afterwards).
	DeviceAdded DeviceChange = iota

	// DeviceRemoved fires when a node disappears.
	DeviceRemoved
)

// Watcher monitors a device directory for input-device hotplug.
// The adapter (fsnotify) must filter out nodes that are not event devices
// before invoking onChange. Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring dir (non-recursively). onChange is called with
	// the absolute path of each added or removed device node. The callback
	// may be invoked from any goroutine. Returns an error if the directory
	// doesn't exist or permissions are insufficient.
	Watch(dir string, onChange func(devicePath string, change DeviceChange)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
