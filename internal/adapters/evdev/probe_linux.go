//go:build linux

package evdev

import (
	"bytes"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const supported = true

// ioctl request encoding from asm-generic/ioctl.h.
const (
	iocRead      = 2
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift
}

// eviocgname is EVIOCGNAME(len).
func eviocgname(size int) uintptr { return ioc(iocRead, 'E', 0x06, uintptr(size)) }

// eviocgbit is EVIOCGBIT(ev, len).
func eviocgbit(ev, size int) uintptr { return ioc(iocRead, 'E', uintptr(0x20+ev), uintptr(size)) }

func ioctlBuf(fd uintptr, req uintptr, buf []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}
	return nil
}

// probeDevice reads the device name and its event type bitmap. The ioctls
// run inside RawConn.Control so the descriptor stays registered with the
// runtime poller and Close still unblocks a pending Read.
func probeDevice(f *os.File) (string, bool, error) {
	rc, err := f.SyscallConn()
	if err != nil {
		return "", false, err
	}

	var (
		name  string
		keys  bool
		opErr error
	)
	err = rc.Control(func(fd uintptr) {
		nameBuf := make([]byte, 256)
		if err := ioctlBuf(fd, eviocgname(len(nameBuf)), nameBuf); err == nil {
			if i := bytes.IndexByte(nameBuf, 0); i >= 0 {
				nameBuf = nameBuf[:i]
			}
			name = string(nameBuf)
		}

		bits := make([]byte, 4)
		if err := ioctlBuf(fd, eviocgbit(0, len(bits)), bits); err != nil {
			opErr = fmt.Errorf("EVIOCGBIT: %w", err)
			return
		}
		keys = bits[evKey/8]&(1<<(evKey%8)) != 0
	})
	if err != nil {
		return "", false, err
	}
	return name, keys, opErr
}
