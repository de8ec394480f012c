// Package evdev captures keyboard and mouse events from Linux input device
// nodes (/dev/input/event*). It implements ports.EventSource.
package evdev

import (
	"encoding/binary"
	"fmt"
	"time"
)

// wordSize is the size of a C long on this platform. struct timeval is two
// longs, so the record layout follows the process word size.
const wordSize = (32 << (^uint(0) >> 63)) / 8

// RecordSize is sizeof(struct input_event).
const RecordSize = 2*wordSize + 8

// Record is one decoded struct input_event.
type Record struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// Time returns the kernel timestamp of the record.
func (r Record) Time() time.Time {
	return time.Unix(r.Sec, r.Usec*int64(time.Microsecond))
}

// Decode reads one record from the front of buf.
func Decode(buf []byte) (Record, error) {
	if len(buf) < RecordSize {
		return Record{}, fmt.Errorf("short input_event: %d bytes, want %d", len(buf), RecordSize)
	}
	var r Record
	if wordSize == 8 {
		r.Sec = int64(binary.NativeEndian.Uint64(buf[0:8]))
		r.Usec = int64(binary.NativeEndian.Uint64(buf[8:16]))
	} else {
		r.Sec = int64(int32(binary.NativeEndian.Uint32(buf[0:4])))
		r.Usec = int64(int32(binary.NativeEndian.Uint32(buf[4:8])))
	}
	off := 2 * wordSize
	r.Type = binary.NativeEndian.Uint16(buf[off : off+2])
	r.Code = binary.NativeEndian.Uint16(buf[off+2 : off+4])
	r.Value = int32(binary.NativeEndian.Uint32(buf[off+4 : off+8]))
	return r, nil
}

// Encode writes r in kernel layout.
func Encode(r Record) []byte {
	buf := make([]byte, RecordSize)
	if wordSize == 8 {
		binary.NativeEndian.PutUint64(buf[0:8], uint64(r.Sec))
		binary.NativeEndian.PutUint64(buf[8:16], uint64(r.Usec))
	} else {
		binary.NativeEndian.PutUint32(buf[0:4], uint32(r.Sec))
		binary.NativeEndian.PutUint32(buf[4:8], uint32(r.Usec))
	}
	off := 2 * wordSize
	binary.NativeEndian.PutUint16(buf[off:off+2], r.Type)
	binary.NativeEndian.PutUint16(buf[off+2:off+4], r.Code)
	binary.NativeEndian.PutUint32(buf[off+4:off+8], uint32(r.Value))
	return buf
}
