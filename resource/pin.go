package resource

import (
	"errors"
	"runtime"
	"strings"
	"sync/atomic"
	"unsafe"
)

// ErrEmbeddedNUL is returned when a string cannot be expressed as a C string.
var ErrEmbeddedNUL = errors.New("string contains NUL byte")

var livePins atomic.Int64

// LivePins reports how many buffers are pinned right now, process-wide.
func LivePins() int64 {
	return livePins.Load()
}

// Pin is a stable native view of Go bytes. While pinned, the backing array
// neither moves nor gets collected, so C may keep the pointer.
type Pin struct {
	pinner runtime.Pinner
	buf    []byte
	n      int
	pinned bool
}

// PinText copies s into a NUL-terminated buffer and pins it.
func PinText(s string) (*Pin, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, ErrEmbeddedNUL
	}
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	p := &Pin{buf: buf, n: len(s)}
	p.pin()
	return p, nil
}

// PinBytes pins b in place, without copying. An empty slice yields a nil view.
func PinBytes(b []byte) *Pin {
	p := &Pin{buf: b, n: len(b)}
	if len(b) > 0 {
		p.pin()
	}
	return p
}

func (p *Pin) pin() {
	p.pinner.Pin(&p.buf[0])
	p.pinned = true
	livePins.Add(1)
}

// Pointer returns the native view, nil for an empty buffer.
func (p *Pin) Pointer() unsafe.Pointer {
	if len(p.buf) == 0 {
		return nil
	}
	return unsafe.Pointer(&p.buf[0])
}

// Len is the payload length, excluding the terminator PinText adds.
func (p *Pin) Len() int {
	return p.n
}

// Bytes returns the payload.
func (p *Pin) Bytes() []byte {
	return p.buf[:p.n]
}

// Pinned reports whether the view is still valid for C.
func (p *Pin) Pinned() bool {
	return p.pinned
}

// Unpin invalidates the native view. Calling it twice is harmless.
func (p *Pin) Unpin() {
	if !p.pinned {
		return
	}
	p.pinner.Unpin()
	p.pinned = false
	livePins.Add(-1)
}
