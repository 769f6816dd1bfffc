package marshal

import (
	"unsafe"

	"go.uber.org/zap"

	curlbridge "github.com/wippyai/curl-bridge"
	"github.com/wippyai/curl-bridge/engine"
	"github.com/wippyai/curl-bridge/resource"
)

// Push delivers size*count engine bytes at buf to the WriteCallback
// referenced by data and returns the callback's count.
func Push(data uintptr, buf unsafe.Pointer, size, count uintptr) (n uintptr) {
	length := size * count
	if length == 0 {
		return 0
	}
	cb, ok := writer(data)
	if !ok {
		return 0
	}

	defer func() {
		if r := recover(); r != nil {
			Logger().Error("write callback panicked",
				zap.Uint64("ref", uint64(data)),
				zap.Any("panic", r))
			n = 0
		}
	}()

	chunk := make([]byte, length)
	copy(chunk, unsafe.Slice((*byte)(buf), length))
	return uintptr(cb.WriteData(chunk))
}

// Pull asks the ReadCallback referenced by data for up to size*count bytes,
// copies what it produced into buf and returns the count.
func Pull(data uintptr, buf unsafe.Pointer, size, count uintptr) (n uintptr) {
	capacity := size * count
	if capacity == 0 {
		return 0
	}
	cb, ok := reader(data)
	if !ok {
		return engine.ReadAbort
	}

	defer func() {
		if r := recover(); r != nil {
			Logger().Error("read callback panicked",
				zap.Uint64("ref", uint64(data)),
				zap.Any("panic", r))
			n = engine.ReadAbort
		}
	}()

	slot := make([]byte, capacity)
	written := cb.ReadData(slot)
	if written < 0 || uintptr(written) > capacity {
		Logger().Warn("read callback overflow",
			zap.Int("reported", written),
			zap.Uint64("capacity", uint64(capacity)))
		return engine.ReadAbort
	}
	if written > 0 {
		copy(unsafe.Slice((*byte)(buf), written), slot[:written])
	}
	return uintptr(written)
}

func writer(data uintptr) (curlbridge.WriteCallback, bool) {
	v, ok := resource.Global().GetTyped(resource.Ref(data), resource.TypeCallback)
	if !ok {
		Logger().Warn("write callback not found", zap.Uint64("ref", uint64(data)))
		return nil, false
	}
	cb, ok := v.(curlbridge.WriteCallback)
	if !ok {
		Logger().Warn("reference is not a write callback", zap.Uint64("ref", uint64(data)))
	}
	return cb, ok
}

func reader(data uintptr) (curlbridge.ReadCallback, bool) {
	v, ok := resource.Global().GetTyped(resource.Ref(data), resource.TypeCallback)
	if !ok {
		Logger().Warn("read callback not found", zap.Uint64("ref", uint64(data)))
		return nil, false
	}
	cb, ok := v.(curlbridge.ReadCallback)
	if !ok {
		Logger().Warn("reference is not a read callback", zap.Uint64("ref", uint64(data)))
	}
	return cb, ok
}
