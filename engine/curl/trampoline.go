//go:build cgo

package curl

// #include <stddef.h>
// #include <stdint.h>
import "C"

import (
	"unsafe"

	"github.com/wippyai/curl-bridge/marshal"
)

//export curlbridgePush
func curlbridgePush(ptr *C.char, size, nmemb C.size_t, data C.uintptr_t) C.size_t {
	return C.size_t(marshal.Push(uintptr(data), unsafe.Pointer(ptr), uintptr(size), uintptr(nmemb)))
}

//export curlbridgePull
func curlbridgePull(ptr *C.char, size, nmemb C.size_t, data C.uintptr_t) C.size_t {
	return C.size_t(marshal.Pull(uintptr(data), unsafe.Pointer(ptr), uintptr(size), uintptr(nmemb)))
}
