package engine

import (
	"unsafe"
)

// GlobalFlags selects the subsystems initialised by GlobalInit.
type GlobalFlags int64

const (
	GlobalNothing GlobalFlags = 0
	GlobalSSL     GlobalFlags = 1 << 0
	GlobalWin32   GlobalFlags = 1 << 1
	GlobalAll     GlobalFlags = GlobalSSL | GlobalWin32
	GlobalDefault GlobalFlags = GlobalAll
)

// ReadAbort is the sentinel a read callback returns to abort the transfer.
const ReadAbort uintptr = 0x10000000

// Info identifies a value retrievable after a transfer.
type Info int

// InfoResponseCode is the last received HTTP status (CURLINFO_RESPONSE_CODE).
const InfoResponseCode Info = 0x200002

// PushFunc is the native shape of a write or header callback.
type PushFunc func(data uintptr, buf unsafe.Pointer, size, count uintptr) uintptr

// PullFunc is the native shape of a read callback.
type PullFunc func(data uintptr, buf unsafe.Pointer, size, count uintptr) uintptr

// Trampoline carries the entry points an engine uses to reach Go.
// Exactly one of Push or Pull is meaningful for a given option.
type Trampoline struct {
	Push PushFunc
	Pull PullFunc
}

// Engine is a native transfer engine.
type Engine interface {
	GlobalInit(flags GlobalFlags) Code
	GlobalCleanup()

	// NewEasy returns nil if the engine cannot create a handle.
	NewEasy() Easy
	NewList() List
	NewForm() Form
}

// Easy is one native transfer handle.
type Easy interface {
	SetoptLong(opt Option, v int64) Code

	// SetoptPointer passes a pointer argument through unchanged. For string
	// options p is a NUL-terminated view the engine may or may not copy.
	SetoptPointer(opt Option, p unsafe.Pointer) Code

	SetoptList(opt Option, l List) Code
	SetoptFunction(opt Option, t Trampoline) Code

	// SetoptData installs the userdata passed back to a callback.
	SetoptData(opt Option, data uintptr) Code

	// SetoptForm installs f as the multipart body; nil clears it.
	SetoptForm(f Form) Code

	Perform() Code
	GetinfoLong(info Info) (int64, Code)
	Cleanup()
}

// List is a native linked list of strings (curl_slist).
type List interface {
	// Append links a copy of the NUL-terminated string at s. It reports false
	// when the engine could not allocate the node.
	Append(s unsafe.Pointer) bool
	Len() int
	Free()
}

// FormPart is one buffer-backed multipart field.
type FormPart struct {
	Name        unsafe.Pointer
	Filename    unsafe.Pointer
	ContentType unsafe.Pointer
	Buffer      unsafe.Pointer
	Length      int
}

// Form is a native multipart form under construction.
type Form interface {
	// AddBuffer adds a part without an explicit content type.
	AddBuffer(p FormPart) FormCode
	// AddBufferWithType adds a part whose ContentType is set.
	AddBufferWithType(p FormPart) FormCode
	Free()
}
