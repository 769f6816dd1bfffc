// Package engine defines the contract between the bridge and a native
// transfer engine.
//
// The contract is deliberately pointer-level: string and buffer arguments
// are unsafe.Pointer views of NUL-terminated or length-delimited memory, and
// callback userdata is an opaque uintptr. That is exactly what libcurl sees,
// so the retention rules enforced by package easy are the same whether the
// engine is the real one or a double.
//
// # Implementations
//
//	engine/curl  - libcurl through cgo (build tag cgo)
//	engine/sim   - pure Go, records options and replays scripted responses
//
// # Codes
//
// Code mirrors CURLcode and FormCode mirrors CURLFORMcode. Both implement
// error so they can travel as the cause of an *errors.Error and be recovered
// with errors.As.
//
// # Callbacks
//
// A write or header callback is installed as a Trampoline plus userdata. The
// engine calls Trampoline.Push(data, buf, size, nmemb) with the userdata it
// was given; a read callback is called through Trampoline.Pull. Returning
// ReadAbort from a pull aborts the transfer.
package engine
