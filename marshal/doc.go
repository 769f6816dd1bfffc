// Package marshal moves bytes between engine-owned buffers and Go callbacks
// while a transfer is running.
//
// Push serves write and header callbacks: the engine hands over size*count
// bytes, Push copies them into a fresh Go slice, calls the
// curlbridge.WriteCallback and returns its result verbatim. A short result is
// the engine's business, Push never clamps it.
//
// Pull serves read callbacks: the engine offers a buffer of size*count bytes,
// Pull lends the callback a Go slice of that capacity and copies back exactly
// the number of bytes reported. A report larger than the capacity, or
// negative, is a protocol violation and returns engine.ReadAbort without
// touching the native buffer.
//
// The userdata passed by the engine is a resource.Ref into resource.Global().
// It is resolved on every call; nothing is cached between invocations, and the
// transient slices are never registered anywhere.
package marshal
