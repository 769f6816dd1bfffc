// Package easy drives one engine transfer handle and owns everything the
// engine keeps pointers to.
//
// A Handle pairs an engine.Easy with a resource.Registry. Whatever must
// outlive a single call (callback objects, the retained POSTFIELDS string,
// header lists, form content) is registered there and released in one pass
// by Close.
//
// # Options
//
// Setopt dispatches on the declared Kind:
//
//	KindInteger            value passed straight through
//	KindObjectPointer      string pinned for the call; CURLOPT_POSTFIELDS stays pinned until Close
//	KindObjectPointerList  strings copied into an engine list, list freed at Close
//	KindFunction           callback registered, push or pull trampoline installed
//
// # Forms
//
// SetForm always replaces the previous form. Content bytes are pinned in
// place, not copied, because the engine reads them lazily during Perform.
//
// # Thread Safety
//
// A Handle must be used by one goroutine at a time. Callbacks run on the
// goroutine that called Perform; calling back into the same Handle from a
// callback returns a busy error.
package easy
