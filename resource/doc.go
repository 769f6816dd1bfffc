// Package resource tracks everything Go hands to the transfer engine that must
// outlive a single call.
//
// # Reference Table
//
// A Table maps generation-tagged Refs to Go values. A Ref is what the engine
// stores as its opaque per-call context (CURLOPT_WRITEDATA and friends), so it
// must be a plain integer, never a Go pointer:
//
//	ref := resource.Global().Insert(resource.TypeCallback, cb)
//	value, ok := resource.Global().Get(ref)
//
// Each slot carries a generation that advances when the slot is released, so a
// Ref kept past its release resolves to nothing instead of to whatever value
// reused the slot.
//
// # Pins
//
// A Pin is a stable native view of Go bytes: the backing array is pinned with
// runtime.Pinner so C may keep the pointer after the call that received it
// returns. PinText copies a string into a NUL-terminated buffer; PinBytes pins a
// byte slice in place.
//
// # Registry
//
// A Registry is the per-handle bookkeeping of long-lived references, pinned
// buffers and engine-owned objects. It only grows until Drain, which releases
// every entry in registration order, unpinning each pinned buffer before its
// reference is dropped:
//
//	reg := resource.NewRegistry(resource.Global())
//	reg.AddRef(ref)
//	reg.AddPinnedText(textRef, pin)
//	...
//	reg.Drain()
//
// # Observers
//
// Tables and registries report lifecycle events to subscribed observers:
//
//	reg.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    log.Printf("%s ref=%#x", e.Type, e.Ref)
//	}))
//
// Neither Table nor Registry is garbage collected into the engine: whatever is
// registered stays alive until it is explicitly released.
package resource
