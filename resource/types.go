package resource

import "math/bits"

// Ref is an opaque reference to a value in a Table. It is pointer sized so it
// can travel through the engine's userdata slot unchanged: the low half holds
// the slot, the high half the slot's generation (32/32 bits on 64-bit targets,
// 16/16 on 32-bit ones). Ref 0 is reserved and always invalid.
type Ref uintptr

const (
	refBits = bits.UintSize / 2
	refMask = 1<<refBits - 1

	// MaxSlots bounds how many values a Table holds at once.
	MaxSlots = refMask
)

func makeRef(slot, gen uint32) Ref {
	return Ref(uintptr(gen)<<refBits | uintptr(slot))
}

func (r Ref) slot() uint32 {
	return uint32(uintptr(r) & refMask)
}

func (r Ref) generation() uint32 {
	return uint32(uintptr(r) >> refBits)
}

// nextGen advances a slot generation, wrapping within the generation half and
// skipping 0 so no live Ref is ever 0.
func nextGen(gen uint32) uint32 {
	gen = (gen + 1) & refMask
	if gen == 0 {
		gen = 1
	}
	return gen
}

// Type IDs for values stored in a Table.
const (
	TypeCallback uint32 = iota + 1
	TypeText
	TypeBytes
	TypeHandle
)

// EventType identifies a lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
	EventUnpinned
	EventReleased
	EventFreed
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	case EventUnpinned:
		return "unpinned"
	case EventReleased:
		return "released"
	case EventFreed:
		return "freed"
	}
	return "unknown"
}

// Event represents a resource lifecycle event.
type Event struct {
	Value  any
	Ref    Ref
	TypeID uint32
	Type   EventType
	// CopyBack is set on EventUnpinned; outbound buffers never write back.
	CopyBack bool
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnResourceEvent calls f(e).
func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Dropper is optionally implemented by table values that need cleanup.
type Dropper interface {
	Drop()
}

// Freer is an engine-owned object the registry must free at teardown.
type Freer interface {
	Free()
}
