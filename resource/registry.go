package resource

import (
	"go.uber.org/zap"
)

type pinnedEntry struct {
	pin *Pin
	ref Ref
}

// Registry is the bookkeeping one engine handle keeps for everything that must
// outlive a single call into the bridge. It is append-only until Drain and has
// no internal locking: it belongs to exactly one handle, used by one goroutine.
type Registry struct {
	table     *Table
	refs      []Ref
	texts     []pinnedEntry
	binaries  []pinnedEntry
	owned     []Freer
	observers []Observer
}

// NewRegistry creates an empty registry releasing into table.
func NewRegistry(table *Table) *Registry {
	return &Registry{table: table}
}

// Table returns the reference table entries are released into.
func (r *Registry) Table() *Table {
	return r.table
}

// AddRef keeps ref alive until Drain.
func (r *Registry) AddRef(ref Ref) {
	r.refs = append(r.refs, ref)
}

// AddPinnedText keeps a pinned string view and its reference until Drain.
func (r *Registry) AddPinnedText(ref Ref, pin *Pin) {
	r.texts = append(r.texts, pinnedEntry{ref: ref, pin: pin})
}

// AddPinnedBinary keeps a pinned byte view and its reference until Drain.
func (r *Registry) AddPinnedBinary(ref Ref, pin *Pin) {
	r.binaries = append(r.binaries, pinnedEntry{ref: ref, pin: pin})
}

// AddOwned schedules an engine-owned object to be freed at Drain.
func (r *Registry) AddOwned(f Freer) {
	r.owned = append(r.owned, f)
}

// Len returns the number of entries waiting for Drain.
func (r *Registry) Len() int {
	return len(r.refs) + len(r.texts) + len(r.binaries) + len(r.owned)
}

// Subscribe adds an observer for drain events.
func (r *Registry) Subscribe(o Observer) {
	r.observers = append(r.observers, o)
}

// Drain releases every entry: plain references, then pinned text, then pinned
// binary, then owned objects, each category in registration order. A pinned
// entry is always unpinned before its reference leaves the table.
func (r *Registry) Drain() {
	log := Logger()
	log.Debug("drain registry",
		zap.Int("refs", len(r.refs)),
		zap.Int("texts", len(r.texts)),
		zap.Int("binaries", len(r.binaries)),
		zap.Int("owned", len(r.owned)))

	for len(r.refs) > 0 {
		ref := r.refs[0]
		r.refs[0] = 0
		r.refs = r.refs[1:]
		r.release(ref)
	}

	r.texts = r.drainPinned(r.texts)
	r.binaries = r.drainPinned(r.binaries)

	for len(r.owned) > 0 {
		f := r.owned[0]
		r.owned[0] = nil
		r.owned = r.owned[1:]
		f.Free()
		r.notify(Event{Type: EventFreed, Value: f})
	}

	r.refs, r.texts, r.binaries, r.owned = nil, nil, nil, nil
}

func (r *Registry) drainPinned(list []pinnedEntry) []pinnedEntry {
	for len(list) > 0 {
		e := list[0]
		list[0] = pinnedEntry{}
		list = list[1:]

		e.pin.Unpin()
		r.notify(Event{Type: EventUnpinned, Ref: e.ref, CopyBack: false})
		r.release(e.ref)
	}
	return list
}

func (r *Registry) release(ref Ref) {
	value, ok := r.table.Remove(ref)
	if !ok {
		// double release is a programming error, not a runtime condition
		Logger().Error("release of unknown reference", zap.Uint64("ref", uint64(ref)))
		return
	}
	r.notify(Event{Type: EventReleased, Ref: ref, Value: value})
}

func (r *Registry) notify(e Event) {
	for _, o := range r.observers {
		o.OnResourceEvent(e)
	}
}
