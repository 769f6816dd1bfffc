package resource

import (
	"sync"
)

var global = NewTable()

// Global returns the process-wide reference table. Engine trampolines resolve
// their per-call context through it.
func Global() *Table {
	return global
}

// Table stores durable references to Go values, with observer support.
type Table struct {
	slots     *slots
	observers []Observer
	obsMu     sync.RWMutex
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		slots: newSlots(),
	}
}

// Insert adds a value and returns its reference, or 0 once the table is
// closed or holds MaxSlots values.
func (t *Table) Insert(typeID uint32, value any) Ref {
	ref, err := t.slots.create(typeID, value)
	if err != nil {
		return 0
	}

	t.notify(Event{
		Type:   EventCreated,
		Ref:    ref,
		TypeID: typeID,
		Value:  value,
	})

	return ref
}

// Get retrieves a value by reference.
func (t *Table) Get(ref Ref) (any, bool) {
	value, _, ok := t.slots.get(ref)
	return value, ok
}

// GetTyped retrieves a value only if it was inserted with typeID.
func (t *Table) GetTyped(ref Ref, typeID uint32) (any, bool) {
	value, actual, ok := t.slots.get(ref)
	if !ok || actual != typeID {
		return nil, false
	}
	return value, true
}

// Remove releases a reference and returns (value, true) if it was live.
// The slot's generation advances, so ref never resolves again.
func (t *Table) Remove(ref Ref) (any, bool) {
	value, typeID, ok := t.slots.drop(ref)
	if !ok {
		return nil, false
	}

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventDropped,
		Ref:    ref,
		TypeID: typeID,
		Value:  value,
	})

	return value, true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer. o must be comparable (not an ObserverFunc).
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live references.
func (t *Table) Len() int {
	return t.slots.len()
}

// Each iterates over live references until fn returns false.
func (t *Table) Each(fn func(Ref, uint32, any) bool) {
	t.slots.each(fn)
}

// Clear releases every live reference.
func (t *Table) Clear() {
	// Collect refs first to avoid holding the lock during Remove
	var refs []Ref
	t.slots.each(func(r Ref, _ uint32, _ any) bool {
		refs = append(refs, r)
		return true
	})
	for _, r := range refs {
		t.Remove(r)
	}
}

// Close drops every live value and stops accepting inserts.
func (t *Table) Close() error {
	for _, e := range t.slots.close() {
		if d, ok := e.value.(Dropper); ok {
			d.Drop()
		}
	}
	return nil
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
