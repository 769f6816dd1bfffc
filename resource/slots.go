package resource

import (
	"errors"
	"sync"
)

var (
	ErrClosed = errors.New("resource table closed")
	ErrFull   = errors.New("resource table full")
)

// slots is the in-memory storage behind a Table: a slice of entries, a free
// list of released slots, and a generation per slot.
type slots struct {
	entries  []entry
	freeList []uint32
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	value  any
	typeID uint32
	gen    uint32
	valid  bool
}

func newSlots() *slots {
	return &slots{
		entries:  make([]entry, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

func (s *slots) create(typeID uint32, value any) (Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	if len(s.freeList) > 0 {
		slot := s.freeList[len(s.freeList)-1]
		s.freeList = s.freeList[:len(s.freeList)-1]
		e := &s.entries[slot-1]
		e.value = value
		e.typeID = typeID
		e.valid = true
		return makeRef(slot, e.gen), nil
	}

	if len(s.entries) >= MaxSlots {
		return 0, ErrFull
	}
	s.entries = append(s.entries, entry{
		value:  value,
		typeID: typeID,
		gen:    1,
		valid:  true,
	})
	return makeRef(uint32(len(s.entries)), 1), nil
}

// lookup returns the live entry for ref. Caller holds the lock.
func (s *slots) lookup(ref Ref) *entry {
	slot := ref.slot()
	if slot == 0 || int(slot) > len(s.entries) {
		return nil
	}
	e := &s.entries[slot-1]
	if !e.valid || e.gen != ref.generation() {
		return nil
	}
	return e
}

func (s *slots) get(ref Ref) (any, uint32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.lookup(ref)
	if e == nil {
		return nil, 0, false
	}
	return e.value, e.typeID, true
}

func (s *slots) drop(ref Ref) (any, uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(ref)
	if e == nil {
		return nil, 0, false
	}

	value, typeID := e.value, e.typeID
	e.value = nil
	e.valid = false
	e.gen = nextGen(e.gen)
	s.freeList = append(s.freeList, ref.slot())
	return value, typeID, true
}

func (s *slots) close() []entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var live []entry
	for _, e := range s.entries {
		if e.valid {
			live = append(live, e)
		}
	}
	s.entries = nil
	s.freeList = nil
	return live
}

func (s *slots) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.entries {
		if e.valid {
			count++
		}
	}
	return count
}

func (s *slots) each(fn func(Ref, uint32, any) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, e := range s.entries {
		if e.valid {
			if !fn(makeRef(uint32(i+1), e.gen), e.typeID, e.value) {
				break
			}
		}
	}
}
