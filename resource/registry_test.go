package resource

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type freeCounter struct {
	freed int
}

func (f *freeCounter) Free() {
	f.freed++
}

func pinText(t *testing.T, table *Table, s string) (Ref, *Pin) {
	t.Helper()
	p, err := PinText(s)
	require.NoError(t, err)
	return table.Insert(TypeText, p.Bytes()), p
}

func TestRegistry_DrainReleasesEverything(t *testing.T) {
	table := NewTable()
	reg := NewRegistry(table)

	cb := table.Insert(TypeCallback, "callback")
	reg.AddRef(cb)

	textRef, textPin := pinText(t, table, "a=1&b=2")
	reg.AddPinnedText(textRef, textPin)

	data := []byte("payload")
	binPin := PinBytes(data)
	binRef := table.Insert(TypeBytes, data)
	reg.AddPinnedBinary(binRef, binPin)

	list := &freeCounter{}
	reg.AddOwned(list)

	require.Equal(t, 4, reg.Len())
	require.Equal(t, 3, table.Len())

	reg.Drain()

	assert.Zero(t, reg.Len())
	assert.Zero(t, table.Len())
	assert.False(t, textPin.Pinned())
	assert.False(t, binPin.Pinned())
	assert.Equal(t, 1, list.freed)
}

func TestRegistry_DrainOrder(t *testing.T) {
	table := NewTable()
	reg := NewRegistry(table)
	obs := &testObserver{}
	reg.Subscribe(obs)

	r1 := table.Insert(TypeCallback, 1)
	r2 := table.Insert(TypeCallback, 2)
	reg.AddRef(r1)
	reg.AddRef(r2)
	t1, p1 := pinText(t, table, "one")
	t2, p2 := pinText(t, table, "two")
	reg.AddPinnedText(t1, p1)
	reg.AddPinnedText(t2, p2)

	reg.Drain()

	var got []struct {
		typ EventType
		ref Ref
	}
	for _, e := range obs.events {
		got = append(got, struct {
			typ EventType
			ref Ref
		}{e.Type, e.Ref})
	}
	want := []struct {
		typ EventType
		ref Ref
	}{
		{EventReleased, r1},
		{EventReleased, r2},
		{EventUnpinned, t1},
		{EventReleased, t1},
		{EventUnpinned, t2},
		{EventReleased, t2},
	}
	assert.Equal(t, want, got)
}

// Any mix of registrations drains to zero, and every pinned entry is unpinned
// before its reference is released.
func TestRegistry_DrainCompletenessRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	baseline := LivePins()

	for round := 0; round < 200; round++ {
		table := NewTable()
		reg := NewRegistry(table)

		unpinned := make(map[Ref]bool)
		pinnedRefs := make(map[Ref]bool)
		reg.Subscribe(ObserverFunc(func(e Event) {
			switch e.Type {
			case EventUnpinned:
				assert.False(t, e.CopyBack)
				unpinned[e.Ref] = true
			case EventReleased:
				if pinnedRefs[e.Ref] {
					assert.True(t, unpinned[e.Ref], "released before unpin: %#x", e.Ref)
				}
			}
		}))

		var owned []*freeCounter
		n := rng.Intn(20)
		for i := 0; i < n; i++ {
			switch rng.Intn(4) {
			case 0:
				reg.AddRef(table.Insert(TypeCallback, i))
			case 1:
				ref, p := pinText(t, table, "text")
				pinnedRefs[ref] = true
				reg.AddPinnedText(ref, p)
			case 2:
				data := make([]byte, 1+rng.Intn(64))
				ref := table.Insert(TypeBytes, data)
				pinnedRefs[ref] = true
				reg.AddPinnedBinary(ref, PinBytes(data))
			case 3:
				f := &freeCounter{}
				owned = append(owned, f)
				reg.AddOwned(f)
			}
		}
		require.Equal(t, n, reg.Len())

		reg.Drain()

		require.Zero(t, reg.Len(), "round %d", round)
		require.Zero(t, table.Len(), "round %d", round)
		for _, f := range owned {
			require.Equal(t, 1, f.freed)
		}
		require.Equal(t, baseline, LivePins(), "round %d", round)
	}
}

func TestRegistry_NoDedup(t *testing.T) {
	table := NewTable()
	reg := NewRegistry(table)

	ref := table.Insert(TypeCallback, "cb")
	reg.AddRef(ref)
	reg.AddRef(ref)
	assert.Equal(t, 2, reg.Len())

	reg.Drain()
	assert.Zero(t, reg.Len())
	assert.Zero(t, table.Len())
}

func TestRegistry_DrainEmpty(t *testing.T) {
	reg := NewRegistry(NewTable())
	reg.Drain()
	reg.Drain()
	assert.Zero(t, reg.Len())
}
