package sim

import (
	"unsafe"

	"github.com/wippyai/curl-bridge/engine"
)

// List is a simulated curl_slist. Appended strings are copied.
type List struct {
	items   []string
	appends int
	failAt  int
	frees   int
}

func (l *List) Append(s unsafe.Pointer) bool {
	l.appends++
	if l.failAt > 0 && l.appends == l.failAt {
		return false
	}
	l.items = append(l.items, goString(s))
	return true
}

func (l *List) Len() int { return len(l.items) }

func (l *List) Free() { l.frees++ }

// Items returns the copied strings.
func (l *List) Items() []string { return append([]string(nil), l.items...) }

// Frees reports how many times Free ran.
func (l *List) Frees() int { return l.frees }

var _ engine.List = (*List)(nil)
