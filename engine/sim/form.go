package sim

import (
	"unsafe"

	"github.com/wippyai/curl-bridge/engine"
)

// Part is a recorded multipart field.
type Part struct {
	Name     string
	Filename string

	// ContentType is only meaningful when HasType is set, i.e. when the part
	// was added with AddBufferWithType.
	ContentType string
	HasType     bool

	Buffer unsafe.Pointer
	Length int

	// Content is filled from Buffer when the request is assembled.
	Content []byte
}

func (p Part) snapshot() Part {
	if p.Buffer != nil && p.Length > 0 {
		p.Content = append([]byte(nil), unsafe.Slice((*byte)(p.Buffer), p.Length)...)
	}
	return p
}

// Form is a simulated multipart form.
type Form struct {
	parts  []Part
	adds   int
	failAt int
	frees  int
}

func (f *Form) AddBuffer(p engine.FormPart) engine.FormCode {
	return f.add(p, false)
}

func (f *Form) AddBufferWithType(p engine.FormPart) engine.FormCode {
	return f.add(p, true)
}

func (f *Form) add(p engine.FormPart, typed bool) engine.FormCode {
	f.adds++
	if f.failAt > 0 && f.adds == f.failAt {
		return engine.FormMemory
	}
	if p.Name == nil {
		return engine.FormNull
	}
	if typed && p.ContentType == nil {
		return engine.FormIncomplete
	}
	part := Part{
		Name:     goString(p.Name),
		Filename: goString(p.Filename),
		HasType:  typed,
		Buffer:   p.Buffer,
		Length:   p.Length,
	}
	if typed {
		part.ContentType = goString(p.ContentType)
	}
	f.parts = append(f.parts, part)
	return engine.FormOK
}

func (f *Form) Free() { f.frees++ }

// Parts returns the recorded fields with their content read now.
func (f *Form) Parts() []Part {
	out := make([]Part, len(f.parts))
	for i, p := range f.parts {
		out[i] = p.snapshot()
	}
	return out
}

// Frees reports how many times Free ran.
func (f *Form) Frees() int { return f.frees }

var _ engine.Form = (*Form)(nil)
