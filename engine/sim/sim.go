package sim

import (
	"fmt"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/curl-bridge/engine"
)

// DefaultReadChunk is the capacity offered to read callbacks.
const DefaultReadChunk = 16384

// Request is what a transfer would have sent.
type Request struct {
	Method  string
	URL     string
	Headers []string
	Body    []byte
	Parts   []Part
	Longs   map[engine.Option]int64
	Strings map[engine.Option]string
}

// Response scripts what Perform delivers.
type Response struct {
	Status  int
	Reason  string
	Headers []string

	// Body is pushed one chunk per write callback invocation.
	Body [][]byte

	// Continue emits an interim "100 Continue" block first.
	Continue bool

	// Code, when non-zero, is returned by Perform after the response was
	// delivered.
	Code engine.Code
}

// Responder produces the response for a request.
type Responder func(req *Request) *Response

// Engine is a simulated engine. The zero value is not usable; call New.
type Engine struct {
	mu sync.Mutex

	responder Responder

	// FailEasyInit makes NewEasy return nil.
	FailEasyInit bool

	// FailFormPart makes the n-th AddBuffer call on a form (1-based) fail.
	FailFormPart int

	// FailListAppend makes the n-th Append on a list (1-based) fail.
	FailListAppend int

	// Reject maps options to the code SetoptX returns for them.
	Reject map[engine.Option]engine.Code

	// ReadChunk is the capacity offered to read callbacks per call.
	ReadChunk int

	globalInits    int
	globalCleanups int
	lastFlags      engine.GlobalFlags

	easies []*Easy
	lists  []*List
	forms  []*Form
}

// New creates a simulated engine answering with responder. A nil responder
// answers every request with an empty 200.
func New(responder Responder) *Engine {
	if responder == nil {
		responder = func(*Request) *Response {
			return &Response{Status: 200}
		}
	}
	return &Engine{
		responder: responder,
		Reject:    make(map[engine.Option]engine.Code),
		ReadChunk: DefaultReadChunk,
	}
}

// SetResponder replaces the responder.
func (e *Engine) SetResponder(r Responder) {
	e.mu.Lock()
	e.responder = r
	e.mu.Unlock()
}

func (e *Engine) GlobalInit(flags engine.GlobalFlags) engine.Code {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.globalInits++
	e.lastFlags = flags
	return engine.OK
}

func (e *Engine) GlobalCleanup() {
	e.mu.Lock()
	e.globalCleanups++
	e.mu.Unlock()
}

// GlobalCalls reports how often GlobalInit and GlobalCleanup ran and the
// flags of the last init.
func (e *Engine) GlobalCalls() (inits, cleanups int, flags engine.GlobalFlags) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.globalInits, e.globalCleanups, e.lastFlags
}

func (e *Engine) NewEasy() engine.Easy {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailEasyInit {
		return nil
	}
	h := &Easy{
		eng:      e,
		longs:    make(map[engine.Option]int64),
		strings:  make(map[engine.Option]string),
		pointers: make(map[engine.Option]unsafe.Pointer),
		lists:    make(map[engine.Option]*List),
		funcs:    make(map[engine.Option]engine.Trampoline),
		data:     make(map[engine.Option]uintptr),
	}
	e.easies = append(e.easies, h)
	engine.Logger().Debug("sim easy created", zap.Int("count", len(e.easies)))
	return h
}

func (e *Engine) NewList() engine.List {
	e.mu.Lock()
	defer e.mu.Unlock()
	l := &List{failAt: e.FailListAppend}
	e.lists = append(e.lists, l)
	return l
}

func (e *Engine) NewForm() engine.Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	f := &Form{failAt: e.FailFormPart}
	e.forms = append(e.forms, f)
	return f
}

// Easies returns every handle created so far.
func (e *Engine) Easies() []*Easy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Easy(nil), e.easies...)
}

// LastEasy returns the most recently created handle, or nil.
func (e *Engine) LastEasy() *Easy {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.easies) == 0 {
		return nil
	}
	return e.easies[len(e.easies)-1]
}

// Lists returns every list created so far.
func (e *Engine) Lists() []*List {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*List(nil), e.lists...)
}

// Forms returns every form created so far.
func (e *Engine) Forms() []*Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Form(nil), e.forms...)
}

// Leaks describes native objects that were never released.
func (e *Engine) Leaks() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for i, h := range e.easies {
		if !h.cleaned {
			out = append(out, fmt.Sprintf("easy #%d", i))
		}
	}
	for i, l := range e.lists {
		if l.frees == 0 {
			out = append(out, fmt.Sprintf("list #%d", i))
		}
	}
	for i, f := range e.forms {
		if f.frees == 0 {
			out = append(out, fmt.Sprintf("form #%d", i))
		}
	}
	return out
}

func (e *Engine) reject(opt engine.Option) engine.Code {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Reject[opt]
}

func (e *Engine) respond(req *Request) *Response {
	e.mu.Lock()
	r := e.responder
	e.mu.Unlock()
	resp := r(req)
	if resp == nil {
		resp = &Response{Status: 200}
	}
	return resp
}

func (e *Engine) readChunk() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ReadChunk <= 0 {
		return DefaultReadChunk
	}
	return e.ReadChunk
}

// goString copies the NUL-terminated string at p.
func goString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}

var _ engine.Engine = (*Engine)(nil)
