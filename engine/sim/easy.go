package sim

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/curl-bridge/engine"
)

// Easy is a simulated transfer handle.
type Easy struct {
	eng *Engine

	longs    map[engine.Option]int64
	strings  map[engine.Option]string
	pointers map[engine.Option]unsafe.Pointer
	lists    map[engine.Option]*List
	funcs    map[engine.Option]engine.Trampoline
	data     map[engine.Option]uintptr
	form     *Form

	performs int
	status   int64
	cleaned  bool
	lastReq  *Request
}

func (h *Easy) SetoptLong(opt engine.Option, v int64) engine.Code {
	if code := h.eng.reject(opt); code != engine.OK {
		return code
	}
	h.longs[opt] = v
	return engine.OK
}

func (h *Easy) SetoptPointer(opt engine.Option, p unsafe.Pointer) engine.Code {
	if code := h.eng.reject(opt); code != engine.OK {
		return code
	}
	h.pointers[opt] = p
	if opt != engine.OptPostFields {
		h.strings[opt] = goString(p)
	}
	return engine.OK
}

func (h *Easy) SetoptList(opt engine.Option, l engine.List) engine.Code {
	if code := h.eng.reject(opt); code != engine.OK {
		return code
	}
	sl, ok := l.(*List)
	if !ok && l != nil {
		return engine.BadFunctionArg
	}
	h.lists[opt] = sl
	return engine.OK
}

func (h *Easy) SetoptFunction(opt engine.Option, t engine.Trampoline) engine.Code {
	if code := h.eng.reject(opt); code != engine.OK {
		return code
	}
	h.funcs[opt] = t
	return engine.OK
}

func (h *Easy) SetoptData(opt engine.Option, data uintptr) engine.Code {
	if code := h.eng.reject(opt); code != engine.OK {
		return code
	}
	h.data[opt] = data
	return engine.OK
}

func (h *Easy) SetoptForm(f engine.Form) engine.Code {
	if code := h.eng.reject(engine.OptHTTPPost); code != engine.OK {
		return code
	}
	if f == nil {
		h.form = nil
		return engine.OK
	}
	sf, ok := f.(*Form)
	if !ok {
		return engine.BadFunctionArg
	}
	h.form = sf
	return engine.OK
}

func (h *Easy) Perform() engine.Code {
	h.performs++
	req := h.request()
	h.lastReq = req

	if code := h.upload(req); code != engine.OK {
		return code
	}

	resp := h.eng.respond(req)
	h.status = int64(resp.Status)

	if resp.Continue {
		if code := h.header("HTTP/1.1 100 Continue\r\n"); code != engine.OK {
			return code
		}
		if code := h.header("\r\n"); code != engine.OK {
			return code
		}
	}

	reason := resp.Reason
	if reason == "" {
		reason = "OK"
	}
	if code := h.header(fmt.Sprintf("HTTP/1.1 %d %s\r\n", resp.Status, reason)); code != engine.OK {
		return code
	}
	for _, line := range resp.Headers {
		if code := h.header(line + "\r\n"); code != engine.OK {
			return code
		}
	}
	if code := h.header("\r\n"); code != engine.OK {
		return code
	}

	for _, chunk := range resp.Body {
		if code := h.push(engine.OptWriteFunction, engine.OptWriteData, chunk); code != engine.OK {
			return code
		}
	}

	engine.Logger().Debug("sim perform",
		zap.String("url", req.URL),
		zap.Int("status", resp.Status),
		zap.Int("chunks", len(resp.Body)))
	return resp.Code
}

func (h *Easy) GetinfoLong(info engine.Info) (int64, engine.Code) {
	if info != engine.InfoResponseCode {
		return 0, engine.UnknownOption
	}
	return h.status, engine.OK
}

func (h *Easy) Cleanup() {
	h.cleaned = true
}

// Cleaned reports whether Cleanup ran.
func (h *Easy) Cleaned() bool { return h.cleaned }

// Performs reports how many times Perform ran.
func (h *Easy) Performs() int { return h.performs }

// Long returns a long option as set.
func (h *Easy) Long(opt engine.Option) (int64, bool) {
	v, ok := h.longs[opt]
	return v, ok
}

// StringOpt returns a string option as copied at set time. OptPostFields is not
// copied; use PostFields.
func (h *Easy) StringOpt(opt engine.Option) (string, bool) {
	v, ok := h.strings[opt]
	return v, ok
}

// Pointer returns the raw pointer passed for a pointer option.
func (h *Easy) Pointer(opt engine.Option) unsafe.Pointer {
	return h.pointers[opt]
}

// PostFields reads the retained OptPostFields pointer now.
func (h *Easy) PostFields() string {
	return goString(h.pointers[engine.OptPostFields])
}

// List returns the list installed for opt.
func (h *Easy) List(opt engine.Option) *List {
	return h.lists[opt]
}

// Function reports whether a trampoline is installed for opt.
func (h *Easy) Function(opt engine.Option) (engine.Trampoline, bool) {
	t, ok := h.funcs[opt]
	return t, ok
}

// Data returns the userdata installed for opt.
func (h *Easy) Data(opt engine.Option) uintptr {
	return h.data[opt]
}

// Form returns the attached form, or nil.
func (h *Easy) Form() *Form {
	return h.form
}

// LastRequest returns the request built by the last Perform.
func (h *Easy) LastRequest() *Request {
	return h.lastReq
}

func (h *Easy) request() *Request {
	req := &Request{
		URL:     h.strings[engine.OptURL],
		Longs:   make(map[engine.Option]int64, len(h.longs)),
		Strings: make(map[engine.Option]string, len(h.strings)),
	}
	for k, v := range h.longs {
		req.Longs[k] = v
	}
	for k, v := range h.strings {
		req.Strings[k] = v
	}
	if l := h.lists[engine.OptHTTPHeader]; l != nil {
		req.Headers = append(req.Headers, l.items...)
	}
	if p := h.pointers[engine.OptPostFields]; p != nil {
		body := goString(p)
		if n, ok := h.longs[engine.OptPostFieldSize]; ok && n >= 0 {
			body = string(unsafe.Slice((*byte)(p), n))
		}
		req.Body = []byte(body)
		req.Strings[engine.OptPostFields] = body
	}
	if h.form != nil {
		for _, p := range h.form.parts {
			req.Parts = append(req.Parts, p.snapshot())
		}
	}

	switch {
	case h.strings[engine.OptCustomRequest] != "":
		req.Method = h.strings[engine.OptCustomRequest]
	case h.longs[engine.OptHTTPGet] != 0:
		req.Method = "GET"
	case h.longs[engine.OptUpload] != 0:
		req.Method = "PUT"
	case h.pointers[engine.OptPostFields] != nil || h.form != nil || h.longs[engine.OptPost] != 0:
		req.Method = "POST"
	default:
		req.Method = "GET"
	}
	return req
}

func (h *Easy) upload(req *Request) engine.Code {
	t, ok := h.funcs[engine.OptReadFunction]
	if !ok || t.Pull == nil {
		return engine.OK
	}
	if h.longs[engine.OptUpload] == 0 && h.longs[engine.OptPost] == 0 {
		return engine.OK
	}

	data := h.data[engine.OptReadData]
	buf := make([]byte, h.eng.readChunk())
	var body []byte
	for {
		n := t.Pull(data, unsafe.Pointer(&buf[0]), 1, uintptr(len(buf)))
		if n == engine.ReadAbort {
			return engine.AbortedByCallback
		}
		if n > uintptr(len(buf)) {
			return engine.ReadError
		}
		if n == 0 {
			break
		}
		body = append(body, buf[:n]...)
	}
	req.Body = body
	return engine.OK
}

func (h *Easy) header(line string) engine.Code {
	return h.push(engine.OptHeaderFunction, engine.OptHeaderData, []byte(line))
}

func (h *Easy) push(fn, slot engine.Option, chunk []byte) engine.Code {
	t, ok := h.funcs[fn]
	if !ok || t.Push == nil || len(chunk) == 0 {
		return engine.OK
	}
	n := t.Push(h.data[slot], unsafe.Pointer(&chunk[0]), 1, uintptr(len(chunk)))
	if n != uintptr(len(chunk)) {
		return engine.WriteError
	}
	return engine.OK
}

var _ engine.Easy = (*Easy)(nil)
