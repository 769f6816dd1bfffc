//go:build cgo

package curl

// #cgo LDFLAGS: -lcurl
// #include <stdlib.h>
// #include "shim.h"
import "C"

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/curl-bridge/engine"
)

// Engine is the libcurl engine. It has no state of its own.
type Engine struct{}

// New returns the libcurl engine.
func New() *Engine {
	return &Engine{}
}

// Version returns the libcurl version string.
func Version() string {
	return C.GoString(C.curl_version())
}

func (*Engine) GlobalInit(flags engine.GlobalFlags) engine.Code {
	return engine.Code(C.curl_global_init(C.long(flags)))
}

func (*Engine) GlobalCleanup() {
	C.curl_global_cleanup()
}

func (*Engine) NewEasy() engine.Easy {
	h := C.curl_easy_init()
	if h == nil {
		engine.Logger().Warn("curl_easy_init returned NULL")
		return nil
	}
	return &Easy{h: h}
}

func (*Engine) NewList() engine.List {
	return &List{}
}

func (*Engine) NewForm() engine.Form {
	return &Form{}
}

// Easy wraps a CURL* handle.
type Easy struct {
	h unsafe.Pointer
}

func (e *Easy) SetoptLong(opt engine.Option, v int64) engine.Code {
	return engine.Code(C.curlbridge_setopt_long(e.h, C.CURLoption(opt), C.long(v)))
}

func (e *Easy) SetoptPointer(opt engine.Option, p unsafe.Pointer) engine.Code {
	return engine.Code(C.curlbridge_setopt_ptr(e.h, C.CURLoption(opt), p))
}

func (e *Easy) SetoptList(opt engine.Option, l engine.List) engine.Code {
	var head *C.struct_curl_slist
	if sl, ok := l.(*List); ok && sl != nil {
		head = sl.head
	}
	return engine.Code(C.curlbridge_setopt_slist(e.h, C.CURLoption(opt), head))
}

func (e *Easy) SetoptFunction(opt engine.Option, t engine.Trampoline) engine.Code {
	switch {
	case t.Push != nil:
		return engine.Code(C.curlbridge_setopt_push(e.h, C.CURLoption(opt)))
	case t.Pull != nil:
		return engine.Code(C.curlbridge_setopt_pull(e.h, C.CURLoption(opt)))
	}
	return engine.BadFunctionArg
}

func (e *Easy) SetoptData(opt engine.Option, data uintptr) engine.Code {
	return engine.Code(C.curlbridge_setopt_data(e.h, C.CURLoption(opt), C.uintptr_t(data)))
}

func (e *Easy) SetoptForm(f engine.Form) engine.Code {
	var first *C.struct_curl_httppost
	if cf, ok := f.(*Form); ok && cf != nil {
		first = cf.first
	}
	return engine.Code(C.curlbridge_setopt_form(e.h, first))
}

func (e *Easy) Perform() engine.Code {
	code := engine.Code(C.curl_easy_perform(e.h))
	if code != engine.OK {
		engine.Logger().Debug("curl_easy_perform failed", zap.Int("code", int(code)))
	}
	return code
}

func (e *Easy) GetinfoLong(info engine.Info) (int64, engine.Code) {
	var out C.long
	code := engine.Code(C.curlbridge_getinfo_long(e.h, C.CURLINFO(info), &out))
	return int64(out), code
}

func (e *Easy) Cleanup() {
	if e.h != nil {
		C.curl_easy_cleanup(e.h)
		e.h = nil
	}
}

// List wraps a curl_slist.
type List struct {
	head *C.struct_curl_slist
	n    int
}

func (l *List) Append(s unsafe.Pointer) bool {
	next := C.curl_slist_append(l.head, (*C.char)(s))
	if next == nil {
		return false
	}
	l.head = next
	l.n++
	return true
}

func (l *List) Len() int { return l.n }

func (l *List) Free() {
	if l.head != nil {
		C.curl_slist_free_all(l.head)
		l.head = nil
		l.n = 0
	}
}

// Form wraps a curl_httppost chain.
type Form struct {
	first *C.struct_curl_httppost
	last  *C.struct_curl_httppost
}

func (f *Form) AddBuffer(p engine.FormPart) engine.FormCode {
	return engine.FormCode(C.curlbridge_formadd_buffer(&f.first, &f.last,
		(*C.char)(p.Name), (*C.char)(p.Filename),
		(*C.char)(p.Buffer), C.long(p.Length)))
}

func (f *Form) AddBufferWithType(p engine.FormPart) engine.FormCode {
	return engine.FormCode(C.curlbridge_formadd_buffer_type(&f.first, &f.last,
		(*C.char)(p.Name), (*C.char)(p.Filename), (*C.char)(p.ContentType),
		(*C.char)(p.Buffer), C.long(p.Length)))
}

func (f *Form) Free() {
	if f.first != nil {
		C.curl_formfree(f.first)
		f.first, f.last = nil, nil
	}
}

var (
	_ engine.Engine = (*Engine)(nil)
	_ engine.Easy   = (*Easy)(nil)
	_ engine.List   = (*List)(nil)
	_ engine.Form   = (*Form)(nil)
)
