package easy

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	curlbridge "github.com/wippyai/curl-bridge"
	"github.com/wippyai/curl-bridge/engine"
	"github.com/wippyai/curl-bridge/errors"
	"github.com/wippyai/curl-bridge/marshal"
	"github.com/wippyai/curl-bridge/resource"
)

// Kind declares how an option value is handed to the engine.
type Kind int

const (
	KindInteger Kind = iota
	KindObjectPointer
	KindObjectPointerList
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindObjectPointer:
		return "object pointer"
	case KindObjectPointerList:
		return "object pointer list"
	case KindFunction:
		return "function"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// retainedByReference lists string options the engine does not copy.
var retainedByReference = map[engine.Option]bool{
	engine.OptPostFields: true,
}

// Setopt sets one option. value must match kind: an integer type or bool for
// KindInteger, a string for KindObjectPointer, a []string for
// KindObjectPointerList, and a curlbridge.WriteCallback or ReadCallback (or a
// plain func([]byte) int) for KindFunction.
func (h *Handle) Setopt(kind Kind, opt engine.Option, value any) error {
	if err := h.usable(errors.PhaseOption, "Setopt"); err != nil {
		return err
	}
	Logger().Debug("setopt", zap.Stringer("option", opt), zap.Stringer("kind", kind))

	switch kind {
	case KindInteger:
		v, ok := toInt64(value)
		if !ok {
			return errors.TypeMismatch(errors.PhaseOption, opt.String(), fmt.Sprintf("%T", value), "integer")
		}
		return h.check(opt, h.easy.SetoptLong(opt, v))
	case KindObjectPointer:
		s, ok := value.(string)
		if !ok {
			return errors.TypeMismatch(errors.PhaseOption, opt.String(), fmt.Sprintf("%T", value), "string")
		}
		return h.setString(opt, s)
	case KindObjectPointerList:
		items, ok := value.([]string)
		if !ok {
			return errors.TypeMismatch(errors.PhaseOption, opt.String(), fmt.Sprintf("%T", value), "[]string")
		}
		return h.setList(opt, items)
	case KindFunction:
		return h.setFunction(opt, value)
	}
	return errors.Unsupported(errors.PhaseOption, kind.String())
}

// SetLong sets an integer option.
func (h *Handle) SetLong(opt engine.Option, v int64) error {
	return h.Setopt(KindInteger, opt, v)
}

// SetBool sets an integer option to 1 or 0.
func (h *Handle) SetBool(opt engine.Option, v bool) error {
	return h.Setopt(KindInteger, opt, v)
}

// SetString sets a string option.
func (h *Handle) SetString(opt engine.Option, s string) error {
	return h.Setopt(KindObjectPointer, opt, s)
}

// SetStrings sets a string list option such as CURLOPT_HTTPHEADER.
func (h *Handle) SetStrings(opt engine.Option, items []string) error {
	return h.Setopt(KindObjectPointerList, opt, items)
}

// SetWriteFunction installs the response body callback.
func (h *Handle) SetWriteFunction(cb curlbridge.WriteCallback) error {
	return h.Setopt(KindFunction, engine.OptWriteFunction, cb)
}

// SetHeaderFunction installs the header line callback.
func (h *Handle) SetHeaderFunction(cb curlbridge.WriteCallback) error {
	return h.Setopt(KindFunction, engine.OptHeaderFunction, cb)
}

// SetReadFunction installs the request body callback.
func (h *Handle) SetReadFunction(cb curlbridge.ReadCallback) error {
	return h.Setopt(KindFunction, engine.OptReadFunction, cb)
}

func (h *Handle) check(opt engine.Option, code engine.Code) error {
	if code != engine.OK {
		return errors.Rejected(errors.PhaseOption, opt.String(), code)
	}
	return nil
}

func (h *Handle) setString(opt engine.Option, s string) error {
	pin, err := resource.PinText(s)
	if err != nil {
		return errors.New(errors.PhaseOption, errors.KindInvalidInput).
			Option(opt.String()).
			Cause(err).
			Detail("string cannot be passed to the engine").
			Build()
	}

	if !retainedByReference[opt] {
		code := h.easy.SetoptPointer(opt, pin.Pointer())
		pin.Unpin()
		return h.check(opt, code)
	}

	ref := h.reg.Table().Insert(resource.TypeText, pin.Bytes())
	if ref == 0 {
		pin.Unpin()
		return noSlot(errors.PhaseOption, opt.String())
	}
	if code := h.easy.SetoptPointer(opt, pin.Pointer()); code != engine.OK {
		h.reg.Table().Remove(ref)
		pin.Unpin()
		return h.check(opt, code)
	}
	h.reg.AddPinnedText(ref, pin)
	return nil
}

func (h *Handle) setList(opt engine.Option, items []string) error {
	list := h.eng.NewList()
	for i, s := range items {
		pin, err := resource.PinText(s)
		if err != nil {
			list.Free()
			return errors.New(errors.PhaseOption, errors.KindInvalidInput).
				Option(opt.String()).
				Path(strconv.Itoa(i)).
				Cause(err).
				Detail("list element cannot be passed to the engine").
				Build()
		}
		ok := list.Append(pin.Pointer())
		pin.Unpin()
		if !ok {
			list.Free()
			return errors.New(errors.PhaseOption, errors.KindRejected).
				Option(opt.String()).
				Path(strconv.Itoa(i)).
				Cause(engine.OutOfMemory).
				Build()
		}
	}

	if code := h.easy.SetoptList(opt, list); code != engine.OK {
		list.Free()
		return h.check(opt, code)
	}
	h.reg.AddOwned(list)
	return nil
}

func (h *Handle) setFunction(opt engine.Option, value any) error {
	dataOpt, ok := engine.DataOption(opt)
	if !ok {
		return h.check(opt, engine.UnknownOption)
	}

	var (
		cb         any
		trampoline engine.Trampoline
	)
	if opt == engine.OptReadFunction {
		r, ok := asReader(value)
		if !ok {
			return errors.TypeMismatch(errors.PhaseOption, opt.String(), fmt.Sprintf("%T", value), "curlbridge.ReadCallback")
		}
		cb, trampoline.Pull = r, marshal.Pull
	} else {
		w, ok := asWriter(value)
		if !ok {
			return errors.TypeMismatch(errors.PhaseOption, opt.String(), fmt.Sprintf("%T", value), "curlbridge.WriteCallback")
		}
		cb, trampoline.Push = w, marshal.Push
	}

	ref := h.reg.Table().Insert(resource.TypeCallback, cb)
	if ref == 0 {
		return noSlot(errors.PhaseOption, opt.String())
	}
	h.reg.AddRef(ref)

	if err := h.check(opt, h.easy.SetoptFunction(opt, trampoline)); err != nil {
		return err
	}
	return h.check(dataOpt, h.easy.SetoptData(dataOpt, uintptr(ref)))
}

// noSlot reports a value that could not get a reference table slot.
func noSlot(phase errors.Phase, option string) error {
	return errors.New(phase, errors.KindRejected).
		Option(option).
		Cause(resource.ErrFull).
		Detail("no free reference slot").
		Build()
}

func asWriter(v any) (curlbridge.WriteCallback, bool) {
	switch cb := v.(type) {
	case curlbridge.WriteCallback:
		return cb, cb != nil
	case func([]byte) int:
		return curlbridge.WriteFunc(cb), cb != nil
	}
	return nil, false
}

func asReader(v any) (curlbridge.ReadCallback, bool) {
	switch cb := v.(type) {
	case curlbridge.ReadCallback:
		return cb, cb != nil
	case func([]byte) int:
		return curlbridge.ReadFunc(cb), cb != nil
	}
	return nil, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
