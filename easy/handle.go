package easy

import (
	"go.uber.org/zap"

	"github.com/wippyai/curl-bridge/engine"
	"github.com/wippyai/curl-bridge/errors"
	"github.com/wippyai/curl-bridge/resource"
)

// Handle is one transfer handle plus its resource bookkeeping.
type Handle struct {
	eng        engine.Engine
	easy       engine.Easy
	reg        *resource.Registry
	form       engine.Form
	closed     bool
	performing bool
}

// New creates a handle on eng.
func New(eng engine.Engine) (*Handle, error) {
	if eng == nil {
		return nil, errors.NilPointer(errors.PhaseInit, "engine.Engine")
	}
	e := eng.NewEasy()
	if e == nil {
		return nil, errors.InitFailed("engine refused to create an easy handle", nil)
	}
	Logger().Debug("handle created")
	return &Handle{
		eng:  eng,
		easy: e,
		reg:  resource.NewRegistry(resource.Global()),
	}, nil
}

// Close releases the engine handle and everything registered against it.
// Closing a nil or already closed handle does nothing.
func (h *Handle) Close() error {
	if h == nil || h.closed {
		return nil
	}
	if h.performing {
		return errors.Busy(errors.PhaseHandle, "Close")
	}

	h.easy.Cleanup()
	h.reg.Drain()
	if h.form != nil {
		h.form.Free()
		h.form = nil
	}
	h.closed = true
	Logger().Debug("handle closed")
	return nil
}

// Closed reports whether Close has run.
func (h *Handle) Closed() bool {
	return h == nil || h.closed
}

// Registry exposes the handle's resource bookkeeping, mainly for observers.
func (h *Handle) Registry() *resource.Registry {
	return h.reg
}

// Subscribe adds an observer for registry drain events.
func (h *Handle) Subscribe(o resource.Observer) {
	h.reg.Subscribe(o)
}

// Perform runs the transfer on the calling goroutine. Callbacks are invoked
// from inside this call.
func (h *Handle) Perform() error {
	if err := h.usable(errors.PhasePerform, "Perform"); err != nil {
		return err
	}
	h.performing = true
	defer func() { h.performing = false }()

	code := h.easy.Perform()
	if code != engine.OK {
		Logger().Debug("perform failed", zap.Int("code", int(code)))
		return errors.Rejected(errors.PhasePerform, "", code)
	}
	return nil
}

// InfoLong reads a long-valued transfer info.
func (h *Handle) InfoLong(info engine.Info) (int64, error) {
	if err := h.usable(errors.PhaseHandle, "InfoLong"); err != nil {
		return 0, err
	}
	v, code := h.easy.GetinfoLong(info)
	if code != engine.OK {
		return 0, errors.Rejected(errors.PhaseHandle, "", code)
	}
	return v, nil
}

// ResponseCode returns the last HTTP status received.
func (h *Handle) ResponseCode() (int, error) {
	v, err := h.InfoLong(engine.InfoResponseCode)
	return int(v), err
}

func (h *Handle) usable(phase errors.Phase, what string) error {
	if h == nil {
		return errors.NilPointer(phase, "*easy.Handle")
	}
	if h.closed {
		return errors.Closed(phase, "handle")
	}
	if h.performing {
		return errors.Busy(phase, what)
	}
	return nil
}

// GlobalFlags re-exports the engine's init flags.
type GlobalFlags = engine.GlobalFlags

const (
	GlobalNothing = engine.GlobalNothing
	GlobalSSL     = engine.GlobalSSL
	GlobalWin32   = engine.GlobalWin32
	GlobalAll     = engine.GlobalAll
	GlobalDefault = engine.GlobalDefault
)

// GlobalInit runs the engine's process-wide init. It is not reference
// counted: call it once before creating handles.
func GlobalInit(eng engine.Engine, flags GlobalFlags) error {
	if eng == nil {
		return errors.NilPointer(errors.PhaseInit, "engine.Engine")
	}
	if code := eng.GlobalInit(flags); code != engine.OK {
		return errors.InitFailed("global init", code)
	}
	return nil
}

// GlobalCleanup runs the engine's process-wide cleanup. Call it only after
// every handle is closed.
func GlobalCleanup(eng engine.Engine) {
	if eng != nil {
		eng.GlobalCleanup()
	}
}
