package bridge

import (
	"go.uber.org/multierr"

	curlbridge "github.com/wippyai/curl-bridge"
	"github.com/wippyai/curl-bridge/easy"
	"github.com/wippyai/curl-bridge/engine"
	"github.com/wippyai/curl-bridge/errors"
	"github.com/wippyai/curl-bridge/resource"
)

// Handle identifies a transfer handle owned by a Bridge.
type Handle uint64

// Bridge owns a set of transfer handles on one engine.
type Bridge struct {
	eng     engine.Engine
	handles *resource.Table
}

// New creates a bridge over eng.
func New(eng engine.Engine) *Bridge {
	return &Bridge{
		eng:     eng,
		handles: resource.NewTable(),
	}
}

// Engine returns the engine handles are created on.
func (b *Bridge) Engine() engine.Engine {
	return b.eng
}

// GlobalInit runs the engine's process-wide init.
func (b *Bridge) GlobalInit(flags engine.GlobalFlags) error {
	return easy.GlobalInit(b.eng, flags)
}

// GlobalCleanup runs the engine's process-wide cleanup.
func (b *Bridge) GlobalCleanup() {
	easy.GlobalCleanup(b.eng)
}

// CreateHandle creates a transfer handle. On failure the returned Handle is 0.
func (b *Bridge) CreateHandle() (Handle, error) {
	h, err := easy.New(b.eng)
	if err != nil {
		return 0, err
	}
	ref := b.handles.Insert(resource.TypeHandle, h)
	if ref == 0 {
		_ = h.Close()
		return 0, errors.Closed(errors.PhaseHandle, "bridge")
	}
	return Handle(ref), nil
}

// DestroyHandle closes the handle and releases everything it retained.
// Destroying the zero Handle does nothing.
func (b *Bridge) DestroyHandle(h Handle) error {
	if h == 0 {
		return nil
	}
	eh, err := b.Get(h)
	if err != nil {
		return err
	}
	if err := eh.Close(); err != nil {
		return err
	}
	b.handles.Remove(resource.Ref(h))
	return nil
}

// SetOption sets one option on h.
func (b *Bridge) SetOption(h Handle, kind easy.Kind, opt engine.Option, value any) error {
	eh, err := b.Get(h)
	if err != nil {
		return err
	}
	return eh.Setopt(kind, opt, value)
}

// SetCallbackOption installs a write, header or read callback on h.
func (b *Bridge) SetCallbackOption(h Handle, opt engine.Option, cb any) error {
	return b.SetOption(h, easy.KindFunction, opt, cb)
}

// SetForm replaces the multipart form of h.
func (b *Bridge) SetForm(h Handle, fields []curlbridge.Field) error {
	eh, err := b.Get(h)
	if err != nil {
		return err
	}
	return eh.SetForm(fields)
}

// Perform runs the transfer configured on h.
func (b *Bridge) Perform(h Handle) error {
	eh, err := b.Get(h)
	if err != nil {
		return err
	}
	return eh.Perform()
}

// Get resolves h to its underlying handle.
func (b *Bridge) Get(h Handle) (*easy.Handle, error) {
	if h == 0 {
		return nil, errors.NilPointer(errors.PhaseHandle, "bridge.Handle")
	}
	v, ok := b.handles.GetTyped(resource.Ref(h), resource.TypeHandle)
	if !ok {
		return nil, errors.StaleHandle(uint64(h))
	}
	return v.(*easy.Handle), nil
}

// Len returns the number of live handles.
func (b *Bridge) Len() int {
	return b.handles.Len()
}

// Close destroys every live handle. The bridge cannot be used afterwards
// unless a handle failed to close, in which case Close may be called again.
func (b *Bridge) Close() error {
	var live []Handle
	b.handles.Each(func(ref resource.Ref, _ uint32, _ any) bool {
		live = append(live, Handle(ref))
		return true
	})

	var err error
	for _, h := range live {
		err = multierr.Append(err, b.DestroyHandle(h))
	}
	if err != nil {
		return err
	}
	return b.handles.Close()
}
