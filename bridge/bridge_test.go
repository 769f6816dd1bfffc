package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	curlbridge "github.com/wippyai/curl-bridge"
	"github.com/wippyai/curl-bridge/easy"
	"github.com/wippyai/curl-bridge/engine"
	"github.com/wippyai/curl-bridge/engine/sim"
	"github.com/wippyai/curl-bridge/errors"
)

func requireKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseHandle, Kind: kind}, "got %v", err)
}

func TestBridge_Transfer(t *testing.T) {
	eng := sim.New(func(req *sim.Request) *sim.Response {
		return &sim.Response{Status: 200, Body: [][]byte{[]byte("ok:" + string(req.Body))}}
	})
	b := New(eng)
	require.NoError(t, b.GlobalInit(engine.GlobalDefault))
	defer b.GlobalCleanup()

	h, err := b.CreateHandle()
	require.NoError(t, err)
	require.NotZero(t, h)

	var body []byte
	require.NoError(t, b.SetOption(h, easy.KindObjectPointer, engine.OptURL, "http://example.test/"))
	require.NoError(t, b.SetOption(h, easy.KindObjectPointer, engine.OptPostFields, "x=1"))
	require.NoError(t, b.SetCallbackOption(h, engine.OptWriteFunction, curlbridge.WriteFunc(func(p []byte) int {
		body = append(body, p...)
		return len(p)
	})))
	require.NoError(t, b.Perform(h))
	assert.Equal(t, "ok:x=1", string(body))

	require.NoError(t, b.DestroyHandle(h))
	assert.Zero(t, b.Len())
	assert.Empty(t, eng.Leaks())

	inits, cleanups, _ := eng.GlobalCalls()
	assert.Equal(t, 1, inits)
	assert.Zero(t, cleanups)
}

func TestBridge_Form(t *testing.T) {
	eng := sim.New(nil)
	b := New(eng)
	h, err := b.CreateHandle()
	require.NoError(t, err)
	defer b.DestroyHandle(h)

	require.NoError(t, b.SetForm(h, []curlbridge.Field{curlbridge.NewPart("f", "", "", []byte("v"))}))
	require.NotNil(t, eng.LastEasy().Form())
}

func TestBridge_ZeroHandle(t *testing.T) {
	b := New(sim.New(nil))

	assert.NoError(t, b.DestroyHandle(0))
	requireKind(t, b.Perform(0), errors.KindNilPointer)
	requireKind(t, b.SetOption(0, easy.KindInteger, engine.OptTimeout, 1), errors.KindNilPointer)
	requireKind(t, b.SetForm(0, nil), errors.KindNilPointer)
}

func TestBridge_StaleHandle(t *testing.T) {
	b := New(sim.New(nil))

	h, err := b.CreateHandle()
	require.NoError(t, err)
	require.NoError(t, b.DestroyHandle(h))

	requireKind(t, b.Perform(h), errors.KindStaleHandle)
	requireKind(t, b.DestroyHandle(h), errors.KindStaleHandle)

	// Slot reuse must not revive the old token.
	h2, err := b.CreateHandle()
	require.NoError(t, err)
	assert.NotEqual(t, h, h2)
	requireKind(t, b.Perform(h), errors.KindStaleHandle)
	assert.NoError(t, b.Perform(h2))
}

func TestBridge_CreateFailure(t *testing.T) {
	eng := sim.New(nil)
	eng.FailEasyInit = true
	b := New(eng)

	h, err := b.CreateHandle()
	assert.Zero(t, h)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseInit, Kind: errors.KindInitFailed})
}

func TestBridge_Close(t *testing.T) {
	eng := sim.New(nil)
	b := New(eng)

	for i := 0; i < 3; i++ {
		h, err := b.CreateHandle()
		require.NoError(t, err)
		require.NoError(t, b.SetOption(h, easy.KindObjectPointerList, engine.OptHTTPHeader, []string{"A: 1"}))
	}
	require.Equal(t, 3, b.Len())

	require.NoError(t, b.Close())
	assert.Empty(t, eng.Leaks())

	_, err := b.CreateHandle()
	requireKind(t, err, errors.KindClosed)
	assert.Len(t, eng.Leaks(), 0, "handle created after Close is released again")
}

func TestBridge_CloseCollectsErrors(t *testing.T) {
	eng := sim.New(func(*sim.Request) *sim.Response {
		return &sim.Response{Status: 200, Body: [][]byte{[]byte("x")}}
	})
	b := New(eng)
	h, err := b.CreateHandle()
	require.NoError(t, err)

	var closeErr error
	require.NoError(t, b.SetCallbackOption(h, engine.OptWriteFunction, func(p []byte) int {
		closeErr = b.Close()
		return len(p)
	}))
	require.NoError(t, b.Perform(h))

	require.Error(t, closeErr)
	errs := multierr.Errors(closeErr)
	require.NotEmpty(t, errs)
	assert.ErrorIs(t, errs[0], &errors.Error{Phase: errors.PhaseHandle, Kind: errors.KindBusy})

	assert.Equal(t, 1, b.Len(), "failed Close keeps the bridge usable")
	require.NoError(t, b.Close())
	assert.Empty(t, eng.Leaks())
}
