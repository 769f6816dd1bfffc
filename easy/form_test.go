package easy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	curlbridge "github.com/wippyai/curl-bridge"
	"github.com/wippyai/curl-bridge/engine"
	"github.com/wippyai/curl-bridge/engine/sim"
	"github.com/wippyai/curl-bridge/errors"
	"github.com/wippyai/curl-bridge/resource"
)

func part(name, filename, contentType, content string) curlbridge.Field {
	return curlbridge.NewPart(name, filename, contentType, []byte(content))
}

func TestSelectVariant(t *testing.T) {
	tests := []struct {
		name  string
		field curlbridge.Field
		want  Variant
	}{
		{"name and content", part("a", "", "", "x"), VariantPlain},
		{"filename", part("a", "a.txt", "", "x"), VariantFilename},
		{"content type", part("a", "", "text/plain", "x"), VariantContentType},
		{"both", part("a", "a.txt", "text/plain", "x"), VariantFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectVariant(tt.field))
		})
	}
}

func TestSetForm_Variants(t *testing.T) {
	h, se := newHandle(t, sim.New(nil))

	require.NoError(t, h.SetForm([]curlbridge.Field{
		part("plain", "", "", "1"),
		part("named", "a.bin", "", "2"),
		part("typed", "", "application/json", "3"),
		part("full", "b.txt", "text/plain", "4"),
	}))

	form := se.Form()
	require.NotNil(t, form)
	parts := form.Parts()
	require.Len(t, parts, 4)

	want := []struct {
		name, filename, contentType string
		hasType                     bool
		content                     string
	}{
		{"plain", curlbridge.DefaultFilename, "", false, "1"},
		{"named", "a.bin", "", false, "2"},
		{"typed", curlbridge.DefaultFilename, "application/json", true, "3"},
		{"full", "b.txt", "text/plain", true, "4"},
	}
	for i, w := range want {
		assert.Equal(t, w.name, parts[i].Name)
		assert.Equal(t, w.filename, parts[i].Filename)
		assert.Equal(t, w.hasType, parts[i].HasType)
		assert.Equal(t, w.contentType, parts[i].ContentType)
		assert.Equal(t, w.content, string(parts[i].Content))
	}
}

func TestSetForm_ContentNotCopied(t *testing.T) {
	h, se := newHandle(t, sim.New(nil))

	content := []byte("lazy")
	require.NoError(t, h.SetForm([]curlbridge.Field{curlbridge.NewPart("f", "", "", content)}))

	p := se.Form().Parts()[0]
	assert.Same(t, &content[0], (*byte)(p.Buffer), "engine must see the caller buffer")

	content[0] = 'L'
	require.NoError(t, h.Perform())
	assert.Equal(t, "Lazy", string(se.LastRequest().Parts[0].Content))
	assert.Equal(t, "POST", se.LastRequest().Method)
}

func TestSetForm_ReplaceNotAppend(t *testing.T) {
	eng := sim.New(nil)
	h, err := New(eng)
	require.NoError(t, err)
	se := eng.LastEasy()
	pins := resource.LivePins()
	tableBefore := resource.Global().Len()

	require.NoError(t, h.SetForm([]curlbridge.Field{part("A", "", "", "a"), part("B", "", "", "b")}))
	require.NoError(t, h.SetForm([]curlbridge.Field{part("C", "", "", "c")}))

	forms := eng.Forms()
	require.Len(t, forms, 2)
	assert.Equal(t, 1, forms[0].Frees(), "first form freed on rebuild")
	assert.Zero(t, forms[1].Frees())

	require.Same(t, forms[1], se.Form())
	parts := se.Form().Parts()
	require.Len(t, parts, 1)
	assert.Equal(t, "C", parts[0].Name)

	assert.Equal(t, 3, h.Registry().Len(), "A and B content stays registered until teardown")
	assert.Equal(t, pins+3, resource.LivePins())

	require.NoError(t, h.Close())
	assert.Equal(t, 1, forms[1].Frees())
	assert.Zero(t, h.Registry().Len())
	assert.Equal(t, pins, resource.LivePins())
	assert.Equal(t, tableBefore, resource.Global().Len())
	assert.Empty(t, eng.Leaks())
}

func TestSetForm_EmptyIsNoop(t *testing.T) {
	eng := sim.New(nil)
	h, se := newHandle(t, eng)

	require.NoError(t, h.SetForm(nil))
	require.NoError(t, h.SetForm([]curlbridge.Field{}))
	assert.Empty(t, eng.Forms())
	assert.Nil(t, se.Form())

	require.NoError(t, h.SetForm([]curlbridge.Field{part("a", "", "", "x")}))
	require.NoError(t, h.SetForm(nil))
	assert.NotNil(t, se.Form(), "empty rebuild keeps the current form")
}

func TestSetForm_EngineFailure(t *testing.T) {
	eng := sim.New(nil)
	eng.FailFormPart = 2
	h, se := newHandle(t, eng)

	err := h.SetForm([]curlbridge.Field{part("a", "", "", "1"), part("b", "", "", "2"), part("c", "", "", "3")})
	requireKind(t, err, errors.PhaseForm, errors.KindRejected)

	var code engine.FormCode
	require.ErrorAs(t, err, &code)
	assert.Equal(t, engine.FormMemory, code)

	forms := eng.Forms()
	require.Len(t, forms, 1)
	assert.Equal(t, 1, forms[0].Frees(), "partial form freed")
	assert.Len(t, forms[0].Parts(), 1, "no fields added after the failure")
	assert.Nil(t, se.Form(), "nothing attached")
}

func TestSetForm_FailureAfterExistingForm(t *testing.T) {
	eng := sim.New(nil)
	h, se := newHandle(t, eng)

	require.NoError(t, h.SetForm([]curlbridge.Field{part("a", "", "", "1")}))
	err := h.SetForm([]curlbridge.Field{part("", "", "", "1")})
	requireKind(t, err, errors.PhaseForm, errors.KindInvalidInput)

	forms := eng.Forms()
	require.Len(t, forms, 2)
	assert.Equal(t, 1, forms[0].Frees())
	assert.Equal(t, 1, forms[1].Frees())
	assert.Nil(t, se.Form())
}

func TestSetForm_InvalidFields(t *testing.T) {
	tests := []struct {
		name  string
		field curlbridge.Field
		kind  errors.Kind
	}{
		{"missing name", part("", "", "", "x"), errors.KindInvalidInput},
		{"missing content", part("a", "", "", ""), errors.KindInvalidInput},
		{"nil field", nil, errors.KindNilPointer},
		{"nil part", (*curlbridge.Part)(nil), errors.KindNilPointer},
		{"NUL in name", part("a\x00", "", "", "x"), errors.KindInvalidInput},
		{"NUL in content type", part("a", "", "text/\x00", "x"), errors.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := sim.New(nil)
			h, se := newHandle(t, eng)

			err := h.SetForm([]curlbridge.Field{part("ok", "", "", "1"), tt.field})
			requireKind(t, err, errors.PhaseForm, tt.kind)

			var e *errors.Error
			require.ErrorAs(t, err, &e)
			require.GreaterOrEqual(t, len(e.Path), 2)
			assert.Equal(t, []string{"fields", "1"}, e.Path[:2])

			assert.Equal(t, 1, eng.Forms()[0].Frees())
			assert.Nil(t, se.Form())
		})
	}
}

func TestSetForm_DrainEvents(t *testing.T) {
	eng := sim.New(nil)
	h, err := New(eng)
	require.NoError(t, err)

	log := &eventLog{}
	h.Subscribe(log)
	require.NoError(t, h.SetForm([]curlbridge.Field{part("a", "", "", "1"), part("b", "", "", "2")}))
	require.NoError(t, h.Close())

	require.Len(t, log.events, 4)
	for i := 0; i < 4; i += 2 {
		assert.Equal(t, resource.EventUnpinned, log.events[i].Type)
		assert.Equal(t, resource.EventReleased, log.events[i+1].Type)
		assert.Equal(t, log.events[i].Ref, log.events[i+1].Ref)
	}
}
