package easy

import (
	"strconv"

	"go.uber.org/zap"

	curlbridge "github.com/wippyai/curl-bridge"
	"github.com/wippyai/curl-bridge/engine"
	"github.com/wippyai/curl-bridge/errors"
	"github.com/wippyai/curl-bridge/resource"
)

// Variant is the engine-level construction used for a form field.
type Variant int

const (
	// VariantPlain has name and content only.
	VariantPlain Variant = iota
	// VariantFilename adds a filename.
	VariantFilename
	// VariantContentType adds a content type.
	VariantContentType
	// VariantFull adds both.
	VariantFull
)

func (v Variant) String() string {
	switch v {
	case VariantPlain:
		return "plain"
	case VariantFilename:
		return "filename"
	case VariantContentType:
		return "content-type"
	case VariantFull:
		return "full"
	}
	return "variant(" + strconv.Itoa(int(v)) + ")"
}

// HasContentType reports whether the variant passes a content type.
func (v Variant) HasContentType() bool {
	return v == VariantContentType || v == VariantFull
}

// SelectVariant picks the field construction matching which optional
// attributes f carries.
func SelectVariant(f curlbridge.Field) Variant {
	hasName := f.Filename() != ""
	hasType := f.ContentType() != ""
	switch {
	case hasName && hasType:
		return VariantFull
	case hasName:
		return VariantFilename
	case hasType:
		return VariantContentType
	}
	return VariantPlain
}

// SetForm builds a multipart form from fields and attaches it, replacing any
// form set before. An empty field list leaves the handle untouched. If any
// field fails, the partial form is freed and nothing is attached.
func (h *Handle) SetForm(fields []curlbridge.Field) error {
	if err := h.usable(errors.PhaseForm, "SetForm"); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	if h.form != nil {
		h.easy.SetoptForm(nil)
		h.form.Free()
		h.form = nil
	}

	form := h.eng.NewForm()
	for i, f := range fields {
		if err := h.addField(form, i, f); err != nil {
			form.Free()
			return err
		}
	}

	if code := h.easy.SetoptForm(form); code != engine.OK {
		form.Free()
		return errors.Rejected(errors.PhaseForm, engine.OptHTTPPost.String(), code)
	}
	h.form = form
	Logger().Debug("form attached", zap.Int("fields", len(fields)))
	return nil
}

func (h *Handle) addField(form engine.Form, i int, f curlbridge.Field) error {
	idx := strconv.Itoa(i)
	if p, ok := f.(*curlbridge.Part); f == nil || ok && p == nil {
		return errors.New(errors.PhaseForm, errors.KindNilPointer).
			Path("fields", idx).
			GoType("curlbridge.Field").
			Build()
	}
	name := f.Name()
	if name == "" {
		return errors.New(errors.PhaseForm, errors.KindInvalidInput).
			Path("fields", idx, "name").
			Detail("name is required").
			Build()
	}
	content := f.Content()
	if len(content) == 0 {
		return errors.New(errors.PhaseForm, errors.KindInvalidInput).
			Path("fields", idx, "content").
			Detail("content is required").
			Build()
	}

	variant := SelectVariant(f)
	filename := f.Filename()
	if filename == "" {
		filename = curlbridge.DefaultFilename
	}

	// The engine copies these three; the content buffer it keeps.
	texts := make([]*resource.Pin, 0, 3)
	defer func() {
		for _, p := range texts {
			p.Unpin()
		}
	}()
	pinText := func(attr, s string) (*resource.Pin, error) {
		p, err := resource.PinText(s)
		if err != nil {
			return nil, errors.New(errors.PhaseForm, errors.KindInvalidInput).
				Path("fields", idx, attr).
				Cause(err).
				Build()
		}
		texts = append(texts, p)
		return p, nil
	}

	namePin, err := pinText("name", name)
	if err != nil {
		return err
	}
	filePin, err := pinText("filename", filename)
	if err != nil {
		return err
	}
	part := engine.FormPart{
		Name:     namePin.Pointer(),
		Filename: filePin.Pointer(),
	}
	if variant.HasContentType() {
		typePin, err := pinText("content_type", f.ContentType())
		if err != nil {
			return err
		}
		part.ContentType = typePin.Pointer()
	}

	ref := h.reg.Table().Insert(resource.TypeBytes, content)
	if ref == 0 {
		return noSlot(errors.PhaseForm, name)
	}
	body := resource.PinBytes(content)
	h.reg.AddPinnedBinary(ref, body)
	part.Buffer = body.Pointer()
	part.Length = body.Len()

	var code engine.FormCode
	if variant.HasContentType() {
		code = form.AddBufferWithType(part)
	} else {
		code = form.AddBuffer(part)
	}
	if code != engine.FormOK {
		return errors.New(errors.PhaseForm, errors.KindRejected).
			Path("fields", idx).
			Option(name).
			Cause(code).
			Detail("%s field rejected", variant).
			Build()
	}
	return nil
}
