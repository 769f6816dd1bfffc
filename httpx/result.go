package httpx

import (
	"bytes"
	"io"
	"net/textproto"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/wippyai/curl-bridge/errors"
)

// Result is a completed response.
type Result struct {
	Status     int
	StatusLine string
	Headers    textproto.MIMEHeader
	Body       []byte

	decoded *string
}

// Header returns the first value of a response header, matched without
// regard to case.
func (r *Result) Header(name string) string {
	return r.Headers.Get(name)
}

// BodyString returns the body as text, gunzipping it first when the response
// was sent with Content-Encoding: gzip.
func (r *Result) BodyString() (string, error) {
	if r.decoded != nil {
		return *r.decoded, nil
	}

	s := string(r.Body)
	if strings.EqualFold(strings.TrimSpace(r.Header("Content-Encoding")), "gzip") {
		Logger().Debug("decompressing gzip body")
		zr, err := gzip.NewReader(bytes.NewReader(r.Body))
		if err != nil {
			return "", errors.Wrap(errors.PhaseHTTP, errors.KindProtocol, err, "gzip header")
		}
		defer zr.Close()

		var out bytes.Buffer
		out.Grow(len(r.Body) * 3)
		if _, err := io.Copy(&out, zr); err != nil {
			return "", errors.Wrap(errors.PhaseHTTP, errors.KindProtocol, err, "gzip body")
		}
		s = out.String()
	}
	r.decoded = &s
	return s, nil
}
