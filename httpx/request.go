package httpx

import (
	"bytes"
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	curlbridge "github.com/wippyai/curl-bridge"
	"github.com/wippyai/curl-bridge/easy"
	"github.com/wippyai/curl-bridge/engine"
	"github.com/wippyai/curl-bridge/errors"
)

type param struct {
	name   string
	values []string
	list   bool
}

// Request is a single HTTP request under construction. Builder methods record
// the first misuse and Do reports it.
type Request struct {
	client  *Client
	method  string
	url     string
	headers map[string]string
	params  []param
	parts   []*curlbridge.Part
	hooks   []CustomizeFunc
	err     error
}

// Get makes this a GET request for rawURL.
func (r *Request) Get(rawURL string) *Request {
	return r.setMethod("GET", rawURL)
}

// Post makes this a POST request for rawURL.
func (r *Request) Post(rawURL string) *Request {
	return r.setMethod("POST", rawURL)
}

func (r *Request) setMethod(method, rawURL string) *Request {
	if r.method != "" && r.method != method {
		r.fail(errors.InvalidInput(errors.PhaseHTTP, "a "+r.method+" url is already set"))
		return r
	}
	r.method = method
	r.url = rawURL
	return r
}

// AddHeader sets a request header. An empty value removes a header the
// engine would otherwise send.
func (r *Request) AddHeader(name, value string) *Request {
	if name == "" {
		r.fail(errors.InvalidInput(errors.PhaseHTTP, "header name is required"))
		return r
	}
	r.headers[name] = value
	return r
}

// AddParam adds a POST parameter.
func (r *Request) AddParam(name, value string) *Request {
	r.params = append(r.params, param{name: name, values: []string{value}})
	return r
}

// AddParams adds a list parameter, sent as name[] once per value.
func (r *Request) AddParams(name string, values []string) *Request {
	r.params = append(r.params, param{name: name, values: values, list: true})
	return r
}

// AddMultipart adds a multipart field. name and content are required;
// filename and contentType may be empty.
func (r *Request) AddMultipart(name, filename, contentType string, content []byte) *Request {
	if strings.TrimSpace(name) == "" {
		r.fail(errors.InvalidInput(errors.PhaseHTTP, "multipart name is required"))
		return r
	}
	if len(content) == 0 {
		r.fail(errors.InvalidInput(errors.PhaseHTTP, "multipart content is required"))
		return r
	}
	r.parts = append(r.parts, curlbridge.NewPart(name, filename, contentType, content))
	return r
}

// Customize adds a hook run on this request's handle after the client's
// hooks.
func (r *Request) Customize(fn CustomizeFunc) *Request {
	if fn != nil {
		r.hooks = append(r.hooks, fn)
	}
	return r
}

func (r *Request) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Do performs the request on the calling goroutine. A done ctx aborts the
// transfer at the next callback.
func (r *Request) Do(ctx context.Context) (*Result, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.url == "" {
		return nil, errors.InvalidInput(errors.PhaseHTTP, "no url set")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Canceled(errors.PhaseHTTP, err)
	}

	h, err := easy.New(r.client.eng)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			Logger().Warn("close handle", zap.Error(cerr))
		}
	}()

	hp := newHeaderParser()
	var body bytes.Buffer

	if err := r.configure(ctx, h, hp, &body); err != nil {
		return nil, err
	}

	log := Logger().With(zap.String("method", r.method), zap.String("url", r.url))
	log.Debug("perform")

	if err := h.Perform(); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, errors.Canceled(errors.PhaseHTTP, cerr)
		}
		log.Debug("perform failed", zap.Error(err))
		return nil, err
	}
	hp.flush()

	res := &Result{
		Status:     hp.status,
		StatusLine: hp.statusLine,
		Headers:    hp.header,
		Body:       body.Bytes(),
	}
	log.Debug("done", zap.Int("status", res.Status), zap.Int("bytes", len(res.Body)))
	return res, nil
}

func (r *Request) configure(ctx context.Context, h *easy.Handle, hp *headerParser, body *bytes.Buffer) error {
	c := r.client

	if err := h.SetString(engine.OptURL, r.url); err != nil {
		return err
	}
	if err := h.SetBool(engine.OptNoSignal, true); err != nil {
		return err
	}
	switch r.method {
	case "POST":
		if err := h.SetBool(engine.OptPost, true); err != nil {
			return err
		}
	default:
		if err := h.SetBool(engine.OptHTTPGet, true); err != nil {
			return err
		}
	}

	if err := h.SetStrings(engine.OptHTTPHeader, r.headerLines()); err != nil {
		return err
	}

	if err := h.SetHeaderFunction(curlbridge.WriteFunc(func(p []byte) int {
		if ctx.Err() != nil {
			return 0
		}
		return hp.Write(p)
	})); err != nil {
		return err
	}
	if err := h.SetWriteFunction(curlbridge.WriteFunc(func(p []byte) int {
		if ctx.Err() != nil {
			return 0
		}
		n, _ := body.Write(p)
		return n
	})); err != nil {
		return err
	}

	if r.method == "POST" {
		if err := r.setBody(h); err != nil {
			return err
		}
	}

	if err := h.SetBool(engine.OptFollowLocation, c.follow); err != nil {
		return err
	}
	if c.follow {
		if err := h.SetLong(engine.OptMaxRedirs, int64(c.maxRedirects)); err != nil {
			return err
		}
	}
	if c.connectTimeout > 0 {
		if err := h.SetLong(engine.OptConnectTimeoutMS, c.connectTimeout.Milliseconds()); err != nil {
			return err
		}
	}
	if c.timeout > 0 {
		if err := h.SetLong(engine.OptTimeoutMS, c.timeout.Milliseconds()); err != nil {
			return err
		}
	}
	if c.ipResolve != engine.IPResolveWhatever {
		if err := h.SetLong(engine.OptIPResolve, int64(c.ipResolve)); err != nil {
			return err
		}
	}
	if c.verbose {
		if err := h.SetBool(engine.OptVerbose, true); err != nil {
			return err
		}
	}
	if host, port, ok := c.proxy(); ok {
		Logger().Debug("using proxy", zap.String("host", host), zap.Int("port", port))
		if err := h.SetString(engine.OptProxy, host); err != nil {
			return err
		}
		if port > 0 {
			if err := h.SetLong(engine.OptProxyPort, int64(port)); err != nil {
				return err
			}
		}
	}

	for _, fn := range append(c.customize[:len(c.customize):len(c.customize)], r.hooks...) {
		if err := fn(h); err != nil {
			return err
		}
	}
	return nil
}

// headerLines renders headers in a stable order. The client's user agent is
// added unless a User-Agent header was set explicitly.
func (r *Request) headerLines() []string {
	names := make([]string, 0, len(r.headers)+1)
	hasUA := false
	for name := range r.headers {
		names = append(names, name)
		if strings.EqualFold(name, "User-Agent") {
			hasUA = true
		}
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names)+1)
	if !hasUA && r.client.userAgent != "" {
		lines = append(lines, "User-Agent: "+r.client.userAgent)
	}
	for _, name := range names {
		value := r.headers[name]
		if value == "" {
			lines = append(lines, name+":")
			continue
		}
		lines = append(lines, name+": "+value)
	}
	return lines
}

func (r *Request) setBody(h *easy.Handle) error {
	if len(r.parts) == 0 {
		encoded := r.encodeParams()
		if err := h.SetLong(engine.OptPostFieldSize, int64(len(encoded))); err != nil {
			return err
		}
		return h.SetString(engine.OptPostFields, encoded)
	}

	fields, err := r.multipartFields()
	if err != nil {
		return err
	}
	return h.SetForm(fields)
}

func (r *Request) encodeParams() string {
	var b strings.Builder
	for _, p := range r.params {
		name := p.name
		if p.list {
			name += "[]"
		}
		for _, v := range p.values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

func (r *Request) multipartFields() ([]curlbridge.Field, error) {
	seen := make(map[string]bool, len(r.params)+len(r.parts))
	fields := make([]curlbridge.Field, 0, len(r.params)+len(r.parts))

	for _, p := range r.params {
		if p.list || seen[p.name] {
			return nil, errors.Unsupported(errors.PhaseHTTP, "multipart form does not support array field "+p.name)
		}
		seen[p.name] = true
		fields = append(fields, curlbridge.NewPart(p.name, "", "", []byte(p.values[0])))
	}
	for _, part := range r.parts {
		if seen[part.FieldName] {
			return nil, errors.Unsupported(errors.PhaseHTTP, "multipart form does not support array field "+part.FieldName)
		}
		seen[part.FieldName] = true
		if part.FieldContentType == "" && r.client.detectType {
			cp := *part
			cp.FieldContentType = mimetype.Detect(part.Data).String()
			part = &cp
		}
		fields = append(fields, part)
	}
	return fields, nil
}
