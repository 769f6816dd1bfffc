package httpx

import (
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/wippyai/curl-bridge/easy"
	"github.com/wippyai/curl-bridge/engine"
)

// DefaultUserAgent is sent unless WithUserAgent or a User-Agent header
// overrides it.
const DefaultUserAgent = "curl-bridge/0.1"

// DefaultMaxRedirects bounds redirect following.
const DefaultMaxRedirects = 3

// Client holds transfer defaults shared by its requests.
type Client struct {
	eng            engine.Engine
	userAgent      string
	connectTimeout time.Duration
	timeout        time.Duration
	follow         bool
	maxRedirects   int
	proxyHost      string
	proxyPort      int
	systemProxy    bool
	ipResolve      int
	detectType     bool
	verbose        bool
	customize      []CustomizeFunc
}

// CustomizeFunc sets extra options on a request's handle. It runs after the
// request's own options and before Perform; an error aborts the request.
type CustomizeFunc func(h *easy.Handle) error

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithConnectTimeout limits the connect phase.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Client) { c.connectTimeout = d }
}

// WithTimeout limits the whole transfer.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithFollowLocation toggles redirect following. It is on by default.
func WithFollowLocation(follow bool) Option {
	return func(c *Client) { c.follow = follow }
}

// WithMaxRedirects sets the redirect limit; 0 refuses redirects and -1 means
// no limit.
func WithMaxRedirects(n int) Option {
	return func(c *Client) { c.maxRedirects = n }
}

// WithProxy sets an explicit HTTP proxy. It takes precedence over the system
// proxy.
func WithProxy(host string, port int) Option {
	return func(c *Client) {
		c.proxyHost = host
		c.proxyPort = port
	}
}

// WithSystemProxy toggles reading HTTP_PROXY / http_proxy. It is on by default.
func WithSystemProxy(use bool) Option {
	return func(c *Client) { c.systemProxy = use }
}

// WithIPResolve restricts name resolution, see engine.IPResolveV4 and
// engine.IPResolveV6.
func WithIPResolve(mode int) Option {
	return func(c *Client) { c.ipResolve = mode }
}

// WithContentTypeDetection sniffs a content type for multipart parts that
// were added without one.
func WithContentTypeDetection(detect bool) Option {
	return func(c *Client) { c.detectType = detect }
}

// WithVerbose turns on the engine's own transfer tracing.
func WithVerbose(v bool) Option {
	return func(c *Client) { c.verbose = v }
}

// WithCustomize adds a hook run on every request's handle.
func WithCustomize(fn CustomizeFunc) Option {
	return func(c *Client) {
		if fn != nil {
			c.customize = append(c.customize, fn)
		}
	}
}

// NewClient creates a client on eng.
func NewClient(eng engine.Engine, opts ...Option) *Client {
	c := &Client{
		eng:          eng,
		userAgent:    DefaultUserAgent,
		follow:       true,
		maxRedirects: DefaultMaxRedirects,
		systemProxy:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRequest starts a request.
func (c *Client) NewRequest() *Request {
	return &Request{
		client:  c,
		headers: make(map[string]string),
	}
}

// Get is shorthand for NewRequest().Get(rawURL).
func (c *Client) Get(rawURL string) *Request {
	return c.NewRequest().Get(rawURL)
}

// Post is shorthand for NewRequest().Post(rawURL).
func (c *Client) Post(rawURL string) *Request {
	return c.NewRequest().Post(rawURL)
}

// proxy returns the proxy to use, if any.
func (c *Client) proxy() (string, int, bool) {
	if c.proxyHost != "" {
		return c.proxyHost, c.proxyPort, true
	}
	if !c.systemProxy {
		return "", 0, false
	}
	raw := os.Getenv("HTTP_PROXY")
	if raw == "" {
		raw = os.Getenv("http_proxy")
	}
	if raw == "" {
		return "", 0, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		// host:port without a scheme
		u, err = url.Parse("http://" + raw)
		if err != nil {
			Logger().Sugar().Warnf("ignoring malformed proxy %q", raw)
			return "", 0, false
		}
	}
	port, _ := strconv.Atoi(u.Port())
	return u.Hostname(), port, true
}
