package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/curl-bridge/cache"
	"github.com/wippyai/curl-bridge/easy"
	"github.com/wippyai/curl-bridge/engine"
	"github.com/wippyai/curl-bridge/httpx"
	"github.com/wippyai/curl-bridge/marshal"
	"github.com/wippyai/curl-bridge/resource"
)

type options struct {
	url            string
	method         string
	headers        []string
	data           []string
	form           []string
	userAgent      string
	timeout        time.Duration
	connectTimeout time.Duration
	maxRedirects   int
	noFollow       bool
	proxy          string
	config         string
	cacheDir       string
	simulate       bool
	interactive    bool
	verbose        bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err == pflag.ErrHelp {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: curlgo [flags] URL")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (*options, error) {
	o := &options{}
	fs := pflag.NewFlagSet("curlgo", pflag.ContinueOnError)
	fs.StringVarP(&o.method, "request", "X", "", "Request method (GET or POST)")
	fs.StringArrayVarP(&o.headers, "header", "H", nil, "Request header \"Name: value\" (repeatable)")
	fs.StringArrayVarP(&o.data, "data", "d", nil, "Form parameter name=value (repeatable)")
	fs.StringArrayVarP(&o.form, "form", "F", nil, "Multipart field name=value or name=@path[;type=ct] (repeatable)")
	fs.StringVarP(&o.userAgent, "user-agent", "A", "", "User-Agent header")
	fs.DurationVar(&o.timeout, "timeout", 0, "Total transfer timeout")
	fs.DurationVar(&o.connectTimeout, "connect-timeout", 0, "Connect timeout")
	fs.IntVar(&o.maxRedirects, "max-redirs", httpx.DefaultMaxRedirects, "Maximum redirects to follow")
	fs.BoolVar(&o.noFollow, "no-follow", false, "Do not follow redirects")
	fs.StringVar(&o.proxy, "proxy", "", "Proxy host:port")
	fs.StringVar(&o.config, "config", "", "YAML request profile")
	fs.StringVar(&o.cacheDir, "cache-dir", "", "Serve and store GET responses in this directory")
	fs.BoolVar(&o.simulate, "simulate", false, "Use the in-process engine that echoes the request")
	fs.BoolVarP(&o.interactive, "interactive", "i", false, "Show progress while the transfer runs")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one URL, got %d", fs.NArg())
	}
	o.url = fs.Arg(0)

	if o.config != "" {
		p, err := loadProfile(o.config)
		if err != nil {
			return nil, err
		}
		p.apply(o, fs.Changed)
	}

	o.method = strings.ToUpper(o.method)
	switch o.method {
	case "":
		o.method = "GET"
		if len(o.data) > 0 || len(o.form) > 0 {
			o.method = "POST"
		}
	case "GET", "POST":
	default:
		return nil, fmt.Errorf("unsupported method %q", o.method)
	}
	if o.method == "GET" && (len(o.data) > 0 || len(o.form) > 0) {
		return nil, fmt.Errorf("-d and -F need POST")
	}
	return o, nil
}

func setupLogging(verbose bool) (*zap.Logger, error) {
	log := zap.NewNop()
	if verbose {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}
	resource.SetLogger(log)
	marshal.SetLogger(log)
	engine.SetLogger(log)
	easy.SetLogger(log)
	httpx.SetLogger(log)
	cache.SetLogger(log)
	return log, nil
}

func run(ctx context.Context, o *options, stdout io.Writer) error {
	log, err := setupLogging(o.verbose)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	eng, err := newEngine(o.simulate)
	if err != nil {
		return err
	}
	if err := easy.GlobalInit(eng, easy.GlobalDefault); err != nil {
		return fmt.Errorf("global init: %w", err)
	}
	defer easy.GlobalCleanup(eng)

	clientOpts, err := o.clientOptions()
	if err != nil {
		return err
	}
	client := httpx.NewClient(eng, clientOpts...)

	var c *cache.Cache
	if o.cacheDir != "" {
		if c, err = cache.Open(o.cacheDir); err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer func() {
			if err := c.Close(); err != nil {
				log.Warn("cache close failed", zap.Error(err))
			}
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fetch := func() fetchResult {
		return o.fetch(ctx, client, c)
	}

	var res fetchResult
	if f, ok := stdout.(*os.File); ok && o.interactive && term.IsTerminal(int(f.Fd())) {
		if res, err = runProgress(o.url, cancel, fetch); err != nil {
			return err
		}
	} else {
		res = fetch()
	}
	if res.err != nil {
		return res.err
	}

	log.Debug("transfer done",
		zap.String("url", o.url),
		zap.Int("status", res.status),
		zap.Bool("cached", res.cached),
		zap.Int("bytes", len(res.body)))
	_, err = stdout.Write(res.body)
	return err
}

type fetchResult struct {
	body   []byte
	status int
	cached bool
	err    error
}

func (o *options) fetch(ctx context.Context, client *httpx.Client, c *cache.Cache) fetchResult {
	if c != nil && o.method == "GET" && len(o.headers) == 0 {
		f, err := cache.NewDownloader(client, c).Fetch(ctx, o.url)
		if err != nil {
			return fetchResult{err: err}
		}
		return fetchResult{body: f.Body, status: f.Status, cached: f.Cached}
	}

	req, err := o.request(client)
	if err != nil {
		return fetchResult{err: err}
	}
	res, err := req.Do(ctx)
	if err != nil {
		return fetchResult{err: err}
	}
	body, err := res.BodyString()
	if err != nil {
		return fetchResult{err: err}
	}
	return fetchResult{body: []byte(body), status: res.Status}
}

func (o *options) clientOptions() ([]httpx.Option, error) {
	opts := []httpx.Option{
		httpx.WithFollowLocation(!o.noFollow),
		httpx.WithMaxRedirects(o.maxRedirects),
		httpx.WithVerbose(o.verbose),
		httpx.WithContentTypeDetection(true),
	}
	if o.userAgent != "" {
		opts = append(opts, httpx.WithUserAgent(o.userAgent))
	}
	if o.timeout > 0 {
		opts = append(opts, httpx.WithTimeout(o.timeout))
	}
	if o.connectTimeout > 0 {
		opts = append(opts, httpx.WithConnectTimeout(o.connectTimeout))
	}
	if o.proxy != "" {
		host, port, err := parseProxy(o.proxy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, httpx.WithProxy(host, port))
	}
	return opts, nil
}

func (o *options) request(client *httpx.Client) (*httpx.Request, error) {
	var req *httpx.Request
	if o.method == "POST" {
		req = client.Post(o.url)
	} else {
		req = client.Get(o.url)
	}

	for _, h := range o.headers {
		name, value, err := parseHeader(h)
		if err != nil {
			return nil, err
		}
		req.AddHeader(name, value)
	}

	params := make(map[string][]string)
	for _, d := range o.data {
		name, value, _ := strings.Cut(d, "=")
		params[name] = append(params[name], value)
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if vals := params[name]; len(vals) == 1 {
			req.AddParam(name, vals[0])
		} else {
			req.AddParams(name, vals)
		}
	}

	for _, f := range o.form {
		p, err := parseFormField(f)
		if err != nil {
			return nil, err
		}
		req.AddMultipart(p.name, p.filename, p.contentType, p.content)
	}
	return req, nil
}

func parseHeader(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid header %q, want \"Name: value\"", s)
	}
	return name, strings.TrimSpace(value), nil
}

type formField struct {
	name        string
	filename    string
	contentType string
	content     []byte
}

// parseFormField accepts name=value and name=@path[;type=content-type].
func parseFormField(s string) (formField, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return formField{}, fmt.Errorf("invalid form field %q, want name=value", s)
	}
	if !strings.HasPrefix(value, "@") {
		return formField{name: name, content: []byte(value)}, nil
	}

	path, ct, _ := strings.Cut(value[1:], ";type=")
	data, err := os.ReadFile(path)
	if err != nil {
		return formField{}, fmt.Errorf("form field %s: %w", name, err)
	}
	return formField{
		name:        name,
		filename:    filepath.Base(path),
		contentType: ct,
		content:     data,
	}, nil
}

func parseProxy(s string) (string, int, error) {
	s = strings.TrimPrefix(s, "http://")
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return "", 0, fmt.Errorf("proxy %q: %w", s, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("proxy %q: invalid port", s)
	}
	return host, port, nil
}
