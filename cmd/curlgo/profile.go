package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// profile is a reusable set of request defaults loaded with --config.
// Flags given on the command line win over profile values.
type profile struct {
	UserAgent      string            `yaml:"user_agent"`
	Headers        map[string]string `yaml:"headers"`
	Timeout        time.Duration     `yaml:"timeout"`
	ConnectTimeout time.Duration     `yaml:"connect_timeout"`
	MaxRedirects   *int              `yaml:"max_redirects"`
	Follow         *bool             `yaml:"follow"`
	Proxy          string            `yaml:"proxy"`
	CacheDir       string            `yaml:"cache_dir"`
}

func loadProfile(path string) (*profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &p, nil
}

func (p *profile) apply(o *options, changed func(string) bool) {
	if p.UserAgent != "" && !changed("user-agent") {
		o.userAgent = p.UserAgent
	}
	if p.Timeout > 0 && !changed("timeout") {
		o.timeout = p.Timeout
	}
	if p.ConnectTimeout > 0 && !changed("connect-timeout") {
		o.connectTimeout = p.ConnectTimeout
	}
	if p.MaxRedirects != nil && !changed("max-redirs") {
		o.maxRedirects = *p.MaxRedirects
	}
	if p.Follow != nil && !changed("no-follow") {
		o.noFollow = !*p.Follow
	}
	if p.Proxy != "" && !changed("proxy") {
		o.proxy = p.Proxy
	}
	if p.CacheDir != "" && !changed("cache-dir") {
		o.cacheDir = p.CacheDir
	}

	// Profile headers go first so -H can add to them.
	names := make([]string, 0, len(p.Headers))
	for name := range p.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	headers := make([]string, 0, len(names)+len(o.headers))
	for _, name := range names {
		headers = append(headers, name+": "+p.Headers[name])
	}
	o.headers = append(headers, o.headers...)
}
