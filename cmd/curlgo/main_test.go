package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/curl-bridge/httpx"
)

func TestParseFlags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		o, err := parseFlags([]string{"http://example.test/"})
		require.NoError(t, err)
		assert.Equal(t, "http://example.test/", o.url)
		assert.Equal(t, "GET", o.method)
		assert.Equal(t, httpx.DefaultMaxRedirects, o.maxRedirects)
		assert.False(t, o.noFollow)
	})

	t.Run("data implies POST", func(t *testing.T) {
		o, err := parseFlags([]string{"-d", "a=1", "-d", "b=2", "http://example.test/"})
		require.NoError(t, err)
		assert.Equal(t, "POST", o.method)
		assert.Equal(t, []string{"a=1", "b=2"}, o.data)
	})

	t.Run("all flags", func(t *testing.T) {
		o, err := parseFlags([]string{
			"-X", "post",
			"-H", "Accept: text/plain",
			"-H", "X-Trace: 1",
			"-F", "name=value",
			"--timeout", "5s",
			"--connect-timeout", "1s",
			"--max-redirs", "7",
			"--no-follow",
			"--proxy", "proxy.test:3128",
			"--simulate", "-i", "-v",
			"http://example.test/",
		})
		require.NoError(t, err)
		assert.Equal(t, "POST", o.method)
		assert.Equal(t, []string{"Accept: text/plain", "X-Trace: 1"}, o.headers)
		assert.Equal(t, []string{"name=value"}, o.form)
		assert.Equal(t, 5*time.Second, o.timeout)
		assert.Equal(t, time.Second, o.connectTimeout)
		assert.Equal(t, 7, o.maxRedirects)
		assert.True(t, o.noFollow)
		assert.Equal(t, "proxy.test:3128", o.proxy)
		assert.True(t, o.simulate)
		assert.True(t, o.interactive)
		assert.True(t, o.verbose)
	})

	t.Run("errors", func(t *testing.T) {
		for _, args := range [][]string{
			{},
			{"a", "b"},
			{"-X", "DELETE", "http://example.test/"},
			{"-X", "GET", "-d", "a=1", "http://example.test/"},
			{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "http://example.test/"},
		} {
			_, err := parseFlags(args)
			assert.Error(t, err, "%v", args)
		}
	})
}

func TestParseHeader(t *testing.T) {
	name, value, err := parseHeader("Accept:  text/html ")
	require.NoError(t, err)
	assert.Equal(t, "Accept", name)
	assert.Equal(t, "text/html", value)

	name, value, err = parseHeader("X-Empty:")
	require.NoError(t, err)
	assert.Equal(t, "X-Empty", name)
	assert.Empty(t, value)

	_, _, err = parseHeader("no colon")
	assert.Error(t, err)
	_, _, err = parseHeader(": value")
	assert.Error(t, err)
}

func TestParseFormField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o600))

	tests := []struct {
		name  string
		in    string
		want  formField
		error bool
	}{
		{name: "value", in: "title=hello", want: formField{name: "title", content: []byte("hello")}},
		{name: "value with equals", in: "q=a=b", want: formField{name: "q", content: []byte("a=b")}},
		{name: "file", in: "upload=@" + path, want: formField{name: "upload", filename: "report.csv", content: []byte("a,b\n1,2\n")}},
		{name: "file with type", in: "upload=@" + path + ";type=text/csv", want: formField{name: "upload", filename: "report.csv", contentType: "text/csv", content: []byte("a,b\n1,2\n")}},
		{name: "missing file", in: "upload=@" + filepath.Join(dir, "nope"), error: true},
		{name: "no equals", in: "title", error: true},
		{name: "empty name", in: "=x", error: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFormField(tt.in)
			if tt.error {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseProxy(t *testing.T) {
	host, port, err := parseProxy("proxy.test:3128")
	require.NoError(t, err)
	assert.Equal(t, "proxy.test", host)
	assert.Equal(t, 3128, port)

	host, port, err = parseProxy("http://10.0.0.1:8080")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", host)
	assert.Equal(t, 8080, port)

	for _, s := range []string{"proxy.test", "proxy.test:http", "proxy.test:0", "proxy.test:70000"} {
		_, _, err := parseProxy(s)
		assert.Error(t, err, s)
	}
}

func runSimulated(t *testing.T, args ...string) string {
	t.Helper()
	o, err := parseFlags(append([]string{"--simulate"}, args...))
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, &out))
	return out.String()
}

func TestRun_Get(t *testing.T) {
	out := runSimulated(t, "-H", "Accept: text/plain", "-A", "curlgo-test", "http://example.test/path")
	assert.Contains(t, out, "GET http://example.test/path\n")
	assert.Contains(t, out, "User-Agent: curlgo-test\n")
	assert.Contains(t, out, "Accept: text/plain\n")
}

func TestRun_PostParams(t *testing.T) {
	out := runSimulated(t, "-d", "b=2", "-d", "a=1", "-d", "b=3", "http://example.test/submit")
	assert.Contains(t, out, "POST http://example.test/submit\n")
	assert.Contains(t, out, "a=1&b%5B%5D=2&b%5B%5D=3")
}

func TestRun_Multipart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("file body"), 0o600))

	out := runSimulated(t, "-F", "title=hello", "-F", "doc=@"+path+";type=text/plain", "http://example.test/upload")
	assert.Contains(t, out, "POST http://example.test/upload\n")
	assert.Contains(t, out, "--part title")
	assert.Contains(t, out, "--part doc filename=note.txt type=text/plain\nfile body\n")
}

func TestRun_DuplicateMultipartField(t *testing.T) {
	o, err := parseFlags([]string{"--simulate", "-F", "a=1", "-F", "a=2", "http://example.test/"})
	require.NoError(t, err)
	assert.Error(t, run(context.Background(), o, &bytes.Buffer{}))
}

func TestRun_CacheDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	out := runSimulated(t, "--cache-dir", dir, "http://example.test/img.png")
	assert.Contains(t, out, "GET http://example.test/img.png\n")

	_, err := os.Stat(dir)
	assert.NoError(t, err)
}

func TestRun_Canceled(t *testing.T) {
	o, err := parseFlags([]string{"--simulate", "http://example.test/"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, run(ctx, o, &bytes.Buffer{}))
}
