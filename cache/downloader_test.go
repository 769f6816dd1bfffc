package cache

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/curl-bridge/engine/sim"
	"github.com/wippyai/curl-bridge/errors"
	"github.com/wippyai/curl-bridge/httpx"
)

type origin struct {
	requests []*sim.Request
	respond  func(req *sim.Request) *sim.Response
}

func (o *origin) handler(req *sim.Request) *sim.Response {
	o.requests = append(o.requests, req)
	return o.respond(req)
}

func header(req *sim.Request, name string) string {
	prefix := name + ": "
	for _, h := range req.Headers {
		if len(h) > len(prefix) && h[:len(prefix)] == prefix {
			return h[len(prefix):]
		}
	}
	return ""
}

func newDownloader(t *testing.T, o *origin, clk *clock) (*Downloader, *Cache) {
	t.Helper()
	eng := sim.New(o.handler)
	c := openTest(t, t.TempDir(), clk)
	client := httpx.NewClient(eng, httpx.WithSystemProxy(false))
	return NewDownloader(client, c), c
}

func TestFetch_CachesWithMaxAge(t *testing.T) {
	clk := newClock()
	o := &origin{respond: func(*sim.Request) *sim.Response {
		return &sim.Response{
			Status:  200,
			Headers: []string{"Cache-Control: public, max-age=60", "Expires: " + clk.t.Add(-time.Hour).Format(http.TimeFormat)},
			Body:    [][]byte{[]byte("image-bytes")},
		}
	}}
	d, c := newDownloader(t, o, clk)
	url := "http://cdn.test/a.png"

	f, err := d.Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.False(t, f.Cached)
	assert.Equal(t, "image-bytes", string(f.Body))
	assert.Equal(t, 1, c.Len(), "max-age wins over a past Expires")

	f, err = d.Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.True(t, f.Cached)
	assert.Equal(t, "image-bytes", string(f.Body))
	assert.Len(t, o.requests, 1)

	clk.advance(2 * time.Minute)
	f, err = d.Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.False(t, f.Cached, "expired without Last-Modified is downloaded again")
	assert.Len(t, o.requests, 2)
}

func TestFetch_ExpiresHeader(t *testing.T) {
	clk := newClock()
	o := &origin{respond: func(*sim.Request) *sim.Response {
		return &sim.Response{
			Status:  200,
			Headers: []string{"Expires: " + clk.t.Add(time.Hour).Format(http.TimeFormat)},
			Body:    [][]byte{[]byte("x")},
		}
	}}
	d, c := newDownloader(t, o, clk)

	_, err := d.Fetch(context.Background(), "http://cdn.test/e")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestFetch_NotCacheable(t *testing.T) {
	clk := newClock()
	o := &origin{respond: func(*sim.Request) *sim.Response {
		return &sim.Response{Status: 200, Body: [][]byte{[]byte("x")}}
	}}
	d, c := newDownloader(t, o, clk)

	_, err := d.Fetch(context.Background(), "http://cdn.test/n")
	require.NoError(t, err)
	_, err = d.Fetch(context.Background(), "http://cdn.test/n")
	require.NoError(t, err)
	assert.Zero(t, c.Len())
	assert.Len(t, o.requests, 2)
}

func TestFetch_RevalidatesStale(t *testing.T) {
	clk := newClock()
	lastModified := clk.t.Add(-24 * time.Hour)
	notModified := false
	o := &origin{respond: func(req *sim.Request) *sim.Response {
		if notModified {
			return &sim.Response{Status: 304, Reason: "Not Modified"}
		}
		return &sim.Response{
			Status: 200,
			Headers: []string{
				"Cache-Control: max-age=10",
				"Last-Modified: " + lastModified.Format(http.TimeFormat),
			},
			Body: [][]byte{[]byte("v1")},
		}
	}}
	d, _ := newDownloader(t, o, clk)
	url := "http://cdn.test/r"

	_, err := d.Fetch(context.Background(), url)
	require.NoError(t, err)

	clk.advance(time.Minute)
	notModified = true
	f, err := d.Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.True(t, f.Cached)
	assert.Equal(t, "v1", string(f.Body))

	require.Len(t, o.requests, 2)
	assert.Equal(t, lastModified.Format(http.TimeFormat), header(o.requests[1], "If-Modified-Since"))
	assert.Empty(t, header(o.requests[0], "If-Modified-Since"))
}

func TestFetch_RevalidatedAndChanged(t *testing.T) {
	clk := newClock()
	lastModified := clk.t.Add(-time.Hour)
	body := "v1"
	o := &origin{respond: func(*sim.Request) *sim.Response {
		return &sim.Response{
			Status: 200,
			Headers: []string{
				"Cache-Control: max-age=10",
				"Last-Modified: " + lastModified.Format(http.TimeFormat),
			},
			Body: [][]byte{[]byte(body)},
		}
	}}
	d, _ := newDownloader(t, o, clk)
	url := "http://cdn.test/c"

	_, err := d.Fetch(context.Background(), url)
	require.NoError(t, err)

	clk.advance(time.Minute)
	body = "v2"
	f, err := d.Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.False(t, f.Cached)
	assert.Equal(t, "v2", string(f.Body))

	f, err = d.Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.True(t, f.Cached)
	assert.Equal(t, "v2", string(f.Body))
}

func TestFetch_ErrorStatus(t *testing.T) {
	clk := newClock()
	o := &origin{respond: func(*sim.Request) *sim.Response {
		return &sim.Response{Status: 404, Reason: "Not Found"}
	}}
	d, _ := newDownloader(t, o, clk)

	_, err := d.Fetch(context.Background(), "http://cdn.test/missing")
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseHTTP, Kind: errors.KindProtocol})
}

func TestFetch_NoCache(t *testing.T) {
	o := &origin{respond: func(*sim.Request) *sim.Response {
		return &sim.Response{Status: 200, Headers: []string{"Cache-Control: max-age=60"}, Body: [][]byte{[]byte("x")}}
	}}
	d := NewDownloader(httpx.NewClient(sim.New(o.handler), httpx.WithSystemProxy(false)), nil)

	f, err := d.Fetch(context.Background(), "http://cdn.test/x")
	require.NoError(t, err)
	assert.Equal(t, "x", string(f.Body))
	assert.False(t, f.Cached)
}
