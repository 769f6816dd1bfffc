package main

import (
	"bytes"
	"fmt"

	"github.com/wippyai/curl-bridge/engine/sim"
)

// newSimEngine backs --simulate: every request is answered with a
// plain-text dump of what would have been sent.
func newSimEngine() *sim.Engine {
	return sim.New(func(req *sim.Request) *sim.Response {
		return &sim.Response{
			Status:  200,
			Headers: []string{"Content-Type: text/plain"},
			Body:    [][]byte{echo(req)},
		}
	})
}

func echo(req *sim.Request) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s %s\n", req.Method, req.URL)
	for _, h := range req.Headers {
		fmt.Fprintf(&b, "%s\n", h)
	}
	if len(req.Body) > 0 {
		fmt.Fprintf(&b, "\n%s\n", req.Body)
	}
	for _, p := range req.Parts {
		fmt.Fprintf(&b, "\n--part %s", p.Name)
		if p.Filename != "" {
			fmt.Fprintf(&b, " filename=%s", p.Filename)
		}
		if p.HasType {
			fmt.Fprintf(&b, " type=%s", p.ContentType)
		}
		fmt.Fprintf(&b, "\n%s\n", p.Content)
	}
	return b.Bytes()
}
