//go:build !cgo

package main

import (
	"github.com/wippyai/curl-bridge/engine"
	"github.com/wippyai/curl-bridge/errors"
)

func newEngine(simulate bool) (engine.Engine, error) {
	if simulate {
		return newSimEngine(), nil
	}
	return nil, errors.Unsupported(errors.PhaseInit, "libcurl engine in a build without cgo, use --simulate")
}
