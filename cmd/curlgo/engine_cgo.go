//go:build cgo

package main

import (
	"go.uber.org/zap"

	"github.com/wippyai/curl-bridge/engine"
	"github.com/wippyai/curl-bridge/engine/curl"
)

func newEngine(simulate bool) (engine.Engine, error) {
	if simulate {
		return newSimEngine(), nil
	}
	engine.Logger().Debug("using libcurl", zap.String("version", curl.Version()))
	return curl.New(), nil
}
