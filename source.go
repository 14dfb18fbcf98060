package patchbind

import (
	"io"
	"sync"

	eng "github.com/reoring/patchbind/internal/engine"
	gojsonsrc "github.com/reoring/patchbind/source/gojson"
	jsonsrc "github.com/reoring/patchbind/source/json"
)

// TokenSource is the streaming JSON token interface body drivers produce.
type TokenSource = eng.TokenSource

// JSONDriver converts body bytes into a token stream via a pluggable SPI.
// The default implementation is backed by github.com/goccy/go-json and may be
// swapped with SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) TokenSource
	NewBytes(b []byte) TokenSource
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = goJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the go-json driver.
func UseDefaultJSONDriver() { SetJSONDriver(goJSONDriver{}) }

// CurrentJSONDriver returns the driver used when a Binder has none set.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

// GoJSONDriver returns the github.com/goccy/go-json driver.
func GoJSONDriver() JSONDriver { return goJSONDriver{} }

// StdJSONDriver returns the encoding/json driver. It reports byte offsets,
// which go-json does not.
func StdJSONDriver() JSONDriver { return stdJSONDriver{} }

type goJSONDriver struct{}

func (goJSONDriver) NewReader(r io.Reader) TokenSource { return gojsonsrc.NewReader(r) }
func (goJSONDriver) NewBytes(b []byte) TokenSource     { return gojsonsrc.NewBytes(b) }
func (goJSONDriver) Name() string                      { return "go-json" }

type stdJSONDriver struct{}

func (stdJSONDriver) NewReader(r io.Reader) TokenSource { return jsonsrc.NewReader(r) }
func (stdJSONDriver) NewBytes(b []byte) TokenSource     { return jsonsrc.NewBytes(b) }
func (stdJSONDriver) Name() string                      { return "encoding/json" }

func toEngineDup(s Severity) eng.DuplicatePolicy {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}
