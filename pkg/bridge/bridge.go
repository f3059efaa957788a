package bridge

import (
	"bytes"
	"context"
	"strings"

	"github.com/portolan-hq/tilegate/pkg/engine"
)

// ErrorLogger receives diagnostic output the engine produced while
// serving a request.
type ErrorLogger interface {
	Error(msg string, args ...any)
}

// Options configure New.
type Options struct {
	// Environ synthesizes the request environment.
	Environ Synthesizer

	// Log receives per request engine diagnostics. Required.
	Log ErrorLogger
}

// Bridge invokes the embedded application for inbound requests.
type Bridge struct {
	environ Synthesizer
	log     ErrorLogger
}

// New builds a bridge.
func New(opts Options) *Bridge {
	return &Bridge{environ: opts.Environ, log: opts.Log}
}

// Invoke synthesizes the environment for req and hands it to app
// together with the request body and resp. Diagnostic text the engine
// wrote during the call is logged at error severity tagged with the
// request path, whether or not the invocation itself failed; the engine
// reports some problems only through that stream while still producing
// a response. A nil app yields *NotReadyError.
func (b *Bridge) Invoke(ctx context.Context, app engine.Application, req *Request, resp engine.Responder) error {
	if app == nil {
		return &NotReadyError{}
	}

	env := b.environ.Environ(ctx, req)
	var capture bytes.Buffer
	call := &engine.Call{
		Env:       env,
		Body:      req.Body,
		Responder: resp,
		ErrLog:    &capture,
	}
	err := app.Invoke(ctx, call)
	if capture.Len() > 0 {
		b.log.Error("engine diagnostics",
			"path", env["PATH_INFO"],
			"output", strings.TrimRight(capture.String(), "\n"),
		)
	}
	return err
}
