package bridge

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/portolan-hq/tilegate/pkg/engine"
)

// HTTPResponder adapts an http.ResponseWriter to the engine's response
// contract.
type HTTPResponder struct {
	w       http.ResponseWriter
	started bool
}

// NewHTTPResponder wraps w.
func NewHTTPResponder(w http.ResponseWriter) *HTTPResponder {
	return &HTTPResponder{w: w}
}

// Start writes the status and headers. It must be called exactly once.
func (r *HTTPResponder) Start(status string, headers []engine.Header) (io.Writer, error) {
	if r.started {
		return nil, errors.New("response already started")
	}
	r.started = true

	h := r.w.Header()
	for _, hd := range headers {
		h.Add(headerText(hd.Name), headerText(hd.Value))
	}
	r.w.WriteHeader(statusCode(status))
	return r.w, nil
}

// WireResponder writes the raw status line, header block and body to a
// byte stream, for hosts that own the connection themselves. Date and
// Server headers are added when the application sets none.
type WireResponder struct {
	w        io.Writer
	software string
	now      func() time.Time
	started  bool
}

// NewWireResponder wraps w. software becomes the default Server header;
// empty selects "tilegate".
func NewWireResponder(w io.Writer, software string) *WireResponder {
	if software == "" {
		software = "tilegate"
	}
	return &WireResponder{w: w, software: software, now: time.Now}
}

// Start writes the status line and header block. It must be called
// exactly once; the returned writer streams the body.
func (r *WireResponder) Start(status string, headers []engine.Header) (io.Writer, error) {
	if r.started {
		return nil, errors.New("response already started")
	}
	r.started = true

	if _, err := fmt.Fprintf(r.w, "HTTP/1.1 %s\r\n", headerText(status)); err != nil {
		return nil, err
	}
	var haveDate, haveServer bool
	for _, hd := range headers {
		name := headerText(hd.Name)
		switch {
		case strings.EqualFold(name, "Date"):
			haveDate = true
		case strings.EqualFold(name, "Server"):
			haveServer = true
		}
		if _, err := fmt.Fprintf(r.w, "%s: %s\r\n", name, headerText(hd.Value)); err != nil {
			return nil, err
		}
	}
	if !haveDate {
		if _, err := fmt.Fprintf(r.w, "Date: %s\r\n", r.now().UTC().Format(http.TimeFormat)); err != nil {
			return nil, err
		}
	}
	if !haveServer {
		if _, err := fmt.Fprintf(r.w, "Server: %s\r\n", r.software); err != nil {
			return nil, err
		}
	}
	if _, err := io.WriteString(r.w, "\r\n"); err != nil {
		return nil, err
	}
	return r.w, nil
}

// statusCode extracts the numeric code from a "200 OK" style status
// string. Unparseable statuses degrade to 200.
func statusCode(status string) int {
	field, _, _ := strings.Cut(strings.TrimSpace(status), " ")
	if code, err := strconv.Atoi(field); err == nil && code >= 100 && code < 600 {
		return code
	}
	return 200
}

// headerText forces a value into single line plain text. Line breaks
// become spaces so a hostile value cannot smuggle extra header lines.
func headerText(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
