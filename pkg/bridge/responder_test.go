package bridge

import (
	"bytes"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/portolan-hq/tilegate/pkg/engine"
)

func TestHTTPResponderStart(t *testing.T) {
	rec := httptest.NewRecorder()
	r := NewHTTPResponder(rec)

	w, err := r.Start("404 Not Found", []engine.Header{
		{Name: "Content-Type", Value: "text/plain"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	io.WriteString(w, "not found\n")

	if rec.Code != 404 {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/plain" {
		t.Errorf("expected text/plain, got %q", got)
	}
	if got := rec.Body.String(); got != "not found\n" {
		t.Errorf("expected body to pass through, got %q", got)
	}

	if _, err := r.Start("200 OK", nil); err == nil {
		t.Error("expected an error on a second Start")
	}
}

func TestWireResponderWritesHeaderBlock(t *testing.T) {
	var buf bytes.Buffer
	r := NewWireResponder(&buf, "tilegate/1.2.3")
	r.now = func() time.Time { return time.Date(2026, 8, 22, 10, 30, 0, 0, time.UTC) }

	w, err := r.Start("200 OK", []engine.Header{
		{Name: "Content-Type", Value: "image/png"},
		{Name: "Content-Length", Value: "4"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Write([]byte{1, 2, 3, 4})

	out := buf.String()
	if !strings.HasPrefix(out, "HTTP/1.1 200 OK\r\nContent-Type: image/png\r\nContent-Length: 4\r\n") {
		t.Errorf("unexpected header block start: %q", out)
	}
	if !strings.Contains(out, "Date: Sat, 22 Aug 2026 10:30:00 GMT\r\n") {
		t.Errorf("expected a Date header, got %q", out)
	}
	if !strings.Contains(out, "Server: tilegate/1.2.3\r\n") {
		t.Errorf("expected a Server header, got %q", out)
	}
	head, body, found := strings.Cut(out, "\r\n\r\n")
	if !found {
		t.Fatalf("expected a blank line terminating the headers, got %q", out)
	}
	if body != "\x01\x02\x03\x04" {
		t.Errorf("expected the body after the blank line, got %q", body)
	}
	if strings.Count(head, "\r\n") != 4 {
		t.Errorf("expected status line plus 4 headers, got %q", head)
	}
}

func TestWireResponderKeepsApplicationServerHeader(t *testing.T) {
	var buf bytes.Buffer
	r := NewWireResponder(&buf, "")
	if _, err := r.Start("200 OK", []engine.Header{{Name: "Server", Value: "upstream/9"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Count(buf.String(), "Server:"); got != 1 {
		t.Errorf("expected exactly one Server header, got %d in %q", got, buf.String())
	}
	if !strings.Contains(buf.String(), "Server: upstream/9\r\n") {
		t.Errorf("expected the application's value to win, got %q", buf.String())
	}
}

func TestHeaderTextFlattensLineBreaks(t *testing.T) {
	got := headerText("a\r\nSet-Cookie: x\nb")
	if strings.ContainsAny(got, "\r\n") {
		t.Errorf("expected line breaks removed, got %q", got)
	}
}

func TestStatusCode(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"200 OK", 200},
		{"404 Not Found", 404},
		{"500 Internal Server Error", 500},
		{"  301 Moved Permanently", 301},
		{"banana", 200},
		{"", 200},
	}
	for _, tc := range cases {
		if got := statusCode(tc.in); got != tc.want {
			t.Errorf("statusCode(%q): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}
