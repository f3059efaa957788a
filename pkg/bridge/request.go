package bridge

import (
	"io"
	"net/http"
	"sort"
	"strings"
)

// HeaderField is one request header occurrence. Repeats are kept as
// separate fields in arrival order.
type HeaderField struct {
	Name  string
	Value string
}

// Request describes one inbound request independent of its transport.
type Request struct {
	// Method is the request method, for example "GET".
	Method string

	// Target is the raw request target: path plus optional query, still
	// percent encoded.
	Target string

	// Proto is the protocol version, for example "HTTP/1.1".
	Proto string

	// RemoteAddr is the peer address, with or without a port.
	RemoteAddr string

	// Headers are the request headers.
	Headers []HeaderField

	// Body is the request body, nil for bodyless requests.
	Body io.Reader
}

// FromHTTP adapts an *http.Request. Header names are emitted in sorted
// order so the synthesized environment is deterministic; the Host value
// rejoins the header list the way it appears on the wire.
func FromHTTP(r *http.Request) *Request {
	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	headers := make([]HeaderField, 0, len(r.Header)+1)
	if r.Host != "" {
		headers = append(headers, HeaderField{Name: "Host", Value: r.Host})
	}
	for _, name := range names {
		for _, value := range r.Header[name] {
			headers = append(headers, HeaderField{Name: name, Value: value})
		}
	}

	return &Request{
		Method:     r.Method,
		Target:     r.URL.RequestURI(),
		Proto:      r.Proto,
		RemoteAddr: r.RemoteAddr,
		Headers:    headers,
		Body:       r.Body,
	}
}

// headerGet returns the first occurrence of name, compared case
// insensitively.
func headerGet(headers []HeaderField, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
