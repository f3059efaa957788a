package bridge

import (
	"context"
	"net"
	"net/url"
	"strings"
)

// Synthesizer builds the gateway environment for one request.
type Synthesizer struct {
	// ServerName is the SERVER_NAME value. Default: "tilegate".
	ServerName string

	// ServerPort is the SERVER_PORT value, as text.
	ServerPort string

	// Software is the SERVER_SOFTWARE value. Default: "tilegate".
	Software string

	// Prefix is stripped from the decoded path before it becomes
	// PATH_INFO and reported as SCRIPT_NAME.
	Prefix string

	// Resolver fills REMOTE_HOST from reverse DNS. nil disables the
	// lookup.
	Resolver *HostResolver
}

// Environ synthesizes the environment map. Well known keys are assigned
// first; the remaining headers fold into HTTP_<NAME> keys with hyphens
// turned to underscores, repeats comma joined and collisions with
// already assigned keys dropped.
func (s *Synthesizer) Environ(ctx context.Context, req *Request) map[string]string {
	rawPath, query, _ := strings.Cut(req.Target, "?")
	pathInfo := rawPath
	if decoded, err := url.PathUnescape(rawPath); err == nil {
		pathInfo = decoded
	}
	if s.Prefix != "" {
		pathInfo = strings.TrimPrefix(pathInfo, s.Prefix)
	}

	addr := remoteIP(req.RemoteAddr)
	proto := req.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	serverName := s.ServerName
	if serverName == "" {
		serverName = "tilegate"
	}
	software := s.Software
	if software == "" {
		software = "tilegate"
	}
	contentType := headerGet(req.Headers, "Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	env := map[string]string{
		"GATEWAY_INTERFACE": "CGI/1.1",
		"SERVER_NAME":       serverName,
		"SERVER_PORT":       s.ServerPort,
		"SERVER_PROTOCOL":   proto,
		"SERVER_SOFTWARE":   software,
		"REQUEST_METHOD":    req.Method,
		"SCRIPT_NAME":       s.Prefix,
		"PATH_INFO":         pathInfo,
		"QUERY_STRING":      query,
		"REMOTE_ADDR":       addr,
		"CONTENT_TYPE":      contentType,
		"CONTENT_LENGTH":    headerGet(req.Headers, "Content-Length"),
	}

	if s.Resolver != nil {
		if host := s.Resolver.ReverseName(ctx, addr); host != "" && host != addr {
			env["REMOTE_HOST"] = host
		}
	}

	for _, h := range req.Headers {
		name := strings.ToUpper(strings.ReplaceAll(h.Name, "-", "_"))
		if _, taken := env[name]; taken {
			continue
		}
		key := "HTTP_" + name
		value := strings.TrimSpace(h.Value)
		if prev, ok := env[key]; ok {
			env[key] = prev + "," + value
		} else {
			env[key] = value
		}
	}
	return env
}

// remoteIP strips the port from an address when one is present.
func remoteIP(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
