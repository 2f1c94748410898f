package offshore

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// connectEstablished is the canned CONNECT acknowledgment. No tunnel is
// set up behind it; the framing protocol has no channel for raw
// post-CONNECT bytes, so this response exists for peer compatibility.
var connectEstablished = []byte("HTTP/1.1 200 Connection Established\r\n\r\n")

// errorResponse synthesizes a complete HTTP error response to frame back
// in place of a destination response.
func errorResponse(code int, text string) []byte {
	body := fmt.Sprintf("<html><body><h1>%d %s</h1></body></html>", code, text)
	return []byte(fmt.Sprintf(
		"HTTP/1.1 %d %s\r\nContent-Type: text/html\r\nContent-Length: %d\r\n\r\n%s",
		code, text, len(body), body))
}

// requestLine is the parsed first line of a relayed request.
type requestLine struct {
	Method  string
	Target  string
	Version string
}

// parseRequestLine extracts and splits the request line from a serialized
// HTTP request.
func parseRequestLine(payload []byte) (requestLine, error) {
	text := string(payload)
	end := strings.Index(text, "\r\n")
	if end < 0 {
		end = len(text)
	}
	parts := strings.SplitN(text[:end], " ", 3)
	if len(parts) != 3 {
		return requestLine{}, fmt.Errorf("malformed request line %q", text[:end])
	}
	return requestLine{Method: parts[0], Target: parts[1], Version: parts[2]}, nil
}

// resolveTarget determines the destination host:port for a relayed
// request: from the absolute-form URL if the target has one, otherwise
// from the Host header in the serialized request. The default port is 80,
// or 443 when the absolute URL carries an https scheme.
func resolveTarget(target string, payload []byte) (string, error) {
	if strings.Contains(target, "://") {
		u, err := url.Parse(target)
		if err != nil {
			return "", fmt.Errorf("unparseable target URL %q: %w", target, err)
		}
		host := u.Hostname()
		if host == "" {
			return "", fmt.Errorf("target URL %q has no host", target)
		}
		port := u.Port()
		if port == "" {
			if u.Scheme == "https" {
				port = "443"
			} else {
				port = "80"
			}
		}
		return net.JoinHostPort(host, port), nil
	}

	host := hostHeader(payload)
	if host == "" {
		return "", fmt.Errorf("no host in target %q or Host header", target)
	}
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host, nil
	}
	return net.JoinHostPort(host, "80"), nil
}

// hostHeader finds the Host header value in a serialized request, or ""
// if none is present.
func hostHeader(payload []byte) string {
	text := string(payload)
	headerEnd := strings.Index(text, "\r\n\r\n")
	if headerEnd < 0 {
		headerEnd = len(text)
	}
	for _, line := range strings.Split(text[:headerEnd], "\r\n")[1:] {
		name, value, found := strings.Cut(line, ":")
		if found && strings.EqualFold(strings.TrimSpace(name), "host") {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
