// Package resource loads the static documents the engine depends on (the
// category dictionary, the glossary) from a file, a URL or the binary, and
// memoizes them in a caller-owned cache.
package resource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// DefaultFetchTimeout bounds URL sources that do not set their own timeout.
const DefaultFetchTimeout = 15 * time.Second

// Source produces the raw bytes of a document.
type Source interface {
	// Fetch returns the document contents.
	Fetch(ctx context.Context) ([]byte, error)
	// Key identifies the document for caching.
	Key() string
}

// FileSource reads a document from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Key() string { return "file:" + s.Path }

func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", s.Path, err)
	}
	return data, nil
}

// URLSource downloads a document over HTTP.
type URLSource struct {
	URL     string
	Timeout time.Duration
}

func (s URLSource) Key() string { return "url:" + s.URL }

func (s URLSource) Fetch(ctx context.Context) ([]byte, error) {
	return Download(ctx, s.URL, s.Timeout)
}

// EmbeddedSource reads a document compiled into the binary.
type EmbeddedSource struct {
	FS   fs.FS
	Name string
}

func (s EmbeddedSource) Key() string { return "embedded:" + s.Name }

func (s EmbeddedSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.FS, s.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded %q: %w", s.Name, err)
	}
	return data, nil
}

// ErrForbiddenAddress is returned by DownloadPublic for hosts that resolve to
// loopback, private, link-local or otherwise internal addresses.
var ErrForbiddenAddress = errors.New("address is not publicly routable")

// Download performs a GET with fiber's client agent and returns the body of
// a 2xx response. The context deadline, when sooner, replaces timeout.
// Redirects are not followed.
func Download(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	return download(ctx, url, timeout, nil)
}

// DownloadPublic is Download for URLs supplied by remote callers: the host is
// resolved at dial time and every connection to a non-public address is
// refused.
func DownloadPublic(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	return download(ctx, url, timeout, publicDialer(timeout))
}

func download(ctx context.Context, url string, timeout time.Duration, dial fasthttp.DialFunc) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	agent := fiber.Get(url).Timeout(timeout)
	if dial != nil && agent.HostClient != nil {
		agent.HostClient.Dial = dial
	}
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to fetch %q: %w", url, errs[0])
	}
	if code < http.StatusOK || code >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("failed to fetch %q: unexpected status %d", url, code)
	}
	return body, nil
}

// publicDialer resolves the host itself and connects only to public
// addresses, so a DNS answer cannot swap in an internal one after a check.
func publicDialer(timeout time.Duration) fasthttp.DialFunc {
	return func(addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, err
		}
		for _, ip := range ips {
			if !IsPublicIP(ip.IP) {
				return nil, fmt.Errorf("%s resolves to %s: %w", host, ip.IP, ErrForbiddenAddress)
			}
		}
		if len(ips) == 0 {
			return nil, fmt.Errorf("no addresses for %s", host)
		}
		d := net.Dialer{Timeout: timeout}
		return d.DialContext(ctx, "tcp", net.JoinHostPort(ips[0].IP.String(), port))
	}
}

// IsPublicIP reports whether ip is a globally routable unicast address.
func IsPublicIP(ip net.IP) bool {
	return ip.IsGlobalUnicast() &&
		!ip.IsPrivate() &&
		!ip.IsLoopback() &&
		!ip.IsLinkLocalUnicast() &&
		!cgnat.Contains(ip)
}

// cgnat is the shared address space of RFC 6598.
var cgnat = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// FromLocation picks a source for a configured location: "" selects the
// fallback, an http(s) URL a URLSource, anything else a file path.
func FromLocation(location string, timeout time.Duration, fallback Source) Source {
	switch {
	case location == "":
		return fallback
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return URLSource{URL: location, Timeout: timeout}
	default:
		return FileSource{Path: location}
	}
}
