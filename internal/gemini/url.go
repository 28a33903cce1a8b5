package gemini

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	Scheme      = "gemini"
	DefaultPort = 1965

	// MaxURLLength is the longest URL that fits in a request line.
	MaxURLLength = 1024
)

// ParseURL validates a gemini URL. Length is checked before anything else,
// so an over-long URL always fails with the length error.
func ParseURL(raw string) (*url.URL, error) {
	if len(raw) > MaxURLLength {
		return nil, fmt.Errorf("%w: url is %d bytes, max %d", ErrInvalidURL, len(raw), MaxURLLength)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidURL, raw, err)
	}
	if u.Scheme != Scheme {
		return nil, fmt.Errorf("%w: expected gemini:// scheme, got %s://", ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: url has no host", ErrInvalidURL)
	}
	if p := u.Port(); p != "" {
		if _, err := strconv.ParseUint(p, 10, 16); err != nil {
			return nil, fmt.Errorf("%w: bad port %q", ErrInvalidURL, p)
		}
	}
	return u, nil
}

// HostPort returns the dial address of u, filling in the default port. It is
// also the key under which the host's certificate is remembered.
func HostPort(u *url.URL) string {
	port := u.Port()
	if port == "" {
		port = strconv.Itoa(DefaultPort)
	}
	return net.JoinHostPort(u.Hostname(), port)
}

// ResolveURL resolves ref against base. Absolute gemini and web URLs are
// returned untouched.
func ResolveURL(base, ref string) (string, error) {
	for _, prefix := range []string{"gemini://", "http://", "https://"} {
		if strings.HasPrefix(ref, prefix) {
			return ref, nil
		}
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: base %s: %v", ErrInvalidURL, base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidURL, ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

// redirectTarget turns the meta of a 3x response into the next URL to fetch.
func redirectTarget(current *url.URL, meta string) string {
	if strings.HasPrefix(meta, "gemini://") || strings.HasPrefix(meta, "//") {
		return meta
	}
	ref, err := url.Parse(meta)
	if err != nil {
		return meta
	}
	return current.ResolveReference(ref).String()
}

// withInput returns raw with its query replaced by input. Spaces are encoded
// as %20, which is what servers expect.
func withInput(raw, input string) (string, error) {
	u, err := ParseURL(raw)
	if err != nil {
		return "", err
	}
	u.RawQuery = strings.ReplaceAll(url.QueryEscape(input), "+", "%20")
	u.ForceQuery = false
	return u.String(), nil
}
