package gopher

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	Scheme       = "gopher"
	DefaultPort  = 70
	MaxURLLength = 1024
)

// Address is a parsed gopher URL: gopher://host[:port]/<type><selector>.
type Address struct {
	Host     string
	Port     int
	Type     ItemType
	Selector string
}

// ParseURL decomposes raw. An empty path or "/" addresses the root menu.
// Otherwise the first character after the leading "/" is the item type and
// everything after it, query and fragment included, is the selector exactly
// as written. Selectors are not percent-decoded.
func ParseURL(raw string) (Address, error) {
	if len(raw) > MaxURLLength {
		return Address{}, fmt.Errorf("%w: url is %d bytes (max %d)", ErrInvalidURL, len(raw), MaxURLLength)
	}
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || !strings.EqualFold(scheme, Scheme) {
		return Address{}, fmt.Errorf("%w: %q is not a %s url", ErrInvalidURL, raw, Scheme)
	}

	authority, path := rest, ""
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		authority = rest[:i]
		if rest[i] == '/' {
			path = rest[i+1:]
		}
	}

	u, err := url.Parse(Scheme + "://" + authority)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Hostname() == "" {
		return Address{}, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	addr := Address{Host: u.Hostname(), Port: DefaultPort, Type: TypeDirectory}
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return Address{}, fmt.Errorf("%w: bad port %q", ErrInvalidURL, p)
		}
		addr.Port = int(n)
	}

	if path == "" {
		return addr, nil
	}
	r, size := utf8.DecodeRuneInString(path)
	addr.Type = ItemType(r)
	addr.Selector = path[size:]
	return addr, nil
}

// HostPort is the dial address.
func (a Address) HostPort() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// URL rebuilds the textual form with the selector written as is. The
// default port is omitted; everything else survives a ParseURL round trip.
func (a Address) URL() string {
	host := a.Host
	if a.Port != DefaultPort && a.Port != 0 {
		host = net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return Scheme + "://" + host + "/" + a.Type.Code() + a.Selector
}

// Address returns where the item points.
func (i Item) Address() Address {
	return Address{Host: i.Host, Port: i.Port, Type: i.Type, Selector: i.Selector}
}

// ItemURL builds the gopher URL for a menu item.
func ItemURL(i Item) string { return i.Address().URL() }

// ResolveURL resolves ref against base. Absolute URLs of the schemes the
// browser understands are returned unchanged.
func ResolveURL(base, ref string) (string, error) {
	for _, prefix := range []string{"gopher://", "gemini://", "http://", "https://"} {
		if strings.HasPrefix(ref, prefix) {
			return ref, nil
		}
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: base: %v", ErrInvalidURL, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	return b.ResolveReference(r).String(), nil
}
