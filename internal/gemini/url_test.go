package gemini

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		hostPort string
	}{
		{"plain", "gemini://example.com/page", "example.com:1965"},
		{"explicit port", "gemini://example.com:1965/page", "example.com:1965"},
		{"other port", "gemini://example.com:7000/", "example.com:7000"},
		{"no path", "gemini://example.com", "example.com:1965"},
		{"ipv6", "gemini://[::1]:1966/x", "[::1]:1966"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ParseURL(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.hostPort, HostPort(u))
		})
	}
}

func TestParseURLRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"wrong scheme", "https://example.com"},
		{"no host", "gemini:///path"},
		{"no scheme", "example.com/page"},
		{"bad port", "gemini://example.com:99999/"},
		{"unparsable", "gemini://exa mple.com/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.raw)
			assert.ErrorIs(t, err, ErrInvalidURL)
		})
	}
}

func TestParseURLLength(t *testing.T) {
	base := "gemini://example.com/"
	ok := base + strings.Repeat("a", MaxURLLength-len(base))
	_, err := ParseURL(ok)
	assert.NoError(t, err)

	tooLong := ok + "a"
	_, err = ParseURL(tooLong)
	require.ErrorIs(t, err, ErrInvalidURL)
	assert.Contains(t, err.Error(), "max 1024")

	// Length is reported even when the URL is otherwise broken.
	_, err = ParseURL("http://" + strings.Repeat("x", 2000))
	require.ErrorIs(t, err, ErrInvalidURL)
	assert.Contains(t, err.Error(), "max 1024")
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"gemini://other.com/test", "gemini://other.com/test"},
		{"other.gmi", "gemini://example.com/dir/other.gmi"},
		{"../other.gmi", "gemini://example.com/other.gmi"},
		{"/root.gmi", "gemini://example.com/root.gmi"},
		{"https://web.com", "https://web.com"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := ResolveURL("gemini://example.com/dir/page", tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedirectTarget(t *testing.T) {
	current, err := url.Parse("gemini://example.com/a/b")
	require.NoError(t, err)

	assert.Equal(t, "gemini://other.com/x", redirectTarget(current, "gemini://other.com/x"))
	assert.Equal(t, "//other.com/x", redirectTarget(current, "//other.com/x"))
	assert.Equal(t, "gemini://example.com/a/c", redirectTarget(current, "c"))
	assert.Equal(t, "gemini://example.com/new", redirectTarget(current, "/new"))
}

func TestWithInput(t *testing.T) {
	got, err := withInput("gemini://example.com/search?old", "hello world & more")
	require.NoError(t, err)
	assert.Equal(t, "gemini://example.com/search?hello%20world%20%26%20more", got)

	_, err = withInput("http://example.com/", "x")
	assert.ErrorIs(t, err, ErrInvalidURL)
}
