package gemini

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		header string
		status int
		meta   string
	}{
		{"20 text/gemini\r\n", 20, "text/gemini"},
		{"10 Enter query\r\n", 10, "Enter query"},
		{"51 Not found\r\n", 51, "Not found"},
		{"31 gemini://example.com/new\r\n", 31, "gemini://example.com/new"},
		{"20\r\n", 20, ""},
		{"20 \r\n", 20, ""},
		{"20 text/plain; charset=utf-8\n", 20, "text/plain; charset=utf-8"},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.header), func(t *testing.T) {
			status, meta, err := parseHeader(tt.header)
			require.NoError(t, err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.meta, meta)
		})
	}
}

func TestParseHeaderInvalid(t *testing.T) {
	for _, header := range []string{"X", "", "\r\n", "99 x\r\n", "09 low\r\n", "70 high\r\n", "ab text\r\n"} {
		_, _, err := parseHeader(header)
		assert.ErrorIs(t, err, ErrInvalidResponse, "header %q", header)
	}
}

func TestReadHeader(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("20 text/gemini\r\nbody"))
	line, err := readHeader(r)
	require.NoError(t, err)
	assert.Equal(t, "20 text/gemini\r\n", line)

	rest, err := r.ReadString(0)
	assert.Equal(t, "body", rest)
	assert.Error(t, err)
}

func TestReadHeaderWithoutNewline(t *testing.T) {
	line, err := readHeader(bufio.NewReader(strings.NewReader("20 text/gemini")))
	require.NoError(t, err)
	assert.Equal(t, "20 text/gemini", line)
}

func TestReadHeaderEmpty(t *testing.T) {
	_, err := readHeader(bufio.NewReader(strings.NewReader("")))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestReadHeaderTooLong(t *testing.T) {
	_, err := readHeader(bufio.NewReader(strings.NewReader("20 " + strings.Repeat("m", 2000) + "\r\n")))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Not Found", StatusText(StatusNotFound))
	assert.Equal(t, "Temporary Failure", StatusText(45))
	assert.Equal(t, "Unknown", StatusText(99))
}
