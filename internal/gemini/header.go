package gemini

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxHeaderLength bounds the response header: two status digits, a space,
// up to MaxURLLength bytes of meta and CRLF.
const maxHeaderLength = MaxURLLength + 5

// readHeader reads the response header line including its terminator. A
// header cut short by EOF is returned as read.
func readHeader(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for b.Len() < maxHeaderLength {
		c, err := r.ReadByte()
		if err != nil {
			if (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)) && b.Len() > 0 {
				return b.String(), nil
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return "", fmt.Errorf("%w: empty header", ErrInvalidResponse)
			}
			return "", err
		}
		b.WriteByte(c)
		if c == '\n' {
			return b.String(), nil
		}
	}
	return "", fmt.Errorf("%w: header longer than %d bytes", ErrInvalidResponse, maxHeaderLength)
}

// parseHeader splits "<STATUS><SPACE><META>\r\n" into its parts.
func parseHeader(header string) (int, string, error) {
	header = strings.TrimRight(strings.TrimRight(header, "\n"), "\r")

	if len(header) < 2 {
		return 0, "", fmt.Errorf("%w: header too short", ErrInvalidResponse)
	}

	status, err := strconv.Atoi(header[:2])
	if err != nil {
		return 0, "", fmt.Errorf("%w: bad status code %q", ErrInvalidResponse, header[:2])
	}
	if status < 10 || status > 69 {
		return 0, "", fmt.Errorf("%w: status code out of range: %d", ErrInvalidResponse, status)
	}

	var meta string
	if len(header) > 3 {
		meta = header[3:]
	}
	return status, meta, nil
}
