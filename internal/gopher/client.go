package gopher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"
)

const (
	DefaultTimeout  = 30 * time.Second
	MaxResponseSize = 5 * 1024 * 1024

	readChunkSize = 8192
)

// ContentType classifies a response body.
type ContentType int

const (
	ContentMenu ContentType = iota + 1
	ContentText
	ContentHTML
	ContentSearch
	ContentError
)

func (c ContentType) String() string {
	switch c {
	case ContentMenu:
		return "menu"
	case ContentText:
		return "text"
	case ContentHTML:
		return "html"
	case ContentSearch:
		return "search"
	case ContentError:
		return "error"
	default:
		return "unknown"
	}
}

// Response is a shaped gopher transfer. Items is only set for menus and
// error responses.
type Response struct {
	ContentType ContentType
	Body        string
	Items       []Item
	URL         string
}

// Dialer opens the TCP connection a request travels over.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type Option func(*Client)

// WithTimeout bounds the connect, the send and every single read.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.SetTimeout(d) }
}

func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Client fetches gopher resources. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	dialer  Dialer
	timeout atomic.Int64
	log     zerolog.Logger
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		dialer: &net.Dialer{},
		log:    zerolog.Nop(),
	}
	c.timeout.Store(int64(DefaultTimeout))
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Timeout() time.Duration { return time.Duration(c.timeout.Load()) }

// SetTimeout changes the timeout for requests started afterwards.
func (c *Client) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultTimeout
	}
	c.timeout.Store(int64(d))
}

// Fetch retrieves rawURL and shapes the body by the addressed item type.
// A search item without a query in its selector fails with
// ErrSearchInputRequired before any connection is made.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	addr, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if addr.Type == TypeSearch && !strings.Contains(addr.Selector, "\t") {
		return nil, ErrSearchInputRequired
	}

	body, err := c.roundTrip(ctx, addr, addr.Selector+"\r\n")
	if err != nil {
		return nil, err
	}
	return c.shape(addr, body, rawURL), nil
}

// Search sends query to the search item at rawURL and parses the result as
// a menu.
func (c *Client) Search(ctx context.Context, rawURL, query string) (*Response, error) {
	addr, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	c.log.Info().Str("host", addr.HostPort()).Str("query", query).Msg("gopher: search")

	body, err := c.roundTrip(ctx, addr, addr.Selector+"\t"+query+"\r\n")
	if err != nil {
		return nil, err
	}
	return &Response{ContentType: ContentMenu, Body: body, Items: ParseMenu(body), URL: rawURL}, nil
}

func (c *Client) shape(addr Address, body, rawURL string) *Response {
	resp := &Response{URL: rawURL}
	switch addr.Type {
	case TypeDirectory, TypeSearch:
		resp.ContentType = ContentMenu
		resp.Body = body
		resp.Items = ParseMenu(body)
	case TypeFile, TypeInfo:
		resp.ContentType = ContentText
		resp.Body = stripTermination(body)
	case TypeHTML:
		resp.ContentType = ContentHTML
		resp.Body = stripTermination(body)
	case TypeError:
		resp.ContentType = ContentError
		resp.Body = body
		resp.Items = ParseMenu(body)
	default:
		c.log.Warn().Str("type", addr.Type.Code()).Str("url", rawURL).Msg("gopher: unsupported item type, showing as text")
		resp.ContentType = ContentText
		resp.Body = stripTermination(body)
	}
	return resp
}

// roundTrip sends request over a fresh connection and returns the decoded
// reply.
func (c *Client) roundTrip(ctx context.Context, addr Address, request string) (string, error) {
	hostPort := addr.HostPort()
	timeout := c.Timeout()
	log := c.log.With().Str("host", hostPort).Logger()

	log.Info().Msg("gopher: connecting")
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	conn, err := c.dialer.DialContext(dialCtx, "tcp", hostPort)
	cancel()
	if err != nil {
		return "", stepError(ctx, "connect", timeout, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	if _, err := io.WriteString(conn, request); err != nil {
		return "", stepError(ctx, "send selector", timeout, err)
	}
	log.Debug().Str("selector", strings.TrimSuffix(request, "\r\n")).Msg("gopher: request sent")

	data, err := readResponse(conn, timeout, log)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", stepError(ctx, "read", timeout, err)
	}
	log.Debug().Int("bytes", len(data)).Msg("gopher: response received")

	body, latin1 := decode(data)
	if latin1 {
		log.Info().Msg("gopher: response is not utf-8, decoded as latin-1")
	}
	return body, nil
}

// readResponse reads until the server closes the connection. Each read gets
// its own deadline. A failure after some bytes have arrived ends the
// transfer and the partial buffer stands as the response.
func readResponse(conn net.Conn, timeout time.Duration, log zerolog.Logger) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
		n, err := conn.Read(chunk)
		if n > 0 {
			if buf.Len()+n > MaxResponseSize {
				return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, MaxResponseSize)
			}
			buf.Write(chunk[:n])
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if buf.Len() > 0 {
			log.Warn().Err(err).Int("bytes", buf.Len()).Msg("gopher: read failed, using partial response")
			return buf.Bytes(), nil
		}
		return nil, err
	}
}

// decode returns data as text, falling back to Latin-1 when it is not valid
// UTF-8.
func decode(data []byte) (string, bool) {
	if utf8.Valid(data) {
		return string(data), false
	}
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD"), true
	}
	return string(text), true
}

// stepError classifies a failed step. Caller cancellation wins.
func stepError(ctx context.Context, step string, timeout time.Duration, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if isTimeout(err) {
		return &TimeoutError{Step: step, Timeout: timeout}
	}
	return fmt.Errorf("%w: %s: %v", ErrConnection, step, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
