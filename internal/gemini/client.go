package gemini

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/unicode"
)

const (
	DefaultTimeout  = 30 * time.Second
	MaxResponseSize = 5 * 1024 * 1024
	MaxRedirects    = 5
)

// Response is a successful (2x) gemini response.
type Response struct {
	Status int
	Meta   string
	Body   string
	// URL is the address that produced the response, after redirects.
	URL string
}

// MediaType parses Meta as a MIME type. An empty meta means gemtext.
func (r *Response) MediaType() (string, map[string]string) {
	if strings.TrimSpace(r.Meta) == "" {
		return "text/gemini", map[string]string{"charset": "utf-8"}
	}
	mt, params, err := mime.ParseMediaType(r.Meta)
	if err != nil {
		mt, _, _ = strings.Cut(r.Meta, ";")
		return strings.ToLower(strings.TrimSpace(mt)), nil
	}
	return mt, params
}

// IsGemtext reports whether the body is a text/gemini document.
func (r *Response) IsGemtext() bool {
	mt, _ := r.MediaType()
	return mt == "text/gemini"
}

type Option func(*Client)

// WithTimeout bounds each blocking step of a request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.SetTimeout(d) }
}

func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Client fetches gemini URLs, pinning server certificates in a TrustStore.
// It is safe for concurrent use.
type Client struct {
	store   *TrustStore
	dialer  Dialer
	timeout atomic.Int64
	log     zerolog.Logger
}

func NewClient(store *TrustStore, opts ...Option) *Client {
	c := &Client{
		store:  store,
		dialer: &net.Dialer{},
		log:    zerolog.Nop(),
	}
	c.timeout.Store(int64(DefaultTimeout))
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the per-step timeout.
func (c *Client) Timeout() time.Duration { return time.Duration(c.timeout.Load()) }

// SetTimeout changes the per-step timeout for requests started afterwards.
func (c *Client) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultTimeout
	}
	c.timeout.Store(int64(d))
}

// Fetch requests rawURL, following up to MaxRedirects redirects. Redirects
// are counted, not tracked, so a short cycle fails with ErrRedirectLoop once
// the budget is spent.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	current := rawURL
	for redirects := 0; ; redirects++ {
		if redirects > MaxRedirects {
			return nil, fmt.Errorf("%w (max %d)", ErrRedirectLoop, MaxRedirects)
		}
		resp, next, err := c.fetchOnce(ctx, current)
		if err != nil {
			return nil, err
		}
		if next == "" {
			return resp, nil
		}
		c.log.Info().
			Str("from", current).
			Str("to", next).
			Int("redirect", redirects+1).
			Int("max", MaxRedirects).
			Msg("gemini: redirect")
		current = next
	}
}

// Submit answers an input prompt: input becomes the query of rawURL.
func (c *Client) Submit(ctx context.Context, rawURL, input string) (*Response, error) {
	target, err := withInput(rawURL, input)
	if err != nil {
		return nil, err
	}
	return c.Fetch(ctx, target)
}

// fetchOnce performs a single request. A redirect is returned as the next URL
// instead of being followed.
func (c *Client) fetchOnce(ctx context.Context, rawURL string) (*Response, string, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, "", err
	}
	hostPort := HostPort(u)
	timeout := c.Timeout()
	log := c.log.With().Str("host", hostPort).Logger()

	log.Debug().Msg("gemini: connecting")
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	rawConn, err := c.dialer.DialContext(dialCtx, "tcp", hostPort)
	cancel()
	if err != nil {
		return nil, "", c.stepError(ctx, "connect", timeout, ErrConnection, err)
	}

	conn := tls.Client(rawConn, tlsConfig(u.Hostname()))
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	hsCtx, cancel := context.WithTimeout(ctx, timeout)
	err = conn.HandshakeContext(hsCtx)
	cancel()
	if err != nil {
		return nil, "", c.stepError(ctx, "handshake", timeout, ErrTLS, err)
	}
	log.Debug().Msg("gemini: handshake complete")

	leaf, err := peerLeaf(conn.ConnectionState())
	if err != nil {
		return nil, "", err
	}
	if err := c.store.Verify(hostPort, Fingerprint(leaf)); err != nil {
		return nil, "", err
	}

	_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	if _, err := io.WriteString(conn, u.String()+"\r\n"); err != nil {
		return nil, "", c.stepError(ctx, "send request", timeout, ErrConnection, err)
	}
	log.Debug().Str("url", u.String()).Msg("gemini: request sent")

	br := bufio.NewReader(conn)
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	line, err := readHeader(br)
	if err != nil {
		if errors.Is(err, ErrInvalidResponse) {
			return nil, "", err
		}
		return nil, "", c.stepError(ctx, "read header", timeout, ErrInvalidResponse, err)
	}

	status, meta, err := parseHeader(line)
	if err != nil {
		return nil, "", err
	}
	log.Debug().Int("status", status).Str("meta", meta).Msg("gemini: response header")

	switch status / 10 {
	case classInput:
		return nil, "", &InputRequiredError{URL: u.String(), Prompt: meta, Sensitive: status == StatusSensitiveInput}
	case classSuccess:
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
		body, err := readBody(br)
		if err != nil {
			if errors.Is(err, ErrTooLarge) {
				return nil, "", err
			}
			return nil, "", c.stepError(ctx, "read body", timeout, ErrInvalidResponse, err)
		}
		log.Debug().Int("bytes", len(body)).Msg("gemini: body received")
		return &Response{Status: status, Meta: meta, Body: body, URL: rawURL}, "", nil
	case classRedirect:
		return nil, redirectTarget(u, meta), nil
	case classTemporary, classPermanent:
		return nil, "", &ServerError{Status: status, Meta: meta}
	case classCertificate:
		return nil, "", ErrClientCertRequired
	default:
		return nil, "", fmt.Errorf("%w: unknown status code %d", ErrInvalidResponse, status)
	}
}

// stepError classifies a failed blocking step. Caller cancellation wins over
// everything else.
func (c *Client) stepError(ctx context.Context, step string, timeout time.Duration, kind, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if isTimeout(err) {
		return &TimeoutError{Step: step, Timeout: timeout}
	}
	return fmt.Errorf("%w: %s: %v", kind, step, err)
}

// readBody reads the rest of the connection. Reaching MaxResponseSize is an
// error; malformed UTF-8 is replaced, never fatal.
func readBody(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxResponseSize))
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}
	if len(data) >= MaxResponseSize {
		return "", fmt.Errorf("%w: over %d bytes", ErrTooLarge, MaxResponseSize)
	}
	decoded, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD"), nil
	}
	return string(decoded), nil
}
