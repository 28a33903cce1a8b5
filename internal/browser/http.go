package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const maxHTTPBody = 5 * 1024 * 1024

var ErrHTTPTooLarge = errors.New("http response too large")

// HTTPStatusError is a non-2xx HTTP response.
type HTTPStatusError struct {
	URL    string
	Status int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// HTTPFetcher retrieves http and https pages.
type HTTPFetcher struct {
	client    atomic.Pointer[http.Client]
	userAgent string
	log       zerolog.Logger
}

func NewHTTPFetcher(timeout time.Duration, userAgent string, log zerolog.Logger) *HTTPFetcher {
	f := &HTTPFetcher{userAgent: userAgent, log: log}
	f.SetTimeout(timeout)
	return f
}

// SetTimeout bounds whole requests started afterwards.
func (f *HTTPFetcher) SetTimeout(d time.Duration) {
	f.client.Store(&http.Client{Timeout: d})
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Load().Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	f.log.Debug().Str("url", rawURL).Int("status", resp.StatusCode).Msg("http: response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{URL: rawURL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxHTTPBody+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if len(data) > maxHTTPBody {
		return nil, fmt.Errorf("%w: over %d bytes", ErrHTTPTooLarge, maxHTTPBody)
	}

	mediaType := MediaHTML
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			mediaType = mt
		}
	}

	return &Page{
		URL:       resp.Request.URL.String(),
		MediaType: mediaType,
		Body:      strings.ToValidUTF8(string(data), "\uFFFD"),
	}, nil
}
