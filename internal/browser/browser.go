// Package browser turns gemini, gopher and web URLs into pages a renderer can
// display.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bare/internal/config"
	"bare/internal/gemini"
	"bare/internal/gopher"
)

var (
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	ErrBlockedItem       = errors.New("gopher item type cannot be opened")
)

// Browser dispatches requests to the protocol clients and caches the
// resulting pages.
type Browser struct {
	gemini *gemini.Client
	gopher *gopher.Client
	web    *HTTPFetcher
	cache  Cache
	log    zerolog.Logger
}

// New builds a Browser. A nil cache disables caching.
func New(gem *gemini.Client, gop *gopher.Client, web *HTTPFetcher, cache Cache, log zerolog.Logger) *Browser {
	if cache == nil {
		cache = noopCache{}
	}
	return &Browser{gemini: gem, gopher: gop, web: web, cache: cache, log: log}
}

// Open fetches rawURL, or returns the cached page when there is one. Input
// prompts surface as *gemini.InputRequiredError and gopher search items as
// gopher.ErrSearchInputRequired; answer them with Submit and Search.
func (b *Browser) Open(ctx context.Context, rawURL string) (*Page, error) {
	if page, ok := b.cache.Get(rawURL); ok {
		b.log.Debug().Str("url", rawURL).Msg("cache hit")
		return page, nil
	}

	log := b.requestLogger(rawURL)
	start := time.Now()

	var (
		page *Page
		err  error
	)
	switch scheme(rawURL) {
	case gemini.Scheme:
		page, err = b.openGemini(ctx, rawURL)
	case gopher.Scheme:
		page, err = b.openGopher(ctx, rawURL)
	case "http", "https":
		page, err = b.web.Fetch(ctx, rawURL)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedScheme, rawURL)
	}
	if err != nil {
		log.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("open failed")
		return nil, err
	}

	log.Info().
		Str("media_type", page.MediaType).
		Int("bytes", len(page.Body)).
		Int("links", len(page.Links)).
		Dur("elapsed", time.Since(start)).
		Msg("page loaded")
	b.cache.Set(rawURL, page)
	return page, nil
}

// Submit answers a gemini input prompt. Answers are never cached.
func (b *Browser) Submit(ctx context.Context, rawURL, input string) (*Page, error) {
	log := b.requestLogger(rawURL)
	log.Info().Msg("submitting input")
	resp, err := b.gemini.Submit(ctx, rawURL, input)
	if err != nil {
		return nil, err
	}
	return geminiPage(resp), nil
}

// Search sends query to a gopher search item. Results are never cached.
func (b *Browser) Search(ctx context.Context, rawURL, query string) (*Page, error) {
	log := b.requestLogger(rawURL)
	log.Info().Msg("searching")
	resp, err := b.gopher.Search(ctx, rawURL, query)
	if err != nil {
		return nil, err
	}
	return gopherPage(resp), nil
}

// Resolve resolves ref against the page at base using the rules of base's
// scheme.
func (b *Browser) Resolve(base, ref string) (string, error) {
	switch scheme(base) {
	case gemini.Scheme:
		return gemini.ResolveURL(base, ref)
	case gopher.Scheme:
		return gopher.ResolveURL(base, ref)
	case "http", "https":
		bu, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", base, err)
		}
		ru, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", ref, err)
		}
		return bu.ResolveReference(ru).String(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, base)
	}
}

// SetTimeouts applies the timeouts of cfg to requests started afterwards.
func (b *Browser) SetTimeouts(cfg *config.Config) {
	b.gemini.SetTimeout(cfg.Timeout)
	b.gopher.SetTimeout(cfg.Gopher.Timeout)
	b.web.SetTimeout(cfg.Timeout)
	b.log.Info().
		Dur("timeout", cfg.Timeout).
		Dur("gopher_timeout", cfg.Gopher.Timeout).
		Msg("timeouts updated")
}

func (b *Browser) requestLogger(rawURL string) zerolog.Logger {
	return b.log.With().
		Str("request_id", uuid.NewString()).
		Str("url", rawURL).
		Logger()
}

func (b *Browser) openGemini(ctx context.Context, rawURL string) (*Page, error) {
	resp, err := b.gemini.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return geminiPage(resp), nil
}

func (b *Browser) openGopher(ctx context.Context, rawURL string) (*Page, error) {
	addr, err := gopher.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if addr.Type.IsBlocked() {
		return nil, fmt.Errorf("%w: %s", ErrBlockedItem, addr.Type)
	}
	resp, err := b.gopher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return gopherPage(resp), nil
}

func geminiPage(resp *gemini.Response) *Page {
	page := &Page{URL: resp.URL, Body: resp.Body}
	if resp.IsGemtext() {
		page.MediaType = MediaGemtext
		page.Title = gemtextTitle(resp.Body)
		page.Links = gemtextLinks(resp.URL, resp.Body)
		return page
	}
	page.MediaType, _ = resp.MediaType()
	return page
}

func gopherPage(resp *gopher.Response) *Page {
	page := &Page{URL: resp.URL, Body: resp.Body}
	switch resp.ContentType {
	case gopher.ContentMenu, gopher.ContentSearch, gopher.ContentError:
		doc := gopher.Project(resp.Items)
		page.MediaType = MediaMarkdown
		page.Title = doc.Title
		page.Body = doc.Markdown()
		for _, l := range doc.Links() {
			page.Links = append(page.Links, Link{Label: l.Text, URL: l.URL})
		}
	case gopher.ContentHTML:
		page.MediaType = MediaHTML
	default:
		page.MediaType = MediaText
	}
	return page
}

func scheme(rawURL string) string {
	s, _, ok := strings.Cut(rawURL, "://")
	if !ok {
		return ""
	}
	return strings.ToLower(s)
}
