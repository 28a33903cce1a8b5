package browser

import (
	"github.com/coocood/freecache"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"bare/internal/config"
)

// Cache keeps recently fetched pages keyed by URL.
type Cache interface {
	Get(url string) (*Page, bool)
	Set(url string, page *Page)
}

type pageCache struct {
	cache *freecache.Cache
	ttl   int
	log   zerolog.Logger
}

// NewCache returns a freecache backed cache, or one that stores nothing when
// caching is disabled.
func NewCache(conf config.CacheConfig, log zerolog.Logger) Cache {
	if !conf.Enabled || conf.SizeMB <= 0 {
		log.Debug().Msg("page cache disabled")
		return noopCache{}
	}

	ttl := int(conf.TTL.Seconds())
	log.Debug().Int("size_mb", conf.SizeMB).Int("ttl_seconds", ttl).Msg("page cache initialized")
	return &pageCache{
		cache: freecache.NewCache(conf.SizeMB * 1024 * 1024),
		ttl:   ttl,
		log:   log,
	}
}

func (c *pageCache) Get(url string) (*Page, bool) {
	data, err := c.cache.Get([]byte(url))
	if err != nil {
		return nil, false
	}
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		c.log.Warn().Err(err).Str("url", url).Msg("dropping unreadable cache entry")
		c.cache.Del([]byte(url))
		return nil, false
	}
	page.FromCache = true
	return &page, true
}

func (c *pageCache) Set(url string, page *Page) {
	data, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := c.cache.Set([]byte(url), data, c.ttl); err != nil {
		c.log.Debug().Err(err).Str("url", url).Int("bytes", len(data)).Msg("page not cached")
	}
}

type noopCache struct{}

func (noopCache) Get(string) (*Page, bool) { return nil, false }
func (noopCache) Set(string, *Page)        {}
