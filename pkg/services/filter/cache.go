package filter

import (
	"sync"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/golang/groupcache/lru"
)

const DefaultCacheSize = 256

// Key identifies one filtered slice. DatasetID stands in for the identity
// of the row set, so a reload never hits entries of the previous load.
type Key struct {
	DatasetID string
	Metric    string
	Submetric string
	Display   string
}

func NewKey(datasetID string, c domain.Criteria) Key {
	return Key{
		DatasetID: datasetID,
		Metric:    c.Metric,
		Submetric: c.Submetric,
		Display:   c.Display,
	}
}

type Cache interface {
	Get(key Key) ([]domain.Row, bool)
	Add(key Key, rows []domain.Row)
	Len() int
}

type lruCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// NewLRU returns a bounded, goroutine-safe cache. size <= 0 falls back to
// DefaultCacheSize.
func NewLRU(size int) Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &lruCache{cache: lru.New(size)}
}

func (c *lruCache) Get(key Key) ([]domain.Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]domain.Row), true
}

func (c *lruCache) Add(key Key, rows []domain.Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(key, rows)
}

func (c *lruCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

type nopCache struct{}

// NewNop returns a cache that stores nothing.
func NewNop() Cache {
	return nopCache{}
}

func (nopCache) Get(Key) ([]domain.Row, bool) { return nil, false }
func (nopCache) Add(Key, []domain.Row)        {}
func (nopCache) Len() int                     { return 0 }

// Filterer runs ByMetric through an injected cache. Construct one per page
// render or per process; there is no package-level cache.
type Filterer struct {
	cache Cache
}

func NewFilterer(cache Cache) *Filterer {
	if cache == nil {
		cache = NewNop()
	}
	return &Filterer{cache: cache}
}

// ByMetric returns the cached slice for (dataset, criteria) when present.
// Callers must not mutate the returned rows.
func (f *Filterer) ByMetric(ds domain.Dataset, c domain.Criteria) []domain.Row {
	key := NewKey(ds.ID, c)
	if rows, ok := f.cache.Get(key); ok {
		return rows
	}
	rows := ByMetric(ds.Rows, c)
	f.cache.Add(key, rows)
	return rows
}

func (f *Filterer) Cache() Cache {
	return f.cache
}
