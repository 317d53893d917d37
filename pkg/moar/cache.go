package moar

import (
	"github.com/dgraph-io/ristretto/v2"
	"github.com/dgryski/go-farm"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Format selects the encoding of a serialized description.
type Format uint8

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// CacheConfig sizes a Cache.
type CacheConfig struct {
	// MaxCost bounds the total size, in description bytes, of cached patterns.
	MaxCost int64
	// NumCounters is the number of admission counters; about ten times the
	// expected number of distinct patterns.
	NumCounters int64
}

// DefaultCacheConfig holds up to 64 MiB of descriptions.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{MaxCost: 64 << 20, NumCounters: 100_000}
}

// Validate checks the configuration.
func (c CacheConfig) Validate() error {
	if c.MaxCost <= 0 {
		return errors.Errorf("cache max cost must be positive, got %d", c.MaxCost)
	}
	if c.NumCounters <= 0 {
		return errors.Errorf("cache counters must be positive, got %d", c.NumCounters)
	}
	return nil
}

// Cache deduplicates loads of identical descriptions. Patterns are keyed by
// a fingerprint of the serialized bytes, so two byte-identical descriptions
// share one frozen graph.
type Cache struct {
	data *ristretto.Cache[uint64, *Pattern]
}

// NewCache creates a cache.
func NewCache(cfg CacheConfig) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := ristretto.NewCache[uint64, *Pattern](&ristretto.Config[uint64, *Pattern]{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create pattern cache")
	}
	return &Cache{data: c}, nil
}

// Load returns the cached pattern for data, loading it on a miss.
func (c *Cache) Load(data []byte, format Format) (*Pattern, error) {
	key := farm.Hash64WithSeed(data, uint64(format))
	if p, ok := c.data.Get(key); ok {
		return p, nil
	}

	var (
		p   *Pattern
		err error
	)
	switch format {
	case FormatYAML:
		p, err = LoadYAML(data)
	default:
		p, err = Load(data)
	}
	if err != nil {
		return nil, err
	}

	if c.data.Set(key, p, int64(len(data))) {
		c.data.Wait()
	} else if glog.V(2) {
		glog.Infof("moar: cache rejected %s pattern %x (%d bytes)", format, key, len(data))
	}
	return p, nil
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.data.Metrics.Hits(), c.data.Metrics.Misses()
}

// Close releases the cache.
func (c *Cache) Close() {
	if glog.V(1) {
		hits, misses := c.Stats()
		glog.Infof("moar: pattern cache closing, %d hits, %d misses", hits, misses)
	}
	c.data.Close()
}
