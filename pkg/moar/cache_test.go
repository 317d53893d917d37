package moar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4ke/moar/pkg/moa"
)

func TestCacheDeduplicatesLoads(t *testing.T) {
	c, err := NewCache(DefaultCacheConfig())
	require.NoError(t, err)
	defer c.Close()

	data := readTestdata(t, "backref.json")
	first, err := c.Load(data, FormatJSON)
	require.NoError(t, err)
	second, err := c.Load(data, FormatJSON)
	require.NoError(t, err)
	assert.Same(t, first, second)

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)

	y, err := c.Load(readTestdata(t, "words.yaml"), FormatYAML)
	require.NoError(t, err)
	assert.NotSame(t, first, y)
	assert.True(t, y.MatchString("hello world"))
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	c, err := NewCache(DefaultCacheConfig())
	require.NoError(t, err)
	defer c.Close()

	bad := []byte(`{"states": [{"idx": 1, "name": "a"}], "edges": [{"from": -1, "to": 9}]}`)
	for i := 0; i < 2; i++ {
		p, err := c.Load(bad, FormatJSON)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, moa.ErrUnknownStateReference)
	}
}

func TestCacheConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultCacheConfig().Validate())
	assert.Error(t, CacheConfig{MaxCost: 0, NumCounters: 10}.Validate())
	assert.Error(t, CacheConfig{MaxCost: 10}.Validate())

	_, err := NewCache(CacheConfig{})
	assert.Error(t, err)
	assert.Equal(t, "yaml", FormatYAML.String())
}
