// internal/clients/cache_test.go
package clients

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCacheHitAndMiss(t *testing.T) {
	c := NewTTLCache(time.Minute)

	_, ok := c.Get("GET /holidays")
	assert.False(t, ok)

	c.Put("GET /holidays", []byte(`[1,2,3]`))
	body, ok := c.Get("GET /holidays")
	assert.True(t, ok)
	assert.Equal(t, []byte(`[1,2,3]`), body)

	_, ok = c.Get("GET /books")
	assert.False(t, ok)
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("k", []byte("v"))

	now = now.Add(59 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)

	// a fresh Put restamps the entry
	c.Put("k", []byte("v2"))
	body, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), body)
}

func TestTTLCacheInvalidate(t *testing.T) {
	c := NewTTLCache(time.Minute)

	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	c.Purge()
	_, ok = c.Get("b")
	assert.False(t, ok)
}
