package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rndosd/finclass/src/utils"
)

func TestCache(t *testing.T) {
	cache := utils.NewCache[[]string]()

	_, ok := cache.Get()
	assert.False(t, ok)

	cache.Set([]string{"AAPL"}, time.Minute)
	got, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, []string{"AAPL"}, got)

	cache.Clear()
	_, ok = cache.Get()
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	cache := utils.NewCache[int]()
	cache.Set(7, 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	_, ok := cache.Get()
	assert.False(t, ok)
}
