package atomiccowcache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheGeneratesOncePerKey(t *testing.T) {
	genCalls := 0
	cache := NewCache(func(k string) int {
		genCalls++
		return len(k)
	})

	require.Equal(t, 3, cache.Get("abc"))
	require.Equal(t, 3, cache.Get("abc"))
	require.Equal(t, 1, genCalls)

	require.Equal(t, 2, cache.Get("ab"))
	require.Equal(t, 2, genCalls)
}
