package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withMiniredis points the package client at an in-process Redis and
// restores the previous client when the test finishes.
func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	prev := client
	InitRedis(mr.Addr())
	t.Cleanup(func() { client = prev })
	return mr
}

type cachedListing struct {
	Title string `json:"title"`
	Views int    `json:"views"`
}

func TestAside_MissFetchesAndStores(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	fetchCalls := 0
	var dest cachedListing
	err := Aside(ctx, "item:1", &dest, time.Minute, func() error {
		fetchCalls++
		dest = cachedListing{Title: "Denim Jacket", Views: 3}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetchCalls)
	assert.Equal(t, "Denim Jacket", dest.Title)

	// second read is served from the cache
	var again cachedListing
	err = Aside(ctx, "item:1", &again, time.Minute, func() error {
		fetchCalls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetchCalls)
	assert.Equal(t, dest, again)

	assert.True(t, mr.Exists("item:1"))
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	var dest cachedListing
	wantErr := errors.New("db down")
	err := Aside(ctx, "item:2", &dest, time.Minute, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, mr.Exists("item:2"))
}

func TestAside_NilClientAlwaysFetches(t *testing.T) {
	prev := client
	client = nil
	t.Cleanup(func() { client = prev })

	fetchCalls := 0
	var dest cachedListing
	for i := 0; i < 2; i++ {
		err := Aside(context.Background(), "item:3", &dest, time.Minute, func() error {
			fetchCalls++
			dest = cachedListing{Title: "Wool Scarf"}
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, fetchCalls)
}

func TestInvalidateItem(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, ItemKey(9), cachedListing{Title: "Boots"}, time.Minute))
	require.True(t, mr.Exists("item:9"))

	InvalidateItem(ctx, 9)
	assert.False(t, mr.Exists("item:9"))
}

func TestInvalidateItemsList(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, ItemsListKey, []cachedListing{{Title: "Boots"}}, time.Minute))
	InvalidateItemsList(ctx)
	assert.False(t, mr.Exists(ItemsListKey))
}

func TestGetJSON_ExpiredKey(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, "item:4", cachedListing{Title: "Loafers"}, time.Second))
	mr.FastForward(2 * time.Second)

	var dest cachedListing
	found, err := GetJSON(ctx, "item:4", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}
