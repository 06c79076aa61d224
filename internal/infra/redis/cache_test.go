package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-search-service/internal/domain"
)

const testTTL = 300 * time.Second

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCache(client, zap.NewNop(), "social-search", testTTL), mr
}

func testFilter(requesterID int64, query string) *domain.SearchFilter {
	f := &domain.SearchFilter{RequesterID: requesterID, QueryText: query}
	f.Normalize()
	return f
}

func testResult(total int64) *domain.SearchResult {
	return &domain.SearchResult{
		Posts:        []*domain.Post{{ID: 1, Title: "cached post", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}},
		TotalMatches: total,
		Page:         1,
		PageSize:     20,
		TotalPages:   1,
	}
}

func TestCache_SetGetRoundtrip(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()
	f := testFilter(1, "golang")

	require.NoError(t, cache.Set(ctx, f, testResult(7)))

	got, err := cache.Get(ctx, f)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.TotalMatches)
	require.Len(t, got.Posts, 1)
	assert.Equal(t, "cached post", got.Posts[0].Title)
}

func TestCache_MissOnUnknownFilter(t *testing.T) {
	cache, _ := setupTestCache(t)

	got, err := cache.Get(context.Background(), testFilter(1, "nothing"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_DistinctFiltersDistinctKeys(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	plain := testFilter(1, "golang")
	fuzzy := testFilter(1, "golang")
	fuzzy.Fuzzy = true

	require.NoError(t, cache.Set(ctx, plain, testResult(7)))

	// A filter differing only in fuzzy must not collide.
	got, err := cache.Get(ctx, fuzzy)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_TTLExpiry(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()
	f := testFilter(1, "golang")

	require.NoError(t, cache.Set(ctx, f, testResult(7)))

	mr.FastForward(testTTL + time.Second)

	got, err := cache.Get(ctx, f)
	require.NoError(t, err)
	assert.Nil(t, got, "expired entries must be a miss")
}

func TestCache_StaleEntryIsMissEvenWithoutEviction(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()
	f := testFilter(1, "golang")

	require.NoError(t, cache.Set(ctx, f, testResult(7)))

	// Rewrite the stored entry with an old timestamp but keep the key live:
	// Get must still reject it based on its own age check.
	key := cache.buildKey(f)
	data, err := mr.Get(key)
	require.NoError(t, err)
	old := time.Now().UTC().Add(-2 * testTTL).Format(time.RFC3339Nano)
	require.NoError(t, mr.Set(key, rewriteCachedAt(t, data, old)))

	got, err := cache.Get(ctx, f)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_InvalidateRequesterIsScoped(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	f1 := testFilter(1, "golang")
	f2 := testFilter(2, "golang")
	require.NoError(t, cache.Set(ctx, f1, testResult(1)))
	require.NoError(t, cache.Set(ctx, f2, testResult(2)))

	require.NoError(t, cache.InvalidateRequester(ctx, 1))

	got1, err := cache.Get(ctx, f1)
	require.NoError(t, err)
	assert.Nil(t, got1, "requester 1 entries must be gone")

	got2, err := cache.Get(ctx, f2)
	require.NoError(t, err)
	require.NotNil(t, got2, "requester 2 entries must survive")
	assert.Equal(t, int64(2), got2.TotalMatches)
}

func TestCache_Flush(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testFilter(1, "a"), testResult(1)))
	require.NoError(t, cache.Set(ctx, testFilter(2, "b"), testResult(2)))

	require.NoError(t, cache.Flush(ctx))

	for _, f := range []*domain.SearchFilter{testFilter(1, "a"), testFilter(2, "b")} {
		got, err := cache.Get(ctx, f)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestCache_GetErrorIsCacheKind(t *testing.T) {
	cache, mr := setupTestCache(t)
	f := testFilter(1, "golang")
	require.NoError(t, cache.Set(context.Background(), f, testResult(1)))

	mr.Close()

	_, err := cache.Get(context.Background(), f)
	require.Error(t, err)
	assert.Equal(t, domain.KindCache, domain.KindOf(err))
}

// rewriteCachedAt swaps the cached_at field in a stored entry so age checks
// can be exercised without waiting.
func rewriteCachedAt(t *testing.T, raw, ts string) string {
	t.Helper()

	var e map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	e["cached_at"] = ts
	out, err := json.Marshal(e)
	require.NoError(t, err)

	return string(out)
}
