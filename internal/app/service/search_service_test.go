package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-search-service/internal/domain"
)

type fakeBackend struct {
	name         domain.Backend
	searchCalls  int
	lastFilter   *domain.SearchFilter
	lastVisible  []int64
	result       *domain.ExecutorResult
	suggestions  []string
	tags         []string
	searchErr    error
	suggestCalls int
}

func (f *fakeBackend) Name() domain.Backend { return f.name }

func (f *fakeBackend) Search(_ context.Context, filter *domain.SearchFilter, visible []int64) (*domain.ExecutorResult, error) {
	f.searchCalls++
	f.lastFilter = filter
	f.lastVisible = visible
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.ExecutorResult{Posts: []*domain.Post{}}, nil
}

func (f *fakeBackend) Suggest(_ context.Context, _ *domain.SearchFilter, _ []int64, _ int) ([]string, error) {
	f.suggestCalls++
	return f.suggestions, nil
}

func (f *fakeBackend) PopularTags(_ context.Context, _ []int64, limit int) ([]string, error) {
	if limit < len(f.tags) {
		return f.tags[:limit], nil
	}
	return f.tags, nil
}

type fakeGraph struct {
	friends map[int64][]int64
	err     error
}

func (f *fakeGraph) AcceptedFriendsOf(_ context.Context, requesterID int64) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.friends[requesterID], nil
}

type fakeCache struct {
	entries     map[string]*domain.SearchResult
	getCalls    int
	setCalls    int
	getErr      error
	invalidated []int64
	flushed     bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*domain.SearchResult)}
}

func (f *fakeCache) Get(_ context.Context, filter *domain.SearchFilter) (*domain.SearchResult, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.entries[filter.Fingerprint()], nil
}

func (f *fakeCache) Set(_ context.Context, filter *domain.SearchFilter, result *domain.SearchResult) error {
	f.setCalls++
	f.entries[filter.Fingerprint()] = result
	return nil
}

func (f *fakeCache) InvalidateRequester(_ context.Context, requesterID int64) error {
	f.invalidated = append(f.invalidated, requesterID)
	return nil
}

func (f *fakeCache) Flush(_ context.Context) error {
	f.flushed = true
	return nil
}

type fakeLogStore struct {
	appended []*domain.SearchLog
	trending []domain.TrendingQuery
	pruned   int64
}

func (f *fakeLogStore) Append(_ context.Context, log *domain.SearchLog) error {
	f.appended = append(f.appended, log)
	return nil
}

func (f *fakeLogStore) Trending(_ context.Context, _ time.Duration, limit int) ([]domain.TrendingQuery, error) {
	if limit < len(f.trending) {
		return f.trending[:limit], nil
	}
	return f.trending, nil
}

func (f *fakeLogStore) Prune(_ context.Context, _ time.Duration) (int64, error) {
	return f.pruned, nil
}

func newTestService(t *testing.T, backends []domain.SearchBackend, graph domain.SocialGraph, cache domain.ResultCache, cfg Config) (*SearchService, *fakeLogStore, *AnalyticsSink) {
	t.Helper()

	logs := &fakeLogStore{}
	sink := NewAnalyticsSink(logs, zap.NewNop(), 16)
	t.Cleanup(sink.Close)

	svc := NewSearchService(backends, graph, cache, logs, sink, cfg, zap.NewNop())
	return svc, logs, sink
}

func samplePosts(n int) []*domain.Post {
	posts := make([]*domain.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, &domain.Post{
			ID:        int64(i + 1),
			AuthorID:  1,
			Title:     "post",
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Minute),
		})
	}
	return posts
}

func TestSearch_RejectsMissingRequester(t *testing.T) {
	backend := &fakeBackend{name: domain.BackendRelational}
	svc, _, _ := newTestService(t, []domain.SearchBackend{backend}, &fakeGraph{}, nil, Config{})

	_, err := svc.Search(context.Background(), &domain.SearchFilter{})

	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Zero(t, backend.searchCalls)
}

func TestSearch_ScopesToFriendsPlusSelf(t *testing.T) {
	backend := &fakeBackend{
		name:   domain.BackendRelational,
		result: &domain.ExecutorResult{Posts: samplePosts(2), TotalMatches: 2},
	}
	graph := &fakeGraph{friends: map[int64][]int64{7: {3, 5}}}
	svc, _, _ := newTestService(t, []domain.SearchBackend{backend}, graph, nil, Config{})

	result, err := svc.Search(context.Background(), &domain.SearchFilter{RequesterID: 7})

	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{3, 5, 7}, backend.lastVisible)
	assert.Equal(t, int64(2), result.TotalMatches)
}

func TestSearch_NormalizesBeforeBackend(t *testing.T) {
	backend := &fakeBackend{name: domain.BackendRelational}
	svc, _, _ := newTestService(t, []domain.SearchBackend{backend}, &fakeGraph{}, nil, Config{})

	_, err := svc.Search(context.Background(), &domain.SearchFilter{
		RequesterID: 1,
		PageSize:    500,
		Page:        -3,
	})

	require.NoError(t, err)
	require.NotNil(t, backend.lastFilter)
	assert.Equal(t, domain.MaxPageSize, backend.lastFilter.PageSize)
	assert.Equal(t, 1, backend.lastFilter.Page)
	assert.Equal(t, domain.SortModeRelevance, backend.lastFilter.SortMode)
}

func TestSearch_CacheHitSkipsBackendAndAnalytics(t *testing.T) {
	backend := &fakeBackend{name: domain.BackendRelational}
	cache := newFakeCache()
	svc, logs, sink := newTestService(t, []domain.SearchBackend{backend}, &fakeGraph{}, cache, Config{})

	filter := &domain.SearchFilter{RequesterID: 1, QueryText: "golang"}
	filter.Normalize()
	cached := domain.NewSearchResult(samplePosts(1), 1, filter)
	cache.entries[filter.Fingerprint()] = cached

	result, err := svc.Search(context.Background(), &domain.SearchFilter{
		RequesterID: 1,
		QueryText:   "golang",
	})

	require.NoError(t, err)
	assert.Equal(t, cached.TotalMatches, result.TotalMatches)
	assert.Zero(t, backend.searchCalls)

	sink.Close()
	assert.Empty(t, logs.appended, "cache hits must not produce search logs")
}

func TestSearch_CacheErrorIsTreatedAsMiss(t *testing.T) {
	backend := &fakeBackend{
		name:   domain.BackendRelational,
		result: &domain.ExecutorResult{Posts: samplePosts(1), TotalMatches: 1},
	}
	cache := newFakeCache()
	cache.getErr = domain.NewCacheError(errors.New("connection refused"))
	svc, _, _ := newTestService(t, []domain.SearchBackend{backend}, &fakeGraph{}, cache, Config{})

	result, err := svc.Search(context.Background(), &domain.SearchFilter{RequesterID: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, backend.searchCalls)
	assert.Equal(t, int64(1), result.TotalMatches)
}

func TestSearch_FreshComputationIsCachedAndLogged(t *testing.T) {
	backend := &fakeBackend{
		name:   domain.BackendRelational,
		result: &domain.ExecutorResult{Posts: samplePosts(3), TotalMatches: 3},
	}
	cache := newFakeCache()
	svc, logs, sink := newTestService(t, []domain.SearchBackend{backend}, &fakeGraph{}, cache, Config{})

	_, err := svc.Search(context.Background(), &domain.SearchFilter{
		RequesterID: 1,
		QueryText:   "kubernetes",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, cache.setCalls)

	sink.Close()
	require.Len(t, logs.appended, 1)
	assert.Equal(t, int64(1), logs.appended[0].RequesterID)
	assert.Equal(t, "kubernetes", logs.appended[0].QueryText)
	assert.Equal(t, int64(3), logs.appended[0].ResultCount)
}

func TestSearch_UnknownRequesterPassesThrough(t *testing.T) {
	backend := &fakeBackend{name: domain.BackendRelational}
	graph := &fakeGraph{err: domain.NewInvalidRequester(99)}
	svc, _, _ := newTestService(t, []domain.SearchBackend{backend}, graph, nil, Config{})

	_, err := svc.Search(context.Background(), &domain.SearchFilter{RequesterID: 99})

	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidRequester, domain.KindOf(err))
	assert.Zero(t, backend.searchCalls)
}

func TestSearch_UnconfiguredBackendWithoutFallback(t *testing.T) {
	backend := &fakeBackend{name: domain.BackendRelational}
	svc, _, _ := newTestService(t, []domain.SearchBackend{backend}, &fakeGraph{}, nil, Config{})

	_, err := svc.Search(context.Background(), &domain.SearchFilter{
		RequesterID: 1,
		Backend:     domain.BackendIndex,
	})

	require.Error(t, err)
	assert.Equal(t, domain.KindBackendUnavailable, domain.KindOf(err))
}

func TestSearch_FallsBackWhenEnabled(t *testing.T) {
	backend := &fakeBackend{
		name:   domain.BackendRelational,
		result: &domain.ExecutorResult{Posts: samplePosts(1), TotalMatches: 1},
	}
	svc, _, _ := newTestService(t, []domain.SearchBackend{backend}, &fakeGraph{}, nil, Config{FallbackEnabled: true})

	result, err := svc.Search(context.Background(), &domain.SearchFilter{
		RequesterID: 1,
		Backend:     domain.BackendIndex,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, backend.searchCalls)
	assert.Equal(t, int64(1), result.TotalMatches)
}

func TestSearch_BackendFailureSurfaces(t *testing.T) {
	backend := &fakeBackend{
		name:      domain.BackendRelational,
		searchErr: domain.NewExecutionFailed(domain.BackendRelational, errors.New("deadlock")),
	}
	svc, _, _ := newTestService(t, []domain.SearchBackend{backend}, &fakeGraph{}, nil, Config{})

	_, err := svc.Search(context.Background(), &domain.SearchFilter{RequesterID: 1})

	require.Error(t, err)
	assert.Equal(t, domain.KindExecutionFailed, domain.KindOf(err))
}

func TestSuggest_ShortPrefixSkipsBackend(t *testing.T) {
	backend := &fakeBackend{name: domain.BackendRelational, suggestions: []string{"Go"}}
	svc, _, _ := newTestService(t, []domain.SearchBackend{backend}, &fakeGraph{}, nil, Config{})

	titles, err := svc.Suggest(context.Background(), 1, " g ", 10)

	require.NoError(t, err)
	assert.Empty(t, titles)
	assert.Zero(t, backend.suggestCalls)
}

func TestSuggest_DeduplicatesAndTruncates(t *testing.T) {
	backend := &fakeBackend{
		name: domain.BackendRelational,
		suggestions: []string{
			"Go Concurrency", "go concurrency", "Go Modules",
			"GO CONCURRENCY", "Go Generics",
		},
	}
	svc, _, _ := newTestService(t, []domain.SearchBackend{backend}, &fakeGraph{}, nil, Config{})

	titles, err := svc.Suggest(context.Background(), 1, "go", 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"Go Concurrency", "Go Modules"}, titles)
}

func TestPopularTags_UsesDefaultLimit(t *testing.T) {
	backend := &fakeBackend{
		name: domain.BackendRelational,
		tags: []string{"golang", "devops", "sql"},
	}
	svc, _, _ := newTestService(t, []domain.SearchBackend{backend}, &fakeGraph{}, nil, Config{TagLimit: 2})

	tags, err := svc.PopularTags(context.Background(), 1, 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"golang", "devops"}, tags)
}

func TestTrending_DelegatesToLogStore(t *testing.T) {
	backend := &fakeBackend{name: domain.BackendRelational}
	svc, logs, _ := newTestService(t, []domain.SearchBackend{backend}, &fakeGraph{}, nil, Config{})
	logs.trending = []domain.TrendingQuery{{Query: "golang", Count: 12}}

	trending, err := svc.Trending(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, trending, 1)
	assert.Equal(t, "golang", trending[0].Query)
}

func TestInvalidateCache_ScopedAndGlobal(t *testing.T) {
	backend := &fakeBackend{name: domain.BackendRelational}
	cache := newFakeCache()
	svc, _, _ := newTestService(t, []domain.SearchBackend{backend}, &fakeGraph{}, cache, Config{})

	id := int64(42)
	require.NoError(t, svc.InvalidateCache(context.Background(), &id))
	assert.Equal(t, []int64{42}, cache.invalidated)
	assert.False(t, cache.flushed)

	require.NoError(t, svc.InvalidateCache(context.Background(), nil))
	assert.True(t, cache.flushed)
}
