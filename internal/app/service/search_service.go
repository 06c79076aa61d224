package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"social-search-service/internal/domain"
)

// Config carries the tunables the search service needs beyond its
// injected collaborators.
type Config struct {
	DefaultBackend  domain.Backend
	FallbackEnabled bool
	TrendingWindow  time.Duration
	SuggestLimit    int
	TagLimit        int
}

// SearchService orchestrates a single search request: filter
// normalization, friend resolution, cache lookup, backend dispatch,
// ranking and the fire-and-forget analytics write.
type SearchService struct {
	backends map[domain.Backend]domain.SearchBackend
	graph    domain.SocialGraph
	cache    domain.ResultCache
	logs     domain.SearchLogStore
	sink     *AnalyticsSink
	cfg      Config
	logger   *zap.Logger
}

// NewSearchService wires the service from its backends and supporting
// stores. cache and sink may be nil; the service then skips the cache
// layer and analytics recording respectively.
func NewSearchService(
	backends []domain.SearchBackend,
	graph domain.SocialGraph,
	cache domain.ResultCache,
	logs domain.SearchLogStore,
	sink *AnalyticsSink,
	cfg Config,
	logger *zap.Logger,
) *SearchService {
	byName := make(map[domain.Backend]domain.SearchBackend, len(backends))
	for _, b := range backends {
		byName[b.Name()] = b
	}
	if cfg.DefaultBackend == "" {
		cfg.DefaultBackend = domain.BackendRelational
	}
	if cfg.TrendingWindow <= 0 {
		cfg.TrendingWindow = 24 * time.Hour
	}
	if cfg.SuggestLimit <= 0 {
		cfg.SuggestLimit = 10
	}
	if cfg.TagLimit <= 0 {
		cfg.TagLimit = 10
	}
	return &SearchService{
		backends: byName,
		graph:    graph,
		cache:    cache,
		logs:     logs,
		sink:     sink,
		cfg:      cfg,
		logger:   logger,
	}
}

// Search runs the full pipeline for one filter and returns a paginated
// result. Cache hits short-circuit before any backend work and are not
// recorded in the analytics log.
func (s *SearchService) Search(ctx context.Context, filter *domain.SearchFilter) (*domain.SearchResult, error) {
	if filter == nil {
		return nil, domain.NewValidationError("search filter is required")
	}
	if filter.RequesterID <= 0 {
		return nil, domain.NewValidationError("requester id must be positive")
	}
	if filter.Backend == "" {
		filter.Backend = s.cfg.DefaultBackend
	}
	filter.Normalize()

	visible, err := s.visibleAuthors(ctx, filter.RequesterID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, filter)
		if err != nil {
			s.logger.Warn("result cache lookup failed",
				zap.Int64("requester_id", filter.RequesterID),
				zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	backend, err := s.pickBackend(filter.Backend)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	exec, err := backend.Search(ctx, filter, visible)
	if err != nil {
		return nil, err
	}
	if filter.SortMode == domain.SortModeRelevance && backend.Name() == domain.BackendIndex {
		domain.SortByRelevance(exec.Posts)
	}

	result := domain.NewSearchResult(exec.Posts, exec.TotalMatches, filter)
	result.MaxScore = exec.MaxScore
	result.LatencyMs = time.Since(start).Milliseconds()

	if s.cache != nil {
		if err := s.cache.Set(ctx, filter, result); err != nil {
			s.logger.Warn("result cache write failed",
				zap.Int64("requester_id", filter.RequesterID),
				zap.Error(err))
		}
	}
	if s.sink != nil {
		s.sink.Record(&domain.SearchLog{
			RequesterID:   filter.RequesterID,
			QueryText:     filter.QueryText,
			FilterSummary: filter.Summary(),
			ResultCount:   result.TotalMatches,
			LatencyMs:     result.LatencyMs,
			CreatedAt:     time.Now().UTC(),
		})
	}
	return result, nil
}

// Suggest returns up to limit distinct post titles starting with
// prefix, restricted to authors the requester may see. Prefixes
// shorter than two runes yield an empty list without backend work.
func (s *SearchService) Suggest(ctx context.Context, requesterID int64, prefix string, limit int) ([]string, error) {
	if requesterID <= 0 {
		return nil, domain.NewValidationError("requester id must be positive")
	}
	prefix = strings.TrimSpace(prefix)
	if utf8.RuneCountInString(prefix) < domain.MinQueryTextLen {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = s.cfg.SuggestLimit
	}

	visible, err := s.visibleAuthors(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	backend, err := s.pickBackend(s.cfg.DefaultBackend)
	if err != nil {
		return nil, err
	}
	filter := &domain.SearchFilter{RequesterID: requesterID, QueryText: prefix}
	titles, err := backend.Suggest(ctx, filter, visible, limit)
	if err != nil {
		return nil, err
	}
	return dedupeTitles(titles, limit), nil
}

// PopularTags returns the most used tags across posts visible to the
// requester, most frequent first.
func (s *SearchService) PopularTags(ctx context.Context, requesterID int64, limit int) ([]string, error) {
	if requesterID <= 0 {
		return nil, domain.NewValidationError("requester id must be positive")
	}
	if limit <= 0 {
		limit = s.cfg.TagLimit
	}

	visible, err := s.visibleAuthors(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	backend, err := s.pickBackend(s.cfg.DefaultBackend)
	if err != nil {
		return nil, err
	}
	return backend.PopularTags(ctx, visible, limit)
}

// Trending returns the most frequent query texts recorded within the
// configured window.
func (s *SearchService) Trending(ctx context.Context, limit int) ([]domain.TrendingQuery, error) {
	if limit <= 0 {
		limit = s.cfg.SuggestLimit
	}
	return s.logs.Trending(ctx, s.cfg.TrendingWindow, limit)
}

// InvalidateCache drops cached results for one requester, or every
// cached result when requesterID is nil.
func (s *SearchService) InvalidateCache(ctx context.Context, requesterID *int64) error {
	if s.cache == nil {
		return nil
	}
	if requesterID != nil {
		return s.cache.InvalidateRequester(ctx, *requesterID)
	}
	return s.cache.Flush(ctx)
}

func (s *SearchService) visibleAuthors(ctx context.Context, requesterID int64) ([]int64, error) {
	friends, err := s.graph.AcceptedFriendsOf(ctx, requesterID)
	if err != nil {
		if domain.KindOf(err) != "" {
			return nil, err
		}
		return nil, &domain.Error{
			Kind:    domain.KindExecutionFailed,
			Message: "social graph lookup failed",
			Err:     err,
		}
	}
	return append(friends, requesterID), nil
}

func (s *SearchService) pickBackend(name domain.Backend) (domain.SearchBackend, error) {
	if b, ok := s.backends[name]; ok {
		return b, nil
	}
	if s.cfg.FallbackEnabled {
		for _, b := range s.backends {
			s.logger.Warn("search backend unavailable, falling back",
				zap.String("requested", string(name)),
				zap.String("fallback", string(b.Name())))
			return b, nil
		}
	}
	return nil, domain.NewBackendUnavailable(name)
}

func dedupeTitles(titles []string, limit int) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, limit)
	for _, t := range titles {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}
