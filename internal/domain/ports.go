package domain

import (
	"context"
	"time"
)

// ExecutorResult is the normalized tuple every backend executor returns.
// Score and highlight annotations, when the engine provides them, are
// attached to the posts directly.
type ExecutorResult struct {
	Posts        []*Post
	TotalMatches int64
	MaxScore     float64 // maximum score across the page, index backend only
}

// SearchBackend is the capability interface both engines implement. The
// facade holds one reference per Backend value, chosen by the filter's
// Backend field.
// Implementations: internal/infra/postgres, internal/infra/elastic
type SearchBackend interface {
	// Name returns the backend identity this executor serves.
	Name() Backend

	// Search compiles the filter into an engine query restricted to the
	// given visible author ids, executes it, and normalizes the page.
	Search(ctx context.Context, f *SearchFilter, visibleAuthors []int64) (*ExecutorResult, error)

	// Suggest returns raw autocomplete candidates for the filter's query
	// text, visibility-scoped. Callers deduplicate and truncate.
	Suggest(ctx context.Context, f *SearchFilter, visibleAuthors []int64, limit int) ([]string, error)

	// PopularTags returns the most used tags across visible posts.
	PopularTags(ctx context.Context, visibleAuthors []int64, limit int) ([]string, error)
}

// SocialGraph resolves the accepted-friend set used to scope every query to
// visible authors.
// Implementations: internal/infra/socialgraph
type SocialGraph interface {
	// AcceptedFriendsOf returns the ids of the requester's accepted
	// friends. An unknown requester yields an invalid-requester error.
	AcceptedFriendsOf(ctx context.Context, requesterID int64) ([]int64, error)
}

// ResultCache stores computed result sets keyed by filter fingerprint.
// Implementations: internal/infra/redis
type ResultCache interface {
	// Get returns the cached result for the filter, or (nil, nil) on miss.
	// Entries past their TTL are a miss regardless of store eviction.
	Get(ctx context.Context, f *SearchFilter) (*SearchResult, error)

	// Set stores a freshly computed result with the configured TTL.
	Set(ctx context.Context, f *SearchFilter, result *SearchResult) error

	// InvalidateRequester evicts every entry derived from a filter with
	// the given requester id.
	InvalidateRequester(ctx context.Context, requesterID int64) error

	// Flush evicts everything.
	Flush(ctx context.Context) error
}

// SearchLogStore persists search logs and answers the aggregate queries
// behind trending.
// Implementations: internal/infra/postgres
type SearchLogStore interface {
	// Append durably records one completed search.
	Append(ctx context.Context, log *SearchLog) error

	// Trending returns the top-N query texts by count within the window.
	Trending(ctx context.Context, window time.Duration, limit int) ([]TrendingQuery, error)

	// Prune deletes logs older than the retention period and returns the
	// number removed.
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}
