package domain

import "sort"

// SearchResult holds one ranked, paginated page of posts. It is constructed
// fresh per search invocation (or deserialized from cache) and immutable
// once returned.
type SearchResult struct {
	Posts        []*Post `json:"posts"`
	TotalMatches int64   `json:"total_matches"`
	Page         int     `json:"page"`
	PageSize     int     `json:"page_size"`
	TotalPages   int     `json:"total_pages"`
	HasMore      bool    `json:"has_more"`
	MaxScore     float64 `json:"max_score,omitempty"`
	LatencyMs    int64   `json:"latency_ms"`
}

// NewSearchResult creates a SearchResult with derived pagination. The page
// window itself was already applied by the executor; this only computes
// totalPages = ceil(total/pageSize) and hasMore = page < totalPages.
func NewSearchResult(posts []*Post, total int64, f *SearchFilter) *SearchResult {
	totalPages := int(total) / f.PageSize
	if int(total)%f.PageSize > 0 {
		totalPages++
	}

	return &SearchResult{
		Posts:        posts,
		TotalMatches: total,
		Page:         f.Page,
		PageSize:     f.PageSize,
		TotalPages:   totalPages,
		HasMore:      f.Page < totalPages,
	}
}

// SortByRelevance orders posts by relevance score descending with a
// deterministic tie-break: createdAt descending, then ID descending.
// Identical inputs always produce identical orderings.
func SortByRelevance(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}

		return a.ID > b.ID
	})
}
