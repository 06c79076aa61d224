package dto

import (
	"net/http"
	"time"

	"social-search-service/internal/domain"
)

// Envelope is the stable wrapper every successful response carries: the
// success flag and the endpoint payload under data. Failures use
// ErrorResponse, which carries success=false.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// Success wraps a payload in the response envelope.
func Success(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// PostResponse represents a single post in the response.
type PostResponse struct {
	ID           int64    `json:"id"`
	AuthorID     int64    `json:"author_id"`
	AuthorName   string   `json:"author_name"`
	AuthorAvatar string   `json:"author_avatar,omitempty"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Tags         []string `json:"tags,omitempty"`

	LikeCount    int `json:"like_count"`
	CommentCount int `json:"comment_count"`

	Score      float64  `json:"score,omitempty"`
	Highlights []string `json:"highlights,omitempty"`

	CreatedAt string `json:"created_at"`
}

// FromDomainPost converts domain.Post to PostResponse.
func FromDomainPost(p *domain.Post) PostResponse {
	return PostResponse{
		ID:           p.ID,
		AuthorID:     p.AuthorID,
		AuthorName:   p.AuthorName,
		AuthorAvatar: p.AuthorAvatar,
		Title:        p.Title,
		Content:      p.Content,
		Tags:         p.Tags,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		Score:        p.RelevanceScore,
		Highlights:   p.Highlights,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
}

// SearchResponse represents the search results response.
type SearchResponse struct {
	Posts      []PostResponse `json:"posts"`
	Pagination PaginationMeta `json:"pagination"`
	MaxScore   float64        `json:"max_score,omitempty"`
	LatencyMs  int64          `json:"latency_ms"`
}

// PaginationMeta holds pagination metadata.
type PaginationMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// FromSearchResult converts domain.SearchResult to SearchResponse.
func FromSearchResult(result *domain.SearchResult) SearchResponse {
	posts := make([]PostResponse, len(result.Posts))
	for i, p := range result.Posts {
		posts[i] = FromDomainPost(p)
	}

	return SearchResponse{
		Posts: posts,
		Pagination: PaginationMeta{
			Total:      result.TotalMatches,
			Page:       result.Page,
			PageSize:   result.PageSize,
			TotalPages: result.TotalPages,
			HasMore:    result.HasMore,
		},
		MaxScore:  result.MaxScore,
		LatencyMs: result.LatencyMs,
	}
}

// SuggestResponse represents the autocomplete response.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// TagsResponse represents the popular tags response.
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// TrendingEntry is one trending query with its search count.
type TrendingEntry struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// TrendingResponse represents the trending queries response.
type TrendingResponse struct {
	Queries []TrendingEntry `json:"queries"`
}

// FromTrendingQueries converts domain aggregates to the wire shape.
func FromTrendingQueries(queries []domain.TrendingQuery) TrendingResponse {
	entries := make([]TrendingEntry, len(queries))
	for i, q := range queries {
		entries[i] = TrendingEntry{Query: q.Query, Count: q.Count}
	}

	return TrendingResponse{Queries: entries}
}

// InvalidateResponse represents the cache invalidation response.
type InvalidateResponse struct {
	Scope string `json:"scope"` // "requester" or "all"
}

// ErrorResponse represents an error response. The zero Success value
// serializes as false, so literals need not set it.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// StatusForKind maps a domain error kind to an HTTP status code.
func StatusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindInvalidRequester:
		return http.StatusBadRequest
	case domain.KindBackendUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindExecutionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
