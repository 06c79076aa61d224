// Package domain contains the core business logic and entities.
// This package has no external dependencies (only stdlib).
package domain

import (
	"time"
)

// Post is the unit of retrieval. Posts are owned by the post store;
// this service only reads them and never mutates them.
type Post struct {
	ID           int64    `json:"id"`
	AuthorID     int64    `json:"author_id"`
	AuthorName   string   `json:"author_name"`
	AuthorAvatar string   `json:"author_avatar,omitempty"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Tags         []string `json:"tags,omitempty"`

	// Engagement counters
	LikeCount    int `json:"like_count"`
	CommentCount int `json:"comment_count"`

	// Relevance annotations, attached by the index executor only.
	// Zero score and nil Highlights mean the backend provided none;
	// callers fall back to the unmodified title/content.
	RelevanceScore float64  `json:"relevance_score,omitempty"`
	Highlights     []string `json:"highlights,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// HasHighlights reports whether the backend attached highlight fragments.
func (p *Post) HasHighlights() bool {
	return len(p.Highlights) > 0
}

// SearchLog is an append-only record of a completed search. It is written
// once per fresh computation and never read synchronously by the search path.
type SearchLog struct {
	RequesterID   int64     `json:"requester_id"`
	QueryText     string    `json:"query_text"`
	FilterSummary string    `json:"filter_summary"`
	ResultCount   int64     `json:"result_count"`
	LatencyMs     int64     `json:"latency_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// TrendingQuery is an aggregate over search logs: a query text and how
// often it was searched within the trending window.
type TrendingQuery struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}
