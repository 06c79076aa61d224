// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import (
	"strings"
	"time"

	"social-search-service/internal/domain"
)

// dateOnly is the short form accepted for date bounds alongside RFC3339.
const dateOnly = "2006-01-02"

// SearchRequest represents the query parameters for searching posts.
// The requester id comes from the X-User-ID header, not the query string.
type SearchRequest struct {
	Query    string `query:"q" validate:"max=200"`
	Tags     string `query:"tags" validate:"max=300"` // comma-separated
	DateFrom string `query:"date_from" validate:"omitempty,max=35"`
	DateTo   string `query:"date_to" validate:"omitempty,max=35"`
	FriendID int64  `query:"friend_id" validate:"omitempty,min=1"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	// No upper bound here: an oversized page_size is silently clamped to
	// the domain ceiling during normalization, never rejected.
	PageSize int    `query:"page_size" validate:"omitempty,min=1"`
	SortBy   string `query:"sort_by" validate:"omitempty,oneof=relevance date popularity"`
	Fuzzy    bool   `query:"fuzzy"`
	Backend  string `query:"backend" validate:"omitempty,oneof=relational index"`
}

// ToFilter converts the request into a domain filter for the given
// requester. Date parsing failures surface as validation errors so the
// caller gets a 400 rather than a silently dropped bound.
func (r *SearchRequest) ToFilter(requesterID int64) (*domain.SearchFilter, error) {
	filter := &domain.SearchFilter{
		RequesterID: requesterID,
		QueryText:   r.Query,
		Tags:        splitTags(r.Tags),
		Page:        r.Page,
		PageSize:    r.PageSize,
		SortMode:    domain.SortMode(r.SortBy),
		Fuzzy:       r.Fuzzy,
		Backend:     domain.Backend(r.Backend),
	}

	if r.FriendID > 0 {
		id := r.FriendID
		filter.FriendID = &id
	}

	if r.DateFrom != "" {
		from, err := parseDate(r.DateFrom, false)
		if err != nil {
			return nil, domain.NewValidationError("date_from: %v", err)
		}
		filter.DateFrom = &from
	}
	if r.DateTo != "" {
		to, err := parseDate(r.DateTo, true)
		if err != nil {
			return nil, domain.NewValidationError("date_to: %v", err)
		}
		filter.DateTo = &to
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, domain.NewValidationError("date_to must not precede date_from")
	}

	return filter, nil
}

// parseDate accepts RFC3339 or a bare date. A bare date used as an upper
// bound is widened to the end of that day so "to=2026-01-15" includes the
// whole of the 15th.
func parseDate(s string, upperBound bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	if upperBound {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}

	return t, nil
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}

	return tags
}

// SuggestRequest represents the query parameters for title autocomplete.
type SuggestRequest struct {
	Prefix string `query:"q" validate:"max=100"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=50"`
}

// TagsRequest represents the query parameters for the popular tags listing.
type TagsRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=50"`
}

// TrendingRequest represents the query parameters for trending queries.
type TrendingRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=50"`
}

// InvalidateRequest represents the body for the admin cache invalidation
// endpoint. A nil RequesterID flushes the whole cache.
type InvalidateRequest struct {
	RequesterID *int64 `json:"requester_id" validate:"omitempty,min=1"`
}
