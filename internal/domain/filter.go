package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Backend identifies which search engine executes a query.
type Backend string

const (
	BackendRelational Backend = "relational"
	BackendIndex      Backend = "index"
)

// SortMode represents the requested result ordering.
type SortMode string

const (
	SortModeRelevance  SortMode = "relevance"
	SortModeDate       SortMode = "date"
	SortModePopularity SortMode = "popularity"
)

// MaxPageSize is the hard ceiling for a single result page. Requests above
// it are silently clamped, never rejected, so no backend ever receives a
// larger limit.
const MaxPageSize = 100

// DefaultPageSize is used when the caller provides no page size.
const DefaultPageSize = 20

// MinQueryTextLen is the minimum rune length for query text to act as a
// text criterion on suggestion-style calls. Shorter text is still accepted
// for full search.
const MinQueryTextLen = 2

// SearchFilter is the canonical, validated representation of one search
// request. Treat it as immutable once normalized; every field participates
// in the cache fingerprint.
type SearchFilter struct {
	RequesterID int64      // required, the searching user
	QueryText   string     // optional free text
	Tags        []string   // OR-matched against post tags
	DateFrom    *time.Time // inclusive lower bound
	DateTo      *time.Time // inclusive upper bound
	FriendID    *int64     // narrows to one author
	Page        int        // 1-indexed
	PageSize    int        // clamped to 1..MaxPageSize
	SortMode    SortMode
	Fuzzy       bool // index backend only
	Backend     Backend
}

// Normalize bound-corrects the filter in place. This is bound correction,
// not validation: out-of-range values are clamped, empty enums defaulted.
func (f *SearchFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.SortMode == "" {
		f.SortMode = SortModeRelevance
	}
	if f.Backend == "" {
		f.Backend = BackendRelational
	}
	f.QueryText = strings.TrimSpace(f.QueryText)
}

// Offset calculates the result window offset for pagination.
func (f *SearchFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Limit returns the page size (alias for clarity).
func (f *SearchFilter) Limit() int {
	return f.PageSize
}

// HasQueryText reports whether the query text is long enough to act as a
// text criterion.
func (f *SearchFilter) HasQueryText() bool {
	return utf8.RuneCountInString(strings.TrimSpace(f.QueryText)) >= MinQueryTextLen
}

// Summary renders a compact, human-readable description of the active
// criteria for analytics records.
func (f *SearchFilter) Summary() string {
	parts := []string{fmt.Sprintf("backend=%s", f.Backend), fmt.Sprintf("sort=%s", f.SortMode)}
	if f.QueryText != "" {
		parts = append(parts, fmt.Sprintf("q=%q", f.QueryText))
	}
	if len(f.Tags) > 0 {
		parts = append(parts, "tags="+strings.Join(f.Tags, ","))
	}
	if f.DateFrom != nil {
		parts = append(parts, "from="+f.DateFrom.UTC().Format(time.RFC3339))
	}
	if f.DateTo != nil {
		parts = append(parts, "to="+f.DateTo.UTC().Format(time.RFC3339))
	}
	if f.FriendID != nil {
		parts = append(parts, fmt.Sprintf("friend=%d", *f.FriendID))
	}
	if f.Fuzzy {
		parts = append(parts, "fuzzy")
	}

	return strings.Join(parts, " ")
}
