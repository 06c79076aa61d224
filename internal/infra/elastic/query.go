package elastic

import (
	"time"

	"social-search-service/internal/domain"
)

// Field weights for the multi-field match: title dominates, author name is
// second, the body lowest.
const (
	fieldTitle   = "title^3"
	fieldAuthor  = "author_name^2"
	fieldContent = "content"
)

// buildSearchBody compiles a filter into an Elasticsearch query body. The
// text match goes into must (it scores); tags, date range, visibility, and
// the friend narrowing are filter clauses (they don't).
func buildSearchBody(f *domain.SearchFilter, visibleAuthors []int64) map[string]any {
	boolQuery := map[string]any{
		"filter": buildFilterClauses(f, visibleAuthors),
	}

	if f.QueryText != "" {
		match := map[string]any{
			"query":  f.QueryText,
			"fields": []string{fieldTitle, fieldAuthor, fieldContent},
		}
		if f.Fuzzy {
			// AUTO picks the edit-distance tolerance by token length.
			match["fuzziness"] = "AUTO"
		}
		boolQuery["must"] = []any{map[string]any{"multi_match": match}}
	}

	body := map[string]any{
		"query":            map[string]any{"bool": boolQuery},
		"from":             f.Offset(),
		"size":             f.Limit(),
		"track_total_hits": true,
		"highlight": map[string]any{
			"fields": map[string]any{
				"title":   map[string]any{},
				"content": map[string]any{"fragment_size": 150, "number_of_fragments": 3},
			},
		},
	}

	if sort := buildSortClauses(f.SortMode); sort != nil {
		body["sort"] = sort
	}

	return body
}

// buildFilterClauses assembles the AND-combined non-scoring criteria. An
// absent criterion is omitted, never matched against a wildcard.
func buildFilterClauses(f *domain.SearchFilter, visibleAuthors []int64) []any {
	clauses := []any{
		map[string]any{"terms": map[string]any{"author_id": visibleAuthors}},
	}

	if len(f.Tags) > 0 {
		// terms = set overlap: any shared tag matches.
		clauses = append(clauses, map[string]any{"terms": map[string]any{"tags": f.Tags}})
	}

	if f.DateFrom != nil || f.DateTo != nil {
		bounds := map[string]any{}
		if f.DateFrom != nil {
			bounds["gte"] = f.DateFrom.UTC().Format(time.RFC3339)
		}
		if f.DateTo != nil {
			bounds["lte"] = f.DateTo.UTC().Format(time.RFC3339)
		}
		clauses = append(clauses, map[string]any{"range": map[string]any{"created_at": bounds}})
	}

	if f.FriendID != nil {
		clauses = append(clauses, map[string]any{"term": map[string]any{"author_id": *f.FriendID}})
	}

	return clauses
}

// buildSortClauses maps the sort mode to explicit sort clauses. Recency is
// always the final tiebreak.
func buildSortClauses(mode domain.SortMode) []any {
	switch mode {
	case domain.SortModeDate:
		return []any{map[string]any{"created_at": "desc"}}
	case domain.SortModePopularity:
		return []any{
			map[string]any{"like_count": "desc"},
			map[string]any{"comment_count": "desc"},
			map[string]any{"created_at": "desc"},
		}
	case domain.SortModeRelevance:
		return []any{"_score", map[string]any{"created_at": "desc"}}
	default:
		return nil
	}
}

// buildSuggestBody compiles a prefix query over titles for autocomplete.
func buildSuggestBody(prefix string, visibleAuthors []int64, limit int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{"match_phrase_prefix": map[string]any{"title": prefix}},
				},
				"filter": []any{
					map[string]any{"terms": map[string]any{"author_id": visibleAuthors}},
				},
			},
		},
		"_source": []string{"title"},
		"size":    limit * 3, // headroom so dedupe can still fill the limit
		"sort":    []any{"_score", map[string]any{"created_at": "desc"}},
	}
}

// buildPopularTagsBody compiles a size-0 terms aggregation over tags.
func buildPopularTagsBody(visibleAuthors []int64, limit int) map[string]any {
	return map[string]any{
		"size": 0,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"terms": map[string]any{"author_id": visibleAuthors}},
				},
			},
		},
		"aggs": map[string]any{
			"tags": map[string]any{
				"terms": map[string]any{"field": "tags", "size": limit},
			},
		},
	}
}
