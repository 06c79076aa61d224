package domain

import (
	"testing"
	"time"
)

func TestNewSearchResult_PaginationBoundaries(t *testing.T) {
	tests := []struct {
		name         string
		total        int64
		page         int
		pageSize     int
		expectedTP   int
		expectedMore bool
	}{
		{"45 matches first page", 45, 1, 20, 3, true},
		{"45 matches middle page", 45, 2, 20, 3, true},
		{"45 matches last page", 45, 3, 20, 3, false},
		{"exact multiple", 40, 2, 20, 2, false},
		{"single page", 7, 1, 20, 1, false},
		{"no matches", 0, 1, 20, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &SearchFilter{Page: tt.page, PageSize: tt.pageSize}
			r := NewSearchResult(nil, tt.total, f)

			if r.TotalPages != tt.expectedTP {
				t.Errorf("expected %d total pages, got %d", tt.expectedTP, r.TotalPages)
			}
			if r.HasMore != tt.expectedMore {
				t.Errorf("expected hasMore=%t, got %t", tt.expectedMore, r.HasMore)
			}
			if r.TotalMatches != tt.total {
				t.Errorf("expected total %d, got %d", tt.total, r.TotalMatches)
			}
		})
	}
}

func TestSortByRelevance_TieBreakByCreatedAt(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	build := func() []*Post {
		return []*Post{
			{ID: 1, RelevanceScore: 2.5, CreatedAt: older},
			{ID: 2, RelevanceScore: 2.5, CreatedAt: newer},
			{ID: 3, RelevanceScore: 9.1, CreatedAt: older},
		}
	}

	// Repeated sorts over identical inputs must yield identical orderings.
	for i := 0; i < 5; i++ {
		posts := build()
		SortByRelevance(posts)

		if posts[0].ID != 3 {
			t.Fatalf("expected highest score first, got post %d", posts[0].ID)
		}
		if posts[1].ID != 2 || posts[2].ID != 1 {
			t.Fatalf("score tie must order by createdAt desc, got %d then %d", posts[1].ID, posts[2].ID)
		}
	}
}

func TestSortByRelevance_IdenticalTimestampsFallBackToID(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := []*Post{
		{ID: 5, RelevanceScore: 1, CreatedAt: at},
		{ID: 9, RelevanceScore: 1, CreatedAt: at},
	}
	SortByRelevance(posts)

	if posts[0].ID != 9 {
		t.Errorf("expected id desc on full tie, got %d first", posts[0].ID)
	}
}
