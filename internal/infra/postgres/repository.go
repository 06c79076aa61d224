package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"social-search-service/internal/domain"
)

// likeEscaper neutralizes LIKE metacharacters so user text is matched
// literally in prefix patterns.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Repository implements domain.SearchBackend against PostgreSQL full-text
// search. Visibility scoping, filter composition, and the windowed total
// count all happen in a single query pass.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new PostgreSQL search backend.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Name returns the backend identity this executor serves.
func (r *Repository) Name() domain.Backend {
	return domain.BackendRelational
}

// searchRow carries one result row plus the window-function total so the
// count does not need a second round-trip.
type searchRow struct {
	PostModel    `gorm:"embedded"`
	TotalMatches int64 `gorm:"column:total_matches"`
}

// Search executes the compiled filter. The relational path always orders by
// recency; sortMode is ignored here because the engine has no per-row
// relevance ranking comparable to the index backend (documented deviation).
func (r *Repository) Search(ctx context.Context, f *domain.SearchFilter, visibleAuthors []int64) (*domain.ExecutorResult, error) {
	var rows []searchRow

	err := r.buildFilterQuery(ctx, f, visibleAuthors).
		Select("posts.*, COUNT(*) OVER () AS total_matches").
		Order("created_at DESC").
		Order("id DESC").
		Offset(f.Offset()).
		Limit(f.Limit()).
		Scan(&rows).Error
	if err != nil {
		return nil, domain.NewExecutionFailed(domain.BackendRelational, fmt.Errorf("searching posts: %w", err))
	}

	var total int64
	posts := make([]*domain.Post, len(rows))
	for i := range rows {
		posts[i] = rows[i].PostModel.ToDomain()
		total = rows[i].TotalMatches
	}

	// A page past the end returns zero rows, which loses the window count.
	if len(rows) == 0 && f.Page > 1 {
		if err := r.buildFilterQuery(ctx, f, visibleAuthors).Count(&total).Error; err != nil {
			return nil, domain.NewExecutionFailed(domain.BackendRelational, fmt.Errorf("counting posts: %w", err))
		}
	}

	return &domain.ExecutorResult{Posts: posts, TotalMatches: total}, nil
}

// Suggest returns titles of the top text-matched visible posts. This is an
// approximation of autocomplete, not a true prefix structure; the facade
// removes duplicates.
func (r *Repository) Suggest(ctx context.Context, f *domain.SearchFilter, visibleAuthors []int64, limit int) ([]string, error) {
	var titles []string

	err := r.db.WithContext(ctx).
		Model(&PostModel{}).
		Where("author_id IN ?", visibleAuthors).
		Where(
			"title ILIKE ? OR search_vector @@ websearch_to_tsquery('english', ?)",
			likeEscaper.Replace(f.QueryText)+"%", f.QueryText,
		).
		Order("created_at DESC").
		Limit(limit * 3). // headroom so dedupe can still fill the limit
		Pluck("title", &titles).Error
	if err != nil {
		return nil, domain.NewExecutionFailed(domain.BackendRelational, fmt.Errorf("suggesting titles: %w", err))
	}

	return titles, nil
}

// PopularTags aggregates tag usage across visible posts.
func (r *Repository) PopularTags(ctx context.Context, visibleAuthors []int64, limit int) ([]string, error) {
	type tagCount struct {
		Tag string
		Cnt int64
	}
	var counts []tagCount

	err := r.db.WithContext(ctx).
		Model(&PostModel{}).
		Select("unnest(tags) AS tag, COUNT(*) AS cnt").
		Where("author_id IN ?", visibleAuthors).
		Group("tag").
		Order("cnt DESC, tag ASC").
		Limit(limit).
		Scan(&counts).Error
	if err != nil {
		return nil, domain.NewExecutionFailed(domain.BackendRelational, fmt.Errorf("aggregating tags: %w", err))
	}

	tags := make([]string, len(counts))
	for i, c := range counts {
		tags[i] = c.Tag
	}

	return tags, nil
}

// buildFilterQuery composes the WHERE clause: a logical AND of the provided
// criteria. An absent criterion is simply omitted, never matched against a
// wildcard. All values are bound through GORM's parameterized queries.
func (r *Repository) buildFilterQuery(ctx context.Context, f *domain.SearchFilter, visibleAuthors []int64) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&PostModel{}).
		Where("author_id IN ?", visibleAuthors)

	// Full-text search over the weighted tsvector (title A, tags B,
	// content C). websearch_to_tsquery supports user-friendly syntax:
	// "word1 word2" → AND, "word1 OR word2" → OR, "-word" → NOT.
	if f.QueryText != "" {
		query = query.Where(
			"search_vector @@ websearch_to_tsquery('english', ?)",
			f.QueryText,
		)
	}

	// Tag-set overlap (array intersection, not exact equality).
	if len(f.Tags) > 0 {
		query = query.Where("tags && ?", pq.Array(f.Tags))
	}

	// Inclusive date-range bounds.
	if f.DateFrom != nil {
		query = query.Where("created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		query = query.Where("created_at <= ?", *f.DateTo)
	}

	// Exact author match narrows within the visible set.
	if f.FriendID != nil {
		query = query.Where("author_id = ?", *f.FriendID)
	}

	return query
}
