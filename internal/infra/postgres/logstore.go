package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"social-search-service/internal/domain"
)

// LogStore implements domain.SearchLogStore on the search_logs table.
// Writes arrive from the analytics sink only; nothing on the search path
// reads this table synchronously.
type LogStore struct {
	db *gorm.DB
}

// NewLogStore creates a new search-log store.
func NewLogStore(db *gorm.DB) *LogStore {
	return &LogStore{db: db}
}

// Append durably records one completed search.
func (s *LogStore) Append(ctx context.Context, log *domain.SearchLog) error {
	model := FromDomainLog(log)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("appending search log: %w", err)
	}

	return nil
}

// Trending returns the top-N query texts by search count within the window.
// Queries are grouped case-insensitively; empty query texts are excluded.
func (s *LogStore) Trending(ctx context.Context, window time.Duration, limit int) ([]domain.TrendingQuery, error) {
	type row struct {
		Query string
		Cnt   int64
	}
	var rows []row

	cutoff := time.Now().UTC().Add(-window)

	err := s.db.WithContext(ctx).
		Model(&SearchLogModel{}).
		Select("LOWER(query_text) AS query, COUNT(*) AS cnt").
		Where("query_text <> ''").
		Where("created_at >= ?", cutoff).
		Group("query").
		Order("cnt DESC, query ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating trending queries: %w", err)
	}

	trending := make([]domain.TrendingQuery, len(rows))
	for i, r := range rows {
		trending[i] = domain.TrendingQuery{Query: r.Query, Count: r.Cnt}
	}

	return trending, nil
}

// Prune deletes logs older than the retention period.
func (s *LogStore) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)

	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&SearchLogModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("pruning search logs: %w", result.Error)
	}

	return result.RowsAffected, nil
}
