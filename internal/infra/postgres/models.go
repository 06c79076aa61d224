package postgres

import (
	"time"

	"social-search-service/internal/domain"

	"github.com/lib/pq"
)

// PostModel is the GORM model for the posts table. The post store owns this
// data; the search core only reads it.
type PostModel struct {
	ID           int64          `gorm:"primaryKey"`
	AuthorID     int64          `gorm:"not null;index"`
	AuthorName   string         `gorm:"type:varchar(100);not null"`
	AuthorAvatar string         `gorm:"type:varchar(500)"`
	Title        string         `gorm:"type:varchar(500);not null"`
	Content      string         `gorm:"type:text;not null"`
	Tags         pq.StringArray `gorm:"type:text[]"`

	LikeCount    int `gorm:"default:0"`
	CommentCount int `gorm:"default:0"`

	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for PostModel.
func (PostModel) TableName() string {
	return "posts"
}

// ToDomain converts PostModel to domain.Post.
func (m *PostModel) ToDomain() *domain.Post {
	return &domain.Post{
		ID:           m.ID,
		AuthorID:     m.AuthorID,
		AuthorName:   m.AuthorName,
		AuthorAvatar: m.AuthorAvatar,
		Title:        m.Title,
		Content:      m.Content,
		Tags:         m.Tags,
		LikeCount:    m.LikeCount,
		CommentCount: m.CommentCount,
		CreatedAt:    m.CreatedAt,
	}
}

// SearchLogModel is the GORM model for the search_logs table.
type SearchLogModel struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	RequesterID   int64  `gorm:"not null;index"`
	QueryText     string `gorm:"type:varchar(200)"`
	FilterSummary string `gorm:"type:varchar(500)"`
	ResultCount   int64
	LatencyMs     int64
	CreatedAt     time.Time `gorm:"not null;index"`
}

// TableName returns the table name for SearchLogModel.
func (SearchLogModel) TableName() string {
	return "search_logs"
}

// FromDomainLog creates a SearchLogModel from a domain.SearchLog.
func FromDomainLog(l *domain.SearchLog) *SearchLogModel {
	return &SearchLogModel{
		RequesterID:   l.RequesterID,
		QueryText:     l.QueryText,
		FilterSummary: l.FilterSummary,
		ResultCount:   l.ResultCount,
		LatencyMs:     l.LatencyMs,
		CreatedAt:     l.CreatedAt,
	}
}
