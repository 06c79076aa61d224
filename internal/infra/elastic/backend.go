package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"social-search-service/internal/domain"
)

// Backend implements domain.SearchBackend against Elasticsearch.
type Backend struct {
	es     *elasticsearch.Client
	index  string
	logger *zap.Logger
}

// NewBackend creates the index backend executor.
func NewBackend(es *elasticsearch.Client, index string, logger *zap.Logger) *Backend {
	return &Backend{es: es, index: index, logger: logger}
}

// Name returns the backend identity this executor serves.
func (b *Backend) Name() domain.Backend {
	return domain.BackendIndex
}

// postDocument mirrors the posts index mapping.
type postDocument struct {
	ID           int64     `json:"id"`
	AuthorID     int64     `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// searchResponse decodes the slice of the ES response this backend uses.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			Score     *float64            `json:"_score"`
			Source    postDocument        `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations struct {
		Tags struct {
			Buckets []struct {
				Key      string `json:"key"`
				DocCount int64  `json:"doc_count"`
			} `json:"buckets"`
		} `json:"tags"`
	} `json:"aggregations"`
}

// Search executes the compiled index query and normalizes scored,
// highlighted hits into the common result shape.
func (b *Backend) Search(ctx context.Context, f *domain.SearchFilter, visibleAuthors []int64) (*domain.ExecutorResult, error) {
	resp, err := b.execute(ctx, buildSearchBody(f, visibleAuthors))
	if err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, len(resp.Hits.Hits))
	for i, hit := range resp.Hits.Hits {
		post := docToDomain(&hit.Source)
		if hit.Score != nil {
			post.RelevanceScore = *hit.Score
		}
		post.Highlights = flattenHighlights(hit.Highlight)
		posts[i] = post
	}

	result := &domain.ExecutorResult{
		Posts:        posts,
		TotalMatches: resp.Hits.Total.Value,
	}
	if resp.Hits.MaxScore != nil {
		result.MaxScore = *resp.Hits.MaxScore
	}

	return result, nil
}

// Suggest returns titles matched by a prefix query. The facade deduplicates.
func (b *Backend) Suggest(ctx context.Context, f *domain.SearchFilter, visibleAuthors []int64, limit int) ([]string, error) {
	resp, err := b.execute(ctx, buildSuggestBody(f.QueryText, visibleAuthors, limit))
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		titles = append(titles, hit.Source.Title)
	}

	return titles, nil
}

// PopularTags runs the terms aggregation over visible posts.
func (b *Backend) PopularTags(ctx context.Context, visibleAuthors []int64, limit int) ([]string, error) {
	resp, err := b.execute(ctx, buildPopularTagsBody(visibleAuthors, limit))
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(resp.Aggregations.Tags.Buckets))
	for _, bucket := range resp.Aggregations.Tags.Buckets {
		tags = append(tags, bucket.Key)
	}

	return tags, nil
}

// execute sends one query body to the index and decodes the response. Any
// transport or engine failure surfaces as an execution-failed error carrying
// the backend identity.
func (b *Backend) execute(ctx context.Context, body map[string]any) (*searchResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, domain.NewExecutionFailed(domain.BackendIndex, fmt.Errorf("encoding query: %w", err))
	}

	res, err := b.es.Search(
		b.es.Search.WithContext(ctx),
		b.es.Search.WithIndex(b.index),
		b.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, domain.NewExecutionFailed(domain.BackendIndex, fmt.Errorf("executing query: %w", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, domain.NewExecutionFailed(domain.BackendIndex, errorFromResponse(res))
	}

	var decoded searchResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, domain.NewExecutionFailed(domain.BackendIndex, fmt.Errorf("decoding response: %w", err))
	}

	return &decoded, nil
}

// errorFromResponse extracts the engine's error reason without leaking the
// full response upward.
func errorFromResponse(res *esapi.Response) error {
	var e struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if body, err := io.ReadAll(res.Body); err == nil {
		if json.Unmarshal(body, &e) == nil && e.Error.Type != "" {
			return fmt.Errorf("engine error %s: %s", e.Error.Type, e.Error.Reason)
		}
	}

	return fmt.Errorf("engine returned status %d", res.StatusCode)
}

func docToDomain(d *postDocument) *domain.Post {
	return &domain.Post{
		ID:           d.ID,
		AuthorID:     d.AuthorID,
		AuthorName:   d.AuthorName,
		AuthorAvatar: d.AuthorAvatar,
		Title:        d.Title,
		Content:      d.Content,
		Tags:         d.Tags,
		LikeCount:    d.LikeCount,
		CommentCount: d.CommentCount,
		CreatedAt:    d.CreatedAt,
	}
}

// flattenHighlights merges per-field fragments, title first, preserving the
// engine's fragment order. Nil when the engine sent none: the caller then
// falls back to the unmodified title/content rather than synthesizing
// highlighting.
func flattenHighlights(fields map[string][]string) []string {
	if len(fields) == 0 {
		return nil
	}

	fragments := make([]string, 0, 4)
	fragments = append(fragments, fields["title"]...)
	fragments = append(fragments, fields["content"]...)
	if len(fragments) == 0 {
		return nil
	}

	return fragments
}
