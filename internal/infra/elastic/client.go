// Package elastic implements the index search backend on Elasticsearch:
// weighted multi-field matching, fuzziness, highlights, sort clauses, and
// tag aggregations.
package elastic

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

// Config holds Elasticsearch connection settings.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

// Enabled reports whether an index connection is configured at all. When
// false, filters routed to the index backend get a backend-unavailable
// error from the facade.
func (c *Config) Enabled() bool {
	return len(c.Addresses) > 0
}

// NewClient creates an Elasticsearch client and verifies connectivity.
// transport may be nil outside of tests.
func NewClient(cfg Config, transport http.RoundTripper, logger *zap.Logger) (*elasticsearch.Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}

	res, err := es.Info()
	if err != nil {
		return nil, fmt.Errorf("pinging elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info returned status %d", res.StatusCode)
	}

	if logger != nil {
		logger.Info("elasticsearch connection established",
			zap.Strings("addresses", cfg.Addresses),
			zap.String("index", cfg.Index),
		)
	}

	return es, nil
}

// postsIndexMapping defines the posts index. keyword fields back the exact
// filters and the tags aggregation; text fields back scoring and highlights.
const postsIndexMapping = `{
	"mappings": {
		"properties": {
			"id":            {"type": "long"},
			"author_id":     {"type": "long"},
			"author_name":   {"type": "text", "fields": {"raw": {"type": "keyword"}}},
			"author_avatar": {"type": "keyword", "index": false},
			"title":         {"type": "text"},
			"content":       {"type": "text"},
			"tags":          {"type": "keyword"},
			"like_count":    {"type": "integer"},
			"comment_count": {"type": "integer"},
			"created_at":    {"type": "date"}
		}
	}
}`

// EnsureIndex creates the posts index with its mapping when absent.
func EnsureIndex(ctx context.Context, es *elasticsearch.Client, index string) error {
	exists, err := es.Indices.Exists([]string{index}, es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("checking index %q: %w", index, err)
	}
	defer exists.Body.Close()

	if exists.StatusCode == http.StatusOK {
		return nil
	}
	if exists.StatusCode != http.StatusNotFound {
		return fmt.Errorf("checking index %q: status %d", index, exists.StatusCode)
	}

	res, err := es.Indices.Create(
		index,
		es.Indices.Create.WithContext(ctx),
		es.Indices.Create.WithBody(strings.NewReader(postsIndexMapping)),
	)
	if err != nil {
		return fmt.Errorf("creating index %q: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("creating index %q: status %d", index, res.StatusCode)
	}

	return nil
}
