// Package socialgraph provides the HTTP client for the social graph
// collaborator, which resolves the accepted-friend set scoping every query.
package socialgraph

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"social-search-service/internal/domain"
)

// friendsEndpoint is the collaborator's accepted-friends resource.
const friendsEndpoint = "/api/v1/users/{user_id}/friends"

// ClientConfig holds connection, retry, and circuit-breaker settings.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Retry   RetryConfig
	CB      CBConfig
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int
	WaitTime    time.Duration
	MaxWaitTime time.Duration
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
}

// Client implements domain.SocialGraph over HTTP with retries and a circuit
// breaker. The graph service owns friendships; this client only reads them.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// friendsResponse is the collaborator's wire shape.
type friendsResponse struct {
	UserID    int64   `json:"user_id"`
	FriendIDs []int64 `json:"friend_ids"`
}

// New creates a social graph client.
func New(cfg ClientConfig, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retry.MaxAttempts).
		SetRetryWaitTime(cfg.Retry.WaitTime).
		SetRetryMaxWaitTime(cfg.Retry.MaxWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Retry on network errors or 5xx; a 404 is an answer, not a
			// failure.
			if err != nil {
				return true
			}

			return r.StatusCode() >= 500
		})

	settings := gobreaker.Settings{
		Name:        "social-graph",
		MaxRequests: cfg.CB.MaxRequests,
		Interval:    cfg.CB.Interval,
		Timeout:     cfg.CB.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.Requests >= 3 && failureRatio >= cfg.CB.FailureRatio
		},
	}

	return &Client{
		client: client,
		cb:     gobreaker.NewCircuitBreaker[*resty.Response](settings),
		logger: logger,
	}
}

// AcceptedFriendsOf returns the ids of the requester's accepted friends.
// An unknown requester maps to the invalid-requester error; transport and
// server failures surface as execution failures after retries.
func (c *Client) AcceptedFriendsOf(ctx context.Context, requesterID int64) ([]int64, error) {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		var result friendsResponse
		r, err := c.client.R().
			SetContext(ctx).
			SetPathParam("user_id", fmt.Sprintf("%d", requesterID)).
			SetResult(&result).
			Get(friendsEndpoint)
		if err != nil {
			return nil, err
		}
		if r.StatusCode() == http.StatusNotFound {
			// Known answer: the requester does not exist. Returned as a
			// response so the breaker doesn't count it as a failure.
			return r, nil
		}
		if r.IsError() {
			return nil, fmt.Errorf("social graph returned status %d", r.StatusCode())
		}

		return r, nil
	})
	if err != nil {
		c.logger.Warn("social graph lookup failed",
			zap.Int64("requester_id", requesterID),
			zap.String("breaker_state", c.cb.State().String()),
			zap.Error(err),
		)

		return nil, fmt.Errorf("fetching accepted friends: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, domain.NewInvalidRequester(requesterID)
	}

	result := resp.Result().(*friendsResponse)

	return result.FriendIDs, nil
}

// HealthCheck verifies the collaborator is accessible.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}

// HTTPClient exposes the underlying transport for test instrumentation.
func (c *Client) HTTPClient() *http.Client {
	return c.client.GetClient()
}
