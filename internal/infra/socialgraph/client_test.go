package socialgraph

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-search-service/internal/domain"
)

const testFriendsURL = "https://graph.example.com/api/v1/users/1/friends"

func newTestClient() *Client {
	cfg := ClientConfig{
		BaseURL: "https://graph.example.com",
		Timeout: 5 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: 2,
			WaitTime:    10 * time.Millisecond,
			MaxWaitTime: 50 * time.Millisecond,
		},
		CB: CBConfig{
			MaxRequests:  5,
			Interval:     60 * time.Second,
			Timeout:      15 * time.Second,
			FailureRatio: 0.6,
		},
	}
	client := New(cfg, zap.NewNop())

	httpmock.ActivateNonDefault(client.HTTPClient())

	return client
}

func TestClient_AcceptedFriendsOf_Success(t *testing.T) {
	client := newTestClient()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, testFriendsURL,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"user_id":    1,
			"friend_ids": []int64{2, 3, 5},
		}))

	friends, err := client.AcceptedFriendsOf(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 5}, friends)
}

func TestClient_AcceptedFriendsOf_UnknownRequester(t *testing.T) {
	client := newTestClient()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, testFriendsURL,
		httpmock.NewStringResponder(http.StatusNotFound, `{"error":"user not found"}`))

	_, err := client.AcceptedFriendsOf(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidRequester, domain.KindOf(err))
}

func TestClient_AcceptedFriendsOf_RetriesThenSucceeds(t *testing.T) {
	client := newTestClient()
	defer httpmock.DeactivateAndReset()

	calls := 0
	httpmock.RegisterResponder(http.MethodGet, testFriendsURL,
		func(*http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return httpmock.NewStringResponse(http.StatusInternalServerError, "boom"), nil
			}
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"user_id":    1,
				"friend_ids": []int64{2},
			})
		})

	friends, err := client.AcceptedFriendsOf(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, friends)
	assert.Equal(t, 2, calls)
}

func TestClient_AcceptedFriendsOf_ServerErrorSurfaces(t *testing.T) {
	client := newTestClient()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, testFriendsURL,
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	_, err := client.AcceptedFriendsOf(context.Background(), 1)
	require.Error(t, err)
	assert.NotEqual(t, domain.KindInvalidRequester, domain.KindOf(err))
}

func TestClient_AcceptedFriendsOf_EmptyFriendSet(t *testing.T) {
	client := newTestClient()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, testFriendsURL,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"user_id":    1,
			"friend_ids": []int64{},
		}))

	friends, err := client.AcceptedFriendsOf(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, friends)
}
