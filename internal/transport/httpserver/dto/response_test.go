package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-search-service/internal/domain"
)

// TestEnvelope_SuccessShape verifies the stable response contract: every
// successful payload is wrapped as {"success": true, "data": ...}.
func TestEnvelope_SuccessShape(t *testing.T) {
	filter := &domain.SearchFilter{RequesterID: 1}
	filter.Normalize()
	result := domain.NewSearchResult([]*domain.Post{
		{ID: 1, AuthorID: 2, Title: "Go Concurrency", CreatedAt: time.Now()},
	}, 1, filter)

	raw, err := json.Marshal(Success(FromSearchResult(result)))
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.Contains(t, decoded, "success")
	assert.Equal(t, "true", string(decoded["success"]))

	require.Contains(t, decoded, "data")
	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decoded["data"], &data))
	assert.Contains(t, data, "posts")
	assert.Contains(t, data, "pagination")
}

// TestErrorResponse_FailureShape verifies failures carry success=false and
// the error message without any literal needing to set the flag.
func TestErrorResponse_FailureShape(t *testing.T) {
	raw, err := json.Marshal(ErrorResponse{
		Error: "no live connection for backend \"index\"",
		Code:  string(domain.KindBackendUnavailable),
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, false, decoded["success"])
	assert.Equal(t, "no live connection for backend \"index\"", decoded["error"])
	assert.Equal(t, "backend_unavailable", decoded["code"])
}
