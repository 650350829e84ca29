package draft_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EnspecPower/analytics_hub/internal/draft"
)

type capturedCompletionRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

func completionServer(t *testing.T, statusCode int, responseBody string, captured *capturedCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		if captured != nil {
			require.NoError(t, json.NewDecoder(request.Body).Decode(captured))
		}
		require.Equal(t, "Bearer test-key", request.Header.Get("Authorization"))
		responseWriter.WriteHeader(statusCode)
		_, _ = responseWriter.Write([]byte(responseBody))
	}))
}

func TestGenerateDraftRequiresConfiguredAPIKey(t *testing.T) {
	client := draft.NewClient("")

	_, generateErr := client.GenerateDraft(context.Background(), draft.DraftRequest{Prompt: "grid reliability"})
	require.ErrorIs(t, generateErr, draft.ErrMissingAPIKey)
	require.False(t, client.Configured())
}

func TestGenerateDraftReturnsTrimmedCompletionText(t *testing.T) {
	var captured capturedCompletionRequest
	upstream := completionServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"  Drafted post #PowerAnalytics  "}}]}`, &captured)
	defer upstream.Close()

	client := draft.NewClient("test-key").WithEndpoint(upstream.URL)
	draftText, generateErr := client.GenerateDraft(context.Background(), draft.DraftRequest{Prompt: "grid reliability"})
	require.NoError(t, generateErr)
	require.Equal(t, "Drafted post #PowerAnalytics", draftText)

	require.Equal(t, "gpt-3.5-turbo", captured.Model)
	require.InDelta(t, 0.7, captured.Temperature, 0.001)
	require.Equal(t, 500, captured.MaxTokens)
	require.Len(t, captured.Messages, 2)
	require.Equal(t, "system", captured.Messages[0].Role)
	require.Contains(t, captured.Messages[1].Content, "grid reliability")
}

func TestGenerateDraftAppliesRequestDefaults(t *testing.T) {
	var captured capturedCompletionRequest
	upstream := completionServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`, &captured)
	defer upstream.Close()

	client := draft.NewClient("test-key").WithEndpoint(upstream.URL)
	_, generateErr := client.GenerateDraft(context.Background(), draft.DraftRequest{})
	require.NoError(t, generateErr)

	userPrompt := captured.Messages[1].Content
	require.Contains(t, userPrompt, "professional")
	require.Contains(t, userPrompt, "industry insight")
	require.Contains(t, userPrompt, "approximately 300 words")
}

func TestGenerateDraftWrapsUpstreamErrorStatus(t *testing.T) {
	upstream := completionServer(t, http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`, nil)
	defer upstream.Close()

	client := draft.NewClient("test-key").WithEndpoint(upstream.URL)
	_, generateErr := client.GenerateDraft(context.Background(), draft.DraftRequest{Prompt: "anything"})
	require.ErrorIs(t, generateErr, draft.ErrUpstreamFailure)
	require.Contains(t, generateErr.Error(), "429")
}

func TestGenerateDraftRejectsEmptyChoiceList(t *testing.T) {
	upstream := completionServer(t, http.StatusOK, `{"choices":[]}`, nil)
	defer upstream.Close()

	client := draft.NewClient("test-key").WithEndpoint(upstream.URL)
	_, generateErr := client.GenerateDraft(context.Background(), draft.DraftRequest{Prompt: "anything"})
	require.ErrorIs(t, generateErr, draft.ErrEmptyCompletion)
}

func TestGenerateDraftHonorsContextCancellation(t *testing.T) {
	upstream := completionServer(t, http.StatusOK, `{"choices":[]}`, nil)
	defer upstream.Close()

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	client := draft.NewClient("test-key").WithEndpoint(upstream.URL)
	_, generateErr := client.GenerateDraft(cancelledContext, draft.DraftRequest{Prompt: "anything"})
	require.ErrorIs(t, generateErr, draft.ErrUpstreamFailure)
	require.ErrorIs(t, generateErr, context.Canceled)
}

func TestWithDefaultsPreservesExplicitValues(t *testing.T) {
	filled := draft.DraftRequest{
		Prompt:      "storm response",
		ContentType: "company_update",
		Tone:        "casual",
		WordCount:   120,
	}.WithDefaults()

	require.Equal(t, "storm response", filled.Prompt)
	require.Equal(t, "company_update", filled.ContentType)
	require.Equal(t, "casual", filled.Tone)
	require.Equal(t, 120, filled.WordCount)
}
