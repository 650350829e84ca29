package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultContentType is applied when a request omits its content type.
	DefaultContentType = "industry_insight"
	// DefaultTone is applied when a request omits its tone.
	DefaultTone = "professional"
	// DefaultWordCount is applied when a request omits its word count.
	DefaultWordCount = 300

	defaultCompletionsEndpoint = "https://api.openai.com/v1/chat/completions"
	completionsModel           = "gpt-3.5-turbo"
	completionsTemperature     = 0.7
	completionsMaxTokens       = 500
	defaultRequestTimeout      = 60 * time.Second

	systemRoleName = "system"
	userRoleName   = "user"
	systemPrompt   = "You are a professional LinkedIn content creator for a power analytics company."
	defaultTopic   = "Enspec Power's analytics solutions"

	headerNameAuthorization  = "Authorization"
	headerNameContentType    = "Content-Type"
	headerValueJSON          = "application/json"
	bearerTokenPrefix        = "Bearer "
	contentTypeWordSeparator = " "
	contentTypeKeySeparator  = "_"

	errorMessageMissingAPIKey   = "draft: missing upstream api key"
	errorMessageUpstreamFailure = "draft: upstream completion call failed"
	errorMessageEmptyCompletion = "draft: upstream returned no completion choices"
	errorMessageEncodeRequest   = "draft: encode completion request"
	errorMessageBuildRequest    = "draft: build completion request"
	errorMessageDecodeResponse  = "draft: decode completion response"
)

var (
	// ErrMissingAPIKey indicates the upstream credential was never configured.
	ErrMissingAPIKey = errors.New(errorMessageMissingAPIKey)
	// ErrUpstreamFailure indicates the completion call failed or returned a non-success status.
	ErrUpstreamFailure = errors.New(errorMessageUpstreamFailure)
	// ErrEmptyCompletion indicates the upstream response carried no usable choices.
	ErrEmptyCompletion = errors.New(errorMessageEmptyCompletion)
)

// HTTPDoer executes HTTP requests.
type HTTPDoer interface {
	Do(request *http.Request) (*http.Response, error)
}

// DraftRequest describes one content-draft generation. All fields are optional;
// WithDefaults fills the documented defaults before dispatch.
type DraftRequest struct {
	Prompt      string `json:"prompt"`
	ContentType string `json:"contentType"`
	Tone        string `json:"tone"`
	WordCount   int    `json:"wordCount"`
}

// WithDefaults returns a copy of the request with blank fields filled in.
func (request DraftRequest) WithDefaults() DraftRequest {
	filledRequest := request
	if strings.TrimSpace(filledRequest.Prompt) == "" {
		filledRequest.Prompt = defaultTopic
	}
	if strings.TrimSpace(filledRequest.ContentType) == "" {
		filledRequest.ContentType = DefaultContentType
	}
	if strings.TrimSpace(filledRequest.Tone) == "" {
		filledRequest.Tone = DefaultTone
	}
	if filledRequest.WordCount <= 0 {
		filledRequest.WordCount = DefaultWordCount
	}
	return filledRequest
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string              `json:"model"`
	Messages    []completionMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message completionMessage `json:"message"`
	} `json:"choices"`
}

// Client is a stateless pass-through to the hosted chat-completions API.
type Client struct {
	httpClient HTTPDoer
	apiKey     string
	endpoint   string
}

// NewClient creates a Client using the provided upstream credential.
func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		apiKey:     strings.TrimSpace(apiKey),
		endpoint:   defaultCompletionsEndpoint,
	}
}

// WithHTTPClient overrides the HTTP client dependency.
func (client *Client) WithHTTPClient(httpClient HTTPDoer) *Client {
	client.httpClient = httpClient
	return client
}

// WithEndpoint overrides the completions endpoint.
func (client *Client) WithEndpoint(endpoint string) *Client {
	client.endpoint = endpoint
	return client
}

// Configured reports whether an upstream credential is present.
func (client *Client) Configured() bool {
	return client.apiKey != ""
}

// GenerateDraft fills the request defaults, dispatches the completion call,
// and returns the drafted text. The context governs cancellation; a caller
// that navigates away cancels the request and discards the result.
func (client *Client) GenerateDraft(ctx context.Context, request DraftRequest) (string, error) {
	if !client.Configured() {
		return "", ErrMissingAPIKey
	}

	filledRequest := request.WithDefaults()
	completionPayload := completionRequest{
		Model: completionsModel,
		Messages: []completionMessage{
			{Role: systemRoleName, Content: systemPrompt},
			{Role: userRoleName, Content: BuildContextPrompt(filledRequest)},
		},
		Temperature: completionsTemperature,
		MaxTokens:   completionsMaxTokens,
	}

	encodedPayload, encodeErr := json.Marshal(completionPayload)
	if encodeErr != nil {
		return "", fmt.Errorf("%s: %w", errorMessageEncodeRequest, encodeErr)
	}

	httpRequest, requestErr := http.NewRequestWithContext(ctx, http.MethodPost, client.endpoint, bytes.NewReader(encodedPayload))
	if requestErr != nil {
		return "", fmt.Errorf("%s: %w", errorMessageBuildRequest, requestErr)
	}
	httpRequest.Header.Set(headerNameAuthorization, bearerTokenPrefix+client.apiKey)
	httpRequest.Header.Set(headerNameContentType, headerValueJSON)

	httpResponse, callErr := client.httpClient.Do(httpRequest)
	if callErr != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstreamFailure, callErr)
	}
	defer func() {
		_ = httpResponse.Body.Close()
	}()

	if httpResponse.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstreamFailure, httpResponse.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	var decodedResponse completionResponse
	if decodeErr := json.NewDecoder(httpResponse.Body).Decode(&decodedResponse); decodeErr != nil {
		return "", fmt.Errorf("%s: %w", errorMessageDecodeResponse, decodeErr)
	}
	if len(decodedResponse.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return strings.TrimSpace(decodedResponse.Choices[0].Message.Content), nil
}

// BuildContextPrompt renders the upstream user prompt for a filled request.
func BuildContextPrompt(filledRequest DraftRequest) string {
	readableContentType := strings.ReplaceAll(filledRequest.ContentType, contentTypeKeySeparator, contentTypeWordSeparator)

	var promptBuilder strings.Builder
	promptBuilder.WriteString("You are a professional content creator specializing in LinkedIn posts for the power analytics industry at Enspec Power. ")
	promptBuilder.WriteString(fmt.Sprintf("Create a %s %s LinkedIn post ", filledRequest.Tone, readableContentType))
	promptBuilder.WriteString(fmt.Sprintf("about: %s ", filledRequest.Prompt))
	promptBuilder.WriteString(fmt.Sprintf("that is approximately %d words long. Include 2-3 relevant hashtags at the end. ", filledRequest.WordCount))
	promptBuilder.WriteString("Focus on being authentic, insightful, and valuable to the reader. ")
	promptBuilder.WriteString(fmt.Sprintf("The tone should be %s and suitable for a professional B2B audience in the energy sector.", filledRequest.Tone))
	return promptBuilder.String()
}
