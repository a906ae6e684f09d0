package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const openAIBaseURL = "https://api.openai.com/v1/chat/completions"

const openAIDefaultModel = "gpt-4o-mini"

// OpenAI implements Analyzer using the OpenAI Chat Completions API with a
// vision message (image as data URI). Any OpenAI-compatible endpoint works;
// it is used as the second link in a Fallback chain behind Gemini.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAI returns an Analyzer that uses the OpenAI API with the given API
// key. An empty model selects gpt-4o-mini.
func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = openAIDefaultModel
	}
	return &OpenAI{
		apiKey:  apiKey,
		model:   model,
		baseURL: openAIBaseURL,
		client:  http.DefaultClient,
	}
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	ResponseFormat json.RawMessage `json:"response_format"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string for system, content parts for user
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze sends the image to the Chat Completions API and decodes the JSON
// reply. All failures come back as *ServiceError.
func (c *OpenAI) Analyze(ctx context.Context, img Image) (Result, error) {
	if c.apiKey == "" {
		return Result{}, &ServiceError{Kind: KindUnconfigured, Op: "openai"}
	}
	reqBody := openAIRequest{
		Model: c.model,
		Messages: []openAIMessage{
			{Role: "system", Content: geminiSystemPrompt},
			{Role: "user", Content: []openAIContentPart{
				{Type: "image_url", ImageURL: &openAIImageURL{
					URL: "data:" + img.MIMEType + ";base64," + img.Data,
				}},
				{Type: "text", Text: "Analyze this product image. Return a JSON object with keys title, description, category, estimatedPrice, shape, materialAnalysis. shape must be box, cylinder, sphere, or plane."},
			}},
		},
		ResponseFormat: json.RawMessage(`{"type":"json_object"}`),
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, &ServiceError{Kind: KindUnavailable, Op: "openai", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, &ServiceError{Kind: KindUnavailable, Op: "openai", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, &ServiceError{Kind: KindUnavailable, Op: "openai", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Result{}, &ServiceError{Kind: KindRateLimited, Op: "openai", Err: fmt.Errorf("%s", resp.Status)}
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return Result{}, &ServiceError{Kind: KindUnconfigured, Op: "openai", Err: fmt.Errorf("%s", resp.Status)}
	case resp.StatusCode != http.StatusOK:
		return Result{}, &ServiceError{Kind: KindUnavailable, Op: "openai", Err: fmt.Errorf("%s", resp.Status)}
	}

	var out openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, &ServiceError{Kind: KindUnavailable, Op: "openai", Err: err}
	}
	if len(out.Choices) == 0 {
		return Result{}, &ServiceError{Kind: KindUnavailable, Op: "openai", Err: fmt.Errorf("no choices in response")}
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	var w wireResult
	if err := json.Unmarshal([]byte(content), &w); err != nil {
		return Result{}, &ServiceError{Kind: KindUnavailable, Op: "openai", Err: fmt.Errorf("bad result payload: %w", err)}
	}
	return sanitize(w), nil
}
