package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const geminiDefaultModel = "gemini-3-flash-preview"

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// geminiSystemPrompt tells the model what to extract from the photo. The
// response schema below constrains the output to the Result fields.
const geminiSystemPrompt = `You are an expert 3D modeling assistant.
Analyze the 2D product image and determine the best 3D primitive shape ('box', 'cylinder', 'sphere', 'plane').
Generate a catchy title, description, category, estimated price, and material analysis.`

// Gemini implements Analyzer using the Gemini generateContent API with a
// structured JSON response schema.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGemini returns an Analyzer that uses the Gemini API with the given API
// key. An empty model selects the default flash model.
func NewGemini(apiKey, model string) *Gemini {
	if model == "" {
		model = geminiDefaultModel
	}
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiBaseURL,
		client:  http.DefaultClient,
	}
}

type geminiRequest struct {
	SystemInstruction geminiContent   `json:"systemInstruction"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	ResponseMIMEType string          `json:"responseMimeType"`
	ResponseSchema   json.RawMessage `json:"responseSchema"`
}

// geminiResponseSchema constrains the model output to the wireResult fields.
var geminiResponseSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"title": {"type": "STRING"},
		"description": {"type": "STRING"},
		"category": {"type": "STRING"},
		"estimatedPrice": {"type": "NUMBER"},
		"shape": {"type": "STRING", "enum": ["box", "cylinder", "sphere", "plane"]},
		"materialAnalysis": {"type": "STRING"}
	},
	"required": ["title", "description", "category", "estimatedPrice", "shape", "materialAnalysis"]
}`)

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Analyze sends the image to Gemini and decodes the structured JSON reply.
// All failures come back as *ServiceError so the workflow can pick a fallback.
func (c *Gemini) Analyze(ctx context.Context, img Image) (Result, error) {
	if c.apiKey == "" {
		return Result{}, &ServiceError{Kind: KindUnconfigured, Op: "gemini"}
	}
	reqBody := geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: geminiSystemPrompt}}},
		Contents: []geminiContent{{Parts: []geminiPart{
			{InlineData: &geminiInlineData{MIMEType: img.MIMEType, Data: img.Data}},
			{Text: "Analyze this product image. Return a JSON object with product details."},
		}}},
		GenerationConfig: geminiGenConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   geminiResponseSchema,
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, &ServiceError{Kind: KindUnavailable, Op: "gemini", Err: err}
	}
	url := fmt.Sprintf("%s/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, &ServiceError{Kind: KindUnavailable, Op: "gemini", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, &ServiceError{Kind: KindUnavailable, Op: "gemini", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Result{}, &ServiceError{Kind: KindRateLimited, Op: "gemini", Err: fmt.Errorf("%s", resp.Status)}
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return Result{}, &ServiceError{Kind: KindUnconfigured, Op: "gemini", Err: fmt.Errorf("%s", resp.Status)}
	case resp.StatusCode != http.StatusOK:
		return Result{}, &ServiceError{Kind: KindUnavailable, Op: "gemini", Err: fmt.Errorf("%s", resp.Status)}
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, &ServiceError{Kind: KindUnavailable, Op: "gemini", Err: err}
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return Result{}, &ServiceError{Kind: KindUnavailable, Op: "gemini", Err: fmt.Errorf("no candidates in response")}
	}
	var w wireResult
	if err := json.Unmarshal([]byte(out.Candidates[0].Content.Parts[0].Text), &w); err != nil {
		return Result{}, &ServiceError{Kind: KindUnavailable, Op: "gemini", Err: fmt.Errorf("bad result payload: %w", err)}
	}
	return sanitize(w), nil
}
