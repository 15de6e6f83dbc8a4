package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"quizforge/internal/config"
)

// GeminiClient talks to the Gemini generateContent REST endpoint. One call
// per operation; retrying is the caller's decision, not the client's.
type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
}

func NewGeminiClient(cfg config.Gemini) *GeminiClient {
	return &GeminiClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
	}
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GenerateContent sends the prompt with fixed sampling parameters and
// extracts the generated text from the response envelope.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 4096,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &UpstreamError{Msg: "encoding request", Err: err}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &UpstreamError{Msg: "building request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Msg: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &UpstreamError{Status: resp.StatusCode, Msg: string(body)}
	}

	var envelope geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", &UpstreamError{Status: resp.StatusCode, Msg: "malformed upstream response", Err: err}
	}

	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return "", &UpstreamError{Status: resp.StatusCode, Msg: "malformed upstream response"}
	}
	text := envelope.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", &UpstreamError{Status: resp.StatusCode, Msg: "malformed upstream response"}
	}
	return text, nil
}
