package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiClient calls the generateContent endpoint once per request; failures
// are returned to the caller without retrying.
type GeminiClient struct {
	httpClient *resty.Client
	apiKey     string
	model      string
}

func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &GeminiClient{
		httpClient: client,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

func (c *GeminiClient) AssessmentQuestions(ctx context.Context, topic, notes string) (string, error) {
	return c.generate(ctx, assessmentPrompt(topic, notes))
}

func (c *GeminiClient) TutorAnswer(ctx context.Context, topic, question string) (string, error) {
	return c.generate(ctx, tutorPrompt(topic, question))
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" || c.model == "" {
		return "", ErrNotConfigured
	}

	body := generateRequest{Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}}}
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetPathParam("model", c.model).
		SetBody(body).
		SetResult(&generateResponse{}).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("%w: httpClient.Post > %v", ErrGeneration, err)
	}
	if response.IsError() {
		return "", fmt.Errorf("%w: response error %d: %s", ErrGeneration, response.StatusCode(), response.String())
	}

	result, ok := response.Result().(*generateResponse)
	if !ok || len(result.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrGeneration)
	}
	var text strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", fmt.Errorf("%w: empty response", ErrGeneration)
	}
	return out, nil
}
