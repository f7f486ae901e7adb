// Package gemini provides the Google Gemini client used for intent
// classification, structured extraction, and chat replies.
package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// ExtractTimeout bounds structured-extraction and classification calls.
const ExtractTimeout = 10 * time.Second

// ChatTimeout bounds free-conversation calls, which produce longer output.
const ChatTimeout = 15 * time.Second

// Invocation carries the prompt and raw response of one model call so the
// caller can append it to the audit trail.
type Invocation struct {
	Kind     string
	Prompt   string
	Response string
}

// ContentGenerator defines the interface for generating content via Gemini.
// This abstraction enables testing without making actual API calls.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// modelsAdapter wraps *genai.Models to implement ContentGenerator.
type modelsAdapter struct {
	models *genai.Models
}

func (m *modelsAdapter) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	resp, err := m.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("genai.GenerateContent: %w", err)
	}
	return resp, nil
}

// Client wraps the Gemini API client.
type Client struct {
	client    *genai.Client
	generator ContentGenerator
	model     string
}

// NewClient creates a new Gemini client with the provided API key and model.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client:    client,
		generator: &modelsAdapter{models: client.Models},
		model:     model,
	}, nil
}

// NewClientWithGenerator creates a Client with a custom ContentGenerator.
// This is primarily used for testing with mock generators.
func NewClientWithGenerator(generator ContentGenerator, model string) *Client {
	return &Client{
		generator: generator,
		model:     model,
	}
}

// Model returns the configured model identifier, as recorded in prompt logs.
func (c *Client) Model() string {
	return c.model
}

// generate runs one prompt with the given config under a timeout and returns
// the response text.
func (c *Client) generate(ctx context.Context, timeout time.Duration, prompt string, config *genai.GenerateContentConfig) (string, error) {
	if c == nil || c.generator == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := c.generator.GenerateContent(timeoutCtx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response from Gemini")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return text, nil
}

func temperature(v float32) *float32 {
	return &v
}
