package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/va6996/ecochat/metrics"
	"github.com/va6996/ecochat/plugins"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	service      = "gemini"
	DefaultModel = "gemini-2.5-flash"
)

// Client handles Gemini API requests using the official SDK
type Client struct {
	APIKey string
	Model  string
	client *genai.Client
}

var _ plugins.LLMClient = (*Client)(nil)

// NewClient creates a new Gemini API client
// Returns an error if the client cannot be initialized
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		APIKey: apiKey,
		Model:  model,
		client: client,
	}, nil
}

// GenerateContent sends a prompt to Gemini and returns the response
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("client not initialized")
	}

	out, err := plugins.Retry(ctx, "gemini generate", func() (string, error) {
		resp, err := c.client.GenerativeModel(c.Model).GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", classify(err)
		}
		return textOf(resp)
	})
	if err != nil {
		metrics.LLMRequests.WithLabelValues(service, "error").Inc()
		return "", err
	}
	metrics.LLMRequests.WithLabelValues(service, "ok").Inc()
	return out, nil
}

func textOf(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content in candidate")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &plugins.UpstreamError{Service: service, StatusCode: gerr.Code, Err: err}
	}
	return &plugins.UpstreamError{Service: service, Err: err}
}

// Close closes the Gemini client
func (c *Client) Close() error {
	if c.client != nil {
		err := c.client.Close()
		c.client = nil
		return err
	}
	return nil
}
