package openaicompat

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/va6996/ecochat/metrics"
	"github.com/va6996/ecochat/plugins"
)

// Client is a chat-completion LLMClient.
type Client struct {
	Model  string
	client openai.Client
}

var (
	_ plugins.LLMClient   = (*Client)(nil)
	_ plugins.ModelLister = (*Client)(nil)
)

// NewClient creates a completion client. An empty baseURL targets OpenAI.
func NewClient(apiKey, baseURL, model string, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		// Retries are handled by plugins.Retry.
		option.WithMaxRetries(0),
	}, opts...)
	return &Client{Model: model, client: openai.NewClient(opts...)}, nil
}

// GenerateContent sends prompt as a single user message.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	out, err := plugins.Retry(ctx, "openai completion", func() (string, error) {
		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    openai.ChatModel(c.Model),
			Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		})
		if err != nil {
			return "", classify(err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no choices in response")
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		metrics.LLMRequests.WithLabelValues(provider, "error").Inc()
		return "", err
	}
	metrics.LLMRequests.WithLabelValues(provider, "ok").Inc()
	return out, nil
}

// ListModels returns the model ids the endpoint advertises.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return nil, classify(err)
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &plugins.UpstreamError{Service: provider, StatusCode: apiErr.StatusCode, Err: err}
	}
	return &plugins.UpstreamError{Service: provider, Err: err}
}
