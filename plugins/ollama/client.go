package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/va6996/ecochat/log"
	"github.com/va6996/ecochat/metrics"
	"github.com/va6996/ecochat/plugins"
)

const service = "ollama"

// Client handles Ollama API requests
type Client struct {
	BaseURL string
	Model   string
	client  *http.Client
}

var (
	_ plugins.LLMClient   = (*Client)(nil)
	_ plugins.ModelLister = (*Client)(nil)
)

// NewClient creates a new Ollama API client
func NewClient(baseURL, model string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		client:  &http.Client{},
	}
}

// GenerateRequest represents the payload for Ollama generate API
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// GenerateResponse represents the response from Ollama generate API
type GenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// TagsResponse is the payload of /api/tags.
type TagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// GenerateContent sends a prompt to Ollama and returns the response.
// Connection failures and 5xx answers are retried.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	jsonData, err := json.Marshal(GenerateRequest{
		Model:  c.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	out, err := plugins.Retry(ctx, "ollama generate", func() (string, error) {
		var genResp GenerateResponse
		if err := c.do(ctx, http.MethodPost, "/api/generate", jsonData, &genResp); err != nil {
			return "", err
		}
		return genResp.Response, nil
	})
	if err != nil {
		metrics.LLMRequests.WithLabelValues(service, "error").Inc()
		return "", err
	}
	metrics.LLMRequests.WithLabelValues(service, "ok").Inc()
	log.Debugf(ctx, "Ollama %s returned %d characters", c.Model, len(out))
	return out, nil
}

// ListModels returns the names of the locally pulled models.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var tags TagsResponse
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &plugins.UpstreamError{Service: service, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return &plugins.UpstreamError{
			Service:    service,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(msg))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
