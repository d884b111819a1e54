// Package ollama talks to a local Ollama server through /api/generate.
package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const providerName = "ollama"

type Client struct {
	baseURL    string
	model      string
	options    map[string]any
	httpClient *http.Client
}

func New(baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithOptions sets Ollama model options (temperature, num_ctx, ...) sent with every request.
func (c *Client) WithOptions(options map[string]any) *Client {
	c.options = options
	return c
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	}
	if len(c.options) > 0 {
		reqBody["options"] = c.options
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}
