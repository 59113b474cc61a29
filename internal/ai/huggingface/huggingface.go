// Package huggingface calls the Hugging Face Inference API for text
// summarization.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"issueranker.shikanime.studio/internal/config"
)

// FailureMarker is returned for transport errors, non-2xx responses and
// responses missing the expected summary field alike.
const FailureMarker = "Analysis failed"

// Client posts {"inputs": text} to a per-model inference endpoint and reads
// the first summary_text of the response array.
type Client struct {
	hc      *http.Client
	baseURL string
	model   string
	token   string
}

// ClientOptions configures the inference client.
type ClientOptions struct {
	baseURL string
	token   string
	hc      *http.Client
}

// ClientOption applies a configuration to ClientOptions.
type ClientOption func(*ClientOptions)

// WithBaseURL overrides the inference endpoint base URL.
func WithBaseURL(u string) ClientOption {
	return func(o *ClientOptions) { o.baseURL = u }
}

// WithToken sets the bearer credential for inference requests.
func WithToken(token string) ClientOption {
	return func(o *ClientOptions) { o.token = token }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(o *ClientOptions) { o.hc = hc }
}

// NewClient constructs an inference client for the given model.
func NewClient(model string, opts ...ClientOption) *Client {
	o := ClientOptions{baseURL: "https://api-inference.huggingface.co"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hc == nil {
		o.hc = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Client{hc: o.hc, baseURL: o.baseURL, model: model, token: o.token}
}

// NewClientForConfig constructs a Client from LLM_* env configuration.
func NewClientForConfig(cfg *config.Config) *Client {
	return NewClient(cfg.GetLLMModel(),
		WithBaseURL(cfg.GetLLMBaseURL()),
		WithToken(cfg.GetLLMAPIKey()),
	)
}

// Summarize performs a single blocking inference call. Any failure maps to
// FailureMarker; callers cannot distinguish the cause.
func (c *Client) Summarize(ctx context.Context, text string) string {
	endpoint, err := url.JoinPath(c.baseURL, "models", c.model)
	if err != nil {
		slog.ErrorContext(ctx, "Invalid inference endpoint", "model", c.model, "error", err)
		return FailureMarker
	}
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to encode inference payload", "error", err)
		return FailureMarker
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build inference request", "error", err)
		return FailureMarker
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	res, err := c.hc.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "Inference request failed", "model", c.model, "error", err)
		return FailureMarker
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read inference response", "error", err)
		return FailureMarker
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		slog.ErrorContext(ctx, "Inference request returned non-2xx status",
			"status", res.StatusCode, "body", string(body))
		return FailureMarker
	}
	var out []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := json.Unmarshal(body, &out); err != nil || len(out) == 0 || out[0].SummaryText == "" {
		// Full body logged for diagnosis; callers only see the marker.
		slog.ErrorContext(ctx, "Unexpected inference response shape", "body", string(body))
		return FailureMarker
	}
	return out[0].SummaryText
}
