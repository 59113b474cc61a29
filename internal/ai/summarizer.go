// Package ai provides issue-description summarization backends. Every backend
// collapses transport errors, HTTP failures and unexpected response shapes
// into the single FailureMarker string so callers never branch on the cause.
package ai

import (
	"context"
	"log/slog"

	sdk "github.com/openai/openai-go/v3"
	"issueranker.shikanime.studio/internal/ai/huggingface"
	aiclient "issueranker.shikanime.studio/internal/ai/openai"
	"issueranker.shikanime.studio/internal/config"
)

// FailureMarker is stored verbatim when an analysis call fails for any reason.
const FailureMarker = huggingface.FailureMarker

// Summarizer produces a short summary of the given text, or FailureMarker.
type Summarizer interface {
	Summarize(ctx context.Context, text string) string
}

// NewSummarizerForConfig selects the backend from LLM_PROVIDER.
func NewSummarizerForConfig(cfg *config.Config) Summarizer {
	switch cfg.GetLLMProvider() {
	case "openai":
		slog.Info("Using OpenAI summarization backend", "model", cfg.GetLLMModel())
		return NewOpenAISummarizer(aiclient.NewClientForConfig(cfg), cfg.GetLLMModel())
	default:
		slog.Info("Using Hugging Face summarization backend", "model", cfg.GetLLMModel())
		return huggingface.NewClientForConfig(cfg)
	}
}

// OpenAISummarizer summarizes text through the OpenAI chat completions API.
type OpenAISummarizer struct {
	c     *sdk.Client
	model string
}

func NewOpenAISummarizer(c *sdk.Client, model string) *OpenAISummarizer {
	return &OpenAISummarizer{c: c, model: model}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) string {
	res, err := s.c.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage("Summarize the following issue description in one short sentence."),
			sdk.UserMessage(text),
		},
		Model: sdk.ChatModel(s.model),
	})
	if err != nil {
		slog.ErrorContext(ctx, "OpenAI summarization failed", "error", err)
		return FailureMarker
	}
	if len(res.Choices) == 0 || res.Choices[0].Message.Content == "" {
		slog.ErrorContext(ctx, "Unexpected OpenAI response shape", "response", res.RawJSON())
		return FailureMarker
	}
	return res.Choices[0].Message.Content
}
