package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type ClaudeClient struct {
	client anthropic.Client
	model  string
}

func NewClaude(apiKey, baseURL, model string, timeout time.Duration) *ClaudeClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &ClaudeClient{client: anthropic.NewClient(opts...), model: model}
}

func (c *ClaudeClient) Complete(ctx context.Context, systemPrompt, prompt string) (Response, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("claude message failed: %w", err)
	}

	out := Response{Model: c.model}
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.Content += block.Text
		}
	}
	if out.Content == "" {
		return Response{}, errors.New("claude returned no text")
	}
	out.PromptTokens = int(resp.Usage.InputTokens)
	out.CompletionTokens = int(resp.Usage.OutputTokens)
	out.TotalTokens = out.PromptTokens + out.CompletionTokens
	return out, nil
}
