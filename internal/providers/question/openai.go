package question

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const openaiProviderName = "openai"

// OpenAIOptions configures the OpenAI-compatible generator. BaseURL makes it
// usable against any chat-completions endpoint (OpenRouter, local gateways).
type OpenAIOptions struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIGenerator produces questions through the chat completions API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIGenerator(opts OpenAIOptions) (*OpenAIGenerator, error) {
	if opts.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

func (o *OpenAIGenerator) Name() string { return openaiProviderName }

func (o *OpenAIGenerator) Generate(ctx context.Context, subject string, count int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a quiz author. You respond with raw JSON only, never markdown.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildInstruction(subject, count),
			},
		},
		Temperature: 0.5,
	}
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("call openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", errors.New("openai returned empty text")
	}
	return text, nil
}

var _ Generator = (*OpenAIGenerator)(nil)
