package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

type completeFunc func(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error)

// Client implements Service on an OpenAI-compatible chat completion endpoint.
type Client struct {
	complete completeFunc
}

// NewClient creates a Client. baseURL may be empty for the default OpenAI
// endpoint, or point at any compatible server.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	api := openai.NewClientWithConfig(cfg)

	return &Client{
		complete: func(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error) {
			resp, err := api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model:       model,
				Temperature: temperature,
				MaxTokens:   maxTokens,
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleSystem, Content: system},
					{Role: openai.ChatMessageRoleUser, Content: user},
				},
			})
			if err != nil {
				return "", err
			}
			if len(resp.Choices) == 0 {
				return "", errors.New("empty completion response")
			}
			return resp.Choices[0].Message.Content, nil
		},
	}
}
