package analyze

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// openAIClient wraps the OpenAI chat completion API in JSON mode
type openAIClient struct {
	client *openai.Client
	model  string
}

func newOpenAIClient(apiKey, model string) *openAIClient {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &openAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *openAIClient) Name() string { return "openai" }

// CompleteJSON requests a single chat completion with a JSON object
// response format. Low temperature keeps the output stable.
func (c *openAIClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
		MaxTokens:   2000,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
