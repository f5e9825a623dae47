package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Client interface for OpenAI chat completions. The Gemini client implements it too.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// adapter wraps the OpenAI client
type adapter struct {
	client *openai.Client
}

// NewAdapter creates a new OpenAI client adapter
func NewAdapter(client *openai.Client) Client {
	return &adapter{client: client}
}

func (a *adapter) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return a.client.CreateChatCompletion(ctx, request)
}

var ErrNoChoices = errors.New("no choices in response")

// GetCompletionContent extracts the content from the first choice
func GetCompletionContent(response openai.ChatCompletionResponse) (string, error) {
	if len(response.Choices) == 0 {
		return "", ErrNoChoices
	}
	content := response.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", errors.New("empty completion content")
	}
	return content, nil
}

// SystemAndUser builds a request with one system and one user message.
func SystemAndUser(model, system, user string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
}
