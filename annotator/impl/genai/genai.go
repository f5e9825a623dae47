package genai

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
)

// Client answers chat completion requests with a Gemini model so that it can
// stand in for the OpenAI client.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type client struct {
	genaiClient *genai.Client
}

func New(genaiClient *genai.Client) Client {
	return &client{genaiClient: genaiClient}
}

type GenaiModel string

const (
	GenaiModelFlash GenaiModel = "gemini-1.5-flash"
	GenaiModelPro   GenaiModel = "gemini-1.5-pro"
)

var (
	ErrInvalidModel = errors.New("invalid model")
	ErrNoMessages   = errors.New("no messages in request")
	ErrNoResponse   = errors.New("no response from model")
)

func (c *client) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	history, last, err := toGenaiHistory(request)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	chatSession := c.genaiClient.GenerativeModel(request.Model).StartChat()
	chatSession.History = history

	resp, err := chatSession.SendMessage(ctx, last...)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return openai.ChatCompletionResponse{}, ErrNoResponse
	}

	return openai.ChatCompletionResponse{
		Model: request.Model,
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: fmt.Sprintf("%s", resp.Candidates[0].Content.Parts[0]),
				},
			},
		},
	}, nil
}

// toGenaiHistory splits the request into the chat history and the parts of the
// final message. System messages become user turns prefixed with "System: "
// since the model has no system instruction here.
func toGenaiHistory(request openai.ChatCompletionRequest) ([]*genai.Content, []genai.Part, error) {
	if err := validateModel(request.Model); err != nil {
		return nil, nil, err
	}
	if len(request.Messages) == 0 {
		return nil, nil, ErrNoMessages
	}

	history := []*genai.Content{}
	for _, message := range request.Messages[:len(request.Messages)-1] {
		if message.Role == openai.ChatMessageRoleSystem {
			history = append(history, &genai.Content{
				Parts: []genai.Part{genai.Text("System: " + message.Content)},
				Role:  "user",
			})
			continue
		}
		history = append(history, &genai.Content{
			Parts: toGenaiParts(message),
			Role:  toGenaiRole(message.Role),
		})
	}

	last := toGenaiParts(request.Messages[len(request.Messages)-1])
	if len(last) == 0 {
		return nil, nil, ErrNoMessages
	}
	return history, last, nil
}

// Only text is forwarded.
func toGenaiParts(message openai.ChatCompletionMessage) []genai.Part {
	parts := []genai.Part{}
	for _, content := range message.MultiContent {
		if content.Type == openai.ChatMessagePartTypeText && content.Text != "" {
			parts = append(parts, genai.Text(content.Text))
		}
	}
	if len(parts) == 0 && message.Content != "" {
		parts = append(parts, genai.Text(message.Content))
	}
	return parts
}

func toGenaiRole(role string) string {
	switch role {
	case openai.ChatMessageRoleAssistant:
		return "model"
	default:
		return "user"
	}
}

func validateModel(model string) error {
	switch GenaiModel(model) {
	case GenaiModelFlash, GenaiModelPro:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidModel, model)
	}
}
