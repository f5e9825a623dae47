package openai

import (
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCompletionContent(t *testing.T) {
	content, err := GetCompletionContent(openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "[]"}},
			{Message: openai.ChatCompletionMessage{Content: "ignored"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "[]", content)

	_, err = GetCompletionContent(openai.ChatCompletionResponse{})
	assert.ErrorIs(t, err, ErrNoChoices)

	_, err = GetCompletionContent(openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: " \n"}}},
	})
	assert.Error(t, err)
}

func TestSystemAndUser(t *testing.T) {
	request := SystemAndUser("gpt-4o", "system", "user")

	assert.Equal(t, "gpt-4o", request.Model)
	require.Len(t, request.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, request.Messages[0].Role)
	assert.Equal(t, "user", request.Messages[1].Content)
}
