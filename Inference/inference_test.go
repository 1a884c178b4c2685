package Inference

import (
	"testing"

	"discord-channel-summariser/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestExtractContentDirectShape(t *testing.T) {
	content, err := ExtractContent(InferenceResponse{Content: "  a summary \n"})
	require.NoError(t, err)
	assert.Equal(t, "a summary", content)
}

func TestExtractContentStructuredShape(t *testing.T) {
	content, err := ExtractContent(InferenceResponse{Choices: []Models.InferenceChoice{
		{Message: ChatMessage{Role: "assistant", Content: "first"}},
		{Message: ChatMessage{Role: "assistant", Content: "second"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "first", content)
}

func TestExtractContentEmpty(t *testing.T) {
	_, err := ExtractContent(InferenceResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = ExtractContent(InferenceResponse{Choices: []Models.InferenceChoice{{}}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewRequest(t *testing.T) {
	request := NewRequest(Models.PromptPair{SystemPrompt: "sys", UserPrompt: "usr"}, "m", 0.2, 512)

	assert.Equal(t, InferenceRequest{
		Model: "m",
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleUser, Content: "usr"},
		},
		Temperature: 0.2,
		MaxTokens:   512,
	}, request)
}

func TestSplitMessages(t *testing.T) {
	system, user := splitMessages([]ChatMessage{
		{Role: RoleSystem, Content: "persona"},
		{Role: RoleUser, Content: "transcript"},
	})
	assert.Equal(t, "persona", system)
	assert.Equal(t, "transcript", user)
}

func TestContentFromGenAiResponse(t *testing.T) {
	content, err := contentFromGenAiResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "Topics: "},
				nil,
				{Text: "release dates."},
			}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Topics: release dates.", content)

	_, err = contentFromGenAiResponse(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = contentFromGenAiResponse(nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerateContentConfig(t *testing.T) {
	config := generateContentConfig("persona", InferenceRequest{Temperature: 0.5, MaxTokens: 300})

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.5, *config.Temperature, 1e-6)
	assert.Equal(t, int32(300), config.MaxOutputTokens)
	require.NotNil(t, config.SystemInstruction)
	assert.Equal(t, "persona", config.SystemInstruction.Parts[0].Text)

	config = generateContentConfig("", InferenceRequest{})
	assert.Nil(t, config.SystemInstruction)
	assert.Zero(t, config.MaxOutputTokens)
}
