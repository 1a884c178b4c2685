// Package Inference talks to the language model that writes the content summaries.
// Backends return either the direct shape (Content) or the structured shape
// (Choices); ExtractContent accepts both.
package Inference

import (
	"context"
	"errors"
	"strings"

	"discord-channel-summariser/Models"
)

type InferenceRequest = Models.InferenceRequest
type InferenceResponse = Models.InferenceResponse
type ChatMessage = Models.ChatMessage

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ErrEmptyResponse is returned when a response carries neither direct content
// nor a first choice with content.
var ErrEmptyResponse = errors.New("inference: response carried no content")

type Client interface {
	Complete(ctx context.Context, request InferenceRequest) (InferenceResponse, error)
}

// ClientFunc adapts a plain function to Client.
type ClientFunc func(ctx context.Context, request InferenceRequest) (InferenceResponse, error)

func (f ClientFunc) Complete(ctx context.Context, request InferenceRequest) (InferenceResponse, error) {
	return f(ctx, request)
}

// NewRequest wraps a prompt pair in a chat request.
func NewRequest(prompt Models.PromptPair, model string, temperature float64, maxTokens int) InferenceRequest {
	return InferenceRequest{
		Model: model,
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: prompt.SystemPrompt},
			{Role: RoleUser, Content: prompt.UserPrompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// ExtractContent prefers the direct content string and falls back to the
// first choice's message content.
func ExtractContent(response InferenceResponse) (string, error) {
	if content := strings.TrimSpace(response.Content); content != "" {
		return content, nil
	}
	if len(response.Choices) > 0 {
		if content := strings.TrimSpace(response.Choices[0].Message.Content); content != "" {
			return content, nil
		}
	}
	return "", ErrEmptyResponse
}

// splitMessages pulls the system prompt out of a chat message list and joins
// the rest, for backends that take the system instruction separately.
func splitMessages(messages []ChatMessage) (string, string) {
	var system, user []string
	for _, message := range messages {
		if message.Role == RoleSystem {
			system = append(system, message.Content)
			continue
		}
		user = append(user, message.Content)
	}
	return strings.Join(system, "\n\n"), strings.Join(user, "\n\n")
}
