package Inference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

type GeminiConfig struct {
	APIKey string
	// Timeout bounds a single GenerateContent call. Zero means no timeout.
	Timeout time.Duration
}

// GeminiClient sends requests to Gemini and returns the direct response shape.
type GeminiClient struct {
	genAiClient *genai.Client
	cfg         GeminiConfig
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("inference: gemini api key is not set")
	}

	genAiClient, genAiError := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if genAiError != nil {
		return nil, fmt.Errorf("inference: create genai client: %w", genAiError)
	}

	return &GeminiClient{genAiClient: genAiClient, cfg: cfg}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, request InferenceRequest) (InferenceResponse, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	model := request.Model
	if model == "" {
		model = defaultGeminiModel
	}
	systemPrompt, userPrompt := splitMessages(request.Messages)

	genAiGenerateContentResult, genAiGenerateContentError := g.genAiClient.Models.GenerateContent(
		ctx,
		model,
		genai.Text(userPrompt),
		generateContentConfig(systemPrompt, request),
	)
	if genAiGenerateContentError != nil {
		return InferenceResponse{}, genAiGenerateContentError
	}

	content, contentError := contentFromGenAiResponse(genAiGenerateContentResult)
	if contentError != nil {
		return InferenceResponse{}, contentError
	}
	return InferenceResponse{Content: content}, nil
}

func generateContentConfig(systemPrompt string, request InferenceRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(request.Temperature)),
	}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	if request.MaxTokens > 0 {
		config.MaxOutputTokens = int32(request.MaxTokens)
	}
	return config
}

// contentFromGenAiResponse concatenates the text parts of the first candidate.
func contentFromGenAiResponse(response *genai.GenerateContentResponse) (string, error) {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

var _ Client = (*GeminiClient)(nil)
