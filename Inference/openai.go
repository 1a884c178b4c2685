package Inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"discord-channel-summariser/Models"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	defaultOpenAIModel       = "gpt-4o-mini"
	defaultRetryInitialDelay = 500 * time.Millisecond
	defaultRetryMaxDelay     = 10 * time.Second
)

// OpenAIConfig configures any OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint, e.g. a local proxy or a compatible vendor.
	BaseURL string
	// Timeout bounds a single attempt. Zero means no timeout.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt for 429 and 5xx responses.
	MaxRetries        int
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration
}

// OpenAIClient returns the structured response shape (choices).
type OpenAIClient struct {
	client openai.Client
	cfg    OpenAIConfig
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("inference: openai api key is not set")
	}
	if cfg.RetryInitialDelay <= 0 {
		cfg.RetryInitialDelay = defaultRetryInitialDelay
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = defaultRetryMaxDelay
	}

	// retries are handled here with backoff, not inside the SDK
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &OpenAIClient{client: openai.NewClient(opts...), cfg: cfg}, nil
}

func (o *OpenAIClient) Complete(ctx context.Context, request InferenceRequest) (InferenceResponse, error) {
	params := chatCompletionParams(request)

	var completion *openai.ChatCompletion
	operation := func() error {
		chatCompletion, chatCompletionError := o.client.Chat.Completions.New(ctx, params)
		if chatCompletionError != nil {
			if !isRetryable(chatCompletionError) {
				return backoff.Permanent(chatCompletionError)
			}
			return chatCompletionError
		}
		completion = chatCompletion
		return nil
	}

	if retryError := backoff.Retry(operation, o.retryPolicy(ctx)); retryError != nil {
		return InferenceResponse{}, retryError
	}

	return fromChatCompletion(completion), nil
}

func (o *OpenAIClient) retryPolicy(ctx context.Context) backoff.BackOff {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = o.cfg.RetryInitialDelay
	exponential.MaxInterval = o.cfg.RetryMaxDelay
	exponential.MaxElapsedTime = 0

	retries := o.cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exponential, uint64(retries)), ctx)
}

func chatCompletionParams(request InferenceRequest) openai.ChatCompletionNewParams {
	model := request.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(request.Messages))
	for _, message := range request.Messages {
		switch message.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(message.Content))
		default:
			messages = append(messages, openai.UserMessage(message.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Opt(request.Temperature),
	}
	if request.MaxTokens > 0 {
		params.MaxTokens = openai.Opt(int64(request.MaxTokens))
	}
	return params
}

func fromChatCompletion(completion *openai.ChatCompletion) InferenceResponse {
	var response InferenceResponse
	if completion == nil {
		return response
	}
	for _, choice := range completion.Choices {
		response.Choices = append(response.Choices, Models.InferenceChoice{
			Message: ChatMessage{Role: string(choice.Message.Role), Content: choice.Message.Content},
		})
	}
	return response
}

// isRetryable reports whether the error is worth another attempt: rate limits,
// server errors and transport failures. Context cancellation never is.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiError *openai.Error
	if errors.As(err, &apiError) {
		return apiError.StatusCode == http.StatusTooManyRequests || apiError.StatusCode >= http.StatusInternalServerError
	}
	return true
}

var _ Client = (*OpenAIClient)(nil)
