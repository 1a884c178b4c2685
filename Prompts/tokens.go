package Prompts

import (
	"fmt"

	"discord-channel-summariser/Models"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates how many tokens a text costs.
type TokenCounter func(text string) int

// EstimateTokens is the offline fallback: roughly four characters per token.
func EstimateTokens(text string) int {
	const charsPerToken = 4
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// NewTiktokenCounter loads the cl100k_base encoding. Loading may hit the network
// the first time, callers should fall back to EstimateTokens on error.
func NewTiktokenCounter() (TokenCounter, error) {
	const encoding = "cl100k_base"
	tkt, getEncodingError := tiktoken.GetEncoding(encoding)
	if getEncodingError != nil {
		return nil, fmt.Errorf("prompts: get encoding %s: %w", encoding, getEncodingError)
	}
	return func(text string) int {
		return len(tkt.Encode(text, nil, nil))
	}, nil
}

// CountPromptTokens counts both halves of a prompt pair plus a small per-message
// overhead for the role framing.
func CountPromptTokens(counter TokenCounter, prompt Models.PromptPair) int {
	const perMessageOverhead = 4
	if counter == nil {
		counter = EstimateTokens
	}
	return counter(prompt.SystemPrompt) + counter(prompt.UserPrompt) + 2*perMessageOverhead
}
