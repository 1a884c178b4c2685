package Models

import "time"

// Attachment is a file shared alongside a message. Only the filename matters
// for the shared-files stats.
type Attachment struct {
	Filename string
}

// Message is the boundary representation of a chat message. The Discord adapter
// translates SDK messages into this struct so nothing past GetMessages depends
// on discordgo.
type Message struct {
	ID          string
	AuthorName  string
	Content     string
	Attachments []Attachment
	// ThreadID is empty for main channel messages
	ThreadID string
}

// Channel is the part of a channel (or thread) the summariser needs.
type Channel struct {
	ID   string
	Name string
}

// Partition is the result of splitting a history into buckets.
// Every message lands in exactly one bucket.
type Partition struct {
	Main []Message
	// Threads maps thread id to its messages, ThreadOrder keeps discovery order
	Threads     map[string][]Message
	ThreadOrder []string
}

// Stats is derived per bucket and never mutated afterwards.
type Stats struct {
	AuthorCounts   *Counter
	FileTypeCounts *Counter
}

// CacheEntry is one summary appended for a channel.
type CacheEntry struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// PromptPair is built once per bucket and handed to the inference client by value.
type PromptPair struct {
	SystemPrompt string
	UserPrompt   string
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// InferenceRequest mirrors the chat completion request shape.
type InferenceRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type InferenceChoice struct {
	Message ChatMessage `json:"message"`
}

// InferenceResponse carries either a direct Content string or structured
// Choices, depending on the backend that produced it.
type InferenceResponse struct {
	Content string            `json:"content,omitempty"`
	Choices []InferenceChoice `json:"choices,omitempty"`
}
