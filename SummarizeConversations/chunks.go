package SummarizeConversations

import (
	"fmt"
	"slices"
	"strings"
)

// FormatChunks renders one "author: content" line per message, in bucket order.
func FormatChunks(bucket []Message) []string {
	chunks := make([]string, 0, len(bucket))
	for _, message := range bucket {
		chunks = append(chunks, fmt.Sprintf("%s: %s", message.AuthorName, message.Content))
	}
	return chunks
}

// JoinChunks reverses the chunks and joins them with newlines. History arrives
// most recent first, so the joined transcript reads oldest first.
func JoinChunks(chunks []string) string {
	reversed := slices.Clone(chunks)
	slices.Reverse(reversed)
	return strings.Join(reversed, "\n")
}
