package SummarizeConversations

import (
	"strings"

	"discord-channel-summariser/Models"
)

type Message = Models.Message
type Stats = Models.Stats

// AggregateStats counts messages per author and attachments per file extension.
func AggregateStats(bucket []Message) Stats {
	stats := Stats{
		AuthorCounts:   Models.NewCounter(),
		FileTypeCounts: Models.NewCounter(),
	}

	for _, message := range bucket {
		// author names are compared exactly, no case folding
		stats.AuthorCounts.Inc(message.AuthorName)
		for _, attachment := range message.Attachments {
			stats.FileTypeCounts.Inc(FileExtension(attachment.Filename))
		}
	}
	return stats
}

// FileExtension returns the lowercased text after the last dot. A filename with
// no dot is its own extension.
func FileExtension(filename string) string {
	lastDot := strings.LastIndex(filename, ".")
	return strings.ToLower(filename[lastDot+1:])
}
