package SummarizeConversations

import (
	"testing"

	"discord-channel-summariser/Models"

	"github.com/stretchr/testify/assert"
)

func withFiles(author string, files ...string) Message {
	m := Message{AuthorName: author, Content: "x"}
	for _, f := range files {
		m.Attachments = append(m.Attachments, Models.Attachment{Filename: f})
	}
	return m
}

func TestAggregateStats(t *testing.T) {
	bucket := []Message{
		withFiles("bob", "Report.PDF"),
		withFiles("alice"),
		withFiles("Bob", "photo.jpg", "archive.tar.gz"),
		withFiles("bob", "screenshot.png", "other.pdf"),
	}

	stats := AggregateStats(bucket)

	assert.Equal(t, []Models.CounterEntry{
		{Key: "bob", Count: 2},
		{Key: "alice", Count: 1},
		{Key: "Bob", Count: 1},
	}, stats.AuthorCounts.Entries())
	assert.Equal(t, []Models.CounterEntry{
		{Key: "pdf", Count: 2},
		{Key: "jpg", Count: 1},
		{Key: "gz", Count: 1},
		{Key: "png", Count: 1},
	}, stats.FileTypeCounts.Entries())

	assert.Equal(t, len(bucket), stats.AuthorCounts.Total())
	assert.Equal(t, 5, stats.FileTypeCounts.Total())
}

func TestAggregateStatsEmptyBucket(t *testing.T) {
	stats := AggregateStats(nil)

	assert.Empty(t, stats.AuthorCounts.Entries())
	assert.Empty(t, stats.FileTypeCounts.Entries())
	assert.Equal(t, 0, stats.AuthorCounts.Total())
}

func TestFileExtension(t *testing.T) {
	cases := map[string]string{
		"notes.txt":      "txt",
		"IMAGE.JPEG":     "jpeg",
		"archive.tar.gz": "gz",
		// no dot: the whole filename counts as the extension
		"Makefile":       "makefile",
		"README":         "readme",
		"trailing.":      "",
		".env":           "env",
	}
	for filename, want := range cases {
		assert.Equalf(t, want, FileExtension(filename), "FileExtension(%q)", filename)
	}
}
