package SummarizeConversations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatChunksKeepsBucketOrder(t *testing.T) {
	bucket := []Message{
		{AuthorName: "carol", Content: "third"},
		{AuthorName: "bob", Content: "second: with a colon"},
		{AuthorName: "alice", Content: "  first  "},
	}

	assert.Equal(t, []string{
		"carol: third",
		"bob: second: with a colon",
		"alice:   first  ",
	}, FormatChunks(bucket))
}

func TestJoinChunksReversesBeforeJoining(t *testing.T) {
	chunks := []string{"carol: third", "bob: second", "alice: first"}

	assert.Equal(t, "alice: first\nbob: second\ncarol: third", JoinChunks(chunks))
	// the input slice is left alone
	assert.Equal(t, "carol: third", chunks[0])
}

func TestJoinChunksEdgeCases(t *testing.T) {
	assert.Equal(t, "", JoinChunks(nil))
	assert.Equal(t, "alice: hi", JoinChunks([]string{"alice: hi"}))
	assert.Empty(t, FormatChunks(nil))
}
