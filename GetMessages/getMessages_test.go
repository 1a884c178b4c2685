package GetMessages

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDiscord struct {
	channels map[string]*discordgo.Channel
	// history newest first
	history []*discordgo.Message
	calls   []string
	failing error
}

func (f *fakeDiscord) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if c, ok := f.channels[channelID]; ok {
		return c, nil
	}
	return nil, &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound, Status: "404 Not Found"}}
}

func (f *fakeDiscord) ChannelMessages(channelID string, limit int, beforeID, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.calls = append(f.calls, fmt.Sprintf("%d/%s", limit, beforeID))
	if f.failing != nil {
		return nil, f.failing
	}
	start := 0
	if beforeID != "" {
		for i, m := range f.history {
			if m.ID == beforeID {
				start = i + 1
				break
			}
		}
	}
	end := min(start+limit, len(f.history))
	return f.history[start:end], nil
}

func discordHistory(n int) []*discordgo.Message {
	out := make([]*discordgo.Message, 0, n)
	for i := n; i > 0; i-- {
		out = append(out, &discordgo.Message{
			ID:      fmt.Sprint(i),
			Content: fmt.Sprintf("message %d", i),
			Author:  &discordgo.User{Username: "user"},
		})
	}
	return out
}

func TestGetHistoryPagesUntilLimit(t *testing.T) {
	api := &fakeDiscord{history: discordHistory(250)}
	source := &DiscordSource{api: api}

	history, err := source.GetHistory(context.Background(), "c1", 230)
	require.NoError(t, err)

	assert.Len(t, history, 230)
	assert.Equal(t, "250", history[0].ID)
	assert.Equal(t, "21", history[229].ID)
	assert.Equal(t, []string{"100/", "100/151", "30/51"}, api.calls)
}

func TestGetHistoryStopsWhenChannelRunsOut(t *testing.T) {
	api := &fakeDiscord{history: discordHistory(12)}
	source := &DiscordSource{api: api}

	history, err := source.GetHistory(context.Background(), "c1", 100)
	require.NoError(t, err)

	assert.Len(t, history, 12)
	assert.Len(t, api.calls, 1)
}

func TestGetHistoryWrapsTransportErrors(t *testing.T) {
	api := &fakeDiscord{failing: errors.New("connection reset")}
	source := &DiscordSource{api: api}

	_, err := source.GetHistory(context.Background(), "c1", 10)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGetChannelNotFound(t *testing.T) {
	source := &DiscordSource{api: &fakeDiscord{}}

	_, err := source.GetChannel(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetThread(t *testing.T) {
	api := &fakeDiscord{channels: map[string]*discordgo.Channel{
		"t1": {ID: "t1", Name: "release planning", ParentID: "c1"},
	}}
	source := &DiscordSource{api: api}

	thread, err := source.GetThread(context.Background(), "c1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "release planning", thread.Name)

	_, err = source.GetThread(context.Background(), "other", "t1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = source.GetThread(context.Background(), "c1", "t404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFromDiscordMessage(t *testing.T) {
	message := FromDiscordMessage(&discordgo.Message{
		ID:      "42",
		Content: "look at this",
		Author:  &discordgo.User{Username: "Alice"},
		Attachments: []*discordgo.MessageAttachment{
			{Filename: "diagram.PNG"},
			nil,
			{Filename: "notes.md"},
		},
		Thread: &discordgo.Channel{ID: "t7"},
	})

	assert.Equal(t, Message{
		ID:          "42",
		AuthorName:  "Alice",
		Content:     "look at this",
		Attachments: []Attachment{{Filename: "diagram.PNG"}, {Filename: "notes.md"}},
		ThreadID:    "t7",
	}, message)
}
