package GetMessages

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"discord-channel-summariser/Models"

	"github.com/bwmarrin/discordgo"
)

type Message = Models.Message
type Attachment = Models.Attachment
type Channel = Models.Channel

// ErrNotFound is returned by a MessageSource when the channel or thread does not exist
// (or the bot cannot see it).
var ErrNotFound = errors.New("get messages: not found")

// discord hands out at most this many messages per history request
const discordPageSize = 100

// MessageSource is everything the summariser needs from the chat platform.
type MessageSource interface {
	GetChannel(ctx context.Context, channelID string) (Channel, error)
	// GetHistory returns at most limit messages, most recent first.
	GetHistory(ctx context.Context, channelID string, limit int) ([]Message, error)
	GetThread(ctx context.Context, channelID string, threadID string) (Channel, error)
}

// discordAPI is the subset of *discordgo.Session used by DiscordSource.
type discordAPI interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// DiscordSource reads channel history through a discordgo session.
type DiscordSource struct {
	api discordAPI
}

func NewDiscordSource(session *discordgo.Session) *DiscordSource {
	return &DiscordSource{api: session}
}

func (d *DiscordSource) GetChannel(ctx context.Context, channelID string) (Channel, error) {
	discordChannel, getChannelError := d.api.Channel(channelID, discordgo.WithContext(ctx))
	if getChannelError != nil {
		return Channel{}, translateDiscordError(getChannelError, "channel "+channelID)
	}
	return Channel{ID: discordChannel.ID, Name: discordChannel.Name}, nil
}

// GetThread looks the thread up by id. Threads are channels in discord, the
// parent channel id is only checked when discord reports one.
func (d *DiscordSource) GetThread(ctx context.Context, channelID string, threadID string) (Channel, error) {
	discordThread, getThreadError := d.api.Channel(threadID, discordgo.WithContext(ctx))
	if getThreadError != nil {
		return Channel{}, translateDiscordError(getThreadError, "thread "+threadID)
	}
	if discordThread.ParentID != "" && discordThread.ParentID != channelID {
		return Channel{}, fmt.Errorf("thread %s is not in channel %s: %w", threadID, channelID, ErrNotFound)
	}
	return Channel{ID: discordThread.ID, Name: discordThread.Name}, nil
}

// GetHistory pages backwards through the channel until limit messages are
// collected or the channel runs out.
func (d *DiscordSource) GetHistory(ctx context.Context, channelID string, limit int) ([]Message, error) {
	var history []Message
	beforeID := ""

	for len(history) < limit {
		pageSize := min(limit-len(history), discordPageSize)

		// messages come back newest first
		discordMessages, getMessagesError := d.api.ChannelMessages(channelID, pageSize, beforeID, "", "", discordgo.WithContext(ctx))
		if getMessagesError != nil {
			return nil, translateDiscordError(getMessagesError, "history of "+channelID)
		}

		for _, discordMessage := range discordMessages {
			history = append(history, FromDiscordMessage(discordMessage))
		}

		if len(discordMessages) < pageSize {
			break
		}
		beforeID = discordMessages[len(discordMessages)-1].ID
	}

	return history, nil
}

// FromDiscordMessage copies the fields the summariser cares about out of a discordgo message.
func FromDiscordMessage(discordMessage *discordgo.Message) Message {
	message := Message{
		ID:      discordMessage.ID,
		Content: discordMessage.Content,
	}
	if discordMessage.Author != nil {
		message.AuthorName = discordMessage.Author.Username
	}
	for _, discordAttachment := range discordMessage.Attachments {
		if discordAttachment == nil {
			continue
		}
		message.Attachments = append(message.Attachments, Attachment{Filename: discordAttachment.Filename})
	}
	// a message that started a thread belongs to that thread's bucket
	if discordMessage.Thread != nil {
		message.ThreadID = discordMessage.Thread.ID
	}
	return message
}

func translateDiscordError(err error, what string) error {
	var restError *discordgo.RESTError
	if errors.As(err, &restError) && restError.Response != nil {
		switch restError.Response.StatusCode {
		case http.StatusNotFound, http.StatusForbidden:
			return fmt.Errorf("%s: %w", what, ErrNotFound)
		}
	}
	return fmt.Errorf("get messages: %s: %w", what, err)
}
