package DiscordBot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// MaxMessageLength is Discord's limit for message content.
const MaxMessageLength = 2000

// SplitMessage cuts text into pieces of at most limit bytes, preferring line
// breaks and never splitting a UTF-8 sequence.
func SplitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n") + 1
		if cut <= 0 {
			cut = limit
			for cut > 0 && text[cut]&0xC0 == 0x80 {
				cut--
			}
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

type channelSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ChannelPublisher posts a summary back into the summarised channel.
type ChannelPublisher struct {
	sender channelSender
}

func NewChannelPublisher(session *discordgo.Session) *ChannelPublisher {
	return &ChannelPublisher{sender: session}
}

func (p *ChannelPublisher) Publish(ctx context.Context, channelID string, summary string) error {
	for _, chunk := range SplitMessage(summary, MaxMessageLength) {
		if _, sendError := p.sender.ChannelMessageSend(channelID, chunk, discordgo.WithContext(ctx)); sendError != nil {
			return fmt.Errorf("publish to discord %s: %w", channelID, sendError)
		}
	}
	return nil
}
