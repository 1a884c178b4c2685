package PublishToSlack

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

// Slack rejects message text over 40k characters, stay well under it
const maxSlackMessageLength = 39000

// slackPoster is the part of *slack.Client used here.
type slackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Publisher cross-posts channel summaries into a Slack channel.
type Publisher struct {
	slackClient  slackPoster
	slackChannel string
}

func NewPublisher(slackClient *slack.Client, slackChannel string) *Publisher {
	return &Publisher{slackClient: slackClient, slackChannel: slackChannel}
}

// formatDigest wraps a summary with a header line and a divider so several
// digests in a row stay readable.
func formatDigest(channelID string, summary string, at time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📝 *Discord digest* for channel `%s` · %s\n", channelID, at.UTC().Format("2006-01-02 15:04 MST")))
	b.WriteString("\n")
	b.WriteString(summary)
	if !strings.HasSuffix(summary, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")

	return truncate(b.String(), maxSlackMessageLength)
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	const marker = "\n…(truncated)"
	cut := limit - len(marker)
	// back off to a rune boundary
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + marker
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// Publish posts the summary with link unfurling disabled.
func (p *Publisher) Publish(ctx context.Context, channelID string, summary string) error {
	msg := formatDigest(channelID, summary, time.Now())

	_, _, sendSlackMessageError := p.slackClient.PostMessageContext(
		ctx,
		p.slackChannel,
		slack.MsgOptionText(msg, false),
		// This is the key part to disable previews
		slack.MsgOptionPostMessageParameters(slack.PostMessageParameters{
			UnfurlLinks: false,
			UnfurlMedia: false,
		}),
	)
	if sendSlackMessageError != nil {
		return fmt.Errorf("publish to slack: %w", sendSlackMessageError)
	}
	return nil
}
