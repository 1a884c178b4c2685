package DiscordBot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"discord-channel-summariser/Models"

	"github.com/bwmarrin/discordgo"
)

const (
	commandSummarize = "summarize"
	commandHistory   = "summary_history"
	optionChannel    = "channel"
)

// Summarizer is what the bot needs from the summarisation pipeline.
type Summarizer interface {
	SummarizeChannel(ctx context.Context, channelID string) (string, error)
	History(ctx context.Context, channelID string) ([]Models.CacheEntry, error)
}

// Bot owns the Discord session and answers the summary slash commands.
type Bot struct {
	session    *discordgo.Session
	summarizer Summarizer
	guildID    string
	timeout    time.Duration
	logger     *slog.Logger
	cancel     context.CancelFunc
	ctx        context.Context
}

// NewSession opens nothing yet, it only prepares a session with the intents
// needed to read channel history.
func NewSession(token string) (*discordgo.Session, error) {
	session, sessionError := discordgo.New("Bot " + token)
	if sessionError != nil {
		return nil, fmt.Errorf("discord bot: new session: %w", sessionError)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
	return session, nil
}

// New wires a bot. guildID may be empty to register commands globally.
// timeout bounds a single /summarize run, zero means no bound.
func New(session *discordgo.Session, summarizer Summarizer, guildID string, timeout time.Duration, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		session:    session,
		summarizer: summarizer,
		guildID:    guildID,
		timeout:    timeout,
		logger:     logger,
	}
}

func commands() []*discordgo.ApplicationCommand {
	channelOption := &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         optionChannel,
		Description:  "Channel to use (defaults to this one)",
		Required:     false,
		ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
	}
	return []*discordgo.ApplicationCommand{
		{
			Name:        commandSummarize,
			Description: "Summarize the recent history of a channel and its threads",
			Options:     []*discordgo.ApplicationCommandOption{channelOption},
		},
		{
			Name:        commandHistory,
			Description: "Show the most recent cached summary of a channel",
			Options:     []*discordgo.ApplicationCommandOption{channelOption},
		},
	}
}

// Start registers the handlers and opens the gateway connection. The session
// is closed when ctx is done or Stop is called.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx, b.cancel = context.WithCancel(ctx)

	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteraction)

	if openError := b.session.Open(); openError != nil {
		return fmt.Errorf("discord bot: open: %w", openError)
	}

	go func() {
		<-b.ctx.Done()
		b.session.Close()
	}()
	return nil
}

func (b *Bot) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("DiscordBot:onReady#Logged in", "user", r.User.Username)

	if _, registerError := s.ApplicationCommandBulkOverwrite(r.User.ID, b.guildID, commands()); registerError != nil {
		b.logger.Error("DiscordBot:onReady#Error registering commands", "err", registerError)
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	channelID := resolveChannel(data.Options, i.ChannelID)

	switch data.Name {
	case commandSummarize:
		b.handleSummarize(s, i, channelID)
	case commandHistory:
		b.handleHistory(s, i, channelID)
	}
}

func (b *Bot) handleSummarize(s *discordgo.Session, i *discordgo.InteractionCreate, channelID string) {
	// summarising takes longer than the 3 second interaction window
	if ackError := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); ackError != nil {
		b.logger.Error("DiscordBot:handleSummarize#Error acknowledging interaction", "err", ackError)
		return
	}

	ctx := b.ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	summary, summarizeError := b.summarizer.SummarizeChannel(ctx, channelID)
	if summarizeError != nil {
		b.logger.Error("DiscordBot:handleSummarize#Error summarizing", "channel_id", channelID, "err", summarizeError)
		summary = "Sorry, I couldn't read that channel's history right now."
	}

	b.followUp(s, i, summary)
}

func (b *Bot) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate, channelID string) {
	entries, historyError := b.summarizer.History(b.ctx, channelID)
	text := formatHistory(entries)
	if historyError != nil {
		b.logger.Error("DiscordBot:handleHistory#Error reading history", "channel_id", channelID, "err", historyError)
		text = "Sorry, the summary history is unavailable right now."
	}

	chunks := SplitMessage(text, MaxMessageLength)
	if respondError := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: chunks[0]},
	}); respondError != nil {
		b.logger.Error("DiscordBot:handleHistory#Error responding", "err", respondError)
		return
	}
	b.followUp(s, i, strings.Join(chunks[1:], ""))
}

// followUp sends text as follow-up messages, split to fit Discord's limit.
func (b *Bot) followUp(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	if text == "" {
		return
	}
	for _, chunk := range SplitMessage(text, MaxMessageLength) {
		if _, followUpError := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: chunk}); followUpError != nil {
			b.logger.Error("DiscordBot:followUp#Error sending follow-up", "err", followUpError)
			return
		}
	}
}

// resolveChannel picks the channel option when given, the invoking channel otherwise.
func resolveChannel(options []*discordgo.ApplicationCommandInteractionDataOption, fallback string) string {
	for _, option := range options {
		if option.Name != optionChannel {
			continue
		}
		if channelID, ok := option.Value.(string); ok && channelID != "" {
			return channelID
		}
	}
	return fallback
}

func formatHistory(entries []Models.CacheEntry) string {
	if len(entries) == 0 {
		return "No summaries cached for this channel yet."
	}
	latest := entries[len(entries)-1]
	return fmt.Sprintf("%d cached summaries. Latest from %s:\n\n%s",
		len(entries), latest.CreatedAt.UTC().Format(time.RFC1123), latest.Summary)
}
