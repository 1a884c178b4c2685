package SummarizeConversations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"discord-channel-summariser/GetMessages"
	"discord-channel-summariser/Inference"
	"discord-channel-summariser/Models"
	"discord-channel-summariser/Prompts"
	"discord-channel-summariser/Repo"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type CacheEntry = Models.CacheEntry

const (
	ChannelNotFound     = "Channel not found."
	ChannelIDRequired   = "channel_id is required."
	MainChannelContext  = "Main Channel"
	emptyBucketSummary  = "No messages to summarize."
	summaryErrorPrefix  = "Error in generating summary: "
	defaultMaxEntries   = 100
	defaultConcurrency  = 4
	defaultMaxTokens    = 1024
	defaultTemperature  = 0.3
	defaultPersonaLevel = 50
)

// Options are the per-deployment knobs of a Summarizer.
type Options struct {
	// MaxEntries bounds how much history is fetched per run.
	MaxEntries       int
	PersonaIntensity int
	Model            string
	Temperature      float64
	MaxTokens        int
	// Concurrency bounds how many buckets are sent to inference at once.
	Concurrency int
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		MaxEntries:       defaultMaxEntries,
		PersonaIntensity: defaultPersonaLevel,
		Temperature:      defaultTemperature,
		MaxTokens:        defaultMaxTokens,
		Concurrency:      defaultConcurrency,
	}
}

// Summarizer ties the pipeline together: fetch, partition, stats and chunks per
// bucket, one inference call per bucket, assembly, and finally the cache append.
type Summarizer struct {
	source    GetMessages.MessageSource
	inference Inference.Client
	cache     Repo.ConversationCache
	prompts   *Prompts.Builder
	opts      Options
	tokens    Prompts.TokenCounter
	logger    *slog.Logger
}

type SummarizerOption func(*Summarizer)

func WithLogger(logger *slog.Logger) SummarizerOption {
	return func(s *Summarizer) { s.logger = logger }
}

func WithTokenCounter(counter Prompts.TokenCounter) SummarizerOption {
	return func(s *Summarizer) { s.tokens = counter }
}

func NewSummarizer(
	source GetMessages.MessageSource,
	inference Inference.Client,
	cache Repo.ConversationCache,
	prompts *Prompts.Builder,
	opts Options,
	options ...SummarizerOption,
) *Summarizer {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = defaultMaxEntries
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	s := &Summarizer{
		source:    source,
		inference: inference,
		cache:     cache,
		prompts:   prompts,
		opts:      opts,
		tokens:    Prompts.EstimateTokens,
		logger:    slog.Default(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// bucket is one main-channel or thread group on its way to becoming a section.
type bucket struct {
	context  string
	messages []Message
	stats    Stats
	content  string
}

// SummarizeChannel produces the combined summary for a channel and records it
// in the cache. Inference failures end up as text inside the summary; only
// history retrieval faults and cancellation are returned as errors.
func (s *Summarizer) SummarizeChannel(ctx context.Context, channelID string) (string, error) {
	if channelID == "" {
		return ChannelIDRequired, nil
	}
	logger := s.logger.With("run_id", uuid.NewString(), "channel_id", channelID)

	channel, getChannelError := s.source.GetChannel(ctx, channelID)
	if errors.Is(getChannelError, GetMessages.ErrNotFound) {
		logger.Info("SummarizeConversations:SummarizeChannel#Channel not found")
		return ChannelNotFound, nil
	}
	if getChannelError != nil {
		return "", fmt.Errorf("summarize %s: %w", channelID, getChannelError)
	}

	history, getHistoryError := s.source.GetHistory(ctx, channelID, s.opts.MaxEntries)
	if getHistoryError != nil {
		if errors.Is(getHistoryError, GetMessages.ErrNotFound) {
			return ChannelNotFound, nil
		}
		return "", fmt.Errorf("summarize %s: %w", channelID, getHistoryError)
	}

	partition := GetMessages.PartitionMessages(history)
	buckets := s.buildBuckets(ctx, logger, channelID, partition)

	logger.Info("SummarizeConversations:SummarizeChannel#Summarizing",
		"messages", len(history),
		"threads", len(partition.ThreadOrder),
	)

	s.summarizeBuckets(ctx, logger, buckets)

	summary := assembleSummary(channel.Name, buckets)

	// nothing may be cached for a run the caller gave up on
	if ctxError := ctx.Err(); ctxError != nil {
		return "", ctxError
	}
	if appendError := s.cache.Append(ctx, channelID, Repo.NewEntry(channelID, summary)); appendError != nil {
		logger.Error("SummarizeConversations:SummarizeChannel#Error caching summary", "err", appendError)
	}

	return summary, nil
}

// History returns the cached summaries for a channel, oldest first.
func (s *Summarizer) History(ctx context.Context, channelID string) ([]CacheEntry, error) {
	return s.cache.Get(ctx, channelID)
}

// buildBuckets orders the buckets main first, then threads in discovery order,
// and resolves each thread's display name.
func (s *Summarizer) buildBuckets(ctx context.Context, logger *slog.Logger, channelID string, partition Models.Partition) []*bucket {
	buckets := []*bucket{{context: MainChannelContext, messages: partition.Main}}

	for _, threadID := range partition.ThreadOrder {
		label := "Thread: " + threadID
		thread, getThreadError := s.source.GetThread(ctx, channelID, threadID)
		switch {
		case getThreadError == nil:
			label = "Thread: " + thread.Name
		case errors.Is(getThreadError, GetMessages.ErrNotFound):
			logger.Warn("SummarizeConversations:buildBuckets#Thread not found, using its id", "thread_id", threadID)
		default:
			logger.Warn("SummarizeConversations:buildBuckets#Error looking up thread", "thread_id", threadID, "err", getThreadError)
		}
		buckets = append(buckets, &bucket{context: label, messages: partition.Threads[threadID]})
	}
	return buckets
}

// summarizeBuckets fills in stats and content for every bucket. Buckets share no
// state, so they run concurrently; each writes only to its own struct.
func (s *Summarizer) summarizeBuckets(ctx context.Context, logger *slog.Logger, buckets []*bucket) {
	var group errgroup.Group
	group.SetLimit(s.opts.Concurrency)

	for _, b := range buckets {
		group.Go(func() error {
			b.stats = AggregateStats(b.messages)
			b.content = s.summarizeBucket(ctx, logger, b)
			return nil
		})
	}
	group.Wait()
}

// summarizeBucket never fails: an inference error becomes the bucket's content.
func (s *Summarizer) summarizeBucket(ctx context.Context, logger *slog.Logger, b *bucket) string {
	if len(b.messages) == 0 {
		return emptyBucketSummary
	}

	content := JoinChunks(FormatChunks(b.messages))
	prompt, buildPromptError := s.prompts.Build(s.opts.PersonaIntensity, b.context, content)
	if buildPromptError != nil {
		logger.Error("SummarizeConversations:summarizeBucket#Error building prompt", "context", b.context, "err", buildPromptError)
		return summaryErrorPrefix + buildPromptError.Error()
	}

	logger.Debug("SummarizeConversations:summarizeBucket#Sending bucket",
		"context", b.context,
		"messages", len(b.messages),
		"prompt_tokens", Prompts.CountPromptTokens(s.tokens, prompt),
	)

	request := Inference.NewRequest(prompt, s.opts.Model, s.opts.Temperature, s.opts.MaxTokens)
	response, inferenceError := s.inference.Complete(ctx, request)
	if inferenceError != nil {
		logger.Error("SummarizeConversations:summarizeBucket#Error getting summary", "context", b.context, "err", inferenceError)
		return summaryErrorPrefix + inferenceError.Error()
	}

	summaryText, extractError := Inference.ExtractContent(response)
	if extractError != nil {
		logger.Error("SummarizeConversations:summarizeBucket#Unexpected response", "context", b.context, "err", extractError)
		return summaryErrorPrefix + extractError.Error()
	}
	return summaryText
}

func assembleSummary(channelName string, buckets []*bucket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summary of #%s:\n\n", channelName)
	for i, bk := range buckets {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(formatSection(bk.context, bk.stats, bk.content))
	}
	return b.String()
}

// formatSection renders participants, shared files (only when there are any)
// and the content summary for one bucket.
func formatSection(label string, stats Stats, content string) string {
	var b strings.Builder

	b.WriteString(label + "\n")
	b.WriteString("Participants:\n")
	for _, author := range stats.AuthorCounts.Entries() {
		fmt.Fprintf(&b, "- %s: %d messages\n", author.Key, author.Count)
	}

	if stats.FileTypeCounts.Len() > 0 {
		b.WriteString("\nShared Files:\n")
		for _, fileType := range stats.FileTypeCounts.Entries() {
			fmt.Fprintf(&b, "- %s: %d files\n", fileType.Key, fileType.Count)
		}
	}

	fmt.Fprintf(&b, "\nContent Summary:\n%s\n", content)
	return b.String()
}
