package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discord-channel-summariser/Config"
	"discord-channel-summariser/DiscordBot"
	"discord-channel-summariser/GetMessages"
	"discord-channel-summariser/Inference"
	"discord-channel-summariser/Prompts"
	"discord-channel-summariser/PublishToSlack"
	"discord-channel-summariser/Repo"
	"discord-channel-summariser/Scheduler"
	"discord-channel-summariser/SummarizeConversations"

	"github.com/slack-go/slack"
)

const (
	keepAliveInterval = 5 * time.Minute
	shutdownTimeout   = 15 * time.Second
)

func main() {
	if runError := run(); runError != nil {
		slog.Error("main#Fatal", "err", runError)
		os.Exit(1)
	}
}

func run() error {
	cfg := Config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if validateError := cfg.Validate(); validateError != nil {
		return fmt.Errorf("invalid configuration: %w", validateError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	promptBuilder, promptError := newPromptBuilder(cfg)
	if promptError != nil {
		return promptError
	}

	tokenCounter, tiktokenError := Prompts.NewTiktokenCounter()
	if tiktokenError != nil {
		logger.Warn("main#Tiktoken unavailable, estimating token counts", "err", tiktokenError)
		tokenCounter = Prompts.EstimateTokens
	}

	inferenceClient, inferenceError := newInferenceClient(ctx, cfg)
	if inferenceError != nil {
		return inferenceError
	}

	cache, closeCache, cacheError := newCache(ctx, cfg, logger)
	if cacheError != nil {
		return cacheError
	}
	defer closeCache()

	session, sessionError := DiscordBot.NewSession(cfg.DiscordBotToken)
	if sessionError != nil {
		return sessionError
	}

	summarizer := SummarizeConversations.NewSummarizer(
		GetMessages.NewDiscordSource(session),
		inferenceClient,
		cache,
		promptBuilder,
		SummarizeConversations.Options{
			MaxEntries:       cfg.MaxEntries,
			PersonaIntensity: cfg.PersonaIntensity,
			Model:            cfg.InferenceModel,
			Temperature:      cfg.InferenceTemperature,
			MaxTokens:        cfg.InferenceMaxTokens,
			Concurrency:      cfg.SummaryConcurrency,
		},
		SummarizeConversations.WithLogger(logger),
		SummarizeConversations.WithTokenCounter(tokenCounter),
	)

	bot := DiscordBot.New(session, summarizer, cfg.DiscordGuildID, 0, logger)
	if startError := bot.Start(ctx); startError != nil {
		return startError
	}
	defer bot.Stop()

	if cfg.SummarySchedule != "" {
		publishers := []Scheduler.Publisher{DiscordBot.NewChannelPublisher(session)}
		if cfg.SlackEnabled() {
			publishers = append(publishers, PublishToSlack.NewPublisher(slack.New(cfg.SlackBotToken), cfg.SlackDigestChannel))
		}

		digestScheduler := Scheduler.New(summarizer, cfg.SummaryChannelIDs, publishers, 0, logger)
		if scheduleError := digestScheduler.Schedule(cfg.SummarySchedule); scheduleError != nil {
			return scheduleError
		}
		digestScheduler.Start()
		defer func() { <-digestScheduler.Stop().Done() }()
		logger.Info("main#Scheduled digests", "schedule", cfg.SummarySchedule, "channels", len(cfg.SummaryChannelIDs))
	}

	if cfg.DeploymentBaseURI != "" {
		go keepAlive(ctx, cfg.DeploymentBaseURI, keepAliveInterval, logger)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(summarizer, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErrors := make(chan error, 1)
	go func() {
		logger.Info("main#Listening", "port", cfg.Port)
		serveErrors <- server.ListenAndServe()
	}()

	select {
	case serveError := <-serveErrors:
		if !errors.Is(serveError, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", serveError)
		}
	case <-ctx.Done():
		logger.Info("main#Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newPromptBuilder(cfg Config.Config) (*Prompts.Builder, error) {
	templates := Prompts.DefaultTemplates()
	if cfg.PromptTemplatesFile != "" {
		loaded, loadTemplatesError := Prompts.LoadTemplates(cfg.PromptTemplatesFile)
		if loadTemplatesError != nil {
			return nil, loadTemplatesError
		}
		templates = loaded
	}
	return Prompts.NewBuilder(templates)
}

func newInferenceClient(ctx context.Context, cfg Config.Config) (Inference.Client, error) {
	switch cfg.InferenceBackend {
	case Config.BackendOpenAI:
		return Inference.NewOpenAIClient(Inference.OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Timeout:    cfg.InferenceTimeout,
			MaxRetries: cfg.InferenceMaxRetries,
		})
	default:
		return Inference.NewGeminiClient(ctx, Inference.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Timeout: cfg.InferenceTimeout,
		})
	}
}

// newCache returns the configured cache and a func releasing its resources.
func newCache(ctx context.Context, cfg Config.Config, logger *slog.Logger) (Repo.ConversationCache, func(), error) {
	switch cfg.CacheBackend {
	case Config.CachePostgres:
		dbPool, dbInitialisationError := Repo.InitDbPool(ctx, cfg.DatabaseURL)
		if dbInitialisationError != nil {
			return nil, nil, fmt.Errorf("failed to initialise DB: %w", dbInitialisationError)
		}
		cache := Repo.NewPostgresCache(dbPool)
		return cache, cache.Close, nil
	case Config.CacheSQLite:
		cache, openError := Repo.OpenSQLiteCache(ctx, cfg.SQLitePath, logger)
		if openError != nil {
			return nil, nil, openError
		}
		return cache, func() {
			if closeError := cache.Close(); closeError != nil {
				logger.Warn("main#Error closing sqlite cache", "err", closeError)
			}
		}, nil
	default:
		return Repo.NewMemoryCache(), func() {}, nil
	}
}
