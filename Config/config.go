// Package Config loads the service configuration from the environment,
// optionally seeded from a local .env file.
package Config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendGemini = "gemini"
	BackendOpenAI = "openai"

	CacheMemory   = "memory"
	CachePostgres = "postgres"
	CacheSQLite   = "sqlite"
)

type Config struct {
	MaxEntries       int
	PersonaIntensity int

	InferenceBackend     string
	InferenceModel       string
	InferenceTemperature float64
	InferenceMaxTokens   int
	InferenceTimeout     time.Duration
	InferenceMaxRetries  int
	GeminiAPIKey         string
	OpenAIAPIKey         string
	OpenAIBaseURL        string

	SummaryConcurrency  int
	PromptTemplatesFile string

	CacheBackend string
	DatabaseURL  string
	SQLitePath   string

	DiscordBotToken string
	DiscordGuildID  string

	SlackBotToken      string
	SlackDigestChannel string

	SummarySchedule   string
	SummaryChannelIDs []string

	Port              string
	DeploymentBaseURI string
	LogLevel          slog.Level
}

// Load reads .env when present and then the process environment. Values that
// do not parse fall back to their defaults; Validate reports what is left
// inconsistent.
func Load() Config {
	// a missing .env is the normal case in deployment
	_ = godotenv.Load()

	return Config{
		MaxEntries:       IntOr("MAX_ENTRIES", 100),
		PersonaIntensity: IntOr("PERSONA_INTENSITY", 50),

		InferenceBackend:     strings.ToLower(StringOr("INFERENCE_BACKEND", BackendGemini)),
		InferenceModel:       StringOr("INFERENCE_MODEL", ""),
		InferenceTemperature: FloatOr("INFERENCE_TEMPERATURE", 0.3),
		InferenceMaxTokens:   IntOr("INFERENCE_MAX_TOKENS", 1024),
		InferenceTimeout:     DurationOr("INFERENCE_TIMEOUT", 60*time.Second),
		InferenceMaxRetries:  IntOr("INFERENCE_MAX_RETRIES", 3),
		GeminiAPIKey:         StringOr("GEMINI_API_KEY", ""),
		OpenAIAPIKey:         StringOr("OPENAI_API_KEY", ""),
		OpenAIBaseURL:        StringOr("OPENAI_BASE_URL", ""),

		SummaryConcurrency:  IntOr("SUMMARY_CONCURRENCY", 4),
		PromptTemplatesFile: StringOr("PROMPT_TEMPLATES_FILE", ""),

		CacheBackend: strings.ToLower(StringOr("CACHE_BACKEND", CacheMemory)),
		DatabaseURL:  StringOr("DATABASE_URL", ""),
		SQLitePath:   StringOr("SQLITE_PATH", "summaries.db"),

		DiscordBotToken: StringOr("DISCORD_BOT_TOKEN", ""),
		DiscordGuildID:  StringOr("DISCORD_GUILD_ID", ""),

		SlackBotToken:      StringOr("SLACK_BOT_TOKEN", ""),
		SlackDigestChannel: StringOr("SLACK_DIGEST_CHANNEL", ""),

		SummarySchedule:   StringOr("SUMMARY_SCHEDULE", ""),
		SummaryChannelIDs: StringSliceOr("SUMMARY_CHANNEL_IDS", nil),

		Port:              StringOr("PORT", "8080"),
		DeploymentBaseURI: StringOr("DEPLOYMENT_BASE_URI", ""),
		LogLevel:          parseLogLevel(StringOr("LOG_LEVEL", "info")),
	}
}

func parseLogLevel(v string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// SlackEnabled reports whether summaries should be cross-posted to Slack.
func (c Config) SlackEnabled() bool {
	return c.SlackBotToken != "" && c.SlackDigestChannel != ""
}

// Validate returns every problem found, joined into one error.
func (c Config) Validate() error {
	var errs []error

	if c.MaxEntries <= 0 {
		errs = append(errs, fmt.Errorf("MAX_ENTRIES must be positive, got %d", c.MaxEntries))
	}
	if c.PersonaIntensity < 0 || c.PersonaIntensity > 100 {
		errs = append(errs, fmt.Errorf("PERSONA_INTENSITY must be between 0 and 100, got %d", c.PersonaIntensity))
	}
	if c.InferenceTemperature < 0 || c.InferenceTemperature > 2 {
		errs = append(errs, fmt.Errorf("INFERENCE_TEMPERATURE must be between 0 and 2, got %g", c.InferenceTemperature))
	}
	if c.InferenceMaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("INFERENCE_MAX_TOKENS must be positive, got %d", c.InferenceMaxTokens))
	}
	if c.InferenceMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("INFERENCE_MAX_RETRIES must not be negative, got %d", c.InferenceMaxRetries))
	}
	if c.SummaryConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("SUMMARY_CONCURRENCY must be positive, got %d", c.SummaryConcurrency))
	}

	switch c.InferenceBackend {
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini backend"))
		}
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("INFERENCE_BACKEND must be %q or %q, got %q", BackendGemini, BackendOpenAI, c.InferenceBackend))
	}

	switch c.CacheBackend {
	case CacheMemory:
	case CachePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres cache"))
		}
	case CacheSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be one of memory, postgres, sqlite, got %q", c.CacheBackend))
	}

	if c.DiscordBotToken == "" {
		errs = append(errs, errors.New("DISCORD_BOT_TOKEN is required"))
	}
	if c.SummarySchedule != "" && len(c.SummaryChannelIDs) == 0 {
		errs = append(errs, errors.New("SUMMARY_CHANNEL_IDS is required when SUMMARY_SCHEDULE is set"))
	}
	if (c.SlackBotToken == "") != (c.SlackDigestChannel == "") {
		errs = append(errs, errors.New("SLACK_BOT_TOKEN and SLACK_DIGEST_CHANNEL must be set together"))
	}

	return errors.Join(errs...)
}
