// Package Scheduler runs channel summaries on a cron schedule and hands the
// results to every configured publisher.
package Scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

type Summarizer interface {
	SummarizeChannel(ctx context.Context, channelID string) (string, error)
}

// Publisher delivers a finished summary somewhere (Slack, back into Discord).
type Publisher interface {
	Publish(ctx context.Context, channelID string, summary string) error
}

type Scheduler struct {
	cron       *cron.Cron
	summarizer Summarizer
	publishers []Publisher
	channelIDs []string
	runTimeout time.Duration
	logger     *slog.Logger
}

// New builds a scheduler for channelIDs. runTimeout bounds a whole run, zero
// means unbounded. A run still in progress when the next tick fires makes that
// tick a no-op.
func New(summarizer Summarizer, channelIDs []string, publishers []Publisher, runTimeout time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cronLogger := slogCronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		summarizer: summarizer,
		publishers: publishers,
		channelIDs: channelIDs,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

// Schedule registers the summary run under a standard five-field cron spec or
// a descriptor such as "@daily" or "@every 6h".
func (s *Scheduler) Schedule(spec string) error {
	if len(s.channelIDs) == 0 {
		return errors.New("scheduler: no channels configured")
	}
	if _, addFuncError := s.cron.AddFunc(spec, s.tick); addFuncError != nil {
		return fmt.Errorf("scheduler: invalid schedule %q: %w", spec, addFuncError)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and returns a context that is done once any
// running job has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) tick() {
	ctx := context.Background()
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}
	if runError := s.RunOnce(ctx); runError != nil {
		s.logger.Error("Scheduler:tick#Run finished with errors", "err", runError)
	}
}

// RunOnce summarises every configured channel in order and publishes each
// summary. A failing channel or publisher does not stop the rest, all
// failures are returned joined.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)
	logger.Info("Scheduler:RunOnce#Starting run", "channels", len(s.channelIDs))

	var runErrors []error
	for _, channelID := range s.channelIDs {
		if ctx.Err() != nil {
			runErrors = append(runErrors, ctx.Err())
			break
		}

		summary, summarizeError := s.summarizer.SummarizeChannel(ctx, channelID)
		if summarizeError != nil {
			logger.Error("Scheduler:RunOnce#Error summarizing channel", "channel_id", channelID, "err", summarizeError)
			runErrors = append(runErrors, fmt.Errorf("channel %s: %w", channelID, summarizeError))
			continue
		}

		for _, publisher := range s.publishers {
			if publishError := publisher.Publish(ctx, channelID, summary); publishError != nil {
				logger.Error("Scheduler:RunOnce#Error publishing summary", "channel_id", channelID, "err", publishError)
				runErrors = append(runErrors, fmt.Errorf("channel %s: %w", channelID, publishError))
			}
		}
	}

	logger.Info("Scheduler:RunOnce#Run complete", "failures", len(runErrors))
	return errors.Join(runErrors...)
}

// slogCronLogger routes cron's own logging into slog.
type slogCronLogger struct {
	logger *slog.Logger
}

func (l slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("Scheduler:cron#"+msg, keysAndValues...)
}

func (l slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("Scheduler:cron#"+msg, append(keysAndValues, "err", err)...)
}
