package Scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSummarizer struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeSummarizer) SummarizeChannel(_ context.Context, channelID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, channelID)
	if err := f.fail[channelID]; err != nil {
		return "", err
	}
	return "summary of " + channelID, nil
}

type published struct {
	channelID string
	summary   string
}

type fakePublisher struct {
	got []published
	err error
}

func (f *fakePublisher) Publish(_ context.Context, channelID string, summary string) error {
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, published{channelID, summary})
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRunOncePublishesEveryChannel(t *testing.T) {
	summarizer := &fakeSummarizer{}
	slackOut := &fakePublisher{}
	discordOut := &fakePublisher{}
	s := New(summarizer, []string{"a", "b"}, []Publisher{slackOut, discordOut}, 0, quietLogger())

	require.NoError(t, s.RunOnce(context.Background()))

	assert.Equal(t, []string{"a", "b"}, summarizer.calls)
	want := []published{{"a", "summary of a"}, {"b", "summary of b"}}
	assert.Equal(t, want, slackOut.got)
	assert.Equal(t, want, discordOut.got)
}

func TestRunOnceContinuesPastFailures(t *testing.T) {
	boom := errors.New("history unavailable")
	summarizer := &fakeSummarizer{fail: map[string]error{"a": boom}}
	out := &fakePublisher{}
	s := New(summarizer, []string{"a", "b"}, []Publisher{out}, 0, quietLogger())

	err := s.RunOnce(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []published{{"b", "summary of b"}}, out.got)
}

func TestRunOnceReportsPublisherErrors(t *testing.T) {
	rejected := errors.New("not_in_channel")
	s := New(&fakeSummarizer{}, []string{"a"}, []Publisher{&fakePublisher{err: rejected}}, 0, quietLogger())

	assert.ErrorIs(t, s.RunOnce(context.Background()), rejected)
}

func TestRunOnceStopsWhenCancelled(t *testing.T) {
	summarizer := &fakeSummarizer{}
	s := New(summarizer, []string{"a", "b"}, nil, 0, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.RunOnce(ctx), context.Canceled)
	assert.Empty(t, summarizer.calls)
}

func TestSchedule(t *testing.T) {
	s := New(&fakeSummarizer{}, []string{"a"}, nil, 0, quietLogger())
	assert.NoError(t, s.Schedule("0 9 * * *"))
	assert.NoError(t, s.Schedule("@every 6h"))
	assert.Error(t, s.Schedule("every morning"))

	empty := New(&fakeSummarizer{}, nil, nil, 0, quietLogger())
	assert.Error(t, empty.Schedule("@daily"))
}

func TestCronLoggerAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := slogCronLogger{logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	l.Info("skip", "reason", "still running")
	l.Error(errors.New("panic"), "recovered")

	assert.Contains(t, buf.String(), "Scheduler:cron#skip")
	assert.Contains(t, buf.String(), "reason=\"still running\"")
	assert.Contains(t, buf.String(), "err=panic")
}
