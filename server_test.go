package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"discord-channel-summariser/Models"
	"discord-channel-summariser/SummarizeConversations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	summary    string
	err        error
	entries    []Models.CacheEntry
	historyErr error
	gotChannel string
}

func (f *fakeService) SummarizeChannel(_ context.Context, channelID string) (string, error) {
	f.gotChannel = channelID
	return f.summary, f.err
}

func (f *fakeService) History(_ context.Context, channelID string) ([]Models.CacheEntry, error) {
	f.gotChannel = channelID
	return f.entries, f.historyErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func serve(t *testing.T, service summaryService, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	newRouter(service, testLogger()).ServeHTTP(recorder, httptest.NewRequest(method, target, nil))
	return recorder
}

func TestHealth(t *testing.T) {
	rec := serve(t, &fakeService{}, http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Service running", rec.Body.String())
}

func TestSummarizeEndpoint(t *testing.T) {
	service := &fakeService{summary: "Summary of #general:\n\n..."}
	rec := serve(t, service, http.MethodPost, "/summarize?channel_id=123")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "123", service.gotChannel)
	assert.Equal(t, "Summary of #general:\n\n...", rec.Body.String())
}

func TestSummarizeEndpointStatusCodes(t *testing.T) {
	rec := serve(t, &fakeService{summary: SummarizeConversations.ChannelIDRequired}, http.MethodPost, "/summarize")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, SummarizeConversations.ChannelIDRequired, rec.Body.String())

	rec = serve(t, &fakeService{summary: SummarizeConversations.ChannelNotFound}, http.MethodPost, "/summarize?channel_id=9")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, &fakeService{err: errors.New("discord down")}, http.MethodPost, "/summarize?channel_id=9")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = serve(t, &fakeService{}, http.MethodGet, "/summarize?channel_id=9")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	service := &fakeService{entries: []Models.CacheEntry{{ID: "e1", ChannelID: "123", Summary: "s", CreatedAt: at}}}

	rec := serve(t, service, http.MethodGet, "/history?channel_id=123")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []Models.CacheEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, service.entries, got)
	assert.Contains(t, rec.Body.String(), `"created_at":"2026-05-06T07:08:09Z"`)
}

func TestHistoryEndpointErrors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, serve(t, &fakeService{}, http.MethodGet, "/history").Code)

	rec := serve(t, &fakeService{historyErr: errors.New("db gone")}, http.MethodGet, "/history?channel_id=1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestKeepAlivePingsUntilCancelled(t *testing.T) {
	var hits atomic.Int32
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer target.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		keepAlive(ctx, target.URL, 10*time.Millisecond, testLogger())
		close(done)
	}()

	require.Eventually(t, func() bool { return hits.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("keepAlive did not stop after cancel")
	}
}
