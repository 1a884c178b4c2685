package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"discord-channel-summariser/Models"
	"discord-channel-summariser/SummarizeConversations"
)

type summaryService interface {
	SummarizeChannel(ctx context.Context, channelID string) (string, error)
	History(ctx context.Context, channelID string) ([]Models.CacheEntry, error)
}

func newRouter(service summaryService, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Service running"))
	})

	mux.HandleFunc("POST /summarize", func(w http.ResponseWriter, r *http.Request) {
		channelID := r.URL.Query().Get("channel_id")

		summary, summarizeError := service.SummarizeChannel(r.Context(), channelID)
		if summarizeError != nil {
			logger.Error("main:summarize#Error summarizing channel", "channel_id", channelID, "err", summarizeError)
			http.Error(w, "Failed to summarize channel", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		switch summary {
		case SummarizeConversations.ChannelIDRequired:
			w.WriteHeader(http.StatusBadRequest)
		case SummarizeConversations.ChannelNotFound:
			w.WriteHeader(http.StatusNotFound)
		}
		w.Write([]byte(summary))
	})

	mux.HandleFunc("GET /history", func(w http.ResponseWriter, r *http.Request) {
		channelID := r.URL.Query().Get("channel_id")
		if channelID == "" {
			http.Error(w, SummarizeConversations.ChannelIDRequired, http.StatusBadRequest)
			return
		}

		entries, historyError := service.History(r.Context(), channelID)
		if historyError != nil {
			logger.Error("main:history#Error reading history", "channel_id", channelID, "err", historyError)
			http.Error(w, "Failed to read history", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if encodeError := json.NewEncoder(w).Encode(entries); encodeError != nil {
			logger.Error("main:history#Error encoding history", "err", encodeError)
		}
	})

	return mux
}

// keepAlive pings the public URL so free-tier hosts do not idle the service out.
func keepAlive(ctx context.Context, deploymentBaseURI string, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		request, requestError := http.NewRequestWithContext(ctx, http.MethodGet, deploymentBaseURI, nil)
		if requestError != nil {
			logger.Error("main:keepAlive#Invalid deployment uri", "err", requestError)
			return
		}
		resp, err := http.DefaultClient.Do(request)
		if err != nil {
			logger.Warn("main:keepAlive#Health check failed", "err", err)
		} else {
			resp.Body.Close()
			logger.Debug("main:keepAlive#Health check successful")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
