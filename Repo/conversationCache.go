// Package Repo keeps the summary history per channel. Entries are append-only:
// nothing in this package edits or removes a stored summary.
package Repo

import (
	"context"
	"sync"
	"time"

	"discord-channel-summariser/Models"

	"github.com/google/uuid"
)

type CacheEntry = Models.CacheEntry

// ConversationCache maps a channel id to the ordered summaries produced for it.
// Implementations must be safe for concurrent use and keep append order per channel.
type ConversationCache interface {
	Append(ctx context.Context, channelID string, entry CacheEntry) error
	// Get returns the channel's entries oldest first, or an empty slice for an unknown channel.
	Get(ctx context.Context, channelID string) ([]CacheEntry, error)
}

// NewEntry stamps a summary with an id and creation time.
func NewEntry(channelID string, summary string) CacheEntry {
	return CacheEntry{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		Summary:   summary,
		CreatedAt: time.Now().UTC(),
	}
}

// MemoryCache is the process-local cache. It never fails.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]CacheEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]CacheEntry)}
}

func (m *MemoryCache) Append(_ context.Context, channelID string, entry CacheEntry) error {
	entry.ChannelID = channelID
	m.mu.Lock()
	m.entries[channelID] = append(m.entries[channelID], entry)
	m.mu.Unlock()
	return nil
}

// Get hands out a copy so callers cannot reach into the cache.
func (m *MemoryCache) Get(_ context.Context, channelID string) ([]CacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]CacheEntry, len(m.entries[channelID]))
	copy(entries, m.entries[channelID])
	return entries, nil
}

var _ ConversationCache = (*MemoryCache)(nil)
