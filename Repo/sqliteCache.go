package Repo

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const createSQLiteTable = `
	CREATE TABLE IF NOT EXISTS conversation_summaries (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		channel_id TEXT NOT NULL,
		summary    TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS conversation_summaries_channel_idx
		ON conversation_summaries (channel_id, seq);`

// SQLiteCache stores summaries in a local SQLite file, for single-node
// deployments that want history to survive a restart without running Postgres.
type SQLiteCache struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLiteCache opens (or creates) the database at path. If logger is nil,
// the default slog logger is used.
func OpenSQLiteCache(ctx context.Context, path string, logger *slog.Logger) (*SQLiteCache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, openError := sql.Open("sqlite", path)
	if openError != nil {
		return nil, fmt.Errorf("repo: open sqlite %s: %w", path, openError)
	}
	// one writer keeps appends for a channel in call order
	db.SetMaxOpenConns(1)

	if _, migrateError := db.ExecContext(ctx, createSQLiteTable); migrateError != nil {
		db.Close()
		return nil, fmt.Errorf("repo: create conversation_summaries: %w", migrateError)
	}
	return &SQLiteCache{db: db, logger: logger}, nil
}

func (s *SQLiteCache) Append(ctx context.Context, channelID string, entry CacheEntry) error {
	_, insertError := s.db.ExecContext(ctx, `
		INSERT INTO conversation_summaries (id, channel_id, summary, created_at)
		VALUES (?, ?, ?, ?)`,
		entry.ID,
		channelID,
		entry.Summary,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if insertError != nil {
		return fmt.Errorf("repo: append summary for %s: %w", channelID, insertError)
	}

	s.logger.Debug("Repo:SQLiteCache.Append#Stored summary",
		"channel_id", channelID,
		"entry_id", entry.ID,
		"summary_len", len(entry.Summary),
	)
	return nil
}

func (s *SQLiteCache) Get(ctx context.Context, channelID string) ([]CacheEntry, error) {
	rows, queryError := s.db.QueryContext(ctx, `
		SELECT id, channel_id, summary, created_at
		FROM conversation_summaries
		WHERE channel_id = ?
		ORDER BY seq`,
		channelID,
	)
	if queryError != nil {
		return nil, fmt.Errorf("repo: query summaries for %s: %w", channelID, queryError)
	}
	defer rows.Close()

	entries := []CacheEntry{}
	for rows.Next() {
		var (
			entry     CacheEntry
			createdAt string
		)
		if err := rows.Scan(&entry.ID, &entry.ChannelID, &entry.Summary, &createdAt); err != nil {
			return nil, fmt.Errorf("repo: scan summary: %w", err)
		}
		parsed, parseError := time.Parse(time.RFC3339Nano, createdAt)
		if parseError != nil {
			return nil, fmt.Errorf("repo: parse created_at of summary %s: %w", entry.ID, parseError)
		}
		entry.CreatedAt = parsed
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo: iterate summaries: %w", err)
	}
	return entries, nil
}

func (s *SQLiteCache) Close() error {
	return s.db.Close()
}

var _ ConversationCache = (*SQLiteCache)(nil)
