package Repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createPostgresTable = `
	CREATE TABLE IF NOT EXISTS conversation_summaries (
		seq        BIGSERIAL PRIMARY KEY,
		id         TEXT        NOT NULL UNIQUE,
		channel_id TEXT        NOT NULL,
		summary    TEXT        NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS conversation_summaries_channel_idx
		ON conversation_summaries (channel_id, seq)`

// PostgresCache stores summaries in Postgres. Order within a channel follows the
// BIGSERIAL sequence, so concurrent appends for the same channel are ordered by commit.
type PostgresCache struct {
	dbPool *pgxpool.Pool
}

// InitDbPool connects to databaseUrl and makes sure the summaries table exists.
func InitDbPool(ctx context.Context, databaseUrl string) (*pgxpool.Pool, error) {
	if databaseUrl == "" {
		return nil, fmt.Errorf("repo: DATABASE_URL is not set")
	}

	dbPool, dbConnectionError := pgxpool.New(ctx, databaseUrl)
	if dbConnectionError != nil {
		return nil, fmt.Errorf("repo: connect postgres: %w", dbConnectionError)
	}

	if _, migrateError := dbPool.Exec(ctx, createPostgresTable); migrateError != nil {
		dbPool.Close()
		return nil, fmt.Errorf("repo: create conversation_summaries: %w", migrateError)
	}
	return dbPool, nil
}

func NewPostgresCache(dbPool *pgxpool.Pool) *PostgresCache {
	return &PostgresCache{dbPool: dbPool}
}

func (p *PostgresCache) Append(ctx context.Context, channelID string, entry CacheEntry) error {
	if p.dbPool == nil {
		return fmt.Errorf("repo: database pool is not initialized")
	}

	query := `
		INSERT INTO conversation_summaries (id, channel_id, summary, created_at)
		VALUES ($1, $2, $3, $4)`

	_, saveSummaryError := p.dbPool.Exec(ctx, query, entry.ID, channelID, entry.Summary, entry.CreatedAt)
	if saveSummaryError != nil {
		return fmt.Errorf("repo: append summary for %s: %w", channelID, saveSummaryError)
	}
	return nil
}

func (p *PostgresCache) Get(ctx context.Context, channelID string) ([]CacheEntry, error) {
	if p.dbPool == nil {
		return nil, fmt.Errorf("repo: database pool is not initialized")
	}

	query := `
		SELECT id, channel_id, summary, created_at
		FROM conversation_summaries
		WHERE channel_id = $1
		ORDER BY seq`

	rows, dbQueryError := p.dbPool.Query(ctx, query, channelID)
	if dbQueryError != nil {
		return nil, fmt.Errorf("repo: query summaries for %s: %w", channelID, dbQueryError)
	}
	defer rows.Close()

	entries := []CacheEntry{}
	for rows.Next() {
		var entry CacheEntry
		if err := rows.Scan(&entry.ID, &entry.ChannelID, &entry.Summary, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("repo: scan summary: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo: iterate summaries: %w", err)
	}
	return entries, nil
}

func (p *PostgresCache) Close() {
	if p.dbPool != nil {
		p.dbPool.Close()
	}
}

var _ ConversationCache = (*PostgresCache)(nil)
