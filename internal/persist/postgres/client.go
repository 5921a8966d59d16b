package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"chronicler/internal/persist"
)

var _ persist.SnapshotStore = (*Client)(nil)

type Client struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Client, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{pool: pool}, nil
}

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS campaign_snapshots (
	campaign_id TEXT PRIMARY KEY,
	snapshot    JSONB NOT NULL,
	saved_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)
`
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("creating campaign_snapshots: %w", err)
	}
	return nil
}

func (c *Client) Close(ctx context.Context) error {
	c.pool.Close()
	return nil
}
