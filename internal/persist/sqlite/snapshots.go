package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (c *Client) SaveSnapshot(ctx context.Context, campaignID string, doc []byte) error {
	query := `
	INSERT INTO campaign_snapshots (campaign_id, snapshot, saved_at)
	VALUES (?, ?, datetime('now'))
	ON CONFLICT (campaign_id) DO UPDATE SET
		snapshot = excluded.snapshot,
		saved_at = datetime('now')
	`
	if _, err := c.db.ExecContext(ctx, query, campaignID, string(doc)); err != nil {
		return fmt.Errorf("saving snapshot for %s: %w", campaignID, err)
	}
	return nil
}

func (c *Client) LoadSnapshot(ctx context.Context, campaignID string) ([]byte, bool, error) {
	query := `SELECT snapshot FROM campaign_snapshots WHERE campaign_id = ?`

	var snapshot string
	err := c.db.QueryRowContext(ctx, query, campaignID).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading snapshot for %s: %w", campaignID, err)
	}
	return []byte(snapshot), true, nil
}

func (c *Client) ListCampaigns(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT campaign_id FROM campaign_snapshots ORDER BY campaign_id`)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning campaign id: %w", err)
		}
		campaigns = append(campaigns, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating campaigns: %w", err)
	}
	if campaigns == nil {
		campaigns = []string{}
	}
	return campaigns, nil
}
