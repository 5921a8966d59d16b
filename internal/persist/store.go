// Package persist saves and loads campaign state as one JSON document per
// campaign, keyed by campaign id, behind a backend-neutral store interface.
package persist

import "context"

// SnapshotStore is the durable side of the persistence layer. Save and load
// are the engine's only blocking I/O points.
type SnapshotStore interface {
	EnsureSchema(ctx context.Context) error
	SaveSnapshot(ctx context.Context, campaignID string, doc []byte) error
	LoadSnapshot(ctx context.Context, campaignID string) (doc []byte, found bool, err error)
	ListCampaigns(ctx context.Context) ([]string, error)
	Close(ctx context.Context) error
}
