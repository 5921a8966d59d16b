package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"chronicler/internal/memory"
	"chronicler/internal/world"
)

// CampaignDocument is the persisted form of everything the engine knows
// about one campaign: the world snapshot plus the entity store and
// relationship graph contents.
type CampaignDocument struct {
	CampaignID    string                  `json:"campaign_id"`
	SavedAt       string                  `json:"saved_at"`
	World         *world.CampaignSnapshot `json:"world"`
	Entities      []*memory.Entity        `json:"entities"`
	Relationships []memory.Edge           `json:"relationships"`
}

// Persister couples the in-memory engine to a snapshot store. Save and load
// report success as a boolean; the cause of a failure is logged, never
// raised to game-action handlers.
type Persister struct {
	store    SnapshotStore
	entities *memory.Store
	graph    *memory.Graph
	sim      *world.Simulator
	log      *slog.Logger
	now      func() time.Time
}

func NewPersister(store SnapshotStore, entities *memory.Store, graph *memory.Graph, sim *world.Simulator, log *slog.Logger) *Persister {
	if log == nil {
		log = slog.Default()
	}
	return &Persister{
		store:    store,
		entities: entities,
		graph:    graph,
		sim:      sim,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SaveCampaignState serializes one campaign's full state to its record.
// Other campaigns' data is never read or written.
func (p *Persister) SaveCampaignState(ctx context.Context, campaignID string) bool {
	doc := &CampaignDocument{
		CampaignID:    campaignID,
		SavedAt:       p.now().Format(time.RFC3339Nano),
		World:         p.sim.Snapshot(campaignID),
		Entities:      p.entities.Export(campaignID),
		Relationships: p.graph.Export(campaignID),
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		p.log.Error("campaign save failed", "campaign", campaignID, "error", err)
		return false
	}
	if err := p.store.SaveSnapshot(ctx, campaignID, payload); err != nil {
		p.log.Error("campaign save failed", "campaign", campaignID, "error", err)
		return false
	}
	return true
}

// LoadCampaignState replaces one campaign's in-memory state with its stored
// document. A missing record is a reported failure, not a crash.
func (p *Persister) LoadCampaignState(ctx context.Context, campaignID string) bool {
	payload, found, err := p.store.LoadSnapshot(ctx, campaignID)
	if err != nil {
		p.log.Error("campaign load failed", "campaign", campaignID, "error", err)
		return false
	}
	if !found {
		p.log.Warn("no saved state for campaign", "campaign", campaignID)
		return false
	}

	var doc CampaignDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		p.log.Error("campaign load failed", "campaign", campaignID, "error", err)
		return false
	}
	if doc.World == nil {
		p.log.Error("campaign load failed", "campaign", campaignID, "error", fmt.Errorf("document missing world state"))
		return false
	}

	p.sim.Restore(campaignID, doc.World)
	p.entities.Restore(campaignID, doc.Entities)
	p.graph.Restore(campaignID, doc.Relationships)
	return true
}
