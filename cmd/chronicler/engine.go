package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"chronicler/internal/config"
	"chronicler/internal/memory"
	"chronicler/internal/persist"
	"chronicler/internal/session"
	"chronicler/internal/world"
)

// engine bundles the in-memory components plus the snapshot store behind
// them. Every command builds one, works on a campaign, and closes it.
type engine struct {
	cfg       *config.ProjectConfig
	db        persist.SnapshotStore
	entities  *memory.Store
	graph     *memory.Graph
	sim       *world.Simulator
	persister *persist.Persister
	pipeline  *session.Pipeline
	log       *slog.Logger
}

func openEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.LoadProjectConfig("chronicler.yaml")
	if err != nil {
		return nil, err
	}

	classifier, err := config.NewClassifier(cfg)
	if err != nil {
		return nil, err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	entities := memory.NewStore()
	graph := memory.NewGraph()
	sim := world.NewSimulator()

	return &engine{
		cfg:       cfg,
		db:        db,
		entities:  entities,
		graph:     graph,
		sim:       sim,
		persister: persist.NewPersister(db, entities, graph, sim, log),
		pipeline:  session.NewPipeline(classifier, entities, graph, sim, log),
		log:       log,
	}, nil
}

func (e *engine) close(ctx context.Context) {
	if err := e.db.Close(ctx); err != nil {
		e.log.Warn("closing snapshot store", "error", err)
	}
}

// loadCampaign pulls a campaign's saved state into memory if a record
// exists. A campaign with no saved state starts empty; that is not an error.
func (e *engine) loadCampaign(ctx context.Context, campaignID string) {
	e.persister.LoadCampaignState(ctx, campaignID)
}

// loadAllCampaigns restores every saved campaign, for serving.
func (e *engine) loadAllCampaigns(ctx context.Context) error {
	ids, err := e.db.ListCampaigns(ctx)
	if err != nil {
		return fmt.Errorf("listing campaigns: %w", err)
	}
	for _, id := range ids {
		e.persister.LoadCampaignState(ctx, id)
	}
	return nil
}
