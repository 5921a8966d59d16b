package session

import (
	"encoding/json"
	"strings"
	"testing"

	"chronicler/internal/memory"
	"chronicler/internal/semantic"
	"chronicler/internal/world"
)

func testPipeline() (*Pipeline, *memory.Store, *world.Simulator) {
	store := memory.NewStore()
	graph := memory.NewGraph()
	sim := world.NewSimulator()
	return NewPipeline(semantic.New(), store, graph, sim, nil), store, sim
}

func TestProcess_NewEntitiesAndRelations(t *testing.T) {
	pipeline, store, _ := testPipeline()

	summary := pipeline.Process("camp1", "session-01",
		"Aldric attacked Ashfang near the ruined bridge. The battle raged until dawn.")

	if len(summary.NewEntities) != 2 {
		t.Fatalf("expected 2 new entities, got %d: %+v", len(summary.NewEntities), summary.Entities)
	}
	if len(summary.UpdatedEntities) != 0 {
		t.Fatalf("expected no updated entities, got %v", summary.UpdatedEntities)
	}

	aldric, err := store.FindByName("camp1", "Aldric")
	if err != nil {
		t.Fatalf("Aldric not stored: %v", err)
	}
	if aldric.Kind != memory.KindCharacter {
		t.Errorf("Aldric kind = %s, want character", aldric.Kind)
	}

	var sawRelation bool
	for _, note := range summary.ContinuityNotes {
		if strings.Contains(note, "Aldric opposes Ashfang") {
			sawRelation = true
		}
	}
	if !sawRelation {
		t.Errorf("expected relationship note, got %v", summary.ContinuityNotes)
	}

	if len(summary.Classifications) == 0 {
		t.Errorf("expected combat classification for battle text")
	}
}

func TestProcess_SecondSessionUpdates(t *testing.T) {
	pipeline, _, _ := testPipeline()

	pipeline.Process("camp1", "session-01", "Mirela studied the ancient tome.")
	summary := pipeline.Process("camp1", "session-02", "Mirela spoke of omens.")

	if len(summary.NewEntities) != 0 {
		t.Fatalf("expected no new entities, got %v", summary.NewEntities)
	}
	if len(summary.UpdatedEntities) != 1 {
		t.Fatalf("expected 1 updated entity, got %v", summary.UpdatedEntities)
	}
}

func TestProcess_MovementPropagates(t *testing.T) {
	pipeline, store, sim := testPipeline()

	summary := pipeline.Process("camp1", "session-01",
		"Aldric entered the Gilded Goose Tavern.")

	if len(summary.WorldNotes) != 1 || !strings.Contains(summary.WorldNotes[0], "moved to") {
		t.Fatalf("expected one movement note, got %v", summary.WorldNotes)
	}

	aldric, err := store.FindByName("camp1", "Aldric")
	if err != nil {
		t.Fatalf("Aldric not stored: %v", err)
	}
	tavern, err := store.FindByName("camp1", "Gilded Goose Tavern")
	if err != nil {
		t.Fatalf("tavern not stored: %v", err)
	}
	if tavern.Kind != memory.KindLocation {
		t.Errorf("tavern kind = %s, want location", tavern.Kind)
	}

	locID, ok := sim.ActorLocation("camp1", aldric.ID)
	if !ok || locID != tavern.ID {
		t.Errorf("actor location = %q, %v; want %q", locID, ok, tavern.ID)
	}
	view, ok := sim.GetLocation("camp1", tavern.ID)
	if !ok || view.VisitCount != 1 {
		t.Errorf("expected visited location, got %+v", view)
	}
}

func TestProcess_NoMovementWithoutCue(t *testing.T) {
	pipeline, _, _ := testPipeline()

	summary := pipeline.Process("camp1", "session-01",
		"Aldric remembered the Gilded Goose Tavern fondly.")

	if len(summary.WorldNotes) != 0 {
		t.Errorf("expected no movement, got %v", summary.WorldNotes)
	}
}

func TestProcess_EmptyText(t *testing.T) {
	pipeline, _, _ := testPipeline()

	summary := pipeline.Process("camp1", "session-01", "   ")

	if len(summary.Entities) != 0 || len(summary.ContinuityNotes) != 0 || len(summary.WorldNotes) != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}

	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("summary not serializable: %v", err)
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("empty summary should serialize without nulls: %s", data)
	}
}

func TestProcess_FactionCuePropagates(t *testing.T) {
	pipeline, store, sim := testPipeline()

	factionID := store.Insert("camp1", &memory.Entity{
		Name:      "Iron Brotherhood",
		Kind:      memory.KindFaction,
		FirstSeen: "session-01",
	})

	summary := pipeline.Process("camp1", "session-02",
		"The party betrayed the Iron Brotherhood at the gates.")

	if reputation := sim.FactionReputation("camp1", factionID); reputation != -5 {
		t.Fatalf("reputation = %d, want -5", reputation)
	}
	if len(summary.WorldNotes) != 1 || !strings.Contains(summary.WorldNotes[0], "reputation -5") {
		t.Errorf("unexpected world notes: %v", summary.WorldNotes)
	}

	history := sim.FactionHistory("camp1", factionID)
	if len(history) != 1 || !strings.Contains(history[0].Reason, "betrayed") {
		t.Errorf("unexpected history: %+v", history)
	}
}

func TestProcess_FlagConditionTriggers(t *testing.T) {
	pipeline, _, sim := testPipeline()

	sim.AddEventFlag("camp1", "flag:beacon", "Beacon Lit", "",
		[]string{"the beacon is lit"}, []string{"reinforcements ride out"})

	summary := pipeline.Process("camp1", "session-03",
		"At midnight the beacon is lit above the pass.")

	if len(sim.ActiveEventFlags("camp1")) != 0 {
		t.Fatalf("expected flag to fire")
	}
	var sawNote bool
	for _, note := range summary.WorldNotes {
		if strings.Contains(note, "flag:beacon") {
			sawNote = true
		}
	}
	if !sawNote {
		t.Errorf("expected flag note, got %v", summary.WorldNotes)
	}

	events := sim.RecentTimelineEventsByType("camp1", 0, world.EventTypeFlagTrigger)
	if len(events) != 1 || events[0].FlagID != "flag:beacon" {
		t.Fatalf("expected one flag_trigger event, got %+v", events)
	}
}

func TestProcess_ContextMap(t *testing.T) {
	pipeline, _, _ := testPipeline()

	summary := pipeline.Process("camp1", "session-01",
		"The king was killed. The innkeeper wiped the counter.")

	if len(summary.ContextMap) != 2 {
		t.Fatalf("expected 2 sentences, got %+v", summary.ContextMap)
	}
	if summary.ContextMap[0].Level != semantic.LevelCritical {
		t.Errorf("first sentence level = %q, want critical", summary.ContextMap[0].Level)
	}
	if summary.ContextMap[1].Level != semantic.LevelMinor {
		t.Errorf("second sentence level = %q, want minor", summary.ContextMap[1].Level)
	}
}

func TestProcess_ContextLevel(t *testing.T) {
	pipeline, _, _ := testPipeline()

	summary := pipeline.Process("camp1", "session-01",
		"The king was killed at the coronation.")

	if summary.ContextLevel != semantic.LevelCritical {
		t.Errorf("context level = %q, want critical", summary.ContextLevel)
	}
}
