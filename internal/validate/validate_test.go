package validate

import (
	"testing"

	"chronicler/internal/memory"
	"chronicler/internal/world"
)

func seedEntity(t *testing.T, store *memory.Store, campaignID, name string, kind memory.Kind) string {
	t.Helper()
	return store.Insert(campaignID, &memory.Entity{
		Name:      name,
		Kind:      kind,
		CoreAttrs: map[string]any{},
		VarAttrs:  map[string]any{},
		FirstSeen: "session-01",
	})
}

func TestRun_CleanCampaign(t *testing.T) {
	store := memory.NewStore()
	graph := memory.NewGraph()
	sim := world.NewSimulator()

	aldric := seedEntity(t, store, "camp1", "Aldric", memory.KindCharacter)
	mirela := seedEntity(t, store, "camp1", "Mirela", memory.KindCharacter)
	tavern := seedEntity(t, store, "camp1", "Gilded Goose", memory.KindLocation)

	graph.AddEdge("camp1", aldric, mirela, "allies")
	sim.UpdateLocation("camp1", aldric, tavern, world.LocationMetadata{})
	sim.RecordFactionChange("camp1", "faction:watch", 5, "rescued the captain")
	sim.AddEventFlag("camp1", "flag:siege", "Siege", "", nil, []string{"gates closed"})
	if err := sim.TriggerEventFlag("camp1", "flag:siege", aldric); err != nil {
		t.Fatalf("TriggerEventFlag: %v", err)
	}

	report := Run("camp1", store, graph, sim)
	if len(report.Issues) != 0 {
		t.Fatalf("expected clean report, got %+v", report.Issues)
	}
	if report.HasErrors() {
		t.Errorf("clean report claims errors")
	}
}

func TestRun_DanglingRelationship(t *testing.T) {
	store := memory.NewStore()
	graph := memory.NewGraph()
	sim := world.NewSimulator()

	aldric := seedEntity(t, store, "camp1", "Aldric", memory.KindCharacter)
	graph.AddEdge("camp1", aldric, "character:missing", "opposes")

	report := Run("camp1", store, graph, sim)
	if !hasIssue(report, codeDanglingRelationship) {
		t.Fatalf("expected dangling relationship issue, got %+v", report.Issues)
	}
	if !report.HasErrors() {
		t.Errorf("dangling relationship should be an error")
	}
}

func TestRun_IsolatedCriticalEntity(t *testing.T) {
	store := memory.NewStore()
	graph := memory.NewGraph()
	sim := world.NewSimulator()

	store.Insert("camp1", &memory.Entity{
		Name:       "The Lich King",
		Kind:       memory.KindCharacter,
		Importance: memory.ImportanceCritical,
		FirstSeen:  "session-01",
	})

	report := Run("camp1", store, graph, sim)
	if !hasIssue(report, codeIsolatedEntity) {
		t.Fatalf("expected isolated entity warning, got %+v", report.Issues)
	}
	if report.HasErrors() {
		t.Errorf("isolated entity should only warn")
	}
}

func TestRun_FlagWithoutEvent(t *testing.T) {
	store := memory.NewStore()
	graph := memory.NewGraph()
	sim := world.NewSimulator()

	snapshot := sim.Snapshot("camp1")
	snapshot.EventFlags["flag:broken"] = &world.EventFlag{ID: "flag:broken", Triggered: true}
	sim.Restore("camp1", snapshot)

	report := Run("camp1", store, graph, sim)
	if !hasIssue(report, codeFlagWithoutEvent) {
		t.Fatalf("expected flag-without-event issue, got %+v", report.Issues)
	}
}

func TestRun_OccupancyMismatch(t *testing.T) {
	store := memory.NewStore()
	graph := memory.NewGraph()
	sim := world.NewSimulator()

	aldric := seedEntity(t, store, "camp1", "Aldric", memory.KindCharacter)
	snapshot := sim.Snapshot("camp1")
	snapshot.ActorLocations[aldric] = "location:nowhere"
	sim.Restore("camp1", snapshot)

	report := Run("camp1", store, graph, sim)
	if !hasIssue(report, codeOccupancyMismatch) {
		t.Fatalf("expected occupancy mismatch, got %+v", report.Issues)
	}
}

func TestRun_UnknownActor(t *testing.T) {
	store := memory.NewStore()
	graph := memory.NewGraph()
	sim := world.NewSimulator()

	sim.UpdateLocation("camp1", "character:ghost", "location:keep", world.LocationMetadata{})

	report := Run("camp1", store, graph, sim)
	if !hasIssue(report, codeUnknownActor) {
		t.Fatalf("expected unknown actor warning, got %+v", report.Issues)
	}
}

func TestRun_ReputationDrift(t *testing.T) {
	store := memory.NewStore()
	graph := memory.NewGraph()
	sim := world.NewSimulator()

	snapshot := sim.Snapshot("camp1")
	snapshot.Factions["faction:watch"] = &world.FactionView{
		ID:         "faction:watch",
		Reputation: 7,
		History:    []world.FactionChange{{Delta: 2, Reason: "x"}},
	}
	sim.Restore("camp1", snapshot)

	report := Run("camp1", store, graph, sim)
	if !hasIssue(report, codeReputationDrift) {
		t.Fatalf("expected reputation drift issue, got %+v", report.Issues)
	}
}

func TestRun_DuplicateNames(t *testing.T) {
	store := memory.NewStore()
	graph := memory.NewGraph()
	sim := world.NewSimulator()

	seedEntity(t, store, "camp1", "Raven", memory.KindCharacter)
	seedEntity(t, store, "camp1", "Raven", memory.KindCreature)

	report := Run("camp1", store, graph, sim)
	if !hasIssue(report, codeDuplicateName) {
		t.Fatalf("expected duplicate name warning, got %+v", report.Issues)
	}
}

func hasIssue(report *Report, code string) bool {
	for _, issue := range report.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}
