package memory

import (
	"strings"
	"testing"
)

func TestMerge_CoreAttributesWriteOnce(t *testing.T) {
	s := NewStore()
	first := candidate("Aldric", KindCharacter, "session-1")
	first.CoreAttrs["origin"] = "Vael"
	id, _ := s.Upsert("camp1", "session-1", first)

	second := candidate("Aldric", KindCharacter, "session-1")
	second.CoreAttrs["origin"] = "Khorvan"
	second.CoreAttrs["bloodline"] = "old houses"
	_, notes := s.Upsert("camp1", "session-2", second)

	entity, _ := s.Get("camp1", id)
	if entity.CoreAttrs["origin"] != "Vael" {
		t.Errorf("core attribute overwritten: %v", entity.CoreAttrs["origin"])
	}
	if entity.CoreAttrs["bloodline"] != "old houses" {
		t.Errorf("unset core attribute not filled in: %v", entity.CoreAttrs)
	}
	if len(notes) != 1 || !strings.Contains(notes[0], "origin") {
		t.Errorf("expected one inconsistency note naming origin, got %v", notes)
	}
	if !strings.Contains(notes[0], "Vael") || !strings.Contains(notes[0], "Khorvan") {
		t.Errorf("note should carry old and new value, got %v", notes)
	}
}

func TestMerge_VariableAttributesOverwrite(t *testing.T) {
	s := NewStore()
	first := candidate("Aldric", KindCharacter, "session-1")
	first.VarAttrs["alive"] = true
	id, _ := s.Upsert("camp1", "session-1", first)

	second := candidate("Aldric", KindCharacter, "session-1")
	second.VarAttrs["alive"] = false
	_, notes := s.Upsert("camp1", "session-2", second)

	if len(notes) != 0 {
		t.Errorf("variable overwrite should not produce notes: %v", notes)
	}
	entity, _ := s.Get("camp1", id)
	if entity.VarAttrs["alive"] != false {
		t.Errorf("variable attribute not overwritten: %v", entity.VarAttrs)
	}
}

func TestMerge_KindMismatchFlaggedNotResolved(t *testing.T) {
	s := NewStore()
	id, _ := s.Upsert("camp1", "session-1", candidate("Shade", KindCharacter, "session-1"))

	_, notes := s.Upsert("camp1", "session-2", candidate("Shade", KindCreature, "session-1"))
	if len(notes) != 1 || !strings.Contains(notes[0], "kind") {
		t.Fatalf("expected kind mismatch note, got %v", notes)
	}
	entity, _ := s.Get("camp1", id)
	if entity.Kind != KindCharacter {
		t.Errorf("kind silently resolved to %s", entity.Kind)
	}
}

func TestMerge_FirstTagPerCategoryWins(t *testing.T) {
	s := NewStore()
	first := candidate("Aldric", KindCharacter, "session-1")
	first.Tags = []Tag{{Category: "combat", Confidence: 0.2, Keywords: []string{"sword"}}}
	id, _ := s.Upsert("camp1", "session-1", first)

	second := candidate("Aldric", KindCharacter, "session-1")
	second.Tags = []Tag{
		{Category: "combat", Confidence: 0.9, Keywords: []string{"battle"}},
		{Category: "social", Confidence: 0.1, Keywords: []string{"tavern"}},
	}
	s.Upsert("camp1", "session-2", second)

	entity, _ := s.Get("camp1", id)
	if len(entity.Tags) != 2 {
		t.Fatalf("tags = %v, want combat (original) + social", entity.Tags)
	}
	if entity.Tags[0].Category != "combat" || entity.Tags[0].Confidence != 0.2 {
		t.Errorf("first combat tag should win, got %+v", entity.Tags[0])
	}
	if entity.Tags[1].Category != "social" {
		t.Errorf("new category should be added, got %+v", entity.Tags[1])
	}
}

func TestVerifier_NewAndExisting(t *testing.T) {
	store := NewStore()
	graph := NewGraph()
	v := NewVerifier(store, graph)

	batch := v.VerifyBatch("camp1", "session-1", []*Entity{
		candidate("Aldric", KindCharacter, ""),
		candidate("Mirela", KindCharacter, ""),
	}, nil)
	if len(batch.NewIDs()) != 2 || len(batch.UpdatedIDs()) != 0 {
		t.Fatalf("first batch: new=%v updated=%v", batch.NewIDs(), batch.UpdatedIDs())
	}
	for _, note := range batch.Notes {
		if !strings.Contains(note, "new entity discovered") {
			t.Errorf("unexpected note %q", note)
		}
	}

	batch = v.VerifyBatch("camp1", "session-2", []*Entity{
		candidate("Aldric", KindCharacter, ""),
		candidate("Tomb of Kings", KindLocation, ""),
	}, nil)
	if len(batch.NewIDs()) != 1 || len(batch.UpdatedIDs()) != 1 {
		t.Errorf("second batch: new=%v updated=%v", batch.NewIDs(), batch.UpdatedIDs())
	}

	entity, err := store.FindByName("camp1", "aldric")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if entity.FirstSeen != "session-1" || entity.LastUpdated != "session-2" {
		t.Errorf("sessions = %q/%q, want session-1/session-2", entity.FirstSeen, entity.LastUpdated)
	}
}

func TestVerifier_RecordsRelations(t *testing.T) {
	store := NewStore()
	graph := NewGraph()
	v := NewVerifier(store, graph)

	batch := v.VerifyBatch("camp1", "session-1",
		[]*Entity{
			candidate("Aldric", KindCharacter, ""),
			candidate("Ashfang", KindCreature, ""),
		},
		[]NameRelation{
			{FromName: "Aldric", ToName: "Ashfang", Type: "opposes"},
			{FromName: "Aldric", ToName: "Nobody", Type: "allies"},
		})

	aldric, _ := store.FindByName("camp1", "Aldric")
	edges := graph.EdgesFrom("camp1", aldric.ID)
	if len(edges) != 1 || edges[0].Type != "opposes" {
		t.Fatalf("edges = %v, want single opposes edge", edges)
	}

	var recorded bool
	for _, note := range batch.Notes {
		if strings.Contains(note, "relationship recorded") {
			recorded = true
		}
	}
	if !recorded {
		t.Errorf("expected a relationship note, got %v", batch.Notes)
	}
}
