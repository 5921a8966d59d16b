package memory

import (
	"errors"
	"reflect"
	"testing"
)

func candidate(name string, kind Kind, session string) *Entity {
	return &Entity{
		Name:      name,
		Kind:      kind,
		CoreAttrs: map[string]any{},
		VarAttrs:  map[string]any{},
		FirstSeen: session,
	}
}

func TestStore_UpsertAndGet(t *testing.T) {
	s := NewStore()

	id, notes := s.Upsert("camp1", "session-1", candidate("Aldric", KindCharacter, "session-1"))
	if len(notes) != 0 {
		t.Errorf("unexpected notes on first insert: %v", notes)
	}

	entity, err := s.Get("camp1", id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entity.Name != "Aldric" || entity.Kind != KindCharacter {
		t.Errorf("unexpected entity: %+v", entity)
	}

	if _, err := s.Get("camp1", "npc:missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_UpsertDuplicateMerges(t *testing.T) {
	s := NewStore()

	first := candidate("Aldric", KindCharacter, "session-1")
	first.Snippets = []string{"Aldric arrived."}
	id1, _ := s.Upsert("camp1", "session-1", first)

	second := candidate("Aldric", KindCharacter, "session-1")
	second.Snippets = []string{"Aldric spoke."}
	id2, _ := s.Upsert("camp1", "session-2", second)

	if id1 != id2 {
		t.Fatalf("duplicate upsert produced new id: %s vs %s", id1, id2)
	}
	entity, err := s.Get("camp1", id1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(entity.Snippets, []string{"Aldric arrived.", "Aldric spoke."}) {
		t.Errorf("snippets = %v, want both appended", entity.Snippets)
	}
	if entity.LastUpdated != "session-2" {
		t.Errorf("last_updated = %q, want session-2", entity.LastUpdated)
	}
}

func TestStore_FindByName(t *testing.T) {
	s := NewStore()
	s.Insert("camp1", candidate("The Gilded Goose", KindLocation, "session-1"))

	for _, name := range []string{"The Gilded Goose", "the gilded goose", "THE GILDED GOOSE"} {
		if _, err := s.FindByName("camp1", name); err != nil {
			t.Errorf("FindByName(%q): %v", name, err)
		}
	}
	if _, err := s.FindByName("camp1", "Gilded"); !errors.Is(err, ErrNotFound) {
		t.Errorf("partial match should not resolve, got %v", err)
	}
}

func TestStore_FindByAlias(t *testing.T) {
	s := NewStore()
	id, _ := s.Upsert("camp1", "session-1", candidate("Aldric", KindCharacter, "session-1"))

	dup := candidate("Aldric", KindCharacter, "session-1")
	dup.Aliases = []string{"The Grey Captain"}
	s.Upsert("camp1", "session-2", dup)

	found, err := s.FindByName("camp1", "the grey captain")
	if err != nil {
		t.Fatalf("FindByName alias: %v", err)
	}
	if found.ID != id {
		t.Errorf("alias resolved to %s, want %s", found.ID, id)
	}
}

func TestStore_CampaignIsolation(t *testing.T) {
	s := NewStore()
	id, _ := s.Upsert("camp1", "session-1", candidate("Aldric", KindCharacter, "session-1"))

	if _, err := s.Get("camp2", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("camp2 can see camp1 entity: %v", err)
	}
	if _, err := s.FindByName("camp2", "Aldric"); !errors.Is(err, ErrNotFound) {
		t.Errorf("camp2 can resolve camp1 name: %v", err)
	}
	if entities := s.List("camp2"); len(entities) != 0 {
		t.Errorf("camp2 list = %v, want empty", entities)
	}
}

func TestStore_ExportRestoreRoundTrip(t *testing.T) {
	s := NewStore()
	first := candidate("Aldric", KindCharacter, "session-1")
	first.VarAttrs["alive"] = true
	s.Upsert("camp1", "session-1", first)
	s.Upsert("camp1", "session-1", candidate("The Gilded Goose", KindLocation, "session-1"))

	exported := s.Export("camp1")

	fresh := NewStore()
	fresh.Restore("camp1", exported)

	again := fresh.Export("camp1")
	if !reflect.DeepEqual(exported, again) {
		t.Errorf("round trip mismatch:\n%+v\nvs\n%+v", exported, again)
	}
	if found, err := fresh.FindByName("camp1", "aldric"); err != nil || found.VarAttrs["alive"] != true {
		t.Errorf("restored lookup failed: %v %v", found, err)
	}
}
