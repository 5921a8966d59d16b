package memory

import (
	"testing"

	"chronicler/internal/semantic"
)

func testExtractor() *Extractor {
	return NewExtractor(semantic.New())
}

func entityByName(t *testing.T, extraction *Extraction, name string) *Entity {
	t.Helper()
	for _, entity := range extraction.Entities {
		if entity.Name == name {
			return entity
		}
	}
	t.Fatalf("entity %q not extracted: %+v", name, extraction.Entities)
	return nil
}

func TestExtract_FindsNamedEntities(t *testing.T) {
	x := testExtractor()

	extraction := x.Extract("session-1",
		"Aldric entered the tavern called The Gilded Goose. Aldric spoke with Mirela about the road north.")

	aldric := entityByName(t, extraction, "Aldric")
	if aldric.Kind != KindCharacter {
		t.Errorf("Aldric kind = %s, want character", aldric.Kind)
	}
	if aldric.FirstSeen != "session-1" {
		t.Errorf("first seen = %q", aldric.FirstSeen)
	}
	if len(aldric.Snippets) != 2 {
		t.Errorf("snippets = %v, want one per mention sentence", aldric.Snippets)
	}

	goose := entityByName(t, extraction, "The Gilded Goose")
	if goose.Kind != KindLocation {
		t.Errorf("Gilded Goose kind = %s, want location (tavern cue)", goose.Kind)
	}

	entityByName(t, extraction, "Mirela")
}

func TestExtract_KindCuesInName(t *testing.T) {
	x := testExtractor()
	extraction := x.Extract("session-1",
		"They joined the Ashen Guild. She wielded the Duskwind Sword against the Frost Dragon.")

	if got := entityByName(t, extraction, "Ashen Guild").Kind; got != KindFaction {
		t.Errorf("Ashen Guild kind = %s, want faction", got)
	}
	if got := entityByName(t, extraction, "Duskwind Sword").Kind; got != KindItem {
		t.Errorf("Duskwind Sword kind = %s, want item", got)
	}
	if got := entityByName(t, extraction, "Frost Dragon").Kind; got != KindCreature {
		t.Errorf("Frost Dragon kind = %s, want creature", got)
	}
}

func TestExtract_EmptyAndMalformedInput(t *testing.T) {
	x := testExtractor()
	for _, text := range []string{"", "   \n\t ", "... !!! ???", "no names here at all."} {
		extraction := x.Extract("session-1", text)
		if len(extraction.Entities) != 0 {
			t.Errorf("Extract(%q) entities = %v, want none", text, extraction.Entities)
		}
	}
}

func TestExtract_Relations(t *testing.T) {
	x := testExtractor()
	extraction := x.Extract("session-1", "Aldric attacked Ashfang near the bridge.")

	if len(extraction.Relations) != 1 {
		t.Fatalf("relations = %v, want one", extraction.Relations)
	}
	relation := extraction.Relations[0]
	if relation.FromName != "Aldric" || relation.ToName != "Ashfang" || relation.Type != "opposes" {
		t.Errorf("relation = %+v", relation)
	}
}

func TestExtract_ImportanceFromContext(t *testing.T) {
	x := testExtractor()
	extraction := x.Extract("session-1", "Velda was killed at the gates.")

	if got := entityByName(t, extraction, "Velda").Importance; got != ImportanceCritical {
		t.Errorf("importance = %s, want critical", got)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	x := testExtractor()
	text := "Aldric fought the Frost Dragon. Mirela cast a spell from the Tower of Glass."

	first := x.Extract("session-1", text)
	second := x.Extract("session-1", text)
	if len(first.Entities) != len(second.Entities) {
		t.Fatalf("entity counts differ: %d vs %d", len(first.Entities), len(second.Entities))
	}
	for i := range first.Entities {
		a, b := first.Entities[i], second.Entities[i]
		if a.Name != b.Name || a.Kind != b.Kind || a.Confidence != b.Confidence {
			t.Errorf("entity %d differs: %+v vs %+v", i, a, b)
		}
	}
}
