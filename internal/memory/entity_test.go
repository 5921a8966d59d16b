package memory

import "testing"

func TestDeriveID_Deterministic(t *testing.T) {
	first := DeriveID("Aldric", KindCharacter, "session-1")
	second := DeriveID("Aldric", KindCharacter, "session-1")
	if first != second {
		t.Errorf("same tuple produced different ids: %s vs %s", first, second)
	}
	// Name casing and surrounding whitespace do not change identity.
	if DeriveID("  aldric ", KindCharacter, "session-1") != first {
		t.Errorf("id is not case/whitespace insensitive on name")
	}
}

func TestDeriveID_DistinctTuplesDiffer(t *testing.T) {
	base := DeriveID("Aldric", KindCharacter, "session-1")
	variants := []string{
		DeriveID("Mirela", KindCharacter, "session-1"),
		DeriveID("Aldric", KindCreature, "session-1"),
		DeriveID("Aldric", KindCharacter, "session-2"),
	}
	for i, id := range variants {
		if id == base {
			t.Errorf("variant %d collided with base id %s", i, base)
		}
	}
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		in     any
		want   any
		wantOK bool
	}{
		{"alive", "alive", true},
		{true, true, true},
		{3.5, 3.5, true},
		{7, 7.0, true},
		{int64(9), 9.0, true},
		{[]string{"no"}, nil, false},
		{map[string]any{"no": 1}, nil, false},
		{nil, nil, false},
	}
	for _, tt := range tests {
		got, ok := NormalizeValue(tt.in)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("NormalizeValue(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNormalizeAttrs_DropsNonScalars(t *testing.T) {
	attrs := NormalizeAttrs(map[string]any{
		"age":    41,
		"alive":  true,
		"title":  "captain",
		"nested": map[string]any{"x": 1},
	})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %v", attrs)
	}
	if attrs["age"] != 41.0 {
		t.Errorf("age = %v, want 41.0", attrs["age"])
	}
}

func TestClone_Detached(t *testing.T) {
	original := &Entity{
		Name:      "Aldric",
		Kind:      KindCharacter,
		CoreAttrs: map[string]any{"origin": "Vael"},
		VarAttrs:  map[string]any{"alive": true},
		Snippets:  []string{"Aldric arrived."},
		Tags:      []Tag{{Category: "combat", Confidence: 0.2, Keywords: []string{"sword"}}},
	}
	clone := original.Clone()
	clone.CoreAttrs["origin"] = "elsewhere"
	clone.Snippets[0] = "changed"
	clone.Tags[0].Keywords[0] = "changed"

	if original.CoreAttrs["origin"] != "Vael" {
		t.Errorf("clone shares core attrs with original")
	}
	if original.Snippets[0] != "Aldric arrived." {
		t.Errorf("clone shares snippets with original")
	}
	if original.Tags[0].Keywords[0] != "sword" {
		t.Errorf("clone shares tag keywords with original")
	}
}
