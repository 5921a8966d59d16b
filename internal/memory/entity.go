package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies what a tracked entity is.
type Kind string

const (
	KindCharacter Kind = "character"
	KindLocation  Kind = "location"
	KindItem      Kind = "item"
	KindEvent     Kind = "event"
	KindFaction   Kind = "faction"
	KindCreature  Kind = "creature"
	KindAbility   Kind = "ability"
	KindFact      Kind = "fact"
)

// Importance ranks how central an entity is to the campaign.
type Importance string

const (
	ImportanceCritical  Importance = "critical"
	ImportanceImportant Importance = "important"
	ImportanceModerate  Importance = "moderate"
	ImportanceMinor     Importance = "minor"
)

// Tag is a semantic category attached to an entity with the keywords that
// supported it.
type Tag struct {
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Keywords   []string `json:"keywords"`
}

// Entity is a tracked campaign object. Core attributes are write-once;
// variable attributes may be overwritten on later sightings. Attribute
// values are JSON-safe scalars (string, float64, bool); see NormalizeValue.
type Entity struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Kind          Kind           `json:"kind"`
	Description   string         `json:"description"`
	CoreAttrs     map[string]any `json:"core_attributes"`
	VarAttrs      map[string]any `json:"variable_attributes"`
	Aliases       []string       `json:"aliases"`
	Confidence    float64        `json:"confidence"`
	Importance    Importance     `json:"importance"`
	Snippets      []string       `json:"context_snippets"`
	Tags          []Tag          `json:"semantic_tags"`
	FirstSeen   string `json:"first_seen"`
	LastUpdated string `json:"last_updated"`
}

// DeriveID computes the stable id for (name, kind, firstSeen). The id is a
// pure function of the tuple: the same inputs always hash to the same id,
// and two entities with the same id are by definition the same entity.
func DeriveID(name string, kind Kind, firstSeen string) string {
	key := fmt.Sprintf("%s|%s|%s", strings.ToLower(strings.TrimSpace(name)), kind, firstSeen)
	sum := sha256.Sum256([]byte(key))
	return string(kind) + ":" + hex.EncodeToString(sum[:])[:16]
}

// NormalizeValue coerces an attribute value to one of the JSON-safe scalar
// shapes the engine stores: string, float64, or bool. Integers widen to
// float64 so that equality survives a JSON round trip. Unsupported shapes
// report false.
func NormalizeValue(value any) (any, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return v, true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return nil, false
	}
}

// NormalizeAttrs copies attrs keeping only scalar values, coerced via
// NormalizeValue. Non-scalar values are dropped.
func NormalizeAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(attrs))
	for key, value := range attrs {
		if normalized, ok := NormalizeValue(value); ok {
			out[key] = normalized
		}
	}
	return out
}

// Clone returns a deep copy of the entity, detached from store internals.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	clone := *e
	clone.CoreAttrs = copyAttrs(e.CoreAttrs)
	clone.VarAttrs = copyAttrs(e.VarAttrs)
	clone.Aliases = append([]string(nil), e.Aliases...)
	clone.Snippets = append([]string(nil), e.Snippets...)
	clone.Tags = make([]Tag, len(e.Tags))
	for i, tag := range e.Tags {
		clone.Tags[i] = Tag{
			Category:   tag.Category,
			Confidence: tag.Confidence,
			Keywords:   append([]string(nil), tag.Keywords...),
		}
	}
	return &clone
}

func (e *Entity) hasAlias(name string) bool {
	for _, alias := range e.Aliases {
		if strings.EqualFold(alias, name) {
			return true
		}
	}
	return false
}

func (e *Entity) addAlias(name string) {
	if strings.EqualFold(e.Name, name) || e.hasAlias(name) {
		return
	}
	e.Aliases = append(e.Aliases, name)
	sort.Strings(e.Aliases)
}

func copyAttrs(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for key, value := range attrs {
		out[key] = value
	}
	return out
}
