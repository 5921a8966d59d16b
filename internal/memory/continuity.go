package memory

import (
	"fmt"
)

// MergeResult is the outcome of verifying one candidate entity against the
// store. Inconsistency notes are diagnostics, not errors: the merge has
// already been applied by the time the result is returned.
type MergeResult struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	New   bool     `json:"new"`
	Notes []string `json:"notes"`
}

// BatchResult summarizes a verified extraction batch.
type BatchResult struct {
	Results []MergeResult `json:"results"`
	Notes   []string      `json:"notes"`
}

// NewIDs returns the ids of entities first seen in this batch.
func (b *BatchResult) NewIDs() []string {
	var ids []string
	for _, result := range b.Results {
		if result.New {
			ids = append(ids, result.ID)
		}
	}
	return ids
}

// UpdatedIDs returns the ids of entities that already existed.
func (b *BatchResult) UpdatedIDs() []string {
	var ids []string
	for _, result := range b.Results {
		if !result.New {
			ids = append(ids, result.ID)
		}
	}
	return ids
}

// Verifier decides new-vs-existing for extracted entities and merges
// non-conflicting updates. Contradictions with recorded state become notes;
// they never block a merge.
type Verifier struct {
	store *Store
	graph *Graph
}

func NewVerifier(store *Store, graph *Graph) *Verifier {
	return &Verifier{store: store, graph: graph}
}

// NameRelation is an extracted relationship still keyed by entity names.
// The verifier resolves the names to canonical ids once every candidate in
// the batch has been inserted or merged.
type NameRelation struct {
	FromName string `json:"from"`
	ToName   string `json:"to"`
	Type     string `json:"type"`
}

// VerifyBatch runs every candidate through name lookup and insert-or-merge,
// then records the batch's relationships through the graph. Candidates are
// processed in order; notes preserve that order.
func (v *Verifier) VerifyBatch(campaignID, sessionID string, candidates []*Entity, relations []NameRelation) *BatchResult {
	batch := &BatchResult{}
	for _, candidate := range candidates {
		result := v.verify(campaignID, sessionID, candidate)
		batch.Results = append(batch.Results, result)
		batch.Notes = append(batch.Notes, result.Notes...)
	}

	for _, relation := range relations {
		from, errFrom := v.store.FindByName(campaignID, relation.FromName)
		to, errTo := v.store.FindByName(campaignID, relation.ToName)
		if errFrom != nil || errTo != nil {
			continue
		}
		if v.graph.AddEdge(campaignID, from.ID, to.ID, relation.Type) {
			batch.Notes = append(batch.Notes, fmt.Sprintf(
				"relationship recorded: %s %s %s", from.Name, relation.Type, to.Name))
		}
	}
	return batch
}

func (v *Verifier) verify(campaignID, sessionID string, candidate *Entity) MergeResult {
	existing, err := v.store.FindByName(campaignID, candidate.Name)
	if err != nil {
		candidate.FirstSeen = sessionID
		candidate.LastUpdated = sessionID
		id := v.store.Insert(campaignID, candidate)
		return MergeResult{
			ID:   id,
			Name: candidate.Name,
			New:  true,
			Notes: []string{
				fmt.Sprintf("new entity discovered: %s (%s)", candidate.Name, candidate.Kind),
			},
		}
	}

	notes, mergeErr := v.store.MergeInto(campaignID, existing.ID, sessionID, candidate)
	if mergeErr != nil {
		// Lookup raced with a restore; treat as a fresh insert.
		candidate.FirstSeen = sessionID
		candidate.LastUpdated = sessionID
		id := v.store.Insert(campaignID, candidate)
		return MergeResult{ID: id, Name: candidate.Name, New: true}
	}
	return MergeResult{ID: existing.ID, Name: existing.Name, Notes: notes}
}

// mergeEntity applies the permissive merge rule: report every contradiction,
// merge everything that does not conflict. Caller holds the campaign lock.
//
// Rules: last_updated moves to the current session; snippets append; tags
// union by category with the first recorded tag winning; variable attributes
// overwrite; core attributes are write-once; a kind mismatch is always
// flagged, never silently resolved.
func mergeEntity(existing, candidate *Entity, sessionID string) []string {
	var notes []string

	if candidate.Kind != "" && candidate.Kind != existing.Kind {
		notes = append(notes, fmt.Sprintf(
			"inconsistency: %s recorded as kind %q, new sighting says %q",
			existing.Name, existing.Kind, candidate.Kind))
	}

	for attr, newValue := range candidate.CoreAttrs {
		normalized, ok := NormalizeValue(newValue)
		if !ok {
			continue
		}
		oldValue, present := existing.CoreAttrs[attr]
		if !present {
			existing.CoreAttrs[attr] = normalized
			continue
		}
		if oldValue != normalized {
			notes = append(notes, fmt.Sprintf(
				"inconsistency: %s core attribute %q was %v, new sighting says %v",
				existing.Name, attr, oldValue, normalized))
		}
	}

	for attr, newValue := range candidate.VarAttrs {
		if normalized, ok := NormalizeValue(newValue); ok {
			existing.VarAttrs[attr] = normalized
		}
	}

	existing.Snippets = append(existing.Snippets, candidate.Snippets...)

	tagged := make(map[string]struct{}, len(existing.Tags))
	for _, tag := range existing.Tags {
		tagged[tag.Category] = struct{}{}
	}
	for _, tag := range candidate.Tags {
		if _, ok := tagged[tag.Category]; ok {
			continue
		}
		tagged[tag.Category] = struct{}{}
		existing.Tags = append(existing.Tags, tag)
	}

	for _, alias := range candidate.Aliases {
		existing.addAlias(alias)
	}
	existing.addAlias(candidate.Name)

	if candidate.Description != "" && existing.Description == "" {
		existing.Description = candidate.Description
	}
	if candidate.Confidence > existing.Confidence {
		existing.Confidence = candidate.Confidence
	}
	if rankImportance(candidate.Importance) > rankImportance(existing.Importance) {
		existing.Importance = candidate.Importance
	}

	existing.LastUpdated = sessionID
	return notes
}

func rankImportance(level Importance) int {
	switch level {
	case ImportanceCritical:
		return 3
	case ImportanceImportant:
		return 2
	case ImportanceModerate:
		return 1
	default:
		return 0
	}
}

