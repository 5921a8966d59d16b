package world

import (
	"sort"
	"time"

	"chronicler/internal/memory"
)

// NPCStatus is an open-schema record of whatever callers know about an NPC.
// Keys are free-form; values are JSON-safe scalars.
type NPCStatus struct {
	Status      map[string]any
	LastUpdated time.Time
}

// NPCRelationship is the world-state edge from an NPC to anything, distinct
// from the narrative relationship graph: it carries strength and trust.
type NPCRelationship struct {
	NPCID     string  `json:"npc_id"`
	TargetID  string  `json:"target_id"`
	Type      string  `json:"relationship_type"`
	Strength  float64 `json:"strength"`
	Trust     float64 `json:"trust_level"`
	UpdatedAt string  `json:"updated_at"`
}

// UpdateNPCStatus shallow-merges status into the NPC's record and stamps
// last_updated. The shape of status is not validated beyond scalar coercion.
func (s *Simulator) UpdateNPCStatus(campaignID, npcID string, status map[string]any) {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()

	record, ok := c.npcStatus[npcID]
	if !ok {
		record = &NPCStatus{Status: make(map[string]any)}
		c.npcStatus[npcID] = record
	}
	for key, value := range memory.NormalizeAttrs(status) {
		record.Status[key] = value
	}
	record.LastUpdated = s.now()
}

// GetNPCStatus returns a copy of the NPC's status record.
func (s *Simulator) GetNPCStatus(campaignID, npcID string) (map[string]any, bool) {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	record, ok := c.npcStatus[npcID]
	if !ok {
		return nil, false
	}
	return copyMap(record.Status), true
}

// AddNPCRelationship upserts the edge keyed by (npc, target). A second call
// for the same pair replaces the prior edge entirely; values do not
// accumulate.
func (s *Simulator) AddNPCRelationship(campaignID, npcID, targetID, relType string, strength, trust float64) {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()

	edges, ok := c.npcRelations[npcID]
	if !ok {
		edges = make(map[string]*NPCRelationship)
		c.npcRelations[npcID] = edges
	}
	edges[targetID] = &NPCRelationship{
		NPCID:     npcID,
		TargetID:  targetID,
		Type:      relType,
		Strength:  clamp01(strength),
		Trust:     clamp01(trust),
		UpdatedAt: formatTime(s.now()),
	}
}

// GetNPCRelationships returns the NPC's edges sorted by target id.
func (s *Simulator) GetNPCRelationships(campaignID, npcID string) []NPCRelationship {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()

	edges := c.npcRelations[npcID]
	out := make([]NPCRelationship, 0, len(edges))
	for _, edge := range edges {
		out = append(out, *edge)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetID < out[j].TargetID })
	return out
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
