// Package world maintains the per-campaign simulation of the game world:
// who is where, NPC status and relationships, faction standing, event flags,
// and the timeline of named events. All state is partitioned by campaign id
// and every mutation for one campaign serializes on that campaign's lock.
package world

import (
	"errors"
	"sync"
	"time"
)

// ErrFlagNotFound reports an attempt to trigger an unknown event flag. It is
// the one hard failure game-action handlers must handle explicitly.
var ErrFlagNotFound = errors.New("event flag not found")

// Simulator is the world-state engine. Construct one at process start and
// pass it by reference; campaigns never share state.
type Simulator struct {
	mu        sync.Mutex
	campaigns map[string]*campaignState
	now       func() time.Time
}

type campaignState struct {
	mu            sync.Mutex
	locations     map[string]*Location
	actorLocation map[string]string // actor id -> location id
	npcStatus     map[string]*NPCStatus
	npcRelations  map[string]map[string]*NPCRelationship // npc id -> target id
	factions      map[string]*Faction
	flags         map[string]*EventFlag
	timeline      []*TimelineEvent
	eventSeq      int64
}

func NewSimulator() *Simulator {
	return &Simulator{
		campaigns: make(map[string]*campaignState),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Simulator) campaign(campaignID string) *campaignState {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[campaignID]
	if !ok {
		c = newCampaignState()
		s.campaigns[campaignID] = c
	}
	return c
}

func newCampaignState() *campaignState {
	return &campaignState{
		locations:     make(map[string]*Location),
		actorLocation: make(map[string]string),
		npcStatus:     make(map[string]*NPCStatus),
		npcRelations:  make(map[string]map[string]*NPCRelationship),
		factions:      make(map[string]*Faction),
		flags:         make(map[string]*EventFlag),
	}
}
