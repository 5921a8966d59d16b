package world

import "sort"

// CampaignSnapshot is the full state of one campaign as plain nested data:
// timestamps are RFC 3339 strings, sets are sorted lists, attribute values
// are JSON-safe scalars. Snapshot then Restore into a fresh simulator
// reproduces the same snapshot.
type CampaignSnapshot struct {
	CampaignID       string                         `json:"campaign_id"`
	Locations        map[string]*LocationView       `json:"locations"`
	ActorLocations   map[string]string              `json:"actor_locations"`
	NPCStatus        map[string]*NPCStatusView      `json:"npc_status"`
	NPCRelationships map[string][]NPCRelationship   `json:"npc_relationships"`
	Factions         map[string]*FactionView        `json:"faction_reputation"`
	EventFlags       map[string]*EventFlag          `json:"event_flags"`
	Timeline         []TimelineEvent                `json:"timeline"`
}

// NPCStatusView is the JSON shape of one NPC's status record.
type NPCStatusView struct {
	Status      map[string]any `json:"status"`
	LastUpdated string         `json:"last_updated"`
}

// FactionView is the JSON shape of one faction record.
type FactionView struct {
	ID         string          `json:"id"`
	Reputation int             `json:"reputation"`
	History    []FactionChange `json:"history"`
}

// Snapshot copies one campaign's entire state into a JSON-safe document.
func (s *Simulator) Snapshot(campaignID string) *CampaignSnapshot {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := &CampaignSnapshot{
		CampaignID:       campaignID,
		Locations:        make(map[string]*LocationView, len(c.locations)),
		ActorLocations:   make(map[string]string, len(c.actorLocation)),
		NPCStatus:        make(map[string]*NPCStatusView, len(c.npcStatus)),
		NPCRelationships: make(map[string][]NPCRelationship, len(c.npcRelations)),
		Factions:         make(map[string]*FactionView, len(c.factions)),
		EventFlags:       make(map[string]*EventFlag, len(c.flags)),
		Timeline:         make([]TimelineEvent, 0, len(c.timeline)),
	}

	for id, loc := range c.locations {
		snapshot.Locations[id] = loc.view()
	}
	for actor, locationID := range c.actorLocation {
		snapshot.ActorLocations[actor] = locationID
	}
	for npcID, record := range c.npcStatus {
		snapshot.NPCStatus[npcID] = &NPCStatusView{
			Status:      copyMap(record.Status),
			LastUpdated: formatTime(record.LastUpdated),
		}
	}
	for npcID, edges := range c.npcRelations {
		list := make([]NPCRelationship, 0, len(edges))
		for _, edge := range edges {
			list = append(list, *edge)
		}
		sortNPCRelationships(list)
		snapshot.NPCRelationships[npcID] = list
	}
	for id, faction := range c.factions {
		snapshot.Factions[id] = &FactionView{
			ID:         faction.ID,
			Reputation: faction.Reputation,
			History:    append([]FactionChange(nil), faction.History...),
		}
	}
	for id, flag := range c.flags {
		copied := *flag
		copied.TriggerConditions = append([]string(nil), flag.TriggerConditions...)
		copied.Consequences = append([]string(nil), flag.Consequences...)
		snapshot.EventFlags[id] = &copied
	}
	// Timeline is stored in insertion order; retrieval re-sorts.
	for _, event := range c.timeline {
		copied := *event
		copied.Involved = append([]string(nil), event.Involved...)
		copied.Consequences = append([]string(nil), event.Consequences...)
		snapshot.Timeline = append(snapshot.Timeline, copied)
	}
	return snapshot
}

// Restore fully replaces one campaign's in-memory state with the snapshot.
// Other campaigns are untouched.
func (s *Simulator) Restore(campaignID string, snapshot *CampaignSnapshot) {
	fresh := newCampaignState()

	for id, view := range snapshot.Locations {
		loc := &Location{
			ID:           orString(view.ID, id),
			Name:         view.Name,
			Description:  view.Description,
			Environment:  copyMap(view.Environment),
			Occupants:    setFromList(view.Occupants),
			DiscoveredBy: setFromList(view.DiscoveredBy),
			VisitCount:   view.VisitCount,
			LastVisited:  parseTime(view.LastVisited),
		}
		fresh.locations[id] = loc
	}
	for actor, locationID := range snapshot.ActorLocations {
		fresh.actorLocation[actor] = locationID
	}
	for npcID, view := range snapshot.NPCStatus {
		fresh.npcStatus[npcID] = &NPCStatus{
			Status:      copyMap(view.Status),
			LastUpdated: parseTime(view.LastUpdated),
		}
	}
	for npcID, edges := range snapshot.NPCRelationships {
		byTarget := make(map[string]*NPCRelationship, len(edges))
		for _, edge := range edges {
			copied := edge
			byTarget[edge.TargetID] = &copied
		}
		fresh.npcRelations[npcID] = byTarget
	}
	for id, view := range snapshot.Factions {
		fresh.factions[id] = &Faction{
			ID:         orString(view.ID, id),
			Reputation: view.Reputation,
			History:    append([]FactionChange(nil), view.History...),
		}
	}
	for id, flag := range snapshot.EventFlags {
		copied := *flag
		copied.TriggerConditions = append([]string(nil), flag.TriggerConditions...)
		copied.Consequences = append([]string(nil), flag.Consequences...)
		fresh.flags[id] = &copied
	}
	for i := range snapshot.Timeline {
		event := snapshot.Timeline[i]
		event.Involved = append([]string(nil), snapshot.Timeline[i].Involved...)
		event.Consequences = append([]string(nil), snapshot.Timeline[i].Consequences...)
		event.seq = int64(i + 1)
		fresh.timeline = append(fresh.timeline, &event)
	}
	fresh.eventSeq = int64(len(snapshot.Timeline))

	s.mu.Lock()
	s.campaigns[campaignID] = fresh
	s.mu.Unlock()
}

func setFromList(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, member := range list {
		set[member] = struct{}{}
	}
	return set
}

func orString(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func sortNPCRelationships(list []NPCRelationship) {
	sort.Slice(list, func(i, j int) bool { return list[i].TargetID < list[j].TargetID })
}
