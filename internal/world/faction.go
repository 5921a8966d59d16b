package world

// Faction tracks a campaign's standing with one faction. Reputation is
// always the running sum of every recorded delta; the history is append-only.
type Faction struct {
	ID         string
	Reputation int
	History    []FactionChange
}

// FactionChange is one entry in a faction's reputation history.
type FactionChange struct {
	Delta     int    `json:"delta"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

// RecordFactionChange appends a history entry and moves the running total.
// First reference creates the faction at reputation 0.
func (s *Simulator) RecordFactionChange(campaignID, factionID string, delta int, reason string) int {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()

	faction, ok := c.factions[factionID]
	if !ok {
		faction = &Faction{ID: factionID}
		c.factions[factionID] = faction
	}
	faction.History = append(faction.History, FactionChange{
		Delta:     delta,
		Reason:    reason,
		Timestamp: formatTime(s.now()),
	})
	faction.Reputation += delta
	return faction.Reputation
}

// FactionReputation returns the current reputation, zero if never touched.
func (s *Simulator) FactionReputation(campaignID, factionID string) int {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if faction, ok := c.factions[factionID]; ok {
		return faction.Reputation
	}
	return 0
}

// FactionHistory returns a copy of the faction's change history in
// recorded order.
func (s *Simulator) FactionHistory(campaignID, factionID string) []FactionChange {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if faction, ok := c.factions[factionID]; ok {
		return append([]FactionChange(nil), faction.History...)
	}
	return nil
}
