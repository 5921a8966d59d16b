package world

import (
	"sort"
	"time"

	"chronicler/internal/memory"
)

// Location is the per-campaign state of one place: its occupants right now,
// everyone who has ever discovered it, and its environment.
type Location struct {
	ID           string
	Name         string
	Description  string
	Environment  map[string]any
	Occupants    map[string]struct{}
	DiscoveredBy map[string]struct{}
	VisitCount   int
	LastVisited  time.Time
}

// LocationMetadata carries the optional descriptive fields applied when an
// actor moves somewhere. Environment values are JSON-safe scalars.
type LocationMetadata struct {
	Name        string
	Description string
	Environment map[string]any
}

// UpdateLocation moves an actor. The actor leaves its previous location's
// occupant set and joins the new one atomically; it can never occupy two
// locations at once. First visits mark discovery and count the visit.
func (s *Simulator) UpdateLocation(campaignID, actorID, locationID string, meta LocationMetadata) {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()

	if prevID, ok := c.actorLocation[actorID]; ok && prevID != locationID {
		if prev, ok := c.locations[prevID]; ok {
			delete(prev.Occupants, actorID)
		}
	}

	loc := c.location(locationID)
	loc.Occupants[actorID] = struct{}{}
	c.actorLocation[actorID] = locationID

	if _, visited := loc.DiscoveredBy[actorID]; !visited {
		loc.DiscoveredBy[actorID] = struct{}{}
		loc.VisitCount++
	}
	loc.LastVisited = s.now()

	if meta.Name != "" {
		loc.Name = meta.Name
	}
	if meta.Description != "" {
		loc.Description = meta.Description
	}
	for key, value := range memory.NormalizeAttrs(meta.Environment) {
		loc.Environment[key] = value
	}
}

// ActorLocation reports where an actor currently is.
func (s *Simulator) ActorLocation(campaignID, actorID string) (string, bool) {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.actorLocation[actorID]
	return id, ok
}

// GetLocation returns a copy of a location's state, or false if the
// campaign has never referenced it.
func (s *Simulator) GetLocation(campaignID, locationID string) (*LocationView, bool) {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	loc, ok := c.locations[locationID]
	if !ok {
		return nil, false
	}
	return loc.view(), true
}

// LocationView is a detached, JSON-safe copy of a location.
type LocationView struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Environment  map[string]any `json:"environmental_state"`
	Occupants    []string       `json:"current_occupants"`
	DiscoveredBy []string       `json:"discovered_by"`
	VisitCount   int            `json:"visit_count"`
	LastVisited  string         `json:"last_visited"`
}

func (l *Location) view() *LocationView {
	return &LocationView{
		ID:           l.ID,
		Name:         l.Name,
		Description:  l.Description,
		Environment:  copyMap(l.Environment),
		Occupants:    sortedSet(l.Occupants),
		DiscoveredBy: sortedSet(l.DiscoveredBy),
		VisitCount:   l.VisitCount,
		LastVisited:  formatTime(l.LastVisited),
	}
}

func (c *campaignState) location(locationID string) *Location {
	loc, ok := c.locations[locationID]
	if !ok {
		loc = &Location{
			ID:           locationID,
			Name:         locationID,
			Environment:  make(map[string]any),
			Occupants:    make(map[string]struct{}),
			DiscoveredBy: make(map[string]struct{}),
		}
		c.locations[locationID] = loc
	}
	return loc
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for member := range set {
		out = append(out, member)
	}
	sort.Strings(out)
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = value
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
