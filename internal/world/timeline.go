package world

import (
	"fmt"
	"sort"
)

// TimelineEvent is one named event in a campaign's chronology. The list is
// append-only; retrieval is newest-first.
type TimelineEvent struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	LocationID   string   `json:"location_id,omitempty"`
	Involved     []string `json:"involved_characters"`
	EventType    string   `json:"event_type"`
	Consequences []string `json:"consequences,omitempty"`
	FlagID       string   `json:"flag_id,omitempty"`
	Timestamp    string   `json:"timestamp"`

	seq int64
}

// AddTimelineEvent appends an event stamped with the current time and
// returns its id.
func (s *Simulator) AddTimelineEvent(campaignID, name, description, locationID string, involved []string, eventType string) string {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appendEvent(&TimelineEvent{
		Name:        name,
		Description: description,
		LocationID:  locationID,
		Involved:    append([]string(nil), involved...),
		EventType:   eventType,
		Timestamp:   formatTime(s.now()),
	})
}

// RecentTimelineEvents returns up to limit events sorted by timestamp
// descending, ties broken by insertion order with the most recently inserted
// first. A non-positive limit means no limit.
func (s *Simulator) RecentTimelineEvents(campaignID string, limit int) []TimelineEvent {
	return s.recentEvents(campaignID, limit, "")
}

// RecentTimelineEventsByType is RecentTimelineEvents filtered to one
// event type.
func (s *Simulator) RecentTimelineEventsByType(campaignID string, limit int, eventType string) []TimelineEvent {
	return s.recentEvents(campaignID, limit, eventType)
}

func (s *Simulator) recentEvents(campaignID string, limit int, eventType string) []TimelineEvent {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()

	events := make([]TimelineEvent, 0, len(c.timeline))
	for _, event := range c.timeline {
		if eventType != "" && event.EventType != eventType {
			continue
		}
		copied := *event
		copied.Involved = append([]string(nil), event.Involved...)
		copied.Consequences = append([]string(nil), event.Consequences...)
		events = append(events, copied)
	}

	sort.SliceStable(events, func(i, j int) bool {
		ti, tj := parseTime(events[i].Timestamp), parseTime(events[j].Timestamp)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return events[i].seq > events[j].seq
	})

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events
}

// appendEvent assigns the event's sequence number and id. Caller holds the
// campaign lock.
func (c *campaignState) appendEvent(event *TimelineEvent) string {
	c.eventSeq++
	event.seq = c.eventSeq
	if event.ID == "" {
		event.ID = fmt.Sprintf("evt-%06d", c.eventSeq)
	}
	if event.Involved == nil {
		event.Involved = []string{}
	}
	c.timeline = append(c.timeline, event)
	return event.ID
}
