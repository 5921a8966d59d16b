package world

import (
	"fmt"
	"sort"
)

// EventFlag is a named condition. Once triggered it stays triggered forever
// and has produced exactly one timeline event carrying its consequences.
type EventFlag struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	TriggerConditions []string `json:"trigger_conditions"`
	Consequences      []string `json:"consequences"`
	Triggered         bool     `json:"is_triggered"`
}

// EventTypeFlagTrigger tags the timeline event synthesized by a flag firing.
const EventTypeFlagTrigger = "flag_trigger"

// AddEventFlag creates the flag un-triggered. Re-adding an existing flag id
// overwrites it; there is no merge.
func (s *Simulator) AddEventFlag(campaignID, flagID, name, description string, triggerConditions, consequences []string) {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags[flagID] = &EventFlag{
		ID:                flagID,
		Name:              name,
		Description:       description,
		TriggerConditions: append([]string(nil), triggerConditions...),
		Consequences:      append([]string(nil), consequences...),
	}
}

// TriggerEventFlag fires a flag. Unknown flags fail with ErrFlagNotFound;
// an already-triggered flag is a no-op success, so the flag fires at most
// once and emits at most one timeline event.
func (s *Simulator) TriggerEventFlag(campaignID, flagID, triggeredBy string) error {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()

	flag, ok := c.flags[flagID]
	if !ok {
		return fmt.Errorf("triggering %q: %w", flagID, ErrFlagNotFound)
	}
	if flag.Triggered {
		return nil
	}
	flag.Triggered = true

	c.appendEvent(&TimelineEvent{
		Name:        flag.Name,
		Description: fmt.Sprintf("event flag %q triggered by %s", flagID, triggeredBy),
		Involved:    []string{triggeredBy},
		EventType:   EventTypeFlagTrigger,
		Consequences: append([]string(nil), flag.Consequences...),
		FlagID:      flagID,
		Timestamp:   formatTime(s.now()),
	})
	return nil
}

// ActiveEventFlags returns the campaign's un-triggered flags sorted by id.
func (s *Simulator) ActiveEventFlags(campaignID string) []EventFlag {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []EventFlag
	for _, flag := range c.flags {
		if flag.Triggered {
			continue
		}
		copied := *flag
		copied.TriggerConditions = append([]string(nil), flag.TriggerConditions...)
		copied.Consequences = append([]string(nil), flag.Consequences...)
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
