// Package validate audits one campaign's recorded state for internal
// contradictions: relationships pointing at entities that do not exist,
// triggered flags with no matching timeline event, actors whose tracked
// location disagrees with the occupant sets, and reputation totals that
// drifted from their history.
package validate

import (
	"fmt"
	"strings"

	"chronicler/internal/memory"
	"chronicler/internal/world"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeDanglingRelationship = "dangling_relationship"
	codeDuplicateName        = "duplicate_name"
	codeIsolatedEntity       = "isolated_entity"
	codeFlagWithoutEvent     = "flag_without_event"
	codeEventWithoutFlag     = "event_without_flag"
	codeUnknownActor         = "unknown_actor"
	codeOccupancyMismatch    = "occupancy_mismatch"
	codeReputationDrift      = "reputation_drift"
)

type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Subject  string   `json:"subject"`
}

type Report struct {
	CampaignID string  `json:"campaign_id"`
	Issues     []Issue `json:"issues"`
}

func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Run audits the campaign. The report lists findings; an empty issue list
// means the recorded state is self-consistent.
func Run(campaignID string, store *memory.Store, graph *memory.Graph, sim *world.Simulator) *Report {
	report := &Report{CampaignID: campaignID, Issues: []Issue{}}

	entities := store.List(campaignID)
	known := make(map[string]*memory.Entity, len(entities))
	for _, entity := range entities {
		known[entity.ID] = entity
	}

	auditEntities(report, entities)
	auditRelationships(report, graph.Export(campaignID), known)
	auditWorld(report, sim.Snapshot(campaignID), known)

	return report
}

func auditEntities(report *Report, entities []*memory.Entity) {
	byName := make(map[string][]string)
	for _, entity := range entities {
		key := strings.ToLower(entity.Name)
		byName[key] = append(byName[key], entity.ID)
	}
	for _, entity := range entities {
		if ids := byName[strings.ToLower(entity.Name)]; len(ids) > 1 && ids[0] == entity.ID {
			report.add(SeverityWarn, codeDuplicateName, entity.Name,
				"name %q is shared by %d entities", entity.Name, len(ids))
		}
	}
}

func auditRelationships(report *Report, edges []memory.Edge, known map[string]*memory.Entity) {
	connected := make(map[string]struct{})
	for _, edge := range edges {
		connected[edge.From] = struct{}{}
		connected[edge.To] = struct{}{}
		for _, id := range []string{edge.From, edge.To} {
			if _, ok := known[id]; !ok {
				report.add(SeverityError, codeDanglingRelationship, id,
					"relationship %s %s %s references unknown entity %s", edge.From, edge.Type, edge.To, id)
			}
		}
	}

	for _, entity := range known {
		if entity.Importance != memory.ImportanceCritical {
			continue
		}
		if _, ok := connected[entity.ID]; !ok {
			report.add(SeverityWarn, codeIsolatedEntity, entity.ID,
				"critical entity %s has no recorded relationships", entity.Name)
		}
	}
}

func auditWorld(report *Report, snapshot *world.CampaignSnapshot, known map[string]*memory.Entity) {
	triggeredEvents := make(map[string]struct{})
	for _, event := range snapshot.Timeline {
		if event.EventType != world.EventTypeFlagTrigger {
			continue
		}
		triggeredEvents[event.FlagID] = struct{}{}
		if _, ok := snapshot.EventFlags[event.FlagID]; !ok {
			report.add(SeverityError, codeEventWithoutFlag, event.ID,
				"timeline event %s references unknown flag %q", event.ID, event.FlagID)
		}
	}
	for id, flag := range snapshot.EventFlags {
		if !flag.Triggered {
			continue
		}
		if _, ok := triggeredEvents[id]; !ok {
			report.add(SeverityError, codeFlagWithoutEvent, id,
				"flag %q is triggered but no timeline event records it", id)
		}
	}

	for actor, locationID := range snapshot.ActorLocations {
		if _, ok := known[actor]; !ok {
			report.add(SeverityWarn, codeUnknownActor, actor,
				"tracked actor %s has no entity record", actor)
		}
		loc, ok := snapshot.Locations[locationID]
		if !ok {
			report.add(SeverityError, codeOccupancyMismatch, actor,
				"actor %s is tracked at unknown location %s", actor, locationID)
			continue
		}
		if !contains(loc.Occupants, actor) {
			report.add(SeverityError, codeOccupancyMismatch, actor,
				"actor %s is tracked at %s but missing from its occupants", actor, locationID)
		}
	}
	for id, loc := range snapshot.Locations {
		for _, occupant := range loc.Occupants {
			if snapshot.ActorLocations[occupant] != id {
				report.add(SeverityError, codeOccupancyMismatch, occupant,
					"occupant %s of %s is tracked elsewhere", occupant, id)
			}
		}
	}

	for id, faction := range snapshot.Factions {
		total := 0
		for _, change := range faction.History {
			total += change.Delta
		}
		if total != faction.Reputation {
			report.add(SeverityError, codeReputationDrift, id,
				"faction %s reputation is %d but history sums to %d", id, faction.Reputation, total)
		}
	}
}

func (r *Report) add(severity Severity, code, subject, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Severity: severity,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Subject:  subject,
	})
}

func contains(list []string, value string) bool {
	for _, member := range list {
		if member == value {
			return true
		}
	}
	return false
}
