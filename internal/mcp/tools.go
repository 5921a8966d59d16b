package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"chronicler/internal/memory"
	"chronicler/internal/session"
	"chronicler/internal/validate"
	"chronicler/internal/world"
)

type ProcessSessionInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	SessionID  string `json:"session_id" jsonschema:"session identifier"`
	Text       string `json:"text" jsonschema:"raw session transcript text"`
}

type GetEntityInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ID         string `json:"id,omitempty" jsonschema:"entity id"`
	Name       string `json:"name,omitempty" jsonschema:"entity name or alias, used when id is not given"`
}

type GetEntityOutput struct {
	Entity *memory.Entity `json:"entity"`
}

type ListEntitiesInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	Kind       string `json:"kind,omitempty" jsonschema:"filter by entity kind"`
}

type ListEntitiesOutput struct {
	Entities []*memory.Entity `json:"entities"`
}

type GetRelationshipsInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	EntityID   string `json:"entity_id" jsonschema:"entity id to traverse from"`
	Direction  string `json:"direction,omitempty" jsonschema:"outgoing to list only edges from the entity, default both"`
}

type GetRelationshipsOutput struct {
	Relationships []memory.Relation `json:"relationships"`
}

type GetWorldStateInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
}

type GetWorldStateOutput struct {
	World *world.CampaignSnapshot `json:"world"`
}

type UpdateLocationInput struct {
	CampaignID  string         `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID     string         `json:"actor_id" jsonschema:"entity id of the actor moving"`
	LocationID  string         `json:"location_id" jsonschema:"location id the actor moves to"`
	Name        string         `json:"name,omitempty" jsonschema:"display name for the location"`
	Description string         `json:"description,omitempty" jsonschema:"location description"`
	Environment map[string]any `json:"environment,omitempty" jsonschema:"environmental state to merge"`
}

type UpdateLocationOutput struct {
	Location *world.LocationView `json:"location"`
}

type UpdateNPCStatusInput struct {
	CampaignID string         `json:"campaign_id" jsonschema:"campaign identifier"`
	NPCID      string         `json:"npc_id" jsonschema:"entity id of the NPC"`
	Status     map[string]any `json:"status" jsonschema:"status fields to merge"`
}

type UpdateNPCStatusOutput struct {
	NPCID  string         `json:"npc_id"`
	Status map[string]any `json:"status"`
}

type AddNPCRelationshipInput struct {
	CampaignID string  `json:"campaign_id" jsonschema:"campaign identifier"`
	NPCID      string  `json:"npc_id" jsonschema:"entity id of the NPC"`
	TargetID   string  `json:"target_id" jsonschema:"entity id the relationship points at"`
	Type       string  `json:"relationship_type" jsonschema:"relationship type such as friend or rival"`
	Strength   float64 `json:"strength" jsonschema:"relationship strength between 0 and 1"`
	Trust      float64 `json:"trust_level" jsonschema:"trust level between 0 and 1"`
}

type AddNPCRelationshipOutput struct {
	Relationships []world.NPCRelationship `json:"relationships"`
}

type RecordFactionChangeInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	FactionID  string `json:"faction_id" jsonschema:"faction identifier"`
	Delta      int    `json:"delta" jsonschema:"signed reputation change"`
	Reason     string `json:"reason" jsonschema:"why reputation changed"`
}

type RecordFactionChangeOutput struct {
	FactionID  string `json:"faction_id"`
	Reputation int    `json:"reputation"`
}

type AddEventFlagInput struct {
	CampaignID        string   `json:"campaign_id" jsonschema:"campaign identifier"`
	FlagID            string   `json:"flag_id" jsonschema:"flag identifier"`
	Name              string   `json:"name" jsonschema:"flag display name"`
	Description       string   `json:"description,omitempty" jsonschema:"what the flag represents"`
	TriggerConditions []string `json:"trigger_conditions,omitempty" jsonschema:"narrative conditions that fire the flag"`
	Consequences      []string `json:"consequences,omitempty" jsonschema:"what happens when the flag fires"`
}

type AddEventFlagOutput struct {
	ActiveFlags []world.EventFlag `json:"active_flags"`
}

type TriggerEventFlagInput struct {
	CampaignID  string `json:"campaign_id" jsonschema:"campaign identifier"`
	FlagID      string `json:"flag_id" jsonschema:"flag identifier"`
	TriggeredBy string `json:"triggered_by" jsonschema:"entity id that fired the flag"`
}

type TriggerEventFlagOutput struct {
	Triggered bool `json:"triggered"`
}

type GetTimelineInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum events to return, newest first"`
	EventType  string `json:"event_type,omitempty" jsonschema:"filter to one event type"`
}

type GetTimelineOutput struct {
	Events []world.TimelineEvent `json:"events"`
}

type SaveCampaignInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
}

type SaveCampaignOutput struct {
	Saved bool `json:"saved"`
}

type LoadCampaignInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
}

type LoadCampaignOutput struct {
	Loaded bool `json:"loaded"`
}

type ValidateCampaignInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "process_session",
		Description: "Extract entities and world changes from raw session text",
	}, s.handleProcessSession)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_entity",
		Description: "Retrieve one entity by id or name",
	}, s.handleGetEntity)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_entities",
		Description: "List a campaign's entities, optionally by kind",
	}, s.handleListEntities)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_relationships",
		Description: "List the relationships touching an entity",
	}, s.handleGetRelationships)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_world_state",
		Description: "Return a campaign's full world snapshot",
	}, s.handleGetWorldState)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "update_location",
		Description: "Move an actor to a location",
	}, s.handleUpdateLocation)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "update_npc_status",
		Description: "Merge status fields into an NPC's record",
	}, s.handleUpdateNPCStatus)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "add_npc_relationship",
		Description: "Set the relationship between an NPC and a target",
	}, s.handleAddNPCRelationship)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "record_faction_change",
		Description: "Apply a reputation delta to a faction",
	}, s.handleRecordFactionChange)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "add_event_flag",
		Description: "Register a narrative event flag",
	}, s.handleAddEventFlag)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "trigger_event_flag",
		Description: "Fire an event flag and record it on the timeline",
	}, s.handleTriggerEventFlag)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_timeline",
		Description: "Return recent timeline events, newest first",
	}, s.handleGetTimeline)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "save_campaign",
		Description: "Persist a campaign's full state",
	}, s.handleSaveCampaign)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "load_campaign",
		Description: "Restore a campaign's state from storage",
	}, s.handleLoadCampaign)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "validate_campaign",
		Description: "Audit a campaign's recorded state for contradictions",
	}, s.handleValidateCampaign)
}

func (s *Server) handleProcessSession(ctx context.Context, req *sdk.CallToolRequest, input ProcessSessionInput) (*sdk.CallToolResult, session.Summary, error) {
	if input.CampaignID == "" || input.SessionID == "" {
		return nil, session.Summary{}, fmt.Errorf("campaign_id and session_id are required")
	}
	summary := s.pipeline.Process(input.CampaignID, input.SessionID, input.Text)
	return nil, *summary, nil
}

func (s *Server) handleGetEntity(ctx context.Context, req *sdk.CallToolRequest, input GetEntityInput) (*sdk.CallToolResult, GetEntityOutput, error) {
	if input.CampaignID == "" {
		return nil, GetEntityOutput{}, fmt.Errorf("campaign_id is required")
	}
	var (
		entity *memory.Entity
		err    error
	)
	switch {
	case input.ID != "":
		entity, err = s.entities.Get(input.CampaignID, input.ID)
	case input.Name != "":
		entity, err = s.entities.FindByName(input.CampaignID, input.Name)
	default:
		return nil, GetEntityOutput{}, fmt.Errorf("id or name is required")
	}
	if err != nil {
		return nil, GetEntityOutput{}, err
	}
	return nil, GetEntityOutput{Entity: entity}, nil
}

func (s *Server) handleListEntities(ctx context.Context, req *sdk.CallToolRequest, input ListEntitiesInput) (*sdk.CallToolResult, ListEntitiesOutput, error) {
	if input.CampaignID == "" {
		return nil, ListEntitiesOutput{}, fmt.Errorf("campaign_id is required")
	}
	entities := s.entities.List(input.CampaignID)
	if input.Kind != "" {
		filtered := entities[:0]
		for _, entity := range entities {
			if string(entity.Kind) == input.Kind {
				filtered = append(filtered, entity)
			}
		}
		entities = filtered
	}
	if entities == nil {
		entities = []*memory.Entity{}
	}
	return nil, ListEntitiesOutput{Entities: entities}, nil
}

func (s *Server) handleGetRelationships(ctx context.Context, req *sdk.CallToolRequest, input GetRelationshipsInput) (*sdk.CallToolResult, GetRelationshipsOutput, error) {
	if input.CampaignID == "" || input.EntityID == "" {
		return nil, GetRelationshipsOutput{}, fmt.Errorf("campaign_id and entity_id are required")
	}

	var relations []memory.Relation
	if input.Direction == "outgoing" {
		for _, edge := range s.graph.EdgesFrom(input.CampaignID, input.EntityID) {
			relations = append(relations, memory.Relation{Edge: edge, Direction: "outgoing"})
		}
	} else {
		relations = s.graph.EdgesOf(input.CampaignID, input.EntityID)
	}
	if relations == nil {
		relations = []memory.Relation{}
	}
	return nil, GetRelationshipsOutput{Relationships: relations}, nil
}

func (s *Server) handleGetWorldState(ctx context.Context, req *sdk.CallToolRequest, input GetWorldStateInput) (*sdk.CallToolResult, GetWorldStateOutput, error) {
	if input.CampaignID == "" {
		return nil, GetWorldStateOutput{}, fmt.Errorf("campaign_id is required")
	}
	return nil, GetWorldStateOutput{World: s.sim.Snapshot(input.CampaignID)}, nil
}

func (s *Server) handleUpdateLocation(ctx context.Context, req *sdk.CallToolRequest, input UpdateLocationInput) (*sdk.CallToolResult, UpdateLocationOutput, error) {
	if input.CampaignID == "" || input.ActorID == "" || input.LocationID == "" {
		return nil, UpdateLocationOutput{}, fmt.Errorf("campaign_id, actor_id, and location_id are required")
	}
	s.sim.UpdateLocation(input.CampaignID, input.ActorID, input.LocationID, world.LocationMetadata{
		Name:        input.Name,
		Description: input.Description,
		Environment: input.Environment,
	})
	view, _ := s.sim.GetLocation(input.CampaignID, input.LocationID)
	return nil, UpdateLocationOutput{Location: view}, nil
}

func (s *Server) handleUpdateNPCStatus(ctx context.Context, req *sdk.CallToolRequest, input UpdateNPCStatusInput) (*sdk.CallToolResult, UpdateNPCStatusOutput, error) {
	if input.CampaignID == "" || input.NPCID == "" {
		return nil, UpdateNPCStatusOutput{}, fmt.Errorf("campaign_id and npc_id are required")
	}
	s.sim.UpdateNPCStatus(input.CampaignID, input.NPCID, input.Status)
	status, _ := s.sim.GetNPCStatus(input.CampaignID, input.NPCID)
	return nil, UpdateNPCStatusOutput{NPCID: input.NPCID, Status: status}, nil
}

func (s *Server) handleAddNPCRelationship(ctx context.Context, req *sdk.CallToolRequest, input AddNPCRelationshipInput) (*sdk.CallToolResult, AddNPCRelationshipOutput, error) {
	if input.CampaignID == "" || input.NPCID == "" || input.TargetID == "" {
		return nil, AddNPCRelationshipOutput{}, fmt.Errorf("campaign_id, npc_id, and target_id are required")
	}
	s.sim.AddNPCRelationship(input.CampaignID, input.NPCID, input.TargetID, input.Type, input.Strength, input.Trust)
	return nil, AddNPCRelationshipOutput{
		Relationships: s.sim.GetNPCRelationships(input.CampaignID, input.NPCID),
	}, nil
}

func (s *Server) handleRecordFactionChange(ctx context.Context, req *sdk.CallToolRequest, input RecordFactionChangeInput) (*sdk.CallToolResult, RecordFactionChangeOutput, error) {
	if input.CampaignID == "" || input.FactionID == "" {
		return nil, RecordFactionChangeOutput{}, fmt.Errorf("campaign_id and faction_id are required")
	}
	reputation := s.sim.RecordFactionChange(input.CampaignID, input.FactionID, input.Delta, input.Reason)
	return nil, RecordFactionChangeOutput{FactionID: input.FactionID, Reputation: reputation}, nil
}

func (s *Server) handleAddEventFlag(ctx context.Context, req *sdk.CallToolRequest, input AddEventFlagInput) (*sdk.CallToolResult, AddEventFlagOutput, error) {
	if input.CampaignID == "" || input.FlagID == "" {
		return nil, AddEventFlagOutput{}, fmt.Errorf("campaign_id and flag_id are required")
	}
	s.sim.AddEventFlag(input.CampaignID, input.FlagID, input.Name, input.Description, input.TriggerConditions, input.Consequences)
	return nil, AddEventFlagOutput{ActiveFlags: s.sim.ActiveEventFlags(input.CampaignID)}, nil
}

func (s *Server) handleTriggerEventFlag(ctx context.Context, req *sdk.CallToolRequest, input TriggerEventFlagInput) (*sdk.CallToolResult, TriggerEventFlagOutput, error) {
	if input.CampaignID == "" || input.FlagID == "" {
		return nil, TriggerEventFlagOutput{}, fmt.Errorf("campaign_id and flag_id are required")
	}
	if err := s.sim.TriggerEventFlag(input.CampaignID, input.FlagID, input.TriggeredBy); err != nil {
		return nil, TriggerEventFlagOutput{}, err
	}
	return nil, TriggerEventFlagOutput{Triggered: true}, nil
}

func (s *Server) handleGetTimeline(ctx context.Context, req *sdk.CallToolRequest, input GetTimelineInput) (*sdk.CallToolResult, GetTimelineOutput, error) {
	if input.CampaignID == "" {
		return nil, GetTimelineOutput{}, fmt.Errorf("campaign_id is required")
	}
	events := s.sim.RecentTimelineEventsByType(input.CampaignID, input.Limit, input.EventType)
	return nil, GetTimelineOutput{Events: events}, nil
}

func (s *Server) handleSaveCampaign(ctx context.Context, req *sdk.CallToolRequest, input SaveCampaignInput) (*sdk.CallToolResult, SaveCampaignOutput, error) {
	if input.CampaignID == "" {
		return nil, SaveCampaignOutput{}, fmt.Errorf("campaign_id is required")
	}
	return nil, SaveCampaignOutput{Saved: s.persister.SaveCampaignState(ctx, input.CampaignID)}, nil
}

func (s *Server) handleLoadCampaign(ctx context.Context, req *sdk.CallToolRequest, input LoadCampaignInput) (*sdk.CallToolResult, LoadCampaignOutput, error) {
	if input.CampaignID == "" {
		return nil, LoadCampaignOutput{}, fmt.Errorf("campaign_id is required")
	}
	return nil, LoadCampaignOutput{Loaded: s.persister.LoadCampaignState(ctx, input.CampaignID)}, nil
}

func (s *Server) handleValidateCampaign(ctx context.Context, req *sdk.CallToolRequest, input ValidateCampaignInput) (*sdk.CallToolResult, validate.Report, error) {
	if input.CampaignID == "" {
		return nil, validate.Report{}, fmt.Errorf("campaign_id is required")
	}
	report := validate.Run(input.CampaignID, s.entities, s.graph, s.sim)
	return nil, *report, nil
}
