// Package session runs the full intake pipeline for one session transcript:
// classification, entity extraction, continuity verification, and world-state
// propagation, in that order.
package session

import (
	"fmt"
	"log/slog"
	"strings"

	"chronicler/internal/memory"
	"chronicler/internal/semantic"
	"chronicler/internal/world"
)

// Summary is the JSON-serializable outcome of processing one transcript.
// Every field is populated even when the text yields nothing; callers can
// always render it.
type Summary struct {
	CampaignID      string                    `json:"campaign_id"`
	SessionID       string                    `json:"session_id"`
	Entities        []memory.MergeResult      `json:"entities"`
	NewEntities     []string                  `json:"new_entities"`
	UpdatedEntities []string                  `json:"updated_entities"`
	ContinuityNotes []string                  `json:"continuity_notes"`
	Classifications []semantic.Classification `json:"classifications"`
	ContextLevel    semantic.Level            `json:"context_level"`
	ContextMap      []SentenceContext         `json:"context_map"`
	WorldNotes      []string                  `json:"world_notes"`
}

// SentenceContext is one sentence's narrative weight.
type SentenceContext struct {
	Sentence string         `json:"sentence"`
	Level    semantic.Level `json:"level"`
}

// Pipeline owns the components a transcript flows through. One pipeline
// serves every campaign; campaign isolation lives in the components.
type Pipeline struct {
	classifier *semantic.Classifier
	extractor  *memory.Extractor
	verifier   *memory.Verifier
	store      *memory.Store
	sim        *world.Simulator
	log        *slog.Logger
}

func NewPipeline(classifier *semantic.Classifier, store *memory.Store, graph *memory.Graph, sim *world.Simulator, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		classifier: classifier,
		extractor:  memory.NewExtractor(classifier),
		verifier:   memory.NewVerifier(store, graph),
		store:      store,
		sim:        sim,
		log:        log,
	}
}

// Process runs one transcript's text through the pipeline. Malformed or empty
// text produces an empty summary, never an error.
func (p *Pipeline) Process(campaignID, sessionID, text string) *Summary {
	summary := &Summary{
		CampaignID:      campaignID,
		SessionID:       sessionID,
		Entities:        []memory.MergeResult{},
		NewEntities:     []string{},
		UpdatedEntities: []string{},
		ContinuityNotes: []string{},
		Classifications: p.classifier.ClassifyText(text),
		ContextLevel:    p.classifier.ContextLevel(text),
		ContextMap:      []SentenceContext{},
		WorldNotes:      []string{},
	}
	for _, sentence := range semantic.SplitSentences(text) {
		summary.ContextMap = append(summary.ContextMap, SentenceContext{
			Sentence: sentence,
			Level:    p.classifier.ContextLevel(sentence),
		})
	}

	extraction := p.extractor.Extract(sessionID, text)
	batch := p.verifier.VerifyBatch(campaignID, sessionID, extraction.Entities, extraction.Relations)
	summary.Entities = batch.Results
	if ids := batch.NewIDs(); ids != nil {
		summary.NewEntities = ids
	}
	if ids := batch.UpdatedIDs(); ids != nil {
		summary.UpdatedEntities = ids
	}
	if batch.Notes != nil {
		summary.ContinuityNotes = batch.Notes
	}

	summary.WorldNotes = p.propagateWorld(campaignID, sessionID, text)

	p.log.Info("session processed",
		"campaign", campaignID,
		"session", sessionID,
		"entities", len(summary.Entities),
		"new", len(summary.NewEntities),
		"notes", len(summary.ContinuityNotes),
		"world", len(summary.WorldNotes),
	)
	return summary
}

// Words that signal an actor moving to a place.
var movementCues = []string{
	"entered", "enters", "arrived at", "arrived in", "traveled to",
	"travelled to", "journeyed to", "reached", "returned to", "went to",
	"rode to", "sailed to", "marched to",
}

// Words that signal a faction's standing shifting, with the applied delta.
// NPC status stays out of automatic propagation: it has no bounded cue
// vocabulary, so it only changes through explicit calls.
var factionCues = []struct {
	delta int
	cues  []string
}{
	{+5, []string{"aided", "honored", "praised", "rescued", "rewarded", "thanked"}},
	{-5, []string{"angered", "betrayed", "defied", "insulted", "raided", "robbed"}},
}

// propagateWorld applies the transcript's world-changing statements to the
// simulator: movement, faction standing shifts, and flags whose trigger
// conditions appear in the text.
func (p *Pipeline) propagateWorld(campaignID, sessionID, text string) []string {
	notes := []string{}
	for _, sentence := range semantic.SplitSentences(text) {
		lower := strings.ToLower(sentence)
		notes = append(notes, p.propagateMovement(campaignID, lower)...)
		notes = append(notes, p.propagateFactions(campaignID, sentence, lower)...)
	}
	notes = append(notes, p.triggerMatchedFlags(campaignID, sessionID, strings.ToLower(text))...)
	return notes
}

// propagateMovement moves a character when the sentence has a movement cue.
// The nearest character name before the cue pairs with the first location
// name after it.
func (p *Pipeline) propagateMovement(campaignID, lower string) []string {
	cueIdx := -1
	for _, cue := range movementCues {
		if idx := strings.Index(lower, cue); idx >= 0 && (cueIdx == -1 || idx < cueIdx) {
			cueIdx = idx
		}
	}
	if cueIdx < 0 {
		return nil
	}

	actor, location := p.movers(campaignID, lower, cueIdx)
	if actor == nil || location == nil {
		return nil
	}

	p.sim.UpdateLocation(campaignID, actor.ID, location.ID, world.LocationMetadata{
		Name: location.Name,
	})
	return []string{fmt.Sprintf("%s moved to %s", actor.Name, location.Name)}
}

// propagateFactions shifts a faction's reputation when a sentence mentions a
// faction entity alongside a standing cue. The sentence itself becomes the
// history entry's reason.
func (p *Pipeline) propagateFactions(campaignID, sentence, lower string) []string {
	var notes []string
	for _, entity := range p.store.List(campaignID) {
		if entity.Kind != memory.KindFaction {
			continue
		}
		if !strings.Contains(lower, strings.ToLower(entity.Name)) {
			continue
		}
		matched := false
		for _, rule := range factionCues {
			for _, cue := range rule.cues {
				if !strings.Contains(lower, cue) {
					continue
				}
				reputation := p.sim.RecordFactionChange(campaignID, entity.ID, rule.delta, strings.TrimSpace(sentence))
				notes = append(notes, fmt.Sprintf("%s reputation %+d (now %d)", entity.Name, rule.delta, reputation))
				matched = true
				break
			}
			if matched {
				break
			}
		}
	}
	return notes
}

// triggerMatchedFlags fires any active flag whose trigger condition appears
// verbatim (case-insensitive) in the transcript.
func (p *Pipeline) triggerMatchedFlags(campaignID, sessionID, lowerText string) []string {
	var notes []string
	for _, flag := range p.sim.ActiveEventFlags(campaignID) {
		for _, condition := range flag.TriggerConditions {
			condition = strings.ToLower(strings.TrimSpace(condition))
			if condition == "" || !strings.Contains(lowerText, condition) {
				continue
			}
			if err := p.sim.TriggerEventFlag(campaignID, flag.ID, "session:"+sessionID); err == nil {
				notes = append(notes, fmt.Sprintf("event flag %s triggered", flag.ID))
			}
			break
		}
	}
	return notes
}

// movers finds the acting character and the destination location mentioned in
// one lowercased sentence, split around the movement cue's position.
func (p *Pipeline) movers(campaignID, lower string, cueIdx int) (actor, location *memory.Entity) {
	for _, entity := range p.store.List(campaignID) {
		idx := strings.Index(lower, strings.ToLower(entity.Name))
		if idx < 0 {
			continue
		}
		switch entity.Kind {
		case memory.KindCharacter, memory.KindCreature:
			if idx < cueIdx && (actor == nil || idx > strings.Index(lower, strings.ToLower(actor.Name))) {
				actor = entity
			}
		case memory.KindLocation:
			if idx > cueIdx && (location == nil || idx < strings.Index(lower, strings.ToLower(location.Name))) {
				location = entity
			}
		}
	}
	return actor, location
}
