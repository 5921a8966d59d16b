package memory

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound reports that no entity matched a lookup.
var ErrNotFound = errors.New("entity not found")

// Store holds the canonical entities for every campaign. Internal maps are
// partitioned by campaign id; mutations within one campaign serialize on
// that campaign's lock while campaigns proceed independently.
type Store struct {
	mu        sync.Mutex
	campaigns map[string]*campaignEntities
}

type campaignEntities struct {
	mu     sync.Mutex
	byID   map[string]*Entity
	byName map[string]string // lowercase name or alias -> id
	order  []string          // ids in insertion order
}

func NewStore() *Store {
	return &Store{campaigns: make(map[string]*campaignEntities)}
}

func (s *Store) campaign(campaignID string) *campaignEntities {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[campaignID]
	if !ok {
		c = &campaignEntities{
			byID:   make(map[string]*Entity),
			byName: make(map[string]string),
		}
		s.campaigns[campaignID] = c
	}
	return c
}

// Upsert inserts the candidate if its derived id is unseen, otherwise merges
// it into the existing entity. Duplicate input is the expected case, never an
// error. The returned id is the canonical id either way; notes describe any
// inconsistencies found during a merge.
func (s *Store) Upsert(campaignID, sessionID string, candidate *Entity) (string, []string) {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()

	if candidate.ID == "" {
		candidate.ID = DeriveID(candidate.Name, candidate.Kind, candidate.FirstSeen)
	}
	if existing, ok := c.byID[candidate.ID]; ok {
		notes := mergeEntity(existing, candidate, sessionID)
		c.index(existing)
		return existing.ID, notes
	}
	c.insert(candidate)
	return candidate.ID, nil
}

// Insert adds a new entity without merge handling. It is the verifier's
// entry point once new-vs-existing has been decided.
func (s *Store) Insert(campaignID string, entity *Entity) string {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if entity.ID == "" {
		entity.ID = DeriveID(entity.Name, entity.Kind, entity.FirstSeen)
	}
	c.insert(entity)
	return entity.ID
}

// Get returns a copy of the entity or ErrNotFound.
func (s *Store) Get(campaignID, id string) (*Entity, error) {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	entity, ok := c.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return entity.Clone(), nil
}

// FindByName looks an entity up by case-insensitive exact name or alias
// match. No fuzzy matching.
func (s *Store) FindByName(campaignID, name string) (*Entity, error) {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrNotFound
	}
	return c.byID[id].Clone(), nil
}

// MergeInto applies the candidate onto the existing entity id, returning
// continuity notes. Used by the verifier when a name lookup already matched.
func (s *Store) MergeInto(campaignID, id, sessionID string, candidate *Entity) ([]string, error) {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	existing, ok := c.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	notes := mergeEntity(existing, candidate, sessionID)
	c.index(existing)
	return notes, nil
}

// List returns copies of all entities for the campaign in insertion order.
func (s *Store) List(campaignID string) []*Entity {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Entity, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].Clone())
	}
	return out
}

// Export returns the campaign's entities sorted by id, for snapshotting.
func (s *Store) Export(campaignID string) []*Entity {
	entities := s.List(campaignID)
	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })
	return entities
}

// Restore replaces the campaign's entities with the given set.
func (s *Store) Restore(campaignID string, entities []*Entity) {
	c := s.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID = make(map[string]*Entity, len(entities))
	c.byName = make(map[string]string, len(entities))
	c.order = c.order[:0]
	for _, entity := range entities {
		c.insert(entity.Clone())
	}
}

func (c *campaignEntities) insert(entity *Entity) {
	if entity.CoreAttrs == nil {
		entity.CoreAttrs = map[string]any{}
	}
	if entity.VarAttrs == nil {
		entity.VarAttrs = map[string]any{}
	}
	c.byID[entity.ID] = entity
	c.order = append(c.order, entity.ID)
	c.index(entity)
}

func (c *campaignEntities) index(entity *Entity) {
	c.byName[strings.ToLower(entity.Name)] = entity.ID
	for _, alias := range entity.Aliases {
		c.byName[strings.ToLower(alias)] = entity.ID
	}
}
