package memory

import (
	"sort"
	"sync"
)

// Edge is a typed, directed link between two entity ids.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// Relation is an edge seen from one endpoint's point of view.
type Relation struct {
	Edge      Edge   `json:"edge"`
	Direction string `json:"direction"` // "outgoing" or "incoming"
}

// Graph owns the canonical relationship edges per campaign. It replaces the
// pattern of each entity carrying its own copy of every edge: one record per
// edge, traversal answered from either endpoint, so the two sides can never
// drift apart.
type Graph struct {
	mu        sync.Mutex
	campaigns map[string]*campaignEdges
}

type edgeKey struct {
	from, to, relType string
}

type campaignEdges struct {
	mu    sync.Mutex
	edges []Edge
	seen  map[edgeKey]struct{}
}

func NewGraph() *Graph {
	return &Graph{campaigns: make(map[string]*campaignEdges)}
}

func (g *Graph) campaign(campaignID string) *campaignEdges {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.campaigns[campaignID]
	if !ok {
		c = &campaignEdges{seen: make(map[edgeKey]struct{})}
		g.campaigns[campaignID] = c
	}
	return c
}

// AddEdge records the edge if it is not already present. Reports whether a
// new edge was added.
func (g *Graph) AddEdge(campaignID, from, to, relType string) bool {
	if from == "" || to == "" || relType == "" || from == to {
		return false
	}
	c := g.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	key := edgeKey{from: from, to: to, relType: relType}
	if _, ok := c.seen[key]; ok {
		return false
	}
	c.seen[key] = struct{}{}
	c.edges = append(c.edges, Edge{From: from, To: to, Type: relType})
	return true
}

// EdgesFrom returns the outgoing edges of an entity.
func (g *Graph) EdgesFrom(campaignID, id string) []Edge {
	c := g.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Edge
	for _, edge := range c.edges {
		if edge.From == id {
			out = append(out, edge)
		}
	}
	return out
}

// EdgesOf returns every edge touching an entity, from either side.
func (g *Graph) EdgesOf(campaignID, id string) []Relation {
	c := g.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Relation
	for _, edge := range c.edges {
		switch id {
		case edge.From:
			out = append(out, Relation{Edge: edge, Direction: "outgoing"})
		case edge.To:
			out = append(out, Relation{Edge: edge, Direction: "incoming"})
		}
	}
	return out
}

// Export returns the campaign's edges sorted for snapshotting.
func (g *Graph) Export(campaignID string) []Edge {
	c := g.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]Edge(nil), c.edges...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// Restore replaces the campaign's edges with the given set.
func (g *Graph) Restore(campaignID string, edges []Edge) {
	c := g.campaign(campaignID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edges = c.edges[:0]
	c.seen = make(map[edgeKey]struct{}, len(edges))
	for _, edge := range edges {
		key := edgeKey{from: edge.From, to: edge.To, relType: edge.Type}
		if _, ok := c.seen[key]; ok {
			continue
		}
		c.seen[key] = struct{}{}
		c.edges = append(c.edges, edge)
	}
}
