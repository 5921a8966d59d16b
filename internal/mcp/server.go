// Package mcp exposes the campaign engine over the Model Context Protocol so
// an assistant running a game can record sessions and query world state.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"chronicler/internal/memory"
	"chronicler/internal/persist"
	"chronicler/internal/session"
	"chronicler/internal/world"
)

type Server struct {
	pipeline  *session.Pipeline
	entities  *memory.Store
	graph     *memory.Graph
	sim       *world.Simulator
	persister *persist.Persister
	mcp       *sdk.Server
}

func NewServer(pipeline *session.Pipeline, entities *memory.Store, graph *memory.Graph, sim *world.Simulator, persister *persist.Persister, version string) *Server {
	s := &Server{
		pipeline:  pipeline,
		entities:  entities,
		graph:     graph,
		sim:       sim,
		persister: persister,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "chronicler",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
