package main

import (
	"context"

	"github.com/spf13/cobra"

	"chronicler/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close(ctx)

	if err := eng.loadAllCampaigns(ctx); err != nil {
		return err
	}

	server := mcp.NewServer(eng.pipeline, eng.entities, eng.graph, eng.sim, eng.persister, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
