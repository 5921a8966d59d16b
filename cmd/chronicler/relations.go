package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chronicler/internal/memory"
)

func relationsCmd() *cobra.Command {
	var campaignID string
	cmd := &cobra.Command{
		Use:   "relations <name>",
		Short: "List the relationships touching an entity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if campaignID == "" {
				return fmt.Errorf("--campaign is required")
			}
			return runRelations(campaignID, args[0])
		},
	}
	cmd.Flags().StringVar(&campaignID, "campaign", "", "Campaign identifier")
	return cmd
}

func runRelations(campaignID, name string) error {
	ctx := context.Background()

	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close(ctx)
	eng.loadCampaign(ctx, campaignID)

	entity, err := eng.entities.FindByName(campaignID, name)
	if errors.Is(err, memory.ErrNotFound) {
		fmt.Fprintf(os.Stdout, "No entity found for %q.\n", name)
		return nil
	}
	if err != nil {
		return err
	}

	relations := eng.graph.EdgesOf(campaignID, entity.ID)
	if len(relations) == 0 {
		fmt.Fprintf(os.Stdout, "No relationships recorded for %s.\n", entity.Name)
		return nil
	}

	for _, relation := range relations {
		otherID := relation.Edge.To
		arrow := "->"
		if relation.Direction == "incoming" {
			otherID = relation.Edge.From
			arrow = "<-"
		}
		otherName := otherID
		if other, err := eng.entities.Get(campaignID, otherID); err == nil {
			otherName = other.Name
		}
		fmt.Fprintf(os.Stdout, "  %s %s[%s]%s %s\n", entity.Name, arrow, relation.Edge.Type, arrow, otherName)
	}
	return nil
}
