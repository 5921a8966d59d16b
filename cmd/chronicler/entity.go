package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"chronicler/internal/memory"
)

func entityCmd() *cobra.Command {
	var campaignID string
	cmd := &cobra.Command{
		Use:   "entity <name>",
		Short: "Display an entity and everything recorded about it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if campaignID == "" {
				return fmt.Errorf("--campaign is required")
			}
			return runEntity(campaignID, args[0])
		},
	}
	cmd.Flags().StringVar(&campaignID, "campaign", "", "Campaign identifier")
	return cmd
}

func runEntity(campaignID, name string) error {
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

	fmt.Fprintf(os.Stdout, "Name: %s\n", entity.Name)
	fmt.Fprintf(os.Stdout, "Kind: %s\n", entity.Kind)
	fmt.Fprintf(os.Stdout, "ID: %s\n", entity.ID)
	fmt.Fprintf(os.Stdout, "Importance: %s\n", entity.Importance)
	fmt.Fprintf(os.Stdout, "Confidence: %.2f\n", entity.Confidence)
	fmt.Fprintf(os.Stdout, "First seen: %s, last updated: %s\n", entity.FirstSeen, entity.LastUpdated)
	if len(entity.Aliases) > 0 {
		fmt.Fprintf(os.Stdout, "Aliases: %s\n", joinValues(entity.Aliases))
	}
	if entity.Description != "" {
		fmt.Fprintf(os.Stdout, "Description: %s\n", entity.Description)
	}

	printAttrBlock("Core attributes", entity.CoreAttrs)
	printAttrBlock("Variable attributes", entity.VarAttrs)

	if len(entity.Tags) > 0 {
		fmt.Fprintln(os.Stdout, "Tags:")
		for _, tag := range entity.Tags {
			fmt.Fprintf(os.Stdout, "  %s (%.2f)\n", tag.Category, tag.Confidence)
		}
	}
	if len(entity.Snippets) > 0 {
		fmt.Fprintln(os.Stdout, "Context:")
		for _, snippet := range entity.Snippets {
			fmt.Fprintf(os.Stdout, "  - %s\n", snippet)
		}
	}
	return nil
}

func printAttrBlock(title string, attrs map[string]any) {
	if len(attrs) == 0 {
		return
	}
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fmt.Fprintf(os.Stdout, "%s:\n", title)
	for _, key := range keys {
		fmt.Fprintf(os.Stdout, "  %s: %v\n", key, attrs[key])
	}
}
