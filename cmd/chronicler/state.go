package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func stateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state <campaign>",
		Short: "Display a campaign's current world state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState(args[0])
		},
	}
	return cmd
}

func runState(campaignID string) error {
	ctx := context.Background()

	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close(ctx)
	eng.loadCampaign(ctx, campaignID)

	snapshot := eng.sim.Snapshot(campaignID)

	if len(snapshot.Locations) > 0 {
		fmt.Fprintln(os.Stdout, "Locations:")
		for _, id := range sortedKeys(snapshot.Locations) {
			loc := snapshot.Locations[id]
			fmt.Fprintf(os.Stdout, "  %s (%d visits)\n", loc.Name, loc.VisitCount)
			if len(loc.Occupants) > 0 {
				fmt.Fprintf(os.Stdout, "    Occupants: %s\n", joinValues(loc.Occupants))
			}
		}
	}

	if len(snapshot.Factions) > 0 {
		fmt.Fprintln(os.Stdout, "Factions:")
		for _, id := range sortedKeys(snapshot.Factions) {
			faction := snapshot.Factions[id]
			fmt.Fprintf(os.Stdout, "  %s: %+d\n", faction.ID, faction.Reputation)
		}
	}

	active := eng.sim.ActiveEventFlags(campaignID)
	if len(active) > 0 {
		fmt.Fprintln(os.Stdout, "Active flags:")
		for _, flag := range active {
			fmt.Fprintf(os.Stdout, "  %s: %s\n", flag.ID, flag.Name)
		}
	}

	entities := eng.entities.List(campaignID)
	fmt.Fprintf(os.Stdout, "Entities: %d, relationships: %d, timeline events: %d\n",
		len(entities), len(eng.graph.Export(campaignID)), len(snapshot.Timeline))
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func joinValues(values []string) string {
	return strings.Join(values, ", ")
}
