package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <campaign>",
		Short: "Re-serialize a campaign's stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(args[0])
		},
	}
}

func loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <campaign>",
		Short: "Verify a campaign's stored snapshot restores cleanly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(args[0])
		},
	}
}

func runSave(campaignID string) error {
	ctx := context.Background()

	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close(ctx)

	eng.loadCampaign(ctx, campaignID)
	if !eng.persister.SaveCampaignState(ctx, campaignID) {
		return fmt.Errorf("saving campaign %s", campaignID)
	}
	fmt.Fprintf(os.Stdout, "Campaign %s saved.\n", campaignID)
	return nil
}

func runLoad(campaignID string) error {
	ctx := context.Background()

	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close(ctx)

	if !eng.persister.LoadCampaignState(ctx, campaignID) {
		return fmt.Errorf("no loadable state for campaign %s", campaignID)
	}

	snapshot := eng.sim.Snapshot(campaignID)
	fmt.Fprintf(os.Stdout, "Campaign %s loaded: %d entities, %d relationships, %d locations, %d timeline events.\n",
		campaignID,
		len(eng.entities.List(campaignID)),
		len(eng.graph.Export(campaignID)),
		len(snapshot.Locations),
		len(snapshot.Timeline))
	return nil
}
