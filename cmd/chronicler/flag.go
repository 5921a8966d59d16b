package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func flagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flag",
		Short: "Manage narrative event flags",
	}
	cmd.AddCommand(flagListCmd())
	cmd.AddCommand(flagAddCmd())
	cmd.AddCommand(flagTriggerCmd())
	return cmd
}

func flagListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <campaign>",
		Short: "List a campaign's active flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlagList(args[0])
		},
	}
}

func flagAddCmd() *cobra.Command {
	var name, description string
	var conditions, consequences []string
	cmd := &cobra.Command{
		Use:   "add <campaign> <flag-id>",
		Short: "Register an event flag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			return runFlagAdd(args[0], args[1], name, description, conditions, consequences)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Flag display name")
	cmd.Flags().StringVar(&description, "description", "", "What the flag represents")
	cmd.Flags().StringArrayVar(&conditions, "condition", nil, "Trigger condition (repeatable)")
	cmd.Flags().StringArrayVar(&consequences, "consequence", nil, "Consequence when fired (repeatable)")
	return cmd
}

func flagTriggerCmd() *cobra.Command {
	var triggeredBy string
	cmd := &cobra.Command{
		Use:   "trigger <campaign> <flag-id>",
		Short: "Fire an event flag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlagTrigger(args[0], args[1], triggeredBy)
		},
	}
	cmd.Flags().StringVar(&triggeredBy, "by", "", "Entity id that fired the flag")
	return cmd
}

func runFlagList(campaignID string) error {
	ctx := context.Background()

	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close(ctx)
	eng.loadCampaign(ctx, campaignID)

	active := eng.sim.ActiveEventFlags(campaignID)
	if len(active) == 0 {
		fmt.Fprintln(os.Stdout, "No active flags.")
		return nil
	}
	for _, flag := range active {
		fmt.Fprintf(os.Stdout, "%s: %s\n", flag.ID, flag.Name)
		if flag.Description != "" {
			fmt.Fprintf(os.Stdout, "  %s\n", flag.Description)
		}
		if len(flag.TriggerConditions) > 0 {
			fmt.Fprintf(os.Stdout, "  Conditions: %s\n", joinValues(flag.TriggerConditions))
		}
	}
	return nil
}

func runFlagAdd(campaignID, flagID, name, description string, conditions, consequences []string) error {
	ctx := context.Background()

	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close(ctx)
	eng.loadCampaign(ctx, campaignID)

	eng.sim.AddEventFlag(campaignID, flagID, name, description, conditions, consequences)
	if !eng.persister.SaveCampaignState(ctx, campaignID) {
		return fmt.Errorf("saving campaign %s", campaignID)
	}
	fmt.Fprintf(os.Stdout, "Flag %s added.\n", flagID)
	return nil
}

func runFlagTrigger(campaignID, flagID, triggeredBy string) error {
	ctx := context.Background()

	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close(ctx)
	eng.loadCampaign(ctx, campaignID)

	if err := eng.sim.TriggerEventFlag(campaignID, flagID, triggeredBy); err != nil {
		return err
	}
	if !eng.persister.SaveCampaignState(ctx, campaignID) {
		return fmt.Errorf("saving campaign %s", campaignID)
	}
	fmt.Fprintf(os.Stdout, "Flag %s triggered.\n", flagID)
	return nil
}
