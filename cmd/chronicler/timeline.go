package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func timelineCmd() *cobra.Command {
	var limit int
	var eventType string
	cmd := &cobra.Command{
		Use:   "timeline <campaign>",
		Short: "Show recent timeline events, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeline(args[0], limit, eventType)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum events to show (0 for all)")
	cmd.Flags().StringVar(&eventType, "type", "", "Filter to one event type")
	return cmd
}

func runTimeline(campaignID string, limit int, eventType string) error {
	ctx := context.Background()

	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close(ctx)
	eng.loadCampaign(ctx, campaignID)

	events := eng.sim.RecentTimelineEventsByType(campaignID, limit, eventType)
	if len(events) == 0 {
		fmt.Fprintln(os.Stdout, "No timeline events recorded.")
		return nil
	}

	for _, event := range events {
		fmt.Fprintf(os.Stdout, "%s  %s [%s]\n", event.Timestamp, event.Name, event.EventType)
		if event.Description != "" {
			fmt.Fprintf(os.Stdout, "    %s\n", event.Description)
		}
		if len(event.Involved) > 0 {
			fmt.Fprintf(os.Stdout, "    Involved: %s\n", joinValues(event.Involved))
		}
		if len(event.Consequences) > 0 {
			fmt.Fprintf(os.Stdout, "    Consequences: %s\n", joinValues(event.Consequences))
		}
	}
	return nil
}
