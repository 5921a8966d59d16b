package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chronicler/internal/parser"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session <transcript.md>",
		Short: "Process a session transcript into campaign memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(args[0])
		},
	}
	return cmd
}

func runSession(path string) error {
	ctx := context.Background()

	transcript, err := parser.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close(ctx)

	eng.loadCampaign(ctx, transcript.Campaign)
	summary := eng.pipeline.Process(transcript.Campaign, transcript.Session, transcript.Body)
	if !eng.persister.SaveCampaignState(ctx, transcript.Campaign) {
		return fmt.Errorf("saving campaign %s", transcript.Campaign)
	}

	fmt.Fprintf(os.Stdout, "Session %s processed for campaign %s.\n", transcript.Session, transcript.Campaign)
	fmt.Fprintf(os.Stdout, "  Entities seen:  %d\n", len(summary.Entities))
	fmt.Fprintf(os.Stdout, "  New entities:   %d\n", len(summary.NewEntities))
	fmt.Fprintf(os.Stdout, "  Context level:  %s\n", summary.ContextLevel)

	if len(summary.Classifications) > 0 {
		fmt.Fprintln(os.Stdout, "  Themes:")
		for _, classification := range summary.Classifications {
			fmt.Fprintf(os.Stdout, "    %s (%.2f)\n", classification.Category, classification.Confidence)
		}
	}
	if len(summary.ContinuityNotes) > 0 {
		fmt.Fprintln(os.Stdout, "  Continuity notes:")
		for _, note := range summary.ContinuityNotes {
			fmt.Fprintf(os.Stdout, "    - %s\n", note)
		}
	}
	if len(summary.WorldNotes) > 0 {
		fmt.Fprintln(os.Stdout, "  World changes:")
		for _, note := range summary.WorldNotes {
			fmt.Fprintf(os.Stdout, "    - %s\n", note)
		}
	}
	return nil
}
