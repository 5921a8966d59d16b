package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var projectName string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new chronicler project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	return cmd
}

func runInit(projectName string) error {
	configPath := "chronicler.yaml"
	lexiconPath := "lexicon.yaml"
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}
	if _, err := os.Stat(lexiconPath); err == nil {
		return fmt.Errorf("%s already exists", lexiconPath)
	}

	configContents := fmt.Sprintf("project: %s\nversion: 1\n\ndatabase:\n  dsn: sqlite://chronicler.db\n\n# Optional keyword dictionary overrides.\nlexicon: lexicon.yaml\n", projectName)
	if err := os.WriteFile(configPath, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	lexiconContents := "version: 1\n\n# Categories replace the built-in dictionary for the named category.\ncategories:\n  # weather: [storm, rain, fog]\n\n# Context levels replace the built-in keyword list for that level.\ncontext_levels:\n  # critical: [flood, plague]\n"
	if err := os.WriteFile(lexiconPath, []byte(lexiconContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", lexiconPath, err)
	}

	return nil
}
