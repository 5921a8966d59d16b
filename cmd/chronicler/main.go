package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "chronicler",
		Short: "Campaign memory and world-state engine",
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(sessionCmd())
	root.AddCommand(stateCmd())
	root.AddCommand(entityCmd())
	root.AddCommand(relationsCmd())
	root.AddCommand(timelineCmd())
	root.AddCommand(flagCmd())
	root.AddCommand(saveCmd())
	root.AddCommand(loadCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
