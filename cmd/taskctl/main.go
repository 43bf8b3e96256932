package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yukikurage/team-task-board/internal/config"
)

func main() {
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Operator tools for the team task board",
		SilenceUsage: true,
	}
	root.AddCommand(
		newUIDCommand(),
		newMigrateCommand(cfg),
		newBoardCommand(cfg),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
