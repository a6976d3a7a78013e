package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-recurrence-engine/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kanso-recurrence",
		Short: "Kanso recurrence engine",
		Long:  "Decides which journal items and objectives are due for each user, records answers and sends the daily reminder run.",
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewRemindCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewTokenCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
