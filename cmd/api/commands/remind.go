package commands

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

func NewRemindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Run the reminder job once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			a := newApp(cfg, log, db, openRedis(cfg, log))
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ReminderTimeout)
			defer cancel()

			stats, err := a.reminders.RunOnce(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
}
