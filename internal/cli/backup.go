package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"minical/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a timestamped copy of the data file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, _ := openService(cfg)

		path, err := backup.Snapshot(st, cfg.Backup.Dir, cfg.Backup.Keep, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Backup written to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
