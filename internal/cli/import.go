package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"minical/internal/ics"
	appLog "minical/internal/log"
)

var importCategory string

var importCmd = &cobra.Command{
	Use:   "import <file-or-url>",
	Short: "Import events from an iCalendar feed",
	Long: `Import VEVENTs from a local .ics file or an http(s) URL. CATEGORIES is
matched against category names; unmatched events go to --category.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, svc := openService(cfg)

		body, err := ics.Read(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		cats, err := svc.ListCategories()
		if err != nil {
			return err
		}
		payloads, err := ics.Parse(body, cats, importCategory)
		if err != nil {
			return err
		}

		var imported, skipped int
		for _, p := range payloads {
			if _, err := svc.CreateEvent(p); err != nil {
				appLog.Warn("import skipped event", "title", p["title"], "err", err)
				skipped++
				continue
			}
			imported++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d events (%d skipped)\n", imported, skipped)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importCategory, "category", "default-personal", "Category id for events without a matching CATEGORIES entry")
	rootCmd.AddCommand(importCmd)
}
