package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"minical/internal/capture"
	"minical/internal/model"
)

var (
	captureBase  string
	captureOut   string
	captureYear  int
	captureMonth int
	captureTri   bool
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Screenshot the month page of a running server to PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		base := captureBase
		if base == "" {
			base = "http://" + cfg.Listen
		}
		m, err := monthFromFlags(model.MonthOf(model.Today()), captureYear, captureMonth)
		if err != nil {
			return err
		}
		pageURL, err := capture.MonthURL(base, m)
		if err != nil {
			return err
		}

		opts := capture.OptionsFrom(cfg, pageURL, captureOut)
		opts.TriColor = captureTri
		if err := capture.MonthPNG(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Captured %s to %s\n", m.Label(), captureOut)
		return nil
	},
}

// monthFromFlags overlays non-zero year/month flags on def.
func monthFromFlags(def model.Month, year, month int) (model.Month, error) {
	if year != 0 {
		def.Year = year
	}
	if month != 0 {
		if month < 1 || month > 12 {
			return model.Month{}, fmt.Errorf("month must be between 1 and 12, got %d", month)
		}
		def.Month = time.Month(month)
	}
	return def, nil
}

func init() {
	captureCmd.Flags().StringVar(&captureBase, "url", "", "Server base URL (default http://<listen>)")
	captureCmd.Flags().StringVarP(&captureOut, "out", "o", "month.png", "Output PNG path")
	captureCmd.Flags().IntVar(&captureYear, "year", 0, "Year to capture (default current)")
	captureCmd.Flags().IntVar(&captureMonth, "month", 0, "Month to capture, 1-12 (default current)")
	captureCmd.Flags().BoolVar(&captureTri, "tricolor", false, "Reduce the PNG to black, white and red for e-paper panels")
	rootCmd.AddCommand(captureCmd)
}
