// Package cli wires the minical commands: the HTTP server, a terminal
// month view, page capture, ICS import and data backups.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"minical/internal/config"
	appLog "minical/internal/log"
	"minical/internal/service"
	"minical/internal/store"
)

const appName = "minical"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "A small personal calendar",
	Long: `minical keeps categories and all-day events in a single JSON file and
serves them over a JSON API, an HTML month page and an iCalendar feed.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCmd returns the root command for introspection purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "minical.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")
}

// loadConfig reads the config file, applies environment overrides and sets
// the log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", configPath)
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(level))
	return cfg, nil
}

func openService(cfg *config.Config) (*store.Store, *service.Service) {
	st := store.New(cfg.DataFile)
	return st, service.New(st)
}
