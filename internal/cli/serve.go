package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"minical/internal/backup"
	appLog "minical/internal/log"
	mcpserver "minical/internal/mcp"
	"minical/internal/web"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Serve the JSON API under /api, the HTML month page at /calendar, the
iCalendar feed at /api/events.ics and the MCP endpoint at /mcp.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveListen != "" {
			cfg.Listen = serveListen
		}

		appLog.Info("effective config",
			"listen", cfg.Listen,
			"data_file", cfg.DataFile,
			"max_body_bytes", cfg.MaxBodyBytes,
			"cors_origin", cfg.CORSOrigin,
			"backup_cron", cfg.Backup.Cron,
			"basic_auth", cfg.BasicAuthEnabled(),
		)

		st, svc := openService(cfg)
		if _, err := st.Load(); err != nil {
			appLog.Error("failed to open data file", err, "path", cfg.DataFile)
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Backup.Cron != "" {
			sched, err := backup.NewScheduler(cfg.Backup.Cron, st, cfg.Backup.Dir, cfg.Backup.Keep)
			if err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()
			appLog.Info("backup scheduler started", "cron", cfg.Backup.Cron, "dir", cfg.Backup.Dir, "keep", cfg.Backup.Keep)
		}

		mcpHTTP := server.NewStreamableHTTPServer(mcpserver.NewServer(svc))

		if err := web.StartServer(ctx, cfg, svc, web.WithMCP(mcpHTTP)); err != nil {
			appLog.Error("http server failed", err, "listen", cfg.Listen)
			return err
		}
		appLog.Info("minical exiting")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "HTTP listen address (overrides config if set)")
	rootCmd.AddCommand(serveCmd)
}
