package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zouxin96/vibeStock/internal/app"
	"github.com/zouxin96/vibeStock/internal/layout"
)

// The terminal belongs to the UI, so the dashboard always logs to a file.
const dashboardLogFile = "logs/vibestock.log"

func newDashboardCommand(o *options) *cobra.Command {
	var url, layoutPath string

	c := &cobra.Command{
		Use:   "dashboard",
		Short: "Run the terminal dashboard",
		Example: `  vibestock dashboard
  vibestock dashboard --url ws://10.0.0.5:8000/ws --layout my_layout.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := o.cfg
			if cmd.Flags().Changed("url") {
				cfg.Socket.URL = url
			}
			if cmd.Flags().Changed("layout") {
				cfg.Layout.Path = layoutPath
			}
			if cfg.Log.File == "" {
				cfg.Log.File = dashboardLogFile
			}

			log, closer, err := setupLogger(cmd, cfg.Log)
			if err != nil {
				return err
			}
			defer closer.Close()

			instances, err := layout.Load(cfg.Layout.Path)
			if err != nil {
				return err
			}

			c, err := app.New(&cfg, log)
			if err != nil {
				return err
			}
			log.Info().Str("url", cfg.Socket.URL).Int("widgets", len(instances)).Msg("dashboard starting")
			return c.RunDashboard(cmd.Context(), instances)
		},
	}

	c.Flags().StringVar(&url, "url", "", "feed websocket URL")
	c.Flags().StringVar(&layoutPath, "layout", "", "layout file")
	return c
}
