// Package cmd holds the vibestock cobra commands.
package cmd

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zouxin96/vibeStock/internal/config"
	"github.com/zouxin96/vibeStock/internal/logging"
)

// options is the state shared by every subcommand.
type options struct {
	configFile string
	logLevel   string
	cfg        config.Config
}

// NewRootCommand builds the vibestock command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "vibestock",
		Short: "Terminal dashboard for A-share market widgets",
		Long: `vibestock renders a grid of market widgets (watchlist, limit-up ranks,
sector and region breakdowns, index and k-line charts, monitors) fed by a
websocket market feed.

Run "vibestock feed" for a local demo feed, then "vibestock dashboard".`,
		PersistentPreRunE: opts.load,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is ./vibestock.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(
		newDashboardCommand(opts),
		newFeedCommand(opts),
		newLayoutCommand(opts),
		newWidgetsCommand(opts),
	)
	return root
}

func (o *options) load(*cobra.Command, []string) error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	o.cfg = cfg
	return nil
}

// setupLogger builds the logger for cmd, makes it the process default and
// stores it in the command context.
func setupLogger(cmd *cobra.Command, cfg logging.Config) (zerolog.Logger, io.Closer, error) {
	log, closer, err := logging.New(cfg)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	logging.SetDefault(log)
	cmd.SetContext(logging.WithLogger(cmd.Context(), log))
	return log, closer, nil
}
