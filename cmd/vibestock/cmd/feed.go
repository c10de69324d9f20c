package cmd

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"

	"github.com/zouxin96/vibeStock/internal/feed"
	"github.com/zouxin96/vibeStock/internal/layout"
)

func newFeedCommand(o *options) *cobra.Command {
	var (
		addr     string
		interval time.Duration
		seed     int64
	)

	c := &cobra.Command{
		Use:   "feed",
		Short: "Run the demo market feed",
		Long: `feed serves simulated market data on /ws for every channel the layout
uses. Watchlists are fed with the codes they subscribe with.`,
		Example: `  vibestock feed
  vibestock feed --addr :9000 --interval 1s`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := o.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Feed.Addr = addr
			}
			if cmd.Flags().Changed("interval") {
				cfg.Feed.Interval = interval
			}
			if cmd.Flags().Changed("seed") {
				cfg.Feed.Seed = seed
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
			return feed.NewServer(cfg.Feed, instances, clock.New(), log).Run(cmd.Context())
		},
	}

	c.Flags().StringVar(&addr, "addr", "", "listen address")
	c.Flags().DurationVar(&interval, "interval", 0, "time between simulated updates")
	c.Flags().Int64Var(&seed, "seed", 0, "simulator seed (0 picks one)")
	return c
}
