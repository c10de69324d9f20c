package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zouxin96/vibeStock/internal/app"
	"github.com/zouxin96/vibeStock/internal/logging"
)

func newWidgetsCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "widgets",
		Short: "List the widget kinds a layout can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := app.New(&o.cfg, *logging.FromContext(cmd.Context()))
			if err != nil {
				return err
			}
			defer c.Close()

			for _, kind := range c.Registry().Kinds() {
				fmt.Fprintln(cmd.OutOrStdout(), kind)
			}
			return nil
		},
	}
}
