package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zouxin96/vibeStock/internal/layout"
)

var errLayoutExists = errors.New("layout file already exists (use --force to overwrite)")

func newLayoutCommand(o *options) *cobra.Command {
	c := &cobra.Command{
		Use:   "layout",
		Short: "Manage the dashboard layout file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := o.cfg.Layout.Path
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Wrap(errLayoutExists, path)
			}
			if err := layout.Save(path, layout.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing layout")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the layout in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			instances, err := layout.Load(o.cfg.Layout.Path)
			if err != nil {
				return err
			}
			data, err := layout.Marshal(instances)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	c.AddCommand(initCmd, showCmd)
	return c
}
