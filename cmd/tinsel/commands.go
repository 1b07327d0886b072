package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/tinsel/internal/app"
)

func serveCmd() *cobra.Command {
	var (
		listen string
		grow   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the element generation API",
		Long: `Serves POST /api/generate-element, GET /api/countdown and GET /healthz.
Terminal scenes with generator.mode = "endpoint" fetch their images here, so the
image service key only needs to live on this host.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options()
			opts.Listen = listen
			return app.Serve(cmd.Context(), app.ServeOptions{Options: opts, GrowScene: grow}, logger)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default 127.0.0.1:8787)")
	cmd.Flags().BoolVar(&grow, "grow", false, "also run due-checks against the local scene")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the scene size, last update and next due time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Status(cmd.Context(), options(), cmd.OutOrStdout())
		},
	}
}

func addCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Run a due-check now",
		Long: `Adds every element that is due, the same way the running scene does.
With --force one element is added regardless of the schedule and the interval
restarts from now.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Add(cmd.Context(), options(), force, logger, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "add one element regardless of the schedule")
	return cmd
}

func resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear every element from the scene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := app.ConfirmFrom(cmd.InOrStdin(), cmd.OutOrStdout(), "Are you sure you want to clear all elements?")
			if yes {
				confirm = func() bool { return true }
			}
			return app.Reset(cmd.Context(), options(), confirm, logger, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
