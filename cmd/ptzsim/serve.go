package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dennis-eisen/ptzctrl/sim"
)

func ServeCmd() *cobra.Command {
	var (
		addr       string
		dbPath     string
		layoutPath string
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the preset websocket and tally API",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			layout := sim.DefaultLayout()
			if layoutPath != "" {
				if layout, err = sim.LoadLayout(layoutPath); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := sim.OpenStore(ctx, dbPath, layout)
			if err != nil {
				return err
			}
			defer store.Close()

			hub := sim.NewHub(ctx, store, layout, log.Named("hub"))
			defer hub.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "ptzsim listening on %s (%d cameras, db %s)\n", addr, len(layout.Cameras), dbPath)
			return sim.NewServer(hub, log.Named("http")).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":6789", "HTTP bind address")
	cmd.Flags().StringVar(&dbPath, "db", ":memory:", "SQLite database for button labels")
	cmd.Flags().StringVar(&layoutPath, "layout", "", "camera layout TOML (default: 3 cameras x 8 positions)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}

// LayoutCmd prints the default layout as a starting point for --layout.
func LayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Print the default camera layout TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), sim.DefaultLayoutToml)
			return err
		},
	}
}
