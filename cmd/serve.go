package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lolmetrics/internal/server"
	"lolmetrics/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve metric artifacts and match documents over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Connect(ctx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("connect document store: %w", err)
	}
	defer st.Close(context.Background())

	srv := server.New(cfg.Server, st.Views(), cfg.DataDir)
	return srv.ListenAndServe(ctx)
}
