package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"lolmetrics/internal/keymgr"
	"lolmetrics/internal/metrics"
	"lolmetrics/internal/pipeline"
	"lolmetrics/internal/riot"
	"lolmetrics/internal/store"
)

var (
	runMode  string
	runPool  string
	runMin   int
	runQueue int
	runStart string
	runEnd   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ingestion and metrics pipeline",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runMode, "mode", "full", "stages to run: l0, l1-l3, full or season")
	runCmd.Flags().StringVar(&runPool, "pool", "", "target pool tag (hex8 or season); derived from the roster when omitted")
	runCmd.Flags().IntVar(&runMin, "min", 0, "minimum tracked players per match (default from MIN_FRIENDS_IN_MATCH)")
	runCmd.Flags().IntVar(&runQueue, "queue", 0, "queue id (default from QUEUE_FLEX)")
	runCmd.Flags().StringVar(&runStart, "start", "", "metrics window start, YYYY-MM-DD")
	runCmd.Flags().StringVar(&runEnd, "end", "", "metrics window end, YYYY-MM-DD")
}

func runRun(cmd *cobra.Command, args []string) error {
	mode, err := pipeline.ParseMode(runMode)
	if err != nil {
		return err
	}
	if mode == pipeline.ModeL1L3 && runPool == "" {
		return fmt.Errorf("--pool is required for mode l1-l3")
	}

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

	client := riot.NewClient(cfg.Riot.RegionalRouting, riot.WithRequestTimeout(cfg.Riot.RequestTimeout))
	validator := riot.NewKeyValidator(cfg.Riot.RegionalRouting)
	keys := keymgr.New(cfg.DataDir, cfg.Riot.APIKey, validator)

	// Modes that talk to the vendor API need a valid key before starting;
	// rebuild-only runs work entirely from the store.
	if mode != pipeline.ModeL1L3 {
		key, err := keys.CurrentKey(ctx)
		if err != nil {
			return fmt.Errorf("no valid API key: %w", err)
		}
		client.SetAPIKey(key)
	}

	runner := pipeline.NewRunner(cfg, st, client, client, keys)
	err = runner.Run(ctx, pipeline.RunOptions{
		Mode:       mode,
		Pool:       runPool,
		MinFriends: runMin,
		Queue:      runQueue,
		Window:     metrics.Window{Start: runStart, End: runEnd},
	})
	if err != nil {
		log.WithError(err).Error("run failed")
		return err
	}
	return nil
}
