package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"lolmetrics/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pipeline collections and their document counts",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	names, err := st.CollectionNames(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	var ours []string
	for _, name := range names {
		if strings.HasPrefix(name, "L0_") || strings.HasPrefix(name, "L1_") || strings.HasPrefix(name, "L2_") {
			ours = append(ours, name)
		}
	}
	if len(ours) == 0 {
		fmt.Println("No pipeline collections yet. Run 'lolmetrics run' to populate them.")
		return nil
	}
	sort.Strings(ours)

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	table.Header("TIER", "COLLECTION", "DOCUMENTS")

	for _, name := range ours {
		count, err := st.Count(ctx, name)
		if err != nil {
			return fmt.Errorf("count %s: %w", name, err)
		}
		table.Append(name[:2], name, count)
	}
	table.Render()
	return nil
}
