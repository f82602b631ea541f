package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fwojciec/walkplan"
	planjson "github.com/fwojciec/walkplan/json"
	"github.com/fwojciec/walkplan/sqlite"
	"github.com/spf13/cobra"
)

func newHistoryCmd(o *options, e env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [report-id]",
		Short: "List stored reports, or print one as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, *o, e)
			if err != nil {
				return err
			}
			if cfg.History == "" {
				return fmt.Errorf("no history database configured (use --history, WALKPLAN_HISTORY or the config file)")
			}
			store, err := sqlite.Open(cfg.History)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				return printReport(cmd, store, args[0])
			}
			return listReports(cmd, store, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of reports to list, 0 for all")
	return cmd
}

func printReport(cmd *cobra.Command, store walkplan.ReportStore, id string) error {
	r, err := store.Report(cmd.Context(), id)
	if err != nil {
		return err
	}
	data, err := planjson.MarshalReport(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func listReports(cmd *cobra.Command, store walkplan.ReportStore, limit int) error {
	sums, err := store.Reports(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(sums) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "no reports")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "CREATED", "REQUESTS", "FAILED")
	for _, s := range sums {
		t.Row(s.ID, s.CreatedAt.Local().Format(time.DateTime), strconv.Itoa(s.Total), strconv.Itoa(s.Failed))
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return err
}

func saveHistory(ctx context.Context, path string, r walkplan.Report) error {
	store, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveReport(ctx, r)
}
