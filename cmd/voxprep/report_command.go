package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"voxprep/internal/ledger"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int
	var runFlag string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show recent runs recorded in the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := ledger.Open(cfg.LedgerPath())
			if err != nil {
				return err
			}
			defer store.Close()

			if runFlag != "" {
				return printFailedCases(cmd, store, runFlag)
			}

			runs, err := store.RecentRuns(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(os.Stdout, "no recorded runs")
				return nil
			}

			printer := message.NewPrinter(language.English)
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.StartedAt.Local().Format(time.DateTime),
					run.Status,
					strconv.Itoa(run.Cases),
					printer.Sprintf("%d", run.Written),
					printer.Sprintf("%d", run.Rejected),
					strconv.Itoa(run.Failed),
					strconv.Itoa(run.ResumedCases),
				})
			}
			fmt.Fprintln(os.Stdout, renderTable(
				[]column{
					{title: "Run"},
					{title: "Started"},
					{title: "Status"},
					{title: "Cases", right: true},
					{title: "Written", right: true},
					{title: "Rejected", right: true},
					{title: "Failed", right: true},
					{title: "Resumed", right: true},
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 10, "Number of runs to show")
	cmd.Flags().StringVar(&runFlag, "run", "", "Show failed cases for the given run ID")

	return cmd
}

func printFailedCases(cmd *cobra.Command, store *ledger.Store, runID string) error {
	failures, err := store.FailedCases(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(failures) == 0 {
		fmt.Fprintln(os.Stdout, "no failed cases for this run")
		return nil
	}
	rows := make([][]string, 0, len(failures))
	for _, failure := range failures {
		rows = append(rows, []string{
			failure.CaseID,
			strconv.Itoa(failure.Written),
			strconv.Itoa(failure.Rejected),
			failure.Duration.Round(time.Millisecond).String(),
			failure.Error,
		})
	}
	fmt.Fprintln(os.Stdout, renderTable(
		[]column{
			{title: "Case"},
			{title: "Written", right: true},
			{title: "Rejected", right: true},
			{title: "Duration", right: true},
			{title: "Error"},
		},
		rows,
	))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
