package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"voxprep/internal/config"
	"voxprep/internal/verify"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [directory]",
		Short: "Audit every sample archive in the destination directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				expanded, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				cfg.Paths.DestinationRoot = expanded
			}

			logger, cleanup, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runVerify(runCtx, cfg, logger)
		},
	}
	return cmd
}

func runVerify(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var bar *progressbar.ProgressBar
	progress := func() {}
	if stdoutIsTerminal() {
		bar = progressbar.Default(-1, "verifying")
		progress = func() { _ = bar.Add(1) }
	}

	report, err := verify.Verify(ctx, cfg.Paths.DestinationRoot, logger, progress)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	printer := message.NewPrinter(language.English)
	if report.OK() {
		printer.Fprintf(os.Stdout, "verified %d archives, no problems found\n", report.Checked)
		return nil
	}

	rows := make([][]string, 0, len(report.Corrupt)+len(report.Missing))
	for _, failure := range report.Corrupt {
		rows = append(rows, []string{failure.Name, "corrupt", failure.Err.Error()})
	}
	for _, name := range report.Missing {
		rows = append(rows, []string{name, "missing", "listed but not on disk"})
	}
	fmt.Fprintln(os.Stdout, renderTable(
		[]column{{title: "Archive"}, {title: "Problem"}, {title: "Detail"}},
		rows,
	))
	printer.Fprintf(os.Stdout, "verified %d archives: %d corrupt, %d missing\n",
		report.Checked, len(report.Corrupt), len(report.Missing))
	return fmt.Errorf("integrity audit found %d bad archives", len(report.Corrupt)+len(report.Missing))
}
