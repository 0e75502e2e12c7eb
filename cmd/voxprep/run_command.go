package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"voxprep/internal/config"
	"voxprep/internal/dataset"
	"voxprep/internal/dispatch"
	"voxprep/internal/generator"
	"voxprep/internal/ledger"
	"voxprep/internal/logging"
	"voxprep/internal/outlier"
	"voxprep/internal/preflight"
	"voxprep/internal/split"
	"voxprep/internal/transform"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		foldFlag    int
		samplesFlag int
		seedFlag    int64
		workersFlag int
		resumeFlag  bool
		outlierFlag bool
		skipVerify  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate augmented samples for every case in the selected fold",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("fold") {
				cfg.Generate.Fold = foldFlag
			}
			if flags.Changed("samples-per-file") {
				cfg.Generate.SamplesPerFile = samplesFlag
			}
			if flags.Changed("seed") {
				cfg.Generate.Seed = seedFlag
			}
			if flags.Changed("workers") {
				cfg.Generate.Workers = workersFlag
			}
			if flags.Changed("resume") {
				cfg.Generate.Resume = resumeFlag
			}
			if flags.Changed("outlier") {
				cfg.Outlier.Enabled = outlierFlag
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runGenerate(ctx, cfg, skipVerify)
		},
	}

	cmd.Flags().IntVar(&foldFlag, "fold", 0, "Cross-validation fold index")
	cmd.Flags().IntVar(&samplesFlag, "samples-per-file", 0, "Target archive count per case")
	cmd.Flags().Int64Var(&seedFlag, "seed", 0, "Base random seed")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Worker count (0 runs inline)")
	cmd.Flags().BoolVar(&resumeFlag, "resume", false, "Skip cases whose archive set is verified complete")
	cmd.Flags().BoolVar(&outlierFlag, "outlier", false, "Enable the outlier filter")
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "Skip the post-run integrity audit")

	return cmd
}

func runGenerate(ctx context.Context, cfg *config.Config, skipVerify bool) error {
	logger, cleanup, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	if failed, ok := preflight.Failed(preflight.RunAll(preflight.Checks{
		SourceRoot:      cfg.Paths.SourceRoot,
		SplitPath:       cfg.Paths.SplitPath,
		DestinationRoot: cfg.Paths.DestinationRoot,
		MinFreeGiB:      cfg.Generate.MinFreeGiB,
	})); ok {
		return fmt.Errorf("preflight %s: %s", failed.Name, failed.Detail)
	}

	// One run per destination. Concurrent runs would race each other's
	// resume scans even though sample writes themselves are lock-guarded.
	runLock := flock.New(cfg.RunLockPath())
	locked, err := runLock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another voxprep run is writing to %s", cfg.Paths.DestinationRoot)
	}
	defer func() {
		_ = runLock.Unlock()
	}()

	fold, err := split.Read(cfg.Paths.SplitPath, cfg.Generate.Fold)
	if err != nil {
		return err
	}
	cases, err := dataset.Resolve(cfg.Paths.SourceRoot, fold.TrainVal(), logger)
	if err != nil {
		return err
	}

	resumedCases := 0
	if cfg.Generate.Resume {
		valid, err := generator.ScanResumable(cfg.Paths.DestinationRoot, cfg.Generate.SamplesPerFile, logger)
		if err != nil {
			return err
		}
		cases, resumedCases = generator.FilterResumed(cases, valid)
		logger.Info("resume scan complete",
			logging.Int("verified_complete", resumedCases),
			logging.Int("remaining", len(cases)))
	}

	var filter outlier.Filter
	if cfg.Outlier.Enabled {
		filter = outlier.IntensityFilter{MinMean: cfg.Outlier.MinMean, MaxMean: cfg.Outlier.MaxMean}
	}

	gen, err := generator.New(generator.Config{
		DestinationRoot: cfg.Paths.DestinationRoot,
		SamplesPerFile:  cfg.Generate.SamplesPerFile,
		Seed:            cfg.Generate.Seed,
		Transform: transform.Synthetic{
			TargetShape: cfg.Transform.TargetShape,
			LesionRate:  cfg.Transform.LesionRate,
		},
		Filter: filter,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	store, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.BeginRun(ctx, ledger.RunInfo{
		SourceRoot:      cfg.Paths.SourceRoot,
		DestinationRoot: cfg.Paths.DestinationRoot,
		Fold:            cfg.Generate.Fold,
		SamplesPerFile:  cfg.Generate.SamplesPerFile,
		Seed:            cfg.Generate.Seed,
		Workers:         cfg.Generate.Workers,
		Resume:          cfg.Generate.Resume,
		ResumedCases:    resumedCases,
	})
	if err != nil {
		return err
	}
	logger.Info("run started",
		logging.String(logging.FieldRunID, runID),
		logging.Int("cases", len(cases)),
		logging.Int("samples_per_file", cfg.Generate.SamplesPerFile),
		logging.Int("workers", cfg.Generate.Workers))

	var bar *progressbar.ProgressBar
	if stdoutIsTerminal() && len(cases) > 0 {
		bar = progressbar.Default(int64(len(cases)), "generating")
	}

	var totalWritten, totalRejected atomic.Int64
	task := func(ctx context.Context, c dataset.Case) error {
		outcome, genErr := gen.Generate(ctx, c)
		totalWritten.Add(int64(outcome.Written))
		totalRejected.Add(int64(outcome.Rejected))

		errMsg := ""
		if genErr != nil {
			errMsg = genErr.Error()
			logger.Error("case failed",
				logging.String(logging.FieldCase, c.ID),
				logging.Error(genErr))
		} else {
			logger.Info("case complete",
				logging.String(logging.FieldCase, c.ID),
				logging.Int("written", outcome.Written),
				logging.Int("rejected", outcome.Rejected),
				logging.Duration("duration", outcome.Duration))
		}
		if recErr := store.RecordCase(ctx, runID, c.ID, outcome.Written, outcome.Rejected, outcome.Duration, errMsg); recErr != nil {
			logger.Warn("ledger write failed", logging.Error(recErr))
		}
		return genErr
	}

	runErr := dispatch.Run(ctx, cases, cfg.Generate.Workers, task, func(dataset.Case, error) {
		if bar != nil {
			_ = bar.Add(1)
		}
	})
	if bar != nil {
		_ = bar.Finish()
	}

	status := "completed"
	if runErr != nil {
		status = "failed"
	}
	if err := store.FinishRun(context.WithoutCancel(ctx), runID, status); err != nil {
		logger.Warn("ledger finish failed", logging.Error(err))
	}

	if totalWritten.Load() == 0 && totalRejected.Load() > 0 {
		logger.Warn("outlier filter rejected every draw; no archives were written and no case can resume-complete")
	}
	logger.Info("run finished",
		logging.String(logging.FieldRunID, runID),
		logging.String("status", status),
		logging.Int64("written", totalWritten.Load()),
		logging.Int64("rejected", totalRejected.Load()))

	if runErr != nil {
		return runErr
	}
	if skipVerify {
		return nil
	}
	return runVerify(ctx, cfg, logger)
}
