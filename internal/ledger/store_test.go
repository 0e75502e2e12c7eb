package ledger_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"voxprep/internal/ledger"
)

func openStore(t *testing.T, path string) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func beginRun(t *testing.T, store *ledger.Store) string {
	t.Helper()
	id, err := store.BeginRun(context.Background(), ledger.RunInfo{
		SourceRoot:      "/data/raw",
		DestinationRoot: "/data/preprocessed",
		SamplesPerFile:  15,
		Seed:            42,
		Workers:         3,
	})
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}
	return id
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "ledger.db"))
	ctx := context.Background()

	id := beginRun(t, store)
	if err := store.RecordCase(ctx, id, "case_a", 15, 0, 3*time.Second, ""); err != nil {
		t.Fatalf("record case: %v", err)
	}
	if err := store.RecordCase(ctx, id, "case_b", 12, 3, 2*time.Second, ""); err != nil {
		t.Fatalf("record case: %v", err)
	}
	if err := store.FinishRun(ctx, id, "completed"); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.ID != id || run.Status != "completed" {
		t.Fatalf("run = %+v, want id %s completed", run, id)
	}
	if run.Cases != 2 || run.Written != 27 || run.Rejected != 3 || run.Failed != 0 {
		t.Fatalf("aggregates = %+v, want 2 cases / 27 written / 3 rejected", run)
	}
	if run.FinishedAt.IsZero() || run.FinishedAt.Before(run.StartedAt) {
		t.Fatalf("finished %v precedes started %v", run.FinishedAt, run.StartedAt)
	}
}

func TestRecordCaseReplacesOnRetry(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "ledger.db"))
	ctx := context.Background()

	id := beginRun(t, store)
	if err := store.RecordCase(ctx, id, "case_a", 0, 0, time.Second, "transform failed"); err != nil {
		t.Fatalf("record case: %v", err)
	}
	if err := store.RecordCase(ctx, id, "case_a", 15, 0, 2*time.Second, ""); err != nil {
		t.Fatalf("re-record case: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if runs[0].Cases != 1 || runs[0].Written != 15 || runs[0].Failed != 0 {
		t.Fatalf("aggregates = %+v, want retried row to replace the failure", runs[0])
	}
}

func TestFailedCases(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "ledger.db"))
	ctx := context.Background()

	id := beginRun(t, store)
	if err := store.RecordCase(ctx, id, "case_a", 15, 0, time.Second, ""); err != nil {
		t.Fatalf("record case: %v", err)
	}
	if err := store.RecordCase(ctx, id, "case_b", 4, 0, time.Second, "archive write: disk full"); err != nil {
		t.Fatalf("record case: %v", err)
	}

	failed, err := store.FailedCases(ctx, id)
	if err != nil {
		t.Fatalf("failed cases: %v", err)
	}
	if len(failed) != 1 || failed[0].CaseID != "case_b" {
		t.Fatalf("failed = %+v, want only case_b", failed)
	}
	if failed[0].Error != "archive write: disk full" || failed[0].Duration != time.Second {
		t.Fatalf("result = %+v", failed[0])
	}
}

func TestFinishRunUnknownID(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "ledger.db"))
	if err := store.FinishRun(context.Background(), "no-such-run", "completed"); err == nil {
		t.Fatal("expected error for unknown run id")
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	store := openStore(t, path)
	id := beginRun(t, store)
	if err := store.FinishRun(ctx, id, "failed"); err != nil {
		t.Fatalf("finish run: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openStore(t, path)
	runs, err := reopened.RecentRuns(ctx, 5)
	if err != nil {
		t.Fatalf("recent runs after reopen: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != "failed" {
		t.Fatalf("runs = %+v, want the persisted failed run", runs)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "ledger.db"))
	ctx := context.Background()

	first := beginRun(t, store)
	time.Sleep(5 * time.Millisecond)
	second := beginRun(t, store)

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != second || runs[1].ID != first {
		t.Fatalf("runs = %+v, want newest first", runs)
	}
}
