package generator_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"voxprep/internal/dataset"
	"voxprep/internal/generator"
	"voxprep/internal/npz"
	"voxprep/internal/tensor"
	"voxprep/internal/testsupport"
)

func writeArchives(t *testing.T, dir, prefix string, indices ...int) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, i := range indices {
		path := filepath.Join(dir, npz.Name(prefix, i))
		if err := npz.Write(path, tensor.Zeros(2, 2), tensor.Zeros(2, 2)); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func TestScanResumableMissingDirIsEmpty(t *testing.T) {
	valid, err := generator.ScanResumable(filepath.Join(t.TempDir(), "never-created"), 2, nil)
	if err != nil {
		t.Fatalf("ScanResumable failed: %v", err)
	}
	if len(valid) != 0 {
		t.Fatalf("expected empty set, got %v", valid)
	}
}

func TestScanResumableCountsExactly(t *testing.T) {
	dir := t.TempDir()
	writeArchives(t, dir, "complete", 0, 1)
	writeArchives(t, dir, "short", 0)
	writeArchives(t, dir, "over", 0, 1, 2)

	valid, err := generator.ScanResumable(dir, 2, nil)
	if err != nil {
		t.Fatalf("ScanResumable failed: %v", err)
	}
	if len(valid) != 1 {
		t.Fatalf("valid = %v, want only 'complete'", valid)
	}
	if _, ok := valid["complete"]; !ok {
		t.Fatalf("'complete' missing from %v", valid)
	}
}

func TestScanResumableDemotesCorruptFinalArchive(t *testing.T) {
	dir := t.TempDir()
	writeArchives(t, dir, "good", 0, 1)
	writeArchives(t, dir, "bad", 0, 1)
	testsupport.TruncateFile(t, filepath.Join(dir, npz.Name("bad", 1)))

	valid, err := generator.ScanResumable(dir, 2, nil)
	if err != nil {
		t.Fatalf("ScanResumable failed: %v", err)
	}
	if _, ok := valid["good"]; !ok {
		t.Fatalf("'good' should be valid: %v", valid)
	}
	if _, ok := valid["bad"]; ok {
		t.Fatal("truncated final archive must demote the prefix")
	}
}

func TestScanResumableIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	writeArchives(t, dir, "case", 0, 1)
	if err := os.WriteFile(filepath.Join(dir, ".voxprep.lock"), nil, 0o644); err != nil {
		t.Fatalf("write lock file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	valid, err := generator.ScanResumable(dir, 2, nil)
	if err != nil {
		t.Fatalf("ScanResumable failed: %v", err)
	}
	if len(valid) != 1 {
		t.Fatalf("valid = %v, want only 'case'", valid)
	}
}

// Mirrors the canonical interruption scenario: three cases at two samples
// each, one case loses its final archive, and a resumed run regenerates only
// that case while leaving the other four archives untouched.
func TestResumeRegeneratesOnlyIncompleteCase(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dest")
	gen := newGenerator(t, dest, 2, nil)

	cases := []dataset.Case{testCase("a"), testCase("b"), testCase("c")}
	for _, c := range cases {
		if _, err := gen.Generate(context.Background(), c); err != nil {
			t.Fatalf("Generate(%s) failed: %v", c.ID, err)
		}
	}
	if names := archiveNames(t, dest); len(names) != 6 {
		t.Fatalf("expected 6 archives, got %v", names)
	}

	// Interruption: case b lost its second archive.
	if err := os.Remove(filepath.Join(dest, npz.Name("b", 1))); err != nil {
		t.Fatalf("remove: %v", err)
	}

	valid, err := generator.ScanResumable(dest, 2, nil)
	if err != nil {
		t.Fatalf("ScanResumable failed: %v", err)
	}
	todo, skipped := generator.FilterResumed(cases, valid)
	if skipped != 2 {
		t.Fatalf("skipped = %d, want 2", skipped)
	}
	if len(todo) != 1 || todo[0].ID != "b" {
		t.Fatalf("todo = %v, want only case b", todo)
	}

	before := modTimes(t, dest, "a_000.npz", "a_001.npz", "c_000.npz", "c_001.npz")
	for _, c := range todo {
		if _, err := gen.Generate(context.Background(), c); err != nil {
			t.Fatalf("regenerate: %v", err)
		}
	}
	after := modTimes(t, dest, "a_000.npz", "a_001.npz", "c_000.npz", "c_001.npz")
	for name := range before {
		if !before[name].Equal(after[name]) {
			t.Fatalf("archive %s was rewritten during resume", name)
		}
	}
	if names := archiveNames(t, dest); len(names) != 6 {
		t.Fatalf("expected 6 archives after resume, got %v", names)
	}
}

func modTimes(t *testing.T, dir string, names ...string) map[string]time.Time {
	t.Helper()
	times := make(map[string]time.Time, len(names))
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		times[name] = info.ModTime()
	}
	return times
}
