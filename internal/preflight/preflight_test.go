package preflight_test

import (
	"os"
	"path/filepath"
	"testing"

	"voxprep/internal/preflight"
)

func TestRunAllPassesOnHealthyEnvironment(t *testing.T) {
	base := t.TempDir()
	splitPath := filepath.Join(base, "splits_final.json")
	if err := os.WriteFile(splitPath, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write split: %v", err)
	}
	source := filepath.Join(base, "source")
	if err := os.MkdirAll(source, 0o755); err != nil {
		t.Fatalf("create source: %v", err)
	}

	results := preflight.RunAll(preflight.Checks{
		SourceRoot:      source,
		SplitPath:       splitPath,
		DestinationRoot: filepath.Join(base, "out"),
		MinFreeGiB:      0,
	})
	if failed, ok := preflight.Failed(results); ok {
		t.Fatalf("unexpected failure: %s: %s", failed.Name, failed.Detail)
	}
}

func TestRunAllCreatesDestination(t *testing.T) {
	base := t.TempDir()
	splitPath := filepath.Join(base, "splits_final.json")
	if err := os.WriteFile(splitPath, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write split: %v", err)
	}
	source := filepath.Join(base, "source")
	if err := os.MkdirAll(source, 0o755); err != nil {
		t.Fatalf("create source: %v", err)
	}
	dest := filepath.Join(base, "nested", "out")

	results := preflight.RunAll(preflight.Checks{
		SourceRoot:      source,
		SplitPath:       splitPath,
		DestinationRoot: dest,
	})
	if failed, ok := preflight.Failed(results); ok {
		t.Fatalf("unexpected failure: %s: %s", failed.Name, failed.Detail)
	}
	info, err := os.Stat(dest)
	if err != nil || !info.IsDir() {
		t.Fatalf("destination not created: %v", err)
	}
}

func TestCheckFileExists(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "present")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if r := preflight.CheckFileExists("file", file); !r.Passed {
		t.Fatalf("existing file failed: %s", r.Detail)
	}
	if r := preflight.CheckFileExists("file", filepath.Join(base, "absent")); r.Passed {
		t.Fatal("missing file passed")
	}
	if r := preflight.CheckFileExists("file", base); r.Passed {
		t.Fatal("directory passed a file check")
	}
}

func TestCheckDirectoryAccessRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if r := preflight.CheckDirectoryAccess("dir", file, false); r.Passed {
		t.Fatal("regular file passed a directory check")
	}
}

func TestCheckDirectoryAccessMissingWithoutCreate(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	if r := preflight.CheckDirectoryAccess("dir", missing, false); r.Passed {
		t.Fatal("missing directory passed without create")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	dir := t.TempDir()
	if r := preflight.CheckDiskSpace("space", dir, 1); !r.Passed {
		t.Skipf("less than 1 GiB free in test environment: %s", r.Detail)
	}
	const absurd = 1 << 20 // an exbibyte, no test machine has this
	if r := preflight.CheckDiskSpace("space", dir, absurd); r.Passed {
		t.Fatal("impossible space requirement passed")
	}
}
