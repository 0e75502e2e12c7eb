// Package testsupport provides shared fixtures: temp-dir configs, fake
// source trees, split files, and archive corruption helpers.
package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"voxprep/internal/config"
	"voxprep/internal/split"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceRoot = filepath.Join(base, "source")
	cfg.Paths.SplitPath = filepath.Join(base, "splits_final.json")
	cfg.Paths.DestinationRoot = filepath.Join(base, "preprocessed")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Generate.SamplesPerFile = 2
	cfg.Generate.Workers = 0
	cfg.Generate.MinFreeGiB = 0
	cfg.Transform.TargetShape = []int{4, 4, 4}
	return &cfg
}

// WriteSourceTree creates imagesTr/labelsTr marker volumes for the given
// case identifiers under root.
func WriteSourceTree(t testing.TB, root string, ids ...string) {
	t.Helper()

	for _, dir := range []string{"imagesTr", "labelsTr"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	for _, id := range ids {
		image := filepath.Join(root, "imagesTr", id+"_0001.nii.gz")
		label := filepath.Join(root, "labelsTr", id+".nii.gz")
		for _, path := range []string{image, label} {
			if err := os.WriteFile(path, []byte("volume"), 0o644); err != nil {
				t.Fatalf("write %s: %v", path, err)
			}
		}
	}
}

// WriteSplit writes a fold definition file containing the given folds.
func WriteSplit(t testing.TB, path string, folds ...split.Fold) {
	t.Helper()

	raw, err := json.Marshal(folds)
	if err != nil {
		t.Fatalf("marshal split: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create split dir: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write split: %v", err)
	}
}

// CorruptFile replaces a file's contents with bytes that decode as nothing.
func CorruptFile(t testing.TB, path string) {
	t.Helper()

	if err := os.WriteFile(path, []byte("\x00garbage\x00"), 0o644); err != nil {
		t.Fatalf("corrupt %s: %v", path, err)
	}
}

// TruncateFile cuts a file to zero bytes in place.
func TruncateFile(t testing.TB, path string) {
	t.Helper()

	if err := os.Truncate(path, 0); err != nil {
		t.Fatalf("truncate %s: %v", path, err)
	}
}
