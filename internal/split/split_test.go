package split_test

import (
	"os"
	"path/filepath"
	"testing"

	"voxprep/internal/split"
	"voxprep/internal/testsupport"
)

func TestReadSelectsFold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splits_final.json")
	testsupport.WriteSplit(t, path,
		split.Fold{Train: []string{"a", "b"}, Val: []string{"c"}},
		split.Fold{Train: []string{"c"}, Val: []string{"a", "b"}},
	)

	fold, err := split.Read(path, 1)
	if err != nil {
		t.Fatalf("read split: %v", err)
	}
	if len(fold.Train) != 1 || fold.Train[0] != "c" {
		t.Fatalf("train = %v, want [c]", fold.Train)
	}
	if len(fold.Val) != 2 {
		t.Fatalf("val = %v, want two cases", fold.Val)
	}
}

func TestReadFoldOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splits_final.json")
	testsupport.WriteSplit(t, path, split.Fold{Train: []string{"a"}})

	for _, fold := range []int{-1, 1, 5} {
		if _, err := split.Read(path, fold); err == nil {
			t.Fatalf("fold %d: expected out-of-range error", fold)
		}
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := split.Read(filepath.Join(t.TempDir(), "absent.json"), 0); err == nil {
		t.Fatal("expected error for missing split file")
	}
}

func TestReadMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splits_final.json")
	if err := os.WriteFile(path, []byte(`{"train": []}`), 0o644); err != nil {
		t.Fatalf("write split: %v", err)
	}
	if _, err := split.Read(path, 0); err == nil {
		t.Fatal("expected error for non-array split file")
	}
}

func TestTrainValConcatenatesInOrder(t *testing.T) {
	fold := split.Fold{Train: []string{"a", "b"}, Val: []string{"c"}}
	got := fold.TrainVal()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
