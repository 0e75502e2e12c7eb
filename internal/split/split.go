// Package split loads cross-validation fold definitions. The file format is
// the nnU-Net splits_final.json convention: a JSON array of folds, each with
// "train" and "val" case identifier lists.
package split

import (
	"encoding/json"
	"fmt"
	"os"
)

// Fold holds the case identifiers of one cross-validation fold.
type Fold struct {
	Train []string `json:"train"`
	Val   []string `json:"val"`
}

// Read loads the fold definition file and returns the selected fold.
func Read(path string, fold int) (Fold, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Fold{}, fmt.Errorf("read split file: %w", err)
	}

	var folds []Fold
	if err := json.Unmarshal(raw, &folds); err != nil {
		return Fold{}, fmt.Errorf("parse split file %s: %w", path, err)
	}
	if fold < 0 || fold >= len(folds) {
		return Fold{}, fmt.Errorf("fold %d out of range: split file %s defines %d folds", fold, path, len(folds))
	}
	return folds[fold], nil
}

// TrainVal returns the concatenated train and validation case lists. The
// preprocessing run augments both partitions; the downstream trainer applies
// the split, not this tool.
func (f Fold) TrainVal() []string {
	out := make([]string, 0, len(f.Train)+len(f.Val))
	out = append(out, f.Train...)
	out = append(out, f.Val...)
	return out
}
