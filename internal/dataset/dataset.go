// Package dataset maps case identifiers to their source volume files.
//
// The source tree follows the AutoPET layout: the PET volume for case X
// lives at imagesTr/X_0001.nii.gz and its segmentation at labelsTr/X.nii.gz.
// Both volumes of a pair share one voxel grid.
package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"voxprep/internal/logging"
)

const (
	// VolumeSuffix is the source volume file extension.
	VolumeSuffix = ".nii.gz"

	imagesDir   = "imagesTr"
	labelsDir   = "labelsTr"
	imageMember = "_0001"
)

// FilePair holds the resolved source paths for one case. Constructed once at
// startup and read-only afterwards.
type FilePair struct {
	ImagePath string
	LabelPath string
}

// Case pairs an identifier with its resolved files.
type Case struct {
	ID   string
	Pair FilePair
}

// Resolve maps case identifiers to FilePairs under root. Cases whose image
// or label file is missing are skipped with a warning rather than aborting
// the run; the returned slice preserves the input order of resolved cases.
func Resolve(root string, ids []string, logger *slog.Logger) ([]Case, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("source root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root %s is not a directory", root)
	}

	cases := make([]Case, 0, len(ids))
	for _, id := range ids {
		pair := FilePair{
			ImagePath: filepath.Join(root, imagesDir, id+imageMember+VolumeSuffix),
			LabelPath: filepath.Join(root, labelsDir, id+VolumeSuffix),
		}
		if missing := missingPath(pair); missing != "" {
			logger.Warn("skipping unresolvable case",
				logging.String(logging.FieldCase, id),
				logging.String("missing", missing))
			continue
		}
		cases = append(cases, Case{ID: id, Pair: pair})
	}
	return cases, nil
}

func missingPath(pair FilePair) string {
	for _, p := range []string{pair.ImagePath, pair.LabelPath} {
		if _, err := os.Stat(p); err != nil {
			return p
		}
	}
	return ""
}

// LabelBase returns the archive naming prefix for a pair: the label filename
// with directory and volume suffix stripped.
func LabelBase(pair FilePair) string {
	return strings.TrimSuffix(filepath.Base(pair.LabelPath), VolumeSuffix)
}
