package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"voxprep/internal/dataset"
	"voxprep/internal/logging"
	"voxprep/internal/npz"
)

// ScanResumable derives the set of verified-complete archive prefixes from
// the destination directory. A prefix qualifies only when its archive count
// equals samplesPerFile exactly — undercounts mean an interrupted case and
// overcounts mean something is wrong, so neither is trusted — and its
// final-index archive still decodes. A missing destination means a fresh
// run, not an error.
func ScanResumable(dir string, samplesPerFile int, logger *slog.Logger) (map[string]struct{}, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "resume")

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan destination: %w", err)
	}

	counts := make(map[string]int)
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !npz.IsArchive(entry.Name()) {
			continue
		}
		prefix, _, err := npz.SplitName(entry.Name())
		if err != nil {
			logger.Debug("ignoring unconventional filename", logging.String("name", entry.Name()))
			continue
		}
		counts[prefix]++
	}

	valid := make(map[string]struct{}, len(counts))
	for prefix, count := range counts {
		if count != samplesPerFile {
			continue
		}
		// A crash can leave the final archive fully named but truncated;
		// decode it before trusting the count.
		last := filepath.Join(dir, npz.Name(prefix, samplesPerFile-1))
		if _, _, err := npz.Read(last); err != nil {
			logger.Warn("complete-count prefix failed validation; regenerating",
				logging.String("prefix", prefix),
				logging.Error(err))
			continue
		}
		valid[prefix] = struct{}{}
	}
	return valid, nil
}

// FilterResumed removes cases whose archive prefix is already verified
// complete and returns the remaining work list plus the skip count.
func FilterResumed(cases []dataset.Case, valid map[string]struct{}) ([]dataset.Case, int) {
	todo := make([]dataset.Case, 0, len(cases))
	skipped := 0
	for _, c := range cases {
		if _, ok := valid[dataset.LabelBase(c.Pair)]; ok {
			skipped++
			continue
		}
		todo = append(todo, c)
	}
	return todo, skipped
}
