// Package verify audits a destination directory after generation: every
// archive must still exist and deserialize into its two named arrays. The
// audit is read-only — it reports, it never repairs or deletes.
package verify

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"voxprep/internal/logging"
	"voxprep/internal/npz"
)

// Failure records one archive that failed to deserialize.
type Failure struct {
	Name string
	Err  error
}

// Report aggregates the audit result. Missing files are kept separate from
// corrupt ones: a file that vanished between listing and open points at a
// filesystem race or external interference, not a bad write.
type Report struct {
	Checked int
	Corrupt []Failure
	Missing []string
}

// OK reports whether the audit found nothing wrong.
func (r Report) OK() bool {
	return len(r.Corrupt) == 0 && len(r.Missing) == 0
}

// Verify audits every archive in dir. Individual failures are logged and
// collected; the scan itself only fails if the directory cannot be listed.
// The optional progress callback receives one call per checked file.
func Verify(ctx context.Context, dir string, logger *slog.Logger, progress func()) (Report, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "verify")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Report{}, fmt.Errorf("list destination: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() && npz.IsArchive(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return verifyNames(ctx, dir, names, logger, progress)
}

func verifyNames(ctx context.Context, dir string, names []string, logger *slog.Logger, progress func()) (Report, error) {
	var report Report
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				report.Missing = append(report.Missing, name)
				logger.Error("archive listed but missing",
					logging.String(logging.FieldArchive, name))
			} else {
				report.Corrupt = append(report.Corrupt, Failure{Name: name, Err: err})
				logger.Error("archive unreadable",
					logging.String(logging.FieldArchive, name),
					logging.Error(err))
			}
			report.Checked++
			if progress != nil {
				progress()
			}
			continue
		}

		if _, _, err := npz.Read(path); err != nil {
			report.Corrupt = append(report.Corrupt, Failure{Name: name, Err: err})
			logger.Error("archive failed to deserialize",
				logging.String(logging.FieldArchive, name),
				logging.Error(err))
		}
		report.Checked++
		if progress != nil {
			progress()
		}
	}
	return report, nil
}
