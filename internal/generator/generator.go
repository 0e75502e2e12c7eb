// Package generator owns the resumable per-case sample generation loop: it
// drives the transform pipeline samples_per_file times per case, applies the
// optional outlier filter, and persists each accepted sample as an npz
// archive in the shared destination directory. Resume scanning lives here
// too, since the archive naming convention is the only state it reads.
package generator

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"voxprep/internal/dataset"
	"voxprep/internal/logging"
	"voxprep/internal/npz"
	"voxprep/internal/outlier"
	"voxprep/internal/tensor"
	"voxprep/internal/transform"
)

// Config enumerates the construction parameters of a Generator. Transform,
// DestinationRoot, and a positive SamplesPerFile are required; Filter and
// Logger are optional.
type Config struct {
	DestinationRoot string
	SamplesPerFile  int
	Seed            int64
	Transform       transform.Transform
	Filter          outlier.Filter
	Logger          *slog.Logger
}

// Generator produces sample archives for one case at a time. It is safe for
// concurrent use by multiple workers: archive publication is serialized
// through an in-process mutex plus a cross-process file lock, so parallel
// runs against one destination cannot interleave partial writes.
type Generator struct {
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	writeLock *flock.Flock
}

// Outcome summarizes one case's generation pass.
type Outcome struct {
	Case     string
	Written  int
	Rejected int
	Duration time.Duration
}

// New validates cfg, creates the destination directory, and prepares the
// shared write lock. The lock file lives next to the destination, not inside
// it, so destination scans only ever see archives.
func New(cfg Config) (*Generator, error) {
	if cfg.Transform == nil {
		return nil, errors.New("generator: transform is required")
	}
	if cfg.SamplesPerFile <= 0 {
		return nil, fmt.Errorf("generator: samples per file must be positive, got %d", cfg.SamplesPerFile)
	}
	if cfg.DestinationRoot == "" {
		return nil, errors.New("generator: destination root is required")
	}
	if err := os.MkdirAll(cfg.DestinationRoot, 0o755); err != nil {
		return nil, fmt.Errorf("generator: create destination: %w", err)
	}

	return &Generator{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(cfg.Logger, "generator"),
		writeLock: flock.New(WriteLockPath(cfg.DestinationRoot)),
	}, nil
}

// WriteLockPath returns the cross-process write lock file guarding dest.
func WriteLockPath(dest string) string {
	return filepath.Clean(dest) + ".write.lock"
}

// Generate runs the per-case loop: SamplesPerFile transform draws, optional
// outlier filtering, and one archive write per accepted draw. A rejected
// draw consumes its slot index without retrying, so filtering leaves gaps in
// the index sequence and the case never reaches the exact archive count the
// resume scan requires; Generate surfaces that condition as a warning.
// Filesystem errors abort the case and propagate.
func (g *Generator) Generate(ctx context.Context, c dataset.Case) (Outcome, error) {
	start := time.Now()
	base := dataset.LabelBase(c.Pair)
	rng := rand.New(rand.NewSource(CaseSeed(g.cfg.Seed, c.ID)))
	out := Outcome{Case: c.ID}

	for i := 0; i < g.cfg.SamplesPerFile; i++ {
		if err := ctx.Err(); err != nil {
			out.Duration = time.Since(start)
			return out, err
		}

		image, label, err := g.cfg.Transform.Apply(ctx, c.Pair, rng)
		if err != nil {
			out.Duration = time.Since(start)
			return out, fmt.Errorf("augment case %s draw %d: %w", c.ID, i, err)
		}

		if g.cfg.Filter != nil && g.cfg.Filter.Reject(image) {
			out.Rejected++
			g.logger.Debug("outlier rejected",
				logging.String(logging.FieldCase, c.ID),
				logging.Int("index", i))
			continue
		}

		path := filepath.Join(g.cfg.DestinationRoot, npz.Name(base, i))
		if err := g.writeSample(path, image, label); err != nil {
			out.Duration = time.Since(start)
			return out, fmt.Errorf("persist case %s draw %d: %w", c.ID, i, err)
		}
		out.Written++
	}

	out.Duration = time.Since(start)
	if out.Rejected > 0 && out.Written < g.cfg.SamplesPerFile {
		g.logger.Warn("case short of target archive count after filtering; it will regenerate on every resumed run",
			logging.String(logging.FieldCase, c.ID),
			logging.Int("written", out.Written),
			logging.Int("rejected", out.Rejected),
			logging.Int("target", g.cfg.SamplesPerFile))
	}
	return out, nil
}

// writeSample publishes one archive under the shared critical section. The
// transform work already happened; only directory metadata and the atomic
// publish happen while the locks are held.
func (g *Generator) writeSample(path string, image, label tensor.Dense) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.writeLock.Lock(); err != nil {
		return fmt.Errorf("acquire write lock: %w", err)
	}
	defer func() {
		_ = g.writeLock.Unlock()
	}()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure archive directory: %w", err)
	}
	return npz.Write(path, image, label)
}

// CaseSeed derives a per-case RNG seed from the run seed and the case
// identifier. Handing every case its own stream keeps draws independent of
// worker interleaving; a single global stream shared across workers would
// not be.
func CaseSeed(seed int64, caseID string) int64 {
	h := fnv.New64a()
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(uint64(seed) >> (8 * i))
	}
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(caseID))
	return int64(h.Sum64())
}
