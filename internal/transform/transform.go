// Package transform defines the augmentation pipeline boundary. The real
// resampling, cropping, and intensity stack is an external collaborator;
// voxprep only depends on this contract: given a file pair and a random
// source, produce one augmented (image, label) tensor pair.
package transform

import (
	"context"
	"math/rand"

	"voxprep/internal/dataset"
	"voxprep/internal/tensor"
)

// Transform produces one randomly augmented sample from a source file pair.
// Implementations are stochastic per call and must draw all randomness from
// the supplied rng so per-case streams stay independent across workers.
type Transform interface {
	Apply(ctx context.Context, pair dataset.FilePair, rng *rand.Rand) (image, label tensor.Dense, err error)
}

// Func adapts a plain function to the Transform interface.
type Func func(ctx context.Context, pair dataset.FilePair, rng *rand.Rand) (tensor.Dense, tensor.Dense, error)

func (f Func) Apply(ctx context.Context, pair dataset.FilePair, rng *rand.Rand) (tensor.Dense, tensor.Dense, error) {
	return f(ctx, pair, rng)
}
