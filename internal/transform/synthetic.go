package transform

import (
	"context"
	"errors"
	"math/rand"

	"voxprep/internal/dataset"
	"voxprep/internal/tensor"
)

// Synthetic is a stand-in augmentation pipeline that produces fixed-shape
// pseudo-volumes without touching the source files. It exercises the full
// generation, persistence, resume, and verification path at real tensor
// sizes, which is all voxprep itself needs; the domain resampling stack
// plugs in through the same Transform seam.
type Synthetic struct {
	// TargetShape is the output shape of both tensors, e.g. 128x160x112.
	TargetShape []int
	// LesionRate is the approximate foreground fraction of the label mask.
	LesionRate float64
}

// Apply draws a pseudo PET volume with roughly standard-normal intensities
// and a sparse binary label mask from rng.
func (s Synthetic) Apply(ctx context.Context, _ dataset.FilePair, rng *rand.Rand) (tensor.Dense, tensor.Dense, error) {
	if len(s.TargetShape) == 0 {
		return tensor.Dense{}, tensor.Dense{}, errors.New("synthetic transform: target shape not set")
	}
	if err := ctx.Err(); err != nil {
		return tensor.Dense{}, tensor.Dense{}, err
	}

	rate := s.LesionRate
	if rate <= 0 {
		rate = 0.01
	}

	image := tensor.Zeros(s.TargetShape...)
	label := tensor.Zeros(s.TargetShape...)
	for i := range image.Data {
		image.Data[i] = float32(rng.NormFloat64())
		if rng.Float64() < rate {
			label.Data[i] = 1
		}
	}
	return image, label, nil
}
