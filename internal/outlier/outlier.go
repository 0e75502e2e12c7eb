// Package outlier defines the optional pre-persistence sample filter. The
// production classifier is an external model consumed through a single
// predicate call; this package owns the seam and a simple intensity-band
// reference filter.
package outlier

import "voxprep/internal/tensor"

// Filter decides whether an augmented image should be rejected before it is
// persisted. Implementations must be pure predicates.
type Filter interface {
	Reject(image tensor.Dense) bool
}

// FilterFunc adapts a plain predicate to the Filter interface.
type FilterFunc func(tensor.Dense) bool

func (f FilterFunc) Reject(image tensor.Dense) bool { return f(image) }

// IntensityFilter rejects images whose mean intensity falls outside
// [MinMean, MaxMean]. Augmented PET volumes are intensity-normalized, so a
// mean far from the expected band indicates a degenerate crop or a broken
// source volume.
type IntensityFilter struct {
	MinMean float64
	MaxMean float64
}

func (f IntensityFilter) Reject(image tensor.Dense) bool {
	mean, err := image.Mean()
	if err != nil {
		return true
	}
	return mean < f.MinMean || mean > f.MaxMean
}
