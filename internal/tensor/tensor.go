// Package tensor provides the fixed-shape float32 volume type exchanged
// between the transform pipeline, the outlier filter, and the archive codec.
//
// The type is deliberately minimal: voxprep moves volumes between
// collaborators and onto disk, it does not compute on them. Data is stored
// flat in C (row-major) order, matching the on-disk npy layout.
package tensor

import (
	"errors"
	"fmt"
)

// Dense is a dense float32 tensor with an explicit shape.
type Dense struct {
	Shape []int
	Data  []float32
}

// Zeros returns a zero-filled tensor with the given shape.
func Zeros(shape ...int) Dense {
	return Dense{
		Shape: append([]int(nil), shape...),
		Data:  make([]float32, NumElems(shape)),
	}
}

// FromSlice wraps existing data in a Dense, verifying shape agreement.
func FromSlice(shape []int, data []float32) (Dense, error) {
	want := NumElems(shape)
	if want != len(data) {
		return Dense{}, fmt.Errorf("tensor: shape %v wants %d elements, have %d", shape, want, len(data))
	}
	return Dense{Shape: append([]int(nil), shape...), Data: data}, nil
}

// NumElems returns the element count implied by shape. An empty shape
// describes a scalar and counts as one element.
func NumElems(shape []int) int {
	n := 1
	for _, dim := range shape {
		if dim < 0 {
			return 0
		}
		n *= dim
	}
	return n
}

// Len returns the number of stored elements.
func (d Dense) Len() int { return len(d.Data) }

// Mean returns the arithmetic mean of all elements.
func (d Dense) Mean() (float64, error) {
	if len(d.Data) == 0 {
		return 0, errors.New("tensor: mean of empty tensor")
	}
	var sum float64
	for _, v := range d.Data {
		sum += float64(v)
	}
	return sum / float64(len(d.Data)), nil
}

// SameShape reports whether two tensors share an identical shape.
func SameShape(a, b Dense) bool {
	if len(a.Shape) != len(b.Shape) {
		return false
	}
	for i := range a.Shape {
		if a.Shape[i] != b.Shape[i] {
			return false
		}
	}
	return true
}
