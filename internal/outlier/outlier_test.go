package outlier_test

import (
	"testing"

	"voxprep/internal/outlier"
	"voxprep/internal/tensor"
)

func constant(value float32, n int) tensor.Dense {
	d := tensor.Zeros(n)
	for i := range d.Data {
		d.Data[i] = value
	}
	return d
}

func TestIntensityFilterBand(t *testing.T) {
	filter := outlier.IntensityFilter{MinMean: -1, MaxMean: 1}

	tests := []struct {
		name   string
		image  tensor.Dense
		reject bool
	}{
		{"in band", constant(0.5, 8), false},
		{"lower edge", constant(-1, 8), false},
		{"upper edge", constant(1, 8), false},
		{"below band", constant(-3, 8), true},
		{"above band", constant(2.5, 8), true},
		{"empty tensor", tensor.Dense{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := filter.Reject(tc.image); got != tc.reject {
				t.Fatalf("Reject = %v, want %v", got, tc.reject)
			}
		})
	}
}

func TestFilterFuncAdapter(t *testing.T) {
	var seen int
	f := outlier.FilterFunc(func(tensor.Dense) bool {
		seen++
		return true
	})
	if !f.Reject(tensor.Zeros(1)) {
		t.Fatal("adapter did not forward the predicate result")
	}
	if seen != 1 {
		t.Fatalf("predicate called %d times, want 1", seen)
	}
}
