// Package npz reads and writes sample archives: .npz files holding exactly
// two named float32 arrays, "input" (the augmented image volume) and "label"
// (its segmentation). An .npz file is a ZIP container whose members are
// NumPy .npy files, so archives written here load directly with np.load.
//
// The package also owns the archive naming convention,
// {label_base}_{NNN}.npz, which resume scanning and integrity verification
// use as their only join key.
package npz

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sbinet/npyio"

	"voxprep/internal/fileutil"
	"voxprep/internal/tensor"
)

const (
	// Suffix is the archive file extension.
	Suffix = ".npz"

	memberInput = "input.npy"
	memberLabel = "label.npy"
)

// ErrBadName reports a filename that does not follow the
// {prefix}_{index}.npz convention.
var ErrBadName = errors.New("npz: filename does not match {prefix}_{NNN}.npz")

// Name builds the archive filename for the given prefix and draw index.
// The index is zero-padded to three digits.
func Name(labelBase string, index int) string {
	return fmt.Sprintf("%s_%03d%s", labelBase, index, Suffix)
}

// SplitName is the inverse of Name: it strips the suffix and the trailing
// _{index} component. Everything before the final underscore is the prefix,
// so prefixes may themselves contain underscores.
func SplitName(filename string) (prefix string, index int, err error) {
	stem, ok := strings.CutSuffix(filename, Suffix)
	if !ok {
		return "", 0, fmt.Errorf("%w: %q", ErrBadName, filename)
	}
	cut := strings.LastIndexByte(stem, '_')
	if cut < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrBadName, filename)
	}
	index, convErr := strconv.Atoi(stem[cut+1:])
	if convErr != nil || index < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrBadName, filename)
	}
	return stem[:cut], index, nil
}

// Write serializes the sample to path. Both members are deflate-compressed,
// and the archive is published with a temp-file-then-rename so a crash never
// leaves a truncated file at the final path.
func Write(path string, input, label tensor.Dense) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		if err := writeMember(zw, memberInput, input); err != nil {
			return err
		}
		if err := writeMember(zw, memberLabel, label); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("close archive: %w", err)
		}
		return nil
	})
}

func writeMember(zw *zip.Writer, name string, t tensor.Dense) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("create member %s: %w", name, err)
	}
	if err := writeNpy(w, t); err != nil {
		return fmt.Errorf("write member %s: %w", name, err)
	}
	return nil
}

// Read opens the archive at path and decodes both named arrays.
func Read(path string) (input, label tensor.Dense, err error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return tensor.Dense{}, tensor.Dense{}, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	input, err = readMember(&zr.Reader, memberInput)
	if err != nil {
		return tensor.Dense{}, tensor.Dense{}, err
	}
	label, err = readMember(&zr.Reader, memberLabel)
	if err != nil {
		return tensor.Dense{}, tensor.Dense{}, err
	}
	return input, label, nil
}

func readMember(zr *zip.Reader, name string) (tensor.Dense, error) {
	var file *zip.File
	for _, f := range zr.File {
		if f.Name == name {
			file = f
			break
		}
	}
	if file == nil {
		return tensor.Dense{}, fmt.Errorf("archive missing member %s", name)
	}

	rc, err := file.Open()
	if err != nil {
		return tensor.Dense{}, fmt.Errorf("open member %s: %w", name, err)
	}
	defer rc.Close()

	r, err := npyio.NewReader(rc)
	if err != nil {
		return tensor.Dense{}, fmt.Errorf("decode member %s: %w", name, err)
	}
	var data []float32
	if err := r.Read(&data); err != nil {
		return tensor.Dense{}, fmt.Errorf("decode member %s: %w", name, err)
	}
	t, err := tensor.FromSlice(r.Header.Descr.Shape, data)
	if err != nil {
		return tensor.Dense{}, fmt.Errorf("decode member %s: %w", name, err)
	}
	return t, nil
}

// IsArchive reports whether a directory entry name looks like a sample
// archive. Lock files and editor droppings in the destination are ignored
// by resume scans and verification.
func IsArchive(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.HasSuffix(name, Suffix)
}
