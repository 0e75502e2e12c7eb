package npz

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"voxprep/internal/tensor"
)

// npy format version 1.0: 6-byte magic, 2-byte version, uint16 header
// length, then an ASCII dict padded with spaces so the data section starts
// on a 64-byte boundary. Data follows as little-endian float32 in C order.
// See numpy/lib/format.py.
const npyMagic = "\x93NUMPY"

func writeNpy(w io.Writer, t tensor.Dense) error {
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': %s, }", shapeTuple(t.Shape))

	preamble := len(npyMagic) + 2 + 2 // magic + version + header length field
	padded := preamble + len(header) + 1
	if rem := padded % 64; rem != 0 {
		padded += 64 - rem
	}
	headerLen := padded - preamble

	buf := make([]byte, 0, padded)
	buf = append(buf, npyMagic...)
	buf = append(buf, 1, 0) // version 1.0
	buf = binary.LittleEndian.AppendUint16(buf, uint16(headerLen))
	buf = append(buf, header...)
	for len(buf) < padded-1 {
		buf = append(buf, ' ')
	}
	buf = append(buf, '\n')

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("npy header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, t.Data); err != nil {
		return fmt.Errorf("npy data: %w", err)
	}
	return nil
}

func shapeTuple(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return "(" + strconv.Itoa(shape[0]) + ",)"
	default:
		dims := make([]string, len(shape))
		for i, d := range shape {
			dims[i] = strconv.Itoa(d)
		}
		return "(" + strings.Join(dims, ", ") + ")"
	}
}
