/*package lib contains the command line handling and sanity checks needed by
foamtonumpy, along with a few byte-level utilities that might be useful for
other programs reading its output. Almost all of the heavy lifting is done by
lib/'s subpackages.
*/
package lib

import (
	"encoding/binary"
	"io"
	"math"
	"unsafe"
)

// Version is the version of the software.
var Version = "1.0.0"

// WriteAsBytes writes x to f as raw 32-bit floats in system byte order. b is
// a scratch buffer used to hold the encoded bytes. It is expanded if needed and
// returned so it can be passed to later calls without extra heap allocations.
func WriteAsBytes(f io.Writer, x []float32, b []byte) ([]byte, error) {
	b = EncodeFloat32s(SystemByteOrder(), x, b)
	_, err := f.Write(b)
	return b, err
}

// EncodeFloat32s encodes x into b with the given byte order. b is expanded to
// exactly 4*len(x) bytes and returned.
func EncodeFloat32s(order binary.ByteOrder, x []float32, b []byte) []byte {
	n := 4 * len(x)
	if cap(b) < n {
		b = append(b[:cap(b)], make([]byte, n-cap(b))...)
	}
	b = b[:n]

	for i := range x {
		order.PutUint32(b[4*i:], math.Float32bits(x[i]))
	}
	return b
}

// DecodeFloat32s is the inverse of EncodeFloat32s. len(b) must be 4*len(x).
func DecodeFloat32s(order binary.ByteOrder, b []byte, x []float32) {
	for i := range x {
		x[i] = math.Float32frombits(order.Uint32(b[4*i:]))
	}
}

// SystemByteOrder returns the byte order of the machine the code is running
// on. This is the order .bin files are written in.
func SystemByteOrder() binary.ByteOrder {
	// See https://stackoverflow.com/questions/51332658/any-better-way-to-check-endianness-in-go/51332762
	b := [2]byte{}
	*(*uint16)(unsafe.Pointer(&b[0])) = uint16(0x0001)
	if b[0] == 0 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
