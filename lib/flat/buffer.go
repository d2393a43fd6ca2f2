package flat

import (
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/foamtonumpy/lib"
)

// Buffer is a resizable buffer holding one flattened vector field, i.e.
// [x0, y0, z0, x1, y1, z1, ...], along with the scratch space needed to
// encode it. Buffers are meant to be created once and reused for every time
// step.
type Buffer struct {
	f32 []float32
	b   []byte
}

// NewBuffer creates a Buffer that can hold n vectors.
func NewBuffer(n int) *Buffer {
	buf := &Buffer{[]float32{}, []byte{}}
	buf.Resize(n)
	return buf
}

// Resize resizes the buffer so it holds n vectors.
func (buf *Buffer) Resize(n int) {
	if cap(buf.f32) >= 3*n {
		buf.f32 = buf.f32[:3*n]
	} else {
		buf.f32 = buf.f32[:cap(buf.f32)]
		buf.f32 = append(buf.f32, make([]float32, 3*n-len(buf.f32))...)
	}

	if cap(buf.b) >= 12*n {
		buf.b = buf.b[:12*n]
	} else {
		buf.b = buf.b[:cap(buf.b)]
		buf.b = append(buf.b, make([]byte, 12*n-len(buf.b))...)
	}
}

// Len returns the number of vectors in the buffer.
func (buf *Buffer) Len() int { return len(buf.f32) / 3 }

// Values returns the flattened values.
func (buf *Buffer) Values() []float32 { return buf.f32 }

// Set sets the i-th vector of the buffer, converting it to float32.
func (buf *Buffer) Set(i int, v r3.Vec) {
	buf.f32[3*i] = float32(v.X)
	buf.f32[3*i+1] = float32(v.Y)
	buf.f32[3*i+2] = float32(v.Z)
}

// Write writes the buffer to fname as raw float32s in system byte order,
// overwriting anything already there. If the file is created but can't be
// fully written, it's removed.
func (buf *Buffer) Write(fname string) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}

	buf.b, err = lib.WriteAsBytes(f, buf.f32, buf.b)
	if err != nil {
		f.Close()
		os.Remove(fname)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(fname)
		return err
	}
	return nil
}
