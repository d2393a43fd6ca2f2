package foamio

/* list.go contains functions for reading OpenFOAM lists. Lists come in three
flavours:

   3(4 8 15)     - an ascii list
   3{4}          - a uniform list, all three elements are 4
   3(<bytes>)    - a binary list, the payload size is set by the header arch

*/

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// BigNumber is the longest list that will be read. Anything longer is
	// assumed to be a corrupt length prefix.
	BigNumber = 1 << 30
)

// checkLength returns an error if a list of n elements starting at pos is
// too long to be real.
func checkLength(t *tokenizer, pos, n int, what string) error {
	if n > BigNumber {
		return t.errorf(pos, "a list of %d %s is longer than the limit of %d",
			n, what, BigNumber)
	}
	return nil
}

// readLabelList reads a list of labels.
func readLabelList(t *tokenizer, hd *Header) ([]int, error) {
	n, err := t.label()
	if err != nil {
		return nil, err
	}
	return readLabelListBody(t, hd, n)
}

// readLabelListBody reads a list of n labels whose length prefix has already
// been consumed.
func readLabelListBody(t *tokenizer, hd *Header, n int) ([]int, error) {
	tok, err := t.next()
	if err != nil {
		return nil, err
	}
	if err := checkLength(t, tok.pos, n, "labels"); err != nil {
		return nil, err
	}

	switch {
	case tok.is('{'):
		x, err := t.label()
		if err != nil {
			return nil, err
		}
		if err := t.expect('}'); err != nil {
			return nil, err
		}
		out := make([]int, n)
		for i := range out {
			out[i] = x
		}
		return out, nil

	case tok.is('(') && hd.Format == Binary:
		if n > t.remaining()/hd.LabelSize {
			return nil, t.errorf(tok.pos, "a list of %d labels can't fit in "+
				"the remaining %d bytes of the file", n, t.remaining())
		}
		b, err := t.raw(n * hd.LabelSize)
		if err != nil {
			return nil, err
		}
		out := make([]int, n)
		decodeLabels(hd, b, out)
		if err := t.expect(')'); err != nil {
			return nil, err
		}
		return out, nil

	case tok.is('('):
		// Every label needs at least two bytes of text.
		if n > t.remaining()/2+1 {
			return nil, t.errorf(tok.pos, "a list of %d labels can't fit in "+
				"the remaining %d bytes of the file", n, t.remaining())
		}
		out := make([]int, n)
		for i := range out {
			out[i], err = t.label()
			if err != nil {
				return nil, err
			}
		}
		if err := t.expect(')'); err != nil {
			return nil, err
		}
		return out, nil
	}

	return nil, t.errorf(tok.pos, "expected a list to start with '(' or "+
		"'{', but found %s", tok)
}

// readVectorList reads a list of 3-vectors.
func readVectorList(t *tokenizer, hd *Header) ([]r3.Vec, error) {
	n, err := t.label()
	if err != nil {
		return nil, err
	}
	return readVectorListBody(t, hd, n)
}

// readVectorListBody reads a list of n vectors whose length prefix has
// already been consumed.
func readVectorListBody(t *tokenizer, hd *Header, n int) ([]r3.Vec, error) {
	tok, err := t.next()
	if err != nil {
		return nil, err
	}
	if err := checkLength(t, tok.pos, n, "vectors"); err != nil {
		return nil, err
	}

	switch {
	case tok.is('{'):
		v, err := readVector(t)
		if err != nil {
			return nil, err
		}
		if err := t.expect('}'); err != nil {
			return nil, err
		}
		out := make([]r3.Vec, n)
		for i := range out {
			out[i] = v
		}
		return out, nil

	case tok.is('(') && hd.Format == Binary:
		size := 3 * hd.ScalarSize
		if n > t.remaining()/size {
			return nil, t.errorf(tok.pos, "a list of %d vectors can't fit in "+
				"the remaining %d bytes of the file", n, t.remaining())
		}
		b, err := t.raw(n * size)
		if err != nil {
			return nil, err
		}
		out := make([]r3.Vec, n)
		decodeVectors(hd, b, out)
		if err := t.expect(')'); err != nil {
			return nil, err
		}
		return out, nil

	case tok.is('('):
		// "(0 0 0)" is the shortest a vector can be.
		if n > t.remaining()/7+1 {
			return nil, t.errorf(tok.pos, "a list of %d vectors can't fit in "+
				"the remaining %d bytes of the file", n, t.remaining())
		}
		out := make([]r3.Vec, n)
		for i := range out {
			out[i], err = readVector(t)
			if err != nil {
				return nil, err
			}
		}
		if err := t.expect(')'); err != nil {
			return nil, err
		}
		return out, nil
	}

	return nil, t.errorf(tok.pos, "expected a list to start with '(' or "+
		"'{', but found %s", tok)
}

// readVector reads a single ascii vector, "(x y z)".
func readVector(t *tokenizer) (r3.Vec, error) {
	if err := t.expect('('); err != nil {
		return r3.Vec{}, err
	}
	var x [3]float64
	for dim := 0; dim < 3; dim++ {
		var err error
		x[dim], err = t.number()
		if err != nil {
			return r3.Vec{}, err
		}
	}
	if err := t.expect(')'); err != nil {
		return r3.Vec{}, err
	}
	return r3.Vec{X: x[0], Y: x[1], Z: x[2]}, nil
}

// readFaceList reads the faces of a polyMesh. faceList files store each face
// as its own label list, while faceCompactList files (used by binary meshes)
// store a list of offsets followed by a flat list of point labels.
func readFaceList(t *tokenizer, hd *Header) ([][]int, error) {
	if hd.Class == "faceCompactList" {
		offsets, err := readLabelList(t, hd)
		if err != nil {
			return nil, err
		}
		labels, err := readLabelList(t, hd)
		if err != nil {
			return nil, err
		}
		return uncompactFaces(t, offsets, labels)
	}

	if hd.Format == Binary {
		return nil, t.errorf(0, "binary meshes must store faces as a "+
			"faceCompactList, not a %s", hd.Class)
	}

	n, err := t.label()
	if err != nil {
		return nil, err
	}
	if n > t.remaining()/4+1 {
		return nil, t.errorf(0, "a list of %d faces can't fit in the "+
			"remaining %d bytes of the file", n, t.remaining())
	}
	if err := t.expect('('); err != nil {
		return nil, err
	}
	faces := make([][]int, n)
	for i := range faces {
		faces[i], err = readLabelList(t, hd)
		if err != nil {
			return nil, err
		}
	}
	if err := t.expect(')'); err != nil {
		return nil, err
	}

	return faces, nil
}

// uncompactFaces expands a faceCompactList into individual faces.
func uncompactFaces(t *tokenizer, offsets, labels []int) ([][]int, error) {
	if len(offsets) == 0 {
		return [][]int{}, nil
	}
	if offsets[0] != 0 || offsets[len(offsets)-1] != len(labels) {
		return nil, t.errorf(0, "the face offsets run from %d to %d, but "+
			"there are %d point labels", offsets[0], offsets[len(offsets)-1],
			len(labels))
	}

	faces := make([][]int, len(offsets)-1)
	for i := range faces {
		start, end := offsets[i], offsets[i+1]
		if end < start || end > len(labels) {
			return nil, t.errorf(0, "face %d has invalid offsets [%d, %d)",
				i, start, end)
		}
		faces[i] = labels[start:end:end]
	}
	return faces, nil
}

func decodeLabels(hd *Header, b []byte, out []int) {
	switch hd.LabelSize {
	case 4:
		for i := range out {
			out[i] = int(int32(hd.Order.Uint32(b[4*i:])))
		}
	case 8:
		for i := range out {
			out[i] = int(int64(hd.Order.Uint64(b[8*i:])))
		}
	}
}

func decodeVectors(hd *Header, b []byte, out []r3.Vec) {
	var x [3]float64
	size := hd.ScalarSize
	for i := range out {
		for dim := 0; dim < 3; dim++ {
			x[dim] = decodeScalar(hd, b[(3*i+dim)*size:])
		}
		out[i] = r3.Vec{X: x[0], Y: x[1], Z: x[2]}
	}
}

func decodeScalar(hd *Header, b []byte) float64 {
	if hd.ScalarSize == 4 {
		return float64(math.Float32frombits(hd.Order.Uint32(b)))
	}
	return math.Float64frombits(hd.Order.Uint64(b))
}
