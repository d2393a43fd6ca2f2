package foamio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// VectorField is a volVectorField: one vector per cell plus the values on
// each boundary patch.
type VectorField struct {
	Name       string
	Dimensions string
	Internal   []r3.Vec
	Boundary   []PatchField
}

// PatchField is the boundaryField entry for a single patch. If Uniform is
// true, Values holds exactly one element which applies to every face. Values
// is nil for patches without a value entry, like zeroGradient and empty.
type PatchField struct {
	Name, Type string
	Uniform    bool
	Values     []r3.Vec
}

// ParseVectorField parses the contents of a volVectorField file. nCells is
// the number of cells in the mesh. Uniform internal fields are expanded to
// nCells values and nonuniform internal fields must have exactly nCells.
func ParseVectorField(name string, b []byte, nCells int) (*VectorField, error) {
	t := newTokenizer(name, b)
	hd, err := readHeader(t)
	if err != nil {
		return nil, err
	}
	if hd.Class != "volVectorField" {
		return nil, fmt.Errorf("%s: expected a file with class "+
			"volVectorField, but found class '%s'", name, hd.Class)
	}

	f := &VectorField{Name: hd.Object}
	foundInternal := false
	for {
		tok, err := t.next()
		if err != nil {
			return nil, err
		}

		switch {
		case tok.kind == eofToken:
			if !foundInternal {
				return nil, t.errorf(tok.pos, "the file doesn't contain an "+
					"internalField entry")
			}
			return f, nil
		case tok.kind == wordToken && strings.HasPrefix(tok.text, "#"):
			t.skipLine()
		case tok.kind != wordToken:
			return nil, t.errorf(tok.pos, "expected a keyword, but found %s",
				tok)
		case tok.text == "dimensions":
			value, err := t.readValue()
			if err != nil {
				return nil, err
			}
			f.Dimensions = joinTokens(value)
			f.Dimensions = strings.ReplaceAll(f.Dimensions, "[ ", "[")
			f.Dimensions = strings.ReplaceAll(f.Dimensions, " ]", "]")
		case tok.text == "internalField":
			values, uniform, err := readFieldValue(t, hd, nCells)
			if err != nil {
				return nil, err
			}
			if uniform {
				values = expandUniform(values[0], nCells)
			}
			f.Internal = values
			foundInternal = true
		case tok.text == "boundaryField":
			if err := t.expect('{'); err != nil {
				return nil, err
			}
			f.Boundary, err = readBoundaryField(t, hd)
			if err != nil {
				return nil, err
			}
		default:
			if err := t.skipValue(); err != nil {
				return nil, err
			}
		}
	}
}

// readFieldValue reads the value of an internalField or patch value entry,
// including the terminating ';'. Uniform values are returned as a single
// element. A nonuniform list must have exactly n elements unless n is -1.
func readFieldValue(t *tokenizer, hd *Header, n int) (
	values []r3.Vec, uniform bool, err error,
) {
	kind, err := t.word()
	if err != nil {
		return nil, false, err
	}

	switch kind {
	case "uniform":
		v, err := readVector(t)
		if err != nil {
			return nil, false, err
		}
		if err := t.expect(';'); err != nil {
			return nil, false, err
		}
		return []r3.Vec{v}, true, nil

	case "nonuniform":
		tok, err := t.next()
		if err != nil {
			return nil, false, err
		}
		if tok.kind == wordToken {
			if tok.text != "List<vector>" {
				return nil, false, t.errorf(tok.pos, "expected a "+
					"List<vector>, but found a %s", tok.text)
			}
			tok, err = t.next()
			if err != nil {
				return nil, false, err
			}
		}
		if tok.kind != numberToken {
			return nil, false, t.errorf(tok.pos, "expected the length of a "+
				"list, but found %s", tok)
		}
		length, err := labelFromToken(t, tok)
		if err != nil {
			return nil, false, err
		}
		if n >= 0 && length != n {
			return nil, false, t.errorf(tok.pos, "the field has %d values, "+
				"but the mesh has %d cells", length, n)
		}
		values, err := readVectorListBody(t, hd, length)
		if err != nil {
			return nil, false, err
		}
		if err := t.expect(';'); err != nil {
			return nil, false, err
		}
		return values, false, nil
	}

	return nil, false, fmt.Errorf("%s: expected 'uniform' or 'nonuniform', "+
		"but found '%s'", t.name, kind)
}

// readBoundaryField reads the patch entries of a boundaryField block whose
// opening brace has already been consumed.
func readBoundaryField(t *tokenizer, hd *Header) ([]PatchField, error) {
	patches := []PatchField{}
	for {
		tok, err := t.next()
		if err != nil {
			return nil, err
		}
		switch {
		case tok.is('}'):
			return patches, nil
		case tok.kind == wordToken && strings.HasPrefix(tok.text, "#"):
			t.skipLine()
			continue
		case tok.kind != wordToken && tok.kind != stringToken:
			return nil, t.errorf(tok.pos, "expected a patch name, but found "+
				"%s", tok)
		}

		if err := t.expect('{'); err != nil {
			return nil, err
		}
		p, err := readPatchField(t, hd, tok.text)
		if err != nil {
			return nil, err
		}
		patches = append(patches, *p)
	}
}

func readPatchField(t *tokenizer, hd *Header, name string) (*PatchField, error) {
	p := &PatchField{Name: name}
	for {
		tok, err := t.next()
		if err != nil {
			return nil, err
		}
		switch {
		case tok.is('}'):
			return p, nil
		case tok.kind == eofToken:
			return nil, t.errorf(tok.pos, "unexpected end of file inside "+
				"patch '%s'", name)
		case tok.kind != wordToken:
			return nil, t.errorf(tok.pos, "expected a keyword, but found %s",
				tok)
		case tok.text == "type":
			p.Type, err = t.word()
			if err != nil {
				return nil, err
			}
			if err := t.expect(';'); err != nil {
				return nil, err
			}
		case tok.text == "value":
			next, err := t.peek()
			if err != nil {
				return nil, err
			}
			if next.kind != wordToken || (next.text != "uniform" &&
				next.text != "nonuniform") {
				// Things like $internalField.
				if err := t.skipValue(); err != nil {
					return nil, err
				}
				continue
			}
			p.Values, p.Uniform, err = readFieldValue(t, hd, -1)
			if err != nil {
				return nil, err
			}
		default:
			if err := t.skipValue(); err != nil {
				return nil, err
			}
		}
	}
}

func labelFromToken(t *tokenizer, tok token) (int, error) {
	n := int(tok.num)
	if tok.kind != numberToken || float64(n) != tok.num || n < 0 {
		return 0, t.errorf(tok.pos, "expected a non-negative integer, but "+
			"found '%s'", tok.text)
	}
	return n, nil
}

func expandUniform(v r3.Vec, n int) []r3.Vec {
	out := make([]r3.Vec, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// WriteVectorField writes f as a volVectorField to wr. location is the name
// of the time directory the field belongs to.
func WriteVectorField(
	wr io.Writer, f *VectorField, location string, format Format,
) error {
	bw, ok := wr.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(wr)
	}
	hd := newWriteHeader(format, "volVectorField", location, f.Name)
	writeHeader(bw, hd)
	writeVectorField(bw, hd, f)
	bw.WriteString(footer)
	return bw.Flush()
}
