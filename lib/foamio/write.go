package foamio

/* write.go contains the functions for writing OpenFOAM files. Everything is
written through a bufio.Writer, which holds on to the first I/O error it
encounters, so callers only need to check the error returned by Flush(). */

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

const banner = `/*--------------------------------*- C++ -*----------------------------------*\
  =========                 |
  \\      /  F ield         | foamtonumpy
   \\    /   O peration     |
    \\  /    A nd           |
     \\/     M anipulation  |
\*---------------------------------------------------------------------------*/
`

const footer = `
// ************************************************************************* //
`

// newWriteHeader returns the header used for files written by foamio. Binary
// files are always written as LSB;label=32;scalar=64.
func newWriteHeader(format Format, class, location, object string) *Header {
	hd := defaultHeader()
	hd.Format = format
	hd.Class = class
	hd.Location = location
	hd.Object = object
	return hd
}

func writeHeader(wr *bufio.Writer, hd *Header) {
	wr.WriteString(banner)
	wr.WriteString("FoamFile\n{\n")
	fmt.Fprintf(wr, "    version     %s;\n", hd.Version)
	fmt.Fprintf(wr, "    format      %s;\n", hd.Format)
	fmt.Fprintf(wr, "    arch        \"%s\";\n", hd.Arch())
	fmt.Fprintf(wr, "    class       %s;\n", hd.Class)
	if hd.Note != "" {
		fmt.Fprintf(wr, "    note        \"%s\";\n", hd.Note)
	}
	if hd.Location != "" {
		fmt.Fprintf(wr, "    location    \"%s\";\n", hd.Location)
	}
	fmt.Fprintf(wr, "    object      %s;\n", hd.Object)
	wr.WriteString("}\n")
	wr.WriteString("// * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * //\n\n")
}

func formatScalar(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func writeVector(wr *bufio.Writer, v r3.Vec) {
	wr.WriteByte('(')
	wr.WriteString(formatScalar(v.X))
	wr.WriteByte(' ')
	wr.WriteString(formatScalar(v.Y))
	wr.WriteByte(' ')
	wr.WriteString(formatScalar(v.Z))
	wr.WriteByte(')')
}

// writeLabelList writes x in the format given by hd.
func writeLabelList(wr *bufio.Writer, hd *Header, x []int) {
	wr.WriteString(strconv.Itoa(len(x)))
	if hd.Format == Binary {
		wr.WriteString("\n(")
		b := make([]byte, hd.LabelSize)
		for _, xi := range x {
			if hd.LabelSize == 8 {
				hd.Order.PutUint64(b, uint64(int64(xi)))
			} else {
				hd.Order.PutUint32(b, uint32(int32(xi)))
			}
			wr.Write(b)
		}
		wr.WriteString(")\n")
		return
	}

	wr.WriteString("\n(\n")
	for _, xi := range x {
		wr.WriteString(strconv.Itoa(xi))
		wr.WriteByte('\n')
	}
	wr.WriteString(")\n")
}

// writeVectorList writes v in the format given by hd.
func writeVectorList(wr *bufio.Writer, hd *Header, v []r3.Vec) {
	wr.WriteString(strconv.Itoa(len(v)))
	if hd.Format == Binary {
		wr.WriteString("\n(")
		b := make([]byte, 3*hd.ScalarSize)
		for i := range v {
			encodeVector(hd, v[i], b)
			wr.Write(b)
		}
		wr.WriteString(")\n")
		return
	}

	wr.WriteString("\n(\n")
	for i := range v {
		writeVector(wr, v[i])
		wr.WriteByte('\n')
	}
	wr.WriteString(")\n")
}

// writeFaceList writes faces as a faceList for ascii headers and as a
// faceCompactList for binary headers. hd.Class must already match.
func writeFaceList(wr *bufio.Writer, hd *Header, faces [][]int) {
	if hd.Format == Binary {
		offsets := make([]int, len(faces)+1)
		labels := []int{}
		for i := range faces {
			labels = append(labels, faces[i]...)
			offsets[i+1] = len(labels)
		}
		writeLabelList(wr, hd, offsets)
		wr.WriteString("\n")
		writeLabelList(wr, hd, labels)
		return
	}

	wr.WriteString(strconv.Itoa(len(faces)))
	wr.WriteString("\n(\n")
	for _, f := range faces {
		wr.WriteString(strconv.Itoa(len(f)))
		wr.WriteByte('(')
		for j, p := range f {
			if j > 0 {
				wr.WriteByte(' ')
			}
			wr.WriteString(strconv.Itoa(p))
		}
		wr.WriteString(")\n")
	}
	wr.WriteString(")\n")
}

// writeBoundary writes the body of a polyMesh/boundary file.
func writeBoundary(wr *bufio.Writer, patches []Patch) {
	fmt.Fprintf(wr, "%d\n(\n", len(patches))
	for _, p := range patches {
		fmt.Fprintf(wr, "    %s\n    {\n", p.Name)
		fmt.Fprintf(wr, "        type            %s;\n", p.Type)
		fmt.Fprintf(wr, "        nFaces          %d;\n", p.NFaces)
		fmt.Fprintf(wr, "        startFace       %d;\n", p.StartFace)
		wr.WriteString("    }\n")
	}
	wr.WriteString(")\n")
}

// writeVectorField writes the body of a volVectorField file.
func writeVectorField(wr *bufio.Writer, hd *Header, f *VectorField) {
	dims := f.Dimensions
	if dims == "" {
		dims = "[0 0 0 0 0 0 0]"
	}
	fmt.Fprintf(wr, "dimensions      %s;\n\n", dims)
	wr.WriteString("internalField   nonuniform List<vector> ")
	writeVectorList(wr, hd, f.Internal)
	wr.WriteString(";\n\n")

	wr.WriteString("boundaryField\n{\n")
	for _, p := range f.Boundary {
		fmt.Fprintf(wr, "    %s\n    {\n", p.Name)
		fmt.Fprintf(wr, "        type            %s;\n", p.Type)
		if p.Uniform && len(p.Values) == 1 {
			wr.WriteString("        value           uniform ")
			writeVector(wr, p.Values[0])
			wr.WriteString(";\n")
		} else if p.Values != nil {
			wr.WriteString("        value           nonuniform List<vector> ")
			writeVectorList(wr, hd, p.Values)
			wr.WriteString(";\n")
		}
		wr.WriteString("    }\n")
	}
	wr.WriteString("}\n")
}

func encodeVector(hd *Header, v r3.Vec, b []byte) {
	x := [3]float64{v.X, v.Y, v.Z}
	size := hd.ScalarSize
	for dim := 0; dim < 3; dim++ {
		encodeScalar(hd.Order, size, x[dim], b[dim*size:])
	}
}

func encodeScalar(order binary.ByteOrder, size int, x float64, b []byte) {
	if size == 4 {
		order.PutUint32(b, math.Float32bits(float32(x)))
	} else {
		order.PutUint64(b, math.Float64bits(x))
	}
}
