package foamio

import (
	"bufio"
	"fmt"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"
)

// WriteHexCase writes a case containing an n[0] x n[1] x n[2] block of
// identical hexahedral cells spanning [0, l[0]] x [0, l[1]] x [0, l[2]] and
// returns its mesh. Cells are numbered with x varying fastest. The x and y
// sides form the "walls" patch and the z sides form the "frontAndBack"
// patch, which has type empty. This is mostly useful for testing.
func WriteHexCase(c *Case, n [3]int, l [3]float64, format Format) (*Mesh, error) {
	nx, ny, nz := n[0], n[1], n[2]
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("A hex case must have at least one cell in "+
			"each dimension, but the requested size was %d x %d x %d.",
			nx, ny, nz)
	}
	dx := l[0] / float64(nx)
	dy := l[1] / float64(ny)
	dz := l[2] / float64(nz)

	pt := func(i, j, k int) int { return i + (nx+1)*(j+(ny+1)*k) }
	cell := func(i, j, k int) int { return i + nx*(j+ny*k) }

	points := make([]r3.Vec, (nx+1)*(ny+1)*(nz+1))
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				points[pt(i, j, k)] = r3.Vec{
					X: float64(i) * dx, Y: float64(j) * dy, Z: float64(k) * dz,
				}
			}
		}
	}

	// Each face's area vector points in the positive direction of its axis.
	xFace := func(i, j, k int) []int {
		return []int{pt(i, j, k), pt(i, j+1, k), pt(i, j+1, k+1), pt(i, j, k+1)}
	}
	yFace := func(i, j, k int) []int {
		return []int{pt(i, j, k), pt(i, j, k+1), pt(i+1, j, k+1), pt(i+1, j, k)}
	}
	zFace := func(i, j, k int) []int {
		return []int{pt(i, j, k), pt(i+1, j, k), pt(i+1, j+1, k), pt(i, j+1, k)}
	}

	faces, owner, neighbour := [][]int{}, []int{}, []int{}

	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				own := cell(i, j, k)
				if i+1 < nx {
					faces = append(faces, xFace(i+1, j, k))
					owner = append(owner, own)
					neighbour = append(neighbour, cell(i+1, j, k))
				}
				if j+1 < ny {
					faces = append(faces, yFace(i, j+1, k))
					owner = append(owner, own)
					neighbour = append(neighbour, cell(i, j+1, k))
				}
				if k+1 < nz {
					faces = append(faces, zFace(i, j, k+1))
					owner = append(owner, own)
					neighbour = append(neighbour, cell(i, j, k+1))
				}
			}
		}
	}

	addBoundary := func(f []int, own int, outward bool) {
		if !outward {
			f = reverse(f)
		}
		faces = append(faces, f)
		owner = append(owner, own)
	}

	wallStart := len(faces)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			addBoundary(xFace(0, j, k), cell(0, j, k), false)
			addBoundary(xFace(nx, j, k), cell(nx-1, j, k), true)
		}
	}
	for k := 0; k < nz; k++ {
		for i := 0; i < nx; i++ {
			addBoundary(yFace(i, 0, k), cell(i, 0, k), false)
			addBoundary(yFace(i, ny, k), cell(i, ny-1, k), true)
		}
	}

	frontStart := len(faces)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			addBoundary(zFace(i, j, 0), cell(i, j, 0), false)
			addBoundary(zFace(i, j, nz), cell(i, j, nz-1), true)
		}
	}

	patches := []Patch{
		{Name: "walls", Type: "wall",
			NFaces: frontStart - wallStart, StartFace: wallStart},
		{Name: "frontAndBack", Type: "empty",
			NFaces: len(faces) - frontStart, StartFace: frontStart},
	}

	m, err := NewMesh(points, faces, owner, neighbour, patches)
	if err != nil {
		return nil, err
	}
	if err := c.WriteMesh(m, format); err != nil {
		return nil, err
	}
	if err := writeControlDict(c, format); err != nil {
		return nil, err
	}

	return m, nil
}

func reverse(x []int) []int {
	out := make([]int, len(x))
	for i := range x {
		out[len(x)-1-i] = x[i]
	}
	return out
}

func writeControlDict(c *Case, format Format) error {
	fname := filepath.Join(c.Root, "system", "controlDict")
	return writeFile(fname, func(wr *bufio.Writer) {
		hd := newWriteHeader(ASCII, "dictionary", "system", "controlDict")
		writeHeader(wr, hd)
		wr.WriteString("application     foamtonumpy;\n\n")
		wr.WriteString("startFrom       startTime;\n\n")
		wr.WriteString("startTime       0;\n\n")
		wr.WriteString("writeFormat     ")
		wr.WriteString(format.String())
		wr.WriteString(";\n")
		wr.WriteString(footer)
	})
}

// WriteFakeField writes values as the volVectorField called name at time t.
// Every patch gets a zeroGradient condition, except empty patches.
func WriteFakeField(
	c *Case, m *Mesh, name string, t Instant, values []r3.Vec, format Format,
) error {
	f := &VectorField{
		Name:       name,
		Dimensions: "[0 1 -1 0 0 0 0]",
		Internal:   values,
		Boundary:   make([]PatchField, len(m.Patches)),
	}
	for i, p := range m.Patches {
		f.Boundary[i] = PatchField{Name: p.Name, Type: "zeroGradient"}
		if p.Type == "empty" {
			f.Boundary[i].Type = "empty"
		}
	}
	return c.WriteVectorField(f, t, format)
}
