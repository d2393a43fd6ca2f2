package foamio

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// VSmall and RootVSmall are the thresholds below which a volume or a
	// face area is treated as degenerate.
	VSmall     = 1e-300
	RootVSmall = 1e-150
)

// Patch is a single entry of a polyMesh/boundary file. Patches are
// contiguous ranges of boundary faces.
type Patch struct {
	Name, Type        string
	NFaces, StartFace int
}

// Mesh is a polyMesh along with its derived geometry. None of the slices
// returned by Mesh's methods should be modified.
type Mesh struct {
	Points    []r3.Vec
	Faces     [][]int
	Owner     []int
	Neighbour []int
	Patches   []Patch

	nCells      int
	faceCentres []r3.Vec
	faceAreas   []r3.Vec
	cellCentres []r3.Vec
	cellVolumes []float64
}

// NewMesh checks that the given addressing is consistent and computes the
// mesh's geometry. The first len(neighbour) faces are the internal faces.
func NewMesh(
	points []r3.Vec, faces [][]int, owner, neighbour []int, patches []Patch,
) (*Mesh, error) {
	m := &Mesh{
		Points: points, Faces: faces, Owner: owner, Neighbour: neighbour,
		Patches: patches,
	}
	if err := m.check(); err != nil {
		return nil, err
	}

	m.faceCentres, m.faceAreas = faceCentresAndAreas(m.Points, m.Faces)
	m.cellCentres, m.cellVolumes = cellCentresAndVolumes(
		m.nCells, m.faceCentres, m.faceAreas, m.Owner, m.Neighbour,
	)

	return m, nil
}

// check validates the mesh addressing and sets nCells.
func (m *Mesh) check() error {
	if len(m.Owner) != len(m.Faces) {
		return fmt.Errorf("The mesh has %d faces, but its owner list has %d "+
			"entries.", len(m.Faces), len(m.Owner))
	} else if len(m.Neighbour) > len(m.Faces) {
		return fmt.Errorf("The mesh has %d faces, but its neighbour list has "+
			"%d entries.", len(m.Faces), len(m.Neighbour))
	}

	for i, f := range m.Faces {
		if len(f) < 3 {
			return fmt.Errorf("Face %d has only %d points.", i, len(f))
		}
		for _, p := range f {
			if p < 0 || p >= len(m.Points) {
				return fmt.Errorf("Face %d references point %d, but the "+
					"mesh only has %d points.", i, p, len(m.Points))
			}
		}
	}

	maxCell := -1
	for i, c := range m.Owner {
		if c < 0 {
			return fmt.Errorf("Face %d has the negative owner %d.", i, c)
		}
		if c > maxCell {
			maxCell = c
		}
	}
	for i, c := range m.Neighbour {
		if c < 0 {
			return fmt.Errorf("Face %d has the negative neighbour %d.", i, c)
		}
		if c > maxCell {
			maxCell = c
		}
	}
	m.nCells = maxCell + 1

	for _, p := range m.Patches {
		end := p.StartFace + p.NFaces
		if p.NFaces < 0 || p.StartFace < len(m.Neighbour) ||
			end > len(m.Faces) {
			return fmt.Errorf("Patch '%s' covers faces [%d, %d), which is "+
				"outside the boundary faces [%d, %d).", p.Name, p.StartFace,
				end, len(m.Neighbour), len(m.Faces))
		}
	}

	return nil
}

// NCells returns the number of cells in the mesh.
func (m *Mesh) NCells() int { return m.nCells }

// NInternalFaces returns the number of faces shared by two cells.
func (m *Mesh) NInternalFaces() int { return len(m.Neighbour) }

// FaceCentres returns the centre of every face.
func (m *Mesh) FaceCentres() []r3.Vec { return m.faceCentres }

// FaceAreas returns the area vector of every face. Area vectors point out of
// the face's owner.
func (m *Mesh) FaceAreas() []r3.Vec { return m.faceAreas }

// CellCentres returns the centroid of every cell.
func (m *Mesh) CellCentres() []r3.Vec { return m.cellCentres }

// CellVolumes returns the volume of every cell.
func (m *Mesh) CellVolumes() []float64 { return m.cellVolumes }

// PatchFaceCentres returns the face centres of the i-th patch.
func (m *Mesh) PatchFaceCentres(i int) []r3.Vec {
	p := m.Patches[i]
	return m.faceCentres[p.StartFace : p.StartFace+p.NFaces]
}

// constraintTypes are patch types whose fields keep the patch's own type.
var constraintTypes = map[string]bool{
	"symmetry": true, "symmetryPlane": true, "wedge": true, "cyclic": true,
	"cyclicAMI": true, "processor": true,
}

// CellCentreField returns the cell centres as a volVectorField named "cellC".
// Boundary values are the patch face centres. empty patches carry no values.
func (m *Mesh) CellCentreField() *VectorField {
	f := &VectorField{
		Name:       "cellC",
		Dimensions: "[0 1 0 0 0 0 0]",
		Internal:   m.cellCentres,
		Boundary:   make([]PatchField, len(m.Patches)),
	}

	for i, p := range m.Patches {
		switch {
		case p.Type == "empty":
			f.Boundary[i] = PatchField{Name: p.Name, Type: "empty"}
		case constraintTypes[p.Type]:
			f.Boundary[i] = PatchField{
				Name: p.Name, Type: p.Type, Values: m.PatchFaceCentres(i),
			}
		default:
			f.Boundary[i] = PatchField{
				Name: p.Name, Type: "calculated", Values: m.PatchFaceCentres(i),
			}
		}
	}

	return f
}

// faceCentresAndAreas computes the centre and area vector of every face.
// Non-triangular faces are split into triangles around the average of their
// points.
func faceCentresAndAreas(points []r3.Vec, faces [][]int) (
	centres, areas []r3.Vec,
) {
	centres = make([]r3.Vec, len(faces))
	areas = make([]r3.Vec, len(faces))

	for i, f := range faces {
		if len(f) == 3 {
			p0, p1, p2 := points[f[0]], points[f[1]], points[f[2]]
			centres[i] = r3.Scale(1.0/3, r3.Add(r3.Add(p0, p1), p2))
			areas[i] = r3.Scale(0.5, r3.Cross(r3.Sub(p1, p0), r3.Sub(p2, p0)))
			continue
		}

		fCentre := r3.Vec{}
		for _, p := range f {
			fCentre = r3.Add(fCentre, points[p])
		}
		fCentre = r3.Scale(1/float64(len(f)), fCentre)

		sumN, sumAc, sumA := r3.Vec{}, r3.Vec{}, 0.0
		for j := range f {
			p := points[f[j]]
			next := points[f[(j+1)%len(f)]]

			c := r3.Add(r3.Add(p, next), fCentre)
			n := r3.Cross(r3.Sub(next, p), r3.Sub(fCentre, p))
			a := r3.Norm(n)

			sumN = r3.Add(sumN, n)
			sumA += a
			sumAc = r3.Add(sumAc, r3.Scale(a, c))
		}

		if sumA < RootVSmall {
			centres[i] = fCentre
			areas[i] = r3.Vec{}
		} else {
			centres[i] = r3.Scale(1/(3*sumA), sumAc)
			areas[i] = r3.Scale(0.5, sumN)
		}
	}

	return centres, areas
}

// cellCentresAndVolumes computes the centroid and volume of every cell by
// splitting it into pyramids, one per face, with their apex at the average
// of the cell's face centres.
func cellCentresAndVolumes(
	nCells int, fCtrs, fAreas []r3.Vec, owner, neighbour []int,
) (centres []r3.Vec, volumes []float64) {
	cEst := make([]r3.Vec, nCells)
	nCellFaces := make([]int, nCells)
	for f, c := range owner {
		cEst[c] = r3.Add(cEst[c], fCtrs[f])
		nCellFaces[c]++
	}
	for f, c := range neighbour {
		cEst[c] = r3.Add(cEst[c], fCtrs[f])
		nCellFaces[c]++
	}
	for c := range cEst {
		if nCellFaces[c] > 0 {
			cEst[c] = r3.Scale(1/float64(nCellFaces[c]), cEst[c])
		}
	}

	centres = make([]r3.Vec, nCells)
	volumes = make([]float64, nCells)
	for f, c := range owner {
		pyr3Vol := r3.Dot(fAreas[f], r3.Sub(fCtrs[f], cEst[c]))
		pc := r3.Add(r3.Scale(0.75, fCtrs[f]), r3.Scale(0.25, cEst[c]))
		centres[c] = r3.Add(centres[c], r3.Scale(pyr3Vol, pc))
		volumes[c] += pyr3Vol
	}
	for f, c := range neighbour {
		pyr3Vol := r3.Dot(fAreas[f], r3.Sub(cEst[c], fCtrs[f]))
		pc := r3.Add(r3.Scale(0.75, fCtrs[f]), r3.Scale(0.25, cEst[c]))
		centres[c] = r3.Add(centres[c], r3.Scale(pyr3Vol, pc))
		volumes[c] += pyr3Vol
	}

	for c := range centres {
		if math.Abs(volumes[c]) > VSmall {
			centres[c] = r3.Scale(1/volumes[c], centres[c])
		} else {
			centres[c] = cEst[c]
		}
		volumes[c] /= 3
	}

	return centres, volumes
}

// ParsePoints parses a polyMesh/points file.
func ParsePoints(name string, b []byte) ([]r3.Vec, error) {
	t := newTokenizer(name, b)
	hd, err := readHeader(t)
	if err != nil {
		return nil, err
	}
	return readVectorList(t, hd)
}

// ParseFaces parses a polyMesh/faces file. Both faceList and faceCompactList
// files are supported.
func ParseFaces(name string, b []byte) ([][]int, error) {
	t := newTokenizer(name, b)
	hd, err := readHeader(t)
	if err != nil {
		return nil, err
	}
	return readFaceList(t, hd)
}

// ParseLabels parses a labelList file, like polyMesh/owner.
func ParseLabels(name string, b []byte) ([]int, error) {
	t := newTokenizer(name, b)
	hd, err := readHeader(t)
	if err != nil {
		return nil, err
	}
	return readLabelList(t, hd)
}

// ParseBoundary parses a polyMesh/boundary file.
func ParseBoundary(name string, b []byte) ([]Patch, error) {
	t := newTokenizer(name, b)
	if _, err := readHeader(t); err != nil {
		return nil, err
	}

	n, err := t.label()
	if err != nil {
		return nil, err
	}
	// "a{}" is the shortest a patch can be.
	if n > t.remaining()/3+1 {
		return nil, t.errorf(0, "a list of %d patches can't fit in the "+
			"remaining %d bytes of the file", n, t.remaining())
	}
	if err := t.expect('('); err != nil {
		return nil, err
	}

	patches := make([]Patch, n)
	for i := range patches {
		tok, err := t.next()
		if err != nil {
			return nil, err
		}
		if tok.kind != wordToken && tok.kind != stringToken {
			return nil, t.errorf(tok.pos, "expected a patch name, but found "+
				"%s", tok)
		}
		if err := t.expect('{'); err != nil {
			return nil, err
		}
		dict, err := t.readDict()
		if err != nil {
			return nil, err
		}

		patches[i].Name = tok.text
		patches[i].Type = joinTokens(dict["type"])
		if patches[i].NFaces, err = dictLabel(t, dict, "nFaces"); err != nil {
			return nil, err
		}
		if patches[i].StartFace, err = dictLabel(t, dict, "startFace"); err != nil {
			return nil, err
		}
	}

	if err := t.expect(')'); err != nil {
		return nil, err
	}
	return patches, nil
}

// dictLabel returns the single non-negative integer stored under key.
func dictLabel(t *tokenizer, dict map[string][]token, key string) (int, error) {
	value, ok := dict[key]
	if !ok || len(value) != 1 {
		return 0, fmt.Errorf("%s: expected a '%s' entry with one value",
			t.name, key)
	}
	return labelFromToken(t, value[0])
}
