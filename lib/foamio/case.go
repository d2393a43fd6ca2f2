package foamio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	g_error "github.com/phil-mansfield/foamtonumpy/lib/error"
)

// Instant is a single time directory. Name is the directory name exactly as
// it appears on disk and is what output files are labelled with.
type Instant struct {
	Name  string
	Value float64
}

// Case is an OpenFOAM case directory. Region is empty for the default
// region.
type Case struct {
	Root, Region string
}

// NewCase returns the case rooted at root.
func NewCase(root, region string) *Case {
	return &Case{Root: root, Region: region}
}

// MeshDir returns the directory containing the case's polyMesh.
func (c *Case) MeshDir() string {
	return filepath.Join(c.Root, "constant", c.Region, "polyMesh")
}

// FieldPath returns the path to the field called name at time t.
func (c *Case) FieldPath(name string, t Instant) string {
	return filepath.Join(c.Root, t.Name, c.Region, name)
}

// Times returns every time directory in the case, sorted by value.
func (c *Case) Times() ([]Instant, error) {
	entries, err := os.ReadDir(c.Root)
	if err != nil {
		return nil, fmt.Errorf("Could not list the time directories of the "+
			"case %s: %w", c.Root, err)
	}

	times := []Instant{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		x, err := strconv.ParseFloat(e.Name(), 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		times = append(times, Instant{Name: e.Name(), Value: x})
	}

	sort.SliceStable(times, func(i, j int) bool {
		return times[i].Value < times[j].Value
	})
	return times, nil
}

// readFile returns the contents of the file fname, falling back to fname.gz
// if fname does not exist. The name of the file that was actually read is
// also returned.
func readFile(fname string) ([]byte, string, error) {
	b, err := os.ReadFile(fname)
	if err == nil {
		return b, fname, nil
	} else if !os.IsNotExist(err) {
		return nil, fname, err
	}

	gzPath := fname + ".gz"
	f, gzErr := os.Open(gzPath)
	if gzErr != nil {
		// Report the missing uncompressed file, not the .gz.
		return nil, fname, err
	}
	defer f.Close()

	rd, err := gzip.NewReader(f)
	if err != nil {
		return nil, gzPath, err
	}
	defer rd.Close()

	b, err = io.ReadAll(rd)
	if err != nil {
		return nil, gzPath, err
	}
	return b, gzPath, nil
}

// ReadMesh reads the case's polyMesh and computes its geometry.
func (c *Case) ReadMesh() (*Mesh, error) {
	dir := c.MeshDir()

	b, name, err := readFile(filepath.Join(dir, "points"))
	if err != nil {
		return nil, meshError(dir, err)
	}
	points, err := ParsePoints(name, b)
	if err != nil {
		return nil, meshError(dir, err)
	}

	b, name, err = readFile(filepath.Join(dir, "faces"))
	if err != nil {
		return nil, meshError(dir, err)
	}
	faces, err := ParseFaces(name, b)
	if err != nil {
		return nil, meshError(dir, err)
	}

	addressing := [2][]int{}
	for i, file := range []string{"owner", "neighbour"} {
		b, name, err = readFile(filepath.Join(dir, file))
		if err != nil {
			return nil, meshError(dir, err)
		}
		addressing[i], err = ParseLabels(name, b)
		if err != nil {
			return nil, meshError(dir, err)
		}
	}

	b, name, err = readFile(filepath.Join(dir, "boundary"))
	if err != nil {
		return nil, meshError(dir, err)
	}
	patches, err := ParseBoundary(name, b)
	if err != nil {
		return nil, meshError(dir, err)
	}

	m, err := NewMesh(points, faces, addressing[0], addressing[1], patches)
	if err != nil {
		return nil, meshError(dir, err)
	}
	return m, nil
}

func meshError(dir string, err error) error {
	return fmt.Errorf("Could not read the mesh in %s: %w", dir, err)
}

// ReadVectorField reads the volVectorField called name at time t. The field
// must contain exactly nCells values. All errors are *g_error.FieldReadError.
func (c *Case) ReadVectorField(
	name string, t Instant, nCells int,
) (*VectorField, error) {
	b, fname, err := readFile(c.FieldPath(name, t))
	if err != nil {
		return nil, &g_error.FieldReadError{
			Field: name, Time: t.Name, Path: fname, Err: err,
		}
	}

	f, err := ParseVectorField(fname, b, nCells)
	if err != nil {
		return nil, &g_error.FieldReadError{
			Field: name, Time: t.Name, Path: fname, Err: err,
		}
	}

	return f, nil
}

// WriteVectorField writes f into the time directory t. All errors are
// *g_error.OutputWriteError.
func (c *Case) WriteVectorField(f *VectorField, t Instant, format Format) error {
	fname := c.FieldPath(f.Name, t)
	location := path.Join(t.Name, c.Region)

	err := writeFile(fname, func(wr *bufio.Writer) {
		WriteVectorField(wr, f, location, format)
	})
	if err != nil {
		return &g_error.OutputWriteError{Path: fname, Err: err}
	}
	return nil
}

// WriteMesh writes m to the case's polyMesh directory.
func (c *Case) WriteMesh(m *Mesh, format Format) error {
	dir := c.MeshDir()
	location := path.Join("constant", c.Region, "polyMesh")

	faceClass := "faceList"
	if format == Binary {
		faceClass = "faceCompactList"
	}

	files := []struct {
		object, class string
		body          func(wr *bufio.Writer, hd *Header)
	}{
		{"points", "vectorField", func(wr *bufio.Writer, hd *Header) {
			writeVectorList(wr, hd, m.Points)
		}},
		{"faces", faceClass, func(wr *bufio.Writer, hd *Header) {
			writeFaceList(wr, hd, m.Faces)
		}},
		{"owner", "labelList", func(wr *bufio.Writer, hd *Header) {
			writeLabelList(wr, hd, m.Owner)
		}},
		{"neighbour", "labelList", func(wr *bufio.Writer, hd *Header) {
			writeLabelList(wr, hd, m.Neighbour)
		}},
		{"boundary", "polyBoundaryMesh", func(wr *bufio.Writer, hd *Header) {
			writeBoundary(wr, m.Patches)
		}},
	}

	for _, file := range files {
		hd := newWriteHeader(format, file.class, location, file.object)
		if file.object == "boundary" {
			// Boundary files are always ascii.
			hd.Format = ASCII
		}
		err := writeFile(filepath.Join(dir, file.object),
			func(wr *bufio.Writer) {
				writeHeader(wr, hd)
				file.body(wr, hd)
				wr.WriteString(footer)
			})
		if err != nil {
			return fmt.Errorf("Could not write the mesh to %s: %w", dir, err)
		}
	}

	return nil
}

// writeFile creates the file at fname, including its parent directories,
// and fills it with body.
func writeFile(fname string, body func(wr *bufio.Writer)) error {
	if err := os.MkdirAll(filepath.Dir(fname), 0755); err != nil {
		return err
	}
	f, err := os.Create(fname)
	if err != nil {
		return err
	}

	wr := bufio.NewWriter(f)
	body(wr)
	if err := wr.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteFormat returns the writeFormat entry of the case's
// system/controlDict, which is the format OpenFOAM writes fields in. ASCII is
// returned if the case has no controlDict or the entry is missing.
func (c *Case) WriteFormat() (Format, error) {
	b, fname, err := readFile(filepath.Join(c.Root, "system", "controlDict"))
	if os.IsNotExist(err) {
		return ASCII, nil
	} else if err != nil {
		return ASCII, err
	}

	t := newTokenizer(fname, b)
	if _, err := readHeader(t); err != nil {
		return ASCII, err
	}

	for {
		tok, err := t.next()
		if err != nil {
			return ASCII, err
		}

		switch {
		case tok.kind == eofToken:
			return ASCII, nil
		case tok.kind == wordToken && strings.HasPrefix(tok.text, "#"):
			t.skipLine()
		case tok.kind == wordToken && tok.text == "writeFormat":
			value, err := t.readValue()
			if err != nil {
				return ASCII, err
			}
			format, err := ParseFormat(joinTokens(value))
			if err != nil {
				return ASCII, fmt.Errorf("%s: %s", fname, err.Error())
			}
			return format, nil
		default:
			if err := t.skipValue(); err != nil {
				return ASCII, err
			}
		}
	}
}
