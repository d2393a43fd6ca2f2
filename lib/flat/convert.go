/*package flat converts the velocity field and cell centres of an OpenFOAM case
into flat binary files that can be read with, e.g., numpy.fromfile():

   U_flat_<time>.bin
   cellC_flat_<time>.bin

Each file holds 3*n float32 values in system byte order, [x0, y0, z0, x1, ...],
where n is the number of cells in the mesh. There is no header. Index i of
both files refers to the same cell.
*/
package flat

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	g_error "github.com/phil-mansfield/foamtonumpy/lib/error"
	"github.com/phil-mansfield/foamtonumpy/lib/foamio"
	"github.com/phil-mansfield/foamtonumpy/lib/format"
)

// Options controls how a case is converted.
type Options struct {
	// OutDir is the directory the .bin files are written to.
	OutDir string
	// WriteCellCentres writes the cellC field into each converted time
	// directory of the case.
	WriteCellCentres bool
}

// Converter converts single time steps of a case. The mesh is assumed to be
// static, so cell centres are only computed once.
type Converter struct {
	c      *foamio.Case
	mesh   *foamio.Mesh
	opts   Options
	log    *log.Logger
	format foamio.Format

	cellC      *foamio.VectorField
	uBuf, cBuf *Buffer
}

// OutputName returns the name of the .bin file that field is written to at
// time t.
func OutputName(field string, t foamio.Instant) string {
	return fmt.Sprintf("%s_flat_%s.bin", field, t.Name)
}

// NewConverter creates a Converter for the case c with the mesh m. Progress
// messages are written to logger, which may be nil.
func NewConverter(
	c *foamio.Case, m *foamio.Mesh, opts Options, logger *log.Logger,
) (*Converter, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	conv := &Converter{
		c: c, mesh: m, opts: opts, log: logger, format: foamio.ASCII,
		cellC: m.CellCentreField(),
		uBuf:  NewBuffer(m.NCells()), cBuf: NewBuffer(m.NCells()),
	}

	if opts.WriteCellCentres {
		var err error
		conv.format, err = c.WriteFormat()
		if err != nil {
			return nil, err
		}
	}

	return conv, nil
}

// Flatten interleaves u and centres into uBuf and cBuf in a single pass. All
// four arguments must have the same length.
func Flatten(u, centres []r3.Vec, uBuf, cBuf *Buffer) {
	if len(u) != len(centres) || len(u) != uBuf.Len() || len(u) != cBuf.Len() {
		g_error.Internal("Flatten() was given %d velocities, %d cell "+
			"centres, and buffers of length %d and %d.",
			len(u), len(centres), uBuf.Len(), cBuf.Len())
	}

	for i := range u {
		uBuf.Set(i, u[i])
		cBuf.Set(i, centres[i])
	}
}

// ConvertFrame converts the time step t. If any output file can't be
// written, every .bin file created for t is removed and a
// *g_error.OutputWriteError is returned. A missing or malformed U field
// results in a *g_error.FieldReadError.
func (conv *Converter) ConvertFrame(t foamio.Instant) error {
	conv.log.Printf("Time = %s", t.Name)

	conv.log.Printf("    Reading field U")
	u, err := conv.c.ReadVectorField("U", t, conv.mesh.NCells())
	if err != nil {
		return err
	}

	Flatten(u.Internal, conv.cellC.Internal, conv.uBuf, conv.cBuf)

	outputs := []struct {
		field string
		buf   *Buffer
	}{
		{"U", conv.uBuf},
		{"cellC", conv.cBuf},
	}

	written := []string{}
	for _, out := range outputs {
		fname := filepath.Join(conv.opts.OutDir, OutputName(out.field, t))
		conv.log.Printf("    Writing %s", fname)

		if err := out.buf.Write(fname); err != nil {
			for _, prev := range written {
				os.Remove(prev)
			}
			return &g_error.OutputWriteError{Path: fname, Err: err}
		}
		written = append(written, fname)
	}

	if conv.opts.WriteCellCentres {
		conv.log.Printf("    Writing cellC to %s",
			conv.c.FieldPath(conv.cellC.Name, t))
		if err := conv.c.WriteVectorField(conv.cellC, t, conv.format); err != nil {
			return err
		}
	}

	conv.log.Println()
	return nil
}

// Run reads the mesh of c and converts every time step in sel, in order. It
// stops at the first error. Files written for earlier time steps are left in
// place.
func Run(
	c *foamio.Case, sel format.Selection, opts Options, logger *log.Logger,
) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	logger.Printf("Reading mesh from %s", c.MeshDir())
	m, err := c.ReadMesh()
	if err != nil {
		return err
	}
	logger.Printf("    %d cells, %d faces, %d patches",
		m.NCells(), len(m.Faces), len(m.Patches))
	logger.Println()

	conv, err := NewConverter(c, m, opts, logger)
	if err != nil {
		return err
	}

	for _, t := range sel {
		if err := conv.ConvertFrame(t); err != nil {
			return err
		}
	}

	logger.Println("End")
	return nil
}
