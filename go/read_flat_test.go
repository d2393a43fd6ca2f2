package read_flat

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/foamtonumpy/lib/flat"
	"github.com/phil-mansfield/foamtonumpy/lib/foamio"
	"github.com/phil-mansfield/foamtonumpy/lib/format"
)

// convertCase converts a 4x3x2 cavity with U = (i, 2i, -t) and returns the
// output directory and the mesh.
func convertCase(t *testing.T, times ...string) (string, *foamio.Mesh) {
	c := foamio.NewCase(t.TempDir(), "")
	m, err := foamio.WriteHexCase(c, [3]int{4, 3, 2}, [3]float64{4, 3, 2},
		foamio.ASCII)
	require.NoError(t, err)

	for j, name := range times {
		u := make([]r3.Vec, m.NCells())
		for i := range u {
			u[i] = r3.Vec{X: float64(i), Y: float64(2 * i), Z: -float64(j)}
		}
		require.NoError(t, foamio.WriteFakeField(c, m, "U",
			foamio.Instant{Name: name}, u, foamio.ASCII))
	}

	available, err := c.Times()
	require.NoError(t, err)
	sel, err := format.Select("", available, false, false)
	require.NoError(t, err)

	out := t.TempDir()
	require.NoError(t, flat.Run(c, sel, flat.Options{OutDir: out}, nil))
	return out, m
}

func TestReadN(t *testing.T) {
	out, m := convertCase(t, "0")

	n, err := ReadN(FileName(out, "U", "0"))
	require.NoError(t, err)
	assert.Equal(t, m.NCells(), n)

	bad := filepath.Join(out, "bad.bin")
	require.NoError(t, os.WriteFile(bad, make([]byte, 13), 0644))
	_, err = ReadN(bad)
	assert.Error(t, err)

	_, err = ReadN(filepath.Join(out, "missing.bin"))
	assert.Error(t, err)
}

func TestReadVar(t *testing.T) {
	out, m := convertCase(t, "0", "2")
	n := m.NCells()
	fname := FileName(out, "U", "2")

	InitWorkers(2)

	vecs := make([][3]float32, n)
	require.NoError(t, ReadVar(fname, 0, vecs))
	xs := make([]float32, 3*n)
	require.NoError(t, ReadVar(fname, -1, xs))

	for i := 0; i < n; i++ {
		exp := [3]float32{float32(i), float32(2 * i), -1}
		assert.Equal(t, exp, vecs[i], "cell %d", i)
		assert.Equal(t, exp[:], xs[3*i:3*i+3], "cell %d", i)
	}

	assert.Error(t, ReadVar(fname, 1, make([][3]float32, n+1)))
	assert.Error(t, ReadVar(FileName(out, "U", "5"), 1, vecs))
	assert.Panics(t, func() { ReadVar(fname, 2, vecs) })
	assert.Panics(t, func() { ReadVar(fname, 0, make([]float64, 3*n)) })
}

func TestReadVarConcurrent(t *testing.T) {
	out, m := convertCase(t, "0", "1", "2", "3")
	n := m.NCells()
	names := []string{"0", "1", "2", "3"}

	nWorkers := 2
	InitWorkers(nWorkers)

	bufs := make([][][3]float32, 4*len(names))
	errs := make([]error, len(bufs))
	wg := sync.WaitGroup{}
	for k := range bufs {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			bufs[k] = make([][3]float32, n)
			fname := FileName(out, "U", names[k%len(names)])
			errs[k] = ReadVar(fname, k%nWorkers, bufs[k])
		}(k)
	}
	wg.Wait()

	for k := range bufs {
		require.NoError(t, errs[k])
		j := k % len(names)
		for i := 0; i < n; i++ {
			assert.Equal(t, float32(-j), bufs[k][i][2], "buffer %d, cell %d", k, i)
		}
	}
}

func TestReadTime(t *testing.T) {
	out, m := convertCase(t, "0")

	u, cellC, err := ReadTime(out, "0", -1)
	require.NoError(t, err)
	require.Len(t, u, m.NCells())
	require.Len(t, cellC, m.NCells())

	for i, c := range m.CellCentres() {
		assert.Equal(t, [3]float32{float32(i), float32(2 * i), 0}, u[i])
		assert.InDelta(t, c.X, cellC[i][0], 1e-6)
		assert.InDelta(t, c.Y, cellC[i][1], 1e-6)
		assert.InDelta(t, c.Z, cellC[i][2], 1e-6)
	}

	// Mismatched files.
	require.NoError(t, os.WriteFile(FileName(out, "cellC", "0"),
		make([]byte, 12), 0644))
	_, _, err = ReadTime(out, "0", -1)
	assert.Error(t, err)

	_, _, err = ReadTime(out, "1", -1)
	assert.Error(t, err)
}
