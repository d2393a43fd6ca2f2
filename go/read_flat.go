/*package read_flat provides several functions for reading the .bin files
written by foamtonumpy.*/
package read_flat

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/phil-mansfield/foamtonumpy/lib"
)

var (
	workers []*worker
	mutexes []*sync.Mutex
)

// worker contains various buffers which prevent excess heap allocations
// when reading files.
type worker struct {
	b []byte
}

// newWorker creates a blank worker object that can be used for reading.
func newWorker() *worker {
	return &worker{b: []byte{}}
}

func getWorker(workerID int) *worker {
	if workerID == -1 {
		return newWorker()
	} else if workerID < -1 || workerID >= len(workers) {
		panic(fmt.Sprintf("Cannot use worker %d for nWorkers = %d",
			workerID, len(workers)))
	} else {
		mutexes[workerID].Lock()
		return workers[workerID]
	}
}

func finishWorker(workerID int) {
	if workerID != -1 {
		mutexes[workerID].Unlock()
	}
}

// InitWorkers allocates nWorkers workers which can be passed to ReadVar.
func InitWorkers(nWorkers int) {
	workers = make([]*worker, nWorkers)
	mutexes = make([]*sync.Mutex, nWorkers)

	for i := 0; i < nWorkers; i++ {
		workers[i] = newWorker()
		mutexes[i] = &sync.Mutex{}
	}
}

// FileName returns the name of the file in dir holding field ("U" or
// "cellC") at the time with directory name t.
func FileName(dir, field, t string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_flat_%s.bin", field, t))
}

// ReadN returns the number of cells stored in a given file.
func ReadN(fileName string) (int, error) {
	info, err := os.Stat(fileName)
	if err != nil {
		return 0, err
	}
	if info.Size()%12 != 0 {
		return 0, fmt.Errorf("%s is %d bytes long, which isn't a multiple "+
			"of 12 (three float32 values per cell).", fileName, info.Size())
	}
	return int(info.Size() / 12), nil
}

// ReadVar reads the vectors stored in a given file. If you want to use one
// of the pre-allocated workers, you should give the integer ID of that worker
// (i.e. in the range [0, nWorkers)). ReadVar uses mutexes to make sure that
// same worker isn't being used simultaneously, so feel free to throw a zillion
// threads at the same worker. If you don't care about heap space, just set
// workerID to -1. The last argument is the buffer the vectors are written to.
//
// buf may either be a [][3]float32 with one element per cell or a []float32
// with three elements per cell, in the same layout as the file. Its length
// must match the file exactly.
func ReadVar(fileName string, workerID int, buf interface{}) error {
	var n int
	switch x := buf.(type) {
	case []float32:
		n = len(x)
	case [][3]float32:
		n = 3 * len(x)
	default:
		panic(fmt.Sprintf("ReadVar() given a buffer of type %T. Only "+
			"[]float32 and [][3]float32 are supported.", buf))
	}

	f, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() != 4*int64(n) {
		return fmt.Errorf("%s is %d bytes long, but the buffer passed to "+
			"ReadVar() holds %d float32 values (%d bytes).",
			fileName, info.Size(), n, 4*n)
	}

	worker := getWorker(workerID)
	defer finishWorker(workerID)

	if cap(worker.b) < 4*n {
		worker.b = make([]byte, 4*n)
	}
	worker.b = worker.b[:4*n]
	if _, err := io.ReadFull(f, worker.b); err != nil {
		return fmt.Errorf("Could not read %s: %s", fileName, err.Error())
	}

	switch x := buf.(type) {
	case []float32:
		lib.DecodeFloat32s(lib.SystemByteOrder(), worker.b, x)
	case [][3]float32:
		for i := range x {
			lib.DecodeFloat32s(lib.SystemByteOrder(), worker.b[12*i:12*i+12],
				x[i][:])
		}
	}

	return nil
}

// ReadTime reads the velocities and cell centres written for the time t into
// newly allocated buffers.
func ReadTime(dir, t string, workerID int) (u, cellC [][3]float32, err error) {
	uName, cName := FileName(dir, "U", t), FileName(dir, "cellC", t)

	n, err := ReadN(uName)
	if err != nil {
		return nil, nil, err
	}
	nc, err := ReadN(cName)
	if err != nil {
		return nil, nil, err
	}
	if n != nc {
		return nil, nil, fmt.Errorf("%s holds %d cells, but %s holds %d.",
			uName, n, cName, nc)
	}

	u, cellC = make([][3]float32, n), make([][3]float32, n)
	if err := ReadVar(uName, workerID, u); err != nil {
		return nil, nil, err
	}
	if err := ReadVar(cName, workerID, cellC); err != nil {
		return nil, nil, err
	}
	return u, cellC, nil
}
