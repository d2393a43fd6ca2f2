//go:build !unix

package lib

import (
	"os"
)

// writable returns an error if the current user can't create files in dir.
func writable(dir string) error {
	f, err := os.CreateTemp(dir, ".foamtonumpy-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
