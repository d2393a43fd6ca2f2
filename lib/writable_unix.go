//go:build unix

package lib

import (
	"golang.org/x/sys/unix"
)

// writable returns an error if the current user can't create files in dir.
func writable(dir string) error {
	return unix.Access(dir, unix.W_OK|unix.X_OK)
}
