//go:build !windows

package file

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockExclusive takes a non-blocking advisory exclusive lock on f, so a
// second process cannot open the same container file for writing at the
// same time. It is released automatically when the descriptor is closed.
func lockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}
