//go:build windows

package file

import "os"

// lockExclusive is a no-op on platforms without an advisory flock syscall;
// OneFS's correctness does not depend on it, it is a best-effort guard
// against two processes opening the same container for writing.
func lockExclusive(f *os.File) error {
	return nil
}
