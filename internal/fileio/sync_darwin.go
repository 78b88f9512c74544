//go:build darwin

package fileio

import (
	"os"

	"golang.org/x/sys/unix"
)

// datasync uses F_FULLFSYNC so the drive cache is flushed too.
func datasync(f *os.File) error {
	_, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0)
	return err
}
