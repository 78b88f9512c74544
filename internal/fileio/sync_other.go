//go:build !linux && !darwin

package fileio

import "os"

func datasync(f *os.File) error {
	return f.Sync()
}
