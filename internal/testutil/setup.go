package testutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

// SetupFixture copies a repository fixture into a fresh temporary directory
// and returns the copy's path, so tests may modify it freely.
// Calls t.Skip if the fixture is not found.
//
// Example:
//
//	path := testutil.SetupFixture(t, testutil.SampleConfig)
func SetupFixture(t *testing.T, fixture string) string {
	t.Helper()
	src := ResolvePath(t, fixture)
	dst := filepath.Join(t.TempDir(), filepath.Base(fixture))
	copyFile(t, src, dst)
	return dst
}

// WriteTemp writes data to name inside a fresh temporary directory and
// returns the full path.
func WriteTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// ResolvePath finds a fixture given relative to the repository root, from
// whichever package directory the test runs in.
func ResolvePath(t *testing.T, relativePath string) string {
	t.Helper()

	candidates := []string{
		relativePath,
		"../" + relativePath,
		"../../" + relativePath,
		"../../../" + relativePath,
		"../../../../" + relativePath,
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	t.Skipf("Fixture not found at any candidate path starting from: %s", relativePath)
	return ""
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()

	in, err := os.Open(src)
	if err != nil {
		t.Skipf("Fixture not found: %v", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		t.Fatalf("Failed to copy fixture: %v", err)
	}
}
