package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConchuOD/memory-aperature-configurator/internal/config"
	"github.com/ConchuOD/memory-aperature-configurator/internal/testutil"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/types"
)

func TestCompileCommand(t *testing.T) {
	tests := []struct {
		name        string
		format      string
		json        bool
		wantContain []string
		wantJSON    bool
		wantErr     bool
	}{
		{
			name:        "yaml",
			format:      "yaml",
			wantContain: []string{"geometry: default", "registers:", "cpu0: [0x", "fabric: [0x0, 0x0"},
		},
		{
			name:        "json flag",
			format:      "yaml",
			json:        true,
			wantJSON:    true,
			wantContain: []string{`"master": "dma"`},
		},
		{
			name:        "hex",
			format:      "hex",
			wantContain: []string{"0000000000000000\n"},
		},
		{
			name:        "text",
			format:      "text",
			wantContain: []string{"geometry default: 4 masters x 8 slots", "1G rw- dram"},
		},
		{
			name:    "unknown format",
			format:  "xml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			compileFormat = tt.format
			jsonOut = tt.json

			path := testutil.ResolvePath(t, testutil.SampleConfig)
			output, err := captureOutput(t, func() error {
				return runCompile([]string{path})
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantJSON {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestCompileBinaryThenDecompile(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	image := filepath.Join(dir, "image.bin")

	compileFormat = "bin"
	compileOutput = image
	_, err := captureOutput(t, func() error {
		return runCompile([]string{testutil.ResolvePath(t, testutil.SampleConfig)})
	})
	require.NoError(t, err)

	data, err := os.ReadFile(image)
	require.NoError(t, err)
	assert.Len(t, data, geometry.Default().TotalSlots()*8)

	resetFlags()
	output, err := captureOutput(t, func() error {
		return runDecompile([]string{image})
	})
	require.NoError(t, err)
	assertContains(t, output, []string{
		"{base: 0x1000, size: 0x1000, perm: r--, target: dram, enabled: true}",
		"cpu1:",
		"{base: 0x10000000, size: 0x100000, perm: rw-, target: sram, enabled: false}",
		"fabric: []",
	})
}

func TestCompileInPlace(t *testing.T) {
	resetFlags()
	path := testutil.SetupFixture(t, testutil.SampleConfig)

	compileInPlace = true
	_, err := captureOutput(t, func() error { return runCompile([]string{path}) })
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := config.Decode(data)
	require.NoError(t, err)
	assert.Len(t, doc.Masters, 3)
	assert.Len(t, doc.Registers, 4)

	// The rewritten document resolves from its registers.
	resetFlags()
	output, err := captureOutput(t, func() error {
		return runResolve([]string{path, "cpu0", "0x1800"})
	})
	require.NoError(t, err)
	assert.Equal(t, "cpu0 @ 0x1800: slot 0 [0x1000, 0x2000) 4K r-- dram, access r--\n", output)
}

func TestCompileInPlaceConflicts(t *testing.T) {
	resetFlags()
	path := testutil.SetupFixture(t, testutil.SampleConfig)
	compileInPlace = true
	compileOutput = filepath.Join(t.TempDir(), "out.yaml")
	require.Error(t, runCompile([]string{path}))

	resetFlags()
	compileInPlace = true
	compileFormat = "bin"
	require.Error(t, runCompile([]string{path}))
}

func TestCompileMissingFileUsesDefaults(t *testing.T) {
	resetFlags()
	path := filepath.Join(t.TempDir(), "absent.yaml")
	output, err := captureOutput(t, func() error { return runCompile([]string{path}) })
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(output, ": [0x"))
}

func TestCompileRejectsIllegalRegion(t *testing.T) {
	resetFlags()
	path := testutil.WriteTemp(t, "bad.yaml", []byte("masters:\n  cpu0:\n    - {base: 0x1000, size: 0x3000}\n"))
	_, err := captureOutput(t, func() error { return runCompile([]string{path}) })
	require.ErrorIs(t, err, types.ErrIllegalRegion)
	require.ErrorIs(t, err, types.ErrIllegalSize)
}

func TestCompileGeometryMismatch(t *testing.T) {
	resetFlags()
	geometryName = geometry.NameMPFS
	_, err := captureOutput(t, func() error {
		return runCompile([]string{testutil.ResolvePath(t, testutil.SampleConfig)})
	})
	require.Error(t, err)
}

func TestDecompileInPlace(t *testing.T) {
	resetFlags()
	path := testutil.SetupFixture(t, testutil.SampleConfig)
	compileInPlace = true
	_, err := captureOutput(t, func() error { return runCompile([]string{path}) })
	require.NoError(t, err)

	// Drop the policy, keep the registers, then decode it back in.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := config.Decode(data)
	require.NoError(t, err)
	doc.Masters = nil
	data, err = config.Encode(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	resetFlags()
	decompileInPlace = true
	_, err = captureOutput(t, func() error { return runDecompile([]string{path}) })
	require.NoError(t, err)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	doc, err = config.Decode(data)
	require.NoError(t, err)
	assert.Len(t, doc.Masters, 4)
	assert.Len(t, doc.Registers, 4)
}

func TestDecompileRejectsMalformed(t *testing.T) {
	resetFlags()
	words := make([]uint64, geometry.Default().TotalSlots())
	words[0] = 1 << 63
	path := testutil.WriteTemp(t, "bad.bin", config.EncodeBinary(types.RegisterImage{Slots: words}))

	_, err := captureOutput(t, func() error { return runDecompile([]string{path}) })
	require.ErrorIs(t, err, types.ErrMalformedRegister)
}
