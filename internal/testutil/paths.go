package testutil

// Fixture paths relative to the repository root.
const (
	// SampleConfig is a small policy document for the default geometry.
	SampleConfig = "testdata/configs/sample.yaml"

	// MPFSConfig is a policy document for the mpfs geometry.
	MPFSConfig = "testdata/configs/mpfs.yaml"

	// LegacyConfig is SampleConfig re-encoded as Windows-1252 with a
	// non-ASCII comment.
	LegacyConfig = "testdata/configs/legacy-cp1252.yaml"

	// IcicleDTB is a flattened device tree with two memory nodes totalling
	// 2 GiB and one disabled node.
	IcicleDTB = "testdata/dtb/icicle.dtb"
)
