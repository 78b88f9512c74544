package main

import (
	"fmt"
	"runtime/debug"

	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
	"github.com/spf13/cobra"
)

// Set by the release build through -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type versionInfo struct {
	Version    string   `json:"version"`
	Commit     string   `json:"commit"`
	Built      string   `json:"built"`
	GoVersion  string   `json:"go_version,omitempty"`
	Geometries []string `json:"geometries"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information and the built-in geometries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func currentVersion() versionInfo {
	info := versionInfo{Version: version, Commit: commit, Built: date, Geometries: geometry.Names()}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		if info.Commit == "none" {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					info.Commit = s.Value
				}
			}
		}
	}
	return info
}

func runVersion() error {
	info := currentVersion()
	if jsonOut {
		return printJSON(info)
	}
	fmt.Printf("aperturectl %s\n", info.Version)
	fmt.Printf("  commit: %s\n", info.Commit)
	fmt.Printf("  built: %s\n", info.Built)
	if info.GoVersion != "" {
		fmt.Printf("  go: %s\n", info.GoVersion)
	}
	fmt.Printf("  geometries: %v\n", info.Geometries)
	return nil
}
