package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ConchuOD/memory-aperature-configurator/internal/logger"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/compiler"
	"github.com/ConchuOD/memory-aperature-configurator/pkg/geometry"
)

var (
	// Global flags
	verbose      bool
	quiet        bool
	jsonOut      bool
	geometryName string
	logDir       string

	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "aperturectl",
	Short: "Compile memory-access policies into aperture control registers",
	Long: `aperturectl turns a memory-access policy (which bus masters may read,
write or execute which address ranges) into the exact words of the
hardware's aperture control registers, and decodes register images back
into policies. It also inspects and edits the PolarFire SoC DDR apertures.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging(verbose)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVarP(&geometryName, "geometry", "g", "", "Geometry preset (default: from the document, else \"default\")")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write logs to dated files in this directory")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// initLogging enables the global logger when verbose output or a log
// directory was requested.
func initLogging(enabled bool) error {
	if err := closeLog(); err != nil {
		return err
	}
	closeFn, err := logger.Init(logger.Options{
		Enabled: enabled || logDir != "",
		Level:   slog.LevelDebug,
		LogDir:  logDir,
	})
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	closeLog = closeFn
	return nil
}

// newCompiler returns a compiler for g that logs through the global logger.
func newCompiler(g geometry.Geometry) *compiler.Compiler {
	return compiler.New(g, compiler.WithLogger(logger.L))
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
