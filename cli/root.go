// Package cli implements the ossa-export CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool

	appVersion = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "ossa-export",
	Short: "ossa-export — turn OSSA agent manifests into runnable LangChain projects",
	Long:  "ossa-export validates OSSA agent manifests and exports them as complete LangChain/FastAPI projects with tools, memory, streaming transports and a pytest suite.",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
}

// SetVersionInfo sets the version and commit for display.
func SetVersionInfo(version, commit string) {
	appVersion = version
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("ossa-export %s (commit: %s)\n", version, commit))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the CLI logger: human-readable debug output when
// --verbose is set, silent otherwise.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
