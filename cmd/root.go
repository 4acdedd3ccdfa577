// Package cmd implements the loom command line interface.
package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"loom/internal/server"
	"loom/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodeChecksFailed indicates one or more conformance checks failed.
	ExitCodeChecksFailed = 2
)

var (
	rootComponentsDir string
	rootLogLevel      string
	rootJSONLogs      bool
)

// rootCmd is the entry point when loom is called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "loom",
	Short: "Serve declarative MCP components",
	Long: `loom turns a directory of YAML component descriptors into a running
MCP server: capabilities become tools, templates become prompts, and
resources become resources. It also scaffolds new components and runs
their conformance checks.`,
	// SilenceUsage keeps error output clean; usage is still available
	// via --help.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.ParseLevel(rootLogLevel), os.Stderr, rootJSONLogs)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootComponentsDir, "components", "components", "Path to the components root directory")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&rootJSONLogs, "log-json", false, "Emit logs as JSON")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// SetVersion sets the version for the root command. Called from main with
// the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
	server.Version = v
}

// Execute runs the CLI and exits with a semantic exit code.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "loom version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

func getExitCode(err error) int {
	if errors.Is(err, errChecksFailed) {
		return ExitCodeChecksFailed
	}
	return ExitCodeError
}
