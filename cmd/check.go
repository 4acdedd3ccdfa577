package cmd

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"loom/internal/conformance"
	"loom/internal/formatting"
	"loom/internal/loader"
	"loom/internal/registry"
)

// errChecksFailed maps to a dedicated exit code so scripts can tell a
// failed check from a broken invocation.
var errChecksFailed = errors.New("one or more checks failed")

// newCheckCmd creates the command that loads the components root and runs
// the conformance check documents against it.
func newCheckCmd() *cobra.Command {
	var (
		testsDir     string
		outputFormat string
		strict       bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run conformance checks against the components directory",
		Long: `Check imports every descriptor under the components root, then runs
the check documents under the tests directory against the resulting
registry. Each document names a component, optional arguments, and the
expectations to assert.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := formatting.ParseFormat(outputFormat)
			if err != nil {
				return err
			}

			reg := registry.New(registry.DefaultPolicy)
			defer reg.Close()

			ldr := loader.New(rootComponentsDir, reg, loader.Options{StrictSchemas: strict})
			if _, err := ldr.LoadAll(cmd.Context()); err != nil {
				return err
			}

			if testsDir == "" {
				testsDir = filepath.Join(filepath.Dir(filepath.Clean(rootComponentsDir)), "tests")
			}

			runner := conformance.NewRunner(reg)
			results, err := runner.RunDir(cmd.Context(), testsDir)
			if err != nil {
				return err
			}

			allPassed, err := formatting.WriteCheckResults(cmd.OutOrStdout(), format, results)
			if err != nil {
				return err
			}
			if !allPassed {
				return errChecksFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&testsDir, "tests-dir", "", "Directory holding check files (default: tests/ next to the components root)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat missing output-schema files as errors")

	return cmd
}
