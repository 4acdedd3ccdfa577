package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"loom/internal/component"
	"loom/internal/generator"
)

// newGenerateCmd creates the scaffolding command. It writes a component
// descriptor and a matching conformance check file.
func newGenerateCmd() *cobra.Command {
	var (
		description string
		paramsPath  string
		testsDir    string
		dryRun      bool
		overwrite   bool
		readOnly    bool
		destructive bool
		idempotent  bool
		uri         string
		withSchema  bool
		kind        string
	)

	cmd := &cobra.Command{
		Use:   "generate <category> <name>",
		Short: "Scaffold a new component and its conformance check",
		Long: `Generate renders a component descriptor and a conformance check file
for the given category (capability, resource, template, interceptor).
Parameter declarations are read from a YAML file passed via --params;
every declared type is validated before anything is written.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, ok := component.ParseCategory(args[0])
			if !ok {
				return fmt.Errorf("unknown category %q (valid: capability, resource, template, interceptor)", args[0])
			}

			result, err := generator.Generate(generator.Options{
				Category:       category,
				Name:           args[1],
				Description:    description,
				SpecPath:       paramsPath,
				ComponentsRoot: rootComponentsDir,
				TestsRoot:      testsDir,
				DryRun:         dryRun,
				Overwrite:      overwrite,
				ReadOnly:       readOnly,
				Destructive:    destructive,
				Idempotent:     idempotent,
				URI:            uri,
				WithSchema:     withSchema,
				Kind:           kind,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "# %s\n%s\n", result.ComponentPath, result.ComponentText)
				fmt.Fprintf(out, "# %s\n%s", result.TestPath, result.TestText)
				return nil
			}
			fmt.Fprintf(out, "Generated %s\n", result.ComponentPath)
			fmt.Fprintf(out, "Generated %s\n", result.TestPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Component description")
	cmd.Flags().StringVar(&paramsPath, "params", "", "YAML file declaring the component's parameters")
	cmd.Flags().StringVar(&testsDir, "tests-dir", "", "Directory for check files (default: tests/ next to the components root)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the rendered files instead of writing them")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Mark the capability as read-only")
	cmd.Flags().BoolVar(&destructive, "destructive", false, "Mark the capability as destructive")
	cmd.Flags().BoolVar(&idempotent, "idempotent", false, "Mark the capability as idempotent")
	cmd.Flags().StringVar(&uri, "uri", "", "Resource URI (default: resource://<name>)")
	cmd.Flags().BoolVar(&withSchema, "with-schema", false, "Include the output-schema block in a template")
	cmd.Flags().StringVar(&kind, "kind", "", "Interceptor kind (logging, timing, recovery)")

	return cmd
}
