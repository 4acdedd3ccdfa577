package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"loom/internal/component"
	"loom/internal/formatting"
	"loom/internal/loader"
	"loom/internal/registry"
)

// newListCmd creates the command that loads the components root offline
// and prints what would be registered.
func newListCmd() *cobra.Command {
	var (
		outputFormat string
		categoryName string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the components under the components root",
		Long: `List imports every descriptor under the components root without
starting a server and prints the resulting registrations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := formatting.ParseFormat(outputFormat)
			if err != nil {
				return err
			}

			reg := registry.New(registry.DefaultPolicy)
			defer reg.Close()

			ldr := loader.New(rootComponentsDir, reg, loader.Options{})
			if _, err := ldr.LoadAll(cmd.Context()); err != nil {
				return err
			}

			snapshot := reg.Snapshot()
			if categoryName != "" {
				category, ok := component.ParseCategory(categoryName)
				if !ok {
					return fmt.Errorf("unknown category %q", categoryName)
				}
				snapshot = map[component.Category][]*component.Record{
					category: snapshot[category],
				}
			}

			return formatting.WriteComponents(cmd.OutOrStdout(), format, formatting.Rows(snapshot))
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	cmd.Flags().StringVar(&categoryName, "category", "", "Limit output to one category")

	return cmd
}
