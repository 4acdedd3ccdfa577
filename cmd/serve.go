package cmd

import (
	"github.com/spf13/cobra"

	"loom/internal/app"
)

// newServeCmd creates the command that loads the components root and
// serves it over MCP.
func newServeCmd() *cobra.Command {
	var (
		transport string
		host      string
		port      int
		dev       bool
		strict    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the components directory over MCP",
		Long: `Serve loads every component descriptor under the components root,
registers them, and serves the result over the configured MCP
transport. With --dev, descriptor files are watched and reloaded on
change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.Bootstrap(cmd.Context(), app.Options{
				ComponentsRoot: rootComponentsDir,
				Transport:      transport,
				Host:           host,
				Port:           port,
				Dev:            dev,
				StrictSchemas:  strict,
			})
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "Transport to serve on (stdio, sse, streamable-http)")
	cmd.Flags().StringVar(&host, "host", "", "Host to bind to")
	cmd.Flags().IntVar(&port, "port", 0, "Port to bind to")
	cmd.Flags().BoolVar(&dev, "dev", false, "Watch descriptor files and hot-reload on change")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat missing output-schema files as errors")

	return cmd
}
