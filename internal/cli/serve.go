package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archtower/internal/server"
	"github.com/matzehuels/archtower/pkg/observability"
)

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		Long: `Serve the pipeline over HTTP.

Endpoints take a repository tree as their JSON body:
  POST /v1/analyze     analysis JSON
  POST /v1/nodes       filtered node list (?folder=, ?language=, ?type=)
  POST /v1/flowchart   positioned flowchart JSON
  POST /v1/dot         Graphviz source
  POST /v1/svg         rendered SVG
  GET  /healthz        build information

The server stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			observability.SetServerHooks(observability.NewLogHooks(c.Logger))

			srv := server.New(server.Options{
				Runner:       runner,
				Defaults:     c.pipelineOptions(),
				MaxBodyBytes: c.config.Server.MaxBodyBytes,
				Logger:       c.Logger,
			})
			printInfo("Listening on %s", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
