package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackhealth/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health records over HTTP",
		Long: `Start the HTTP service.

  GET /healthz
  GET /v1/health?purl=pkg:npm/lodash@4.17.21[&refresh=true]
  GET /v1/health/last?purl=pkg:npm/lodash@4.17.21`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.settings().Server.Addr
			}
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(context.WithoutCancel(ctx)); err != nil {
			c.Logger.Warn("close runner", "err", err)
		}
	}()

	return server.New(runner, c.Logger).ListenAndServe(ctx, addr)
}
