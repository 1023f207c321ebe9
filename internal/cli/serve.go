package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/heatmap/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		maxPoints int
		bgDir     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the heatmap HTTP API",
		Long: `Serve runs the HTTP API until interrupted:

  GET  /healthz
  POST /v1/heatmaps   {"points": [...], "options": {...}} -> image
  POST /v1/grids      {"points": [...], "options": {...}} -> grid JSON

Requests share the cache selected by --redis, --no-cache or the config file.
A request may name a background image only when --background-dir is set; the
path is resolved inside that directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner,
				server.WithMaxPoints(maxPoints),
				server.WithBackgroundDir(bgDir),
			)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&maxPoints, "max-points", server.DefaultMaxPoints, "maximum points per request")
	cmd.Flags().StringVar(&bgDir, "background-dir", "", "directory requests may load background images from")

	return cmd
}
