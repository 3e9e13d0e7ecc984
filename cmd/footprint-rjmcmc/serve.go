package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/footprint-rjmcmc/internal/params"
	"github.com/ironsheep/footprint-rjmcmc/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var parallelism int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the extraction tools over MCP on stdin/stdout",
		Long: `Starts an MCP server speaking JSON-RPC 2.0 over stdin/stdout. Tool calls start
from the parameters resolved from --config and the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := root.config
			srv := server.New(root.logger,
				server.WithDefaults(func() (*params.Parameters, error) { return params.Load(config, nil) }),
				server.WithParallelism(parallelism),
			)
			root.logger.Info("serving MCP on stdio")
			return srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "chains run at once per extraction (0 = GOMAXPROCS)")
	return cmd
}
