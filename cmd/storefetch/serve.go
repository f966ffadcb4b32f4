package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/storefetch/internal/infrastructure/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		host string
		port string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and download progress stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if host != "" {
				a.cfg.Server.Host = host
			}
			if port != "" {
				a.cfg.Server.Port = port
			}

			srv := server.NewServer(a.cfg, a.logger, a.wire())
			defer func() {
				if err := srv.Close(); err != nil {
					a.logger.Error("close failed", zap.Error(err))
				}
			}()
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (default from HOST)")
	cmd.Flags().StringVar(&port, "port", "", "listen port (default from PORT)")

	return cmd
}
