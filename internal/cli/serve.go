package cli

import (
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/server"
)

func newServeCommand(a *app) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browsing API over HTTP and WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port != "" {
				a.cfg.Server.Port = port
			}
			srv, err := server.NewServer(a.cfg, server.WithFileSystem(a.fs), server.WithLogger(a.log))
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}
