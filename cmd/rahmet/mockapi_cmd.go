package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/rahmet/internal/app"
)

func newMockAPICmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mock-api",
		Short: "Запустить локальный API ресторанов с демо-данными",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.cfg
			if addr != "" {
				cfg.MockAddr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.RunMockAPI(ctx, cfg, c.logger.WithField("component", "mock-api"))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides mock_addr)")
	return cmd
}
