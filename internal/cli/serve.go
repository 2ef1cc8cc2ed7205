package cli

import (
	"github.com/spf13/cobra"

	"github.com/siteworks/drawalign/pkg/api"
	"github.com/siteworks/drawalign/pkg/session"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the alignment HTTP API",
		Long: `Serve the alignment HTTP API: stateless transform math, saved alignments
for the configured store, and server-side alignment sessions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			s, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			srv := api.New(api.Options{
				Store:    s,
				Sessions: session.NewRegistry(c.cfg.Server.SessionTTL.Duration, c.cfg.Align.Tolerance),
				Align:    c.cfg.Align,
				Logger:   c.Logger,
			})
			c.Logger.Info("store ready", "backend", c.cfg.Store.Backend)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}
