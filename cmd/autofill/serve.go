package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/v0xg/autofill/internal/messaging"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve <url>",
		Short: "Open a page and serve the message API for it",
		Long: `serve opens the page and accepts requests on POST /api/v1/messages.
Element selection events are streamed on the /api/v1/events websocket.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = cfg.Server.Addr
			}

			var deps messaging.Deps
			if prov, err := newProvider(ctx); err != nil {
				logger.Warn("generateFormData is disabled", zap.Error(err))
			} else {
				deps.Provider = prov
			}
			store, err := openHistory()
			if err != nil {
				return err
			}
			deps.History = store

			s, err := openSession(ctx, args[0], deps)
			if err != nil {
				return err
			}
			defer s.Close()

			srv := messaging.NewServer(s.dispatcher, s.picker, logger)
			fmt.Printf("✓ Serving on http://%s/api/v1 (Ctrl+C to stop)\n", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: from config)")
	return cmd
}
