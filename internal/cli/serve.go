package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-storefront/server"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront gateway for browsers",
		Long: `Serves the storefront JSON gateway. Each browser gets its own storage
profile through a cookie; the tenant comes from the request host or the
X-Storefront-Tenant header.`,
		Example: `  storefront serve
  storefront serve --addr :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.GetPort()
			}

			displayAppname(a.cfg.GetAppName())
			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(a.cfg, db, a.client()),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return listenUntilDone(cmd.Context(), srv)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $PORT)")
	return cmd
}

// listenUntilDone serves until ctx is cancelled, then shuts srv down.
func listenUntilDone(ctx context.Context, srv *http.Server) error {
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "server.Shutdown")
		}
		log.Info().Msg("server stopped")
		return nil
	case err := <-serverErr:
		return errors.Wrap(err, "server.ListenAndServe")
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
