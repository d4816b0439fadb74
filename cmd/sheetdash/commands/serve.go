package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sheetdash/internal/api"
)

var openBrowser bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API, exports and metrics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           api.NewServer(a.service, a.resolver, a.metrics, api.Options{RequestTimeout: 2 * cfg.FetchTimeout}).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ln, err := net.Listen("tcp", cfg.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
		}
		log.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")

		if openBrowser {
			url := dashboardURL(ln.Addr())
			if err := browser.OpenURL(url); err != nil {
				log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
			}
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Serve(ln) }()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func dashboardURL(addr net.Addr) string {
	host := "localhost"
	port := ""
	if tcp, ok := addr.(*net.TCPAddr); ok {
		if !tcp.IP.IsUnspecified() {
			host = tcp.IP.String()
		}
		port = fmt.Sprint(tcp.Port)
	}
	return fmt.Sprintf("http://%s/api/dashboard", net.JoinHostPort(host, port))
}

func init() {
	serveCmd.Flags().BoolVar(&openBrowser, "open", false, "open the dashboard in the default browser")
}
