package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/slatebar/slate/cli"
	"github.com/slatebar/slate/config"
	"github.com/slatebar/slate/pkg/client"
)

// NewBridgeCmd creates the `bridge` command: the daemon sockets re-exposed
// over websockets for browser-based bar implementations.
func NewBridgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Expose daemon streams over websockets",
		Long: `Runs an HTTP server with one websocket endpoint per daemon
(/ws/time, /ws/display, /ws/metrics). Each connected websocket receives the
same stream the unix socket carries: a full snapshot first, then changes.

Examples:
  # Serve on the default port
  slate bridge

  # Custom listen address
  slate bridge --listen 127.0.0.1:7878`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			listen, _ := cmd.Flags().GetString("listen")
			logger := cli.GetLogger(cmd).WithField("component", "bridge")

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			mux := http.NewServeMux()
			for _, name := range daemonNames {
				mux.Handle("/ws/"+name, bridgeHandler(ctx, name, cfg, logger))
			}

			srv := &http.Server{Addr: listen, Handler: mux}
			go func() {
				<-ctx.Done()
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			logger.WithField("listen", listen).Info("Bridge listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("bridge server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("listen", "127.0.0.1:7878", "Listen address for the websocket server")
	return cmd
}

var upgrader = websocket.Upgrader{
	// The bridge binds to loopback; cross-origin pages on the same host
	// are the expected consumers.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// bridgeHandler upgrades each request and pipes one daemon stream into it.
// Every websocket gets its own unix-socket connection, so snapshot-on-
// connect semantics carry over unchanged.
func bridgeHandler(ctx context.Context, daemon string, cfg *config.Config, logger *logrus.Entry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithError(err).Debug("Upgrade failed")
			return
		}
		defer ws.Close()

		connCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		// Surface client disconnects; inbound frames are otherwise ignored.
		go func() {
			defer cancel()
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		lines := client.Stream(connCtx, daemon, client.StreamOptions{
			SocketPath: cfg.SocketPath(daemon),
		})
		for line := range lines {
			_ = ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := ws.WriteMessage(websocket.TextMessage, line); err != nil {
				return
			}
		}
	})
}
