package cli

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leonbytyqi1709-sketch/bycore/internal/format"
	"github.com/leonbytyqi1709-sketch/bycore/internal/web"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var open bool

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the BYCORE web UI",
		Long: strings.TrimSpace(`
Serve the BYCORE web UI from a local HTTP server.

Every browser session gets its own module router. Re-renders are streamed over
server-sent events, so edits made from the CLI or another tab show up live.
`),
		Example: strings.TrimSpace(`
# Serve on the configured address (default 127.0.0.1:3345)
bycore web

# Serve on a random port without opening a browser
bycore web --addr 127.0.0.1:0 --open=false
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				listenAddr = app.cfg.Web.Addr
			}
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}

			srv, err := newWebServer(app, listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			opened := false
			openErr := ""
			if open {
				if err := openPath(url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}

			hints := []string{}
			if !opened {
				hints = append(hints, "open "+url)
			}

			_ = writeOut(cmd, app, format.Envelope{
				Data: map[string]any{
					"addr":      actualAddr,
					"url":       url,
					"dir":       app.Dir,
					"opened":    opened,
					"openError": openErr,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				Hints: hints,
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "BYCORE web running at %s (dir=%s)\n", url, app.Dir)
			if openErr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %s\n", openErr)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.Serve(ctx, ln); err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info("web server stopped", zap.String("addr", actualAddr))
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (host:port or :port; default from config)")
	cmd.Flags().BoolVar(&open, "open", true, "Open the UI in your default browser")
	return cmd
}

func newWebServer(app *App, addr string) (*web.Server, error) {
	return web.NewServer(web.ServerConfig{
		Addr:          addr,
		Dir:           app.Dir,
		DatastarURL:   app.cfg.Web.DatastarURL,
		AutosaveDelay: app.cfg.Autosave.Delay,
		StatsInterval: app.cfg.Stats.Interval,
		Logger:        app.log.Named("web"),
	})
}
