//go:build webview

package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/spf13/cobra"
	webview "github.com/webview/webview_go"
	"go.uber.org/zap"
)

func newAppCmd(app *App) *cobra.Command {
	var addr string
	var title string
	var width int
	var height int
	var debug bool

	cmd := &cobra.Command{
		Use:   "app",
		Short: "Open the web UI in a native window",
		Long: strings.TrimSpace(`
Open the BYCORE web UI in a native webview window.

Notes:
- This command is build-tagged and requires: -tags webview
- It starts a local HTTP server and points the webview at it.
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("app: missing --addr"))
			}

			srv, err := newWebServer(app, listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			url := "http://" + ln.Addr().String() + "/"

			ctx, cancel := context.WithCancel(cmd.Context())
			done := make(chan error, 1)
			go func() { done <- srv.Serve(ctx, ln) }()

			w := webview.New(debug)
			defer w.Destroy()
			w.SetTitle(strings.TrimSpace(title))
			w.SetSize(width, height, webview.HintNone)
			w.Navigate(url)
			fmt.Fprintf(cmd.ErrOrStderr(), "BYCORE app running at %s (dir=%s)\n", url, app.Dir)
			w.Run()

			// Closing the window ends the server; pending note edits are flushed by Serve.
			cancel()
			if err := <-done; err != nil {
				app.log.Warn("web server stopped with error", zap.Error(err))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:0", "Bind address for the local server (host:port or :port)")
	cmd.Flags().StringVar(&title, "title", "BYCORE", "Window title")
	cmd.Flags().IntVar(&width, "width", 1280, "Window width (pixels)")
	cmd.Flags().IntVar(&height, "height", 820, "Window height (pixels)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable webview debug mode")
	return cmd
}
