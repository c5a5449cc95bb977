package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leonbytyqi1709-sketch/bycore/internal/format"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
)

func newBackupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or import every BYCORE key as one JSON document",
	}

	var out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup (default: bycore-backup-<date>.json in the working directory)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := store.Export(cmd.Context(), st, true)
			if err != nil {
				return writeErr(cmd, err)
			}
			path := strings.TrimSpace(out)
			if path == "-" {
				// Raw document on stdout, no envelope.
				_, err := cmd.OutOrStdout().Write(append(b, '\n'))
				return err
			}
			if path == "" {
				path = store.BackupFileName(time.Now())
			}
			if err := store.WriteBackupFile(path, b); err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info("backup exported", zap.String("path", path), zap.Int("bytes", len(b)))
			return writeOut(cmd, app, format.Envelope{
				Data:  map[string]any{"path": path, "bytes": len(b)},
				Hints: []string{"bycore backup import " + path},
				Text:  format.Line(fmt.Sprintf("Wrote %s (%s)", path, format.Bytes(uint64(len(b))))),
			})
		},
	}
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "Output file (- for stdout)")

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Overwrite keys from a backup file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var b []byte
			var err error
			if args[0] == "-" {
				b, err = io.ReadAll(cmd.InOrStdin())
			} else {
				b, err = os.ReadFile(args[0])
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			keys, err := store.Import(cmd.Context(), st, b)
			if err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info("backup imported", zap.Int("keys", len(keys)))
			return writeOut(cmd, app, format.Envelope{
				Data: map[string]any{"keys": keys},
				Text: format.Line(fmt.Sprintf("Imported %d keys.", len(keys))),
			})
		},
	}

	cmd.AddCommand(exportCmd)
	cmd.AddCommand(importCmd)
	return cmd
}

func newResetCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every note, task, event and setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				p := newPrompter(cmd)
				if err := p.confirm("Delete ALL BYCORE data?"); err != nil {
					return writeErr(cmd, err)
				}
				if err := p.confirm("This cannot be undone. Really reset?"); err != nil {
					return writeErr(cmd, err)
				}
			}
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := store.Reset(cmd.Context(), st)
			if err != nil {
				return writeErr(cmd, err)
			}
			app.log.Warn("store reset", zap.Int("keys", n))
			return writeOut(cmd, app, format.Envelope{
				Data: map[string]any{"removed": n},
				Text: format.Line(fmt.Sprintf("Removed %d keys.", n)),
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip both confirmations")
	return cmd
}
