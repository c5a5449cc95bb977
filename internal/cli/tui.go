package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
	"github.com/leonbytyqi1709-sketch/bycore/internal/sysstats"
	"github.com/leonbytyqi1709-sketch/bycore/internal/tui"
)

func newTUICmd(app *App) *cobra.Command {
	var memory bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive terminal UI (default when no command is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app, memory)
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "Use a throwaway in-memory store (demo mode)")
	return cmd
}

func runTUI(cmd *cobra.Command, app *App, memory bool) error {
	var kv store.KV
	statsPath := app.Dir
	if memory {
		kv = store.NewMemory()
		statsPath = os.TempDir()
	} else {
		st, err := openStore(app)
		if err != nil {
			return writeErr(cmd, err)
		}
		kv = st
	}

	// The alternate screen owns the terminal; only log when asked to.
	log := zap.NewNop()
	if app.Verbose {
		log = app.log
	}
	wd, _ := os.Getwd()

	err := tui.Run(cmd.Context(), tui.Options{
		KV:            kv,
		Logger:        log,
		Sampler:       sysstats.New(statsPath, log),
		AutosaveDelay: app.cfg.Autosave.Delay,
		ExportDir:     wd,
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	return nil
}
