package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leonbytyqi1709-sketch/bycore/internal/config"
	"github.com/leonbytyqi1709-sketch/bycore/internal/format"
	"github.com/leonbytyqi1709-sketch/bycore/internal/logging"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string
	LogLevel   string
	Verbose    bool

	cfg config.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "bycore",
		Short:        "BYCORE personal dashboard: notes, tasks, calendar (web, TUI and CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  bycore

  # Serve the web UI and open it in a browser
  bycore web

  # Scriptable commands
  bycore tasks list --filter important
  bycore notes create --title "Ideas" --content "- ship it"

  # Direct note lookup (shortcut for: bycore notes show <note-id>)
  bycore 1718000000000
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app, false)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return writeErr(cmd, err)
		}
		if strings.TrimSpace(app.Dir) == "" {
			app.Dir = cfg.DataDir
		}
		if strings.TrimSpace(app.LogLevel) != "" {
			cfg.Log.Level = app.LogLevel
		}
		log, err := logging.New(cfg.Log.Level, app.Verbose)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		app.log = log
		return nil
	}

	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.log != nil {
			_ = app.log.Sync()
		}
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("BYCORE_DIR", ""), "Path to the data dir (default: data_dir from ~/.bycore/config.yaml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("BYCORE_FORMAT", "json"), "Output format (json|text)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug logging")

	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newAppCmd(app))
	cmd.AddCommand(newNotesCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newSettingsCmd(app))
	cmd.AddCommand(newBackupCmd(app))
	cmd.AddCommand(newResetCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// openStore returns the SQLite-backed store for the resolved data dir, creating it if needed.
func openStore(app *App) (store.Store, error) {
	dir := strings.TrimSpace(app.Dir)
	if dir == "" {
		return store.Store{}, fmt.Errorf("no data dir; pass --dir or set BYCORE_DATA_DIR")
	}
	st := store.Store{Dir: dir}
	if err := st.Ensure(); err != nil {
		return store.Store{}, err
	}
	return st, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, env format.Envelope) error {
	return format.Write(cmd.OutOrStdout(), env, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
