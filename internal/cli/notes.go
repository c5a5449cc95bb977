package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leonbytyqi1709-sketch/bycore/internal/format"
	"github.com/leonbytyqi1709-sketch/bycore/internal/markdown"
	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/publish"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
	"github.com/leonbytyqi1709-sketch/bycore/internal/tui"
)

func newNotesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Markdown notes",
	}
	cmd.AddCommand(newNotesListCmd(app))
	cmd.AddCommand(newNotesSearchCmd(app))
	cmd.AddCommand(newNotesShowCmd(app))
	cmd.AddCommand(newNotesCreateCmd(app))
	cmd.AddCommand(newNotesEditCmd(app))
	cmd.AddCommand(newNotesPinCmd(app))
	cmd.AddCommand(newNotesDeleteCmd(app))
	cmd.AddCommand(newNotesPublishCmd(app))
	return cmd
}

func notesManager(app *App) (*records.Notes, error) {
	st, err := openStore(app)
	if err != nil {
		return nil, err
	}
	return records.NewNotes(st, nil), nil
}

func newNotesListCmd(app *App) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes (pinned first, most recently updated next)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listNotes(cmd, app, query)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only notes whose title or content contains this text")
	return cmd
}

func newNotesSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search notes by title and content (case-insensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listNotes(cmd, app, args[0])
		},
	}
}

func listNotes(cmd *cobra.Command, app *App, query string) error {
	m, err := notesManager(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	notes, err := m.Load(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}
	notes = records.SearchNotes(records.SortNotes(notes), query)
	if notes == nil {
		notes = []model.Note{}
	}
	hints := []string{"bycore notes show <note-id>"}
	if len(notes) == 0 {
		hints = []string{"bycore notes create --title <title>"}
	}
	return writeOut(cmd, app, format.Envelope{Data: notes, Hints: hints, Text: noteTable(notes)})
}

func noteTable(notes []model.Note) format.Table {
	t := format.Table{Headers: []string{"ID", "TITLE", "PIN", "UPDATED"}, Empty: "No notes."}
	for _, n := range notes {
		pin := ""
		if n.Pinned {
			pin = "★"
		}
		t.Rows = append(t.Rows, []string{n.ID, records.DisplayTitle(n), pin, n.Updated.Local().Format("2006-01-02 15:04")})
	}
	return t
}

// noteText shows a note with its Markdown rendered for the terminal.
type noteText struct {
	note model.Note
	raw  bool
}

func (t noteText) Text(r *lipgloss.Renderer) string {
	chars, words := markdown.Stats(t.note.Content)
	body := t.note.Content
	if !t.raw && strings.TrimSpace(body) != "" {
		body = strings.TrimRight(tui.RenderMarkdown(body, 80), "\n")
	}
	return format.Fields{
		Title: records.DisplayTitle(t.note),
		Pairs: [][2]string{
			{"id", t.note.ID},
			{"pinned", fmt.Sprint(t.note.Pinned)},
			{"updated", t.note.Updated.Local().Format("2006-01-02 15:04")},
			{"size", fmt.Sprintf("%d characters, %d words", chars, words)},
		},
		Body: body,
	}.Text(r)
}

func newNotesShowCmd(app *App) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <note-id>",
		Short: "Show a note (text format renders the Markdown)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := notesManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := m.Get(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  n,
				Hints: []string{"bycore notes edit " + n.ID + " --content-file <path>"},
				Text:  noteText{note: n, raw: raw},
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the Markdown source instead of rendering it (text format)")
	return cmd
}

// readContent resolves --content / --content-file. "-" reads stdin.
func readContent(cmd *cobra.Command, content, file string) (string, bool, error) {
	contentSet := cmd.Flags().Changed("content")
	file = strings.TrimSpace(file)
	if contentSet && file != "" {
		return "", false, errors.New("use either --content or --content-file")
	}
	if file == "" {
		return content, contentSet, nil
	}
	var b []byte
	var err error
	if file == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(file)
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func newNotesCreateCmd(app *App) *cobra.Command {
	var title, content, file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, _, err := readContent(cmd, content, file)
			if err != nil {
				return writeErr(cmd, err)
			}
			m, err := notesManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := m.Create(cmd.Context(), title, body)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  n,
				Hints: []string{"bycore notes show " + n.ID},
				Text:  format.Line("Created note " + n.ID),
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Note title")
	cmd.Flags().StringVar(&content, "content", "", "Markdown content")
	cmd.Flags().StringVar(&file, "content-file", "", "Read Markdown content from a file (- for stdin)")
	return cmd
}

func newNotesEditCmd(app *App) *cobra.Command {
	var title, content, file string
	cmd := &cobra.Command{
		Use:   "edit <note-id>",
		Short: "Change a note's title and/or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, bodySet, err := readContent(cmd, content, file)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !bodySet && !cmd.Flags().Changed("title") {
				return writeErr(cmd, errors.New("nothing to change; pass --title, --content or --content-file"))
			}
			m, err := notesManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			n, err := m.Get(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if cmd.Flags().Changed("title") {
				n.Title = title
			}
			if bodySet {
				n.Content = body
			}
			if _, err := m.Update(ctx, n.ID, n.Title, n.Content); err != nil {
				return writeErr(cmd, err)
			}
			n, err = m.Get(ctx, n.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: n, Text: format.Line("Updated note " + n.ID)})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New Markdown content")
	cmd.Flags().StringVar(&file, "content-file", "", "Read new content from a file (- for stdin)")
	return cmd
}

func newNotesPinCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pin <note-id>",
		Short: "Toggle a note's pin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := notesManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			if _, err := m.Get(ctx, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if _, err := m.TogglePin(ctx, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			n, err := m.Get(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			state := "Unpinned"
			if n.Pinned {
				state = "Pinned"
			}
			return writeOut(cmd, app, format.Envelope{Data: n, Text: format.Line(state + " note " + n.ID)})
		},
	}
}

func newNotesDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <note-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := notesManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			n, err := m.Get(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !yes {
				if err := newPrompter(cmd).confirm(fmt.Sprintf("Delete note %q?", records.DisplayTitle(n))); err != nil {
					return writeErr(cmd, err)
				}
			}
			next, _, err := m.Delete(ctx, n.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data: map[string]any{"deleted": n.ID, "next": next},
				Text: format.Line("Deleted note " + n.ID),
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newNotesPublishCmd(app *App) *cobra.Command {
	var toDir string
	var overwrite bool
	var html bool

	cmd := &cobra.Command{
		Use:   "publish [note-id]",
		Short: "Export notes as Markdown (and optionally HTML) files",
		Long: strings.TrimSpace(`
Export derived Markdown artifacts (not canonical).

With a note id only that note is written to <to>/notes/<id>.md; without one an
index.md plus one page per note is written.
`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toDir = strings.TrimSpace(toDir)
			if toDir == "" {
				return writeErr(cmd, errors.New("missing --to"))
			}
			m, err := notesManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			notes, err := m.Load(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			opt := publish.WriteOptions{Overwrite: overwrite, HTML: html}
			var res publish.WriteResult
			if len(args) == 1 {
				res, err = publish.WriteNote(notes, args[0], toDir, opt)
			} else {
				res, err = publish.WriteAll(notes, toDir, opt)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data: res,
				Hints: []string{
					"git status",
					"git add -A",
					"git commit -m \"Publish notes\"",
				},
				Text: format.Line(fmt.Sprintf("Wrote %d files to %s", len(res.Written), toDir)),
			})
		},
	}

	cmd.Flags().StringVar(&toDir, "to", "", "Output directory")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().BoolVar(&overwrite, "overwrite", true, "Overwrite existing files")
	cmd.Flags().BoolVar(&html, "html", false, "Also write a rendered .html page per note")
	return cmd
}
