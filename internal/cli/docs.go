package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leonbytyqi1709-sketch/bycore/internal/docs"
	"github.com/leonbytyqi1709-sketch/bycore/internal/format"
	"github.com/leonbytyqi1709-sketch/bycore/internal/tui"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show built-in documentation (keys, storage, backup, web, output)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				topics := docs.Topics()
				return writeOut(cmd, app, format.Envelope{
					Data:  map[string]any{"topics": topics},
					Hints: []string{"bycore docs <topic>"},
					Text:  format.Line(strings.Join(topics, "\n")),
				})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `bycore docs` to list topics)", topic))
			}
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return writeOut(cmd, app, format.Envelope{
				Data: map[string]any{"topic": strings.ToLower(topic), "markdown": body},
				Text: format.Line(strings.TrimRight(tui.RenderMarkdown(body, 80), "\n")),
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no JSON envelope)")
	return cmd
}
