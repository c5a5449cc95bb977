package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Envelope is the shape of every CLI result. Data and Hints are the JSON contract; Text is
// the optional human rendition used by --format text.
type Envelope struct {
	Data  any      `json:"data"`
	Hints []string `json:"_hints,omitempty"`
	Text  Texter   `json:"-"`
}

// Texter renders a value for humans. The renderer is bound to the output writer so colors
// are only emitted on terminals.
type Texter interface {
	Text(r *lipgloss.Renderer) string
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - text
func Write(w io.Writer, env Envelope, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, env, pretty)
	case "text":
		return WriteText(w, env)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteText prints env.Text, or indented JSON of env.Data when there is no text form,
// followed by any hints.
func WriteText(w io.Writer, env Envelope) error {
	r := lipgloss.NewRenderer(w)
	if env.Text != nil {
		if _, err := fmt.Fprintln(w, env.Text.Text(r)); err != nil {
			return err
		}
	} else if err := WriteJSON(w, env.Data, true); err != nil {
		return err
	}
	hint := r.NewStyle().Faint(true)
	for _, h := range env.Hints {
		if _, err := fmt.Fprintln(w, hint.Render("hint: "+h)); err != nil {
			return err
		}
	}
	return nil
}
