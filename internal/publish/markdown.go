package publish

import (
	"bytes"
	"strings"
	"time"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
)

// RenderNoteMarkdown renders a note as a standalone Markdown document with a meta block.
func RenderNoteMarkdown(n model.Note) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + records.DisplayTitle(n))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + n.ID)
	if n.Pinned {
		writeLn("- Pinned: true")
	}
	writeLn("- Created: " + n.Created.UTC().Format(time.RFC3339))
	writeLn("- Updated: " + n.Updated.UTC().Format(time.RFC3339))

	body := strings.TrimSpace(n.Content)
	if body != "" {
		writeLn("")
		writeLn("## Content")
		writeLn("")
		writeLn(body)
	}
	return buf.String()
}

// RenderIndexMarkdown lists notes in sidebar order, linking each to its page.
func RenderIndexMarkdown(notes []model.Note) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# Notes")
	writeLn("")
	sorted := records.SortNotes(notes)
	if len(sorted) == 0 {
		writeLn("(no notes)")
		return buf.String()
	}
	for _, n := range sorted {
		line := "- [" + escapeLinkText(records.DisplayTitle(n)) + "](notes/" + n.ID + ".md)"
		if n.Pinned {
			line += " (pinned)"
		}
		line += " - " + n.Updated.UTC().Format("2006-01-02")
		writeLn(line)
	}
	return buf.String()
}

func escapeLinkText(s string) string {
	r := strings.NewReplacer("[", `\[`, "]", `\]`)
	return r.Replace(s)
}
