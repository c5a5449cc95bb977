package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
)

var now = time.Date(2025, 12, 20, 9, 30, 0, 0, time.UTC)

func testNotes() []model.Note {
	return []model.Note{
		{ID: "1", Title: "Groceries", Content: "- [ ] milk\n- [x] eggs", Created: now, Updated: now},
		{ID: "2", Title: "", Content: "Some **markdown** :smile:", Created: now, Updated: now.Add(time.Hour), Pinned: true},
	}
}

func TestRenderNoteMarkdown_IncludesMetaAndContent(t *testing.T) {
	t.Parallel()

	md := RenderNoteMarkdown(testNotes()[1])
	require.True(t, strings.HasPrefix(md, "# Untitled\n"))
	require.Contains(t, md, "- ID: 2")
	require.Contains(t, md, "- Pinned: true")
	require.Contains(t, md, "- Updated: 2025-12-20T10:30:00Z")
	require.Contains(t, md, "## Content\n\nSome **markdown** :smile:\n")
}

func TestRenderIndexMarkdown_SidebarOrder(t *testing.T) {
	t.Parallel()

	md := RenderIndexMarkdown(testNotes())
	pinned := strings.Index(md, "[Untitled](notes/2.md) (pinned)")
	plain := strings.Index(md, "[Groceries](notes/1.md)")
	require.NotEqual(t, -1, pinned)
	require.NotEqual(t, -1, plain)
	require.Less(t, pinned, plain)

	require.Contains(t, RenderIndexMarkdown(nil), "(no notes)")
}

func TestRenderNoteHTML_GFMAndEmoji(t *testing.T) {
	t.Parallel()

	page, err := RenderNoteHTML(testNotes()[1])
	require.NoError(t, err)
	require.Contains(t, page, "<title>Untitled</title>")
	require.Contains(t, page, "<strong>markdown</strong>")
	require.NotContains(t, page, ":smile:")

	page, err = RenderNoteHTML(model.Note{ID: "3", Title: "x", Content: "<script>alert(1)</script>"})
	require.NoError(t, err)
	require.NotContains(t, page, "<script>alert")
}

func TestWriteAll_WritesIndexAndPages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := WriteAll(testNotes(), dir, WriteOptions{HTML: true})
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "index.md"),
		filepath.Join(dir, "notes", "1.md"),
		filepath.Join(dir, "notes", "1.html"),
		filepath.Join(dir, "notes", "2.md"),
		filepath.Join(dir, "notes", "2.html"),
	}, res.Written)

	b, err := os.ReadFile(filepath.Join(dir, "notes", "1.md"))
	require.NoError(t, err)
	require.Contains(t, string(b), "# Groceries")

	_, err = WriteAll(testNotes(), dir, WriteOptions{})
	require.ErrorContains(t, err, "file exists")

	_, err = WriteAll(testNotes(), dir, WriteOptions{Overwrite: true})
	require.NoError(t, err)
}

func TestWriteNote(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := WriteNote(testNotes(), "1", dir, WriteOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "notes", "1.md")}, res.Written)

	_, err = WriteNote(testNotes(), "nope", dir, WriteOptions{})
	var nf mutate.NotFoundError
	require.True(t, errors.As(err, &nf))

	_, err = WriteNote(testNotes(), "1", " ", WriteOptions{})
	require.ErrorContains(t, err, "missing --to")
}
