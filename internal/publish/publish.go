package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
)

type WriteOptions struct {
	Overwrite bool
	// HTML additionally writes a rendered .html page next to every .md file.
	HTML bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteNote writes a single note to <toDir>/notes/<id>.md.
func WriteNote(notes []model.Note, noteID string, toDir string, opt WriteOptions) (WriteResult, error) {
	noteID = strings.TrimSpace(noteID)
	if noteID == "" {
		return WriteResult{}, errors.New("missing note id")
	}
	toDir, err := cleanDir(toDir)
	if err != nil {
		return WriteResult{}, err
	}
	for _, n := range notes {
		if n.ID != noteID {
			continue
		}
		outDir := filepath.Join(toDir, "notes")
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return WriteResult{}, err
		}
		written, err := writeNote(outDir, n, opt)
		if err != nil {
			return WriteResult{}, err
		}
		return WriteResult{Written: written}, nil
	}
	return WriteResult{}, mutate.NotFoundError{Kind: "note", ID: noteID}
}

// WriteAll writes an index.md plus one page per note.
func WriteAll(notes []model.Note, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir, err := cleanDir(toDir)
	if err != nil {
		return WriteResult{}, err
	}
	outDir := filepath.Join(toDir, "notes")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderIndexMarkdown(notes)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	// Stop on the first error; files already written stay.
	written := []string{indexPath}
	for _, n := range notes {
		paths, err := writeNote(outDir, n, opt)
		if err != nil {
			return WriteResult{}, err
		}
		written = append(written, paths...)
	}
	return WriteResult{Written: written}, nil
}

func writeNote(dir string, n model.Note, opt WriteOptions) ([]string, error) {
	mdPath := filepath.Join(dir, n.ID+".md")
	if err := writeFile(mdPath, []byte(RenderNoteMarkdown(n)), opt.Overwrite); err != nil {
		return nil, err
	}
	if !opt.HTML {
		return []string{mdPath}, nil
	}
	page, err := RenderNoteHTML(n)
	if err != nil {
		return nil, err
	}
	htmlPath := filepath.Join(dir, n.ID+".html")
	if err := writeFile(htmlPath, []byte(page), opt.Overwrite); err != nil {
		return nil, err
	}
	return []string{mdPath, htmlPath}, nil
}

func cleanDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", errors.New("missing --to")
	}
	return filepath.Clean(dir), nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
