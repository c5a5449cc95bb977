package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWrite_JSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	env := Envelope{Data: map[string]int{"n": 1}, Hints: []string{"try --pretty"}, Text: Line("ignored")}
	require.NoError(t, Write(&buf, env, "json", false))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, map[string]any{"n": float64(1)}, got["data"])
	require.Equal(t, []any{"try --pretty"}, got["_hints"])
	require.NotContains(t, buf.String(), "ignored")
}

func TestWrite_UnknownFormat(t *testing.T) {
	require.ErrorContains(t, Write(&bytes.Buffer{}, Envelope{}, "edn", false), "unknown format")
}

func TestWriteText_TableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	table := Table{
		Headers: []string{"ID", "TITLE"},
		Rows:    [][]string{{"1", "Groceries"}, {"1749550000000", "Plan"}},
	}
	require.NoError(t, Write(&buf, Envelope{Data: nil, Text: table}, "text", false))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	col := strings.Index(lines[0], "TITLE")
	require.Equal(t, col, strings.Index(lines[1], "Groceries"))
	require.Equal(t, col, strings.Index(lines[2], "Plan"))
}

func TestWriteText_FallsBackToJSONAndPrintsHints(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Envelope{Data: []string{"a"}, Hints: []string{"next"}}, "text", false))
	require.Equal(t, "[\n  \"a\"\n]\nhint: next\n", buf.String())
}

func TestTableEmptyAndFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Envelope{Text: Table{Headers: []string{"ID"}, Empty: "no notes"}}))
	require.Equal(t, "no notes\n", buf.String())

	buf.Reset()
	f := Fields{Title: "Note", Pairs: [][2]string{{"id", "1"}, {"updated", "now"}}, Body: "body"}
	require.NoError(t, WriteText(&buf, Envelope{Text: f}))
	require.Equal(t, "Note\nid:      1\nupdated: now\n\nbody\n", buf.String())
}

func TestHumanHelpers(t *testing.T) {
	require.Equal(t, "1.0 GiB", Bytes(1<<30))
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	require.Equal(t, "3 minutes ago", Ago(now.Add(-3*time.Minute), now))
	require.Equal(t, "", Ago(time.Time{}, now))
}
