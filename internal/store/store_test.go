package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"

	"github.com/stretchr/testify/require"
)

func TestSQLiteKV_GetSetDeleteKeys(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	_, ok, err := s.Get(ctx, KeyTheme)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, KeyTheme, "light"))
	require.NoError(t, s.Set(ctx, KeyUsername, "Ada"))
	require.NoError(t, s.Set(ctx, "other-key", "x"))

	v, ok, err := s.Get(ctx, KeyTheme)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "light", v)

	keys, err := s.Keys(ctx, KeyPrefix)
	require.NoError(t, err)
	require.Equal(t, []string{KeyTheme, KeyUsername}, keys)

	require.NoError(t, s.Delete(ctx, KeyTheme))
	_, ok, err = s.Get(ctx, KeyTheme)
	require.NoError(t, err)
	require.False(t, ok)

	if _, err := os.Stat(filepath.Join(s.Dir, sqliteFileName)); err != nil {
		t.Fatalf("expected sqlite file: %v", err)
	}
}

func TestSQLiteKV_KeysPrefixIsLiteral(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	require.NoError(t, s.Set(ctx, "bycore_x", "1"))
	require.NoError(t, s.Set(ctx, "bycore-%", "2"))

	keys, err := s.Keys(ctx, "bycore-")
	require.NoError(t, err)
	require.Equal(t, []string{"bycore-%"}, keys)
}

func TestSQLiteKV_VersionMovesOnlyOnWrites(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	v0, err := s.Version(ctx)
	require.NoError(t, err)

	_, _, err = s.Get(ctx, KeyNotes)
	require.NoError(t, err)
	_, err = s.Keys(ctx, KeyPrefix)
	require.NoError(t, err)
	v1, err := s.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, v0, v1, "reads must not move the version")

	require.NoError(t, s.Set(ctx, KeyTheme, "light"))
	v2, err := s.Version(ctx)
	require.NoError(t, err)
	require.Greater(t, v2, v1)

	require.NoError(t, s.SetMany(ctx, map[string]string{KeyTheme: "dark", KeyUsername: "Ada"}))
	v3, err := s.Version(ctx)
	require.NoError(t, err)
	require.Greater(t, v3, v2)

	require.NoError(t, s.Delete(ctx, KeyTheme))
	v4, err := s.Version(ctx)
	require.NoError(t, err)
	require.Greater(t, v4, v3)
}

func TestLoadCollection_MissingKeyIsEmpty(t *testing.T) {
	notes, err := LoadCollection[model.Note](context.Background(), NewMemory(), KeyNotes)
	require.NoError(t, err)
	require.NotNil(t, notes)
	require.Empty(t, notes)
}

func TestSaveLoad_LeavesStoredBytesUnchanged(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	in := []model.Task{
		{ID: "2", Title: "B", Priority: model.PriorityNormal, Status: model.StatusDone, Done: true, Created: now},
		{ID: "1", Title: "A", Priority: model.PriorityImportant, Status: model.StatusTodo, Created: now, DueDate: "2025-03-02"},
	}
	require.NoError(t, SaveCollection(ctx, s, KeyTasks, in))
	before, _, err := s.Get(ctx, KeyTasks)
	require.NoError(t, err)

	got, err := LoadCollection[model.Task](ctx, s, KeyTasks)
	require.NoError(t, err)
	require.Equal(t, in, got)

	require.NoError(t, SaveCollection(ctx, s, KeyTasks, got))
	after, _, err := s.Get(ctx, KeyTasks)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestSaveLoad_KeepsBytesWrittenByJSONStringify(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		key string
		raw string
		run func(kv KV) error
	}{
		{
			key: KeyNotes,
			raw: `[{"id":"1","title":"<b>","content":"a & b","created":"2024-01-01T10:00:00.000Z","updated":"2024-01-02T08:15:30.250Z","pinned":false}]`,
			run: func(kv KV) error {
				v, err := LoadCollection[model.Note](ctx, kv, KeyNotes)
				if err != nil {
					return err
				}
				return SaveCollection(ctx, kv, KeyNotes, v)
			},
		},
		{
			key: KeyTasks,
			raw: `[{"id":"2","title":"Fix <div>","description":"x > y","priority":"important","status":"done","done":true,"created":"2024-03-05T23:59:59.999Z","dueDate":""}]`,
			run: func(kv KV) error {
				v, err := LoadCollection[model.Task](ctx, kv, KeyTasks)
				if err != nil {
					return err
				}
				return SaveCollection(ctx, kv, KeyTasks, v)
			},
		},
		{
			key: KeyEvents,
			raw: `[{"id":"3","title":"Tom & Jerry","description":"","date":"2024-03-06","startTime":"09:00","endTime":"10:30","color":"green","created":"2024-03-01T12:00:00.000Z"}]`,
			run: func(kv KV) error {
				v, err := LoadCollection[model.CalendarEvent](ctx, kv, KeyEvents)
				if err != nil {
					return err
				}
				return SaveCollection(ctx, kv, KeyEvents, v)
			},
		},
	}
	for _, tc := range cases {
		kv := NewMemory()
		require.NoError(t, kv.Set(ctx, tc.key, tc.raw))
		require.NoError(t, tc.run(kv))
		after, _, err := kv.Get(ctx, tc.key)
		require.NoError(t, err)
		require.Equal(t, tc.raw, after, tc.key)
	}
}

func TestSaveCollection_WritesMillisecondUTCTimestamps(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	at := time.Date(2025, 6, 10, 11, 30, 0, 123456789, time.FixedZone("CEST", 2*60*60))
	require.NoError(t, SaveCollection(ctx, kv, KeyNotes, []model.Note{{ID: "1", Title: "a<b", Created: at, Updated: at}}))
	v, _, _ := kv.Get(ctx, KeyNotes)
	require.Equal(t, `[{"id":"1","title":"a<b","content":"","created":"2025-06-10T09:30:00.123Z","updated":"2025-06-10T09:30:00.123Z","pinned":false}]`, v)
}

func TestSaveCollection_NilIsEmptyArray(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, SaveCollection[model.Note](ctx, kv, KeyNotes, nil))
	v, _, _ := kv.Get(ctx, KeyNotes)
	require.Equal(t, "[]", v)
}

func TestLoadCollection_CorruptFailsHardAndKeepsBytes(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, KeyEvents, `{"not":"an array"}`))

	_, err := LoadCollection[model.CalendarEvent](ctx, kv, KeyEvents)
	var cce *CorruptCollectionError
	if !errors.As(err, &cce) {
		t.Fatalf("expected CorruptCollectionError, got %v", err)
	}
	require.Equal(t, KeyEvents, cce.Key)

	v, _, _ := kv.Get(ctx, KeyEvents)
	require.Equal(t, `{"not":"an array"}`, v)
}

func TestSettings_Defaults(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	theme, err := Theme(ctx, kv)
	require.NoError(t, err)
	require.Equal(t, model.ThemeDark, theme)

	name, err := Username(ctx, kv)
	require.NoError(t, err)
	require.Equal(t, DefaultUsername, name)

	mod, err := ActiveModule(ctx, kv)
	require.NoError(t, err)
	require.Equal(t, model.ModuleDashboard, mod)

	require.NoError(t, kv.Set(ctx, KeyActiveModule, "nonsense"))
	mod, err = ActiveModule(ctx, kv)
	require.NoError(t, err)
	require.Equal(t, model.ModuleDashboard, mod)
}

func TestSettings_SetUsernameIgnoresBlank(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, SetUsername(ctx, kv, "  Grace "))
	require.NoError(t, SetUsername(ctx, kv, "   "))
	name, err := Username(ctx, kv)
	require.NoError(t, err)
	require.Equal(t, "Grace", name)
}

func TestStorageUsage_CountsUTF16Units(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, KeyTheme, "dark"))
	require.NoError(t, kv.Set(ctx, KeyUsername, "Zoë"))
	require.NoError(t, kv.Set(ctx, "unrelated", "ignored"))

	u, err := StorageUsage(ctx, kv)
	require.NoError(t, err)
	require.Equal(t, 2, u.Keys)
	require.Equal(t, 2*4+2*3, u.Bytes)
}

func TestBackup_ExportEmbedsJSONAndStrings(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, KeyTheme, "light"))
	require.NoError(t, kv.Set(ctx, KeyNotes, `[{"id":"1"}]`))
	require.NoError(t, kv.Set(ctx, "foreign", "skip me"))

	b, err := Export(ctx, kv, false)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	require.Len(t, doc, 2)
	require.Equal(t, "light", doc[KeyTheme])
	require.Equal(t, []any{map[string]any{"id": "1"}}, doc[KeyNotes])
}

func TestBackup_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := Store{Dir: t.TempDir()}
	require.NoError(t, src.Set(ctx, KeyUsername, "Ada"))
	require.NoError(t, src.Set(ctx, KeyTasks, `[{"id":"7","title":"x"}]`))

	b, err := Export(ctx, src, true)
	require.NoError(t, err)

	dst := Store{Dir: t.TempDir()}
	keys, err := Import(ctx, dst, b)
	require.NoError(t, err)
	require.Equal(t, []string{KeyTasks, KeyUsername}, keys)

	name, _, _ := dst.Get(ctx, KeyUsername)
	require.Equal(t, "Ada", name)
	tasks, _, _ := dst.Get(ctx, KeyTasks)
	require.Equal(t, `[{"id":"7","title":"x"}]`, tasks)
}

func TestBackup_PrettyExportImportKeepsSaveStable(t *testing.T) {
	ctx := context.Background()
	src := NewMemory()
	notes := []model.Note{{
		ID:      "1",
		Title:   "<b>",
		Content: "a & b",
		Created: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Updated: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, SaveCollection(ctx, src, KeyNotes, notes))
	want, _, _ := src.Get(ctx, KeyNotes)

	b, err := Export(ctx, src, true)
	require.NoError(t, err)
	require.Contains(t, string(b), "\n  ")
	require.Contains(t, string(b), `"<b>"`)

	dst := Store{Dir: t.TempDir()}
	_, err = Import(ctx, dst, b)
	require.NoError(t, err)
	imported, _, _ := dst.Get(ctx, KeyNotes)
	require.Equal(t, want, imported)

	got, err := LoadCollection[model.Note](ctx, dst, KeyNotes)
	require.NoError(t, err)
	require.NoError(t, SaveCollection(ctx, dst, KeyNotes, got))
	after, _, _ := dst.Get(ctx, KeyNotes)
	require.Equal(t, imported, after)
}

func TestBackup_ImportRejectsNonObjectWithoutWriting(t *testing.T) {
	ctx := context.Background()
	for _, in := range []string{`[1,2]`, `"str"`, `null`, `not json`, ``} {
		kv := NewMemory()
		_, err := Import(ctx, kv, []byte(in))
		if !errors.Is(err, ErrInvalidBackup) {
			t.Fatalf("Import(%q): expected ErrInvalidBackup, got %v", in, err)
		}
		require.Zero(t, kv.Writes(), "input %q", in)
	}
}

func TestBackup_Reset(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	require.NoError(t, s.Set(ctx, KeyTheme, "light"))
	require.NoError(t, s.Set(ctx, KeyNotes, "[]"))
	require.NoError(t, s.Set(ctx, "keep", "1"))

	n, err := Reset(ctx, s)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	keys, err := s.Keys(ctx, KeyPrefix)
	require.NoError(t, err)
	require.Empty(t, keys)
	_, ok, _ := s.Get(ctx, "keep")
	require.True(t, ok)
}

func TestWriteBackupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", BackupFileName(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, WriteBackupFile(path, []byte(`{}`)))
	require.Equal(t, "bycore-backup-2025-01-02.json", filepath.Base(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{}`, string(b))
}
