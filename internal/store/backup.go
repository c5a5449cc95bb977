package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrInvalidBackup is returned when a backup document is not a JSON object.
var ErrInvalidBackup = errors.New("invalid backup file: expected a JSON object")

type batchSetter interface {
	SetMany(ctx context.Context, pairs map[string]string) error
}

// Export returns every application key as one JSON object. Values that are themselves JSON are
// embedded as JSON; anything else (theme, username) is embedded as a string.
func Export(ctx context.Context, kv KV, pretty bool) ([]byte, error) {
	keys, err := kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}
	doc := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		v, ok, err := kv.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if json.Valid([]byte(v)) {
			doc[k] = json.RawMessage(v)
			continue
		}
		b, err := encodeJSON(v, "")
		if err != nil {
			return nil, err
		}
		doc[k] = b
	}
	if pretty {
		return encodeJSON(doc, "  ")
	}
	return encodeJSON(doc, "")
}

// Import overwrites keys from a backup document, key by key. String values are stored verbatim,
// everything else is stored as its compact JSON encoding, so a pretty-printed export imports to
// the same bytes SaveCollection writes. Nothing is written unless the whole document parses as
// an object.
func Import(ctx context.Context, kv KV, b []byte) ([]string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil || doc == nil {
		return nil, ErrInvalidBackup
	}
	pairs := make(map[string]string, len(doc))
	for k, raw := range doc {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			pairs[k] = s
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, ErrInvalidBackup
		}
		pairs[k] = buf.String()
	}

	keys := sortedKeys(pairs)
	if bs, ok := kv.(batchSetter); ok {
		if err := bs.SetMany(ctx, pairs); err != nil {
			return nil, fmt.Errorf("import: %w", err)
		}
		return keys, nil
	}
	for _, k := range keys {
		if err := kv.Set(ctx, k, pairs[k]); err != nil {
			return nil, fmt.Errorf("import %s: %w", k, err)
		}
	}
	return keys, nil
}

// Reset deletes every application key and returns how many were removed.
func Reset(ctx context.Context, kv KV) (int, error) {
	keys, err := kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		if err := kv.Delete(ctx, k); err != nil {
			return 0, fmt.Errorf("reset %s: %w", k, err)
		}
	}
	return len(keys), nil
}

// BackupFileName is the default export name for the given day.
func BackupFileName(now time.Time) string {
	return "bycore-backup-" + now.Format("2006-01-02") + ".json"
}

// WriteBackupFile writes b to path via a temp file and rename.
func WriteBackupFile(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return atomicWriteFile(dir, filepath.Base(path)+".*.tmp", path, b, 0o644)
}
