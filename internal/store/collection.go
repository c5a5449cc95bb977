package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// CorruptCollectionError reports a stored collection that is not a JSON array of the expected
// record shape. The stored value is left untouched.
type CorruptCollectionError struct {
	Key string
	Err error
}

func (e *CorruptCollectionError) Error() string {
	return fmt.Sprintf("corrupt collection %q: %v", e.Key, e.Err)
}

func (e *CorruptCollectionError) Unwrap() error { return e.Err }

// LoadCollection reads the array stored under key. A missing or blank value is an empty collection.
func LoadCollection[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &CorruptCollectionError{Key: key, Err: err}
	}
	if out == nil {
		// "null" decodes to a nil slice.
		out = []T{}
	}
	return out, nil
}

// SaveCollection overwrites key with the whole collection in a single write.
func SaveCollection[T any](ctx context.Context, kv KV, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	b, err := encodeJSON(items, "")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// encodeJSON marshals v the way JSON.stringify does: no HTML escaping, no trailing newline.
// A non-empty indent pretty-prints.
func encodeJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
