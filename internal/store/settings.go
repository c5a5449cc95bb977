package store

import (
	"context"
	"strings"
	"unicode/utf16"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
)

const DefaultUsername = "Leon"

// Theme returns the stored theme; anything unrecognised reads as dark.
func Theme(ctx context.Context, kv KV) (model.Theme, error) {
	v, _, err := kv.Get(ctx, KeyTheme)
	if err != nil {
		return "", err
	}
	if model.Theme(v) == model.ThemeLight {
		return model.ThemeLight, nil
	}
	return model.ThemeDark, nil
}

func SetTheme(ctx context.Context, kv KV, t model.Theme) error {
	if !t.Valid() {
		t = model.ThemeDark
	}
	return kv.Set(ctx, KeyTheme, string(t))
}

func Username(ctx context.Context, kv KV) (string, error) {
	v, ok, err := kv.Get(ctx, KeyUsername)
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(v) == "" {
		return DefaultUsername, nil
	}
	return v, nil
}

// SetUsername ignores blank names.
func SetUsername(ctx context.Context, kv KV, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return kv.Set(ctx, KeyUsername, name)
}

// ActiveModule returns the last module the user opened, or the dashboard.
func ActiveModule(ctx context.Context, kv KV) (string, error) {
	v, _, err := kv.Get(ctx, KeyActiveModule)
	if err != nil {
		return "", err
	}
	if !model.ValidModule(v) {
		return model.ModuleDashboard, nil
	}
	return v, nil
}

func SetActiveModule(ctx context.Context, kv KV, name string) error {
	return kv.Set(ctx, KeyActiveModule, name)
}

// Usage summarises how much of the KV the application occupies. Bytes counts two bytes per
// UTF-16 code unit, the same measure browsers use for their storage quota.
type Usage struct {
	Keys  int `json:"keys"`
	Bytes int `json:"bytes"`
}

func StorageUsage(ctx context.Context, kv KV) (Usage, error) {
	keys, err := kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return Usage{}, err
	}
	u := Usage{Keys: len(keys)}
	for _, k := range keys {
		v, _, err := kv.Get(ctx, k)
		if err != nil {
			return Usage{}, err
		}
		u.Bytes += 2 * len(utf16.Encode([]rune(v)))
	}
	return u, nil
}
