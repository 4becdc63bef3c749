package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultModel is used when no model has been saved in settings.
const DefaultModel = "claude-sonnet-4-5-20250514"

// Settings is the user-saved model configuration.
type Settings struct {
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature,omitempty"`
	AuthMode    string   `json:"authMode,omitempty"`
}

// SettingsStore reads and writes per-key JSON settings. Reads that fail are
// reported as errors; callers choose the fallback explicitly via GetOr.
type SettingsStore interface {
	Get(ctx context.Context, key string, out any) error
	Put(ctx context.Context, key string, value any) error
}

// GetOr reads a setting, returning fallback on any error. This makes the
// default-on-read-failure path visible at the call site instead of being
// swallowed inside the store.
func GetOr[T any](ctx context.Context, s SettingsStore, key string, fallback T) T {
	var out T
	if err := s.Get(ctx, key, &out); err != nil {
		slog.DebugContext(ctx, "setting unavailable, using default", "key", key, "error", err)
		return fallback
	}
	return out
}

// ModelSettings returns the saved model configuration, falling back to the
// built-in default model when none is saved or the read fails.
func ModelSettings(ctx context.Context, s SettingsStore) Settings {
	settings := GetOr(ctx, s, "model", Settings{})
	if settings.Model == "" {
		settings.Model = DefaultModel
	}
	return settings
}

const settingsDirName = "settings"

// FileSettingsStore keeps one JSON file per key under <root>/settings/.
type FileSettingsStore struct {
	root string
}

func NewFileSettingsStore(root string) *FileSettingsStore {
	return &FileSettingsStore{root: root}
}

func (s *FileSettingsStore) Get(ctx context.Context, key string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.root, settingsDirName, key+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("reading setting %q: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing setting %q: %w", key, err)
	}
	return nil
}

func (s *FileSettingsStore) Put(ctx context.Context, key string, value any) error {
	dir := filepath.Join(s.root, settingsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding setting %q: %w", key, err)
	}

	if err := os.WriteFile(filepath.Join(dir, key+".json"), data, 0o644); err != nil {
		return fmt.Errorf("writing setting %q: %w", key, err)
	}
	return nil
}

// TemplateOverride implements template.Overrides on top of the settings
// store: overrides live under settings/template_<stepID>.json as a JSON
// string. A miss or unreadable value falls back to the built-in template.
func (s *FileSettingsStore) TemplateOverride(ctx context.Context, stepID string) (string, bool) {
	tmpl := GetOr(ctx, s, "template_"+stepID, "")
	return tmpl, tmpl != ""
}
