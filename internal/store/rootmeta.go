package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const rootConfigFile = ".ian-config.json"

// rootMeta marks a directory as an ian storage root.
type rootMeta struct {
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"createdAt"`
	LastAccess time.Time `json:"lastAccess"`
}

// ensureRootMeta creates the root marker on first use and refreshes
// lastAccess on every subsequent open. A corrupt marker is rewritten.
func (s *DirectoryStore) ensureRootMeta() error {
	path := filepath.Join(s.root, rootConfigFile)
	now := time.Now().UTC()

	meta := rootMeta{Version: 1, CreatedAt: now, LastAccess: now}

	if data, err := os.ReadFile(path); err == nil {
		var existing rootMeta
		if err := json.Unmarshal(data, &existing); err == nil && !existing.CreatedAt.IsZero() {
			meta.Version = existing.Version
			meta.CreatedAt = existing.CreatedAt
		}
	}

	if err := writeJSON(path, meta); err != nil {
		return fmt.Errorf("writing root config: %w", err)
	}
	return nil
}
