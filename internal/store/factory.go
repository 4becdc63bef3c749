package store

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"ian.app/engine/core/config"
)

// Stores bundles the job persistence interfaces for one configured backend.
// Settings are not part of the set: they always live on the filesystem (see
// FileSettingsStore) so model and template overrides survive a redis flush.
type Stores struct {
	Jobs        JobStore
	Trash       TrashStore
	GradingJobs GradingJobStore
}

// NewStores builds the store set for the configured backend. The directory
// backend owns everything under cfg.Root; the redis backend shares the client
// used by the queue.
func NewStores(cfg config.StorageConfig, redisClient *redis.Client) (*Stores, error) {
	switch cfg.Backend {
	case config.StorageBackendDirectory:
		dirStore, err := NewDirectoryStore(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("initializing directory store: %w", err)
		}
		gradingStore, err := NewDirectoryGradingStore(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("initializing grading store: %w", err)
		}
		return &Stores{
			Jobs:        dirStore,
			Trash:       dirStore,
			GradingJobs: gradingStore,
		}, nil

	case config.StorageBackendRedis:
		redisStore := NewRedisStore(redisClient)
		return &Stores{
			Jobs:        redisStore,
			Trash:       redisStore,
			GradingJobs: NewRedisGradingStore(redisClient),
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
