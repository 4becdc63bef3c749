package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"ian.app/engine/internal/model"
)

const (
	redisJobsKey         = "ian:jobs"
	redisTrashKey        = "ian:trash"
	redisGradingJobsKey  = "ian:grading-jobs"
	redisGradingTrashKey = "ian:grading-trash"
)

// RedisStore is the flat key-value backend: each job, outputs included, is
// one JSON value in a hash. Simple, but degrades with many jobs or large
// outputs since LoadAll deserializes the whole collection at once. The
// directory backend exists for that reason.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding job: %w", err)
	}

	if err := s.client.HSet(ctx, redisJobsKey, job.ID, data).Err(); err != nil {
		return fmt.Errorf("saving job: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*model.Job, error) {
	data, err := s.client.HGet(ctx, redisJobsKey, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading job: %w", err)
	}

	var job model.Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("parsing job: %w", err)
	}
	return &job, nil
}

func (s *RedisStore) LoadAll(ctx context.Context) ([]model.Job, error) {
	fields, err := s.client.HGetAll(ctx, redisJobsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("loading jobs: %w", err)
	}

	jobs := make([]model.Job, 0, len(fields))
	for id, data := range fields {
		var job model.Job
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			slog.WarnContext(ctx, "corrupt job entry, skipping", "job_id", id, "error", err)
			continue
		}
		jobs = append(jobs, job)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	return jobs, nil
}

// SoftDelete moves the job's serialized form into a trash hash under the
// field "<id>_<deleted-at-millis>".
func (s *RedisStore) SoftDelete(ctx context.Context, id string) error {
	data, err := s.client.HGet(ctx, redisJobsKey, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("loading job for deletion: %w", err)
	}

	trashField := fmt.Sprintf("%s_%d", id, time.Now().UnixMilli())
	if err := s.client.HSet(ctx, redisTrashKey, trashField, data).Err(); err != nil {
		return fmt.Errorf("moving job to trash: %w", err)
	}

	if err := s.client.HDel(ctx, redisJobsKey, id).Err(); err != nil {
		return fmt.Errorf("removing job: %w", err)
	}
	return nil
}

func (s *RedisStore) ListTrash(ctx context.Context) ([]TrashEntry, error) {
	fields, err := s.client.HKeys(ctx, redisTrashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing trash: %w", err)
	}

	trash := make([]TrashEntry, 0, len(fields))
	for _, field := range fields {
		jobID, deletedAt, ok := parseTrashName(field)
		if !ok {
			continue
		}
		trash = append(trash, TrashEntry{
			ID:        field,
			JobID:     jobID,
			DeletedAt: deletedAt,
		})
	}

	sort.Slice(trash, func(i, j int) bool {
		return trash[i].DeletedAt.After(trash[j].DeletedAt)
	})

	return trash, nil
}

func (s *RedisStore) Restore(ctx context.Context, trashID string) error {
	jobID, _, ok := parseTrashName(trashID)
	if !ok {
		return fmt.Errorf("malformed trash entry name %q", trashID)
	}

	data, err := s.client.HGet(ctx, redisTrashKey, trashID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("loading trash entry: %w", err)
	}

	if err := s.client.HSet(ctx, redisJobsKey, jobID, data).Err(); err != nil {
		return fmt.Errorf("restoring job from trash: %w", err)
	}

	return s.client.HDel(ctx, redisTrashKey, trashID).Err()
}

func (s *RedisStore) Purge(ctx context.Context, trashID string) error {
	removed, err := s.client.HDel(ctx, redisTrashKey, trashID).Result()
	if err != nil {
		return fmt.Errorf("purging trash entry: %w", err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

// RedisGradingStore persists grading jobs in the flat backend.
type RedisGradingStore struct {
	client *redis.Client
}

func NewRedisGradingStore(client *redis.Client) *RedisGradingStore {
	return &RedisGradingStore{client: client}
}

func (s *RedisGradingStore) Save(ctx context.Context, job *model.GradingJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding grading job: %w", err)
	}

	if err := s.client.HSet(ctx, redisGradingJobsKey, job.ID, data).Err(); err != nil {
		return fmt.Errorf("saving grading job: %w", err)
	}
	return nil
}

func (s *RedisGradingStore) Load(ctx context.Context, id string) (*model.GradingJob, error) {
	data, err := s.client.HGet(ctx, redisGradingJobsKey, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading grading job: %w", err)
	}

	var job model.GradingJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("parsing grading job: %w", err)
	}
	return &job, nil
}

func (s *RedisGradingStore) LoadAll(ctx context.Context) ([]model.GradingJob, error) {
	fields, err := s.client.HGetAll(ctx, redisGradingJobsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("loading grading jobs: %w", err)
	}

	jobs := make([]model.GradingJob, 0, len(fields))
	for id, data := range fields {
		var job model.GradingJob
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			slog.WarnContext(ctx, "corrupt grading job entry, skipping", "grading_job_id", id, "error", err)
			continue
		}
		jobs = append(jobs, job)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	return jobs, nil
}

func (s *RedisGradingStore) Delete(ctx context.Context, id string) error {
	data, err := s.client.HGet(ctx, redisGradingJobsKey, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("loading grading job for deletion: %w", err)
	}

	trashField := fmt.Sprintf("%s_%d", id, time.Now().UnixMilli())
	if err := s.client.HSet(ctx, redisGradingTrashKey, trashField, data).Err(); err != nil {
		return fmt.Errorf("moving grading job to trash: %w", err)
	}

	return s.client.HDel(ctx, redisGradingJobsKey, id).Err()
}
