package store

import (
	"context"
	"errors"
	"time"

	"ian.app/engine/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrPermissionDenied is returned when a mutating operation is attempted
// without a usable storage root. The message is user-actionable.
var ErrPermissionDenied = errors.New("storage root is not writable; re-select your storage folder")

// JobStore is the contract both persistence backends implement for document
// pipeline jobs.
type JobStore interface {
	Save(ctx context.Context, job *model.Job) error
	Load(ctx context.Context, id string) (*model.Job, error)
	// LoadAll returns every job, sorted by createdAt descending.
	LoadAll(ctx context.Context) ([]model.Job, error)
	// SoftDelete moves the job into a trash area, preserving its data.
	SoftDelete(ctx context.Context, id string) error
}

// TrashEntry describes one soft-deleted job held in the trash area.
type TrashEntry struct {
	// ID is the trash-entry name, "<jobID>_<timestamp>". Repeated trashings
	// of the same job id yield distinct entries.
	ID        string    `json:"id"`
	JobID     string    `json:"jobId"`
	DeletedAt time.Time `json:"deletedAt"`
}

// TrashStore extends JobStore with restore semantics. Both backends
// implement it: the directory backend as a .trash subtree, the flat backend
// as a separate trash hash.
type TrashStore interface {
	ListTrash(ctx context.Context) ([]TrashEntry, error)
	// Restore moves a trash entry back under its original job id.
	Restore(ctx context.Context, trashID string) error
	// Purge permanently removes a trash entry.
	Purge(ctx context.Context, trashID string) error
}

// GradingJobStore persists grading workflow jobs.
type GradingJobStore interface {
	Save(ctx context.Context, job *model.GradingJob) error
	Load(ctx context.Context, id string) (*model.GradingJob, error)
	LoadAll(ctx context.Context) ([]model.GradingJob, error)
	Delete(ctx context.Context, id string) error
}
