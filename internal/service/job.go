package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"ian.app/engine/common/id"
	"ian.app/engine/common/logger"
	"ian.app/engine/internal/model"
	"ian.app/engine/internal/queue"
	"ian.app/engine/internal/store"
	"ian.app/engine/internal/version"
)

var (
	ErrTitleRequired = errors.New("job title is required")
	ErrJobRunning    = errors.New("job is already running")
)

// CreateJobInput carries everything needed to register a new job.
type CreateJobInput struct {
	Title            string
	Description      string
	ReferenceFolders []string
	ReferenceFiles   []model.ReferenceFile
}

// NewVersionInput describes a version bump of an existing job.
type NewVersionInput struct {
	ChangeReason     string
	ReferenceFolders []string
	ReferenceFiles   []model.ReferenceFile
}

type JobService interface {
	Create(ctx context.Context, input CreateJobInput) (*model.Job, error)
	Get(ctx context.Context, jobID string) (*model.Job, error)
	List(ctx context.Context) ([]model.Job, error)
	Run(ctx context.Context, jobID string) (*model.Job, error)
	CreateVersion(ctx context.Context, jobID string, input NewVersionInput) (*model.Job, error)
	Delete(ctx context.Context, jobID string) error
	ListTrash(ctx context.Context) ([]store.TrashEntry, error)
	Restore(ctx context.Context, trashID string) error
	Purge(ctx context.Context, trashID string) error
	ChangelogSummary(ctx context.Context, jobID string) (string, error)
}

type jobService struct {
	jobs     store.JobStore
	trash    store.TrashStore
	versions *version.Service
	producer queue.Producer
}

func NewJobService(jobs store.JobStore, trash store.TrashStore, versions *version.Service, producer queue.Producer) JobService {
	return &jobService{
		jobs:     jobs,
		trash:    trash,
		versions: versions,
		producer: producer,
	}
}

func (s *jobService) Create(ctx context.Context, input CreateJobInput) (*model.Job, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	now := time.Now().UTC()
	job := &model.Job{
		ID:               id.NewString(),
		Title:            title,
		Description:      input.Description,
		ReferenceFolders: input.ReferenceFolders,
		ReferenceFiles:   input.ReferenceFiles,
		Status:           model.JobStatusNew,
		Version:          1,
		Outputs:          map[string]string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("saving job: %w", err)
	}

	slog.InfoContext(ctx, "job created", "job_id", job.ID, "title", job.Title)
	return job, nil
}

func (s *jobService) Get(ctx context.Context, jobID string) (*model.Job, error) {
	return s.jobs.Load(ctx, jobID)
}

func (s *jobService) List(ctx context.Context) ([]model.Job, error) {
	return s.jobs.LoadAll(ctx)
}

// Run marks the job as queued for execution and enqueues a pipeline run task.
// The actual execution happens on a worker.
func (s *jobService) Run(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := s.jobs.Load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == model.JobStatusRunning {
		return nil, ErrJobRunning
	}

	task := queue.RunTask{
		TaskType: queue.TaskTypePipelineRun,
		JobID:    job.ID,
		TraceID:  traceID(ctx),
	}
	if err := s.producer.Enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueueing pipeline run: %w", err)
	}

	slog.InfoContext(ctx, "pipeline run enqueued", "job_id", job.ID, "version", job.Version)
	return job, nil
}

func (s *jobService) CreateVersion(ctx context.Context, jobID string, input NewVersionInput) (*model.Job, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "ian.service.job",
		JobID:     logger.Ptr(jobID),
	})

	job, err := s.jobs.Load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == model.JobStatusRunning {
		return nil, ErrJobRunning
	}

	s.versions.CreateVersion(job, input.ChangeReason, input.ReferenceFolders, input.ReferenceFiles)

	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("saving new version: %w", err)
	}

	slog.InfoContext(ctx, "version created",
		"version", job.Version,
		"history_len", len(job.VersionHistory))
	return job, nil
}

func (s *jobService) Delete(ctx context.Context, jobID string) error {
	if err := s.jobs.SoftDelete(ctx, jobID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "job moved to trash", "job_id", jobID)
	return nil
}

func (s *jobService) ListTrash(ctx context.Context) ([]store.TrashEntry, error) {
	return s.trash.ListTrash(ctx)
}

func (s *jobService) Restore(ctx context.Context, trashID string) error {
	return s.trash.Restore(ctx, trashID)
}

func (s *jobService) Purge(ctx context.Context, trashID string) error {
	return s.trash.Purge(ctx, trashID)
}

func (s *jobService) ChangelogSummary(ctx context.Context, jobID string) (string, error) {
	job, err := s.jobs.Load(ctx, jobID)
	if err != nil {
		return "", err
	}
	return version.ExtractChangelogSummary(job.Changelog), nil
}

func traceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
