package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ian.app/engine/common/id"
	"ian.app/engine/internal/model"
	"ian.app/engine/internal/queue"
	"ian.app/engine/internal/store"
)

var ErrNoRequirements = errors.New("at least one requirement is required")

// CreateGradingJobInput carries the requirements to grade and the teams
// eligible for handoff assignment.
type CreateGradingJobInput struct {
	Title        string
	Requirements []model.Requirement
	Teams        []string
}

type GradingService interface {
	Create(ctx context.Context, input CreateGradingJobInput) (*model.GradingJob, error)
	Get(ctx context.Context, jobID string) (*model.GradingJob, error)
	List(ctx context.Context) ([]model.GradingJob, error)
	Run(ctx context.Context, jobID string) (*model.GradingJob, error)
	Delete(ctx context.Context, jobID string) error
}

type gradingService struct {
	gradingJobs store.GradingJobStore
	producer    queue.Producer
}

func NewGradingService(gradingJobs store.GradingJobStore, producer queue.Producer) GradingService {
	return &gradingService{
		gradingJobs: gradingJobs,
		producer:    producer,
	}
}

func (s *gradingService) Create(ctx context.Context, input CreateGradingJobInput) (*model.GradingJob, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if len(input.Requirements) == 0 {
		return nil, ErrNoRequirements
	}

	// Requirements arriving without ids get one assigned so grades can be
	// joined back to their source.
	for i := range input.Requirements {
		if input.Requirements[i].ID == "" {
			input.Requirements[i].ID = fmt.Sprintf("req-%d", i+1)
		}
	}

	now := time.Now().UTC()
	job := &model.GradingJob{
		ID:           id.NewString(),
		Title:        title,
		Status:       model.JobStatusNew,
		Requirements: input.Requirements,
		Teams:        input.Teams,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.gradingJobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("saving grading job: %w", err)
	}

	slog.InfoContext(ctx, "grading job created",
		"grading_job_id", job.ID,
		"requirements", len(job.Requirements))
	return job, nil
}

func (s *gradingService) Get(ctx context.Context, jobID string) (*model.GradingJob, error) {
	return s.gradingJobs.Load(ctx, jobID)
}

func (s *gradingService) List(ctx context.Context) ([]model.GradingJob, error) {
	return s.gradingJobs.LoadAll(ctx)
}

func (s *gradingService) Run(ctx context.Context, jobID string) (*model.GradingJob, error) {
	job, err := s.gradingJobs.Load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == model.JobStatusRunning {
		return nil, ErrJobRunning
	}

	task := queue.RunTask{
		TaskType: queue.TaskTypeGradingRun,
		JobID:    job.ID,
		TraceID:  traceID(ctx),
	}
	if err := s.producer.Enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueueing grading run: %w", err)
	}

	slog.InfoContext(ctx, "grading run enqueued", "grading_job_id", job.ID)
	return job, nil
}

func (s *gradingService) Delete(ctx context.Context, jobID string) error {
	return s.gradingJobs.Delete(ctx, jobID)
}
