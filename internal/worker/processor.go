package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ian.app/engine/common/logger"
	"ian.app/engine/internal/grading"
	"ian.app/engine/internal/model"
	"ian.app/engine/internal/pipeline"
	"ian.app/engine/internal/queue"
	"ian.app/engine/internal/store"
	"ian.app/engine/internal/version"
)

// RunProcessor executes queued run tasks against the domain services.
type RunProcessor struct {
	jobs         store.JobStore
	gradingJobs  store.GradingJobStore
	orchestrator *pipeline.Orchestrator
	versions     *version.Service
	grader       *grading.Grader
}

func NewRunProcessor(
	jobs store.JobStore,
	gradingJobs store.GradingJobStore,
	orchestrator *pipeline.Orchestrator,
	versions *version.Service,
	grader *grading.Grader,
) *RunProcessor {
	return &RunProcessor{
		jobs:         jobs,
		gradingJobs:  gradingJobs,
		orchestrator: orchestrator,
		versions:     versions,
		grader:       grader,
	}
}

func (p *RunProcessor) Process(ctx context.Context, msg queue.Message) error {
	switch msg.TaskType {
	case queue.TaskTypePipelineRun:
		return p.processPipelineRun(ctx, msg.JobID)
	case queue.TaskTypeGradingRun:
		return p.processGradingRun(ctx, msg.JobID)
	default:
		return fmt.Errorf("unknown task type %q", msg.TaskType)
	}
}

func (p *RunProcessor) processPipelineRun(ctx context.Context, jobID string) error {
	job, err := p.jobs.Load(ctx, jobID)
	if err != nil {
		return fmt.Errorf("loading job %s: %w", jobID, err)
	}

	if err := p.orchestrator.Run(ctx, job); err != nil {
		return err
	}

	// The changelog describes what changed relative to the previous version.
	// For version 1 there is nothing to compare and the literal initial text
	// is used without an AI call.
	var prev *model.VersionSnapshot
	if n := len(job.VersionHistory); n > 0 {
		prev = &job.VersionHistory[n-1]
	}
	job.Changelog = p.versions.GenerateChangelog(ctx, prev, job)
	job.UpdatedAt = time.Now().UTC()

	if err := p.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("persisting changelog: %w", err)
	}
	return nil
}

func (p *RunProcessor) processGradingRun(ctx context.Context, jobID string) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component:    "ian.worker.grading",
		GradingJobID: logger.Ptr(jobID),
	})

	job, err := p.gradingJobs.Load(ctx, jobID)
	if err != nil {
		return fmt.Errorf("loading grading job %s: %w", jobID, err)
	}

	job.Status = model.JobStatusRunning
	job.UpdatedAt = time.Now().UTC()
	if err := p.gradingJobs.Save(ctx, job); err != nil {
		return fmt.Errorf("persisting run start: %w", err)
	}

	p.grader.GradeAll(ctx, job)
	p.grader.RefineForTeams(ctx, job)
	grading.BuildReport(job)

	job.Status = model.JobStatusCompleted
	job.UpdatedAt = time.Now().UTC()
	if err := p.gradingJobs.Save(ctx, job); err != nil {
		return fmt.Errorf("persisting graded job: %w", err)
	}

	slog.InfoContext(ctx, "grading run completed",
		"requirements", len(job.Requirements),
		"team_ready", len(job.TeamReadyRequirements))
	return nil
}
