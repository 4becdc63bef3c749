package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ian.app/engine/common/llm"
	"ian.app/engine/common/logger"
	"ian.app/engine/internal/model"
	"ian.app/engine/internal/store"
	"ian.app/engine/internal/template"
)

// Observer receives pipeline progress notifications. Calls are fire-and-forget:
// the orchestrator never waits on an observer and a slow observer cannot block
// a run.
type Observer interface {
	OnProgress(jobID, stepID string, percent int)
	OnStepComplete(jobID, stepID, outputFile string)
}

// NopObserver discards all notifications.
type NopObserver struct{}

func (NopObserver) OnProgress(string, string, int)        {}
func (NopObserver) OnStepComplete(string, string, string) {}

// Orchestrator executes the fixed step sequence for a job.
type Orchestrator struct {
	llm      llm.Client
	registry *template.Registry
	jobs     store.JobStore
	settings store.SettingsStore
	observer Observer
}

func NewOrchestrator(llmClient llm.Client, registry *template.Registry, jobs store.JobStore, settings store.SettingsStore, observer Observer) *Orchestrator {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Orchestrator{
		llm:      llmClient,
		registry: registry,
		jobs:     jobs,
		settings: settings,
		observer: observer,
	}
}

// Run executes all steps in order, mutating and persisting job as it goes.
//
// A step failure marks the job failed and aborts the run; already-written
// outputs remain. There is no retry and no resume: a re-run starts over from
// the first step with empty outputs.
func (o *Orchestrator) Run(ctx context.Context, job *model.Job) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "ian.pipeline.orchestrator",
		JobID:     logger.Ptr(job.ID),
		Version:   logger.Ptr(job.Version),
	})

	start := time.Now()
	slog.InfoContext(ctx, "pipeline run starting", "title", job.Title, "steps", len(Steps))

	job.Status = model.JobStatusRunning
	job.Outputs = make(map[string]string, len(OutputFiles))
	job.CurrentStep = ""
	job.UpdatedAt = time.Now().UTC()
	if err := o.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("persisting run start: %w", err)
	}

	settings := store.ModelSettings(ctx, o.settings)

	for i, step := range Steps {
		stepCtx := logger.WithLogFields(ctx, logger.LogFields{StepID: logger.Ptr(step.ID)})

		o.notifyProgress(job.ID, step.ID, i*100/len(Steps))

		content, err := o.runStep(stepCtx, job, step, settings)
		if err != nil {
			job.Status = model.JobStatusFailed
			job.UpdatedAt = time.Now().UTC()
			if saveErr := o.jobs.Save(ctx, job); saveErr != nil {
				slog.ErrorContext(ctx, "failed to persist failed job", "error", saveErr)
			}
			return fmt.Errorf("step %s: %w", step.ID, err)
		}

		job.Outputs[step.OutputFile] = content
		job.CurrentStep = step.ID
		job.UpdatedAt = time.Now().UTC()
		if err := o.jobs.Save(ctx, job); err != nil {
			return fmt.Errorf("persisting step %s output: %w", step.ID, err)
		}

		o.notifyStepComplete(job.ID, step.ID, step.OutputFile)
	}

	job.Status = model.JobStatusCompleted
	job.UpdatedAt = time.Now().UTC()
	if err := o.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("persisting completed job: %w", err)
	}

	o.notifyProgress(job.ID, "", 100)

	slog.InfoContext(ctx, "pipeline run completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"outputs", len(job.Outputs))
	return nil
}

func (o *Orchestrator) runStep(ctx context.Context, job *model.Job, step model.PipelineStep, settings store.Settings) (string, error) {
	tmpl, err := o.registry.Get(ctx, step.ID)
	if err != nil {
		return "", err
	}

	prompt := template.Fill(tmpl, BuildStepVariables(job, step))

	slog.DebugContext(ctx, "invoking step agent",
		"model", settings.Model,
		"prompt_chars", len(prompt))

	content, err := o.llm.Complete(ctx, llm.Request{
		Prompt:      prompt,
		Model:       settings.Model,
		Temperature: settings.Temperature,
	})
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "step completed", "output_file", step.OutputFile, "output_chars", len(content))
	return content, nil
}

func (o *Orchestrator) notifyProgress(jobID, stepID string, percent int) {
	go o.observer.OnProgress(jobID, stepID, percent)
}

func (o *Orchestrator) notifyStepComplete(jobID, stepID, outputFile string) {
	go o.observer.OnStepComplete(jobID, stepID, outputFile)
}
