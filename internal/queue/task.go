package queue

// TaskType discriminates what a queued run task executes.
type TaskType string

const (
	// TaskTypePipelineRun runs the full document pipeline for a job.
	TaskTypePipelineRun TaskType = "pipeline_run"
	// TaskTypeGradingRun runs the grading workflow for a grading job.
	TaskTypeGradingRun TaskType = "grading_run"
)

// RunTask is a request to execute a workflow for one job.
type RunTask struct {
	TaskType TaskType
	JobID    string
	TraceID  string
	Attempt  int
}
