package model

import "time"

// JobStatus is the lifecycle state of a Job or GradingJob.
type JobStatus string

const (
	JobStatusNew       JobStatus = "new"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ReferenceFile carries the actual textual content backing a reference.
// When present, reference files supersede reference folders for prompt
// construction.
type ReferenceFile struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// Job is one versioned document-generation task and its accumulated outputs.
//
// Invariants: outputs keys are drawn from the fixed step output-file table,
// and Version == len(VersionHistory)+1.
type Job struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// ReferenceFolders lists opaque path/name strings describing externally
	// supplied context. Order is irrelevant to semantics but preserved for
	// display.
	ReferenceFolders []string        `json:"referenceFolders"`
	ReferenceFiles   []ReferenceFile `json:"referenceFiles,omitempty"`

	Status JobStatus `json:"status"`

	// Version is >= 1 and incremented exactly once per new-version operation.
	Version int `json:"version"`

	// CurrentStep is the last step id attempted. Informational only; runs
	// always restart from the first step.
	CurrentStep string `json:"currentStep,omitempty"`

	// Outputs maps fixed output-file names (e.g. "01_tech_lead.md") to
	// generated markdown content.
	Outputs map[string]string `json:"outputs"`

	// Changelog summarizes what changed from the previous version.
	Changelog string `json:"changelog,omitempty"`

	// VersionHistory holds superseded versions, oldest first.
	VersionHistory []VersionSnapshot `json:"versionHistory,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VersionSnapshot is an immutable capture of a Job at the moment a new
// version superseded it. Created once by the version-creation operation and
// never mutated afterward; owned by value by the Job that created it.
type VersionSnapshot struct {
	Version          int               `json:"version"`
	CreatedAt        time.Time         `json:"createdAt"`
	Description      string            `json:"description"`
	ChangeReason     string            `json:"changeReason"`
	Changelog        string            `json:"changelog,omitempty"`
	Status           JobStatus         `json:"status"`
	ReferenceFolders []string          `json:"referenceFolders"`
	ReferenceFiles   []ReferenceFile   `json:"referenceFiles,omitempty"`
	Outputs          map[string]string `json:"outputs"`
}

// PipelineStep is a static descriptor of one pipeline stage. The ordered set
// of steps is fixed and not user-configurable.
type PipelineStep struct {
	ID          string
	Order       int
	Name        string
	Description string
	OutputFile  string
}
