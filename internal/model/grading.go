package model

import "time"

// Grade is a requirement-quality letter grade.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// MaxStoryPoints caps team-ready estimates; anything above it must be split.
const MaxStoryPoints = 8

// Requirement is a free-text requirement submitted for grading.
type Requirement struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// GradedRequirement is the rubric assessment of a single requirement.
type GradedRequirement struct {
	RequirementID   string `json:"requirementId"`
	Grade           Grade  `json:"grade"`
	Explanation     string `json:"explanation"`
	ReadyForHandoff bool   `json:"readyForHandoff"`
	AssignedTeam    string `json:"assignedTeam,omitempty"`
}

// TeamReadyRequirement is a graded requirement refined into a sprint-ready
// story. Estimates above MaxStoryPoints set NeedsSplit with a note.
type TeamReadyRequirement struct {
	RequirementID      string   `json:"requirementId"`
	Team               string   `json:"team"`
	UserStory          string   `json:"userStory"`
	AcceptanceCriteria []string `json:"acceptanceCriteria"`
	StoryPoints        int      `json:"storyPoints"`
	NeedsSplit         bool     `json:"needsSplit,omitempty"`
	SplitNote          string   `json:"splitNote,omitempty"`
}

// GradingJob aggregates a requirement-grading workflow run.
type GradingJob struct {
	ID                    string                 `json:"id"`
	Title                 string                 `json:"title"`
	Status                JobStatus              `json:"status"`
	Requirements          []Requirement          `json:"requirements"`
	Teams                 []string               `json:"teams,omitempty"`
	GradedRequirements    []GradedRequirement    `json:"gradedRequirements,omitempty"`
	TeamReadyRequirements []TeamReadyRequirement `json:"teamReadyRequirements,omitempty"`
	ReportContent         string                 `json:"reportContent,omitempty"`
	CreatedAt             time.Time              `json:"createdAt"`
	UpdatedAt             time.Time              `json:"updatedAt"`
}
