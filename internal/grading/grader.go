package grading

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ian.app/engine/common/llm"
	"ian.app/engine/common/logger"
	"ian.app/engine/internal/model"
	"ian.app/engine/internal/store"
)

const gradingSystemPrompt = `You are a requirements-quality reviewer. Grade each requirement against this
rubric: A = unambiguous, testable, complete; B = minor gaps; C = notable
ambiguity or missing acceptance criteria; D = vague intent, not actionable;
F = not a requirement. Decide whether it is ready for handoff to a delivery
team, and if teams are listed, which team should own it.`

const refineSystemPrompt = `You are an agile coach preparing a graded requirement for sprint planning.
Write a user story ("As a ..., I want ..., so that ..."), concrete acceptance
criteria, and a story-point estimate using the 1/2/3/5/8/13 scale.`

// gradeResponse is the structured shape requested from the model for one
// requirement.
type gradeResponse struct {
	Grade           string `json:"grade" jsonschema:"required,enum=A,enum=B,enum=C,enum=D,enum=F,description=Letter grade for the requirement"`
	Explanation     string `json:"explanation" jsonschema:"required,description=Short justification for the grade"`
	ReadyForHandoff bool   `json:"readyForHandoff" jsonschema:"required,description=Whether the requirement can be handed to a team as-is"`
	AssignedTeam    string `json:"assignedTeam,omitempty" jsonschema:"description=Best-fit team from the provided list, empty if none fits"`
}

// refineResponse is the structured shape requested for a team-ready story.
type refineResponse struct {
	UserStory          string   `json:"userStory" jsonschema:"required"`
	AcceptanceCriteria []string `json:"acceptanceCriteria" jsonschema:"required"`
	StoryPoints        int      `json:"storyPoints" jsonschema:"required,description=Story point estimate on the 1/2/3/5/8/13 scale"`
}

// Grader runs the requirement-grading workflow.
type Grader struct {
	llm      llm.Client
	settings store.SettingsStore
}

func NewGrader(llmClient llm.Client, settings store.SettingsStore) *Grader {
	return &Grader{llm: llmClient, settings: settings}
}

// GradeAll grades every requirement in the job. Grading makes forward
// progress per item: a failed or malformed response degrades that single
// requirement to the worst grade with an explanatory message instead of
// aborting the batch.
func (g *Grader) GradeAll(ctx context.Context, job *model.GradingJob) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component:    "ian.grading.grader",
		GradingJobID: logger.Ptr(job.ID),
	})

	settings := store.ModelSettings(ctx, g.settings)
	schema := llm.GenerateSchema[gradeResponse]()

	graded := make([]model.GradedRequirement, 0, len(job.Requirements))
	for _, req := range job.Requirements {
		var resp gradeResponse
		err := g.llm.CompleteJSON(ctx, llm.Request{
			SystemPrompt: gradingSystemPrompt,
			Prompt:       buildGradePrompt(req, job.Teams),
			Model:        settings.Model,
			Temperature:  settings.Temperature,
		}, "requirement_grade", schema, &resp)
		if err != nil {
			slog.WarnContext(ctx, "grading failed for requirement, degrading to F",
				"requirement_id", req.ID, "error", err)
			graded = append(graded, model.GradedRequirement{
				RequirementID:   req.ID,
				Grade:           model.GradeF,
				Explanation:     fmt.Sprintf("Could not grade this requirement: %v", err),
				ReadyForHandoff: false,
			})
			continue
		}

		graded = append(graded, model.GradedRequirement{
			RequirementID:   req.ID,
			Grade:           normalizeGrade(resp.Grade),
			Explanation:     resp.Explanation,
			ReadyForHandoff: resp.ReadyForHandoff,
			AssignedTeam:    resp.AssignedTeam,
		})
	}

	job.GradedRequirements = graded
	job.UpdatedAt = time.Now().UTC()
}

// RefineForTeams turns handoff-ready graded requirements into sprint-ready
// stories. Estimates above the cap are flagged for splitting rather than
// silently clamped.
func (g *Grader) RefineForTeams(ctx context.Context, job *model.GradingJob) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component:    "ian.grading.grader",
		GradingJobID: logger.Ptr(job.ID),
	})

	settings := store.ModelSettings(ctx, g.settings)
	schema := llm.GenerateSchema[refineResponse]()

	byID := make(map[string]model.Requirement, len(job.Requirements))
	for _, req := range job.Requirements {
		byID[req.ID] = req
	}

	var refined []model.TeamReadyRequirement
	for _, gr := range job.GradedRequirements {
		if !gr.ReadyForHandoff || gr.AssignedTeam == "" {
			continue
		}

		req, ok := byID[gr.RequirementID]
		if !ok {
			continue
		}

		var resp refineResponse
		err := g.llm.CompleteJSON(ctx, llm.Request{
			SystemPrompt: refineSystemPrompt,
			Prompt:       buildRefinePrompt(req, gr),
			Model:        settings.Model,
			Temperature:  settings.Temperature,
		}, "team_ready_story", schema, &resp)
		if err != nil {
			slog.WarnContext(ctx, "refinement failed for requirement, skipping",
				"requirement_id", req.ID, "error", err)
			continue
		}

		story := model.TeamReadyRequirement{
			RequirementID:      req.ID,
			Team:               gr.AssignedTeam,
			UserStory:          resp.UserStory,
			AcceptanceCriteria: resp.AcceptanceCriteria,
			StoryPoints:        resp.StoryPoints,
		}
		if resp.StoryPoints > model.MaxStoryPoints {
			story.StoryPoints = model.MaxStoryPoints
			story.NeedsSplit = true
			story.SplitNote = fmt.Sprintf(
				"Estimated at %d points; split into smaller stories before planning.",
				resp.StoryPoints)
		}

		refined = append(refined, story)
	}

	job.TeamReadyRequirements = refined
	job.UpdatedAt = time.Now().UTC()
}

func buildGradePrompt(req model.Requirement, teams []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Requirement %s: %s\n\n%s\n", req.ID, req.Name, req.Content)
	if len(teams) > 0 {
		fmt.Fprintf(&b, "\nAvailable teams: %s\n", strings.Join(teams, ", "))
	}
	return b.String()
}

func buildRefinePrompt(req model.Requirement, gr model.GradedRequirement) string {
	return fmt.Sprintf(
		"Requirement %s: %s\n\n%s\n\nGrade: %s\nReviewer notes: %s\nOwning team: %s\n",
		req.ID, req.Name, req.Content, gr.Grade, gr.Explanation, gr.AssignedTeam)
}

func normalizeGrade(s string) model.Grade {
	switch model.Grade(strings.ToUpper(strings.TrimSpace(s))) {
	case model.GradeA:
		return model.GradeA
	case model.GradeB:
		return model.GradeB
	case model.GradeC:
		return model.GradeC
	case model.GradeD:
		return model.GradeD
	default:
		return model.GradeF
	}
}
