package dto

import (
	"time"

	"ian.app/engine/internal/model"
)

type RequirementRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name" binding:"required,min=1,max=255"`
	Content string `json:"content" binding:"required,min=1"`
}

type CreateGradingJobRequest struct {
	Title        string               `json:"title" binding:"required,min=1,max=500"`
	Requirements []RequirementRequest `json:"requirements" binding:"required,min=1,dive"`
	Teams        []string             `json:"teams"`
}

type GradingJobResponse struct {
	ID                    string                       `json:"id"`
	Title                 string                       `json:"title"`
	Status                string                       `json:"status"`
	Requirements          []model.Requirement          `json:"requirements"`
	Teams                 []string                     `json:"teams,omitempty"`
	GradedRequirements    []model.GradedRequirement    `json:"graded_requirements,omitempty"`
	TeamReadyRequirements []model.TeamReadyRequirement `json:"team_ready_requirements,omitempty"`
	ReportContent         string                       `json:"report_content,omitempty"`
	CreatedAt             time.Time                    `json:"created_at"`
	UpdatedAt             time.Time                    `json:"updated_at"`
}

func ToGradingJobResponse(job *model.GradingJob) *GradingJobResponse {
	return &GradingJobResponse{
		ID:                    job.ID,
		Title:                 job.Title,
		Status:                string(job.Status),
		Requirements:          job.Requirements,
		Teams:                 job.Teams,
		GradedRequirements:    job.GradedRequirements,
		TeamReadyRequirements: job.TeamReadyRequirements,
		ReportContent:         job.ReportContent,
		CreatedAt:             job.CreatedAt,
		UpdatedAt:             job.UpdatedAt,
	}
}

func ToRequirements(reqs []RequirementRequest) []model.Requirement {
	out := make([]model.Requirement, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, model.Requirement{
			ID:      r.ID,
			Name:    r.Name,
			Content: r.Content,
		})
	}
	return out
}
