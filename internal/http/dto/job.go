package dto

import (
	"time"

	"ian.app/engine/internal/model"
	"ian.app/engine/internal/store"
)

type ReferenceFileRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=255"`
	Path    string `json:"path"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

type CreateJobRequest struct {
	Title            string                 `json:"title" binding:"required,min=1,max=500"`
	Description      string                 `json:"description"`
	ReferenceFolders []string               `json:"reference_folders"`
	ReferenceFiles   []ReferenceFileRequest `json:"reference_files"`
}

type NewVersionRequest struct {
	ChangeReason     string                 `json:"change_reason" binding:"required,min=1"`
	ReferenceFolders []string               `json:"reference_folders"`
	ReferenceFiles   []ReferenceFileRequest `json:"reference_files"`
}

type JobResponse struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Status           string            `json:"status"`
	Version          int               `json:"version"`
	CurrentStep      string            `json:"current_step,omitempty"`
	Outputs          map[string]string `json:"outputs,omitempty"`
	Changelog        string            `json:"changelog,omitempty"`
	ReferenceFolders []string          `json:"reference_folders"`
	VersionCount     int               `json:"version_count"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// JobBrief omits outputs and history for list views.
type JobBrief struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VersionSnapshotResponse struct {
	Version      int       `json:"version"`
	ChangeReason string    `json:"change_reason"`
	Changelog    string    `json:"changelog,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type TrashEntryResponse struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

func ToJobResponse(job *model.Job) *JobResponse {
	return &JobResponse{
		ID:               job.ID,
		Title:            job.Title,
		Description:      job.Description,
		Status:           string(job.Status),
		Version:          job.Version,
		CurrentStep:      job.CurrentStep,
		Outputs:          job.Outputs,
		Changelog:        job.Changelog,
		ReferenceFolders: job.ReferenceFolders,
		VersionCount:     len(job.VersionHistory) + 1,
		CreatedAt:        job.CreatedAt,
		UpdatedAt:        job.UpdatedAt,
	}
}

func ToJobBrief(job model.Job) JobBrief {
	return JobBrief{
		ID:        job.ID,
		Title:     job.Title,
		Status:    string(job.Status),
		Version:   job.Version,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}

func ToVersionSnapshotResponse(s model.VersionSnapshot) VersionSnapshotResponse {
	return VersionSnapshotResponse{
		Version:      s.Version,
		ChangeReason: s.ChangeReason,
		Changelog:    s.Changelog,
		Status:       string(s.Status),
		CreatedAt:    s.CreatedAt,
	}
}

func ToTrashEntryResponse(e store.TrashEntry) TrashEntryResponse {
	return TrashEntryResponse{
		ID:        e.ID,
		JobID:     e.JobID,
		DeletedAt: e.DeletedAt,
	}
}

func ToReferenceFiles(reqs []ReferenceFileRequest) []model.ReferenceFile {
	if len(reqs) == 0 {
		return nil
	}
	files := make([]model.ReferenceFile, 0, len(reqs))
	for _, r := range reqs {
		files = append(files, model.ReferenceFile{
			Name:    r.Name,
			Path:    r.Path,
			Content: r.Content,
			Type:    r.Type,
		})
	}
	return files
}
