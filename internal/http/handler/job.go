package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"ian.app/engine/internal/http/dto"
	"ian.app/engine/internal/service"
	"ian.app/engine/internal/store"
)

type JobHandler struct {
	jobs service.JobService
}

func NewJobHandler(jobs service.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

func (h *JobHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	job, err := h.jobs.Create(ctx, service.CreateJobInput{
		Title:            req.Title,
		Description:      req.Description,
		ReferenceFolders: req.ReferenceFolders,
		ReferenceFiles:   dto.ToReferenceFiles(req.ReferenceFiles),
	})
	if err != nil {
		if errors.Is(err, service.ErrTitleRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		writeStoreError(c, err, "failed to create job")
		return
	}

	c.JSON(http.StatusCreated, dto.ToJobResponse(job))
}

func (h *JobHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	jobs, err := h.jobs.List(ctx)
	if err != nil {
		writeStoreError(c, err, "failed to list jobs")
		return
	}

	briefs := make([]dto.JobBrief, 0, len(jobs))
	for _, job := range jobs {
		briefs = append(briefs, dto.ToJobBrief(job))
	}
	c.JSON(http.StatusOK, gin.H{"jobs": briefs})
}

func (h *JobHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	job, err := h.jobs.Get(ctx, c.Param("id"))
	if err != nil {
		writeStoreError(c, err, "failed to load job")
		return
	}

	c.JSON(http.StatusOK, dto.ToJobResponse(job))
}

func (h *JobHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()

	job, err := h.jobs.Run(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrJobRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": "job is already running"})
			return
		}
		writeStoreError(c, err, "failed to start run")
		return
	}

	c.JSON(http.StatusAccepted, dto.ToJobResponse(job))
}

func (h *JobHandler) CreateVersion(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.NewVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: change_reason is required"})
		return
	}

	job, err := h.jobs.CreateVersion(ctx, c.Param("id"), service.NewVersionInput{
		ChangeReason:     req.ChangeReason,
		ReferenceFolders: req.ReferenceFolders,
		ReferenceFiles:   dto.ToReferenceFiles(req.ReferenceFiles),
	})
	if err != nil {
		if errors.Is(err, service.ErrJobRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": "job is already running"})
			return
		}
		writeStoreError(c, err, "failed to create version")
		return
	}

	c.JSON(http.StatusCreated, dto.ToJobResponse(job))
}

func (h *JobHandler) ListVersions(c *gin.Context) {
	ctx := c.Request.Context()

	job, err := h.jobs.Get(ctx, c.Param("id"))
	if err != nil {
		writeStoreError(c, err, "failed to load job")
		return
	}

	versions := make([]dto.VersionSnapshotResponse, 0, len(job.VersionHistory))
	for _, snapshot := range job.VersionHistory {
		versions = append(versions, dto.ToVersionSnapshotResponse(snapshot))
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions, "current_version": job.Version})
}

func (h *JobHandler) ChangelogSummary(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := h.jobs.ChangelogSummary(ctx, c.Param("id"))
	if err != nil {
		writeStoreError(c, err, "failed to load job")
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *JobHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.jobs.Delete(ctx, c.Param("id")); err != nil {
		writeStoreError(c, err, "failed to delete job")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *JobHandler) ListTrash(c *gin.Context) {
	ctx := c.Request.Context()

	entries, err := h.jobs.ListTrash(ctx)
	if err != nil {
		writeStoreError(c, err, "failed to list trash")
		return
	}

	out := make([]dto.TrashEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ToTrashEntryResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"trash": out})
}

func (h *JobHandler) Restore(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.jobs.Restore(ctx, c.Param("id")); err != nil {
		writeStoreError(c, err, "failed to restore job")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *JobHandler) Purge(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.jobs.Purge(ctx, c.Param("id")); err != nil {
		writeStoreError(c, err, "failed to purge trash entry")
		return
	}

	c.Status(http.StatusNoContent)
}

// writeStoreError maps storage errors to HTTP responses shared by all handlers.
func writeStoreError(c *gin.Context, err error, msg string) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrPermissionDenied):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(ctx, msg, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
