package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ian.app/engine/internal/http/dto"
	"ian.app/engine/internal/service"
)

type GradingHandler struct {
	grading service.GradingService
}

func NewGradingHandler(grading service.GradingService) *GradingHandler {
	return &GradingHandler{grading: grading}
}

func (h *GradingHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateGradingJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	job, err := h.grading.Create(ctx, service.CreateGradingJobInput{
		Title:        req.Title,
		Requirements: dto.ToRequirements(req.Requirements),
		Teams:        req.Teams,
	})
	if err != nil {
		if errors.Is(err, service.ErrTitleRequired) || errors.Is(err, service.ErrNoRequirements) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		writeStoreError(c, err, "failed to create grading job")
		return
	}

	c.JSON(http.StatusCreated, dto.ToGradingJobResponse(job))
}

func (h *GradingHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	jobs, err := h.grading.List(ctx)
	if err != nil {
		writeStoreError(c, err, "failed to list grading jobs")
		return
	}

	out := make([]*dto.GradingJobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, dto.ToGradingJobResponse(&jobs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"grading_jobs": out})
}

func (h *GradingHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	job, err := h.grading.Get(ctx, c.Param("id"))
	if err != nil {
		writeStoreError(c, err, "failed to load grading job")
		return
	}

	c.JSON(http.StatusOK, dto.ToGradingJobResponse(job))
}

func (h *GradingHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()

	job, err := h.grading.Run(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrJobRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": "grading job is already running"})
			return
		}
		writeStoreError(c, err, "failed to start grading run")
		return
	}

	c.JSON(http.StatusAccepted, dto.ToGradingJobResponse(job))
}

func (h *GradingHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.grading.Delete(ctx, c.Param("id")); err != nil {
		writeStoreError(c, err, "failed to delete grading job")
		return
	}

	c.Status(http.StatusNoContent)
}
