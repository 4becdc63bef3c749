package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ian.app/engine/internal/store"
)

type SettingsHandler struct {
	settings store.SettingsStore
}

func NewSettingsHandler(settings store.SettingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

type modelSettingsRequest struct {
	Model       string   `json:"model" binding:"required,min=1,max=128"`
	Temperature *float64 `json:"temperature" binding:"omitempty,gte=0,lte=2"`
	AuthMode    string   `json:"auth_mode"`
}

func (h *SettingsHandler) GetModel(c *gin.Context) {
	ctx := c.Request.Context()
	settings := store.ModelSettings(ctx, h.settings)

	c.JSON(http.StatusOK, gin.H{
		"model":       settings.Model,
		"temperature": settings.Temperature,
		"auth_mode":   settings.AuthMode,
	})
}

func (h *SettingsHandler) PutModel(c *gin.Context) {
	ctx := c.Request.Context()

	var req modelSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	settings := store.Settings{
		Model:       req.Model,
		Temperature: req.Temperature,
		AuthMode:    req.AuthMode,
	}
	if err := h.settings.Put(ctx, "model", settings); err != nil {
		writeStoreError(c, err, "failed to save settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}

type templateOverrideRequest struct {
	Template string `json:"template" binding:"required,min=1"`
}

func (h *SettingsHandler) PutTemplateOverride(c *gin.Context) {
	ctx := c.Request.Context()

	var req templateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: template is required"})
		return
	}

	stepID := c.Param("step")
	if err := h.settings.Put(ctx, "template_"+stepID, req.Template); err != nil {
		writeStoreError(c, err, "failed to save template override")
		return
	}

	c.Status(http.StatusNoContent)
}
