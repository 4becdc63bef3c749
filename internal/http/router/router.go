package router

import (
	"github.com/gin-gonic/gin"

	"ian.app/engine/internal/http/handler"
	"ian.app/engine/internal/service"
	"ian.app/engine/internal/store"
)

func SetupRoutes(router *gin.Engine, services *service.Services, settings store.SettingsStore) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		jobHandler := handler.NewJobHandler(services.Jobs())
		JobRouter(v1.Group("/jobs"), jobHandler)
		TrashRouter(v1.Group("/trash"), jobHandler)

		gradingHandler := handler.NewGradingHandler(services.Grading())
		GradingRouter(v1.Group("/grading-jobs"), gradingHandler)

		settingsHandler := handler.NewSettingsHandler(settings)
		SettingsRouter(v1.Group("/settings"), settingsHandler)
	}
}

func JobRouter(g *gin.RouterGroup, h *handler.JobHandler) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/run", h.Run)
	g.POST("/:id/versions", h.CreateVersion)
	g.GET("/:id/versions", h.ListVersions)
	g.GET("/:id/changelog-summary", h.ChangelogSummary)
}

func TrashRouter(g *gin.RouterGroup, h *handler.JobHandler) {
	g.GET("", h.ListTrash)
	g.POST("/:id/restore", h.Restore)
	g.DELETE("/:id", h.Purge)
}

func GradingRouter(g *gin.RouterGroup, h *handler.GradingHandler) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/run", h.Run)
}

func SettingsRouter(g *gin.RouterGroup, h *handler.SettingsHandler) {
	g.GET("/model", h.GetModel)
	g.PUT("/model", h.PutModel)
	g.PUT("/templates/:step", h.PutTemplateOverride)
}
