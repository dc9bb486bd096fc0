package app

import (
	"exam_tutor_backend/docs"
	"exam_tutor_backend/internal/middleware"
	"exam_tutor_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		// 学生端接口无需登录，学生仅以不透明 id 标识
		api.GET("/question_bank/latest_version", c.bank.LatestVersion)

		api.POST("/paper/create", c.paper.CreatePaper)
		api.GET("/paper/:id", c.paper.GetPaper)
		api.POST("/paper/:id/submit", c.paper.SubmitPaper)

		api.POST("/submission/items/:id/hint", c.submission.UpgradeHint)

		api.POST("/practice/create", c.practice.CreatePractice)
		api.POST("/practice/:id/submit", c.practice.SubmitPractice)

		api.POST("/admin/login", c.admin.Login)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			admin.POST("/generate_drafts", c.admin.GenerateDrafts)
			admin.GET("/draft_stats", c.admin.DraftStats)
			admin.GET("/drafts", c.admin.ListDrafts)
			admin.POST("/drafts", c.admin.CreateDraft)
			admin.POST("/drafts/normalize", c.admin.NormalizeDrafts)
			admin.GET("/drafts/:id", c.admin.GetDraft)
			admin.PUT("/drafts/:id", c.admin.UpdateDraft)
			admin.DELETE("/drafts/:id", c.admin.DeleteDraft)
			admin.POST("/save_drafts", c.admin.SaveDrafts)
			admin.POST("/freeze", c.admin.Freeze)
		}
	}
}
