package app

import (
	"tutor_desk_backend/docs"
	"tutor_desk_backend/internal/config"
	"tutor_desk_backend/internal/middleware"
	"tutor_desk_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		// Roster
		authGroup.GET("/students", c.student.List)
		authGroup.POST("/students", c.student.Create)
		authGroup.GET("/students/:id", c.student.Get)
		authGroup.PUT("/students/:id", c.student.Update)
		authGroup.DELETE("/students/:id", c.student.Delete)

		// Payments
		authGroup.GET("/students/:id/payments", c.payment.ListForStudent)
		authGroup.POST("/students/:id/payments/paid", c.payment.MarkPaid)

		// Scheduling
		authGroup.POST("/schedule/validate", c.schedule.Validate)
		authGroup.GET("/schedule/slots", c.schedule.SuggestedSlots)
		authGroup.POST("/sessions", c.schedule.CreateSession)
		authGroup.POST("/sessions/:id/cancel", c.schedule.CancelSession)
		authGroup.POST("/sessions/:id/restore", c.schedule.RestoreSession)
		authGroup.POST("/sessions/:id/confirm", c.schedule.ConfirmSession)

		// Suggestions
		authGroup.GET("/suggestions/current", c.suggestion.Current)
		authGroup.GET("/suggestions", c.suggestion.List)
		authGroup.GET("/suggestions/history", c.suggestion.History)
		authGroup.POST("/suggestions/refresh", c.suggestion.Refresh)
		authGroup.POST("/suggestions/resolve", c.suggestion.Resolve)
		authGroup.POST("/suggestions/:id/dismiss", c.suggestion.Dismiss)
		authGroup.POST("/suggestions/:id/action", c.suggestion.Action)
	}
}
