package app

import (
	"quiz_session_backend/docs"
	"quiz_session_backend/internal/config"
	"quiz_session_backend/internal/middleware"
	"quiz_session_backend/internal/model"
	"quiz_session_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerQuizRoutes(authGroup, c)
		a.registerSessionRoutes(authGroup, c)
	}

	a.registerAdminRoutes(router, c, repos)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerQuizRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/quizzes", c.quiz.List)
	rg.GET("/quizzes/:id", c.quiz.Get)
}

func (a *App) registerSessionRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/quizzes/:id/sessions", c.session.Start)

	rg.GET("/sessions", c.session.ListMine)
	rg.GET("/submissions", c.session.ListMySubmissions)

	sessions := rg.Group("/sessions/:token")
	{
		sessions.GET("", c.session.Get)
		sessions.POST("/answers", c.session.SubmitAnswer)
		sessions.POST("/next", c.session.Next)
		sessions.POST("/previous", c.session.Previous)
		sessions.POST("/complete", c.session.Complete)
		sessions.POST("/abandon", c.session.Abandon)
		sessions.POST("/extend", c.session.Extend)
		sessions.GET("/results", c.session.Results)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(a.Config), middleware.ActivityMiddleware(repos.user))
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/sessions/sweep", c.session.Sweep)
	}
}
