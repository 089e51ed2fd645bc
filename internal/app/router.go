package app

import (
	"qa_forum_backend/docs"
	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/middleware"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录，登录用户可看到自己的投票等信息)
	a.registerPublicRoutes(router, c, cfg)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerUserRoutes(authGroup, c)
		a.registerThreadRoutes(authGroup, c)
		a.registerReviewRoutes(authGroup, c)
		a.registerMessageRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/register/invitation", c.auth.RegisterWithInvitation)
		public.POST("/login", c.auth.Login)
		public.GET("/invitations/:code", c.invitation.Validate)

		// 首次部署时创建管理员
		public.GET("/setup", c.auth.SetupStatus)
		public.POST("/setup", c.auth.BootstrapAdmin)
	}

	browse := router.Group("/api")
	browse.Use(middleware.TryAuthMiddleware(cfg))
	{
		browse.GET("/questions", c.question.ListQuestions)
		browse.GET("/questions/:id", c.question.GetQuestion)
		browse.GET("/questions/:id/follow-ups", c.question.ListFollowUps)
		browse.GET("/questions/:id/answers", c.answer.ListAnswers)
		browse.GET("/questions/:id/resolution", c.question.GetResolution)
		browse.GET("/answers/:id", c.answer.GetAnswer)
		browse.GET("/answers/:id/votes", c.answer.GetVotes)
		browse.GET("/reviews", c.review.ListReviews)
		browse.GET("/reviews/:id", c.review.GetReview)
	}
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.Profile)
	rg.POST("/token/refresh", c.auth.RefreshToken)

	rg.GET("/users", c.user.ListUsers)
	rg.GET("/users/:id", c.user.GetUser)
	rg.GET("/users/:id/roles", c.user.GetUserRoles)
	rg.GET("/users/by-name/:name/roles", c.user.GetUserRolesByName)

	// 角色申请
	rg.POST("/role-requests", c.roleRequest.RequestRole)
	rg.GET("/role-requests/mine", c.roleRequest.ListMyRequests)
	rg.GET("/role-requests/check", c.roleRequest.HasRequested)
}

func (a *App) registerThreadRoutes(rg *gin.RouterGroup, c *controllers) {
	// 问题
	rg.POST("/questions", c.question.CreateQuestion)
	rg.PUT("/questions/:id", c.question.UpdateQuestion)
	rg.DELETE("/questions/:id", c.question.DeleteQuestion)
	rg.GET("/questions/:id/unread", c.question.UnreadCount)
	rg.PUT("/questions/:id/resolution", c.question.SetResolution)
	rg.DELETE("/questions/:id/resolution", c.question.ClearResolution)

	// 回答
	rg.POST("/questions/:id/answers", c.answer.CreateAnswer)
	rg.PUT("/answers/:id", c.answer.UpdateAnswer)
	rg.DELETE("/answers/:id", c.answer.DeleteAnswer)
	rg.GET("/me/answers", c.answer.MyAnswers)

	// 投票
	rg.PUT("/answers/:id/vote", c.answer.SetVote)
	rg.POST("/answers/:id/upvote", c.answer.Upvote)
	rg.POST("/answers/:id/downvote", c.answer.Downvote)
}

func (a *App) registerReviewRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/reviews/trusted", c.review.ListTrustedReviews)
	rg.POST("/reviews", middleware.RoleMiddleware(model.RoleReviewer), c.review.CreateReview)
	rg.PUT("/reviews/:id", c.review.UpdateReview)
	rg.DELETE("/reviews/:id", c.review.DeleteReview)
	rg.GET("/me/reviews", c.review.MyReviews)

	// 可信评审者
	trusted := rg.Group("/trusted-reviewers")
	{
		trusted.GET("", c.review.ListTrustedReviewers)
		trusted.POST("", c.review.AddTrustedReviewer)
		trusted.GET("/:reviewerId", c.review.CheckTrustedReviewer)
		trusted.PUT("/:reviewerId", c.review.UpdateTrustedReviewer)
		trusted.DELETE("/:reviewerId", c.review.RemoveTrustedReviewer)
	}
}

func (a *App) registerMessageRoutes(rg *gin.RouterGroup, c *controllers) {
	messages := rg.Group("/messages")
	{
		messages.POST("", c.message.SendMessage)
		messages.GET("/thread", c.message.GetThread)
		messages.POST("/thread/read", c.message.MarkRead)
		messages.GET("/commenters", c.message.ListCommenters)
		messages.GET("/threads", c.message.ListThreads)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.POST("/users/:id/roles", c.user.AddUserRole)

		admin.GET("/role-requests", c.roleRequest.ListRequests)
		admin.POST("/role-requests/:id/approve", c.roleRequest.Approve)
		admin.POST("/role-requests/:id/deny", c.roleRequest.Deny)

		admin.POST("/invitations", c.invitation.Create)
		admin.GET("/invitations", c.invitation.List)
	}
}
