package app

import (
	"time"

	"jobprep_backend/docs"
	"jobprep_backend/internal/middleware"
	"jobprep_backend/pkg/monitoring"
	"jobprep_backend/pkg/security"
	"jobprep_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) setupRouter(c *controllers) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	a.setupMiddlewares(router)
	a.registerRoutes(router, c)
	return router
}

func (a *App) setupMiddlewares(router *gin.Engine) {
	cfg := a.Config

	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog())
	router.Use(middleware.Recovery())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	cfg := a.Config

	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	auth := middleware.AuthMiddleware(cfg.JWT.Secret)
	// 生成类接口共用一个更严格的限流器
	generation := security.RateLimiter(
		cfg.RateLimit.GenerationMaxRequests,
		time.Duration(cfg.RateLimit.GenerationWindowMinutes)*time.Minute,
	)

	// 1. 用户
	users := router.Group("/users")
	{
		users.POST("", c.auth.Register)
		users.POST("/login", c.auth.Login)
		users.GET("/me", auth, c.auth.Me)
		users.GET("", auth, c.user.ListUsers)
		users.GET("/emails", auth, c.user.ListEmails)
	}

	// 2. 文件
	router.POST("/upload", c.upload.Upload)
	router.GET("/uploads/:name", c.upload.Get)

	// 3. 简历
	cv := router.Group("/api/cv")
	{
		cv.POST("/parse", generation, c.cv.Parse)
		cv.POST("/review", generation, c.cv.Review)
		cv.POST("/improve", generation, c.cv.Improve)
		cv.POST("/tailor", generation, c.cv.Tailor)
		cv.POST("/process", generation, c.cv.Process)
		cv.POST("/generate-questions", generation, c.cv.GenerateQuestions)
		cv.POST("/parse-upload/:fileId", auth, generation, c.cv.ParseUpload)

		cv.POST("/save", auth, c.cv.Save)
		cv.GET("", auth, c.cv.List)
		cv.GET("/:id", auth, c.cv.Get)
		cv.PUT("/:id", auth, c.cv.Update)
		cv.DELETE("/:id", auth, c.cv.Delete)
	}

	// 4. 模拟面试
	interviews := router.Group("/api/interviews", auth)
	{
		interviews.POST("/generate", generation, c.interview.Generate)
		interviews.GET("", c.interview.List)
		interviews.GET("/:id", c.interview.Get)
		interviews.GET("/questions/:id", c.interview.GetQuestion)
		interviews.POST("/submit-answer", c.interview.SubmitAnswer)
		interviews.GET("/:id/responses", c.interview.Responses)
	}

	// 5. 模拟测试
	tests := router.Group("/api/tests", auth)
	{
		tests.POST("/generate", generation, c.mockTest.Generate)
		tests.POST("/generate-for-role", generation, c.mockTest.GenerateForRole)
		tests.GET("", c.mockTest.List)
		tests.GET("/results", c.mockTest.Results)
		tests.GET("/results/:id", c.mockTest.Result)
		tests.GET("/:id", c.mockTest.Get)
		tests.POST("/:id/submit", c.mockTest.Submit)
	}
}
