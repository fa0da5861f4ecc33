// Package router 配置HTTP路由
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/weiwangfds/filevault/config"
	"github.com/weiwangfds/filevault/internal/handler"
	"github.com/weiwangfds/filevault/internal/middleware"
	"github.com/weiwangfds/filevault/internal/repository"
	authservice "github.com/weiwangfds/filevault/internal/service/auth"
	fileservice "github.com/weiwangfds/filevault/internal/service/file"
	"github.com/weiwangfds/filevault/internal/storage"
)

// 各路由组的限流配置（次/分钟）
const (
	apiRateLimit    = 100
	authRateLimit   = 10
	uploadRateLimit = 5
)

// Router 路由配置
type Router struct {
	engine *gin.Engine
}

// NewRouter 创建路由实例并装配全部服务
func NewRouter(db *gorm.DB, store storage.ObjectStore, cfg *config.Config) *Router {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	engine := gin.New()

	// 初始化服务
	fileRepo := repository.NewFileRepository(db)
	userRepo := repository.NewUserRepository(db)
	fileService := fileservice.NewFileService(fileRepo, store, cfg.Quota.LimitBytes, cfg.Server.BaseURL)
	authService := authservice.NewAuthService(userRepo, cfg.JWT)

	// 初始化处理器
	fileHandler := handler.NewFileHandler(fileService)
	userFileHandler := handler.NewUserFileHandler(fileService)
	authHandler := handler.NewAuthHandler(authService)

	// 使用中间件
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger())

	// 配置CORS
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Swagger文档路由
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 健康检查
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Service is running",
		})
	})

	// API路由组
	api := engine.Group("/api/v1")
	api.Use(middleware.RateLimit(apiRateLimit))
	{
		// 认证接口，限流更严格
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimit(authRateLimit))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/verify-email", authHandler.VerifyEmail)
		}

		// 匿名文件接口
		files := api.Group("/files")
		{
			files.POST("/upload", middleware.RateLimit(uploadRateLimit),
				middleware.ValidateFileUpload(cfg.File.MaxFileSize), fileHandler.UploadAnonymous)
			files.POST("/download", fileHandler.DownloadAnonymous)
			// 本地存储后端的文件服务路由
			files.GET("/local/*key", fileHandler.ServeLocal)
		}

		// 分享链接解析
		api.GET("/shared/:token", fileHandler.ResolveShared)

		// 认证用户接口
		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWT.Secret))
		{
			protected.POST("/upload", middleware.RateLimit(uploadRateLimit),
				middleware.ValidateFileUpload(cfg.File.MaxFileSize), userFileHandler.Upload)
			protected.GET("/files", userFileHandler.List)
			protected.GET("/files/count", userFileHandler.Count)
			protected.GET("/files/:id", userFileHandler.Get)
			protected.GET("/download/:id", userFileHandler.DownloadLink)
			protected.DELETE("/files/:id", userFileHandler.Delete)
			protected.POST("/files/:id/share", userFileHandler.Share)
			protected.GET("/storage", userFileHandler.Storage)
			protected.GET("/stats", userFileHandler.Stats)
		}
	}

	return &Router{engine: engine}
}

// Engine 返回底层gin引擎
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
