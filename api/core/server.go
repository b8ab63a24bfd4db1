package core

import (
	"net/http"
	"time"

	"github.com/anoixa/photo-manager/api/common"
	adminHandler "github.com/anoixa/photo-manager/api/handler/admin"
	authnHandler "github.com/anoixa/photo-manager/api/handler/authn"
	photosHandler "github.com/anoixa/photo-manager/api/handler/photos"
	"github.com/anoixa/photo-manager/api/middleware"
	"github.com/anoixa/photo-manager/cache"
	"github.com/anoixa/photo-manager/config"
	"github.com/anoixa/photo-manager/database"
	"github.com/anoixa/photo-manager/database/repo/users"
	"github.com/anoixa/photo-manager/internal/accounts"
	"github.com/anoixa/photo-manager/internal/audit"
	"github.com/anoixa/photo-manager/internal/auth"
	photosvc "github.com/anoixa/photo-manager/internal/photos"
	"github.com/anoixa/photo-manager/internal/thumbnail"
	"github.com/anoixa/photo-manager/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	DBFactory      *database.Factory
	StorageFactory *storage.Factory
	CacheProvider  cache.Provider

	AuditLog     *audit.Log
	PhotoService *photosvc.Service
	AuthFactory  *auth.Factory
	JWTService   *auth.JWTService
	Accounts     *accounts.Service
	Thumbnails   *thumbnail.Service
	UsersRepo    *users.Repository
}

// setupRouter 组装路由
func setupRouter(deps *ServerDependencies) (*gin.Engine, func()) {
	cfg := config.Get()
	router := gin.New()

	// 仅在开发版本时启用 gin 日志
	if config.CommitHash != "n/a" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.SetTrustedProxies(nil)

	// 限制上传文件大小
	router.MaxMultipartMemory = int64(cfg.UploadMaxSizeMB) << 20

	// 速率限制
	authRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, cfg.RateLimitExpireTime)
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		authRateLimiter.StopCleanup()
		apiRateLimiter.StopCleanup()
	}

	router.GET("/health", func(c *gin.Context) {
		health := gin.H{
			"status":  "ok",
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks": gin.H{
				"database": checkDatabaseHealth(deps.DBFactory),
				"cache":    checkCacheHealth(deps.CacheProvider),
				"storage":  checkStorageHealth(deps.StorageFactory),
			},
		}
		httpStatus := http.StatusOK
		for _, checkResult := range health["checks"].(gin.H) {
			if result, ok := checkResult.(string); ok && result != "ok" && result != "disabled" {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(httpStatus, health)
	})
	router.GET("/version", func(c *gin.Context) {
		common.RespondSuccess(c, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	// 创建处理器（依赖注入）
	photoHandler := photosHandler.NewHandler(deps.PhotoService, deps.AuditLog, deps.Thumbnails)
	loginHandler := authnHandler.NewHandler(deps.AuthFactory, deps.JWTService)
	adminH := adminHandler.NewHandler(deps.AuditLog, deps.Accounts)

	// 公共接口
	publicGroup := router.Group("/photos")
	publicGroup.Use(apiRateLimiter.Middleware())
	{
		publicGroup.GET("/:id", photoHandler.GetFile) // GET /photos/{photo}
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(func(c *gin.Context) { // 所有 API 禁止缓存
		c.Header("Cache-Control", "no-store")
		c.Next()
	})
	{
		authGroup := apiGroup.Group("/auth")
		authGroup.Use(authRateLimiter.Middleware())
		{
			authGroup.POST("/login", loginHandler.Login)       // POST /api/auth/login
			authGroup.POST("/register", loginHandler.Register) // POST /api/auth/register
		}

		v1 := apiGroup.Group("/v1")
		v1.Use(apiRateLimiter.Middleware())
		v1.Use(middleware.JWTAuth(deps.JWTService, deps.UsersRepo))
		{
			photosGroup := v1.Group("/photos")
			{
				photosGroup.POST("", photoHandler.Upload)            // POST /api/v1/photos
				photosGroup.POST("/batch", photoHandler.UploadBatch) // POST /api/v1/photos/batch
				photosGroup.GET("", photoHandler.Search)             // GET /api/v1/photos
				photosGroup.GET("/:id", photoHandler.Get)            // GET /api/v1/photos/{photo}
				photosGroup.PATCH("/:id", photoHandler.Update)       // PATCH /api/v1/photos/{photo}
				photosGroup.DELETE("/:id", photoHandler.Delete)      // DELETE /api/v1/photos/{photo}
				photosGroup.POST("/undo", photoHandler.Undo)         // POST /api/v1/photos/undo
			}

			adminGroup := v1.Group("/admin")
			adminGroup.Use(middleware.RequireAdmin())
			{
				adminGroup.GET("/audit", adminH.ListAudit)                              // GET /api/v1/admin/audit
				adminGroup.GET("/audit/:actor", adminH.AuditForActor)                   // GET /api/v1/admin/audit/{actor}
				adminGroup.GET("/users", adminH.ListUsers)                              // GET /api/v1/admin/users
				adminGroup.PATCH("/users/:id/subscription", adminH.ChangeSubscription)  // PATCH /api/v1/admin/users/{user}/subscription
			}
		}
	}

	return router, cleanup
}

// StartServer 创建 http.Server
func StartServer(deps *ServerDependencies) (*http.Server, func()) {
	cfg := config.Get()
	router, clean := setupRouter(deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}
