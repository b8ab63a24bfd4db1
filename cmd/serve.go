package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/photo-manager/api/core"
	"github.com/anoixa/photo-manager/cache"
	"github.com/anoixa/photo-manager/config"
	"github.com/anoixa/photo-manager/database"
	photoRepo "github.com/anoixa/photo-manager/database/repo/photos"
	"github.com/anoixa/photo-manager/database/repo/users"
	"github.com/anoixa/photo-manager/internal/accounts"
	"github.com/anoixa/photo-manager/internal/audit"
	"github.com/anoixa/photo-manager/internal/auth"
	photosvc "github.com/anoixa/photo-manager/internal/photos"
	"github.com/anoixa/photo-manager/internal/thumbnail"
	"github.com/anoixa/photo-manager/internal/worker"
	"github.com/anoixa/photo-manager/storage"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// 数据库
	dbFactory, err := database.NewFactory(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := dbFactory.AutoMigrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	usersRepo := users.NewRepository(dbFactory.GetProvider().DB())
	photosRepo := photoRepo.NewRepository(dbFactory.GetProvider().DB())

	ctx := context.Background()
	if err := usersRepo.SeedDefaultAdmin(ctx); err != nil {
		log.Fatalf("Failed to seed default administrator: %v", err)
	}

	// 存储
	storageFactory, err := storage.NewFactory(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// 缓存
	cacheProvider, err := cache.NewProvider(cfg)
	if err != nil {
		log.Printf("[Warning] Failed to initialize cache, continuing without it: %v", err)
		cacheProvider = nil
	}

	// 审计日志与核心服务
	auditLog := audit.NewLog()
	photoCache := cache.NewPhotoMetaCache(cacheProvider, time.Duration(cfg.CachePhotoTTL)*time.Second)
	photoService := photosvc.NewService(photosRepo, usersRepo, storageFactory.GetDefault(), auditLog, photoCache)

	authFactory := auth.NewFactory(usersRepo, auditLog)
	jwtService := auth.NewJWTService(cfg)
	accountsService := accounts.NewService(usersRepo, auditLog)

	// 异步任务协程池与缩略图服务
	pool := worker.NewWorkerPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	pool.Start()

	var thumbnails *thumbnail.Service
	if cfg.ThumbnailEnable {
		thumbnails = thumbnail.NewService(storageFactory.GetDefault(), photoService, pool, cfg.ThumbnailWidth)
	}

	deps := &core.ServerDependencies{
		DBFactory:      dbFactory,
		StorageFactory: storageFactory,
		CacheProvider:  cacheProvider,
		AuditLog:       auditLog,
		PhotoService:   photoService,
		AuthFactory:    authFactory,
		JWTService:     jwtService,
		Accounts:       accountsService,
		Thumbnails:     thumbnails,
		UsersRepo:      usersRepo,
	}

	// 启动 gin
	server, cleanup := core.StartServer(deps)
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 处理退出 signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cleanup != nil {
		cleanup()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	pool.Stop()

	if cacheProvider != nil {
		if err := cacheProvider.Close(); err != nil {
			log.Printf("Failed to close cache: %v", err)
		}
	}
	if err := dbFactory.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}

	log.Println("Server exited")
}
