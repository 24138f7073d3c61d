package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	jwtpkg "csoportal/backend/internal/auth/jwt"
	"csoportal/backend/internal/config"
	"csoportal/backend/internal/health"
	"csoportal/backend/internal/logger"
	"csoportal/backend/internal/mailer"
	"csoportal/backend/internal/service"
	"csoportal/backend/internal/storage"
	"csoportal/backend/internal/storage/filesystem"
	"csoportal/backend/internal/storage/memory"
	"csoportal/backend/internal/storage/redis"
	sqlstore "csoportal/backend/internal/storage/sql"
	httptransport "csoportal/backend/internal/transport/http"
	"csoportal/backend/internal/websocket"
)

// main 启动后台管理 HTTP 服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("starting csoportal server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化存储层
	var store storage.Store
	if cfg.Database.Type != "" {
		sqlStore, err := sqlstore.NewStore(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			log.Fatal("failed to initialize database storage", zap.Error(err))
		}
		defer sqlStore.Close()
		store = sqlStore
		log.Info("using database storage", zap.String("type", cfg.Database.Type))
	} else {
		store = memory.NewStore()
		log.Info("using memory storage (development mode)")
	}

	// 上传文件存储
	fsStore, err := filesystem.NewStore(cfg.Upload.PublicDir)
	if err != nil {
		log.Fatal("failed to initialize file storage", zap.Error(err))
	}
	log.Info("file storage initialized", zap.String("path", cfg.Upload.PublicDir))

	// 未读数缓存（可选）
	var cache *redis.Cache
	if cfg.Redis.Address != "" {
		cache, err = redis.New(cfg.Redis)
		if err != nil {
			log.Warn("failed to connect redis, unread count cache disabled", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
			log.Info("redis cache initialized", zap.String("address", cfg.Redis.Address))
		}
	}

	jwtManager := jwtpkg.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// WebSocket Hub
	wsHub := websocket.NewHub(cfg.CORS.AllowedOrigins, jwtManager, log)

	// 外发邮件
	mail := mailer.New(cfg.Mail, log)

	// 初始化服务层
	letterService := service.NewLetterService(store, store, fsStore, cfg.Upload, cfg.Letter, log)
	if cache != nil {
		letterService.SetCache(cache)
	}
	letterService.SetEventPublisher(wsHub)
	letterService.SetNotifier(mail)

	staffService := service.NewStaffService(store, store, fsStore, jwtManager, cfg.Upload, log)
	csoService := service.NewCSOService(store, store, log)
	beneficiaryService := service.NewBeneficiaryService(store, fsStore, cfg.Upload, log)
	formService := service.NewFormService(store, fsStore, cfg.Upload, log)
	newsService := service.NewNewsService(store, store, fsStore, cfg.Upload, log)
	contentService := service.NewContentService(store, fsStore, cfg.Upload, log)
	contentService.SetContactRelay(mail)

	healthChecker := health.NewHealthChecker(store, cache, log)

	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:             cfg,
		LetterService:      letterService,
		StaffService:       staffService,
		CSOService:         csoService,
		BeneficiaryService: beneficiaryService,
		FormService:        formService,
		NewsService:        newsService,
		ContentService:     contentService,
		JWTManager:         jwtManager,
		WebSocketHub:       wsHub,
		HealthChecker:      healthChecker,
		Logger:             log,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	group.Go(func() error {
		log.Info("starting WebSocket hub")
		wsHub.Run(groupCtx)
		return nil
	})

	group.Go(func() error {
		mail.Start(groupCtx)
		<-groupCtx.Done()
		mail.Stop()
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}
