package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/0xEcho/cloudfile/internal/config"
	"github.com/0xEcho/cloudfile/internal/handlers"
	"github.com/0xEcho/cloudfile/internal/pkg/cache"
	"github.com/0xEcho/cloudfile/internal/pkg/email"
	"github.com/0xEcho/cloudfile/internal/pkg/logger"
	"github.com/0xEcho/cloudfile/internal/pkg/mq"
	"github.com/0xEcho/cloudfile/internal/pkg/mq/worker"
	"github.com/0xEcho/cloudfile/internal/repositories"
	"github.com/0xEcho/cloudfile/internal/router"
	"github.com/0xEcho/cloudfile/internal/services/admin"
	"github.com/0xEcho/cloudfile/internal/services/explorer"
	"github.com/0xEcho/cloudfile/internal/setup"
	"go.uber.org/zap"
)

// App 持有应用的全部依赖
type App struct {
	cfg      *config.Config
	server   *http.Server
	mqClient *mq.RabbitMQClient
}

// NewApp 按依赖顺序完成所有组件的初始化和装配
func NewApp(cfg *config.Config) (*App, error) {
	db, err := setup.InitMySQL(&cfg.MySQL)
	if err != nil {
		return nil, err
	}

	redisClient, err := setup.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, err
	}
	cacheService := cache.NewRedisCache(redisClient)

	storageService, err := setup.InitStorage(cfg)
	if err != nil {
		return nil, err
	}

	mqClient, err := setup.InitRabbitMQ(&cfg.RabbitMQ)
	if err != nil {
		return nil, err
	}

	// 仓储层
	userRepo := repositories.NewUserRepository(db)
	folderRepo := repositories.NewFolderRepository(db)
	fileRepo := repositories.NewFileRepository(db)

	// 服务层
	tm := explorer.NewGormTransactionManager(db)
	engine := explorer.NewTreeEngine(folderRepo, fileRepo, storageService, mqClient, cfg)
	folderService := explorer.NewFolderService(engine, folderRepo, fileRepo, cacheService, cfg)
	fileService := explorer.NewFileService(engine, fileRepo, folderRepo, storageService, tm, cacheService, cfg)

	mailer := email.NewMailer(&cfg.SMTP, cfg.Server.BaseURL)
	authService := admin.NewAuthService(userRepo, mailer, cfg)
	userService := admin.NewUserService(userRepo)

	// 后台 Worker
	worker.StartAllWorkers(cfg, mqClient, storageService)

	// 路由
	r := router.SetupRouter(
		cfg,
		handlers.NewAuthHandler(authService),
		handlers.NewUserHandler(userService),
		handlers.NewFolderHandler(folderService),
		handlers.NewFileHandler(fileService),
	)

	return &App{
		cfg:      cfg,
		mqClient: mqClient,
		server: &http.Server{
			Addr:    ":" + cfg.Server.Port,
			Handler: r,
		},
	}, nil
}

// Run 启动 HTTP 服务并等待退出信号，收到信号后优雅关停
func (a *App) Run() {
	go func() {
		logger.Info("HTTP 服务启动", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务异常退出", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("收到退出信号，开始优雅关停")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		logger.Error("HTTP 服务关停失败", zap.Error(err))
	}

	a.mqClient.Close()
	logger.Info("服务已退出")
}
