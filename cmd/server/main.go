package main

import (
	"log"

	"github.com/0xEcho/cloudfile/internal/config"
	"github.com/0xEcho/cloudfile/internal/pkg/logger"
)

// @title CloudFile API
// @version 1.0
// @description 云端文件存储服务：用户认证、多级文件夹和文件管理
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg.Log.OutputPath, cfg.Log.ErrorPath, cfg.Log.Level)
	defer logger.Sync()

	app, err := NewApp(cfg)
	if err != nil {
		logger.Fatal("应用初始化失败: " + err.Error())
	}
	app.Run()
}
