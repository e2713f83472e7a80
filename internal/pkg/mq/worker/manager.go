package worker

import (
	"github.com/0xEcho/cloudfile/internal/config"
	"github.com/0xEcho/cloudfile/internal/pkg/logger"
	"github.com/0xEcho/cloudfile/internal/pkg/mq"
	"github.com/0xEcho/cloudfile/internal/pkg/storage"
)

// StartAllWorkers 启动应用中所有定义的后台 Worker
func StartAllWorkers(
	cfg *config.Config,
	mqClient *mq.RabbitMQClient,
	storageService storage.StorageService,
) {
	// --- 启动存储清理 Worker ---
	cleanupWorker := NewCleanupWorker(mqClient, storageService, cfg)
	go cleanupWorker.Start()

	logger.Info("所有后台工作进程已启动。")
}
