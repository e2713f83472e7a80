package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/0xEcho/cloudfile/internal/config"
	"github.com/0xEcho/cloudfile/internal/models"
	"github.com/0xEcho/cloudfile/internal/pkg/logger"
	"github.com/0xEcho/cloudfile/internal/pkg/mq"
	"github.com/0xEcho/cloudfile/internal/pkg/storage"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// CleanupQueueName 存储对象清理队列
// 入队来源：上传元数据写入失败的补偿删除、级联删除中失败的存储删除重试
const CleanupQueueName = "storage_cleanup_queue"

type CleanupWorker struct {
	mqClient       *mq.RabbitMQClient
	storageService storage.StorageService
	cfg            *config.Config
}

func NewCleanupWorker(
	mqClient *mq.RabbitMQClient,
	storageService storage.StorageService,
	cfg *config.Config,
) *CleanupWorker {
	return &CleanupWorker{
		mqClient:       mqClient,
		storageService: storageService,
		cfg:            cfg,
	}
}

func (w *CleanupWorker) Start() {
	_, err := w.mqClient.DeclareQueue(CleanupQueueName)
	if err != nil {
		logger.Fatal("Failed to declare queue", zap.Error(err))
	}
	err = w.mqClient.Consume(CleanupQueueName, w.HandleCleanupTask)
	if err != nil {
		logger.Fatal("Failed to start consuming from queue", zap.Error(err))
	}

	logger.Info("Storage cleanup worker started")
}

func (w *CleanupWorker) HandleCleanupTask(msg amqp.Delivery) {
	var task models.StorageCleanupTask
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		logger.Error("Failed to unmarshal cleanup task", zap.Error(err))
		_ = msg.Nack(false, false) // 解析失败,直接抛弃
		return
	}

	logger.Info("Received storage cleanup task",
		zap.String("objectKey", task.ObjectKey),
		zap.String("reason", task.Reason))

	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.Storage.OperationTimeout)
	defer cancel()

	if err := w.storageService.RemoveObject(ctx, task.Bucket, task.ObjectKey); err != nil {
		logger.Error("Cleanup task failed, requeueing",
			zap.String("objectKey", task.ObjectKey),
			zap.Error(err))
		// 稍等后重新入队，避免对不可用的存储后端打转
		time.Sleep(time.Second)
		_ = msg.Nack(false, true)
		return
	}

	logger.Info("Orphaned object removed from storage", zap.String("objectKey", task.ObjectKey))
	_ = msg.Ack(false)
}
