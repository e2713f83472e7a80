package setup

import (
	"context"
	"fmt"

	"github.com/0xEcho/cloudfile/internal/config"
	"github.com/0xEcho/cloudfile/internal/pkg/logger"
	"github.com/0xEcho/cloudfile/internal/pkg/storage"
	"go.uber.org/zap"
)

// InitStorage 按配置初始化对象存储服务，并确保默认存储桶存在
func InitStorage(cfg *config.Config) (storage.StorageService, error) {
	svc, err := storage.NewStorageService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage service: %w", err)
	}

	bucket := cfg.MinIO.BucketName
	if cfg.Storage.Type == "aliyun_oss" {
		bucket = cfg.AliyunOSS.BucketName
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.OperationTimeout)
	defer cancel()

	exists, err := svc.IsBucketExist(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := svc.MakeBucket(ctx, bucket); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		logger.Info("存储桶创建成功", zap.String("bucket", bucket))
	}

	logger.Info("对象存储初始化完成",
		zap.String("type", cfg.Storage.Type),
		zap.String("bucket", bucket))
	return svc, nil
}
