package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/0xEcho/cloudfile/internal/config"
	"github.com/google/uuid"
)

// StorageService 定义了通用的文件存储操作接口
type StorageService interface {
	// 上传文件到指定存储桶，返回存储对象的信息或错误
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) (PutObjectResult, error)
	// 从指定存储桶下载文件，返回一个读取器和对象信息
	GetObject(ctx context.Context, bucketName, objectName string) (GetObjectResult, error)
	// 从指定存储桶删除文件
	RemoveObject(ctx context.Context, bucketName, objectName string) error
	// 检查存储桶是否存在
	IsBucketExist(ctx context.Context, bucketName string) (bool, error)
	// 创建存储桶
	MakeBucket(ctx context.Context, bucketName string) error
	// 获取对象的公开访问URL
	GetObjectURL(bucketName, objectName string) string
	// 为下载生成预签名URL
	PresignGetObjectURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error)
}

type PutObjectResult struct {
	Bucket string
	Key    string
	Size   int64
	ETag   string // 对象哈希值
}

type GetObjectResult struct {
	Reader   io.ReadCloser // 文件内容读取器，需要在使用后关闭
	Size     int64
	MimeType string
}

// BuildObjectKey 生成对象存储的 key：users/{userID}/{hint}/{时间戳}_{uuid}_{文件名}
// 时间戳加 uuid 保证同名文件互不覆盖，hint 区分根目录和具体文件夹
func BuildObjectKey(userID uint64, destinationHint, fileName string) string {
	if destinationHint == "" {
		destinationHint = "files"
	}
	return fmt.Sprintf("users/%d/%s/%d_%s_%s", userID, destinationHint, time.Now().Unix(), uuid.New().String(), fileName)
}

// NewStorageService 按配置选择存储实现
func NewStorageService(cfg *config.Config) (StorageService, error) {
	switch cfg.Storage.Type {
	case "minio":
		return NewMinIOStorageService(&cfg.MinIO)
	case "aliyun_oss":
		return NewAliyunOSSStorageService(&cfg.AliyunOSS)
	default:
		return nil, errors.New("invalid storage type: " + cfg.Storage.Type)
	}
}
