package explorer

import (
	"context"
	"fmt"
	"time"

	"github.com/0xEcho/cloudfile/internal/config"
	"github.com/0xEcho/cloudfile/internal/models"
	"github.com/0xEcho/cloudfile/internal/pkg/cache"
	"github.com/0xEcho/cloudfile/internal/pkg/logger"
	"github.com/0xEcho/cloudfile/internal/pkg/storage"
	"github.com/0xEcho/cloudfile/internal/pkg/utils"
	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
	"github.com/0xEcho/cloudfile/internal/repositories"
	"go.uber.org/zap"
)

var fileSortableFields = map[string]struct{}{
	"name":       {},
	"size":       {},
	"created_at": {},
	"updated_at": {},
}

// FileListResult 文件的分页列表
type FileListResult struct {
	Files      []models.File `json:"files"`
	Pagination Pagination    `json:"pagination"`
}

type FileService interface {
	UploadFile(ctx context.Context, userID uint64, folderID *string, upload FileUpload) (*models.File, error)
	// UploadFiles 批量上传，全部成功或全部失败
	UploadFiles(ctx context.Context, userID uint64, folderID *string, uploads []FileUpload) ([]*models.File, error)
	ListFiles(ctx context.Context, userID uint64, folderID *string, category string, params ListParams) (*FileListResult, error)
	GetFile(ctx context.Context, userID uint64, fileID string) (*models.File, error)
	Download(ctx context.Context, userID uint64, fileID string) (*models.File, *storage.GetObjectResult, error)
	PresignDownloadURL(ctx context.Context, userID uint64, fileID string) (string, error)
	RenameFile(ctx context.Context, userID uint64, fileID, newName string) (*models.File, error)
	MoveFile(ctx context.Context, userID uint64, fileID string, targetFolderID *string) (*models.File, error)
	DeleteFile(ctx context.Context, userID uint64, fileID string) error
}

type fileService struct {
	engine     *TreeEngine
	fileRepo   repositories.FileRepository
	folderRepo repositories.FolderRepository
	storage    storage.StorageService
	tm         TransactionManager
	cache      cache.Cache
	cfg        *config.Config
	bucket     string
}

var _ FileService = (*fileService)(nil)

func NewFileService(
	engine *TreeEngine,
	fileRepo repositories.FileRepository,
	folderRepo repositories.FolderRepository,
	storageService storage.StorageService,
	tm TransactionManager,
	cacheService cache.Cache,
	cfg *config.Config,
) FileService {
	bucket := cfg.MinIO.BucketName
	if cfg.Storage.Type == "aliyun_oss" {
		bucket = cfg.AliyunOSS.BucketName
	}
	return &fileService{
		engine:     engine,
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		storage:    storageService,
		tm:         tm,
		cache:      cacheService,
		cfg:        cfg,
		bucket:     bucket,
	}
}

func (s *fileService) invalidateTreeCache(ctx context.Context, userID uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cache.GenerateFolderTreeKey(userID)); err != nil {
		logger.Warn("删除文件夹树缓存失败", zap.Uint64("userID", userID), zap.Error(err))
	}
}

func (s *fileService) ListFiles(ctx context.Context, userID uint64, folderID *string, category string, params ListParams) (*FileListResult, error) {
	if folderID != nil {
		folder, err := s.folderRepo.FindByID(userID, *folderID)
		if err != nil {
			return nil, err
		}
		if folder == nil {
			return nil, xerr.ErrFolderNotFound
		}
	}

	var mimeTypes []string
	if category != "" {
		mimeTypes = MimeTypesOfCategory(category)
		if mimeTypes == nil {
			return nil, xerr.ErrInvalidParams
		}
	}

	params = normalizeListParams(params, fileSortableFields, "name")
	offset := (params.Page - 1) * params.Limit
	files, total, err := s.fileRepo.FindPage(userID, folderID, mimeTypes, params.SortBy, params.SortOrder, offset, params.Limit)
	if err != nil {
		return nil, err
	}

	return &FileListResult{
		Files:      files,
		Pagination: buildPagination(params, total),
	}, nil
}

func (s *fileService) GetFile(ctx context.Context, userID uint64, fileID string) (*models.File, error) {
	file, err := s.fileRepo.FindByID(userID, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, xerr.ErrFileNotFound
	}
	return file, nil
}

func (s *fileService) Download(ctx context.Context, userID uint64, fileID string) (*models.File, *storage.GetObjectResult, error) {
	file, err := s.GetFile(ctx, userID, fileID)
	if err != nil {
		return nil, nil, err
	}

	// 流式下载直接用请求上下文，客户端断开时读取器随之取消
	result, err := s.storage.GetObject(ctx, file.StorageBucket, file.StorageKey)
	if err != nil {
		logger.Error("从存储读取对象失败",
			zap.String("fileID", fileID),
			zap.String("objectKey", file.StorageKey),
			zap.Error(err))
		return nil, nil, fmt.Errorf("%w: %v", xerr.ErrStorageError, err)
	}
	return file, &result, nil
}

func (s *fileService) PresignDownloadURL(ctx context.Context, userID uint64, fileID string) (string, error) {
	file, err := s.GetFile(ctx, userID, fileID)
	if err != nil {
		return "", err
	}

	expiry := time.Duration(s.cfg.Storage.PresignedURLExpiry) * time.Minute
	opCtx, cancel := context.WithTimeout(ctx, s.cfg.Storage.OperationTimeout)
	defer cancel()

	url, err := s.storage.PresignGetObjectURL(opCtx, file.StorageBucket, file.StorageKey, expiry)
	if err != nil {
		logger.Error("生成预签名下载链接失败",
			zap.String("fileID", fileID),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", xerr.ErrStorageError, err)
	}
	return url, nil
}

func (s *fileService) RenameFile(ctx context.Context, userID uint64, fileID, newName string) (*models.File, error) {
	cleanName, err := utils.ValidateName(newName)
	if err != nil {
		return nil, err
	}

	var renamed *models.File
	err = s.engine.WithOwnerLock(userID, func() error {
		file, err := s.fileRepo.FindByID(userID, fileID)
		if err != nil {
			return err
		}
		if file == nil {
			return xerr.ErrFileNotFound
		}
		if file.Name == cleanName {
			renamed = file
			return nil
		}

		existing, err := s.fileRepo.FindByName(userID, file.FolderID, cleanName)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != fileID {
			return &NameConflictError{Conflict: xerr.ConflictDetail{ID: existing.ID, Name: existing.Name}}
		}

		// 只改展示名，存储对象和 OriginalName 保持不变
		file.Name = cleanName
		if err := s.fileRepo.Update(file); err != nil {
			return err
		}
		renamed = file
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

func (s *fileService) MoveFile(ctx context.Context, userID uint64, fileID string, targetFolderID *string) (*models.File, error) {
	var moved *models.File
	err := s.engine.WithOwnerLock(userID, func() error {
		file, err := s.fileRepo.FindByID(userID, fileID)
		if err != nil {
			return err
		}
		if file == nil {
			return xerr.ErrFileNotFound
		}

		// 已在目标位置：按成功处理，返回未变更的记录
		if sameLocation(file.FolderID, targetFolderID) {
			moved = file
			return nil
		}

		if targetFolderID != nil {
			folder, err := s.folderRepo.FindByID(userID, *targetFolderID)
			if err != nil {
				return err
			}
			if folder == nil {
				return xerr.ErrFolderNotFound
			}
		}

		existing, err := s.fileRepo.FindByName(userID, targetFolderID, file.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return &NameConflictError{Conflict: xerr.ConflictDetail{ID: existing.ID, Name: existing.Name}}
		}

		file.FolderID = targetFolderID
		if err := s.fileRepo.Update(file); err != nil {
			return err
		}
		moved = file
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTreeCache(ctx, userID)
	return moved, nil
}

// DeleteFile 单文件删除：存储删除成功后才删元数据。
// 存储删除失败时保留元数据并返回错误，用户可以重试，不会产生指向
// 不存在对象的记录，也不会悄悄留下孤儿对象。
func (s *fileService) DeleteFile(ctx context.Context, userID uint64, fileID string) error {
	err := s.engine.WithOwnerLock(userID, func() error {
		file, err := s.fileRepo.FindByID(userID, fileID)
		if err != nil {
			return err
		}
		if file == nil {
			return xerr.ErrFileNotFound
		}

		opCtx, cancel := context.WithTimeout(ctx, s.cfg.Storage.OperationTimeout)
		defer cancel()
		if err := s.storage.RemoveObject(opCtx, file.StorageBucket, file.StorageKey); err != nil {
			logger.Error("删除存储对象失败，元数据保留",
				zap.String("fileID", fileID),
				zap.String("objectKey", file.StorageKey),
				zap.Error(err))
			return fmt.Errorf("%w: %v", xerr.ErrStorageError, err)
		}

		return s.fileRepo.Delete(userID, fileID)
	})
	if err != nil {
		return err
	}

	s.invalidateTreeCache(ctx, userID)
	logger.Info("文件删除成功",
		zap.Uint64("userID", userID),
		zap.String("fileID", fileID))
	return nil
}
