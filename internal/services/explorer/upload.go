package explorer

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/0xEcho/cloudfile/internal/models"
	"github.com/0xEcho/cloudfile/internal/pkg/logger"
	"github.com/0xEcho/cloudfile/internal/pkg/storage"
	"github.com/0xEcho/cloudfile/internal/pkg/utils"
	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileUpload 一个待上传的文件
type FileUpload struct {
	Name     string
	Size     int64
	MimeType string
	Reader   io.Reader
}

// validateUpload 上传前校验：大小、MIME 白名单、名称合法性
func (s *fileService) validateUpload(upload *FileUpload) (string, error) {
	if upload.Size > s.cfg.Upload.MaxFileSize {
		return "", xerr.ErrFileTooLarge
	}
	if !IsAllowedMimeType(upload.MimeType) {
		return "", xerr.ErrFileTypeNotAllowed
	}
	return utils.ValidateName(upload.Name)
}

// storedObject 阶段一已写入对象存储、还未写元数据的对象
type storedObject struct {
	name     string
	bucket   string
	key      string
	url      string
	size     int64
	mimeType string
}

// putObject 阶段一：写入对象存储
func (s *fileService) putObject(ctx context.Context, userID uint64, folderID *string, upload *FileUpload, cleanName string) (*storedObject, error) {
	hint := "root"
	if folderID != nil {
		hint = *folderID
	}
	objectKey := storage.BuildObjectKey(userID, hint, cleanName)

	opCtx, cancel := context.WithTimeout(ctx, s.cfg.Storage.OperationTimeout)
	defer cancel()

	result, err := s.storage.PutObject(opCtx, s.bucket, objectKey, upload.Reader, upload.Size, upload.MimeType)
	if err != nil {
		logger.Error("上传对象到存储失败",
			zap.Uint64("userID", userID),
			zap.String("objectKey", objectKey),
			zap.Error(err))
		if opCtx.Err() == context.DeadlineExceeded {
			return nil, xerr.ErrStorageTimeout
		}
		return nil, fmt.Errorf("%w: %v", xerr.ErrStorageError, err)
	}

	return &storedObject{
		name:     cleanName,
		bucket:   result.Bucket,
		key:      result.Key,
		url:      s.storage.GetObjectURL(result.Bucket, result.Key),
		size:     upload.Size,
		mimeType: upload.MimeType,
	}, nil
}

// compensate 元数据写入失败后，把已写入存储的对象交给清理队列删除
func (s *fileService) compensate(userID uint64, objects ...*storedObject) {
	for _, obj := range objects {
		s.engine.EnqueueCleanup(models.StorageCleanupTask{
			UserID:    userID,
			Bucket:    obj.bucket,
			ObjectKey: obj.key,
			Reason:    "upload_compensation",
		})
	}
}

// checkUploadTarget 目标文件夹必须存在，目标位置不能有同名文件
func (s *fileService) checkUploadTarget(userID uint64, folderID *string, names []string) error {
	if folderID != nil {
		folder, err := s.folderRepo.FindByID(userID, *folderID)
		if err != nil {
			return err
		}
		if folder == nil {
			return xerr.ErrFolderNotFound
		}
	}
	for _, name := range names {
		existing, err := s.fileRepo.FindByName(userID, folderID, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return &NameConflictError{Conflict: xerr.ConflictDetail{ID: existing.ID, Name: existing.Name}}
		}
	}
	return nil
}

func (s *fileService) newFileRecord(userID uint64, folderID *string, upload *FileUpload, obj *storedObject) *models.File {
	return &models.File{
		ID:            uuid.New().String(),
		UserID:        userID,
		FolderID:      folderID,
		Name:          obj.name,
		OriginalName:  upload.Name,
		Size:          uint64(obj.size),
		MimeType:      obj.mimeType,
		StorageBucket: obj.bucket,
		StorageKey:    obj.key,
		StorageURL:    obj.url,
	}
}

// UploadFile 两阶段上传：先写对象存储，再在用户锁内校验并写元数据。
// 元数据写入失败时入队补偿删除，不让孤儿对象留在存储里。
func (s *fileService) UploadFile(ctx context.Context, userID uint64, folderID *string, upload FileUpload) (*models.File, error) {
	cleanName, err := s.validateUpload(&upload)
	if err != nil {
		return nil, err
	}

	obj, err := s.putObject(ctx, userID, folderID, &upload, cleanName)
	if err != nil {
		return nil, err
	}

	var file *models.File
	err = s.engine.WithOwnerLock(userID, func() error {
		if err := s.checkUploadTarget(userID, folderID, []string{cleanName}); err != nil {
			return err
		}
		file = s.newFileRecord(userID, folderID, &upload, obj)
		return s.fileRepo.Create(file)
	})
	if err != nil {
		s.compensate(userID, obj)
		return nil, err
	}

	s.invalidateTreeCache(ctx, userID)
	logger.Info("文件上传成功",
		zap.Uint64("userID", userID),
		zap.String("fileID", file.ID),
		zap.String("name", file.Name),
		zap.Int64("size", upload.Size))
	return file, nil
}

// UploadFiles 批量上传。阶段一并发写入对象存储；任何一个失败，已写入的
// 全部入队补偿删除。阶段二在单个事务里写全部元数据行，保证要么全部可见
// 要么全部不可见。
func (s *fileService) UploadFiles(ctx context.Context, userID uint64, folderID *string, uploads []FileUpload) ([]*models.File, error) {
	if len(uploads) == 0 {
		return nil, xerr.ErrNoFileUploaded
	}
	if len(uploads) > s.cfg.Upload.MaxFileCount {
		return nil, xerr.ErrTooManyFiles
	}

	names := make([]string, len(uploads))
	seen := make(map[string]struct{}, len(uploads))
	for i := range uploads {
		cleanName, err := s.validateUpload(&uploads[i])
		if err != nil {
			return nil, err
		}
		if _, dup := seen[cleanName]; dup {
			return nil, &NameConflictError{Conflict: xerr.ConflictDetail{Name: cleanName}}
		}
		seen[cleanName] = struct{}{}
		names[i] = cleanName
	}

	// 阶段一：并发写入对象存储
	objects := make([]*storedObject, len(uploads))
	errs := make([]error, len(uploads))
	var wg sync.WaitGroup
	for i := range uploads {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			objects[i], errs[i] = s.putObject(ctx, userID, folderID, &uploads[i], names[i])
		}(i)
	}
	wg.Wait()

	var putErr error
	for _, err := range errs {
		if err != nil {
			putErr = err
			break
		}
	}
	if putErr != nil {
		var stored []*storedObject
		for _, obj := range objects {
			if obj != nil {
				stored = append(stored, obj)
			}
		}
		s.compensate(userID, stored...)
		return nil, putErr
	}

	// 阶段二：单事务写入全部元数据
	var files []*models.File
	err := s.engine.WithOwnerLock(userID, func() error {
		if err := s.checkUploadTarget(userID, folderID, names); err != nil {
			return err
		}
		return s.tm.WithTransaction(func(tx *gorm.DB) error {
			files = files[:0]
			for i := range uploads {
				file := s.newFileRecord(userID, folderID, &uploads[i], objects[i])
				if err := s.fileRepo.CreateInTx(tx, file); err != nil {
					return err
				}
				files = append(files, file)
			}
			return nil
		})
	})
	if err != nil {
		s.compensate(userID, objects...)
		return nil, err
	}

	s.invalidateTreeCache(ctx, userID)
	logger.Info("批量上传成功",
		zap.Uint64("userID", userID),
		zap.Int("count", len(files)))
	return files, nil
}
