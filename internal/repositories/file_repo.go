package repositories

import (
	"errors"

	"github.com/0xEcho/cloudfile/internal/models"
	"github.com/0xEcho/cloudfile/internal/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FileRepository interface {
	Create(file *models.File) error
	CreateInTx(tx *gorm.DB, file *models.File) error
	Update(file *models.File) error
	Delete(userID uint64, id string) error
	DeleteBatch(tx *gorm.DB, userID uint64, ids []string) error
	FindByID(userID uint64, id string) (*models.File, error)
	FindByFolderID(userID uint64, folderID *string) ([]models.File, error)
	FindPage(userID uint64, folderID *string, mimeTypes []string, sortBy, sortOrder string, offset, limit int) ([]models.File, int64, error)
	FindByName(userID uint64, folderID *string, name string) (*models.File, error)
	CountByFolder(userID uint64, folderID *string) (int64, error)
	// CountGroupByFolder 按目录分组统计文件数，用于一次性构建整棵目录树
	CountGroupByFolder(userID uint64) (map[string]int64, error)
}

type fileRepository struct {
	db *gorm.DB
}

var _ FileRepository = (*fileRepository)(nil)

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(file *models.File) error {
	return r.CreateInTx(nil, file)
}

func (r *fileRepository) CreateInTx(tx *gorm.DB, file *models.File) error {
	db := tx
	if db == nil {
		db = r.db
	}
	err := db.Create(file).Error
	if err != nil {
		logger.Error("Error creating file record", zap.Uint64("userID", file.UserID), zap.Error(err))
		return err
	}
	return nil
}

func (r *fileRepository) Update(file *models.File) error {
	err := r.db.Save(file).Error
	if err != nil {
		logger.Error("Error updating file record", zap.String("fileID", file.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *fileRepository) Delete(userID uint64, id string) error {
	err := r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&models.File{}).Error
	if err != nil {
		logger.Error("Error deleting file record", zap.String("fileID", id), zap.Error(err))
		return err
	}
	return nil
}

func (r *fileRepository) DeleteBatch(tx *gorm.DB, userID uint64, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	db := tx
	if db == nil {
		db = r.db
	}
	err := db.Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.File{}).Error
	if err != nil {
		logger.Error("Error batch deleting file records",
			zap.Uint64("userID", userID),
			zap.Int("count", len(ids)),
			zap.Error(err))
		return err
	}
	return nil
}

func (r *fileRepository) FindByID(userID uint64, id string) (*models.File, error) {
	var file models.File
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("Error finding file by ID", zap.String("fileID", id), zap.Error(err))
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) FindByFolderID(userID uint64, folderID *string) ([]models.File, error) {
	var files []models.File
	query := scopeParent(r.db.Where("user_id = ?", userID), "folder_id", folderID)
	err := query.Order("name ASC").Find(&files).Error
	if err != nil {
		logger.Error("Error finding files by folder ID", zap.Uint64("userID", userID), zap.Error(err))
		return nil, err
	}
	return files, nil
}

func (r *fileRepository) FindPage(userID uint64, folderID *string, mimeTypes []string, sortBy, sortOrder string, offset, limit int) ([]models.File, int64, error) {
	var files []models.File
	var total int64

	query := scopeParent(r.db.Model(&models.File{}).Where("user_id = ?", userID), "folder_id", folderID)
	if len(mimeTypes) > 0 {
		query = query.Where("mime_type IN ?", mimeTypes)
	}
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Error counting files", zap.Uint64("userID", userID), zap.Error(err))
		return nil, 0, err
	}

	err := query.Order(sortBy + " " + sortOrder).Offset(offset).Limit(limit).Find(&files).Error
	if err != nil {
		logger.Error("Error listing files", zap.Uint64("userID", userID), zap.Error(err))
		return nil, 0, err
	}
	return files, total, nil
}

func (r *fileRepository) FindByName(userID uint64, folderID *string, name string) (*models.File, error) {
	var file models.File
	query := scopeParent(r.db.Where("user_id = ? AND name = ?", userID, name), "folder_id", folderID)
	err := query.First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("Error finding file by name", zap.Uint64("userID", userID), zap.Error(err))
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) CountByFolder(userID uint64, folderID *string) (int64, error) {
	var count int64
	query := scopeParent(r.db.Model(&models.File{}).Where("user_id = ?", userID), "folder_id", folderID)
	err := query.Count(&count).Error
	if err != nil {
		logger.Error("Error counting files in folder", zap.Uint64("userID", userID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (r *fileRepository) CountGroupByFolder(userID uint64) (map[string]int64, error) {
	type row struct {
		FolderID string
		Cnt      int64
	}
	var rows []row
	err := r.db.Model(&models.File{}).
		Select("folder_id, COUNT(*) AS cnt").
		Where("user_id = ? AND folder_id IS NOT NULL", userID).
		Group("folder_id").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Error counting files per folder", zap.Uint64("userID", userID), zap.Error(err))
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.FolderID] = r.Cnt
	}
	return counts, nil
}
