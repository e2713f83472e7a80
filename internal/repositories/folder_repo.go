package repositories

import (
	"errors"

	"github.com/0xEcho/cloudfile/internal/models"
	"github.com/0xEcho/cloudfile/internal/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FolderRepository interface {
	Create(folder *models.Folder) error
	Update(folder *models.Folder) error
	Delete(userID uint64, id string) error
	// DeleteBatch 在事务中批量删除同一用户的多个目录行
	DeleteBatch(tx *gorm.DB, userID uint64, ids []string) error
	FindByID(userID uint64, id string) (*models.Folder, error)
	FindAllByUserID(userID uint64) ([]models.Folder, error)
	FindByParentID(userID uint64, parentID *string) ([]models.Folder, error)
	FindPage(userID uint64, parentID *string, sortBy, sortOrder string, offset, limit int) ([]models.Folder, int64, error)
	FindByName(userID uint64, parentID *string, name string) (*models.Folder, error)
	CountByParent(userID uint64, parentID *string) (int64, error)
}

type folderRepository struct {
	db *gorm.DB
}

var _ FolderRepository = (*folderRepository)(nil)

func NewFolderRepository(db *gorm.DB) FolderRepository {
	return &folderRepository{db: db}
}

// scopeParent 处理根目录 (parentID 为 nil) 与普通目录两种查询条件
func scopeParent(query *gorm.DB, column string, parentID *string) *gorm.DB {
	if parentID == nil {
		return query.Where(column + " IS NULL")
	}
	return query.Where(column+" = ?", *parentID)
}

func (r *folderRepository) Create(folder *models.Folder) error {
	err := r.db.Create(folder).Error
	if err != nil {
		logger.Error("Error creating folder", zap.Uint64("userID", folder.UserID), zap.Error(err))
		return err
	}
	return nil
}

func (r *folderRepository) Update(folder *models.Folder) error {
	err := r.db.Save(folder).Error
	if err != nil {
		logger.Error("Error updating folder", zap.String("folderID", folder.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *folderRepository) Delete(userID uint64, id string) error {
	err := r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&models.Folder{}).Error
	if err != nil {
		logger.Error("Error deleting folder", zap.String("folderID", id), zap.Error(err))
		return err
	}
	return nil
}

func (r *folderRepository) DeleteBatch(tx *gorm.DB, userID uint64, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	db := tx
	if db == nil {
		db = r.db
	}
	err := db.Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.Folder{}).Error
	if err != nil {
		logger.Error("Error batch deleting folders",
			zap.Uint64("userID", userID),
			zap.Int("count", len(ids)),
			zap.Error(err))
		return err
	}
	return nil
}

func (r *folderRepository) FindByID(userID uint64, id string) (*models.Folder, error) {
	var folder models.Folder
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&folder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("Error finding folder by ID", zap.String("folderID", id), zap.Error(err))
		return nil, err
	}
	return &folder, nil
}

func (r *folderRepository) FindAllByUserID(userID uint64) ([]models.Folder, error) {
	var folders []models.Folder
	err := r.db.Where("user_id = ?", userID).Find(&folders).Error
	if err != nil {
		logger.Error("Error finding folders by user ID", zap.Uint64("userID", userID), zap.Error(err))
		return nil, err
	}
	return folders, nil
}

func (r *folderRepository) FindByParentID(userID uint64, parentID *string) ([]models.Folder, error) {
	var folders []models.Folder
	query := scopeParent(r.db.Where("user_id = ?", userID), "parent_id", parentID)
	err := query.Order("name ASC").Find(&folders).Error
	if err != nil {
		logger.Error("Error finding folders by parent ID", zap.Uint64("userID", userID), zap.Error(err))
		return nil, err
	}
	return folders, nil
}

func (r *folderRepository) FindPage(userID uint64, parentID *string, sortBy, sortOrder string, offset, limit int) ([]models.Folder, int64, error) {
	var folders []models.Folder
	var total int64

	query := scopeParent(r.db.Model(&models.Folder{}).Where("user_id = ?", userID), "parent_id", parentID)
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Error counting folders", zap.Uint64("userID", userID), zap.Error(err))
		return nil, 0, err
	}

	err := query.Order(sortBy + " " + sortOrder).Offset(offset).Limit(limit).Find(&folders).Error
	if err != nil {
		logger.Error("Error listing folders", zap.Uint64("userID", userID), zap.Error(err))
		return nil, 0, err
	}
	return folders, total, nil
}

func (r *folderRepository) FindByName(userID uint64, parentID *string, name string) (*models.Folder, error) {
	var folder models.Folder
	query := scopeParent(r.db.Where("user_id = ? AND name = ?", userID, name), "parent_id", parentID)
	err := query.First(&folder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("Error finding folder by name", zap.Uint64("userID", userID), zap.Error(err))
		return nil, err
	}
	return &folder, nil
}

func (r *folderRepository) CountByParent(userID uint64, parentID *string) (int64, error) {
	var count int64
	query := scopeParent(r.db.Model(&models.Folder{}).Where("user_id = ?", userID), "parent_id", parentID)
	err := query.Count(&count).Error
	if err != nil {
		logger.Error("Error counting subfolders", zap.Uint64("userID", userID), zap.Error(err))
		return 0, err
	}
	return count, nil
}
