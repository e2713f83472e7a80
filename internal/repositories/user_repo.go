package repositories

import (
	"errors"
	"time"

	"github.com/0xEcho/cloudfile/internal/models"
	"github.com/0xEcho/cloudfile/internal/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserRepository interface {
	CreateUser(user *models.User) error
	UpdateUser(user *models.User) error
	GetUserByID(id uint64) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByVerificationToken(token string) (*models.User, error)
	// GetUserByResetToken 只返回重置 token 匹配且未过期的用户
	GetUserByResetToken(token string, now time.Time) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

var _ UserRepository = (*userRepository)(nil)

// NewUserRepository 创建一个新的 UserRepository 实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(user *models.User) error {
	err := r.db.Create(user).Error
	if err != nil {
		logger.Error("Error creating user", zap.Error(err))
		return err
	}
	return nil
}

func (r *userRepository) UpdateUser(user *models.User) error {
	err := r.db.Save(user).Error
	if err != nil {
		logger.Error("Error updating user", zap.Uint64("userID", user.ID), zap.Error(err))
		return err
	}
	return nil
}

// 查询不到用户时统一返回 (nil, nil)，由服务层决定是否视为错误
func (r *userRepository) getUser(query *gorm.DB) (*models.User, error) {
	var user models.User
	err := query.First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByID(id uint64) (*models.User, error) {
	user, err := r.getUser(r.db.Where("id = ?", id))
	if err != nil {
		logger.Error("Error getting user by ID", zap.Uint64("id", id), zap.Error(err))
	}
	return user, err
}

func (r *userRepository) GetUserByEmail(email string) (*models.User, error) {
	user, err := r.getUser(r.db.Where("email = ?", email))
	if err != nil {
		logger.Error("Error getting user by email", zap.String("email", email), zap.Error(err))
	}
	return user, err
}

func (r *userRepository) GetUserByVerificationToken(token string) (*models.User, error) {
	return r.getUser(r.db.Where("verification_token = ?", token))
}

func (r *userRepository) GetUserByResetToken(token string, now time.Time) (*models.User, error) {
	return r.getUser(r.db.Where("reset_password_token = ? AND reset_password_expires > ?", token, now))
}
