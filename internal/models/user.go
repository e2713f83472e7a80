package models

import (
	"time"
)

// User 对应 users 表
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"type:varchar(255);unique;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"` // - 表示不输出到 JSON
	Name         string `gorm:"type:varchar(64);not null" json:"name"`

	// 邮箱验证与密码重置 token 均为一次性，用完置空
	IsVerified           bool       `gorm:"not null;default:false" json:"is_verified"`
	VerificationToken    *string    `gorm:"type:varchar(64);index;default:null" json:"-"`
	ResetPasswordToken   *string    `gorm:"type:varchar(64);index;default:null" json:"-"`
	ResetPasswordExpires *time.Time `gorm:"default:null" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定 GORM 使用的表名
func (User) TableName() string {
	return "users"
}
