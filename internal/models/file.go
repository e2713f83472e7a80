package models

import (
	"time"
)

// File 对应 files 表
// FolderID 为 nil 表示文件位于根目录。StorageKey 是对象存储中的不透明标识，
// 删除文件时凭它调用存储服务。
type File struct {
	ID           string  `gorm:"type:varchar(36);primaryKey" json:"id"` // UUID
	UserID       uint64  `gorm:"not null;index" json:"user_id"`
	FolderID     *string `gorm:"type:varchar(36);index;default:null" json:"folder_id"`
	Name         string  `gorm:"type:varchar(255);not null" json:"name"`
	OriginalName string  `gorm:"type:varchar(255);not null" json:"original_name"`
	Size         uint64  `gorm:"type:bigint unsigned;not null;default:0" json:"size"`
	MimeType     string  `gorm:"type:varchar(128);not null;default:''" json:"mime_type"`

	StorageBucket string `gorm:"type:varchar(64);not null" json:"-"`
	StorageKey    string `gorm:"type:varchar(255);not null;index" json:"-"`
	StorageURL    string `gorm:"type:varchar(1024);not null" json:"storage_url"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Folder *Folder `gorm:"foreignKey:FolderID" json:"-"`
	User   *User   `gorm:"foreignKey:UserID" json:"-"`
}

// TableName 指定 GORM 使用的表名
func (File) TableName() string {
	return "files"
}
