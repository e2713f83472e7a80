package models

import (
	"time"
)

// Folder 对应 folders 表
// 每个文件夹通过 ParentID 指向同一用户的父文件夹，ParentID 为 nil 表示根目录。
// 同一用户的文件夹集合构成一片森林，结构约束（同级不重名、无环、深度上限）
// 由 explorer 包的树引擎在写入前保证。
type Folder struct {
	ID       string  `gorm:"type:varchar(36);primaryKey" json:"id"` // UUID
	UserID   uint64  `gorm:"not null;index" json:"user_id"`
	ParentID *string `gorm:"type:varchar(36);index;default:null" json:"parent_id"`
	Name     string  `gorm:"type:varchar(255);not null" json:"name"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// GORM 关联，方便预加载父文件夹信息
	Parent *Folder `gorm:"foreignKey:ParentID" json:"-"`
	User   *User   `gorm:"foreignKey:UserID" json:"-"`
}

// TableName 指定 GORM 使用的表名
func (Folder) TableName() string {
	return "folders"
}

// FolderNode 是层级视图里的文件夹节点，Children 按名称升序
type FolderNode struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	ParentID       *string       `json:"parent_id"`
	FileCount      int64         `json:"file_count"`
	SubfolderCount int64         `json:"subfolder_count"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Children       []*FolderNode `json:"children"`
}

// Breadcrumb 面包屑中的一项，ID 为 nil 表示合成的根节点
type Breadcrumb struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}
