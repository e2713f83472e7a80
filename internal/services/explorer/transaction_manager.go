package explorer

import (
	"gorm.io/gorm"
)

// TransactionManager 定义了执行数据库事务的接口
type TransactionManager interface {
	// WithTransaction 在一个事务中执行 fn，fn 返回错误时整体回滚
	WithTransaction(fn func(tx *gorm.DB) error) error
}

type gormTransactionManager struct {
	db *gorm.DB
}

var _ TransactionManager = (*gormTransactionManager)(nil)

func NewGormTransactionManager(db *gorm.DB) TransactionManager {
	return &gormTransactionManager{db: db}
}

func (tm *gormTransactionManager) WithTransaction(fn func(tx *gorm.DB) error) error {
	return tm.db.Transaction(fn)
}
