package explorer

import (
	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
)

// NameConflictError 同级重名冲突，携带已存在条目的信息供响应体返回
type NameConflictError struct {
	Conflict xerr.ConflictDetail
}

func (e *NameConflictError) Error() string {
	return xerr.ErrNameConflict.Error()
}

func (e *NameConflictError) Unwrap() error {
	return xerr.ErrNameConflict
}

// FolderNotEmptyError 非 force 删除非空目录，携带目录内容统计
type FolderNotEmptyError struct {
	Detail xerr.NotEmptyDetail
}

func (e *FolderNotEmptyError) Error() string {
	return xerr.ErrFolderNotEmpty.Error()
}

func (e *FolderNotEmptyError) Unwrap() error {
	return xerr.ErrFolderNotEmpty
}
