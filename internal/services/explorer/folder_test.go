package explorer

import (
	"context"
	"errors"
	"testing"

	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFolderService() (FolderService, *fakeFolderRepo, *fakeFileRepo) {
	folderRepo := newFakeFolderRepo()
	fileRepo := newFakeFileRepo()
	store := newFakeStorage()
	engine := NewTreeEngine(folderRepo, fileRepo, store, &fakePublisher{}, testConfig())
	svc := NewFolderService(engine, folderRepo, fileRepo, nil, testConfig())
	return svc, folderRepo, fileRepo
}

func TestCreateFolder(t *testing.T) {
	svc, _, _ := newTestFolderService()
	ctx := context.Background()

	folder, err := svc.CreateFolder(ctx, testUserID, "  文档  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "文档", folder.Name, "名称去除首尾空白")
	assert.NotEmpty(t, folder.ID)
	assert.Nil(t, folder.ParentID)
}

func TestCreateFolderValidation(t *testing.T) {
	svc, _, _ := newTestFolderService()
	ctx := context.Background()

	_, err := svc.CreateFolder(ctx, testUserID, "   ", nil)
	assert.ErrorIs(t, err, xerr.ErrNameEmpty)

	_, err = svc.CreateFolder(ctx, testUserID, "bad/name", nil)
	assert.ErrorIs(t, err, xerr.ErrNameInvalid)

	_, err = svc.CreateFolder(ctx, testUserID, "x", strPtr("missing"))
	assert.ErrorIs(t, err, xerr.ErrFolderNotFound)
}

func TestCreateFolderNameConflict(t *testing.T) {
	svc, _, _ := newTestFolderService()
	ctx := context.Background()

	first, err := svc.CreateFolder(ctx, testUserID, "docs", nil)
	require.NoError(t, err)

	_, err = svc.CreateFolder(ctx, testUserID, "docs", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerr.ErrNameConflict)

	var conflict *NameConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, first.ID, conflict.Conflict.ID)

	// 不同父目录下同名不冲突
	_, err = svc.CreateFolder(ctx, testUserID, "docs", &first.ID)
	assert.NoError(t, err)
}

func TestCreateFolderDepthLimit(t *testing.T) {
	svc, folderRepo, _ := newTestFolderService()
	ctx := context.Background()

	// 塞满 10 层
	var parent *string
	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		mkFolder(folderRepo, id, testUserID, parent, id)
		parent = strPtr(id)
	}

	_, err := svc.CreateFolder(ctx, testUserID, "eleven", parent)
	assert.ErrorIs(t, err, xerr.ErrDepthExceeded)
}

func TestRenameFolder(t *testing.T) {
	svc, folderRepo, _ := newTestFolderService()
	ctx := context.Background()
	mkFolder(folderRepo, "a", testUserID, nil, "a")
	mkFolder(folderRepo, "b", testUserID, nil, "b")

	renamed, err := svc.RenameFolder(ctx, testUserID, "a", "renamed")
	require.NoError(t, err)
	assert.Equal(t, "renamed", renamed.Name)

	// 同级重名被拒
	_, err = svc.RenameFolder(ctx, testUserID, "b", "renamed")
	assert.ErrorIs(t, err, xerr.ErrNameConflict)

	// 改成自己现在的名字是幂等的
	again, err := svc.RenameFolder(ctx, testUserID, "a", "renamed")
	require.NoError(t, err)
	assert.Equal(t, "renamed", again.Name)

	_, err = svc.RenameFolder(ctx, testUserID, "missing", "x")
	assert.ErrorIs(t, err, xerr.ErrFolderNotFound)
}

func TestMoveFolder(t *testing.T) {
	svc, folderRepo, _ := newTestFolderService()
	ctx := context.Background()
	buildChain(folderRepo)
	mkFolder(folderRepo, "target", testUserID, nil, "target")

	result, err := svc.MoveFolder(ctx, testUserID, "b", strPtr("target"))
	require.NoError(t, err)
	assert.Equal(t, "target", *result.NewParentID)
	assert.Equal(t, "a", *result.OldParentID)
	assert.Equal(t, 2, result.NewDepth)

	moved, _ := folderRepo.FindByID(testUserID, "b")
	assert.Equal(t, "target", *moved.ParentID)
}

func TestMoveFolderIntoOwnSubtreeRejected(t *testing.T) {
	svc, folderRepo, _ := newTestFolderService()
	ctx := context.Background()
	buildChain(folderRepo)

	_, err := svc.MoveFolder(ctx, testUserID, "a", strPtr("c"))
	assert.ErrorIs(t, err, xerr.ErrCannotMoveIntoSubtree)

	_, err = svc.MoveFolder(ctx, testUserID, "a", strPtr("a"))
	assert.ErrorIs(t, err, xerr.ErrCannotMoveIntoSubtree)

	// 结构未被改动
	a, _ := folderRepo.FindByID(testUserID, "a")
	assert.Nil(t, a.ParentID)
}

func TestMoveFolderAlreadyInLocation(t *testing.T) {
	svc, folderRepo, _ := newTestFolderService()
	ctx := context.Background()
	buildChain(folderRepo)

	// 移动到当前所在位置是无操作，按成功处理并返回未变更的记录
	result, err := svc.MoveFolder(ctx, testUserID, "a", nil)
	require.NoError(t, err)
	assert.Nil(t, result.NewParentID)
	assert.Equal(t, 1, result.NewDepth)

	result, err = svc.MoveFolder(ctx, testUserID, "b", strPtr("a"))
	require.NoError(t, err)
	assert.Equal(t, "a", *result.NewParentID)
	assert.Equal(t, 2, result.NewDepth)

	b, _ := folderRepo.FindByID(testUserID, "b")
	assert.Equal(t, "a", *b.ParentID, "结构未被改动")
}

func TestMoveFolderDepthLimit(t *testing.T) {
	svc, folderRepo, _ := newTestFolderService()
	ctx := context.Background()

	// 9 层链，底部再挂一棵高度为 2 的子树就会超限
	var parent *string
	for i := 0; i < 9; i++ {
		id := string(rune('a' + i))
		mkFolder(folderRepo, id, testUserID, parent, id)
		parent = strPtr(id)
	}
	mkFolder(folderRepo, "sub", testUserID, nil, "sub")
	mkFolder(folderRepo, "subchild", testUserID, strPtr("sub"), "subchild")

	_, err := svc.MoveFolder(ctx, testUserID, "sub", parent)
	assert.ErrorIs(t, err, xerr.ErrDepthExceeded, "子树里最深的后代也不能超出上限")
}

func TestDeleteEmptyFolder(t *testing.T) {
	svc, folderRepo, _ := newTestFolderService()
	ctx := context.Background()
	mkFolder(folderRepo, "empty", testUserID, nil, "empty")

	result, err := svc.DeleteFolder(ctx, testUserID, "empty", false)
	require.NoError(t, err)
	assert.Equal(t, "empty", result.DeletedID)
	assert.Equal(t, int64(1), result.Summary.FoldersDeleted)

	gone, _ := folderRepo.FindByID(testUserID, "empty")
	assert.Nil(t, gone)
}

func TestDeleteNonEmptyFolderWithoutForce(t *testing.T) {
	svc, folderRepo, fileRepo := newTestFolderService()
	ctx := context.Background()
	mkFolder(folderRepo, "root", testUserID, nil, "root")
	mkFolder(folderRepo, "sub", testUserID, strPtr("root"), "sub")
	mkFile(fileRepo, "f1", testUserID, strPtr("root"), "a.txt")
	mkFile(fileRepo, "f2", testUserID, strPtr("root"), "b.txt")

	_, err := svc.DeleteFolder(ctx, testUserID, "root", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerr.ErrFolderNotEmpty)

	var notEmpty *FolderNotEmptyError
	require.True(t, errors.As(err, &notEmpty))
	assert.Equal(t, int64(2), notEmpty.Detail.FileCount)
	assert.Equal(t, int64(1), notEmpty.Detail.SubfolderCount)

	// 没有任何东西被删
	still, _ := folderRepo.FindByID(testUserID, "root")
	assert.NotNil(t, still)
}

func TestDeleteNonEmptyFolderWithForce(t *testing.T) {
	svc, folderRepo, fileRepo := newTestFolderService()
	ctx := context.Background()
	mkFolder(folderRepo, "root", testUserID, nil, "root")
	mkFolder(folderRepo, "sub", testUserID, strPtr("root"), "sub")
	mkFile(fileRepo, "f1", testUserID, strPtr("sub"), "a.txt")

	result, err := svc.DeleteFolder(ctx, testUserID, "root", true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Summary.FoldersDeleted)
	assert.Equal(t, int64(1), result.Summary.FilesDeleted)
}

func TestGetFolderDetail(t *testing.T) {
	svc, folderRepo, fileRepo := newTestFolderService()
	ctx := context.Background()
	mkFolder(folderRepo, "root", testUserID, nil, "root")
	mkFolder(folderRepo, "sub", testUserID, strPtr("root"), "sub")
	f1 := mkFile(fileRepo, "f1", testUserID, strPtr("root"), "a.txt")
	f2 := mkFile(fileRepo, "f2", testUserID, strPtr("root"), "b.txt")

	detail, err := svc.GetFolderDetail(ctx, testUserID, "root", "", ListParams{})
	require.NoError(t, err)

	assert.Equal(t, "root", detail.Folder.ID)
	assert.Equal(t, int64(2), detail.FileCount)
	assert.Equal(t, int64(1), detail.SubfolderCount)
	assert.Equal(t, 2, detail.PageFileCount)
	assert.Equal(t, f1.Size+f2.Size, detail.TotalSize)
	require.Len(t, detail.Breadcrumbs, 2)
	assert.Equal(t, "Root", detail.Breadcrumbs[0].Name)

	require.Len(t, detail.Subfolders, 1)
	assert.Equal(t, "sub", detail.Subfolders[0].ID)
	assert.Equal(t, int64(0), detail.Subfolders[0].FileCount)

	_, err = svc.GetFolderDetail(ctx, testUserID, "missing", "", ListParams{})
	assert.ErrorIs(t, err, xerr.ErrFolderNotFound)

	_, err = svc.GetFolderDetail(ctx, testUserID, "root", "nonsense", ListParams{})
	assert.ErrorIs(t, err, xerr.ErrInvalidParams)
}

func TestListFoldersPagination(t *testing.T) {
	svc, folderRepo, _ := newTestFolderService()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		mkFolder(folderRepo, id, testUserID, nil, id)
	}

	result, err := svc.ListFolders(ctx, testUserID, nil, ListParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Folders, 2)
	assert.Equal(t, int64(5), result.Pagination.Total)
	assert.Equal(t, 3, result.Pagination.TotalPages)

	// limit 超限被夹到 100，页码非法回退到 1
	result, err = svc.ListFolders(ctx, testUserID, nil, ListParams{Page: -3, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pagination.Page)
	assert.Equal(t, MaxPageLimit, result.Pagination.Limit)
}

func TestFolderOwnershipHidden(t *testing.T) {
	svc, folderRepo, _ := newTestFolderService()
	ctx := context.Background()
	mkFolder(folderRepo, "theirs", 2, nil, "theirs")

	// 他人的文件夹与不存在的文件夹不可区分
	_, err := svc.GetFolderDetail(ctx, testUserID, "theirs", "", ListParams{})
	assert.ErrorIs(t, err, xerr.ErrFolderNotFound)

	_, err = svc.DeleteFolder(ctx, testUserID, "theirs", true)
	assert.ErrorIs(t, err, xerr.ErrFolderNotFound)
}
