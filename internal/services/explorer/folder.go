package explorer

import (
	"context"
	"errors"
	"time"

	"github.com/0xEcho/cloudfile/internal/config"
	"github.com/0xEcho/cloudfile/internal/models"
	"github.com/0xEcho/cloudfile/internal/pkg/cache"
	"github.com/0xEcho/cloudfile/internal/pkg/logger"
	"github.com/0xEcho/cloudfile/internal/pkg/utils"
	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
	"github.com/0xEcho/cloudfile/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 文件夹层级视图的缓存有效期
const folderTreeCacheTTL = 10 * time.Minute

var folderSortableFields = map[string]struct{}{
	"name":       {},
	"created_at": {},
	"updated_at": {},
}

// FolderListResult 某一父目录下文件夹的分页列表
type FolderListResult struct {
	Folders    []models.Folder `json:"folders"`
	Pagination Pagination      `json:"pagination"`
}

// SubfolderInfo 详情视图里的子目录条目，附带内容计数
type SubfolderInfo struct {
	models.Folder
	FileCount      int64 `json:"file_count"`
	SubfolderCount int64 `json:"subfolder_count"`
}

// FolderDetail 单个文件夹的聚合视图：路径、子目录和当前页的文件
type FolderDetail struct {
	Folder         *models.Folder      `json:"folder"`
	Breadcrumbs    []models.Breadcrumb `json:"breadcrumbs"`
	Subfolders     []SubfolderInfo     `json:"subfolders"`
	Files          []models.File       `json:"files"`
	FileCount      int64               `json:"file_count"`
	SubfolderCount int64               `json:"subfolder_count"`
	PageFileCount  int                 `json:"page_file_count"`
	TotalSize      uint64              `json:"total_size"` // 当前页文件的字节数之和
	Pagination     Pagination          `json:"pagination"`
}

// MoveFolderResult 移动文件夹的结果
type MoveFolderResult struct {
	Folder      *models.Folder `json:"folder"`
	OldParentID *string        `json:"old_parent_id"`
	NewParentID *string        `json:"new_parent_id"`
	NewDepth    int            `json:"new_depth"`
}

// DeleteFolderResult 删除文件夹的结果，force 删除时附带级联统计
type DeleteFolderResult struct {
	DeletedID string           `json:"deleted_id"`
	Name      string           `json:"name"`
	Summary   *DeletionSummary `json:"summary,omitempty"`
}

type FolderService interface {
	CreateFolder(ctx context.Context, userID uint64, name string, parentID *string) (*models.Folder, error)
	ListFolders(ctx context.Context, userID uint64, parentID *string, params ListParams) (*FolderListResult, error)
	GetHierarchy(ctx context.Context, userID uint64) ([]*models.FolderNode, error)
	GetBreadcrumbs(ctx context.Context, userID uint64, folderID string) ([]models.Breadcrumb, error)
	GetFolderDetail(ctx context.Context, userID uint64, folderID, fileCategory string, fileParams ListParams) (*FolderDetail, error)
	RenameFolder(ctx context.Context, userID uint64, folderID, newName string) (*models.Folder, error)
	MoveFolder(ctx context.Context, userID uint64, folderID string, targetParentID *string) (*MoveFolderResult, error)
	DeleteFolder(ctx context.Context, userID uint64, folderID string, force bool) (*DeleteFolderResult, error)
}

type folderService struct {
	engine     *TreeEngine
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	cache      cache.Cache
	cfg        *config.Config
}

var _ FolderService = (*folderService)(nil)

func NewFolderService(
	engine *TreeEngine,
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	cacheService cache.Cache,
	cfg *config.Config,
) FolderService {
	return &folderService{
		engine:     engine,
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		cache:      cacheService,
		cfg:        cfg,
	}
}

// invalidateTreeCache 任何结构性变更后使层级视图缓存失效
func (s *folderService) invalidateTreeCache(ctx context.Context, userID uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cache.GenerateFolderTreeKey(userID)); err != nil {
		logger.Warn("删除文件夹树缓存失败", zap.Uint64("userID", userID), zap.Error(err))
	}
}

func (s *folderService) CreateFolder(ctx context.Context, userID uint64, name string, parentID *string) (*models.Folder, error) {
	cleanName, err := utils.ValidateName(name)
	if err != nil {
		return nil, err
	}

	var created *models.Folder
	err = s.engine.WithOwnerLock(userID, func() error {
		if parentID != nil {
			parent, err := s.folderRepo.FindByID(userID, *parentID)
			if err != nil {
				return err
			}
			if parent == nil {
				return xerr.ErrFolderNotFound
			}
		}

		parentDepth, err := s.engine.ComputeDepth(userID, parentID)
		if err != nil {
			return err
		}
		if parentDepth+1 > s.cfg.Folder.MaxDepth {
			return xerr.ErrDepthExceeded
		}

		existing, err := s.folderRepo.FindByName(userID, parentID, cleanName)
		if err != nil {
			return err
		}
		if existing != nil {
			return &NameConflictError{Conflict: xerr.ConflictDetail{ID: existing.ID, Name: existing.Name}}
		}

		folder := &models.Folder{
			ID:       uuid.New().String(),
			UserID:   userID,
			ParentID: parentID,
			Name:     cleanName,
		}
		if err := s.folderRepo.Create(folder); err != nil {
			return err
		}
		created = folder
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTreeCache(ctx, userID)
	logger.Info("文件夹创建成功",
		zap.Uint64("userID", userID),
		zap.String("folderID", created.ID),
		zap.String("name", created.Name))
	return created, nil
}

func (s *folderService) ListFolders(ctx context.Context, userID uint64, parentID *string, params ListParams) (*FolderListResult, error) {
	if parentID != nil {
		parent, err := s.folderRepo.FindByID(userID, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, xerr.ErrFolderNotFound
		}
	}

	params = normalizeListParams(params, folderSortableFields, "name")
	offset := (params.Page - 1) * params.Limit
	folders, total, err := s.folderRepo.FindPage(userID, parentID, params.SortBy, params.SortOrder, offset, params.Limit)
	if err != nil {
		return nil, err
	}

	return &FolderListResult{
		Folders:    folders,
		Pagination: buildPagination(params, total),
	}, nil
}

func (s *folderService) GetHierarchy(ctx context.Context, userID uint64) ([]*models.FolderNode, error) {
	treeKey := cache.GenerateFolderTreeKey(userID)
	if s.cache != nil {
		var cached []*models.FolderNode
		if err := s.cache.Get(ctx, treeKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn("读取文件夹树缓存失败", zap.Uint64("userID", userID), zap.Error(err))
		}
	}

	roots, err := s.engine.BuildHierarchy(userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, treeKey, roots, folderTreeCacheTTL); err != nil {
			logger.Warn("写入文件夹树缓存失败", zap.Uint64("userID", userID), zap.Error(err))
		}
	}
	return roots, nil
}

func (s *folderService) GetBreadcrumbs(ctx context.Context, userID uint64, folderID string) ([]models.Breadcrumb, error) {
	folder, err := s.folderRepo.FindByID(userID, folderID)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, xerr.ErrFolderNotFound
	}
	return s.engine.BuildBreadcrumbs(userID, folderID)
}

func (s *folderService) GetFolderDetail(ctx context.Context, userID uint64, folderID, fileCategory string, fileParams ListParams) (*FolderDetail, error) {
	folder, err := s.folderRepo.FindByID(userID, folderID)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, xerr.ErrFolderNotFound
	}

	var mimeTypes []string
	if fileCategory != "" {
		mimeTypes = MimeTypesOfCategory(fileCategory)
		if mimeTypes == nil {
			return nil, xerr.ErrInvalidParams
		}
	}

	breadcrumbs, err := s.engine.BuildBreadcrumbs(userID, folderID)
	if err != nil {
		return nil, err
	}

	children, err := s.folderRepo.FindByParentID(userID, &folderID)
	if err != nil {
		return nil, err
	}
	fileCounts, err := s.fileRepo.CountGroupByFolder(userID)
	if err != nil {
		return nil, err
	}
	subfolders := make([]SubfolderInfo, 0, len(children))
	for _, child := range children {
		subCount, err := s.folderRepo.CountByParent(userID, &child.ID)
		if err != nil {
			return nil, err
		}
		subfolders = append(subfolders, SubfolderInfo{
			Folder:         child,
			FileCount:      fileCounts[child.ID],
			SubfolderCount: subCount,
		})
	}

	fileParams = normalizeListParams(fileParams, fileSortableFields, "name")
	offset := (fileParams.Page - 1) * fileParams.Limit
	files, fileTotal, err := s.fileRepo.FindPage(userID, &folderID, mimeTypes, fileParams.SortBy, fileParams.SortOrder, offset, fileParams.Limit)
	if err != nil {
		return nil, err
	}

	var totalSize uint64
	for _, f := range files {
		totalSize += f.Size
	}

	return &FolderDetail{
		Folder:         folder,
		Breadcrumbs:    breadcrumbs,
		Subfolders:     subfolders,
		Files:          files,
		FileCount:      fileTotal,
		SubfolderCount: int64(len(subfolders)),
		PageFileCount:  len(files),
		TotalSize:      totalSize,
		Pagination:     buildPagination(fileParams, fileTotal),
	}, nil
}

func (s *folderService) RenameFolder(ctx context.Context, userID uint64, folderID, newName string) (*models.Folder, error) {
	cleanName, err := utils.ValidateName(newName)
	if err != nil {
		return nil, err
	}

	var renamed *models.Folder
	err = s.engine.WithOwnerLock(userID, func() error {
		folder, err := s.folderRepo.FindByID(userID, folderID)
		if err != nil {
			return err
		}
		if folder == nil {
			return xerr.ErrFolderNotFound
		}
		if folder.Name == cleanName {
			renamed = folder
			return nil
		}

		existing, err := s.folderRepo.FindByName(userID, folder.ParentID, cleanName)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != folderID {
			return &NameConflictError{Conflict: xerr.ConflictDetail{ID: existing.ID, Name: existing.Name}}
		}

		folder.Name = cleanName
		if err := s.folderRepo.Update(folder); err != nil {
			return err
		}
		renamed = folder
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTreeCache(ctx, userID)
	return renamed, nil
}

func (s *folderService) MoveFolder(ctx context.Context, userID uint64, folderID string, targetParentID *string) (*MoveFolderResult, error) {
	var result *MoveFolderResult
	err := s.engine.WithOwnerLock(userID, func() error {
		folder, err := s.folderRepo.FindByID(userID, folderID)
		if err != nil {
			return err
		}
		if folder == nil {
			return xerr.ErrFolderNotFound
		}

		// 已在目标位置：按成功处理，返回未变更的记录
		if sameLocation(folder.ParentID, targetParentID) {
			depth, err := s.engine.ComputeDepth(userID, &folderID)
			if err != nil {
				return err
			}
			result = &MoveFolderResult{
				Folder:      folder,
				OldParentID: folder.ParentID,
				NewParentID: folder.ParentID,
				NewDepth:    depth,
			}
			return nil
		}

		if targetParentID != nil {
			target, err := s.folderRepo.FindByID(userID, *targetParentID)
			if err != nil {
				return err
			}
			if target == nil {
				return xerr.ErrFolderNotFound
			}

			// 目标不能位于待移动文件夹自身的子树中（含自身），否则会成环
			inSubtree, err := s.engine.IsDescendant(userID, folderID, *targetParentID)
			if err != nil {
				return err
			}
			if inSubtree {
				return xerr.ErrCannotMoveIntoSubtree
			}
		}

		parentDepth, err := s.engine.ComputeDepth(userID, targetParentID)
		if err != nil {
			return err
		}
		height, err := s.engine.SubtreeHeight(userID, folderID)
		if err != nil {
			return err
		}
		// 移动后子树里最深的后代也不能超出深度上限
		if parentDepth+height > s.cfg.Folder.MaxDepth {
			return xerr.ErrDepthExceeded
		}

		existing, err := s.folderRepo.FindByName(userID, targetParentID, folder.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return &NameConflictError{Conflict: xerr.ConflictDetail{ID: existing.ID, Name: existing.Name}}
		}

		oldParentID := folder.ParentID
		folder.ParentID = targetParentID
		if err := s.folderRepo.Update(folder); err != nil {
			return err
		}

		result = &MoveFolderResult{
			Folder:      folder,
			OldParentID: oldParentID,
			NewParentID: targetParentID,
			NewDepth:    parentDepth + 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTreeCache(ctx, userID)
	logger.Info("文件夹移动成功",
		zap.Uint64("userID", userID),
		zap.String("folderID", folderID),
		zap.Int("newDepth", result.NewDepth))
	return result, nil
}

func (s *folderService) DeleteFolder(ctx context.Context, userID uint64, folderID string, force bool) (*DeleteFolderResult, error) {
	var result *DeleteFolderResult
	err := s.engine.WithOwnerLock(userID, func() error {
		folder, err := s.folderRepo.FindByID(userID, folderID)
		if err != nil {
			return err
		}
		if folder == nil {
			return xerr.ErrFolderNotFound
		}

		fileCount, err := s.fileRepo.CountByFolder(userID, &folderID)
		if err != nil {
			return err
		}
		subfolderCount, err := s.folderRepo.CountByParent(userID, &folderID)
		if err != nil {
			return err
		}

		if fileCount == 0 && subfolderCount == 0 {
			if err := s.folderRepo.Delete(userID, folderID); err != nil {
				return err
			}
			result = &DeleteFolderResult{
				DeletedID: folderID,
				Name:      folder.Name,
				Summary:   &DeletionSummary{FoldersDeleted: 1},
			}
			return nil
		}

		if !force {
			return &FolderNotEmptyError{Detail: xerr.NotEmptyDetail{
				FileCount:      fileCount,
				SubfolderCount: subfolderCount,
			}}
		}

		summary, err := s.engine.CascadeDelete(ctx, userID, folder)
		if err != nil {
			return err
		}
		result = &DeleteFolderResult{
			DeletedID: folderID,
			Name:      folder.Name,
			Summary:   summary,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTreeCache(ctx, userID)
	logger.Info("文件夹删除成功",
		zap.Uint64("userID", userID),
		zap.String("folderID", folderID),
		zap.Int64("foldersDeleted", result.Summary.FoldersDeleted),
		zap.Int64("filesDeleted", result.Summary.FilesDeleted))
	return result, nil
}

// sameLocation 比较两个父目录指针指向的位置是否相同（都为根或指向同一文件夹）
func sameLocation(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
