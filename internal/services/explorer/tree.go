package explorer

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/0xEcho/cloudfile/internal/config"
	"github.com/0xEcho/cloudfile/internal/models"
	"github.com/0xEcho/cloudfile/internal/pkg/logger"
	"github.com/0xEcho/cloudfile/internal/pkg/mq/worker"
	"github.com/0xEcho/cloudfile/internal/pkg/storage"
	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
	"github.com/0xEcho/cloudfile/internal/repositories"
	"go.uber.org/zap"
)

// CleanupPublisher 把存储清理任务发往消息队列，*mq.RabbitMQClient 满足该接口
type CleanupPublisher interface {
	Publish(queueName string, body []byte) error
}

// DeletionSummary 级联删除的结果统计
// StorageDeletions 只统计同步成功的存储删除，失败的会入队异步重试
type DeletionSummary struct {
	FoldersDeleted   int64 `json:"folders_deleted"`
	FilesDeleted     int64 `json:"files_deleted"`
	StorageDeletions int64 `json:"storage_deletions"`
}

// TreeEngine 维护单个用户目录森林的结构约束：
// 同级不重名、无环、深度不超过上限。所有树遍历都以 user_id 为查询条件，
// 并以 max_depth+1 为上界，坏数据中的环不会让遍历失控。
type TreeEngine struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	storage    storage.StorageService
	publisher  CleanupPublisher
	cfg        *config.Config

	mu         sync.Mutex
	ownerLocks map[uint64]*sync.Mutex
}

func NewTreeEngine(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	storageService storage.StorageService,
	publisher CleanupPublisher,
	cfg *config.Config,
) *TreeEngine {
	return &TreeEngine{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		storage:    storageService,
		publisher:  publisher,
		cfg:        cfg,
		ownerLocks: make(map[uint64]*sync.Mutex),
	}
}

// WithOwnerLock 串行化同一用户的所有结构性写操作（先检查后写入必须原子）。
// 不同用户互不阻塞。
func (t *TreeEngine) WithOwnerLock(userID uint64, fn func() error) error {
	t.mu.Lock()
	lock, ok := t.ownerLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		t.ownerLocks[userID] = lock
	}
	t.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// ComputeDepth 沿父链向上走到根，返回跳数。folderID 为 nil（根目录）返回 0，
// 根目录下的第一层文件夹深度为 1。走了 max_depth+1 步还没到根说明数据有环
// 或树已超深，返回 ErrDepthExceeded。
func (t *TreeEngine) ComputeDepth(userID uint64, folderID *string) (int, error) {
	depth := 0
	cur := folderID
	for cur != nil {
		if depth > t.cfg.Folder.MaxDepth {
			logger.Error("父链遍历超出深度上界，疑似存在环",
				zap.Uint64("userID", userID),
				zap.String("folderID", *folderID))
			return 0, xerr.ErrDepthExceeded
		}
		folder, err := t.folderRepo.FindByID(userID, *cur)
		if err != nil {
			return 0, err
		}
		if folder == nil {
			return 0, xerr.ErrFolderNotFound
		}
		depth++
		cur = folder.ParentID
	}
	return depth, nil
}

// SubtreeHeight 返回以 folderID 为根的子树层数（至少为 1）。
// 移动文件夹前用它预判移动后最深的后代是否会超出深度上限。
func (t *TreeEngine) SubtreeHeight(userID uint64, folderID string) (int, error) {
	height := 0
	level := []string{folderID}
	visited := map[string]struct{}{folderID: {}}

	for len(level) > 0 {
		height++
		if height > t.cfg.Folder.MaxDepth {
			return 0, xerr.ErrDepthExceeded
		}
		var next []string
		for _, id := range level {
			children, err := t.folderRepo.FindByParentID(userID, &id)
			if err != nil {
				return 0, err
			}
			for _, child := range children {
				if _, seen := visited[child.ID]; seen {
					logger.Warn("子树遍历遇到重复节点，已跳过",
						zap.Uint64("userID", userID),
						zap.String("folderID", child.ID))
					continue
				}
				visited[child.ID] = struct{}{}
				next = append(next, child.ID)
			}
		}
		level = next
	}
	return height, nil
}

// IsDescendant 判断 startID 是否位于 ancestorID 的子树中（startID == ancestorID 视为 true）。
// 移动文件夹时以此拒绝把文件夹挪进自己的子树。
func (t *TreeEngine) IsDescendant(userID uint64, ancestorID, startID string) (bool, error) {
	cur := &startID
	for hops := 0; cur != nil; hops++ {
		if hops > t.cfg.Folder.MaxDepth {
			return false, xerr.ErrDepthExceeded
		}
		if *cur == ancestorID {
			return true, nil
		}
		folder, err := t.folderRepo.FindByID(userID, *cur)
		if err != nil {
			return false, err
		}
		if folder == nil {
			// 父链中断，无法到达候选祖先
			return false, nil
		}
		cur = folder.ParentID
	}
	return false, nil
}

// BuildBreadcrumbs 返回从根到 folderID 的路径，首项永远是合成的 Root 节点。
// 导航路径只读且容错：父链断裂或超深（脏数据中的环）时记录告警并返回
// 截断的路径，不让请求失败。
func (t *TreeEngine) BuildBreadcrumbs(userID uint64, folderID string) ([]models.Breadcrumb, error) {
	var chain []models.Breadcrumb
	cur := &folderID
	for cur != nil {
		if len(chain) > t.cfg.Folder.MaxDepth {
			logger.Warn("面包屑父链超出深度上界，路径已截断",
				zap.Uint64("userID", userID),
				zap.String("folderID", folderID))
			break
		}
		folder, err := t.folderRepo.FindByID(userID, *cur)
		if err != nil {
			return nil, err
		}
		if folder == nil {
			break
		}
		id := folder.ID
		chain = append(chain, models.Breadcrumb{ID: &id, Name: folder.Name})
		cur = folder.ParentID
	}

	crumbs := make([]models.Breadcrumb, 0, len(chain)+1)
	crumbs = append(crumbs, models.Breadcrumb{ID: nil, Name: "Root"})
	for i := len(chain) - 1; i >= 0; i-- {
		crumbs = append(crumbs, chain[i])
	}
	return crumbs, nil
}

// BuildHierarchy 一次性加载用户的全部文件夹并在内存中组装整棵树。
// 父节点缺失的孤儿文件夹会被排除并记录告警，不会让整个请求失败。
// 每层子节点按名称升序。
func (t *TreeEngine) BuildHierarchy(userID uint64) ([]*models.FolderNode, error) {
	folders, err := t.folderRepo.FindAllByUserID(userID)
	if err != nil {
		return nil, err
	}
	fileCounts, err := t.fileRepo.CountGroupByFolder(userID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*models.FolderNode, len(folders))
	for _, f := range folders {
		nodes[f.ID] = &models.FolderNode{
			ID:        f.ID,
			Name:      f.Name,
			ParentID:  f.ParentID,
			FileCount: fileCounts[f.ID],
			CreatedAt: f.CreatedAt,
			UpdatedAt: f.UpdatedAt,
			Children:  []*models.FolderNode{},
		}
	}

	roots := []*models.FolderNode{}
	for _, f := range folders {
		node := nodes[f.ID]
		if f.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*f.ParentID]
		if !ok {
			logger.Warn("发现孤儿文件夹，已从层级视图中排除",
				zap.Uint64("userID", userID),
				zap.String("folderID", f.ID),
				zap.String("parentID", *f.ParentID))
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	for _, node := range nodes {
		node.SubfolderCount = int64(len(node.Children))
		sortNodesByName(node.Children)
	}
	sortNodesByName(roots)
	return roots, nil
}

func sortNodesByName(nodes []*models.FolderNode) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Name < nodes[j].Name
	})
}

// CascadeDelete 删除整棵子树（含 root 自身）：先用显式栈收集全部后代，
// 再自底向上逐个文件夹删除——先删文件夹内的文件（存储对象 + 元数据），
// 再删文件夹行，保证任一时刻不存在指向已删除父目录的行。
// 存储删除失败只记录并入队重试，不阻塞元数据删除。
func (t *TreeEngine) CascadeDelete(ctx context.Context, userID uint64, root *models.Folder) (*DeletionSummary, error) {
	summary := &DeletionSummary{}

	// 阶段一：收集子树，visited 防御脏数据中的环
	order := []string{root.ID}
	visited := map[string]struct{}{root.ID: {}}
	stack := []string{root.ID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := t.folderRepo.FindByParentID(userID, &id)
		if err != nil {
			return summary, err
		}
		for _, child := range children {
			if _, seen := visited[child.ID]; seen {
				logger.Warn("级联删除遇到重复节点，已跳过",
					zap.Uint64("userID", userID),
					zap.String("folderID", child.ID))
				continue
			}
			visited[child.ID] = struct{}{}
			order = append(order, child.ID)
			stack = append(stack, child.ID)
		}
	}

	// 阶段二：自底向上删除
	for i := len(order) - 1; i >= 0; i-- {
		folderID := order[i]

		files, err := t.fileRepo.FindByFolderID(userID, &folderID)
		if err != nil {
			return summary, err
		}
		fileIDs := make([]string, 0, len(files))
		for idx := range files {
			if t.RemoveStoredObject(ctx, &files[idx], "cascade_retry") {
				summary.StorageDeletions++
			}
			fileIDs = append(fileIDs, files[idx].ID)
		}
		if err := t.fileRepo.DeleteBatch(nil, userID, fileIDs); err != nil {
			return summary, err
		}
		summary.FilesDeleted += int64(len(fileIDs))

		if err := t.folderRepo.Delete(userID, folderID); err != nil {
			return summary, err
		}
		summary.FoldersDeleted++
	}
	return summary, nil
}

// RemoveStoredObject 带超时地删除存储对象，失败时入队异步重试并返回 false
func (t *TreeEngine) RemoveStoredObject(ctx context.Context, file *models.File, reason string) bool {
	opCtx, cancel := context.WithTimeout(ctx, t.cfg.Storage.OperationTimeout)
	defer cancel()

	if err := t.storage.RemoveObject(opCtx, file.StorageBucket, file.StorageKey); err != nil {
		logger.Error("删除存储对象失败，已入队重试",
			zap.String("fileID", file.ID),
			zap.String("objectKey", file.StorageKey),
			zap.Error(err))
		t.EnqueueCleanup(models.StorageCleanupTask{
			UserID:    file.UserID,
			Bucket:    file.StorageBucket,
			ObjectKey: file.StorageKey,
			Reason:    reason,
		})
		return false
	}
	return true
}

// EnqueueCleanup 把清理任务发往存储清理队列。入队失败只记日志：
// 最坏结果是存储里留下一个没有元数据指向的孤儿对象。
func (t *TreeEngine) EnqueueCleanup(task models.StorageCleanupTask) {
	if t.publisher == nil {
		return
	}
	body, err := json.Marshal(task)
	if err != nil {
		logger.Error("序列化清理任务失败", zap.Error(err))
		return
	}
	if err := t.publisher.Publish(worker.CleanupQueueName, body); err != nil {
		logger.Error("清理任务入队失败",
			zap.String("objectKey", task.ObjectKey),
			zap.Error(err))
	}
}
