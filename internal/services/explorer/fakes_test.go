package explorer

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/0xEcho/cloudfile/internal/config"
	"github.com/0xEcho/cloudfile/internal/models"
	"github.com/0xEcho/cloudfile/internal/pkg/storage"
	"github.com/0xEcho/cloudfile/internal/repositories"
	"gorm.io/gorm"
)

// ---- 内存版仓储，测试用 ----

type fakeFolderRepo struct {
	mu      sync.Mutex
	folders map[string]*models.Folder
}

var _ repositories.FolderRepository = (*fakeFolderRepo)(nil)

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]*models.Folder)}
}

func (r *fakeFolderRepo) Create(folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *folder
	r.folders[folder.ID] = &cp
	return nil
}

func (r *fakeFolderRepo) Update(folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[folder.ID]; !ok {
		return errors.New("folder not found")
	}
	cp := *folder
	r.folders[folder.ID] = &cp
	return nil
}

func (r *fakeFolderRepo) Delete(userID uint64, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.folders[id]; ok && f.UserID == userID {
		delete(r.folders, id)
	}
	return nil
}

func (r *fakeFolderRepo) DeleteBatch(tx *gorm.DB, userID uint64, ids []string) error {
	for _, id := range ids {
		if err := r.Delete(userID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeFolderRepo) FindByID(userID uint64, id string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok || f.UserID != userID {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFolderRepo) FindAllByUserID(userID uint64) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Folder
	for _, f := range r.folders {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *fakeFolderRepo) FindByParentID(userID uint64, parentID *string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Folder
	for _, f := range r.folders {
		if f.UserID == userID && sameParent(f.ParentID, parentID) {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeFolderRepo) FindPage(userID uint64, parentID *string, sortBy, sortOrder string, offset, limit int) ([]models.Folder, int64, error) {
	all, err := r.FindByParentID(userID, parentID)
	if err != nil {
		return nil, 0, err
	}
	if sortOrder == "desc" {
		sort.Slice(all, func(i, j int) bool { return all[i].Name > all[j].Name })
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeFolderRepo) FindByName(userID uint64, parentID *string, name string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.UserID == userID && sameParent(f.ParentID, parentID) && f.Name == name {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeFolderRepo) CountByParent(userID uint64, parentID *string) (int64, error) {
	children, err := r.FindByParentID(userID, parentID)
	return int64(len(children)), err
}

type fakeFileRepo struct {
	mu        sync.Mutex
	files     map[string]*models.File
	createErr error
}

var _ repositories.FileRepository = (*fakeFileRepo)(nil)

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[string]*models.File)}
}

func (r *fakeFileRepo) Create(file *models.File) error {
	return r.CreateInTx(nil, file)
}

func (r *fakeFileRepo) CreateInTx(tx *gorm.DB, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	cp := *file
	r.files[file.ID] = &cp
	return nil
}

func (r *fakeFileRepo) Update(file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[file.ID]; !ok {
		return errors.New("file not found")
	}
	cp := *file
	r.files[file.ID] = &cp
	return nil
}

func (r *fakeFileRepo) Delete(userID uint64, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.files[id]; ok && f.UserID == userID {
		delete(r.files, id)
	}
	return nil
}

func (r *fakeFileRepo) DeleteBatch(tx *gorm.DB, userID uint64, ids []string) error {
	for _, id := range ids {
		if err := r.Delete(userID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeFileRepo) FindByID(userID uint64, id string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok || f.UserID != userID {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFileRepo) FindByFolderID(userID uint64, folderID *string) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.File
	for _, f := range r.files {
		if f.UserID == userID && sameParent(f.FolderID, folderID) {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeFileRepo) FindPage(userID uint64, folderID *string, mimeTypes []string, sortBy, sortOrder string, offset, limit int) ([]models.File, int64, error) {
	all, err := r.FindByFolderID(userID, folderID)
	if err != nil {
		return nil, 0, err
	}
	if len(mimeTypes) > 0 {
		var filtered []models.File
		for _, f := range all {
			for _, mt := range mimeTypes {
				if f.MimeType == mt {
					filtered = append(filtered, f)
					break
				}
			}
		}
		all = filtered
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeFileRepo) FindByName(userID uint64, folderID *string, name string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.UserID == userID && sameParent(f.FolderID, folderID) && f.Name == name {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeFileRepo) CountByFolder(userID uint64, folderID *string) (int64, error) {
	files, err := r.FindByFolderID(userID, folderID)
	return int64(len(files)), err
}

func (r *fakeFileRepo) CountGroupByFolder(userID uint64) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, f := range r.files {
		if f.UserID == userID && f.FolderID != nil {
			counts[*f.FolderID]++
		}
	}
	return counts, nil
}

// ---- 内存版对象存储 ----

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte // bucket/key -> content
	putErr    error
	removeErr error
	removed   []string
}

var _ storage.StorageService = (*fakeStorage)(nil)

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func objKey(bucket, object string) string {
	return bucket + "/" + object
}

func (s *fakeStorage) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, contentType string) (storage.PutObjectResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return storage.PutObjectResult{}, s.putErr
	}
	data, _ := io.ReadAll(reader)
	s.objects[objKey(bucket, object)] = data
	return storage.PutObjectResult{Bucket: bucket, Key: object, Size: size}, nil
}

func (s *fakeStorage) GetObject(ctx context.Context, bucket, object string) (storage.GetObjectResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[objKey(bucket, object)]
	if !ok {
		return storage.GetObjectResult{}, errors.New("object not found")
	}
	return storage.GetObjectResult{
		Reader: io.NopCloser(strings.NewReader(string(data))),
		Size:   int64(len(data)),
	}, nil
}

func (s *fakeStorage) RemoveObject(ctx context.Context, bucket, object string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.objects, objKey(bucket, object))
	s.removed = append(s.removed, object)
	return nil
}

func (s *fakeStorage) IsBucketExist(ctx context.Context, bucket string) (bool, error) {
	return true, nil
}

func (s *fakeStorage) MakeBucket(ctx context.Context, bucket string) error {
	return nil
}

func (s *fakeStorage) GetObjectURL(bucket, object string) string {
	return "http://storage.local/" + objKey(bucket, object)
}

func (s *fakeStorage) PresignGetObjectURL(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	return "http://storage.local/presigned/" + objKey(bucket, object), nil
}

// ---- 记录入队任务的清理队列 ----

type fakePublisher struct {
	mu        sync.Mutex
	published [][]byte
}

func (p *fakePublisher) Publish(queueName string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, body)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

// ---- 直通事务管理器 ----

type fakeTM struct{}

func (fakeTM) WithTransaction(fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// ---- 测试公共配置 ----

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Folder.MaxDepth = 10
	cfg.Upload.MaxFileSize = 50 * 1024 * 1024
	cfg.Upload.MaxFileCount = 10
	cfg.Storage.Type = "minio"
	cfg.Storage.OperationTimeout = 5 * time.Second
	cfg.Storage.PresignedURLExpiry = 15
	cfg.MinIO.BucketName = "test-bucket"
	return cfg
}

// mkFolder 直接往仓储里塞一个文件夹
func mkFolder(repo *fakeFolderRepo, id string, userID uint64, parentID *string, name string) *models.Folder {
	f := &models.Folder{ID: id, UserID: userID, ParentID: parentID, Name: name}
	_ = repo.Create(f)
	return f
}

// mkFile 直接往仓储里塞一个文件
func mkFile(repo *fakeFileRepo, id string, userID uint64, folderID *string, name string) *models.File {
	f := &models.File{
		ID: id, UserID: userID, FolderID: folderID, Name: name,
		OriginalName: name, Size: 10, MimeType: "text/plain",
		StorageBucket: "test-bucket", StorageKey: "users/1/x/" + id,
	}
	_ = repo.Create(f)
	return f
}

func strPtr(s string) *string {
	return &s
}
