package models

// StorageCleanupTask 异步清理任务：删除对象存储中已经没有元数据指向的对象。
// 两阶段上传的补偿（元数据写入失败）和级联删除中失败的存储删除都会入队。
type StorageCleanupTask struct {
	UserID    uint64 `json:"user_id"`
	Bucket    string `json:"bucket"`
	ObjectKey string `json:"object_key"`
	Reason    string `json:"reason"` // upload_compensation / cascade_retry
}
