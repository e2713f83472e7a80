package xerr

import "errors"

var (
	// 通用错误
	ErrInternalServer = errors.New("服务器内部错误")
	ErrInvalidParams  = errors.New("无效的请求参数")

	// 名称校验
	ErrNameEmpty   = errors.New("名称不能为空")
	ErrNameTooLong = errors.New("名称过长，最多 255 个字符")
	ErrNameInvalid = errors.New("名称包含非法字符")

	// 上传校验
	ErrNoFileUploaded     = errors.New("未上传任何文件")
	ErrFileTooLarge       = errors.New("上传文件过大，超出限制")
	ErrTooManyFiles       = errors.New("一次上传的文件数量超出限制")
	ErrFileTypeNotAllowed = errors.New("文件类型不允许上传")

	// 认证与授权错误
	ErrUnauthorized       = errors.New("用户未授权")
	ErrTokenInvalid       = errors.New("认证 Token 无效或已过期")
	ErrInvalidCredentials = errors.New("邮箱或密码不正确")
	ErrEmailAlreadyExists = errors.New("邮箱已被注册")
	ErrTokenAlreadyUsed   = errors.New("链接无效或已过期")

	// 资源未找到错误
	// 文件/文件夹"不存在"与"不属于当前用户"统一返回未找到，避免泄露归属信息
	ErrUserNotFound   = errors.New("用户不存在")
	ErrFileNotFound   = errors.New("文件不存在")
	ErrFolderNotFound = errors.New("文件夹不存在")

	// 树结构约束
	ErrNameConflict          = errors.New("该位置已存在同名文件或文件夹")
	ErrCannotMoveIntoSubtree = errors.New("不能把文件夹移动到自身或其子目录下")
	ErrDepthExceeded         = errors.New("超出最大目录深度")
	ErrFolderNotEmpty        = errors.New("文件夹不为空，无法删除")

	// 数据库与外部服务错误
	ErrDatabaseError  = errors.New("数据库操作失败")
	ErrStorageError   = errors.New("存储服务操作失败")
	ErrStorageTimeout = errors.New("存储服务调用超时")
	ErrMQError        = errors.New("消息队列操作失败")
	ErrEmailError     = errors.New("邮件发送失败")
)
