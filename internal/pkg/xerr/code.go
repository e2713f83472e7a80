package xerr

// 定义了统一的业务错误码
const (
	SuccessCode = 20000 // 通用成功码

	// --- 客户端请求错误系列 (400xx) ---
	InvalidParamsCode         = 40000 // 无效的请求参数
	ValidationFailedCode      = 40001 // 参数验证失败
	NameEmptyCode             = 40002 // 名称为空
	NameTooLongCode           = 40003 // 名称超长
	NameInvalidCode           = 40004 // 名称包含非法字符
	FileTooLargeCode          = 40005 // 文件过大
	TooManyFilesCode          = 40006 // 一次上传文件数超限
	FileTypeNotAllowedCode    = 40007 // 文件类型不在白名单内
	NoFileUploadedCode        = 40008 // 未上传任何文件
	CannotMoveIntoSubtreeCode = 40009 // 不能把文件夹移动到自身或其子目录下
	DepthExceededCode         = 40010 // 超出最大目录深度

	// --- 认证与授权错误系列 (401xx/403xx) ---
	UnauthorizedCode       = 40100 // 通用未授权
	TokenInvalidCode       = 40101 // Token 无效或过期
	InvalidCredentialsCode = 40102 // 邮箱或密码错误
	ForbiddenCode          = 40300 // 禁止访问

	// --- 资源未找到错误系列 (404xx) ---
	NotFoundCode       = 40400 // 通用资源未找到
	UserNotFoundCode   = 40401 // 用户不存在
	FileNotFoundCode   = 40402 // 文件不存在
	FolderNotFoundCode = 40403 // 文件夹不存在

	// --- 业务逻辑冲突系列 (409xx) ---
	EmailAlreadyExistsCode  = 40900 // 邮箱已注册
	NameConflictCode        = 40901 // 同级下已存在同名文件或文件夹
	FolderNotEmptyCode      = 40902 // 文件夹不为空，无法删除
	TokenAlreadyUsedCode    = 40903 // 验证/重置 token 已被使用或已过期
	NotImplementedCode      = 40904 // 功能占位，尚未实现

	// --- 服务器内部错误系列 (500xx) ---
	InternalServerErrorCode = 50000 // 服务器内部通用错误
	DatabaseErrorCode       = 50001 // 数据库操作失败
	StorageErrorCode        = 50002 // 存储服务操作失败
	StorageTimeoutCode      = 50003 // 存储服务调用超时
	MQErrorCode             = 50004 // 消息队列操作失败
	EmailErrorCode          = 50005 // 邮件发送失败
)
