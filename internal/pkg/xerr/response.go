package xerr

import (
	"github.com/gin-gonic/gin"
)

// CodeError 用于在服务层传递带有业务码的错误
// 它实现了 error 接口
type CodeError struct {
	Code int   // 业务错误码
	Err  error // 被包裹的底层错误
}

// Error 实现 error 接口
func (e *CodeError) Error() string {
	return e.Err.Error()
}

// Unwrap 返回被包裹的底层错误，支持 errors.Unwrap
func (e *CodeError) Unwrap() error {
	return e.Err
}

// NewCodeError 创建一个 CodeError 实例
func NewCodeError(code int, err error) *CodeError {
	return &CodeError{Code: code, Err: err}
}

// NotEmptyDetail 非空文件夹删除被拒绝时返回的计数
type NotEmptyDetail struct {
	FileCount      int64 `json:"file_count"`
	SubfolderCount int64 `json:"subfolder_count"`
}

// ConflictDetail 命名冲突时返回的冲突实体
type ConflictDetail struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Response 是通用 JSON 响应结构
type Response struct {
	Success bool   `json:"success"` // 业务是否成功
	Code    int    `json:"code"`    // 业务状态码
	Message string `json:"message"` // 消息
	Data    any    `json:"data"`    // 响应数据
}

// JSONResponse 发送标准 JSON 响应
func JSONResponse(c *gin.Context, httpStatus int, success bool, code int, message string, data any) {
	c.JSON(httpStatus, Response{
		Success: success,
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success 成功响应
func Success(c *gin.Context, httpStatus int, message string, data any) {
	JSONResponse(c, httpStatus, true, SuccessCode, message, data)
}

// Error 错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	JSONResponse(c, httpStatus, false, code, message, nil)
}

// ErrorWithData 错误响应，附带帮助客户端恢复的结构化信息（冲突实体、计数等）
func ErrorWithData(c *gin.Context, httpStatus int, code int, message string, data any) {
	JSONResponse(c, httpStatus, false, code, message, data)
}

// AbortWithError 终止请求并发送错误响应
func AbortWithError(c *gin.Context, httpStatus int, code int, message string) {
	Error(c, httpStatus, code, message)
	c.Abort() // 终止后续的 HandlerFunc
}
