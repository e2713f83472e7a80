package handlers

import (
	"errors"
	"net/http"

	"github.com/0xEcho/cloudfile/internal/pkg/logger"
	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
	"github.com/0xEcho/cloudfile/internal/services/explorer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorMapping 服务层 sentinel 错误到 HTTP 状态和业务码的映射表
var errorMapping = []struct {
	target error
	status int
	code   int
}{
	{xerr.ErrNameEmpty, http.StatusBadRequest, xerr.NameEmptyCode},
	{xerr.ErrNameTooLong, http.StatusBadRequest, xerr.NameTooLongCode},
	{xerr.ErrNameInvalid, http.StatusBadRequest, xerr.NameInvalidCode},
	{xerr.ErrInvalidParams, http.StatusBadRequest, xerr.InvalidParamsCode},
	{xerr.ErrNoFileUploaded, http.StatusBadRequest, xerr.NoFileUploadedCode},
	{xerr.ErrFileTooLarge, http.StatusBadRequest, xerr.FileTooLargeCode},
	{xerr.ErrTooManyFiles, http.StatusBadRequest, xerr.TooManyFilesCode},
	{xerr.ErrFileTypeNotAllowed, http.StatusBadRequest, xerr.FileTypeNotAllowedCode},
	{xerr.ErrCannotMoveIntoSubtree, http.StatusBadRequest, xerr.CannotMoveIntoSubtreeCode},
	{xerr.ErrDepthExceeded, http.StatusBadRequest, xerr.DepthExceededCode},
	{xerr.ErrUnauthorized, http.StatusUnauthorized, xerr.UnauthorizedCode},
	{xerr.ErrTokenInvalid, http.StatusUnauthorized, xerr.TokenInvalidCode},
	{xerr.ErrInvalidCredentials, http.StatusUnauthorized, xerr.InvalidCredentialsCode},
	{xerr.ErrUserNotFound, http.StatusNotFound, xerr.UserNotFoundCode},
	{xerr.ErrFileNotFound, http.StatusNotFound, xerr.FileNotFoundCode},
	{xerr.ErrFolderNotFound, http.StatusNotFound, xerr.FolderNotFoundCode},
	{xerr.ErrEmailAlreadyExists, http.StatusConflict, xerr.EmailAlreadyExistsCode},
	{xerr.ErrNameConflict, http.StatusConflict, xerr.NameConflictCode},
	{xerr.ErrFolderNotEmpty, http.StatusConflict, xerr.FolderNotEmptyCode},
	{xerr.ErrTokenAlreadyUsed, http.StatusConflict, xerr.TokenAlreadyUsedCode},
	{xerr.ErrStorageTimeout, http.StatusInternalServerError, xerr.StorageTimeoutCode},
	{xerr.ErrStorageError, http.StatusInternalServerError, xerr.StorageErrorCode},
	{xerr.ErrMQError, http.StatusInternalServerError, xerr.MQErrorCode},
	{xerr.ErrEmailError, http.StatusInternalServerError, xerr.EmailErrorCode},
	{xerr.ErrDatabaseError, http.StatusInternalServerError, xerr.DatabaseErrorCode},
}

// HandleServiceError 把服务层返回的错误翻译成统一 JSON 响应。
// 命名冲突和非空文件夹两类错误携带结构化数据，帮助客户端恢复。
func HandleServiceError(c *gin.Context, err error) {
	var conflictErr *explorer.NameConflictError
	if errors.As(err, &conflictErr) {
		xerr.ErrorWithData(c, http.StatusConflict, xerr.NameConflictCode, err.Error(), gin.H{
			"conflict": conflictErr.Conflict,
		})
		return
	}

	var notEmptyErr *explorer.FolderNotEmptyError
	if errors.As(err, &notEmptyErr) {
		xerr.ErrorWithData(c, http.StatusConflict, xerr.FolderNotEmptyCode, err.Error(), notEmptyErr.Detail)
		return
	}

	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			xerr.Error(c, m.status, m.code, err.Error())
			return
		}
	}

	// 未归类的错误不把细节透给客户端
	logger.Error("未归类的服务层错误", zap.String("path", c.FullPath()), zap.Error(err))
	xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, xerr.ErrInternalServer.Error())
}
