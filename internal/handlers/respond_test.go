package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
	"github.com/0xEcho/cloudfile/internal/services/explorer"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordError(t *testing.T, err error) (*httptest.ResponseRecorder, xerr.Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleServiceError(c, err)

	var resp xerr.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHandleServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"名称为空", xerr.ErrNameEmpty, http.StatusBadRequest, xerr.NameEmptyCode},
		{"深度超限", xerr.ErrDepthExceeded, http.StatusBadRequest, xerr.DepthExceededCode},
		{"移入子树", xerr.ErrCannotMoveIntoSubtree, http.StatusBadRequest, xerr.CannotMoveIntoSubtreeCode},
		{"凭据错误", xerr.ErrInvalidCredentials, http.StatusUnauthorized, xerr.InvalidCredentialsCode},
		{"文件夹未找到", xerr.ErrFolderNotFound, http.StatusNotFound, xerr.FolderNotFoundCode},
		{"邮箱已注册", xerr.ErrEmailAlreadyExists, http.StatusConflict, xerr.EmailAlreadyExistsCode},
		{"存储失败", xerr.ErrStorageError, http.StatusInternalServerError, xerr.StorageErrorCode},
		{"未知错误不泄露细节", assert.AnError, http.StatusInternalServerError, xerr.InternalServerErrorCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := recordError(t, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.False(t, resp.Success)
		})
	}
}

func TestHandleServiceErrorNameConflictDetail(t *testing.T) {
	err := &explorer.NameConflictError{
		Conflict: xerr.ConflictDetail{ID: "folder-1", Name: "docs"},
	}
	w, resp := recordError(t, err)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, xerr.NameConflictCode, resp.Code)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	conflict, ok := data["conflict"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "folder-1", conflict["id"])
	assert.Equal(t, "docs", conflict["name"])
}

func TestHandleServiceErrorFolderNotEmptyDetail(t *testing.T) {
	err := &explorer.FolderNotEmptyError{
		Detail: xerr.NotEmptyDetail{FileCount: 3, SubfolderCount: 2},
	}
	w, resp := recordError(t, err)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, xerr.FolderNotEmptyCode, resp.Code)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), data["file_count"])
	assert.Equal(t, float64(2), data["subfolder_count"])
}
