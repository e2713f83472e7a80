package handlers

import (
	"fmt"
	"net/http"

	"github.com/0xEcho/cloudfile/internal/pkg/utils"
	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
	"github.com/0xEcho/cloudfile/internal/services/explorer"
	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	fileService explorer.FileService
}

func NewFileHandler(fileService explorer.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

type RenameFileRequest struct {
	Name string `json:"name" binding:"required"`
}

type MoveFileRequest struct {
	// 为 nil 表示移动到根目录
	FolderID *string `json:"folder_id"`
}

// Upload 上传一个或多个文件到指定目录。
// 多文件上传是原子的：任何一个失败，整批都不落库。
// @Summary 上传文件
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "上传的文件，可多选"
// @Param folder_id formData string false "目标文件夹 ID，缺省为根目录"
// @Success 201 {object} xerr.Response
// @Failure 400 {object} xerr.Response
// @Failure 409 {object} xerr.Response
// @Security BearerAuth
// @Router /files/upload [post]
func (h *FileHandler) Upload(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "解析 multipart 表单失败")
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		HandleServiceError(c, xerr.ErrNoFileUploaded)
		return
	}

	var folderID *string
	if v := c.PostForm("folder_id"); v != "" {
		folderID = &v
	}

	uploads := make([]explorer.FileUpload, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "读取上传文件失败")
			return
		}
		defer f.Close()
		uploads = append(uploads, explorer.FileUpload{
			Name:     fh.Filename,
			Size:     fh.Size,
			MimeType: fh.Header.Get("Content-Type"),
			Reader:   f,
		})
	}

	if len(uploads) == 1 {
		file, err := h.fileService.UploadFile(c.Request.Context(), userID, folderID, uploads[0])
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		xerr.Success(c, http.StatusCreated, "上传成功", gin.H{"file": file})
		return
	}

	files, err := h.fileService.UploadFiles(c.Request.Context(), userID, folderID, uploads)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusCreated, "上传成功", gin.H{"files": files})
}

// List 文件列表，支持按目录和类别过滤
// @Summary 文件列表
// @Tags files
// @Produce json
// @Param folder_id query string false "所在文件夹 ID，缺省为根目录"
// @Param category query string false "类别过滤：image/document/video/audio/archive"
// @Param page query int false "页码"
// @Param limit query int false "每页数量（1-100）"
// @Param sort_by query string false "排序字段：name/size/created_at/updated_at"
// @Param sort_order query string false "asc 或 desc"
// @Success 200 {object} xerr.Response
// @Security BearerAuth
// @Router /files [get]
func (h *FileHandler) List(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.fileService.ListFiles(
		c.Request.Context(),
		userID,
		optionalIDQuery(c, "folder_id"),
		c.Query("category"),
		parseListParams(c),
	)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "获取成功", result)
}

// Detail 单个文件的元数据
// @Summary 文件详情
// @Tags files
// @Produce json
// @Param id path string true "文件 ID"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response
// @Security BearerAuth
// @Router /files/{id} [get]
func (h *FileHandler) Detail(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	file, err := h.fileService.GetFile(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "获取成功", gin.H{"file": file})
}

// Download 下载文件。presigned=true 时返回预签名直连 URL，
// 否则经服务端流式转发文件内容。
// @Summary 下载文件
// @Tags files
// @Produce octet-stream
// @Param id path string true "文件 ID"
// @Param presigned query bool false "返回预签名 URL 而非文件内容"
// @Success 200
// @Failure 404 {object} xerr.Response
// @Security BearerAuth
// @Router /files/{id}/download [get]
func (h *FileHandler) Download(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}
	fileID := c.Param("id")

	if c.Query("presigned") == "true" {
		url, err := h.fileService.PresignDownloadURL(c.Request.Context(), userID, fileID)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		xerr.Success(c, http.StatusOK, "获取成功", gin.H{"url": url})
		return
	}

	file, object, err := h.fileService.Download(c.Request.Context(), userID, fileID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	defer object.Reader.Close()

	mimeType := object.MimeType
	if mimeType == "" {
		mimeType = file.MimeType
	}
	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, utils.SanitizeFileName(file.Name)),
	}
	c.DataFromReader(http.StatusOK, object.Size, mimeType, object.Reader, headers)
}

// Rename 重命名文件
// @Summary 重命名文件
// @Tags files
// @Accept json
// @Produce json
// @Param id path string true "文件 ID"
// @Param request body RenameFileRequest true "新名称"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response
// @Failure 409 {object} xerr.Response
// @Security BearerAuth
// @Router /files/{id} [patch]
func (h *FileHandler) Rename(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req RenameFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.ValidationFailedCode, err.Error())
		return
	}

	file, err := h.fileService.RenameFile(c.Request.Context(), userID, c.Param("id"), req.Name)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "重命名成功", gin.H{"file": file})
}

// Move 移动文件到另一个文件夹
// @Summary 移动文件
// @Tags files
// @Accept json
// @Produce json
// @Param id path string true "文件 ID"
// @Param request body MoveFileRequest true "目标文件夹，null 表示根目录"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response
// @Failure 409 {object} xerr.Response
// @Security BearerAuth
// @Router /files/{id}/move [patch]
func (h *FileHandler) Move(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req MoveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.ValidationFailedCode, err.Error())
		return
	}

	file, err := h.fileService.MoveFile(c.Request.Context(), userID, c.Param("id"), req.FolderID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "移动成功", gin.H{"file": file})
}

// Delete 删除文件：存储对象删除成功后才删除元数据
// @Summary 删除文件
// @Tags files
// @Produce json
// @Param id path string true "文件 ID"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response
// @Security BearerAuth
// @Router /files/{id} [delete]
func (h *FileHandler) Delete(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(c.Request.Context(), userID, c.Param("id")); err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "删除成功", gin.H{"deleted_id": c.Param("id")})
}

// Share 分享文件。占位接口，分享能力尚未实现。
// @Summary 分享文件
// @Tags files
// @Produce json
// @Param id path string true "文件 ID"
// @Failure 501 {object} xerr.Response
// @Security BearerAuth
// @Router /files/{id}/share [post]
func (h *FileHandler) Share(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	// 先确认文件存在且归属当前用户，再返回未实现
	if _, err := h.fileService.GetFile(c.Request.Context(), userID, c.Param("id")); err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Error(c, http.StatusNotImplemented, xerr.NotImplementedCode, "分享功能尚未上线")
}
