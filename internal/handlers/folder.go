package handlers

import (
	"net/http"

	"github.com/0xEcho/cloudfile/internal/pkg/utils"
	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
	"github.com/0xEcho/cloudfile/internal/services/explorer"
	"github.com/gin-gonic/gin"
)

type FolderHandler struct {
	folderService explorer.FolderService
}

func NewFolderHandler(folderService explorer.FolderService) *FolderHandler {
	return &FolderHandler{folderService: folderService}
}

type CreateFolderRequest struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parent_id"`
}

type RenameFolderRequest struct {
	Name string `json:"name" binding:"required"`
}

type MoveFolderRequest struct {
	// 为 nil 表示移动到根目录
	ParentID *string `json:"parent_id"`
}

// Create 创建文件夹
// @Summary 创建文件夹
// @Tags folders
// @Accept json
// @Produce json
// @Param request body CreateFolderRequest true "文件夹名称和父目录"
// @Success 201 {object} xerr.Response
// @Failure 400 {object} xerr.Response
// @Failure 409 {object} xerr.Response
// @Security BearerAuth
// @Router /folders [post]
func (h *FolderHandler) Create(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.ValidationFailedCode, err.Error())
		return
	}

	folder, err := h.folderService.CreateFolder(c.Request.Context(), userID, req.Name, req.ParentID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusCreated, "文件夹创建成功", gin.H{"folder": folder})
}

// List 列出某一父目录下的文件夹；hierarchy=true 时返回整棵目录树
// @Summary 文件夹列表
// @Tags folders
// @Produce json
// @Param parent_id query string false "父目录 ID，缺省为根目录"
// @Param include_hierarchy query bool false "返回整棵目录树"
// @Param page query int false "页码"
// @Param limit query int false "每页数量（1-100）"
// @Param sort_by query string false "排序字段：name/created_at/updated_at"
// @Param sort_order query string false "asc 或 desc"
// @Success 200 {object} xerr.Response
// @Security BearerAuth
// @Router /folders [get]
func (h *FolderHandler) List(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if c.Query("include_hierarchy") == "true" {
		tree, err := h.folderService.GetHierarchy(c.Request.Context(), userID)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		xerr.Success(c, http.StatusOK, "获取成功", gin.H{"hierarchy": tree})
		return
	}

	result, err := h.folderService.ListFolders(c.Request.Context(), userID, optionalIDQuery(c, "parent_id"), parseListParams(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "获取成功", result)
}

// Detail 文件夹详情：面包屑、子目录和当前页文件
// @Summary 文件夹详情
// @Tags folders
// @Produce json
// @Param id path string true "文件夹 ID"
// @Param file_type query string false "文件类别过滤：image/document/video/audio/archive"
// @Param page query int false "文件分页页码"
// @Param limit query int false "每页文件数（1-100）"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response
// @Security BearerAuth
// @Router /folders/{id} [get]
func (h *FolderHandler) Detail(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	detail, err := h.folderService.GetFolderDetail(c.Request.Context(), userID, c.Param("id"), c.Query("file_type"), parseListParams(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "获取成功", detail)
}

// Breadcrumbs 从根到当前文件夹的路径
// @Summary 文件夹面包屑
// @Tags folders
// @Produce json
// @Param id path string true "文件夹 ID"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response
// @Security BearerAuth
// @Router /folders/{id}/breadcrumbs [get]
func (h *FolderHandler) Breadcrumbs(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	crumbs, err := h.folderService.GetBreadcrumbs(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "获取成功", gin.H{"breadcrumbs": crumbs})
}

// Rename 重命名文件夹
// @Summary 重命名文件夹
// @Tags folders
// @Accept json
// @Produce json
// @Param id path string true "文件夹 ID"
// @Param request body RenameFolderRequest true "新名称"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response
// @Failure 409 {object} xerr.Response
// @Security BearerAuth
// @Router /folders/{id} [patch]
func (h *FolderHandler) Rename(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req RenameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.ValidationFailedCode, err.Error())
		return
	}

	folder, err := h.folderService.RenameFolder(c.Request.Context(), userID, c.Param("id"), req.Name)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "重命名成功", gin.H{"folder": folder})
}

// Move 移动文件夹
// @Summary 移动文件夹
// @Tags folders
// @Accept json
// @Produce json
// @Param id path string true "文件夹 ID"
// @Param request body MoveFolderRequest true "目标父目录，null 表示根目录"
// @Success 200 {object} xerr.Response
// @Failure 400 {object} xerr.Response
// @Failure 409 {object} xerr.Response
// @Security BearerAuth
// @Router /folders/{id}/move [patch]
func (h *FolderHandler) Move(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req MoveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.ValidationFailedCode, err.Error())
		return
	}

	result, err := h.folderService.MoveFolder(c.Request.Context(), userID, c.Param("id"), req.ParentID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "移动成功", result)
}

// Delete 删除文件夹，force=true 时级联删除整棵子树
// @Summary 删除文件夹
// @Tags folders
// @Produce json
// @Param id path string true "文件夹 ID"
// @Param force query bool false "非空时是否级联删除"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response
// @Failure 409 {object} xerr.Response
// @Security BearerAuth
// @Router /folders/{id} [delete]
func (h *FolderHandler) Delete(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	force := c.Query("force") == "true"
	result, err := h.folderService.DeleteFolder(c.Request.Context(), userID, c.Param("id"), force)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "删除成功", result)
}
