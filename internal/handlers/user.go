package handlers

import (
	"net/http"

	"github.com/0xEcho/cloudfile/internal/pkg/utils"
	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
	"github.com/0xEcho/cloudfile/internal/services/admin"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService admin.UserService
}

func NewUserHandler(userService admin.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me 返回当前登录用户的信息
// @Summary 当前用户信息
// @Tags users
// @Produce json
// @Success 200 {object} xerr.Response
// @Failure 401 {object} xerr.Response
// @Security BearerAuth
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "获取成功", gin.H{"user": user})
}
