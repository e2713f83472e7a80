package handlers

import (
	"net/http"

	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
	"github.com/0xEcho/cloudfile/internal/services/admin"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService admin.AuthService
}

func NewAuthHandler(authService admin.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,max=64"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// Register 处理用户注册
// @Summary 用户注册
// @Description 注册新用户并发送验证邮件
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 201 {object} xerr.Response
// @Failure 400 {object} xerr.Response
// @Failure 409 {object} xerr.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.ValidationFailedCode, err.Error())
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	xerr.Success(c, http.StatusCreated, "注册成功，请查收验证邮件", gin.H{"user": user})
}

// VerifyEmail 处理邮箱验证链接
// @Summary 验证邮箱
// @Tags auth
// @Produce json
// @Param token path string true "验证 token"
// @Success 200 {object} xerr.Response
// @Failure 409 {object} xerr.Response
// @Router /auth/verify/{token} [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Param("token")
	if err := h.authService.VerifyEmail(token); err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "邮箱验证成功", nil)
}

// Login 处理用户登录
// @Summary 用户登录
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录凭据"
// @Success 200 {object} xerr.Response
// @Failure 401 {object} xerr.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.ValidationFailedCode, err.Error())
		return
	}

	token, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	xerr.Success(c, http.StatusOK, "登录成功", gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout 处理用户登出。JWT 无状态，服务端不保存会话，
// 客户端丢弃 token 即完成登出。
// @Summary 用户登出
// @Tags auth
// @Produce json
// @Success 200 {object} xerr.Response
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	xerr.Success(c, http.StatusOK, "登出成功", nil)
}

// ForgotPassword 发起密码重置
// @Summary 忘记密码
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "注册邮箱"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.ValidationFailedCode, err.Error())
		return
	}

	if err := h.authService.ForgotPassword(req.Email); err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "密码重置邮件已发送", nil)
}

// ResetPassword 用重置 token 设置新密码
// @Summary 重置密码
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "重置 token 和新密码"
// @Success 200 {object} xerr.Response
// @Failure 409 {object} xerr.Response
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.ValidationFailedCode, err.Error())
		return
	}

	if err := h.authService.ResetPassword(req.Token, req.Password); err != nil {
		HandleServiceError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "密码重置成功", nil)
}
