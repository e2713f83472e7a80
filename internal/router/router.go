package router

import (
	"net/http"

	"github.com/0xEcho/cloudfile/internal/config"
	"github.com/0xEcho/cloudfile/internal/handlers"
	"github.com/0xEcho/cloudfile/internal/middlewares"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/0xEcho/cloudfile/docs" // swagger 文档
)

// SetupRouter 组装所有路由
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	folderHandler *handlers.FolderHandler,
	fileHandler *handlers.FileHandler,
) *gin.Engine {
	r := gin.Default()

	// multipart 内存缓冲上限，超过部分落盘
	r.MaxMultipartMemory = 32 << 20

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.GET("/verify/:token", authHandler.VerifyEmail)
			auth.POST("/login", authHandler.Login)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
		}

		authed := api.Group("")
		authed.Use(middlewares.AuthMiddleware(&cfg.JWT))
		{
			authed.POST("/auth/logout", authHandler.Logout)
			authed.GET("/users/me", userHandler.Me)

			folders := authed.Group("/folders")
			{
				folders.POST("", folderHandler.Create)
				folders.GET("", folderHandler.List)
				folders.GET("/:id", folderHandler.Detail)
				folders.GET("/:id/breadcrumbs", folderHandler.Breadcrumbs)
				folders.PATCH("/:id", folderHandler.Rename)
				folders.PATCH("/:id/move", folderHandler.Move)
				folders.DELETE("/:id", folderHandler.Delete)
			}

			files := authed.Group("/files")
			{
				files.POST("/upload", fileHandler.Upload)
				files.GET("", fileHandler.List)
				files.GET("/:id", fileHandler.Detail)
				files.GET("/:id/download", fileHandler.Download)
				files.PATCH("/:id", fileHandler.Rename)
				files.PATCH("/:id/move", fileHandler.Move)
				files.DELETE("/:id", fileHandler.Delete)
				files.POST("/:id/share", fileHandler.Share)
			}
		}
	}

	return r
}
