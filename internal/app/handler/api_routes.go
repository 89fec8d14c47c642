package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/sasanhatam/Damonservice/internal/app/middleware"
	"github.com/sasanhatam/Damonservice/internal/app/role"
)

// RegisterAPIRoutes регистрирует все REST API маршруты с авторизацией
func (h *APIHandler) RegisterAPIRoutes(router *gin.Engine, authMiddleware *middleware.AuthMiddleware) {
	// REST API маршруты
	api := router.Group("/api")

	// ============ Устройства (Devices) ============
	devices := api.Group("/devices")
	{
		// Каталог для всех авторизованных, без закрытых полей
		devices.GET("", authMiddleware.WithAuthCheck(role.Employee, role.Admin), h.SearchDevices)
		devices.GET("/:id/image", authMiddleware.WithAuthCheck(role.Employee, role.Admin), h.GetDeviceImage)

		// Только для администраторов (закрытые поля и управление каталогом)
		devices.GET("/all", authMiddleware.WithAuthCheck(role.Admin), h.ListAllDevices)
		devices.POST("", authMiddleware.WithAuthCheck(role.Admin), h.CreateDevice)                   // POST создание
		devices.PUT("/:id", authMiddleware.WithAuthCheck(role.Admin), h.UpdateDevice)                // PUT изменение
		devices.DELETE("/:id", authMiddleware.WithAuthCheck(role.Admin), h.DeleteDevice)             // DELETE удаление
		devices.POST("/:id/image", authMiddleware.WithAuthCheck(role.Admin), h.UploadDeviceImage)    // POST изображение
		devices.GET("/:id/breakdown", authMiddleware.WithAuthCheck(role.Admin), h.GetDeviceBreakdown) // GET раскладка цены
	}

	// ============ Категории (Categories) ============
	categories := api.Group("/categories")
	{
		categories.GET("", authMiddleware.WithAuthCheck(role.Employee, role.Admin), h.ListActiveCategories)

		categories.GET("/all", authMiddleware.WithAuthCheck(role.Admin), h.ListAllCategories)
		categories.POST("", authMiddleware.WithAuthCheck(role.Admin), h.CreateCategory)
		categories.PUT("/:id", authMiddleware.WithAuthCheck(role.Admin), h.UpdateCategory)
		categories.DELETE("/:id", authMiddleware.WithAuthCheck(role.Admin), h.DeleteCategory)
	}

	// ============ Запросы цен (Inquiries) ============
	inquiries := api.Group("/inquiries")
	{
		inquiries.POST("", authMiddleware.WithAuthCheck(role.Employee, role.Admin), h.RequestPrice)
		inquiries.GET("/my", authMiddleware.WithAuthCheck(role.Employee, role.Admin), h.ListMyRequests)

		// Только для администраторов
		inquiries.GET("", authMiddleware.WithAuthCheck(role.Admin), h.ListAllInquiries)
		inquiries.PUT("/:id/status", authMiddleware.WithAuthCheck(role.Admin), h.SetInquiryStatus)
	}

	// ============ Проекты и чат (Projects) ============
	projects := api.Group("/projects")
	{
		projects.POST("", authMiddleware.WithAuthCheck(role.Employee, role.Admin), h.CreateProject)
		projects.GET("", authMiddleware.WithAuthCheck(role.Employee, role.Admin), h.ListMyProjects)
		projects.GET("/unread", authMiddleware.WithAuthCheck(role.Employee, role.Admin), h.GetUnreadCount)
		projects.GET("/:id/comments", authMiddleware.WithAuthCheck(role.Employee, role.Admin), h.ListComments)
		projects.POST("/:id/comments", authMiddleware.WithAuthCheck(role.Employee, role.Admin), h.AddComment)
		projects.POST("/:id/comments/read", authMiddleware.WithAuthCheck(role.Employee, role.Admin), h.MarkCommentsRead)

		// Сводки для панели администратора
		projects.GET("/summaries", authMiddleware.WithAuthCheck(role.Admin), h.ListProjectSummaries)
	}

	// ============ Коэффициенты (Settings) - только для администраторов ============
	settings := api.Group("/settings")
	settings.Use(authMiddleware.WithAuthCheck(role.Admin))
	{
		settings.GET("", h.GetSettings)
		settings.PUT("", h.ReplaceSettings)
	}

	// ============ Пользователи (Users) - только для администраторов ============
	users := api.Group("/users")
	users.Use(authMiddleware.WithAuthCheck(role.Admin))
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}

	// ============ Аутентификация ============
	auth := api.Group("/auth")
	{
		// Публичный эндпоинт
		auth.POST("/login", h.AuthHandler.LoginUser) // POST аутентификация JWT

		// Защищенные эндпоинты
		auth.GET("/profile", authMiddleware.WithAuthCheck(role.Employee, role.Admin), h.AuthHandler.GetUserProfile)
		auth.POST("/logout", authMiddleware.WithAuthCheck(role.Employee, role.Admin), h.AuthHandler.LogoutUser)
	}

	// Swagger документация
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Ping эндпоинт для проверки
	router.GET("/ping", h.Ping)
}

// Ping проверяет работоспособность API
// @Summary Проверка работоспособности
// @Description Возвращает простой ответ для проверки работы сервера
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *APIHandler) Ping(ctx *gin.Context) {
	ctx.JSON(200, gin.H{"message": "pong"})
}
