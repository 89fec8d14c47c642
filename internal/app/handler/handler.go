package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sasanhatam/Damonservice/internal/app/dto"
	"github.com/sasanhatam/Damonservice/internal/app/repository"
	"github.com/sasanhatam/Damonservice/internal/app/role"
	"github.com/sasanhatam/Damonservice/internal/app/storage"
)

// APIHandler содержит обработчики REST API поверх контракта хранилища
type APIHandler struct {
	Repository  repository.Repository
	MinIOClient *storage.MinIOClient
	AuthHandler *AuthHandler
}

func NewAPIHandler(r repository.Repository, minioClient *storage.MinIOClient, authHandler *AuthHandler) *APIHandler {
	return &APIHandler{
		Repository:  r,
		MinIOClient: minioClient,
		AuthHandler: authHandler,
	}
}

// Получение текущего пользователя из контекста (установлен middleware)
func (h *APIHandler) getUserFromContext(c *gin.Context) (uint, role.Role, error) {
	userID, exists := c.Get("userID")
	if !exists {
		logrus.Warn("userID not found in context")
		return 0, role.Employee, fmt.Errorf("user not authenticated")
	}

	userRole, _ := c.Get("userRole")
	r, _ := userRole.(role.Role)

	id, ok := userID.(uint)
	if !ok {
		logrus.Errorf("getUserFromContext: invalid userID type: %T", userID)
		return 0, r, fmt.Errorf("invalid user ID")
	}

	return id, r, nil
}

// ============ Вспомогательные функции ============

func (h *APIHandler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Status:  "fail",
		Message: message,
	})
}

func (h *APIHandler) successResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := dto.SuccessResponse{
		Status:  "success",
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(statusCode, response)
}

// Проверка доступа к проекту: сотрудник видит только свои проекты,
// администратор — любые. Отказ, а не молчаливая фильтрация
func (h *APIHandler) checkProjectAccess(c *gin.Context, projectID uint) bool {
	userID, userRole, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, 401, "Ошибка авторизации")
		return false
	}

	project, err := h.Repository.GetProjectByID(projectID)
	if err != nil {
		h.errorResponse(c, 404, "Проект не найден")
		return false
	}

	if userRole != role.Admin && project.UserID != userID {
		h.errorResponse(c, 403, "Нет доступа к чужому проекту")
		return false
	}
	return true
}
