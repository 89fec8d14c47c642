package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
	"github.com/sasanhatam/Damonservice/internal/app/dto"
	"github.com/sasanhatam/Damonservice/internal/app/repository"
	"github.com/sasanhatam/Damonservice/internal/app/role"
)

// ============ ДОМЕН ПОЛЬЗОВАТЕЛИ ============

func userToDTO(u ds.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.ID,
		Login:    u.Login,
		FullName: u.FullName,
		Role:     u.Role.String(),
		IsActive: u.IsActive,
	}
}

// ListUsers список всех учетных записей
// @Summary Список пользователей
// @Description Возвращает все учетные записи без хешей паролей (только для администраторов)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/users [get]
func (h *APIHandler) ListUsers(c *gin.Context) {
	users, err := h.Repository.ListUsers()
	if err != nil {
		logrus.Error("Error listing users: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения пользователей")
		return
	}

	dtoUsers := make([]dto.UserResponse, len(users))
	for i, u := range users {
		dtoUsers[i] = userToDTO(u)
	}

	c.JSON(http.StatusOK, dto.UserListResponse{
		Users: dtoUsers,
		Total: len(dtoUsers),
	})
}

// CreateUser создает учетную запись
// @Summary Создание пользователя
// @Description Создает учетную запись с выбранной ролью (только для администраторов)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpsertUserRequest true "Данные пользователя"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/users [post]
func (h *APIHandler) CreateUser(c *gin.Context) {
	var req dto.UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}
	if req.Password == "" {
		h.errorResponse(c, http.StatusBadRequest, "Пароль обязателен при создании")
		return
	}

	if existing, err := h.Repository.GetUserByLogin(req.Login); err == nil && existing != nil {
		h.errorResponse(c, http.StatusConflict, "Логин уже занят")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.Error("Error hashing password: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка создания пользователя")
		return
	}

	user := ds.User{
		Login:    strings.TrimSpace(req.Login),
		Password: string(hashed),
		FullName: req.FullName,
		Role:     role.FromString(req.Role),
		IsActive: *req.IsActive,
	}
	if err := h.Repository.SaveUser(&user); err != nil {
		if errors.Is(err, repository.ErrLoginTaken) {
			h.errorResponse(c, http.StatusConflict, "Логин уже занят")
			return
		}
		logrus.Error("Error creating user: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка создания пользователя")
		return
	}

	c.JSON(http.StatusCreated, userToDTO(user))
}

// UpdateUser обновляет учетную запись
// @Summary Обновление пользователя
// @Description Обновляет учетную запись; пустой пароль в теле оставляет прежний хеш (только для администраторов)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Param request body dto.UpsertUserRequest true "Данные для обновления"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/users/{id} [put]
func (h *APIHandler) UpdateUser(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID пользователя")
		return
	}

	var req dto.UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	user, err := h.Repository.GetUserByID(uint(id))
	if err != nil {
		h.errorResponse(c, http.StatusNotFound, "Пользователь не найден")
		return
	}

	user.Login = strings.TrimSpace(req.Login)
	user.FullName = req.FullName
	user.Role = role.FromString(req.Role)
	user.IsActive = *req.IsActive
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			logrus.Error("Error hashing password: ", err)
			h.errorResponse(c, http.StatusInternalServerError, "Ошибка обновления пользователя")
			return
		}
		user.Password = string(hashed)
	}

	if err := h.Repository.SaveUser(user); err != nil {
		switch {
		case errors.Is(err, repository.ErrLastAdmin):
			h.errorResponse(c, http.StatusConflict, err.Error())
		case errors.Is(err, repository.ErrLoginTaken):
			h.errorResponse(c, http.StatusConflict, "Логин уже занят")
		default:
			logrus.Error("Error updating user: ", err)
			h.errorResponse(c, http.StatusInternalServerError, "Ошибка обновления пользователя")
		}
		return
	}

	h.successResponse(c, http.StatusOK, "Пользователь успешно обновлен", nil)
}

// DeleteUser удаляет учетную запись
// @Summary Удаление пользователя
// @Description Удаляет учетную запись; последний активный администратор защищен от удаления
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/users/{id} [delete]
func (h *APIHandler) DeleteUser(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID пользователя")
		return
	}

	if err := h.Repository.DeleteUser(uint(id)); err != nil {
		switch {
		case errors.Is(err, repository.ErrLastAdmin):
			h.errorResponse(c, http.StatusConflict, err.Error())
		case isNotFound(err):
			h.errorResponse(c, http.StatusNotFound, "Пользователь не найден")
		default:
			logrus.Error("Error deleting user: ", err)
			h.errorResponse(c, http.StatusInternalServerError, "Ошибка удаления пользователя")
		}
		return
	}

	h.successResponse(c, http.StatusOK, "Пользователь успешно удален", nil)
}
