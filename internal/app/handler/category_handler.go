package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
	"github.com/sasanhatam/Damonservice/internal/app/dto"
)

// ============ ДОМЕН КАТЕГОРИИ ============

// ListActiveCategories активные категории для фильтра каталога
// @Summary Список активных категорий
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CategoryListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/categories [get]
func (h *APIHandler) ListActiveCategories(c *gin.Context) {
	categories, err := h.Repository.ListActiveCategories()
	if err != nil {
		logrus.Error("Error listing categories: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения категорий")
		return
	}
	h.writeCategoryList(c, categories)
}

// ListAllCategories все категории, включая скрытые
// @Summary Список всех категорий
// @Description Возвращает все категории, включая неактивные (только для администраторов)
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CategoryListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/categories/all [get]
func (h *APIHandler) ListAllCategories(c *gin.Context) {
	categories, err := h.Repository.ListCategories()
	if err != nil {
		logrus.Error("Error listing categories: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения категорий")
		return
	}
	h.writeCategoryList(c, categories)
}

func (h *APIHandler) writeCategoryList(c *gin.Context, categories []ds.Category) {
	dtoCategories := make([]dto.CategoryResponse, len(categories))
	for i, cat := range categories {
		dtoCategories[i] = dto.CategoryResponse{
			ID:       cat.ID,
			Name:     cat.Name,
			IsActive: cat.IsActive,
		}
	}
	c.JSON(http.StatusOK, dto.CategoryListResponse{
		Categories: dtoCategories,
		Total:      len(dtoCategories),
	})
}

// CreateCategory создает категорию
// @Summary Создание категории
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpsertCategoryRequest true "Данные категории"
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/categories [post]
func (h *APIHandler) CreateCategory(c *gin.Context) {
	var req dto.UpsertCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	category := ds.Category{
		Name:     req.Name,
		IsActive: *req.IsActive,
	}
	if err := h.Repository.SaveCategory(&category); err != nil {
		logrus.Error("Error creating category: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка создания категории")
		return
	}

	c.JSON(http.StatusCreated, dto.CategoryResponse{
		ID:       category.ID,
		Name:     category.Name,
		IsActive: category.IsActive,
	})
}

// UpdateCategory обновляет категорию
// @Summary Обновление категории
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID категории"
// @Param request body dto.UpsertCategoryRequest true "Данные для обновления"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/categories/{id} [put]
func (h *APIHandler) UpdateCategory(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID категории")
		return
	}

	var req dto.UpsertCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	categories, err := h.Repository.ListCategories()
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения категорий")
		return
	}

	var target *ds.Category
	for i := range categories {
		if categories[i].ID == uint(id) {
			target = &categories[i]
			break
		}
	}
	if target == nil {
		h.errorResponse(c, http.StatusNotFound, "Категория не найдена")
		return
	}

	target.Name = req.Name
	target.IsActive = *req.IsActive
	if err := h.Repository.SaveCategory(target); err != nil {
		logrus.Error("Error updating category: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка обновления категории")
		return
	}

	h.successResponse(c, http.StatusOK, "Категория успешно обновлена", nil)
}

// DeleteCategory удаляет категорию
// @Summary Удаление категории
// @Description Удаляет категорию; устройства с висячей ссылкой остаются и показываются с категорией Unknown
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID категории"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/categories/{id} [delete]
func (h *APIHandler) DeleteCategory(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID категории")
		return
	}

	if err := h.Repository.DeleteCategory(uint(id)); err != nil {
		logrus.Error("Error deleting category: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка удаления категории")
		return
	}

	h.successResponse(c, http.StatusOK, "Категория успешно удалена", nil)
}
