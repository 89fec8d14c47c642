package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
	"github.com/sasanhatam/Damonservice/internal/app/dto"
	"github.com/sasanhatam/Damonservice/internal/app/pricing"
	"github.com/sasanhatam/Damonservice/internal/app/role"
)

// ============ ДОМЕН ЗАПРОСЫ ЦЕН ============

// RequestPrice создает запрос цены устройства
// @Summary Запрос цены устройства в рамках проекта
// @Description Считает продажную цену по активным коэффициентам и создает pending-запрос. Цена сотруднику не возвращается до одобрения. Повторный запрос той же тройки возвращает существующий pending
// @Tags Inquiries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RequestPriceRequest true "Устройство и проект"
// @Success 201 {object} dto.RequestStatusResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/inquiries [post]
func (h *APIHandler) RequestPrice(c *gin.Context) {
	var req dto.RequestPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	userID, userRole, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	user, err := h.Repository.GetUserByID(userID)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Пользователь не найден")
		return
	}

	device, err := h.Repository.GetDeviceByID(req.DeviceID)
	if err != nil || !device.IsActive {
		h.errorResponse(c, http.StatusNotFound, "Устройство не найдено")
		return
	}

	project, err := h.Repository.GetProjectByID(req.ProjectID)
	if err != nil {
		h.errorResponse(c, http.StatusNotFound, "Проект не найден")
		return
	}
	if userRole != role.Admin && project.UserID != userID {
		h.errorResponse(c, http.StatusForbidden, "Нет доступа к чужому проекту")
		return
	}

	settings, err := h.Repository.GetSettings()
	if err != nil {
		logrus.Error("Error getting settings: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Коэффициенты не настроены")
		return
	}

	breakdown, err := pricing.Calculate(pricing.Inputs{
		FactoryPrice: device.FactoryPrice,
		Length:       device.Length,
		Weight:       device.Weight,
	}, pricing.FromSettings(settings))
	if err != nil {
		logrus.Error("Error calculating price: ", err)
		h.errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	inquiry := &ds.Inquiry{
		UserID:       userID,
		UserFullName: user.FullName,
		DeviceID:     device.ID,
		ModelName:    device.ModelName,
		CategoryName: h.categoryNameOrUnknown(device.CategoryID),
		ProjectID:    project.ID,
		ProjectName:  project.Name,
		SellPrice:    breakdown.SellPrice,
		Status:       ds.StatusPending,
	}

	saved, err := h.Repository.CreateInquiry(inquiry)
	if err != nil {
		logrus.Error("Error creating inquiry: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка создания запроса")
		return
	}

	c.JSON(http.StatusCreated, inquiryToStatusDTO(*saved))
}

// Цена подставляется в ответ только для одобренных запросов
func inquiryToStatusDTO(inq ds.Inquiry) dto.RequestStatusResponse {
	resp := dto.RequestStatusResponse{
		RequestID: inq.ID,
		DeviceID:  inq.DeviceID,
		ProjectID: inq.ProjectID,
		Status:    inq.Status,
		CreatedAt: inq.CreatedAt,
	}
	if inq.Status == ds.StatusApproved {
		price := inq.SellPrice
		resp.SellPrice = &price
	}
	return resp
}

// ListMyRequests запросы текущего сотрудника
// @Summary Список запросов текущего пользователя
// @Description Возвращает запросы сотрудника по всем проектам; цена видна только у одобренных
// @Tags Inquiries
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.RequestStatusResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/inquiries/my [get]
func (h *APIHandler) ListMyRequests(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	inquiries, err := h.Repository.ListUserInquiries(userID)
	if err != nil {
		logrus.Error("Error listing inquiries: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения запросов")
		return
	}

	resp := make([]dto.RequestStatusResponse, len(inquiries))
	for i, inq := range inquiries {
		resp[i] = inquiryToStatusDTO(inq)
	}
	c.JSON(http.StatusOK, resp)
}

// ListAllInquiries все запросы со снимками и ценами
// @Summary Список всех запросов
// @Description Возвращает полный журнал запросов с вычисленными ценами (только для администраторов)
// @Tags Inquiries
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.InquiryListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/inquiries [get]
func (h *APIHandler) ListAllInquiries(c *gin.Context) {
	inquiries, err := h.Repository.ListInquiries()
	if err != nil {
		logrus.Error("Error listing inquiries: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения запросов")
		return
	}

	resp := make([]dto.InquiryResponse, len(inquiries))
	for i, inq := range inquiries {
		resp[i] = dto.InquiryResponse{
			ID:           inq.ID,
			UserID:       inq.UserID,
			UserFullName: inq.UserFullName,
			DeviceID:     inq.DeviceID,
			ModelName:    inq.ModelName,
			CategoryName: inq.CategoryName,
			ProjectID:    inq.ProjectID,
			ProjectName:  inq.ProjectName,
			SellPrice:    inq.SellPrice,
			Status:       inq.Status,
			CreatedAt:    inq.CreatedAt,
			RespondedAt:  inq.RespondedAt,
		}
	}
	c.JSON(http.StatusOK, dto.InquiryListResponse{
		Inquiries: resp,
		Total:     len(resp),
	})
}

// SetInquiryStatus решение администратора по запросу
// @Summary Одобрение или отклонение запроса
// @Description Переводит pending-запрос в approved или rejected. Уже решенный запрос не меняется
// @Tags Inquiries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID запроса"
// @Param request body dto.SetInquiryStatusRequest true "Новый статус"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/inquiries/{id}/status [put]
func (h *APIHandler) SetInquiryStatus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID запроса")
		return
	}

	var req dto.SetInquiryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	if err := h.Repository.SetInquiryStatus(uint(id), req.Status); err != nil {
		logrus.Error("Error setting inquiry status: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка обновления запроса")
		return
	}

	h.successResponse(c, http.StatusOK, "Статус запроса обновлен", nil)
}
