package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
	"github.com/sasanhatam/Damonservice/internal/app/dto"
)

// ============ ДОМЕН КОЭФФИЦИЕНТЫ ============

// GetSettings активный набор коэффициентов
// @Summary Текущие коэффициенты ценообразования
// @Description Возвращает активный набор из восьми коэффициентов (только для администраторов)
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SettingsResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/settings [get]
func (h *APIHandler) GetSettings(c *gin.Context) {
	settings, err := h.Repository.GetSettings()
	if err != nil {
		logrus.Error("Error getting settings: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Коэффициенты не настроены")
		return
	}

	c.JSON(http.StatusOK, dto.SettingsResponse{
		DiscountMultiplier: settings.DiscountMultiplier,
		FreightRate:        settings.FreightRate,
		CustomsNumerator:   settings.CustomsNumerator,
		CustomsDenominator: settings.CustomsDenominator,
		WarrantyRate:       settings.WarrantyRate,
		CommissionFactor:   settings.CommissionFactor,
		OfficeFactor:       settings.OfficeFactor,
		ProfitFactor:       settings.ProfitFactor,
	})
}

// ReplaceSettings замена набора коэффициентов целиком
// @Summary Замена коэффициентов ценообразования
// @Description Заменяет активный набор целиком; все восемь значений обязательны и строго положительны. Цены уже созданных запросов не пересчитываются
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ReplaceSettingsRequest true "Новый набор коэффициентов"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/settings [put]
func (h *APIHandler) ReplaceSettings(c *gin.Context) {
	var req dto.ReplaceSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	settings := ds.Settings{
		IsActive:           true,
		DiscountMultiplier: req.DiscountMultiplier,
		FreightRate:        req.FreightRate,
		CustomsNumerator:   req.CustomsNumerator,
		CustomsDenominator: req.CustomsDenominator,
		WarrantyRate:       req.WarrantyRate,
		CommissionFactor:   req.CommissionFactor,
		OfficeFactor:       req.OfficeFactor,
		ProfitFactor:       req.ProfitFactor,
	}
	if err := h.Repository.ReplaceSettings(&settings); err != nil {
		logrus.Error("Error replacing settings: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка сохранения коэффициентов")
		return
	}

	h.successResponse(c, http.StatusOK, "Коэффициенты успешно обновлены", nil)
}
