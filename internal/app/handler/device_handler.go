package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
	"github.com/sasanhatam/Damonservice/internal/app/dto"
	"github.com/sasanhatam/Damonservice/internal/app/pricing"
	"github.com/sasanhatam/Damonservice/internal/app/repository"
)

// ============ ДОМЕН УСТРОЙСТВА ============

// SearchDevices поиск по каталогу для сотрудников
// @Summary Поиск активных устройств
// @Description Возвращает редуцированный каталог: без закупочной цены, длины и веса
// @Tags Devices
// @Produce json
// @Security BearerAuth
// @Param query query string false "Поиск по названию модели"
// @Param category_id query int false "Фильтр по категории"
// @Success 200 {object} dto.SafeDeviceListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/devices [get]
func (h *APIHandler) SearchDevices(c *gin.Context) {
	searchQuery := c.Query("query")

	var categoryID uint
	if idStr := c.Query("category_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			h.errorResponse(c, http.StatusBadRequest, "Неверный ID категории")
			return
		}
		categoryID = uint(id)
	}

	devices, err := h.Repository.SearchActiveDevices(searchQuery, categoryID)
	if err != nil {
		logrus.Error("Error searching devices: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка поиска устройств")
		return
	}

	dtoDevices := make([]dto.SafeDeviceResponse, len(devices))
	for i, d := range devices {
		dtoDevices[i] = dto.SafeDeviceResponse{
			ID:           d.ID,
			ModelName:    d.ModelName,
			CategoryID:   d.CategoryID,
			CategoryName: d.CategoryName,
			ImageURL:     d.ImageURL,
		}
	}

	c.JSON(http.StatusOK, dto.SafeDeviceListResponse{
		Devices: dtoDevices,
		Total:   len(dtoDevices),
	})
}

// ListAllDevices полный каталог для администратора
// @Summary Список всех устройств с закрытыми полями
// @Description Возвращает каталог целиком, включая закупочную цену, длину и вес (только для администраторов)
// @Tags Devices
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DeviceListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/devices/all [get]
func (h *APIHandler) ListAllDevices(c *gin.Context) {
	devices, err := h.Repository.ListDevices()
	if err != nil {
		logrus.Error("Error listing devices: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения устройств")
		return
	}

	dtoDevices := make([]dto.DeviceResponse, len(devices))
	for i, d := range devices {
		dtoDevices[i] = deviceToDTO(d)
	}

	c.JSON(http.StatusOK, dto.DeviceListResponse{
		Devices: dtoDevices,
		Total:   len(dtoDevices),
	})
}

func deviceToDTO(d ds.Device) dto.DeviceResponse {
	imageURL := ""
	if d.ImageURL != nil {
		imageURL = *d.ImageURL
	}
	return dto.DeviceResponse{
		ID:           d.ID,
		ModelName:    d.ModelName,
		CategoryID:   d.CategoryID,
		IsActive:     d.IsActive,
		ImageURL:     imageURL,
		FactoryPrice: d.FactoryPrice,
		Length:       d.Length,
		Weight:       d.Weight,
	}
}

// CreateDevice создает устройство
// @Summary Создание устройства
// @Description Добавляет устройство в каталог (только для администраторов)
// @Tags Devices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpsertDeviceRequest true "Данные устройства"
// @Success 201 {object} dto.DeviceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/devices [post]
func (h *APIHandler) CreateDevice(c *gin.Context) {
	var req dto.UpsertDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	device := ds.Device{
		ModelName:    req.ModelName,
		CategoryID:   req.CategoryID,
		IsActive:     *req.IsActive,
		FactoryPrice: req.FactoryPrice,
		Length:       req.Length,
		Weight:       req.Weight,
	}
	if err := h.Repository.SaveDevice(&device); err != nil {
		logrus.Error("Error creating device: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка создания устройства")
		return
	}

	c.JSON(http.StatusCreated, deviceToDTO(device))
}

// UpdateDevice обновляет устройство
// @Summary Обновление устройства
// @Description Обновляет данные устройства целиком (только для администраторов)
// @Tags Devices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID устройства"
// @Param request body dto.UpsertDeviceRequest true "Данные для обновления"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/devices/{id} [put]
func (h *APIHandler) UpdateDevice(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID устройства")
		return
	}

	var req dto.UpsertDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	device, err := h.Repository.GetDeviceByID(uint(id))
	if err != nil {
		h.errorResponse(c, http.StatusNotFound, "Устройство не найдено")
		return
	}

	device.ModelName = req.ModelName
	device.CategoryID = req.CategoryID
	device.IsActive = *req.IsActive
	device.FactoryPrice = req.FactoryPrice
	device.Length = req.Length
	device.Weight = req.Weight

	if err := h.Repository.SaveDevice(device); err != nil {
		logrus.Error("Error updating device: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка обновления устройства")
		return
	}

	h.successResponse(c, http.StatusOK, "Устройство успешно обновлено", nil)
}

// DeleteDevice удаляет устройство
// @Summary Удаление устройства
// @Description Удаляет устройство из каталога; история запросов хранит снимки и не меняется (только для администраторов)
// @Tags Devices
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID устройства"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/devices/{id} [delete]
func (h *APIHandler) DeleteDevice(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID устройства")
		return
	}

	// Сначала убираем изображение из MinIO, если было
	device, _ := h.Repository.GetDeviceByID(uint(id))
	if device != nil && device.ImageURL != nil && *device.ImageURL != "" && h.MinIOClient != nil {
		if err := h.MinIOClient.DeleteFile(*device.ImageURL); err != nil {
			logrus.Warnf("Failed to delete image from MinIO: %v", err)
		}
	}

	if err := h.Repository.DeleteDevice(uint(id)); err != nil {
		logrus.Error("Error deleting device: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка удаления устройства")
		return
	}

	h.successResponse(c, http.StatusOK, "Устройство успешно удалено", nil)
}

// UploadDeviceImage загружает фото устройства
// @Summary Загрузка фото устройства
// @Description Загружает фото устройства в MinIO (только для администраторов)
// @Tags Devices
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID устройства"
// @Param image formData file true "Файл изображения"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/devices/{id}/image [post]
func (h *APIHandler) UploadDeviceImage(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID устройства")
		return
	}

	device, err := h.Repository.GetDeviceByID(uint(id))
	if err != nil {
		h.errorResponse(c, http.StatusNotFound, "Устройство не найдено")
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Файл не найден в запросе")
		return
	}

	openedFile, err := file.Open()
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка чтения файла")
		return
	}
	defer openedFile.Close()

	fileData, err := io.ReadAll(openedFile)
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка чтения файла")
		return
	}

	if h.MinIOClient == nil {
		h.errorResponse(c, http.StatusInternalServerError, "Файловое хранилище не настроено")
		return
	}

	// Удаляем старое изображение, если было
	if device.ImageURL != nil && *device.ImageURL != "" {
		if err := h.MinIOClient.DeleteFile(*device.ImageURL); err != nil {
			logrus.Warnf("Failed to delete old image %s: %v", *device.ImageURL, err)
		}
	}

	imageURL, err := h.MinIOClient.UploadFile(fileData, file.Filename)
	if err != nil {
		logrus.Error("Error uploading to MinIO: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка загрузки изображения")
		return
	}

	if err := h.Repository.UpdateDeviceImage(uint(id), imageURL); err != nil {
		logrus.Error("Error updating device image: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка обновления изображения")
		return
	}

	h.successResponse(c, http.StatusOK, "Изображение успешно загружено", gin.H{
		"image_url": imageURL,
	})
}

// GetDeviceImage временная ссылка на фото устройства
// @Summary Ссылка на фото устройства
// @Description Перенаправляет на временный presigned URL в MinIO
// @Tags Devices
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID устройства"
// @Success 307
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/devices/{id}/image [get]
func (h *APIHandler) GetDeviceImage(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID устройства")
		return
	}

	device, err := h.Repository.GetDeviceByID(uint(id))
	if err != nil || device.ImageURL == nil || *device.ImageURL == "" {
		h.errorResponse(c, http.StatusNotFound, "Изображение не найдено")
		return
	}

	if h.MinIOClient == nil {
		h.errorResponse(c, http.StatusInternalServerError, "Файловое хранилище не настроено")
		return
	}

	url, err := h.MinIOClient.GetFileURL(*device.ImageURL)
	if err != nil {
		logrus.Error("Error generating image URL: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения изображения")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GetDeviceBreakdown аудиторская раскладка расчета цены
// @Summary Раскладка расчета цены устройства
// @Description Возвращает все восемь шагов расчета с исходными данными и коэффициентами (только для администраторов)
// @Tags Devices
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID устройства"
// @Success 200 {object} dto.BreakdownResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/devices/{id}/breakdown [get]
func (h *APIHandler) GetDeviceBreakdown(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID устройства")
		return
	}

	device, err := h.Repository.GetDeviceByID(uint(id))
	if err != nil {
		h.errorResponse(c, http.StatusNotFound, "Устройство не найдено")
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
		// нулевой делитель — ошибка конфигурации, не подменяем значения
		logrus.Error("Error calculating breakdown: ", err)
		h.errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, dto.BreakdownResponse{
		DeviceID:  device.ID,
		ModelName: device.ModelName,
		Breakdown: *breakdown,
	})
}

// Имя категории с деградацией до заглушки при висячей ссылке
func (h *APIHandler) categoryNameOrUnknown(categoryID uint) string {
	categories, err := h.Repository.ListCategories()
	if err != nil {
		return "Unknown"
	}
	for _, cat := range categories {
		if cat.ID == categoryID {
			return cat.Name
		}
	}
	return "Unknown"
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
