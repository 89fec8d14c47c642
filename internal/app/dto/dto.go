package dto

import (
	"time"

	"github.com/sasanhatam/Damonservice/internal/app/pricing"
)

// ============ Общие структуры ============

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ============ Аутентификация и пользователи ============

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Login    string `json:"login"`
	FullName string `json:"full_name"`
	Role     string `json:"role"` // admin | employee
	IsActive bool   `json:"is_active"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

type UpsertUserRequest struct {
	Login    string `json:"login" binding:"required,min=3,max=50"`
	Password string `json:"password"` // пустой при обновлении оставляет прежний
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=admin employee"`
	IsActive *bool  `json:"is_active" binding:"required"`
}

// ============ Категории ============

type CategoryResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
	Total      int                `json:"total"`
}

type UpsertCategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	IsActive *bool  `json:"is_active" binding:"required"`
}

// ============ Устройства ============

// Редуцированное представление для сотрудников: без закрытых полей
type SafeDeviceResponse struct {
	ID           uint   `json:"id"`
	ModelName    string `json:"model_name"`
	CategoryID   uint   `json:"category_id"`
	CategoryName string `json:"category_name"`
	ImageURL     string `json:"image_url"`
}

type SafeDeviceListResponse struct {
	Devices []SafeDeviceResponse `json:"devices"`
	Total   int                  `json:"total"`
}

// Полное представление для администратора
type DeviceResponse struct {
	ID           uint    `json:"id"`
	ModelName    string  `json:"model_name"`
	CategoryID   uint    `json:"category_id"`
	IsActive     bool    `json:"is_active"`
	ImageURL     string  `json:"image_url"`
	FactoryPrice float64 `json:"factory_price"`
	Length       float64 `json:"length"`
	Weight       float64 `json:"weight"`
}

type DeviceListResponse struct {
	Devices []DeviceResponse `json:"devices"`
	Total   int              `json:"total"`
}

type UpsertDeviceRequest struct {
	ModelName    string  `json:"model_name" binding:"required"`
	CategoryID   uint    `json:"category_id" binding:"required"`
	IsActive     *bool   `json:"is_active" binding:"required"`
	FactoryPrice float64 `json:"factory_price" binding:"required,gt=0"`
	Length       float64 `json:"length" binding:"gte=0"`
	Weight       float64 `json:"weight" binding:"gte=0"`
}

// ============ Коэффициенты ============

type SettingsResponse struct {
	DiscountMultiplier float64 `json:"discount_multiplier"`
	FreightRate        float64 `json:"freight_rate"`
	CustomsNumerator   float64 `json:"customs_numerator"`
	CustomsDenominator float64 `json:"customs_denominator"`
	WarrantyRate       float64 `json:"warranty_rate"`
	CommissionFactor   float64 `json:"commission_factor"`
	OfficeFactor       float64 `json:"office_factor"`
	ProfitFactor       float64 `json:"profit_factor"`
}

// Набор заменяется только целиком; делители обязаны быть строго положительными
type ReplaceSettingsRequest struct {
	DiscountMultiplier float64 `json:"discount_multiplier" binding:"required,gt=0"`
	FreightRate        float64 `json:"freight_rate" binding:"required,gt=0"`
	CustomsNumerator   float64 `json:"customs_numerator" binding:"required,gt=0"`
	CustomsDenominator float64 `json:"customs_denominator" binding:"required,gt=0"`
	WarrantyRate       float64 `json:"warranty_rate" binding:"required,gt=0"`
	CommissionFactor   float64 `json:"commission_factor" binding:"required,gt=0"`
	OfficeFactor       float64 `json:"office_factor" binding:"required,gt=0"`
	ProfitFactor       float64 `json:"profit_factor" binding:"required,gt=0"`
}

// ============ Проекты и чат ============

type CreateProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

type ProjectResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Total    int               `json:"total"`
}

type ProjectSummaryResponse struct {
	ProjectResponse
	UserFullName string    `json:"user_full_name"`
	UnreadCount  int       `json:"unread_count"`
	LastActivity time.Time `json:"last_activity"`
}

type AddCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentResponse struct {
	ID           uint      `json:"id"`
	ProjectID    uint      `json:"project_id"`
	UserID       uint      `json:"user_id"`
	UserFullName string    `json:"user_full_name"`
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	IsRead       bool      `json:"is_read"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

// ============ Запросы цен ============

type RequestPriceRequest struct {
	DeviceID  uint `json:"device_id" binding:"required"`
	ProjectID uint `json:"project_id" binding:"required"`
}

// Представление запроса для сотрудника: цена видна только после одобрения
type RequestStatusResponse struct {
	RequestID uint      `json:"request_id"`
	DeviceID  uint      `json:"device_id"`
	ProjectID uint      `json:"project_id"`
	Status    string    `json:"status"`
	SellPrice *float64  `json:"sell_price"` // null, пока запрос не одобрен
	CreatedAt time.Time `json:"created_at"`
}

// Полное представление для администратора со снимками имен
type InquiryResponse struct {
	ID           uint       `json:"id"`
	UserID       uint       `json:"user_id"`
	UserFullName string     `json:"user_full_name"`
	DeviceID     uint       `json:"device_id"`
	ModelName    string     `json:"model_name"`
	CategoryName string     `json:"category_name"`
	ProjectID    uint       `json:"project_id"`
	ProjectName  string     `json:"project_name"`
	SellPrice    float64    `json:"sell_price"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
}

type InquiryListResponse struct {
	Inquiries []InquiryResponse `json:"inquiries"`
	Total     int               `json:"total"`
}

type SetInquiryStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// Аудиторская раскладка расчета цены для администратора
type BreakdownResponse struct {
	DeviceID  uint              `json:"device_id"`
	ModelName string            `json:"model_name"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}
