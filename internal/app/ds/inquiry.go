package ds

import "time"

// Статусы запроса цены
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Таблица запросов цен (журнал)
// Имена и цена снимаются в момент создания, чтобы последующие правки
// справочников не меняли историю. Частичный уникальный индекс по
// (user_id, device_id, project_id) со status='pending' создается миграцией
// и закрывает гонку двойного запроса.
type Inquiry struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	UserFullName string     `gorm:"type:varchar(100)" json:"user_full_name"`
	DeviceID     uint       `gorm:"not null;index" json:"device_id"`
	ModelName    string     `gorm:"type:varchar(100)" json:"model_name"`
	CategoryName string     `gorm:"type:varchar(100)" json:"category_name"`
	ProjectID    uint       `gorm:"not null;index" json:"project_id"`
	ProjectName  string     `gorm:"type:varchar(100)" json:"project_name"`
	SellPrice    float64    `gorm:"type:decimal(14,2);not null" json:"sell_price"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	RespondedAt  *time.Time `gorm:"default:null" json:"responded_at"` // дата решения администратора
}
