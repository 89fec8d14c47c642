package ds

import "time"

// Таблица проектов (группировка запросов сотрудника)
// Операции удаления нет
type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
