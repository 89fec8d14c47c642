package ds

import (
	"time"

	"github.com/sasanhatam/Damonservice/internal/app/role"
)

// Таблица сообщений чата проекта
// Роль автора снимается при создании: счетчик непрочитанного считается
// по сообщениям противоположной роли. Сообщения не редактируются и не удаляются
type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProjectID    uint      `gorm:"not null;index" json:"project_id"`
	UserID       uint      `gorm:"not null" json:"user_id"`
	UserFullName string    `gorm:"type:varchar(100)" json:"user_full_name"`
	Role         role.Role `gorm:"type:int;not null" json:"role"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	IsRead       bool      `gorm:"type:boolean;default:false;not null" json:"is_read"`
}
