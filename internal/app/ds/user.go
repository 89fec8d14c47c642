package ds

import "github.com/sasanhatam/Damonservice/internal/app/role"

// Таблица пользователей
type User struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Login    string    `gorm:"type:varchar(50);unique;not null" json:"login"` // сверяется без учета регистра
	Password string    `gorm:"type:varchar(255);not null" json:"password"`    // bcrypt-хеш
	FullName string    `gorm:"type:varchar(100)" json:"full_name"`
	Role     role.Role `gorm:"type:int;default:0;not null" json:"role"`
	IsActive bool      `gorm:"type:boolean;default:true;not null" json:"is_active"`
}
