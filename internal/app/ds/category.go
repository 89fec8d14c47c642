package ds

// Таблица категорий устройств
type Category struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	IsActive bool   `gorm:"type:boolean;default:true;not null" json:"is_active"`
}
