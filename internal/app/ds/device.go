package ds

// Таблица устройств (каталог)
// FactoryPrice, Length и Weight — закрытые поля, сотрудникам не отдаются
type Device struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	ModelName  string  `gorm:"type:varchar(100);not null" json:"model_name"`
	CategoryID uint    `gorm:"not null;index" json:"category_id"`
	IsActive   bool    `gorm:"type:boolean;default:true;not null" json:"is_active"`
	ImageURL   *string `gorm:"type:varchar(255)" json:"image_url"` // Nullable

	FactoryPrice float64 `gorm:"type:decimal(12,2);not null" json:"factory_price"` // закупочная цена, EUR
	Length       float64 `gorm:"type:decimal(8,2);not null" json:"length"`         // метры
	Weight       float64 `gorm:"type:decimal(10,2);not null" json:"weight"`        // килограммы
}
