package ds

// Таблица глобальных коэффициентов ценообразования (одна активная запись)
// Заменяется только целиком, частичных обновлений нет
type Settings struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	IsActive bool `gorm:"type:boolean;default:true;not null" json:"is_active"`

	DiscountMultiplier float64 `gorm:"type:decimal(10,4);not null" json:"discount_multiplier"`  // D
	FreightRate        float64 `gorm:"type:decimal(12,2);not null" json:"freight_rate"`         // F, EUR за метр
	CustomsNumerator   float64 `gorm:"type:decimal(14,2);not null" json:"customs_numerator"`    // CN
	CustomsDenominator float64 `gorm:"type:decimal(14,2);not null" json:"customs_denominator"`  // CD
	WarrantyRate       float64 `gorm:"type:decimal(10,4);not null" json:"warranty_rate"`        // WR
	CommissionFactor   float64 `gorm:"type:decimal(10,4);not null" json:"commission_factor"`    // COM, делитель
	OfficeFactor       float64 `gorm:"type:decimal(10,4);not null" json:"office_factor"`        // OFF, делитель
	ProfitFactor       float64 `gorm:"type:decimal(10,4);not null" json:"profit_factor"`        // PF, делитель
}
