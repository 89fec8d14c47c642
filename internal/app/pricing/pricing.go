package pricing

import (
	"errors"
	"math"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
)

// Нулевой делитель в коэффициентах — ошибка конфигурации, расчет прерывается
var ErrBadCoefficient = errors.New("нулевой делитель в коэффициентах ценообразования")

// Исходные данные устройства для расчета
type Inputs struct {
	FactoryPrice float64 `json:"factory_price"` // P
	Length       float64 `json:"length"`        // L
	Weight       float64 `json:"weight"`        // W
}

// Набор коэффициентов формулы
type Coefficients struct {
	D   float64 `json:"d"`   // скидка от прайс-листа
	F   float64 `json:"f"`   // фрахт за метр
	CN  float64 `json:"cn"`  // таможня, числитель
	CD  float64 `json:"cd"`  // таможня, знаменатель
	WR  float64 `json:"wr"`  // гарантийная ставка
	COM float64 `json:"com"` // внутренняя комиссия, делитель
	OFF float64 `json:"off"` // офисные расходы, делитель
	PF  float64 `json:"pf"`  // фактор прибыли, делитель
}

// Breakdown — все восемь шагов расчета по порядку плюс исходные данные.
// Сотруднику показывается только SellPrice, полная раскладка — администратору
type Breakdown struct {
	Inputs Inputs       `json:"inputs"`
	Params Coefficients `json:"params"`

	CompanyPrice float64 `json:"company_price"` // 1. P * D
	Shipment     float64 `json:"shipment"`      // 2. L * F
	Custom       float64 `json:"custom"`        // 3. W * (CN / CD)
	Warranty     float64 `json:"warranty"`      // 4. CompanyPrice * WR
	Subtotal     float64 `json:"subtotal"`      // 5. сумма шагов 1-4
	Commission   float64 `json:"commission"`    // 6. Subtotal / COM
	Office       float64 `json:"office"`        // 7. Commission / OFF
	SellPrice    float64 `json:"sell_price"`    // 8. ceil(Office / PF)
}

// FromSettings снимает коэффициенты из активной записи настроек
func FromSettings(s *ds.Settings) Coefficients {
	return Coefficients{
		D:   s.DiscountMultiplier,
		F:   s.FreightRate,
		CN:  s.CustomsNumerator,
		CD:  s.CustomsDenominator,
		WR:  s.WarrantyRate,
		COM: s.CommissionFactor,
		OFF: s.OfficeFactor,
		PF:  s.ProfitFactor,
	}
}

// Calculate выполняет фиксированный восьмишаговый расчет продажной цены.
// Чистая функция без побочных эффектов: одинаковые входы дают одинаковый
// результат. Округление вверх только на последнем шаге — цены в целых EUR
func Calculate(in Inputs, c Coefficients) (*Breakdown, error) {
	if c.CD == 0 || c.COM == 0 || c.OFF == 0 || c.PF == 0 {
		return nil, ErrBadCoefficient
	}

	b := &Breakdown{Inputs: in, Params: c}

	b.CompanyPrice = in.FactoryPrice * c.D
	b.Shipment = in.Length * c.F
	b.Custom = in.Weight * (c.CN / c.CD)
	b.Warranty = b.CompanyPrice * c.WR
	b.Subtotal = b.CompanyPrice + b.Shipment + b.Custom + b.Warranty
	b.Commission = b.Subtotal / c.COM
	b.Office = b.Commission / c.OFF
	b.SellPrice = math.Ceil(b.Office / c.PF)

	return b, nil
}
