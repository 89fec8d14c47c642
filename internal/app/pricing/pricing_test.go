package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceCoefficients() Coefficients {
	return Coefficients{
		D:   0.38,
		F:   1000,
		CN:  350000,
		CD:  150000,
		WR:  0.05,
		COM: 0.95,
		OFF: 0.95,
		PF:  0.65,
	}
}

func TestCalculate_ReferenceVector(t *testing.T) {
	in := Inputs{FactoryPrice: 15000, Length: 2.5, Weight: 400}

	b, err := Calculate(in, referenceCoefficients())
	require.NoError(t, err)

	assert.InDelta(t, 5700, b.CompanyPrice, 1e-9)
	assert.InDelta(t, 2500, b.Shipment, 1e-9)
	assert.InDelta(t, 933.3333333, b.Custom, 1e-6)
	assert.InDelta(t, 285, b.Warranty, 1e-9)
	assert.InDelta(t, 9418.3333333, b.Subtotal, 1e-6)
	assert.InDelta(t, 9914.0350877, b.Commission, 1e-6)
	assert.InDelta(t, 10435.8264081, b.Office, 1e-6)
	assert.Equal(t, float64(16056), b.SellPrice)
}

func TestCalculate_Deterministic(t *testing.T) {
	in := Inputs{FactoryPrice: 45000, Length: 4.0, Weight: 2500}
	c := referenceCoefficients()

	b1, err := Calculate(in, c)
	require.NoError(t, err)
	b2, err := Calculate(in, c)
	require.NoError(t, err)

	assert.Equal(t, b1, b2)
}

func TestCalculate_CeilingLaw(t *testing.T) {
	// office/PF выходит целым: округление не должно добавлять единицу
	c := Coefficients{D: 1, F: 0, CN: 0, CD: 1, WR: 0, COM: 1, OFF: 1, PF: 0.5}
	b, err := Calculate(Inputs{FactoryPrice: 50, Length: 0, Weight: 0}, c)
	require.NoError(t, err)
	assert.Equal(t, float64(100), b.SellPrice)

	// дробный результат округляется строго вверх
	b, err = Calculate(Inputs{FactoryPrice: 50.1, Length: 0, Weight: 0}, c)
	require.NoError(t, err)
	assert.Equal(t, math.Floor(b.Office/c.PF)+1, b.SellPrice)
}

func TestCalculate_ZeroDivisors(t *testing.T) {
	in := Inputs{FactoryPrice: 1000, Length: 1, Weight: 1}

	for _, mutate := range []func(*Coefficients){
		func(c *Coefficients) { c.CD = 0 },
		func(c *Coefficients) { c.COM = 0 },
		func(c *Coefficients) { c.OFF = 0 },
		func(c *Coefficients) { c.PF = 0 },
	} {
		c := referenceCoefficients()
		mutate(&c)
		_, err := Calculate(in, c)
		assert.ErrorIs(t, err, ErrBadCoefficient)
	}
}
