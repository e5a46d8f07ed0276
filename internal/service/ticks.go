package service

import (
	"github.com/shopspring/decimal"

	"github.com/efreitasn/limitbook/internal/domain"
)

// TickConverter translates between decimal price strings at the API
// boundary and the integer ticks the engine trades in.
type TickConverter struct {
	tick decimal.Decimal
}

// NewTickConverter creates a converter for the given tick size.
func NewTickConverter(tick decimal.Decimal) (TickConverter, error) {
	if tick.Sign() <= 0 {
		return TickConverter{}, &domain.ValidationError{Message: "tick size must be positive"}
	}
	return TickConverter{tick: tick}, nil
}

// ToTicks parses a decimal price string and converts it to ticks. The price
// must be a positive whole multiple of the tick size.
func (c TickConverter) ToTicks(price string) (domain.Price, error) {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return 0, &domain.ValidationError{Message: "price must be a decimal number"}
	}
	ticks := d.Div(c.tick)
	if !ticks.IsInteger() {
		return 0, &domain.ValidationError{Message: "price must be a multiple of the tick size"}
	}
	if ticks.Sign() <= 0 {
		return 0, domain.ErrInvalidPrice
	}
	return ticks.IntPart(), nil
}

// FromTicks renders a tick price as a decimal string.
func (c TickConverter) FromTicks(price domain.Price) string {
	return decimal.NewFromInt(price).Mul(c.tick).String()
}
