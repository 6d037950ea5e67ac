package service

import "github.com/shopspring/decimal"

// DefaultCommissionRate is the platform cut when none is configured.
var DefaultCommissionRate = decimal.RequireFromString("0.10")

type CommissionCalculator interface {
	Calculate(amount decimal.Decimal) decimal.Decimal
	Rate() decimal.Decimal
}

type rateCommission struct {
	rate decimal.Decimal
}

// NewCommissionCalculator returns a calculator charging rate on every order.
// A negative rate or one above 1 falls back to DefaultCommissionRate.
func NewCommissionCalculator(rate decimal.Decimal) CommissionCalculator {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		rate = DefaultCommissionRate
	}
	return &rateCommission{rate: rate}
}

// Calculate rounds half away from zero to cents.
func (c *rateCommission) Calculate(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(c.rate).Round(2)
}

func (c *rateCommission) Rate() decimal.Decimal {
	return c.rate
}
