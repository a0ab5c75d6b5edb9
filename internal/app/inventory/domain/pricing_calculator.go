package domain

import (
	"github.com/shopspring/decimal"
)

// percentPlaces is the precision of every derived percentage.
const percentPlaces int32 = 2

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.New(5, -1)
)

// ProductSnapshot is the authoritative state a product's derived fields are computed from.
type ProductSnapshot struct {
	Price          *Money
	CompareAtPrice *Money
	CostPrice      *Money
	Stock          StockLevel
}

// DerivedFields are computed on every read and never stored.
// ProfitMargin and MarkupPercentage are nil when no cost price is known.
type DerivedFields struct {
	AvailableQuantity  int64
	IsInStock          bool
	IsLowStock         bool
	DiscountPercentage decimal.Decimal
	ProfitMargin       *decimal.Decimal
	MarkupPercentage   *decimal.Decimal
}

// PricingCalculator is a stateless domain service deriving stock status and price
// ratios from a product snapshot.
type PricingCalculator struct{}

// NewPricingCalculator creates a new PricingCalculator instance.
func NewPricingCalculator() *PricingCalculator {
	return &PricingCalculator{}
}

// Package-level calculator instance for domain object use
var defaultPricingCalculator = NewPricingCalculator()

// Derive computes all derived fields for snap.
func (pc *PricingCalculator) Derive(snap ProductSnapshot) DerivedFields {
	return DerivedFields{
		AvailableQuantity:  snap.Stock.Available(),
		IsInStock:          snap.Stock.IsInStock(),
		IsLowStock:         snap.Stock.IsLowStock(),
		DiscountPercentage: pc.DiscountPercentage(snap.Price, snap.CompareAtPrice),
		ProfitMargin:       pc.ProfitMargin(snap.Price, snap.CostPrice),
		MarkupPercentage:   pc.MarkupPercentage(snap.Price, snap.CostPrice),
	}
}

// DiscountPercentage = (compareAt - price) / compareAt * 100.
// An absent or non-positive compare-at price, or one not above price, yields 0.
func (pc *PricingCalculator) DiscountPercentage(price, compareAt *Money) decimal.Decimal {
	if price == nil || compareAt == nil || !compareAt.IsPositive() || !compareAt.GreaterThan(price) {
		return decimal.Zero
	}
	diff := compareAt.Decimal().Sub(price.Decimal())
	return RoundPercent(diff.Mul(hundred).Div(compareAt.Decimal()))
}

// ProfitMargin = (price - cost) / price * 100, relative to the selling price.
func (pc *PricingCalculator) ProfitMargin(price, cost *Money) *decimal.Decimal {
	if price == nil || cost == nil || !price.IsPositive() {
		return nil
	}
	diff := price.Decimal().Sub(cost.Decimal())
	m := RoundPercent(diff.Mul(hundred).Div(price.Decimal()))
	return &m
}

// MarkupPercentage = (price - cost) / cost * 100, relative to the cost price.
// A zero cost has no defined markup.
func (pc *PricingCalculator) MarkupPercentage(price, cost *Money) *decimal.Decimal {
	if price == nil || cost == nil || !cost.IsPositive() {
		return nil
	}
	diff := price.Decimal().Sub(cost.Decimal())
	m := RoundPercent(diff.Mul(hundred).Div(cost.Decimal()))
	return &m
}

// RoundPercent rounds half-up (towards positive infinity on a tie) to two places.
func RoundPercent(d decimal.Decimal) decimal.Decimal {
	return d.Shift(percentPlaces).Add(half).Floor().Shift(-percentPlaces)
}

// Derive computes derived fields with the package calculator.
func Derive(snap ProductSnapshot) DerivedFields {
	return defaultPricingCalculator.Derive(snap)
}
