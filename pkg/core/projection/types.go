// Package projection turns a bag of named assumptions into a month-by-month
// revenue trajectory for the two-segment SaaS growth model.
//
// Segment A ("large customers") is driven by direct-sales headcount: every
// salesperson lands one customer per month. Segment B ("small/medium
// customers") is driven by a fixed monthly marketing budget converted through a
// cost-per-acquisition and a demo conversion rate.
package projection

import (
	"errors"
	"fmt"
)

// Recognized assumption keys.
const (
	KeyInitialSalesPeople          = "initial_sales_people"
	KeySalesPeopleGrowthRate       = "sales_people_growth_rate"
	KeyMarketingSpendMonthly       = "marketing_spend_monthly"
	KeyLargeCustomerRevenueMonthly = "large_customer_revenue_monthly"
	KeySmallCustomerRevenueMonthly = "small_customer_revenue_monthly"
	KeyCustomerAcquisitionCost     = "customer_acquisition_cost"
	KeyDemoConversionRate          = "demo_conversion_rate"
)

// Defaults applied when a key is absent.
const (
	DefaultInitialSalesPeople          = 1
	DefaultSalesPeopleGrowthRate       = 1
	DefaultMarketingSpendMonthly       = 200000.0
	DefaultLargeCustomerRevenueMonthly = 16667.0
	DefaultSmallCustomerRevenueMonthly = 5000.0
	DefaultCustomerAcquisitionCost     = 1500.0
	DefaultDemoConversionRate          = 0.45

	// DefaultHorizonMonths is used by callers when no horizon was requested.
	DefaultHorizonMonths = 12
	// MaxHorizonMonths caps the horizon at a century of months.
	MaxHorizonMonths = 1200
)

// ErrInvalidInput is the sentinel for every input-contract violation.
var ErrInvalidInput = errors.New("invalid input")

// InputError names the offending field. It unwraps to ErrInvalidInput.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

func invalid(field, format string, args ...interface{}) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Params is the fully resolved, typed form of an assumptions mapping.
type Params struct {
	InitialSalesPeople          int
	SalesPeopleGrowthRate       int
	MarketingSpendMonthly       float64
	LargeCustomerRevenueMonthly float64
	SmallCustomerRevenueMonthly float64
	CustomerAcquisitionCost     float64
	DemoConversionRate          float64
}

// DefaultParams returns the parameters used for an empty assumptions mapping.
func DefaultParams() Params {
	return Params{
		InitialSalesPeople:          DefaultInitialSalesPeople,
		SalesPeopleGrowthRate:       DefaultSalesPeopleGrowthRate,
		MarketingSpendMonthly:       DefaultMarketingSpendMonthly,
		LargeCustomerRevenueMonthly: DefaultLargeCustomerRevenueMonthly,
		SmallCustomerRevenueMonthly: DefaultSmallCustomerRevenueMonthly,
		CustomerAcquisitionCost:     DefaultCustomerAcquisitionCost,
		DemoConversionRate:          DefaultDemoConversionRate,
	}
}

// SmallCustomersPerMonth is the constant segment-B acquisition count.
// The quotient is truncated toward zero, never rounded.
func (p Params) SmallCustomersPerMonth() int {
	return int(p.MarketingSpendMonthly / p.CustomerAcquisitionCost * p.DemoConversionRate)
}
