package projection

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"strategic_finance/pkg/models"
)

// ResolveParams substitutes defaults for missing keys and converts every
// recognized value to its numeric form. Unrecognized keys are ignored.
func ResolveParams(assumptions models.Assumptions) (Params, error) {
	p := DefaultParams()

	var err error
	if p.InitialSalesPeople, err = intValue(assumptions, KeyInitialSalesPeople, p.InitialSalesPeople); err != nil {
		return Params{}, err
	}
	if p.SalesPeopleGrowthRate, err = intValue(assumptions, KeySalesPeopleGrowthRate, p.SalesPeopleGrowthRate); err != nil {
		return Params{}, err
	}
	if p.MarketingSpendMonthly, err = floatValue(assumptions, KeyMarketingSpendMonthly, p.MarketingSpendMonthly); err != nil {
		return Params{}, err
	}
	if p.LargeCustomerRevenueMonthly, err = floatValue(assumptions, KeyLargeCustomerRevenueMonthly, p.LargeCustomerRevenueMonthly); err != nil {
		return Params{}, err
	}
	if p.SmallCustomerRevenueMonthly, err = floatValue(assumptions, KeySmallCustomerRevenueMonthly, p.SmallCustomerRevenueMonthly); err != nil {
		return Params{}, err
	}
	if p.CustomerAcquisitionCost, err = floatValue(assumptions, KeyCustomerAcquisitionCost, p.CustomerAcquisitionCost); err != nil {
		return Params{}, err
	}
	if p.DemoConversionRate, err = floatValue(assumptions, KeyDemoConversionRate, p.DemoConversionRate); err != nil {
		return Params{}, err
	}

	if p.CustomerAcquisitionCost <= 0 {
		return Params{}, invalid(KeyCustomerAcquisitionCost, "must be positive, got %v", p.CustomerAcquisitionCost)
	}
	perMonth := p.MarketingSpendMonthly / p.CustomerAcquisitionCost * p.DemoConversionRate
	if math.IsNaN(perMonth) || math.Abs(perMonth) > maxSmallCustomersPerMonth {
		return Params{}, invalid(KeyMarketingSpendMonthly, "out of range: %v", p.MarketingSpendMonthly)
	}
	return p, nil
}

// maxSmallCustomersPerMonth keeps the segment-B cumulative count inside int64
// over the longest horizon. Segment A cannot overflow: headcount and growth are
// both capped at MaxInt32.
const maxSmallCustomersPerMonth = math.MaxInt64 / MaxHorizonMonths

// ValidateDriver rejects a driver without a name or with an unknown type.
func ValidateDriver(d models.RevenueDriver) error {
	if strings.TrimSpace(d.Name) == "" {
		return invalid("revenue_drivers", "driver name must not be empty")
	}
	if !d.Type.Valid() {
		return invalid("revenue_drivers", "driver %q has unknown type %q", d.Name, d.Type)
	}
	return nil
}

// ValidateDrivers applies ValidateDriver to each driver in order.
func ValidateDrivers(drivers []models.RevenueDriver) error {
	for _, d := range drivers {
		if err := ValidateDriver(d); err != nil {
			return err
		}
	}
	return nil
}

// Effective returns a copy of assumptions with every recognized key set to the
// value the engine actually used. Passthrough keys are preserved.
func Effective(assumptions models.Assumptions) (models.Assumptions, error) {
	p, err := ResolveParams(assumptions)
	if err != nil {
		return nil, err
	}
	out := assumptions.Clone()
	out[KeyInitialSalesPeople] = p.InitialSalesPeople
	out[KeySalesPeopleGrowthRate] = p.SalesPeopleGrowthRate
	out[KeyMarketingSpendMonthly] = p.MarketingSpendMonthly
	out[KeyLargeCustomerRevenueMonthly] = p.LargeCustomerRevenueMonthly
	out[KeySmallCustomerRevenueMonthly] = p.SmallCustomerRevenueMonthly
	out[KeyCustomerAcquisitionCost] = p.CustomerAcquisitionCost
	out[KeyDemoConversionRate] = p.DemoConversionRate
	return out, nil
}

func floatValue(assumptions models.Assumptions, key string, def float64) (float64, error) {
	raw, ok := assumptions[key]
	if !ok || raw == nil {
		return def, nil
	}
	f, err := toFloat(raw)
	if err != nil {
		return 0, invalid(key, "%v", err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid(key, "must be finite, got %v", f)
	}
	return f, nil
}

// Headcounts are whole people; fractional values are truncated.
func intValue(assumptions models.Assumptions, key string, def int) (int, error) {
	raw, ok := assumptions[key]
	if !ok || raw == nil {
		return def, nil
	}
	f, err := toFloat(raw)
	if err != nil {
		return 0, invalid(key, "%v", err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, invalid(key, "out of range: %v", f)
	}
	return int(f), nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &numericError{value: n}
		}
		return f, nil
	default:
		return 0, &numericError{value: v}
	}
}

type numericError struct {
	value interface{}
}

func (e *numericError) Error() string {
	return "expected a number, got " + strconv.Quote(stringify(e.value))
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "?"
	}
	return string(b)
}
