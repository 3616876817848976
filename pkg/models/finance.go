package models

import (
	"time"

	"github.com/google/uuid"
)

// Assumptions is the named bag of inputs the projection engine reads.
// Values are numbers or numeric strings; unknown keys are carried through untouched.
type Assumptions map[string]interface{}

// Clone returns a shallow copy so callers can't mutate a cached model's inputs.
func (a Assumptions) Clone() Assumptions {
	out := make(Assumptions, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// DriverType classifies a revenue driver for display/export.
type DriverType string

const (
	DriverInput      DriverType = "input"
	DriverAssumption DriverType = "assumption"
	DriverCalculated DriverType = "calculated"
)

// Valid reports whether t is one of the known driver types.
func (t DriverType) Valid() bool {
	switch t {
	case DriverInput, DriverAssumption, DriverCalculated:
		return true
	}
	return false
}

// RevenueDriver is descriptive metadata about an input to the model.
// Formula is documentation only and is never evaluated.
type RevenueDriver struct {
	Name         string     `json:"name"`
	Type         DriverType `json:"type"`
	Value        *float64   `json:"value,omitempty"`
	Unit         *string    `json:"unit,omitempty"`
	Formula      *string    `json:"formula,omitempty"`
	BusinessUnit *string    `json:"business_unit,omitempty"`
}

// BusinessUnit describes one go-to-market segment from the knowledge base.
type BusinessUnit struct {
	Name               string                 `json:"name"`
	GoToMarketStrategy string                 `json:"go_to_market_strategy"`
	Assumptions        map[string]interface{} `json:"assumptions"`
	RevenueFormulas    []string               `json:"revenue_formulas"`
	MonthlyMetrics     map[string]float64     `json:"monthly_metrics"`
}

// MonthlyProjection is one month of the revenue trajectory.
type MonthlyProjection struct {
	Month                    int     `json:"month"`
	SalesPeople              int     `json:"sales_people"`
	LargeCustomersAcquired   int     `json:"large_customers_acquired"`
	LargeCustomersCumulative int     `json:"large_customers_cumulative"`
	LargeCustomerRevenue     float64 `json:"large_customer_revenue"`
	SmallCustomersAcquired   int     `json:"small_customers_acquired"`
	SmallCustomersCumulative int     `json:"small_customers_cumulative"`
	SmallCustomerRevenue     float64 `json:"small_customer_revenue"`
	TotalRevenue             float64 `json:"total_revenue"`
	MarketingSpend           float64 `json:"marketing_spend"`
}

// ResolverSource records how the assumptions of a model were obtained.
type ResolverSource string

const (
	SourceLLM      ResolverSource = "llm"
	SourceFallback ResolverSource = "fallback"
)

// FinancialModel aggregates everything produced for a single query.
type FinancialModel struct {
	ModelID             string                  `json:"model_id"`
	CreatedAt           time.Time               `json:"created_at"`
	Query               string                  `json:"query"`
	TimeHorizonMonths   int                     `json:"time_horizon_months"`
	BusinessUnits       map[string]BusinessUnit `json:"business_units"`
	RevenueDrivers      []RevenueDriver         `json:"revenue_drivers"`
	MonthlyProjections  []MonthlyProjection     `json:"monthly_projections"`
	Assumptions         Assumptions             `json:"assumptions"`
	BusinessFocus       []string                `json:"business_focus,omitempty"`
	SpecialInstructions []string                `json:"special_instructions,omitempty"`
	ResolverSource      ResolverSource          `json:"resolver_source,omitempty"`
}

// NewFinancialModel creates an empty model with a fresh UUID and UTC timestamp.
func NewFinancialModel(query string) *FinancialModel {
	return &FinancialModel{
		ModelID:            uuid.New().String(),
		CreatedAt:          time.Now().UTC(),
		Query:              query,
		BusinessUnits:      make(map[string]BusinessUnit),
		RevenueDrivers:     []RevenueDriver{},
		MonthlyProjections: []MonthlyProjection{},
		Assumptions:        Assumptions{},
	}
}
