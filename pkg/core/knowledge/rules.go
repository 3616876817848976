// Package knowledge loads the SaaS business rules (business units, their
// go-to-market notes and formulas, and the catalogue of revenue drivers)
// from an Hjson file and keeps them current while the file is edited.
package knowledge

import (
	"sort"

	"strategic_finance/pkg/models"
)

// Business unit keys used throughout the service.
const (
	UnitLargeCustomers       = "large_customers"
	UnitSmallMediumCustomers = "small_medium_customers"
)

// File is the on-disk layout: everything lives under "saas_company".
type File struct {
	SaaSCompany Rules `json:"saas_company"`
}

// Rules is the parsed knowledge base.
type Rules struct {
	BusinessUnits  map[string]UnitRules `json:"business_units"`
	RevenueDrivers []DriverInfo         `json:"revenue_drivers"`
}

// UnitRules describes one business unit.
type UnitRules struct {
	GoToMarket  string                 `json:"go_to_market"`
	Assumptions map[string]interface{} `json:"assumptions"`
	Formulas    map[string]string      `json:"formulas"`
}

// DriverInfo is one entry of the revenue driver catalogue.
type DriverInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"`
	Unit         string `json:"unit,omitempty"`
	BusinessUnit string `json:"business_unit,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Empty reports whether no business units are defined.
func (r Rules) Empty() bool {
	return len(r.BusinessUnits) == 0
}

// ModelUnits converts the unit rules into model business units. Formulas
// are listed in key order.
func (r Rules) ModelUnits() map[string]models.BusinessUnit {
	out := make(map[string]models.BusinessUnit, len(r.BusinessUnits))
	for name, unit := range r.BusinessUnits {
		keys := make([]string, 0, len(unit.Formulas))
		for k := range unit.Formulas {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		formulas := make([]string, 0, len(keys))
		for _, k := range keys {
			formulas = append(formulas, unit.Formulas[k])
		}

		assumptions := make(map[string]interface{}, len(unit.Assumptions))
		for k, v := range unit.Assumptions {
			assumptions[k] = v
		}

		out[name] = models.BusinessUnit{
			Name:               name,
			GoToMarketStrategy: unit.GoToMarket,
			Assumptions:        assumptions,
			RevenueFormulas:    formulas,
			MonthlyMetrics:     map[string]float64{},
		}
	}
	return out
}

// DefaultRules is used when no knowledge base file exists.
func DefaultRules() Rules {
	return Rules{
		BusinessUnits: map[string]UnitRules{
			UnitLargeCustomers: {
				GoToMarket: "Direct sales; each salesperson closes one to two large customers per month.",
				Assumptions: map[string]interface{}{
					"revenue_per_customer_monthly": 16667,
					"customers_per_salesperson":    1,
					"sales_people_growth_rate":     1,
				},
				Formulas: map[string]string{
					"customers":  "large_customers_cumulative += sales_people",
					"revenue":    "large_customers_cumulative * large_customer_revenue_monthly",
					"sales_team": "sales_people(m) = initial_sales_people + (m - 1) * sales_people_growth_rate",
				},
			},
			UnitSmallMediumCustomers: {
				GoToMarket: "Digital marketing funnel; paid spend drives demos that convert to customers.",
				Assumptions: map[string]interface{}{
					"marketing_spend_monthly":      200000,
					"customer_acquisition_cost":    1500,
					"demo_conversion_rate":         0.45,
					"revenue_per_customer_monthly": 5000,
					"sales_inquiries_monthly":      160,
				},
				Formulas: map[string]string{
					"customers": "floor(marketing_spend_monthly / customer_acquisition_cost * demo_conversion_rate)",
					"revenue":   "small_customers_cumulative * small_customer_revenue_monthly",
				},
			},
		},
		RevenueDrivers: []DriverInfo{
			{Name: "number_of_sales_people", Type: "input", Unit: "#", BusinessUnit: UnitLargeCustomers, Description: "Sales headcount in month one"},
			{Name: "sales_people_growth_rate", Type: "assumption", Unit: "#/month", BusinessUnit: UnitLargeCustomers, Description: "Salespeople hired each month"},
			{Name: "large_customer_revenue_monthly", Type: "assumption", Unit: "$", BusinessUnit: UnitLargeCustomers, Description: "Monthly revenue per large customer"},
			{Name: "marketing_spend_monthly", Type: "input", Unit: "$", BusinessUnit: UnitSmallMediumCustomers, Description: "Digital marketing budget per month"},
			{Name: "customer_acquisition_cost", Type: "assumption", Unit: "$", BusinessUnit: UnitSmallMediumCustomers, Description: "Marketing cost per demo"},
			{Name: "demo_conversion_rate", Type: "assumption", Unit: "%", BusinessUnit: UnitSmallMediumCustomers, Description: "Share of demos that become customers"},
			{Name: "small_customer_revenue_monthly", Type: "assumption", Unit: "$", BusinessUnit: UnitSmallMediumCustomers, Description: "Monthly revenue per small/medium customer"},
		},
	}
}

// Snippet is the short context string handed to the LLM.
const Snippet = "SaaS rules: two business units (large customers, small/medium). " +
	"Large: direct sales $16,667/mo per customer, 1-2 customers per salesperson/month. " +
	"SMB: digital marketing, default CAC $1,500, conversion 45%, avg $5,000/mo per customer. " +
	"Default marketing spend $200,000/mo, sales inquiries 160/mo."
