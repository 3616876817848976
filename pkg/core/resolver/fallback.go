package resolver

import (
	"regexp"
	"strconv"
	"strings"

	"strategic_finance/pkg/core/knowledge"
	"strategic_finance/pkg/core/projection"
	"strategic_finance/pkg/models"
)

var (
	monthsPattern      = regexp.MustCompile(`(\d+)\s*month`)
	salesPeoplePattern = regexp.MustCompile(`(\d+)\s*(salespeople|sales people|salesperson)`)
)

// Fallback derives a resolution from the query text alone. It looks for
// "<n> month" and "<n> salespeople" and fills every other assumption with
// its default. It never fails.
func Fallback(query string) *Resolution {
	q := strings.ToLower(query)

	months := projection.DefaultHorizonMonths
	if m := monthsPattern.FindStringSubmatch(q); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			months = n
		}
	}

	salesPeople := projection.DefaultInitialSalesPeople
	if m := salesPeoplePattern.FindStringSubmatch(q); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			salesPeople = n
		}
	}

	value := float64(salesPeople)
	unit := "#"
	return &Resolution{
		TimeHorizonMonths: months,
		RevenueDrivers: []models.RevenueDriver{
			{Name: "number_of_sales_people", Type: models.DriverInput, Value: &value, Unit: &unit},
		},
		Assumptions: models.Assumptions{
			projection.KeyInitialSalesPeople:          salesPeople,
			projection.KeySalesPeopleGrowthRate:       projection.DefaultSalesPeopleGrowthRate,
			projection.KeyMarketingSpendMonthly:       200000,
			projection.KeyLargeCustomerRevenueMonthly: 16667,
			projection.KeySmallCustomerRevenueMonthly: 5000,
		},
		BusinessFocus:       []string{knowledge.UnitLargeCustomers, knowledge.UnitSmallMediumCustomers},
		SpecialInstructions: []string{},
		Source:              models.SourceFallback,
	}
}
