package projection

import (
	"strategic_finance/pkg/models"
)

// ComputeProjections produces exactly months records, month 1 first.
//
// drivers are accepted for symmetry with the rest of the model but do not
// participate in the arithmetic. The function keeps no state between calls and
// is safe for concurrent use.
func ComputeProjections(months int, assumptions models.Assumptions, drivers []models.RevenueDriver) ([]models.MonthlyProjection, error) {
	if months <= 0 {
		return nil, invalid("months", "horizon must be positive, got %d", months)
	}
	if months > MaxHorizonMonths {
		return nil, invalid("months", "horizon must not exceed %d, got %d", MaxHorizonMonths, months)
	}

	p, err := ResolveParams(assumptions)
	if err != nil {
		return nil, err
	}
	return Project(months, p), nil
}

// Project runs the model on already-resolved parameters. months must be positive.
func Project(months int, p Params) []models.MonthlyProjection {
	projections := make([]models.MonthlyProjection, 0, months)

	salesPeople := p.InitialSalesPeople
	smallNew := p.SmallCustomersPerMonth()
	largeCum, smallCum := 0, 0

	for m := 1; m <= months; m++ {
		// One new large customer per salesperson per month.
		largeNew := salesPeople
		largeCum += largeNew
		largeRev := float64(largeCum) * p.LargeCustomerRevenueMonthly

		smallCum += smallNew
		smallRev := float64(smallCum) * p.SmallCustomerRevenueMonthly

		projections = append(projections, models.MonthlyProjection{
			Month:                    m,
			SalesPeople:              salesPeople,
			LargeCustomersAcquired:   largeNew,
			LargeCustomersCumulative: largeCum,
			LargeCustomerRevenue:     largeRev,
			SmallCustomersAcquired:   smallNew,
			SmallCustomersCumulative: smallCum,
			SmallCustomerRevenue:     smallRev,
			TotalRevenue:             largeRev + smallRev,
			MarketingSpend:           p.MarketingSpendMonthly,
		})

		salesPeople += p.SalesPeopleGrowthRate
	}
	return projections
}
