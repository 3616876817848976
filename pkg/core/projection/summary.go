package projection

import (
	"github.com/shopspring/decimal"

	"strategic_finance/pkg/models"
)

// Summary is the horizon-level roll-up of a projection sequence.
type Summary struct {
	Months               int             `json:"months"`
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	TotalMarketingSpend  decimal.Decimal `json:"total_marketing_spend"`
	EndingMRR            decimal.Decimal `json:"ending_mrr"`
	EndingARR            decimal.Decimal `json:"ending_arr"`
	EndingLargeCustomers int             `json:"ending_large_customers"`
	EndingSmallCustomers int             `json:"ending_small_customers"`
	EndingSalesPeople    int             `json:"ending_sales_people"`
	LargeRevenueShare    decimal.Decimal `json:"large_revenue_share"`
}

var monthsPerYear = decimal.NewFromInt(12)

// Summarize aggregates projections in decimal so long horizons don't drift.
// An empty sequence yields a zero Summary.
func Summarize(projections []models.MonthlyProjection) Summary {
	s := Summary{
		TotalRevenue:        decimal.Zero,
		TotalMarketingSpend: decimal.Zero,
		EndingMRR:           decimal.Zero,
		EndingARR:           decimal.Zero,
		LargeRevenueShare:   decimal.Zero,
	}
	if len(projections) == 0 {
		return s
	}

	for _, p := range projections {
		s.TotalRevenue = s.TotalRevenue.Add(decimal.NewFromFloat(p.TotalRevenue))
		s.TotalMarketingSpend = s.TotalMarketingSpend.Add(decimal.NewFromFloat(p.MarketingSpend))
	}

	last := projections[len(projections)-1]
	s.Months = len(projections)
	s.EndingMRR = decimal.NewFromFloat(last.TotalRevenue)
	s.EndingARR = s.EndingMRR.Mul(monthsPerYear)
	s.EndingLargeCustomers = last.LargeCustomersCumulative
	s.EndingSmallCustomers = last.SmallCustomersCumulative
	s.EndingSalesPeople = last.SalesPeople
	if !s.EndingMRR.IsZero() {
		s.LargeRevenueShare = decimal.NewFromFloat(last.LargeCustomerRevenue).Div(s.EndingMRR).Round(4)
	}
	return s
}
