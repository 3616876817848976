package finance

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"strategic_finance/pkg/core/knowledge"
	"strategic_finance/pkg/core/projection"
	"strategic_finance/pkg/models"
)

// BusinessLogic explains, in plain sentences, how each business unit present
// in the model generates revenue. Figures come from the model's effective
// assumptions, so overridden values show up in the text.
func (s *Service) BusinessLogic(model *models.FinancialModel) ([]string, error) {
	return BusinessLogic(model)
}

// BusinessLogic is the receiver-free form used by exporters.
func BusinessLogic(model *models.FinancialModel) ([]string, error) {
	p, err := projection.ResolveParams(model.Assumptions)
	if err != nil {
		return nil, err
	}

	logic := []string{}
	if _, ok := model.BusinessUnits[knowledge.UnitLargeCustomers]; ok {
		logic = append(logic,
			"Large Customers: Direct sales approach with sales team growing monthly",
			fmt.Sprintf("Each salesperson can acquire 1-2 large customers per month at %s/month revenue",
				dollars(p.LargeCustomerRevenueMonthly)),
		)
	}
	if _, ok := model.BusinessUnits[knowledge.UnitSmallMediumCustomers]; ok {
		logic = append(logic,
			fmt.Sprintf("Small/Medium Customers: Digital marketing with %s monthly spend",
				dollarsShort(p.MarketingSpendMonthly)),
			fmt.Sprintf("%s CAC with %s%% demo-to-customer conversion rate at %s/month revenue",
				dollars(p.CustomerAcquisitionCost),
				decimal.NewFromFloat(p.DemoConversionRate).Mul(decimal.NewFromInt(100)).String(),
				dollars(p.SmallCustomerRevenueMonthly)),
		)
	}
	return logic, nil
}

var thousand = decimal.NewFromInt(1000)

// Dollars formats an amount the way the business logic lines do.
func Dollars(v float64) string { return dollars(v) }

// dollars renders 16667 as "$16,667" and 1234.5 as "$1,234.5".
func dollars(v float64) string {
	d := decimal.NewFromFloat(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole := d.Truncate(0)
	frac := d.Sub(whole)
	out := sign + "$" + groupThousands(whole.String())
	if !frac.IsZero() {
		out += strings.TrimPrefix(frac.String(), "0")
	}
	return out
}

// dollarsShort renders whole thousands as "$200k", anything else like dollars.
func dollarsShort(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.IsPositive() && d.Mod(thousand).IsZero() {
		return "$" + groupThousands(d.Div(thousand).String()) + "k"
	}
	return dollars(v)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
