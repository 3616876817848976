package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"strategic_finance/pkg/core/knowledge"
	"strategic_finance/pkg/core/projection"
	"strategic_finance/pkg/models"
)

func sampleModel(t *testing.T) *models.FinancialModel {
	t.Helper()
	m := models.NewFinancialModel("Plan | with <b>markup</b> for 3 months")
	m.TimeHorizonMonths = 3
	m.ResolverSource = models.SourceFallback
	m.Assumptions = models.Assumptions{
		projection.KeyInitialSalesPeople:    2,
		projection.KeyMarketingSpendMonthly: "150,000",
		"notes":                             "keep",
	}
	m.BusinessUnits = knowledge.DefaultRules().ModelUnits()

	projections, err := projection.ComputeProjections(3, m.Assumptions, nil)
	require.NoError(t, err)
	m.MonthlyProjections = projections
	return m
}

func TestWorkbook(t *testing.T) {
	m := sampleModel(t)

	data, err := Workbook(m)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ForecastSheet, AssumptionsSheet}, f.GetSheetList())

	rows, err := f.GetRows(ForecastSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{
		"month", "sales_people", "large_customers_acquired", "large_customers_cumulative", "large_customer_revenue",
		"small_customers_acquired", "small_customers_cumulative", "small_customer_revenue", "total_revenue", "marketing_spend",
	}, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "2", rows[1][1])
	assert.Equal(t, "3", rows[3][0])

	total, err := f.GetCellValue(ForecastSheet, "I2")
	require.NoError(t, err)
	// 2 large * 16667 + floor(150000/1500*0.45)=45 small * 5000
	assert.Equal(t, "258334", total)

	assumptions, err := f.GetRows(AssumptionsSheet)
	require.NoError(t, err)
	require.Len(t, assumptions, 2)
	assert.Equal(t, []string{"initial_sales_people", "marketing_spend_monthly", "notes"}, assumptions[0])
	assert.Equal(t, []string{"2", "150,000", "keep"}, assumptions[1])
}

func TestWorkbook_EmptyModel(t *testing.T) {
	data, err := Workbook(models.NewFinancialModel("q"))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ForecastSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReport(t *testing.T) {
	m := sampleModel(t)

	out, err := Report(m)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, "Financial model "+m.ModelID, doc.Find("title").Text())
	assert.Equal(t, 3, doc.Find("table.forecast-table").Length())
	assert.Zero(t, doc.Find("b").Length(), "query markup is escaped")
	assert.Contains(t, doc.Find("blockquote").Text(), "<b>markup</b>")

	// Monthly table: header plus one row per month.
	monthly := doc.Find("table").Eq(1)
	assert.Equal(t, 3, monthly.Find("tbody tr").Length())
	assert.True(t, monthly.Find("tbody tr").First().Find("td").First().HasClass("num"))

	assert.Contains(t, doc.Find("ul").Text(), "$150k monthly spend")

	assumptionKeys := doc.Find("table").Eq(2).Find("tbody tr td:first-child").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
	assert.Contains(t, assumptionKeys, "customer_acquisition_cost")
	assert.Contains(t, assumptionKeys, "notes")
}

func TestReport_InvalidAssumptions(t *testing.T) {
	m := models.NewFinancialModel("q")
	m.Assumptions = models.Assumptions{projection.KeyCustomerAcquisitionCost: 0}
	_, err := Report(m)
	assert.ErrorIs(t, err, projection.ErrInvalidInput)
}
