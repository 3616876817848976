// Package export renders a cached financial model as an XLSX workbook or an
// HTML report.
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"strategic_finance/pkg/models"
)

// Sheet names.
const (
	ForecastSheet    = "Forecast"
	AssumptionsSheet = "Assumptions"
)

// ContentTypeXLSX is the media type for Workbook output.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type column struct {
	header string
	value  func(p models.MonthlyProjection) interface{}
}

// forecastColumns follow the JSON field names of MonthlyProjection.
var forecastColumns = []column{
	{"month", func(p models.MonthlyProjection) interface{} { return p.Month }},
	{"sales_people", func(p models.MonthlyProjection) interface{} { return p.SalesPeople }},
	{"large_customers_acquired", func(p models.MonthlyProjection) interface{} { return p.LargeCustomersAcquired }},
	{"large_customers_cumulative", func(p models.MonthlyProjection) interface{} { return p.LargeCustomersCumulative }},
	{"large_customer_revenue", func(p models.MonthlyProjection) interface{} { return p.LargeCustomerRevenue }},
	{"small_customers_acquired", func(p models.MonthlyProjection) interface{} { return p.SmallCustomersAcquired }},
	{"small_customers_cumulative", func(p models.MonthlyProjection) interface{} { return p.SmallCustomersCumulative }},
	{"small_customer_revenue", func(p models.MonthlyProjection) interface{} { return p.SmallCustomerRevenue }},
	{"total_revenue", func(p models.MonthlyProjection) interface{} { return p.TotalRevenue }},
	{"marketing_spend", func(p models.MonthlyProjection) interface{} { return p.MarketingSpend }},
}

// Workbook builds an XLSX file with a Forecast sheet (one row per month) and
// an Assumptions sheet (one header row of keys, one row of values, keys
// sorted).
func Workbook(model *models.FinancialModel) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ForecastSheet); err != nil {
		return nil, fmt.Errorf("failed to name forecast sheet: %w", err)
	}
	if _, err := f.NewSheet(AssumptionsSheet); err != nil {
		return nil, fmt.Errorf("failed to add assumptions sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeForecast(f, model.MonthlyProjections, headerStyle); err != nil {
		return nil, err
	}
	if err := writeAssumptions(f, model.Assumptions, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeForecast(f *excelize.File, projections []models.MonthlyProjection, headerStyle int) error {
	header := make([]interface{}, len(forecastColumns))
	for i, c := range forecastColumns {
		header[i] = c.header
	}
	if err := writeRow(f, ForecastSheet, 1, header); err != nil {
		return err
	}
	if err := styleHeader(f, ForecastSheet, len(header), headerStyle); err != nil {
		return err
	}

	for r, p := range projections {
		row := make([]interface{}, len(forecastColumns))
		for i, c := range forecastColumns {
			row[i] = c.value(p)
		}
		if err := writeRow(f, ForecastSheet, r+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeAssumptions(f *excelize.File, assumptions models.Assumptions, headerStyle int) error {
	keys := make([]string, 0, len(assumptions))
	for k := range assumptions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return nil
	}

	header := make([]interface{}, len(keys))
	values := make([]interface{}, len(keys))
	for i, k := range keys {
		header[i] = k
		values[i] = cellValue(assumptions[k])
	}
	if err := writeRow(f, AssumptionsSheet, 1, header); err != nil {
		return err
	}
	if err := styleHeader(f, AssumptionsSheet, len(header), headerStyle); err != nil {
		return err
	}
	return writeRow(f, AssumptionsSheet, 2, values)
}

// cellValue keeps scalars and stringifies anything excelize can't store.
func cellValue(v interface{}) interface{} {
	switch v.(type) {
	case nil, string, bool, int, int32, int64, float32, float64:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, cols, style int) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}
