package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"strategic_finance/pkg/core/finance"
	"strategic_finance/pkg/core/knowledge"
	"strategic_finance/pkg/models"
)

var (
	primary = lipgloss.Color("205")
	subtle  = lipgloss.Color("240")
	success = lipgloss.Color("42")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(subtle).
			Width(22)

	valueStyle = lipgloss.NewStyle().Bold(true)

	noteStyle = lipgloss.NewStyle().Foreground(success)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1)
)

const (
	chartWidth  = 60
	chartHeight = 10
)

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

func renderSummary(resp *finance.QueryResponse) string {
	s := resp.Summary
	rows := []string{
		titleStyle.Render(fmt.Sprintf("Forecast %s", resp.ModelID)),
		row("Months", fmt.Sprint(s.Months)),
		row("Total revenue", finance.Dollars(s.TotalRevenue.Round(0).InexactFloat64())),
		row("Marketing spend", finance.Dollars(s.TotalMarketingSpend.Round(0).InexactFloat64())),
		row("Ending MRR", finance.Dollars(s.EndingMRR.Round(0).InexactFloat64())),
		row("Ending ARR", finance.Dollars(s.EndingARR.Round(0).InexactFloat64())),
		row("Sales people", fmt.Sprint(s.EndingSalesPeople)),
		row("Large customers", fmt.Sprint(s.EndingLargeCustomers)),
		row("Small/medium customers", fmt.Sprint(s.EndingSmallCustomers)),
		"",
	}
	for _, line := range resp.BusinessLogic {
		rows = append(rows, "• "+line)
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)) + "\n"
}

// renderChart plots total revenue per month.
func renderChart(projections []models.MonthlyProjection) string {
	if len(projections) == 0 {
		return labelStyle.Render("No data available")
	}
	data := make([]float64, len(projections))
	for i, p := range projections {
		data[i] = p.TotalRevenue
	}
	if len(data) == 1 {
		data = append(data, data[0])
	}
	return asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Caption(fmt.Sprintf("Total monthly revenue over %d months", len(projections))),
	)
}

func renderDrivers(drivers []knowledge.DriverInfo) string {
	rows := []string{titleStyle.Render("Revenue drivers")}
	for _, d := range drivers {
		rows = append(rows, fmt.Sprintf("%-32s %-11s %s", d.Name, d.Type, d.BusinessUnit))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}

func renderProviders(active string, available []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("LLM providers"))
	b.WriteString("\n")
	for _, name := range available {
		marker := "  "
		if name == active {
			marker = noteStyle.Render("* ")
		}
		b.WriteString(marker + name + "\n")
	}
	return b.String()
}
