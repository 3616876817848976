package export

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"strategic_finance/pkg/core/finance"
	"strategic_finance/pkg/core/projection"
	"strategic_finance/pkg/models"
)

// ContentTypeHTML is the media type for Report output.
const ContentTypeHTML = "text/html; charset=utf-8"

var numericCell = regexp.MustCompile(`^-?\$?[\d,]+(\.\d+)?%?$`)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Report renders a standalone HTML page summarising model: headline metrics,
// business logic, the monthly table and the effective assumptions.
func Report(model *models.FinancialModel) (string, error) {
	md, err := reportMarkdown(model)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return "", fmt.Errorf("failed to render report markdown: %w", err)
	}

	page := "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>" +
		html.EscapeString("Financial model "+model.ModelID) +
		"</title></head><body>" + body.String() + "</body></html>"

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse rendered report: %w", err)
	}
	doc.Find("table").AddClass("forecast-table")
	doc.Find("td").Each(func(_ int, cell *goquery.Selection) {
		if numericCell.MatchString(strings.TrimSpace(cell.Text())) {
			cell.AddClass("num")
		}
	})

	out, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return "", fmt.Errorf("failed to serialize report: %w", err)
	}
	return out, nil
}

func reportMarkdown(model *models.FinancialModel) (string, error) {
	effective, err := projection.Effective(model.Assumptions)
	if err != nil {
		return "", err
	}
	logic, err := finance.BusinessLogic(model)
	if err != nil {
		return "", err
	}
	summary := projection.Summarize(model.MonthlyProjections)

	var b strings.Builder
	fmt.Fprintf(&b, "# Financial model %s\n\n", model.ModelID)
	fmt.Fprintf(&b, "> %s\n\n", escapeInline(model.Query))
	fmt.Fprintf(&b, "Generated %s from %s assumptions over %d months.\n\n",
		model.CreatedAt.Format("2006-01-02 15:04 MST"), sourceLabel(model.ResolverSource), model.TimeHorizonMonths)

	b.WriteString("## Summary\n\n| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Total revenue | %s |\n", summary.TotalRevenue.StringFixed(2))
	fmt.Fprintf(&b, "| Total marketing spend | %s |\n", summary.TotalMarketingSpend.StringFixed(2))
	fmt.Fprintf(&b, "| Ending MRR | %s |\n", summary.EndingMRR.StringFixed(2))
	fmt.Fprintf(&b, "| Ending ARR | %s |\n", summary.EndingARR.StringFixed(2))
	fmt.Fprintf(&b, "| Ending large customers | %d |\n", summary.EndingLargeCustomers)
	fmt.Fprintf(&b, "| Ending small/medium customers | %d |\n", summary.EndingSmallCustomers)
	fmt.Fprintf(&b, "| Ending sales team | %d |\n", summary.EndingSalesPeople)
	fmt.Fprintf(&b, "| Large-customer revenue share | %s%% |\n\n", summary.LargeRevenueShare.Shift(2).StringFixed(2))

	if len(logic) > 0 {
		b.WriteString("## Business logic\n\n")
		for _, line := range logic {
			fmt.Fprintf(&b, "- %s\n", escapeInline(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Monthly projections\n\n")
	b.WriteString("| Month | Sales people | Large new | Large total | Large revenue | Small new | Small total | Small revenue | Total revenue | Marketing spend |\n")
	b.WriteString("|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, p := range model.MonthlyProjections {
		fmt.Fprintf(&b, "| %d | %d | %d | %d | %.2f | %d | %d | %.2f | %.2f | %.2f |\n",
			p.Month, p.SalesPeople, p.LargeCustomersAcquired, p.LargeCustomersCumulative, p.LargeCustomerRevenue,
			p.SmallCustomersAcquired, p.SmallCustomersCumulative, p.SmallCustomerRevenue, p.TotalRevenue, p.MarketingSpend)
	}
	b.WriteString("\n")

	keys := make([]string, 0, len(effective))
	for k := range effective {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString("## Assumptions\n\n| Key | Value |\n|---|---:|\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "| %s | %s |\n", escapeInline(k), escapeInline(fmt.Sprint(effective[k])))
	}
	return b.String(), nil
}

func sourceLabel(s models.ResolverSource) string {
	switch s {
	case models.SourceLLM:
		return "LLM-resolved"
	case models.SourceFallback:
		return "rule-based"
	default:
		return "supplied"
	}
}

var inlineEscaper = strings.NewReplacer(
	`\`, `\\`, "|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;",
)

// escapeInline neutralises Markdown and HTML in free text.
func escapeInline(s string) string {
	return inlineEscaper.Replace(strings.ReplaceAll(s, "\n", " "))
}
