package terminal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/simaogato/tusec-backend/internal/domain"
)

// PricesMarkdown renders the price table
func PricesMarkdown(stocks []domain.Stock) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Stock Prices\n\n")
	fmt.Fprintln(&b, "| Company | Price |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, s := range stocks {
		fmt.Fprintf(&b, "| %s | %s |\n", escape(s.Company), FormatPrice(s.Price))
	}
	return b.String()
}

// UsersMarkdown renders the user/portfolio table
func UsersMarkdown(users []domain.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Users\n\n")
	if len(users) == 0 {
		fmt.Fprintln(&b, "_No registered users._")
		return b.String()
	}

	fmt.Fprintln(&b, "| ID | Name | Position | Portfolio |")
	fmt.Fprintln(&b, "|:---|:---|:---:|:---|")
	for _, u := range users {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			escape(u.ID),
			escape(u.Name),
			u.Position,
			escape(portfolioSummary(u.Portfolio)),
		)
	}
	return b.String()
}

// ChartMarkdown renders a company's price history as a sparkline with its range
func ChartMarkdown(company string, history []decimal.Decimal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Price History\n\n", escape(company))
	if len(history) == 0 {
		fmt.Fprintln(&b, "_No prices recorded._")
		return b.String()
	}

	low, high := history[0], history[0]
	for _, p := range history[1:] {
		low = decimal.Min(low, p)
		high = decimal.Max(high, p)
	}

	fmt.Fprintf(&b, "```\n%s\n```\n\n", Sparkline(history))
	fmt.Fprintln(&b, "| Ticks | Low | High | Last |")
	fmt.Fprintln(&b, "|---:|---:|---:|---:|")
	fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
		len(history),
		FormatPrice(low),
		FormatPrice(high),
		FormatPrice(history[len(history)-1]),
	)
	return b.String()
}

var bars = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws one bar per price, scaled between the lowest and highest value
func Sparkline(prices []decimal.Decimal) string {
	if len(prices) == 0 {
		return ""
	}

	low, high := prices[0], prices[0]
	for _, p := range prices[1:] {
		low = decimal.Min(low, p)
		high = decimal.Max(high, p)
	}
	span := high.Sub(low)
	top := decimal.NewFromInt(int64(len(bars) - 1))

	out := make([]rune, 0, len(prices))
	for _, p := range prices {
		idx := 0
		if span.IsPositive() {
			idx = int(p.Sub(low).Div(span).Mul(top).Round(0).IntPart())
		}
		out = append(out, bars[idx])
	}
	return string(out)
}

// portfolioSummary lists holdings sorted by company, "-" when empty
func portfolioSummary(portfolio map[string]int64) string {
	if len(portfolio) == 0 {
		return "-"
	}
	companies := make([]string, 0, len(portfolio))
	for c := range portfolio {
		companies = append(companies, c)
	}
	sort.Strings(companies)

	parts := make([]string, 0, len(companies))
	for _, c := range companies {
		parts = append(parts, fmt.Sprintf("%s: %d", c, portfolio[c]))
	}
	return strings.Join(parts, ", ")
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
