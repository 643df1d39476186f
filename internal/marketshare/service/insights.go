// Presentation formatting: a pure function of the ranked result and the
// subject snapshot. Swappable without touching the analysis above.
package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"brokershare-service/internal/marketshare/model"
	"brokershare-service/internal/utils"
)

// BuildReport shapes the response body consumed by the chart layer.
func BuildReport(res model.Result, snap model.MetricsSnapshot, opt model.Options) model.Report {
	return model.Report{
		ProcessedData:     res.Top,
		FullData:          res.Full,
		Insights:          buildInsights(res, opt),
		AdditionalMetrics: formatMetrics(snap),
		Derived:           res.Derived,
	}
}

func buildInsights(res model.Result, opt model.Options) model.Insights {
	if len(res.Records) == 0 {
		return model.Insights{
			Title:       "Brokerage Market Share",
			Description: "No usable data rows were found in the uploaded file.",
			Summary:     []string{},
		}
	}

	leader := res.Records[0]
	d := res.Derived

	// the ranked record already carries any canonical relabel
	subjectLabel := leader.Brand
	if rec, ok := findBrand(res.Records, opt.Subject); ok {
		subjectLabel = rec.Brand
	}

	summary := []string{
		fmt.Sprintf("%s holds %.1f%% market share", subjectLabel, d.LeaderShare),
	}
	if d.RunnerUpShare > 0 {
		summary = append(summary, fmt.Sprintf(
			"%.1f point lead over the closest competitor at %.1f%%", d.Gap, d.RunnerUpShare))
	}
	summary = append(summary, fmt.Sprintf(
		"The top 3 brokerages account for %.1f%% of tracked share", d.Top3Concentration))

	return model.Insights{
		Title: fmt.Sprintf("Top %d Brokerages by Market Share", len(res.Top.Labels)),
		Description: fmt.Sprintf(
			"%s leads the market with %.1f%% share.", leader.Brand, leader.MarketShare),
		Summary: summary,
	}
}

func findBrand(recs []model.BrokerageRecord, token string) (model.BrokerageRecord, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return model.BrokerageRecord{}, false
	}
	for _, r := range recs {
		if strings.Contains(strings.ToLower(r.Brand), token) {
			return r, true
		}
	}
	return model.BrokerageRecord{}, false
}

func formatMetrics(s model.MetricsSnapshot) model.AdditionalMetrics {
	m := model.AdditionalMetrics{
		TotalSales:         s.TotalSales,
		AveragePrice:       FormatCurrency(s.AveragePrice),
		DaysOnMarket:       utils.Round1(s.DaysOnMarket),
		TotalOffices:       s.TotalOffices,
		ContributingAgents: s.ContributingAgents,
	}
	if s.PricePerSqft > 0 {
		m.PricePerSqft = fmt.Sprintf("$%.0f", s.PricePerSqft)
	}
	if s.ClosedListRatio > 0 {
		m.ClosedListRatio = fmt.Sprintf("%.1f%%", s.ClosedListRatio)
	}
	return m
}

// FormatCurrency renders whole dollars with comma grouping: "$1,234,567".
func FormatCurrency(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	pre := len(digits) % 3
	if pre > 0 {
		b.WriteString(digits[:pre])
		if len(digits) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}
	return b.String()
}
