package service

import (
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"brokershare-service/internal/marketshare/model"
	"brokershare-service/internal/utils"
)

const DefaultTopN = 10

// Run performs the full analysis: the ranking pass and the independent
// subject-metrics pass. Malformed rows are skipped, never surfaced; an
// input with no usable rows yields empty output and a zeroed snapshot.
func Run(rows [][]string, cols model.ColumnMap, opt model.Options, log zerolog.Logger) (model.Result, model.MetricsSnapshot) {
	recs := Extract(rows, cols, log)
	snap := SubjectMetrics(rows, cols, opt.Subject)
	return Rank(recs, opt), snap
}

// Extract builds the accepted record list from data rows (everything
// after the header row). A row is dropped when it is too short to hold
// both mapped cells, the brand cell is empty, or the share cell does
// not parse.
func Extract(rows [][]string, cols model.ColumnMap, log zerolog.Logger) []model.BrokerageRecord {
	need := cols.Brand
	if cols.MarketShare > need {
		need = cols.MarketShare
	}
	need++

	var recs []model.BrokerageRecord
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < need {
			continue
		}
		brand := strings.TrimSpace(row[cols.Brand])
		if brand == "" {
			continue
		}
		share, ok, corrected := coerceShare(row[cols.MarketShare])
		if !ok {
			continue
		}
		if corrected {
			log.Debug().
				Int("row", i).
				Str("brand", brand).
				Str("raw", row[cols.MarketShare]).
				Float64("share", share).
				Msg("market share rescaled /1000")
		}
		recs = append(recs, model.BrokerageRecord{Brand: brand, MarketShare: share})
	}
	return recs
}

// SubjectMetrics locates the subject brand's row by case-insensitive
// substring and extracts its extended metrics. If several rows match,
// the last one wins (overwrite, not accumulate).
func SubjectMetrics(rows [][]string, cols model.ColumnMap, subject string) model.MetricsSnapshot {
	var snap model.MetricsSnapshot
	sub := strings.ToLower(strings.TrimSpace(subject))
	if sub == "" {
		return snap
	}
	for i := 1; i < len(rows); i++ {
		brand := strings.ToLower(cell(rows[i], cols.Brand))
		if brand == "" || !strings.Contains(brand, sub) {
			continue
		}
		snap = snapshotFromRow(rows[i], cols)
	}
	return snap
}

func snapshotFromRow(row []string, cols model.ColumnMap) model.MetricsSnapshot {
	var s model.MetricsSnapshot
	if v, ok := utils.ParseNumber(cell(row, cols.TotalSales)); ok {
		s.TotalSales = int(math.Round(v))
	}
	if v, ok := utils.ParseNumber(cell(row, cols.AvgPrice)); ok {
		s.AveragePrice = v
	}
	if v, ok := utils.ParseNumber(cell(row, cols.DaysOnMarket)); ok {
		s.DaysOnMarket = v
	}
	if v, ok := utils.ParseNumber(cell(row, cols.TotalOffices)); ok {
		s.TotalOffices = int(math.Round(v))
	}
	if v, ok := utils.ParseNumber(cell(row, cols.ContributingAgents)); ok {
		s.ContributingAgents = int(math.Round(v))
	}
	// optional columns: skipped entirely when absent or non-positive
	if cols.PricePerSqft != model.ColAbsent {
		if v, ok := utils.ParseNumber(cell(row, cols.PricePerSqft)); ok && v > 0 {
			s.PricePerSqft = v
		}
	}
	if cols.ClosedListRatio != model.ColAbsent {
		if v, ok := utils.ParseNumber(cell(row, cols.ClosedListRatio)); ok && v > 0 {
			if v < 1 {
				v *= 100 // fraction -> percentage
			}
			s.ClosedListRatio = v
		}
	}
	return s
}

// Rank sorts descending by share, rewrites known brand aliases, and
// truncates to top N. Records keeps the FULL sorted list so callers can
// truncate again at other N values.
func Rank(recs []model.BrokerageRecord, opt model.Options) model.Result {
	sorted := make([]model.BrokerageRecord, len(recs))
	copy(sorted, recs)
	sortByShare(sorted)

	// display-label rewrite only; shares are never altered here
	for i := range sorted {
		sorted[i].Brand = canonicalBrand(sorted[i].Brand, opt)
	}
	// guard against reordering ambiguity from the relabel; stable sort keeps ties in place
	sortByShare(sorted)

	topN := opt.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	top := sorted
	if len(top) > topN {
		top = top[:topN]
	}

	return model.Result{
		Records: sorted,
		Top:     chartData(top),
		Full:    chartData(sorted),
		Derived: derive(sorted, opt),
	}
}

func sortByShare(recs []model.BrokerageRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MarketShare > recs[j].MarketShare
	})
}

func canonicalBrand(b string, opt model.Options) string {
	l := strings.ToLower(b)
	sub := strings.ToLower(opt.Subject)
	switch {
	case sub != "" && opt.SubjectLabel != "" && strings.Contains(l, sub):
		return opt.SubjectLabel
	case strings.Contains(l, "homesmart") || strings.Contains(l, "home smart"):
		return "HomeSmart"
	}
	return b
}

func chartData(recs []model.BrokerageRecord) model.ChartData {
	cd := model.ChartData{
		Labels: make([]string, len(recs)),
		Values: make([]float64, len(recs)),
	}
	for i, r := range recs {
		cd.Labels[i] = r.Brand
		cd.Values[i] = r.MarketShare
	}
	return cd
}

// derive computes the summary metrics over the full sorted list:
// subject's share, the best non-subject share, their gap, and how much
// of the tracked total the top 3 hold. Without a subject match the
// leader degrades to rank 1 so the gap still reads leader vs runner-up.
func derive(sorted []model.BrokerageRecord, opt model.Options) model.Derived {
	var d model.Derived
	if len(sorted) == 0 {
		return d
	}
	sub := strings.ToLower(strings.TrimSpace(opt.Subject))

	leaderIdx := -1
	if sub != "" {
		for i, r := range sorted {
			if strings.Contains(strings.ToLower(r.Brand), sub) {
				leaderIdx = i
				break
			}
		}
	}
	if leaderIdx == -1 {
		leaderIdx = 0
	}
	d.LeaderShare = sorted[leaderIdx].MarketShare

	for i, r := range sorted {
		if i == leaderIdx {
			continue
		}
		if sub == "" || !strings.Contains(strings.ToLower(r.Brand), sub) {
			d.RunnerUpShare = r.MarketShare
			break
		}
	}
	d.Gap = utils.Round1(d.LeaderShare - d.RunnerUpShare)

	var total, top3 float64
	for i, r := range sorted {
		total += r.MarketShare
		if i < 3 {
			top3 += r.MarketShare
		}
	}
	if total > 0 {
		d.Top3Concentration = utils.Round1(top3 / total * 100)
	}
	return d
}
