package service

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokershare-service/internal/marketshare/model"
)

func testOpts() model.Options {
	return model.Options{
		Subject:      "sotheby",
		SubjectLabel: "Russ Lyon Sotheby's International Realty",
		TopN:         10,
	}
}

func testCols() model.ColumnMap {
	return model.ColumnMap{
		Brand:              1,
		MarketShare:        2,
		TotalSales:         3,
		AvgPrice:           4,
		DaysOnMarket:       5,
		PricePerSqft:       6,
		ClosedListRatio:    7,
		TotalOffices:       8,
		ContributingAgents: 9,
	}
}

func TestExtractSkipRules(t *testing.T) {
	cols := model.ColumnMap{Brand: 1, MarketShare: 2}
	rows := [][]string{
		{"", "Brand", "Mkt %"},          // header row is never extracted
		{"", "Short Row"},               // shorter than share column
		{"", "", "12.0"},                // empty brand
		{"", "No Number Realty", "n/a"}, // share does not parse
		{"", "  Acme Realty  ", "12.5%"},
	}
	recs := Extract(rows, cols, zerolog.Nop())
	require.Len(t, recs, 1)
	assert.Equal(t, "Acme Realty", recs[0].Brand)
	assert.Equal(t, 12.5, recs[0].MarketShare)
}

func TestExtractCoercionVariants(t *testing.T) {
	cols := model.ColumnMap{Brand: 0, MarketShare: 1}
	rows := [][]string{
		{"Brand", "Share"},
		{"Fraction Realty", "0.156"},
		{"Misscaled Realty", "1560"},
		{"Plain Realty", "9.0"},
	}
	recs := Extract(rows, cols, zerolog.Nop())
	require.Len(t, recs, 3)
	assert.Equal(t, 15.6, recs[0].MarketShare)
	assert.Equal(t, 1.6, recs[1].MarketShare)
	assert.Equal(t, 9.0, recs[2].MarketShare)
}

func TestSubjectMetrics(t *testing.T) {
	rows := [][]string{
		{"#", "Brand", "Mkt %", "Total #", "Avg Price", "DOM", "Price/SqFt", "Closed/List", "# Offices", "Agents"},
		{"1", "Acme Realty", "20.0", "900", "$500,000", "31", "280", "0.95", "12", "400"},
		{"2", "Sotheby's Intl", "15.6", "1,234", "$1,250,000", "42.5", "312", "0.978", "8", "350"},
	}
	snap := SubjectMetrics(rows, testCols(), "sotheby")
	assert.Equal(t, 1234, snap.TotalSales)
	assert.Equal(t, 1250000.0, snap.AveragePrice)
	assert.Equal(t, 42.5, snap.DaysOnMarket)
	assert.Equal(t, 312.0, snap.PricePerSqft)
	assert.InDelta(t, 97.8, snap.ClosedListRatio, 1e-9) // fraction -> percentage
	assert.Equal(t, 8, snap.TotalOffices)
	assert.Equal(t, 350, snap.ContributingAgents)
}

func TestSubjectMetricsOptionalColumnsAbsent(t *testing.T) {
	cols := testCols()
	cols.PricePerSqft = model.ColAbsent
	cols.ClosedListRatio = model.ColAbsent
	rows := [][]string{
		{"#", "Brand", "Mkt %", "Total #", "Avg Price", "DOM", "x", "x", "# Offices", "Agents"},
		{"1", "Sotheby's Intl", "15.6", "1234", "1250000", "42.5", "312", "0.978", "8", "350"},
	}
	snap := SubjectMetrics(rows, cols, "sotheby")
	assert.Zero(t, snap.PricePerSqft)
	assert.Zero(t, snap.ClosedListRatio)
	assert.Equal(t, 1234, snap.TotalSales)
}

func TestSubjectMetricsLastMatchWins(t *testing.T) {
	rows := [][]string{
		{"#", "Brand", "Mkt %", "Total #"},
		{"1", "Sotheby's East", "10.0", "100"},
		{"2", "Sotheby's West", "12.0", "250"},
	}
	cols := model.ColumnMap{Brand: 1, MarketShare: 2, TotalSales: 3,
		PricePerSqft: model.ColAbsent, ClosedListRatio: model.ColAbsent}
	snap := SubjectMetrics(rows, cols, "sotheby")
	assert.Equal(t, 250, snap.TotalSales)
}

func TestRankScenario(t *testing.T) {
	cols := model.ColumnMap{Brand: 1, MarketShare: 8}
	rows := [][]string{
		{"", "Brand", "", "", "", "", "", "", "Mkt %"},
		{"", "Sotheby's Realty", "", "", "", "", "", "", "15.6%"},
		{"", "HomeSmart", "", "", "", "", "", "", "9.0%"},
		{"", "West USA Realty", "", "", "", "", "", "", "7.2%"},
	}
	recs := Extract(rows, cols, zerolog.Nop())
	res := Rank(recs, testOpts())

	require.Equal(t, []string{
		"Russ Lyon Sotheby's International Realty", "HomeSmart", "West USA Realty",
	}, res.Top.Labels)
	assert.Equal(t, []float64{15.6, 9.0, 7.2}, res.Top.Values)
	assert.Equal(t, 15.6, res.Derived.LeaderShare)
	assert.Equal(t, 9.0, res.Derived.RunnerUpShare)
	assert.Equal(t, 6.6, res.Derived.Gap)
	assert.Equal(t, 100.0, res.Derived.Top3Concentration)
}

func TestRankSortsAndTruncates(t *testing.T) {
	var recs []model.BrokerageRecord
	for i := 1; i <= 12; i++ {
		recs = append(recs, model.BrokerageRecord{
			Brand:       fmt.Sprintf("Brokerage %d", i),
			MarketShare: float64(i),
		})
	}
	res := Rank(recs, testOpts())

	require.Len(t, res.Top.Labels, 10)
	require.Len(t, res.Top.Values, 10)
	assert.Len(t, res.Full.Values, 12) // full list survives for other truncations
	for i := 1; i < len(res.Full.Values); i++ {
		assert.GreaterOrEqual(t, res.Full.Values[i-1], res.Full.Values[i])
	}
	assert.Equal(t, 12.0, res.Top.Values[0])
	assert.Equal(t, 3.0, res.Top.Values[9])
}

func TestRankRelabelsWithoutTouchingValues(t *testing.T) {
	recs := []model.BrokerageRecord{
		{Brand: "Home Smart Lifestyles", MarketShare: 9.0},
		{Brand: "sotheby's intl realty", MarketShare: 15.6},
	}
	res := Rank(recs, testOpts())
	assert.Equal(t, []string{"Russ Lyon Sotheby's International Realty", "HomeSmart"}, res.Top.Labels)
	assert.Equal(t, []float64{15.6, 9.0}, res.Top.Values)
}

func TestRankSubjectWithoutLabelKeepsBrandText(t *testing.T) {
	recs := []model.BrokerageRecord{
		{Brand: "Sotheby's Intl", MarketShare: 15.6},
		{Brand: "West USA Realty", MarketShare: 7.2},
	}
	res := Rank(recs, model.Options{Subject: "west", SubjectLabel: "", TopN: 10})

	// no canonical label configured for this subject: original text stays
	assert.Equal(t, []string{"Sotheby's Intl", "West USA Realty"}, res.Top.Labels)
	assert.Equal(t, 7.2, res.Derived.LeaderShare)
	assert.Equal(t, 15.6, res.Derived.RunnerUpShare)
}

func TestRankIdempotentOnOwnOutput(t *testing.T) {
	cols := model.ColumnMap{Brand: 0, MarketShare: 1}
	rows := [][]string{
		{"Brand", "Market Share (%)"},
		{"Sotheby's Realty", "15.6"},
		{"HomeSmart", "9.0"},
		{"West USA Realty", "7.2"},
	}
	first := Rank(Extract(rows, cols, zerolog.Nop()), testOpts())

	again := [][]string{{"Brand", "Market Share (%)"}}
	for i, label := range first.Top.Labels {
		again = append(again, []string{label, strconv.FormatFloat(first.Top.Values[i], 'f', 1, 64)})
	}
	second := Rank(Extract(again, cols, zerolog.Nop()), testOpts())

	assert.Equal(t, first.Top, second.Top)
	assert.Equal(t, first.Derived, second.Derived)
}

func TestRunEmptyInput(t *testing.T) {
	rows := [][]string{{"", "Brand", "Mkt %"}} // header only, zero data rows
	res, snap := Run(rows, model.ColumnMap{Brand: 1, MarketShare: 2}, testOpts(), zerolog.Nop())

	assert.Empty(t, res.Records)
	assert.Empty(t, res.Top.Labels)
	assert.Empty(t, res.Top.Values)
	assert.Equal(t, model.Derived{}, res.Derived)
	assert.Equal(t, model.MetricsSnapshot{}, snap)
}

func TestDeriveWithoutSubjectFallsBackToLeader(t *testing.T) {
	recs := []model.BrokerageRecord{
		{Brand: "Acme Realty", MarketShare: 20.0},
		{Brand: "Beta Realty", MarketShare: 12.0},
	}
	res := Rank(recs, testOpts())
	assert.Equal(t, 20.0, res.Derived.LeaderShare)
	assert.Equal(t, 12.0, res.Derived.RunnerUpShare)
	assert.Equal(t, 8.0, res.Derived.Gap)
}

func TestDeriveSubjectNotRankedFirst(t *testing.T) {
	recs := []model.BrokerageRecord{
		{Brand: "Acme Realty", MarketShare: 20.0},
		{Brand: "Sotheby's Intl", MarketShare: 12.0},
		{Brand: "Beta Realty", MarketShare: 5.0},
	}
	res := Rank(recs, testOpts())
	// subject's share vs the highest-ranked non-subject record
	assert.Equal(t, 12.0, res.Derived.LeaderShare)
	assert.Equal(t, 20.0, res.Derived.RunnerUpShare)
	assert.Equal(t, -8.0, res.Derived.Gap)
}
