package schema

import (
	"strings"

	"brokershare-service/internal/marketshare/model"
)

const (
	// a header row is not always row 0; scan a bounded window
	headerScanRows = 10

	// the two known market-share column conventions
	mktPctCol      = 8  // "Mkt %"
	volPerAgentCol = 12 // "$ Vol Per Prod Agent"
)

// share header match strength; a weaker tier never overwrites a stronger one
const (
	shareTierNone    = iota
	shareTierGeneric // "share", "percentage", "%"
	shareTierNamed   // "market share", "mkt share"
	shareTierExact   // "market share (#)", "market share (%)"
)

// Defaults: positional fallbacks observed across brokerage ranking
// exports. Used whenever header text is absent or unrecognized.
func Defaults() model.ColumnMap {
	return model.ColumnMap{
		Brand:              1,
		MarketShare:        12,
		TotalSales:         6,
		AvgPrice:           10,
		DaysOnMarket:       9,
		PricePerSqft:       model.ColAbsent,
		ClosedListRatio:    model.ColAbsent,
		TotalOffices:       19,
		ContributingAgents: 19,
	}
}

// Detect resolves column indices from header text in the first rows.
// It never fails: anything unrecognized keeps its positional default.
// Later rows overwrite earlier matches for the same field (last match
// wins within the window), except the market-share column once it is
// locked to one of the two known conventions. A "Mkt %" match at its
// fixed column outranks a volume-column lock from any row, so that
// check keeps running until it hits.
func Detect(rows [][]string) model.ColumnMap {
	cols := Defaults()
	locked := false
	lockedTo8 := false
	shareTier := shareTierNone

	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for r := 0; r < limit; r++ {
		row := rows[r]

		// percentage convention first: "Mkt %" at its fixed column
		if !lockedTo8 && mktPctCol < len(row) {
			t := norm(row[mktPctCol])
			if t == "mkt %" || (strings.Contains(t, "market") && strings.Contains(t, "%")) {
				cols.MarketShare = mktPctCol
				lockedTo8 = true
				locked = true
			}
		}
		// then the volume convention at its fixed column
		if !locked && volPerAgentCol < len(row) {
			t := norm(row[volPerAgentCol])
			if strings.Contains(t, "$ vol per prod agent") ||
				strings.Contains(t, "vol per prod") ||
				strings.Contains(t, "per agent") {
				cols.MarketShare = volPerAgentCol
				locked = true
			}
		}

		for c, cell := range row {
			t := norm(cell)
			if t == "" {
				continue
			}
			if isBrand(t) {
				cols.Brand = c
			}
			if isTotalSales(t) {
				cols.TotalSales = c
			}
			if isAvgPrice(t) {
				cols.AvgPrice = c
			}
			if isDaysOnMarket(t) {
				cols.DaysOnMarket = c
			}
			if isPricePerSqft(t) {
				cols.PricePerSqft = c
			}
			if isClosedListRatio(t) {
				cols.ClosedListRatio = c
			}
			if isTotalOffices(t) {
				cols.TotalOffices = c
			}
			if isContributingAgents(t) {
				cols.ContributingAgents = c
			}
			if !locked {
				if tier := shareMatchTier(t); tier != shareTierNone && tier >= shareTier {
					cols.MarketShare = c
					shareTier = tier
				}
			}
		}
	}
	return cols
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func isBrand(t string) bool {
	return strings.Contains(t, "brand") || strings.Contains(t, "company") ||
		strings.Contains(t, "brokerage") || strings.Contains(t, "firm") ||
		t == "name"
}

func isTotalSales(t string) bool {
	return t == "total #" ||
		(strings.Contains(t, "total") && strings.Contains(t, "#"))
}

func isAvgPrice(t string) bool {
	return t == "avg price" ||
		(strings.Contains(t, "avg") && strings.Contains(t, "price")) ||
		(strings.Contains(t, "average") && strings.Contains(t, "sales"))
}

func isDaysOnMarket(t string) bool {
	return t == "dom" || strings.Contains(t, "days on market") ||
		(strings.Contains(t, "days") && strings.Contains(t, "market"))
}

func isPricePerSqft(t string) bool {
	return t == "price/sqft" ||
		strings.Contains(t, "price per sq") ||
		strings.Contains(t, "price/sq") ||
		strings.Contains(t, "price per foot") ||
		(strings.Contains(t, "price") && strings.Contains(t, "sqft"))
}

func isClosedListRatio(t string) bool {
	return t == "closed/list price" ||
		(strings.Contains(t, "closed") && strings.Contains(t, "list")) ||
		(strings.Contains(t, "sale") && strings.Contains(t, "list"))
}

func isTotalOffices(t string) bool {
	return t == "# offices" || t == "total offices" ||
		(strings.Contains(t, "office") &&
			(strings.Contains(t, "total") || strings.Contains(t, "#")))
}

func isContributingAgents(t string) bool {
	return t == "contributing agents" ||
		(strings.Contains(t, "contributing") && strings.Contains(t, "agent"))
}

func shareMatchTier(t string) int {
	switch {
	case t == "market share (#)" || t == "market share (%)":
		return shareTierExact
	case strings.Contains(t, "market share") || strings.Contains(t, "mkt share"):
		return shareTierNamed
	case strings.Contains(t, "share") || strings.Contains(t, "percentage") ||
		strings.Contains(t, "%"):
		return shareTierGeneric
	}
	return shareTierNone
}
