package service

import (
	"strings"

	"brokershare-service/internal/utils"
)

// coerceShare converts a raw market-share cell into a percentage.
// Conventions handled, in order:
//   - explicit percent text ("12.5%") parses as-is
//   - a bare value in (0,1) is a decimal fraction, scaled x100
//   - values past 1000 are treated as mis-scaled and divided by 1000.
//     Known-imprecise heuristic: a genuine raw sales count fed into the
//     share field is indistinguishable from a fat-fingered percentage,
//     so the correction is best-effort and logged for diagnostics only.
//
// corrected reports whether the mis-scale division fired.
func coerceShare(raw string) (v float64, ok bool, corrected bool) {
	v, ok = utils.ParseNumber(raw)
	if !ok {
		return 0, false, false
	}
	if !strings.Contains(raw, "%") && v > 0 && v < 1 {
		v *= 100
	}
	if v > 100 && v > 1000 {
		v /= 1000
		corrected = true
	}
	return utils.Round1(v), true, corrected
}

// cell reads a positional cell; any index outside the row is absent.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
