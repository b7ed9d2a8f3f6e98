package api

import (
	"fmt"

	"github.com/osvo/club-world-cup-tracker/internal/domain/types"
)

// seriesColor is the line colour of the participant in column position i.
func seriesColor(i int) string {
	return fmt.Sprintf("hsl(%d, 70%%, 50%%)", (i*57)%360)
}

// standingColor shades total from red at lo to green at hi.
func standingColor(total, lo, hi int) string {
	hue := 120
	if hi > lo {
		hue = 120 * (total - lo) / (hi - lo)
	}
	return fmt.Sprintf("hsl(%d, 70%%, 45%%)", hue)
}

// colorSeries returns a copy of series with line colours set.
func colorSeries(series []types.SeriesEntry) []types.SeriesEntry {
	out := make([]types.SeriesEntry, len(series))
	for i, s := range series {
		s.Color = seriesColor(i)
		out[i] = s
	}
	return out
}

// colorStandings returns a copy of entries shaded over their total range.
func colorStandings(entries []types.StandingEntry) []types.StandingEntry {
	out := make([]types.StandingEntry, len(entries))
	if len(entries) == 0 {
		return out
	}
	lo, hi := entries[0].Total, entries[0].Total
	for _, e := range entries[1:] {
		lo = min(lo, e.Total)
		hi = max(hi, e.Total)
	}
	for i, e := range entries {
		e.Color = standingColor(e.Total, lo, hi)
		out[i] = e
	}
	return out
}
