// Package standings orders participants by their final cumulative total.
package standings

import (
	"cmp"
	"slices"

	"github.com/osvo/club-world-cup-tracker/internal/domain/model"
)

// Build ranks participants by the last value of their series.
//
// Ties keep participant enumeration order and ranks are positional (1..n),
// never shared. Participants with no series count as 0.
func Build(series []model.ParticipantSeries, participants []model.Participant) []model.Standing {
	finals := make(map[model.Participant]int, len(series))
	for _, s := range series {
		finals[s.Participant] = s.Final()
	}

	out := make([]model.Standing, len(participants))
	for i, p := range participants {
		out[i] = model.Standing{Participant: p, Total: finals[p]}
	}

	slices.SortStableFunc(out, func(a, b model.Standing) int {
		return cmp.Compare(b.Total, a.Total)
	})

	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
