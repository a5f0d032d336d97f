package highlights

import (
	"sort"

	"github.com/forPelevin/viralcut/internal/pipeerr"
	"github.com/forPelevin/viralcut/internal/types"
)

// SelectTop greedily keeps the highest scoring candidates that do not overlap an
// already kept one, up to limit, and returns them in timeline order.
// Equal scores keep their input order.
func SelectTop(cands []types.ClipCandidate, limit int) ([]types.ClipCandidate, error) {
	if limit <= 0 {
		return nil, pipeerr.Newf(pipeerr.InvalidConfiguration, "max clips must be greater than zero")
	}
	if len(cands) == 0 {
		return nil, pipeerr.Newf(pipeerr.NoCandidates, "unable to identify interesting moments from transcript")
	}

	ordered := append([]types.ClipCandidate(nil), cands...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	selected := make([]types.ClipCandidate, 0, limit)
	for _, c := range ordered {
		if overlapsAny(c, selected) {
			continue
		}
		selected = append(selected, c)
		if len(selected) >= limit {
			break
		}
	}
	if len(selected) == 0 {
		return nil, pipeerr.Newf(pipeerr.NoHighScoringSegments, "transcript did not contain any high scoring segments")
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Start < selected[j].Start
	})
	return selected, nil
}

func overlapsAny(c types.ClipCandidate, kept []types.ClipCandidate) bool {
	w := c.Window()
	for _, k := range kept {
		if w.Overlaps(k.Window()) {
			return true
		}
	}
	return false
}
