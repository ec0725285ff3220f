package table

import "sort"

// computeSidePots partitions total contributions into ordered pot levels.
// Each level's Eligible set is every non-folded contributor whose
// contribution reaches that level's threshold, matching the classic
// "shortest stack first" side-pot construction: sort distinct
// contribution amounts ascending, and for each threshold carve out
// (threshold - previous threshold) * (number of contributors at or
// above threshold) as one level.
func computeSidePots(contributions map[string]int64, folded map[string]bool) []PotLevel {
	thresholds := make([]int64, 0, len(contributions))
	seen := map[int64]bool{}
	for _, amt := range contributions {
		if amt > 0 && !seen[amt] {
			seen[amt] = true
			thresholds = append(thresholds, amt)
		}
	}
	sort.Slice(thresholds, func(i, j int) bool { return thresholds[i] < thresholds[j] })

	var levels []PotLevel
	var prev int64
	for _, threshold := range thresholds {
		slice := threshold - prev
		if slice <= 0 {
			prev = threshold
			continue
		}
		eligible := map[string]bool{}
		var contributors int64
		for userID, amt := range contributions {
			if amt >= threshold {
				contributors++
				if !folded[userID] {
					eligible[userID] = true
				}
			}
		}
		if contributors > 0 {
			levels = append(levels, PotLevel{
				Amount:   slice * contributors,
				Eligible: eligible,
			})
		}
		prev = threshold
	}
	return levels
}
