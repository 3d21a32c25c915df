package analysis

import "sort"

// RankWorstCycles orders cycle statistics from the lowest inflation-adjusted
// ending balance up and keeps at most limit entries (all when limit <= 0).
// Ties keep start-year order.
func RankWorstCycles(stats []CycleStats, limit int) []CycleStats {
	out := append([]CycleStats(nil), stats...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Balance.EndingInflAdj < out[j].Balance.EndingInflAdj
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
