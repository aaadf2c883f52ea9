package board

// Step is one resolved cascade iteration, published for animated callers.
type Step struct {
	Index   int     // 0-based iteration number
	Cleared []Coord // Cells removed this iteration
	Points  int     // Points earned this iteration
	Grid    Grid    // Board after gravity and refill
}

// SettleResult is the outcome of driving a grid to a fixed point.
type SettleResult struct {
	Grid   Grid
	Points int
	Steps  []Step
	Stable bool // False when a round cap stopped the loop with runs left
}

// Settle repeatedly removes matches, compacts and refills until no run of
// three remains, accumulating points. observe, when non-nil, is called with
// every intermediate step as soon as it is produced.
//
// Refill is random, so there is no fixed iteration bound; in practice
// cascades die out after a handful of rounds.
func Settle(g Grid, palette Palette, rng RandSource, observe func(Step)) SettleResult {
	return SettleBounded(g, palette, rng, 0, observe)
}

// SettleBounded is Settle with at most maxRounds cascade iterations; a
// non-positive maxRounds means no cap. When the cap is hit the last grid is
// returned with Stable false.
func SettleBounded(g Grid, palette Palette, rng RandSource, maxRounds int, observe func(Step)) SettleResult {
	res := SettleResult{Grid: g.Clone()}
	for i := 0; ; i++ {
		m := DetectMatches(res.Grid)
		if !m.Found() {
			res.Stable = true
			return res
		}
		if maxRounds > 0 && i >= maxRounds {
			return res
		}
		res.Grid = ApplyGravityAndRefill(res.Grid, m.Cells, palette, rng)
		res.Points += m.Points

		step := Step{Index: i, Cleared: m.Cells, Points: m.Points, Grid: res.Grid.Clone()}
		res.Steps = append(res.Steps, step)
		if observe != nil {
			observe(step)
		}
	}
}
