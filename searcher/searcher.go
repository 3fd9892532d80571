// Package searcher chooses moves by Monte Carlo tree search over
// determinized deals: the hidden hands are sampled, each sample is searched
// with an independent UCT tree, and the per-move statistics are pooled at
// the root before committing to a move.
package searcher

import "math"

const C_SQUARED = 2.0 // Exploration constant

const WIN = 1.0
const LOSS = 0.0

func ucb1(rewards float64, visits int, c2LnN float64) float64 {
	// Prioritize unexplored nodes
	if visits == 0 {
		return math.Inf(1)
	}
	return rewards/float64(visits) + math.Sqrt(c2LnN/float64(visits))
}
