package searcher

import (
	"contree/game"
)

// Evaluator scores a determinized deal midway, instead of playing it out.
// The policy weights the legal moves of the seat to act (higher is better,
// unnormalized); the value estimates the final point share of that seat's
// team, in [0,1]. An error makes the searcher fall back to a random
// playout for that line.
type Evaluator interface {
	Evaluate(gs *game.GameState, seat game.Seat) (policy map[game.Move]float64, value float64, err error)
}

// Heuristic is the default evaluator: banked trick points plus the
// remaining card points prorated by the share each side holds in hand.
// Cheap, stateless, and safe on any phase of a deal.
type Heuristic struct{}

func (Heuristic) Evaluate(gs *game.GameState, seat game.Seat) (map[game.Move]float64, float64, error) {
	team := seat.Team()
	rules := gs.Rules
	trump := gs.Contract.Trump

	var banked [2]int
	for i := range gs.Tricks {
		t := &gs.Tricks[i]
		banked[t.Winner(rules, trump).Team()] += t.Points(rules, trump)
	}

	remaining := 0
	var inHand [2]float64
	for s := game.Seat(0); s < 4; s++ {
		for _, c := range gs.Hands[s].Cards() {
			remaining += rules.CardPoints(c, trump)
			// Weight by point value plus rank, so a bare trump jack counts
			// for more than a ten of a dead suit.
			inHand[s.Team()] += float64(rules.CardPoints(c, trump)) + float64(rules.CardOrder(c, trump))/8
		}
	}

	holding := 0.5
	if total := inHand[0] + inHand[1]; total > 0 {
		holding = inHand[team] / total
	}
	total := float64(banked[0] + banked[1] + remaining + rules.LastTrickBonus)
	if total == 0 {
		return nil, 0.5, nil
	}
	value := (float64(banked[team]) + holding*(float64(remaining)+float64(rules.LastTrickBonus))) / total

	policy := make(map[game.Move]float64)
	for _, m := range gs.LegalMovesFor(seat) {
		switch m.Kind {
		case game.MovePlay:
			policy[m] = 1 + float64(rules.CardOrder(m.Card, trump))
		default:
			policy[m] = 1
		}
	}
	return policy, value, nil
}
