// Package determinize fills the hidden hands of an observed deal with a
// random assignment that is consistent with everything the observer has
// seen: played cards, hand sizes, and the voids that failed obligations
// betray.
package determinize

import (
	"errors"

	"golang.org/x/exp/rand"

	"contree/game"
)

// ErrInfeasible means no assignment of the unseen cards satisfies the
// observed play. A legal history always admits the true deal, so this only
// fires on corrupted or hand-crafted inputs.
var ErrInfeasible = errors.New("determinize: no deal consistent with observed play")

// maxShuffleTries bounds the uniform rejection loop before falling back to
// backtracking. Constraints accumulate late in a deal, when few cards are
// left and backtracking is cheap.
const maxShuffleTries = 64

// seatConstraint is what replaying the public history pins down for one
// hidden seat: the cards it may still hold and how many it must hold.
type seatConstraint struct {
	allowed game.CardSet
	need    int
}

// Sample returns a copy of gs with every hand but the observer's replaced
// by a random consistent assignment. The observer's own hand and all public
// state are untouched, so legal moves at the root are identical across
// samples.
func Sample(gs *game.GameState, observer game.Seat, rng *rand.Rand) (*game.GameState, error) {
	next := gs.Observe(observer)
	if gs.Terminal() {
		return next, nil
	}

	cons, unseen := constraints(gs, observer)
	if total := cons[0].need + cons[1].need + cons[2].need + cons[3].need; total != unseen.Len() {
		return nil, ErrInfeasible
	}

	cards := unseen.Cards()
	for try := 0; try < maxShuffleTries; try++ {
		rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
		if hands, ok := tryDeal(cards, cons); ok {
			fill(next, observer, hands)
			return next, nil
		}
	}

	hands, ok := backtrack(cards, cons, rng)
	if !ok {
		return nil, ErrInfeasible
	}
	fill(next, observer, hands)
	return next, nil
}

func fill(gs *game.GameState, observer game.Seat, hands [4]game.CardSet) {
	for s := game.Seat(0); s < 4; s++ {
		if s != observer {
			gs.Hands[s] = hands[s]
		}
	}
}

// tryDeal cuts the shuffled pool into the required hand sizes and accepts
// the cut only if every card lands on a seat allowed to hold it. Accepted
// deals are uniform over the consistent assignments.
func tryDeal(cards []game.Card, cons [4]seatConstraint) ([4]game.CardSet, bool) {
	var hands [4]game.CardSet
	i := 0
	for s := range cons {
		for k := 0; k < cons[s].need; k++ {
			c := cards[i]
			i++
			if !cons[s].allowed.Has(c) {
				return hands, false
			}
			hands[s] = hands[s].Add(c)
		}
	}
	return hands, true
}

// backtrack solves the assignment exactly, most constrained card first.
// Seat order is shuffled per card so repeated fallbacks do not collapse
// onto one deal.
func backtrack(cards []game.Card, cons [4]seatConstraint, rng *rand.Rand) ([4]game.CardSet, bool) {
	options := func(c game.Card) int {
		n := 0
		for s := range cons {
			if cons[s].need > 0 && cons[s].allowed.Has(c) {
				n++
			}
		}
		return n
	}
	for i := 1; i < len(cards); i++ {
		for j := i; j > 0 && options(cards[j]) < options(cards[j-1]); j-- {
			cards[j], cards[j-1] = cards[j-1], cards[j]
		}
	}

	var hands [4]game.CardSet
	var place func(i int) bool
	place = func(i int) bool {
		if i == len(cards) {
			return true
		}
		c := cards[i]
		order := [4]int{0, 1, 2, 3}
		rng.Shuffle(4, func(a, b int) { order[a], order[b] = order[b], order[a] })
		for _, s := range order {
			if cons[s].need == 0 || !cons[s].allowed.Has(c) {
				continue
			}
			cons[s].need--
			hands[s] = hands[s].Add(c)
			if place(i + 1) {
				return true
			}
			hands[s] = hands[s].Drop(c)
			cons[s].need++
		}
		return false
	}
	return hands, place(0)
}

// constraints replays the public trick history and derives, for each hidden
// seat, the pool of cards it may hold. Three inferences apply:
//
//   - a seat that did not follow the led suit is void in it;
//   - a seat that neither followed nor trumped a plain lead is also void in
//     trump, unless its partner was master and the discard variant waives
//     the obligation;
//   - a seat that trumped, or followed a trump lead, below the best trump
//     so far holds nothing above that trump.
func constraints(gs *game.GameState, observer game.Seat) ([4]seatConstraint, game.CardSet) {
	played := gs.PlayedCards()
	unseen := game.FullDeck &^ played &^ gs.Hands[observer]

	var cons [4]seatConstraint
	var playedBy [4]int
	for s := range cons {
		cons[s].allowed = unseen
	}

	rules := gs.Rules
	trump := gs.Contract.Trump
	replay := func(t *game.Trick) {
		if len(t.Cards) == 0 {
			return
		}
		led := t.Cards[0].Suit()
		trumpLed := trump.IsTrump(led)
		playedBy[t.Leader]++
		winner := t.Leader
		winOrder := rules.CardOrder(t.Cards[0], trump)
		winTrumped := false // winner holds the trick via an off-suit trump

		for j := 1; j < len(t.Cards); j++ {
			c := t.Cards[j]
			seat := t.SeatAt(j)
			playedBy[seat]++

			// The overtrump threshold the seat was obliged to beat.
			bestTrump := -1
			if trumpLed || winTrumped {
				bestTrump = winOrder
			}
			if seat != observer {
				infer(&cons[seat], rules, trump, led, c, bestTrump, winner == seat.Partner())
			}

			// Off-suit trumps only take the trick in the single-suit modes.
			ruff := trump != game.AllTrump && trump != game.NoTrump &&
				c.Suit() == game.Suit(trump) && c.Suit() != led
			switch {
			case ruff && (!winTrumped || rules.CardOrder(c, trump) > winOrder):
				winner, winOrder, winTrumped = seat, rules.CardOrder(c, trump), true
			case c.Suit() == led && !winTrumped && rules.CardOrder(c, trump) > winOrder:
				winner, winOrder = seat, rules.CardOrder(c, trump)
			}
		}
	}
	for i := range gs.Tricks {
		replay(&gs.Tricks[i])
	}
	replay(&gs.Current)

	for s := range cons {
		if game.Seat(s) == observer {
			cons[s].allowed = 0
			cons[s].need = 0
			continue
		}
		cons[s].need = 8 - playedBy[s]
	}
	return cons, unseen
}

// infer tightens one hidden seat's pool from a single observed card.
func infer(sc *seatConstraint, rules game.Rules, trump game.TrumpMode, led game.Suit, c game.Card, bestTrump int, partnerMaster bool) {
	singleSuit := trump != game.NoTrump && trump != game.AllTrump

	if c.Suit() != led {
		// Failed to follow: void in the led suit.
		sc.allowed &^= sc.allowed.BySuit(led)
		if singleSuit && led != game.Suit(trump) {
			switch {
			case c.Suit() != game.Suit(trump):
				// Discarded instead of ruffing: void in trump too, unless
				// the partner-master variant waived the obligation.
				if !(partnerMaster && rules.DiscardIfPartnerMaster) {
					sc.allowed &^= sc.allowed.BySuit(game.Suit(trump))
				}
			case bestTrump >= 0 && rules.CardOrder(c, trump) < bestTrump && !partnerMaster:
				// Under-ruffed when obliged to overtrump: nothing higher.
				capSuit(sc, rules, trump, game.Suit(trump), bestTrump)
			}
		}
		return
	}

	if trump.IsTrump(led) && bestTrump >= 0 && rules.CardOrder(c, trump) < bestTrump {
		// Trump led and could not beat the best: nothing higher in it.
		capSuit(sc, rules, trump, led, bestTrump)
	}
}

// capSuit drops every card of the suit ranked above best from the pool.
func capSuit(sc *seatConstraint, rules game.Rules, trump game.TrumpMode, suit game.Suit, best int) {
	for _, c := range sc.allowed.BySuit(suit).Cards() {
		if rules.CardOrder(c, trump) > best {
			sc.allowed = sc.allowed.Drop(c)
		}
	}
}
