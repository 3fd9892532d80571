package game

// Trick is up to four cards in play order. The seat of Cards[i] is
// Leader+i; a trick is complete at four cards.
type Trick struct {
	Leader Seat
	Cards  []Card
}

func (t *Trick) Complete() bool { return len(t.Cards) == 4 }

func (t *Trick) SeatAt(i int) Seat { return (t.Leader + Seat(i)) % 4 }

// LedSuit is only meaningful once at least one card is down.
func (t *Trick) LedSuit() Suit {
	return t.Cards[0].Suit()
}

// WinnerIndex returns the index of the current winning play: the strongest
// trump if any trump is down, otherwise the strongest card of the led suit.
func (t *Trick) WinnerIndex(r Rules, m TrumpMode) int {
	best := 0
	led := t.LedSuit()
	for i := 1; i < len(t.Cards); i++ {
		c, b := t.Cards[i], t.Cards[best]
		cTrump, bTrump := m.IsTrump(c.Suit()), m.IsTrump(b.Suit())
		switch {
		case cTrump && !bTrump:
			best = i
		case cTrump == bTrump && c.Suit() == b.Suit():
			if r.CardOrder(c, m) > r.CardOrder(b, m) {
				best = i
			}
		case !cTrump && !bTrump && b.Suit() != led && c.Suit() == led:
			best = i
		}
	}
	return best
}

// Winner is the seat holding the current winning play.
func (t *Trick) Winner(r Rules, m TrumpMode) Seat {
	return t.SeatAt(t.WinnerIndex(r, m))
}

// Points sums the card values of the trick under the contract's trump mode.
func (t *Trick) Points(r Rules, m TrumpMode) int {
	total := 0
	for _, c := range t.Cards {
		total += r.CardPoints(c, m)
	}
	return total
}

// highestTrump returns the best trump order played so far and whether any
// trump is down. Under all-trump only the led suit counts as the trump race.
func (t *Trick) highestTrump(r Rules, m TrumpMode) (order int, found bool) {
	for _, c := range t.Cards {
		if !m.IsTrump(c.Suit()) {
			continue
		}
		if m == AllTrump && c.Suit() != t.LedSuit() {
			continue
		}
		if o := r.CardOrder(c, m); !found || o > order {
			order, found = o, true
		}
	}
	return order, found
}

func (t *Trick) clone() Trick {
	cards := make([]Card, len(t.Cards))
	copy(cards, t.Cards)
	return Trick{Leader: t.Leader, Cards: cards}
}
