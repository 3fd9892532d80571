package game

import "golang.org/x/exp/rand"

// DealHands shuffles the deck and deals 3-2-3 starting left of the dealer,
// dealer served last, as at the table.
func DealHands(rng *rand.Rand, dealer Seat) [4]CardSet {
	deck := make([]Card, 32)
	for i := range deck {
		deck[i] = Card(i)
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	var hands [4]CardSet
	next := 0
	for _, batch := range []int{3, 2, 3} {
		for i := 0; i < 4; i++ {
			seat := (dealer.Next() + Seat(i)) % 4
			for k := 0; k < batch; k++ {
				hands[seat] = hands[seat].Add(deck[next])
				next++
			}
		}
	}
	return hands
}
