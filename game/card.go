package game

import "fmt"

// Suit is one of the four suits of the 32-card piquet deck.
type Suit uint8

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

var suitGlyphs = [4]string{"♠", "♥", "♦", "♣"}

func (s Suit) String() string {
	if s > Clubs {
		return "?"
	}
	return suitGlyphs[s]
}

// Rank is a card rank. The constant order is the storage order, not the
// trick-taking order; ordering always goes through the rules tables.
type Rank uint8

const (
	Seven Rank = iota
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

var rankNames = [8]string{"7", "8", "9", "10", "J", "Q", "K", "A"}

func (r Rank) String() string {
	if r > Ace {
		return "?"
	}
	return rankNames[r]
}

// Card is a small-integer encoding of suit and rank: 8*suit + rank.
// Values range over 0..31 and double as bit positions in a CardSet.
type Card uint8

func NewCard(s Suit, r Rank) Card {
	return Card(uint8(s)*8 + uint8(r))
}

func (c Card) Suit() Suit { return Suit(c / 8) }
func (c Card) Rank() Rank { return Rank(c % 8) }

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank(), c.Suit())
}

// TrumpMode is the trump announcement of a contract: a single suit,
// no-trump, or all-trump.
type TrumpMode uint8

const (
	TrumpSpades TrumpMode = iota
	TrumpHearts
	TrumpDiamonds
	TrumpClubs
	NoTrump
	AllTrump
)

func (m TrumpMode) String() string {
	switch m {
	case NoTrump:
		return "no-trump"
	case AllTrump:
		return "all-trump"
	default:
		return Suit(m).String()
	}
}

// IsTrump reports whether cards of suit s rank and score as trump under m.
func (m TrumpMode) IsTrump(s Suit) bool {
	switch m {
	case NoTrump:
		return false
	case AllTrump:
		return true
	default:
		return Suit(m) == s
	}
}

// Seat identifies one of the four positions. Seats 0 and 2 form team 0,
// seats 1 and 3 form team 1.
type Seat uint8

// Team is a partnership index, 0 or 1.
type Team uint8

func (s Seat) Next() Seat    { return (s + 1) % 4 }
func (s Seat) Partner() Seat { return (s + 2) % 4 }
func (s Seat) Team() Team    { return Team(s % 2) }

func (t Team) Other() Team { return 1 - t }

func (s Seat) String() string {
	return [4]string{"North", "East", "South", "West"}[s%4]
}
