package game

import (
	"math/bits"
	"strings"
)

// CardSet is a bitset over the 32-card deck, one bit per Card value.
type CardSet uint32

// FullDeck has all 32 cards set.
const FullDeck CardSet = 0xFFFFFFFF

func (cs CardSet) Has(c Card) bool     { return cs&(1<<c) != 0 }
func (cs CardSet) Add(c Card) CardSet  { return cs | 1<<c }
func (cs CardSet) Drop(c Card) CardSet { return cs &^ (1 << c) }
func (cs CardSet) Len() int            { return bits.OnesCount32(uint32(cs)) }
func (cs CardSet) Empty() bool         { return cs == 0 }

// BySuit keeps only the cards of suit s.
func (cs CardSet) BySuit(s Suit) CardSet {
	return cs & (0xFF << (8 * uint32(s)))
}

// Cards returns the members in ascending Card order.
func (cs CardSet) Cards() []Card {
	out := make([]Card, 0, cs.Len())
	for v := uint32(cs); v != 0; v &= v - 1 {
		out = append(out, Card(bits.TrailingZeros32(v)))
	}
	return out
}

func NewCardSet(cards ...Card) CardSet {
	var cs CardSet
	for _, c := range cards {
		cs = cs.Add(c)
	}
	return cs
}

func (cs CardSet) String() string {
	parts := make([]string, 0, cs.Len())
	for _, c := range cs.Cards() {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " ")
}
