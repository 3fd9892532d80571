package game

import "fmt"

// MoveKind discriminates the five action types of a deal.
type MoveKind uint8

const (
	MovePass MoveKind = iota
	MoveBid
	MoveCoinche
	MoveSurcoinche
	MovePlay
)

// Move is one action by the seat to act. It is a comparable value type so it
// can key policy maps and tree-node children directly.
type Move struct {
	Kind  MoveKind
	Value BidValue  // MoveBid only
	Trump TrumpMode // MoveBid only
	Card  Card      // MovePlay only
}

func Pass() Move { return Move{Kind: MovePass} }

func Bid(v BidValue, t TrumpMode) Move { return Move{Kind: MoveBid, Value: v, Trump: t} }

func CoincheMove() Move { return Move{Kind: MoveCoinche} }

func SurcoincheMove() Move { return Move{Kind: MoveSurcoinche} }

func Play(c Card) Move { return Move{Kind: MovePlay, Card: c} }

func (m Move) String() string {
	switch m.Kind {
	case MovePass:
		return "pass"
	case MoveBid:
		return fmt.Sprintf("bid %s %s", m.Value, m.Trump)
	case MoveCoinche:
		return "coinche"
	case MoveSurcoinche:
		return "surcoinche"
	case MovePlay:
		return fmt.Sprintf("play %s", m.Card)
	default:
		return "?"
	}
}

// IllegalActionError reports an action rejected by Apply. The state it was
// applied to is unchanged; the caller should retry with a legal action.
type IllegalActionError struct {
	Seat   Seat
	Move   Move
	Reason string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal action by %s: %s (%s)", e.Seat, e.Move, e.Reason)
}
