package game

// SeatMove pairs an action with the seat that took it.
type SeatMove struct {
	Seat Seat
	Move Move
}

// Auction is the bidding record of one deal. HighValue is zero until a
// contract bid lands.
type Auction struct {
	History     []SeatMove
	HighValue   BidValue
	HighTrump   TrumpMode
	HighSeat    Seat
	Coinched    bool
	Surcoinched bool
	passes      int // consecutive passes since the last non-pass action
}

func (a *Auction) hasBid() bool { return a.HighValue != 0 }

// Multiplier is 1, 2 or 4 depending on coinche state.
func (a *Auction) Multiplier() int {
	switch {
	case a.Surcoinched:
		return 4
	case a.Coinched:
		return 2
	default:
		return 1
	}
}

// record appends the action and updates the running auction state. Closure
// is decided by the caller from closed/voided.
func (a *Auction) record(seat Seat, m Move) {
	a.History = append(a.History, SeatMove{Seat: seat, Move: m})
	switch m.Kind {
	case MovePass:
		a.passes++
	case MoveBid:
		a.HighValue = m.Value
		a.HighTrump = m.Trump
		a.HighSeat = seat
		a.passes = 0
	case MoveCoinche:
		a.Coinched = true
		a.passes = 0
	case MoveSurcoinche:
		a.Surcoinched = true
		a.passes = 0
	}
}

// voided reports the all-pass opening: four passes and no bid.
func (a *Auction) voided() bool {
	return !a.hasBid() && !a.Coinched && a.passes >= 4
}

// closed reports a settled auction: a surcoinche ends it at once, otherwise
// three consecutive passes after the last non-pass action.
func (a *Auction) closed() bool {
	if !a.hasBid() {
		return false
	}
	return a.Surcoinched || a.passes >= 3
}
