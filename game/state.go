package game

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// Phase is the lifecycle stage of one deal.
type Phase uint8

const (
	PhaseBidding Phase = iota
	PhasePlaying
	PhaseScored
	PhaseVoided // all four passed: redeal, no score movement
)

type StateHash uint64

// Contract is a settled auction: the announced value, trump mode and the
// coinche multiplier, owned by the side of Seat.
type Contract struct {
	Seat       Seat
	Value      BidValue
	Trump      TrumpMode
	Multiplier int
}

// State is the contract between the deal state machine and the searcher.
// Implementations are immutable by convention: Play always returns a copy.
type State interface {
	Player() Seat
	LegalMoves() []Move
	Play(Move) State
	Hash() StateHash
	Terminal() bool
	// Result is the per-team reward in [0,1], valid once Terminal.
	Result() [2]float64
}

// GameState is one deal of contrée: hands, auction, contract, trick
// history and the seat to act. A single engine owns and mutates it through
// validated transitions; the searcher works on determinized copies.
type GameState struct {
	Rules    Rules
	Dealer   Seat
	Phase    Phase
	Hands    [4]CardSet
	Auction  Auction
	Contract Contract // zero until the auction closes
	Tricks   []Trick
	Current  Trick
	ToAct    Seat
}

// NewDeal starts the auction with the seat left of the dealer to speak.
func NewDeal(rules Rules, dealer Seat, hands [4]CardSet) *GameState {
	return &GameState{
		Rules:  rules,
		Dealer: dealer,
		Phase:  PhaseBidding,
		Hands:  hands,
		ToAct:  dealer.Next(),
	}
}

func (gs *GameState) Copy() *GameState {
	next := *gs
	next.Auction.History = append([]SeatMove(nil), gs.Auction.History...)
	next.Tricks = make([]Trick, len(gs.Tricks))
	for i := range gs.Tricks {
		next.Tricks[i] = gs.Tricks[i].clone()
	}
	next.Current = gs.Current.clone()
	return &next
}

// Observe is the information-set boundary: a copy with every hand but the
// observer's cleared. Determinization fills them back in consistently.
func (gs *GameState) Observe(seat Seat) *GameState {
	next := gs.Copy()
	for s := Seat(0); s < 4; s++ {
		if s != seat {
			next.Hands[s] = 0
		}
	}
	return next
}

// Player returns the seat to move next.
func (gs *GameState) Player() Seat { return gs.ToAct }

func (gs *GameState) Terminal() bool {
	return gs.Phase == PhaseScored || gs.Phase == PhaseVoided
}

// LegalMoves enumerates the actions of the seat to act. It is non-empty
// until the deal is terminal: a bidder can always pass, a player always
// holds at least one playable card.
func (gs *GameState) LegalMoves() []Move {
	switch gs.Phase {
	case PhaseBidding:
		return gs.legalBids()
	case PhasePlaying:
		cards := gs.PlayableCards(gs.ToAct).Cards()
		moves := make([]Move, len(cards))
		for i, c := range cards {
			moves[i] = Play(c)
		}
		return moves
	default:
		return nil
	}
}

// LegalMovesFor is the seat-qualified query of the external boundary; a
// seat that is not to act has no legal actions.
func (gs *GameState) LegalMovesFor(seat Seat) []Move {
	if seat != gs.ToAct || gs.Terminal() {
		return nil
	}
	return gs.LegalMoves()
}

func (gs *GameState) legalBids() []Move {
	a := &gs.Auction
	moves := []Move{Pass()}
	if a.Coinched {
		// Once coinched the auction only settles: surcoinche or passes.
		if !a.Surcoinched && gs.ToAct.Team() == a.HighSeat.Team() {
			moves = append(moves, SurcoincheMove())
		}
		return moves
	}
	for _, v := range gs.Rules.BidLadder(a.HighValue) {
		for _, m := range gs.Rules.TrumpModes() {
			moves = append(moves, Bid(v, m))
		}
	}
	if a.hasBid() && gs.ToAct.Team() != a.HighSeat.Team() {
		moves = append(moves, CoincheMove())
	}
	return moves
}

// Apply validates and applies one action, returning the successor state.
// On an illegal action the receiver is unchanged and the error is an
// *IllegalActionError.
func (gs *GameState) Apply(m Move) (*GameState, error) {
	if gs.Terminal() {
		return nil, &IllegalActionError{Seat: gs.ToAct, Move: m, Reason: "deal is over"}
	}
	for _, legal := range gs.LegalMoves() {
		if legal == m {
			return gs.Play(m).(*GameState), nil
		}
	}
	return nil, &IllegalActionError{Seat: gs.ToAct, Move: m, Reason: "not in legal set"}
}

// Play applies a move known to be legal and returns the successor. The
// searcher's hot path: no validation, panics on out-of-phase moves.
func (gs *GameState) Play(m Move) State {
	next := gs.Copy()
	switch gs.Phase {
	case PhaseBidding:
		next.applyAuction(m)
	case PhasePlaying:
		next.applyPlay(m)
	default:
		panic(fmt.Sprintf("play on terminal deal: %s", m))
	}
	return next
}

func (gs *GameState) applyAuction(m Move) {
	gs.Auction.record(gs.ToAct, m)
	a := &gs.Auction
	switch {
	case a.voided():
		gs.Phase = PhaseVoided
	case a.closed():
		gs.Contract = Contract{
			Seat:       a.HighSeat,
			Value:      a.HighValue,
			Trump:      a.HighTrump,
			Multiplier: a.Multiplier(),
		}
		gs.Phase = PhasePlaying
		leader := gs.Dealer.Next()
		gs.Current = Trick{Leader: leader}
		gs.ToAct = leader
	default:
		gs.ToAct = gs.ToAct.Next()
	}
}

func (gs *GameState) applyPlay(m Move) {
	if !gs.Hands[gs.ToAct].Has(m.Card) {
		panic(fmt.Sprintf("%s plays %s without holding it", gs.ToAct, m.Card))
	}
	gs.Hands[gs.ToAct] = gs.Hands[gs.ToAct].Drop(m.Card)
	gs.Current.Cards = append(gs.Current.Cards, m.Card)

	if !gs.Current.Complete() {
		gs.ToAct = gs.ToAct.Next()
		return
	}

	winner := gs.Current.Winner(gs.Rules, gs.Contract.Trump)
	gs.Tricks = append(gs.Tricks, gs.Current)
	if len(gs.Tricks) == 8 {
		gs.Phase = PhaseScored
		gs.Current = Trick{}
		gs.ToAct = winner
		return
	}
	gs.Current = Trick{Leader: winner}
	gs.ToAct = winner
}

// PlayableCards applies the obligation cascade for the seat on the current
// trick. Filters run in order and an empty intermediate set falls through
// to the next, least restrictive rule.
func (gs *GameState) PlayableCards(seat Seat) CardSet {
	hand := gs.Hands[seat]
	t := &gs.Current
	if len(t.Cards) == 0 {
		return hand
	}
	trump := gs.Contract.Trump
	led := t.LedSuit()
	following := hand.BySuit(led)

	if trump.IsTrump(led) {
		// Trump led: follow and beat the best trump down if able.
		if !following.Empty() {
			best, _ := t.highestTrump(gs.Rules, trump)
			if higher := gs.cardsAbove(following, best, trump); !higher.Empty() {
				return higher
			}
			return following
		}
		return hand
	}

	if !following.Empty() {
		return following
	}
	if trump == NoTrump {
		return hand
	}
	trumps := hand.BySuit(Suit(trump))
	if trumps.Empty() {
		return hand
	}

	partnerMaster := t.Winner(gs.Rules, trump) == seat.Partner()
	if partnerMaster && gs.Rules.DiscardIfPartnerMaster {
		return hand
	}
	if !partnerMaster {
		if best, found := t.highestTrump(gs.Rules, trump); found {
			if higher := gs.cardsAbove(trumps, best, trump); !higher.Empty() {
				return higher
			}
		}
	}
	return trumps
}

func (gs *GameState) cardsAbove(set CardSet, order int, trump TrumpMode) CardSet {
	var out CardSet
	for _, c := range set.Cards() {
		if gs.Rules.CardOrder(c, trump) > order {
			out = out.Add(c)
		}
	}
	return out
}

// PlayedCards is every card already out of hands: completed tricks plus the
// trick in progress.
func (gs *GameState) PlayedCards() CardSet {
	var out CardSet
	for i := range gs.Tricks {
		for _, c := range gs.Tricks[i].Cards {
			out = out.Add(c)
		}
	}
	for _, c := range gs.Current.Cards {
		out = out.Add(c)
	}
	return out
}

// Result maps the deal outcome to per-team rewards in [0,1]. A voided deal
// is neutral.
func (gs *GameState) Result() [2]float64 {
	if gs.Phase == PhaseVoided {
		return [2]float64{0.5, 0.5}
	}
	score := gs.Score()
	total := float64(score.Totals[0] + score.Totals[1])
	if total == 0 {
		return [2]float64{0.5, 0.5}
	}
	share := float64(score.Totals[0]) / total
	return [2]float64{share, 1 - share}
}

func (gs *GameState) Hash() StateHash {
	h := fnv.New64a()
	w := func(v uint64) { binary.Write(h, binary.LittleEndian, v) }
	w(uint64(gs.Phase))
	w(uint64(gs.ToAct))
	w(uint64(gs.Dealer))
	for _, hand := range gs.Hands {
		w(uint64(hand))
	}
	w(uint64(gs.Contract.Seat))
	w(uint64(gs.Contract.Value))
	w(uint64(gs.Contract.Trump))
	w(uint64(gs.Contract.Multiplier))
	w(uint64(gs.Auction.HighValue))
	w(uint64(gs.Auction.passes))
	for i := range gs.Tricks {
		for _, c := range gs.Tricks[i].Cards {
			w(uint64(c))
		}
	}
	for _, c := range gs.Current.Cards {
		w(uint64(c))
	}
	return StateHash(h.Sum64())
}
