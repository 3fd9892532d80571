package server

import (
	"fmt"
	"strings"

	"contree/game"
)

// moveJSON is the wire form of a move: "pass", "coinche", "surcoinche",
// "bid" with value and trump, or "play" with a card like "10H" or "QS".
type moveJSON struct {
	Kind  string `json:"kind"`
	Value int    `json:"value,omitempty"`
	Trump string `json:"trump,omitempty"`
	Card  string `json:"card,omitempty"`
}

type trickJSON struct {
	Leader string   `json:"leader"`
	Cards  []string `json:"cards"`
}

type contractJSON struct {
	Seat       string `json:"seat"`
	Value      int    `json:"value"`
	Trump      string `json:"trump"`
	Multiplier int    `json:"multiplier"`
}

// snapshotJSON is one seat's view of a table. Hand is only present for the
// requesting seat; the other hands appear as counts.
type snapshotJSON struct {
	Phase     string        `json:"phase"`
	Dealer    string        `json:"dealer"`
	ToAct     string        `json:"to_act"`
	Hand      []string      `json:"hand,omitempty"`
	HandSizes [4]int        `json:"hand_sizes"`
	Auction   []auctionJSON `json:"auction"`
	Contract  *contractJSON `json:"contract,omitempty"`
	Tricks    []trickJSON   `json:"tricks"`
	Current   *trickJSON    `json:"current_trick,omitempty"`
	Scores    [2]int        `json:"scores"`
	Deals     int           `json:"deals"`
	Over      bool          `json:"over"`
}

type auctionJSON struct {
	Seat string   `json:"seat"`
	Move moveJSON `json:"move"`
}

func snapshotOf(tb *table, seat game.Seat, hasSeat bool) snapshotJSON {
	gs := tb.gs
	snap := snapshotJSON{
		Phase:  phaseText(gs.Phase),
		Dealer: gs.Dealer.String(),
		ToAct:  gs.ToAct.String(),
		Scores: tb.scores,
		Deals:  tb.deals,
		Over:   tb.over,
	}
	for s := game.Seat(0); s < 4; s++ {
		snap.HandSizes[s] = gs.Hands[s].Len()
	}
	if hasSeat {
		for _, c := range gs.Hands[seat].Cards() {
			snap.Hand = append(snap.Hand, cardText(c))
		}
	}
	for _, sm := range gs.Auction.History {
		snap.Auction = append(snap.Auction, auctionJSON{Seat: sm.Seat.String(), Move: encodeMove(sm.Move)})
	}
	if gs.Phase != game.PhaseBidding && gs.Phase != game.PhaseVoided {
		snap.Contract = &contractJSON{
			Seat:       gs.Contract.Seat.String(),
			Value:      int(gs.Contract.Value),
			Trump:      trumpText(gs.Contract.Trump),
			Multiplier: gs.Contract.Multiplier,
		}
	}
	for i := range gs.Tricks {
		snap.Tricks = append(snap.Tricks, encodeTrick(&gs.Tricks[i]))
	}
	if len(gs.Current.Cards) > 0 {
		t := encodeTrick(&gs.Current)
		snap.Current = &t
	}
	return snap
}

func encodeTrick(t *game.Trick) trickJSON {
	out := trickJSON{Leader: t.Leader.String()}
	for _, c := range t.Cards {
		out.Cards = append(out.Cards, cardText(c))
	}
	return out
}

func phaseText(p game.Phase) string {
	switch p {
	case game.PhaseBidding:
		return "bidding"
	case game.PhasePlaying:
		return "playing"
	case game.PhaseScored:
		return "scored"
	case game.PhaseVoided:
		return "voided"
	default:
		return "?"
	}
}

var seatNames = map[string]game.Seat{
	"north": 0, "east": 1, "south": 2, "west": 3,
}

func parseSeat(s string) (game.Seat, error) {
	seat, ok := seatNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown seat %q", s)
	}
	return seat, nil
}

var rankTexts = map[game.Rank]string{
	game.Seven: "7", game.Eight: "8", game.Nine: "9", game.Ten: "10",
	game.Jack: "J", game.Queen: "Q", game.King: "K", game.Ace: "A",
}

var suitTexts = map[game.Suit]string{
	game.Spades: "S", game.Hearts: "H", game.Diamonds: "D", game.Clubs: "C",
}

func cardText(c game.Card) string {
	return rankTexts[c.Rank()] + suitTexts[c.Suit()]
}

func parseCard(s string) (game.Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return 0, fmt.Errorf("bad card %q", s)
	}
	rankPart, suitPart := s[:len(s)-1], s[len(s)-1:]
	var rank game.Rank
	found := false
	for r, text := range rankTexts {
		if text == rankPart {
			rank, found = r, true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("bad rank in card %q", s)
	}
	for suit, text := range suitTexts {
		if text == suitPart {
			return game.NewCard(suit, rank), nil
		}
	}
	return 0, fmt.Errorf("bad suit in card %q", s)
}

var trumpTexts = map[game.TrumpMode]string{
	game.TrumpSpades: "spades", game.TrumpHearts: "hearts",
	game.TrumpDiamonds: "diamonds", game.TrumpClubs: "clubs",
	game.NoTrump: "no-trump", game.AllTrump: "all-trump",
}

func trumpText(m game.TrumpMode) string { return trumpTexts[m] }

func parseTrump(s string) (game.TrumpMode, error) {
	for mode, text := range trumpTexts {
		if text == strings.ToLower(s) {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unknown trump %q", s)
}

func encodeMove(m game.Move) moveJSON {
	switch m.Kind {
	case game.MovePass:
		return moveJSON{Kind: "pass"}
	case game.MoveBid:
		return moveJSON{Kind: "bid", Value: int(m.Value), Trump: trumpText(m.Trump)}
	case game.MoveCoinche:
		return moveJSON{Kind: "coinche"}
	case game.MoveSurcoinche:
		return moveJSON{Kind: "surcoinche"}
	case game.MovePlay:
		return moveJSON{Kind: "play", Card: cardText(m.Card)}
	default:
		return moveJSON{Kind: "?"}
	}
}

func parseMove(m moveJSON) (game.Move, error) {
	switch strings.ToLower(m.Kind) {
	case "pass":
		return game.Pass(), nil
	case "bid":
		trump, err := parseTrump(m.Trump)
		if err != nil {
			return game.Move{}, err
		}
		return game.Bid(game.BidValue(m.Value), trump), nil
	case "coinche":
		return game.CoincheMove(), nil
	case "surcoinche":
		return game.SurcoincheMove(), nil
	case "play":
		card, err := parseCard(m.Card)
		if err != nil {
			return game.Move{}, err
		}
		return game.Play(card), nil
	default:
		return game.Move{}, fmt.Errorf("unknown move kind %q", m.Kind)
	}
}
