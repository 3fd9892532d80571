package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func c(s Suit, r Rank) Card { return NewCard(s, r) }

// baseTricks is a full deal under a spades contract by seat 0: team 0 takes
// 95 card points plus the last trick (105), team 1 takes 57. No belote: the
// trump king and queen fall from different seats.
func baseTricks() []Trick {
	return []Trick{
		{Leader: 0, Cards: []Card{c(Spades, Jack), c(Spades, Seven), c(Hearts, Seven), c(Hearts, Eight)}},
		{Leader: 0, Cards: []Card{c(Spades, Nine), c(Spades, Eight), c(Diamonds, Seven), c(Diamonds, Eight)}},
		{Leader: 0, Cards: []Card{c(Spades, Ace), c(Spades, Ten), c(Hearts, Nine), c(Diamonds, Nine)}},
		{Leader: 0, Cards: []Card{c(Spades, King), c(Spades, Queen), c(Clubs, Seven), c(Clubs, Eight)}},
		{Leader: 0, Cards: []Card{c(Hearts, Ace), c(Hearts, Ten), c(Hearts, Jack), c(Hearts, Queen)}},
		{Leader: 0, Cards: []Card{c(Diamonds, King), c(Diamonds, Ace), c(Hearts, King), c(Diamonds, Ten)}},
		{Leader: 1, Cards: []Card{c(Clubs, Ace), c(Clubs, King), c(Clubs, Ten), c(Clubs, Queen)}},
		{Leader: 1, Cards: []Card{c(Diamonds, Jack), c(Diamonds, Queen), c(Clubs, Nine), c(Clubs, Jack)}},
	}
}

// beloteTricks moves the trump queen onto seat 0, which already plays the
// trump king: same trick totals, belote for team 0.
func beloteTricks() []Trick {
	tricks := baseTricks()
	tricks[3].Cards = []Card{c(Spades, King), c(Clubs, Jack), c(Clubs, Seven), c(Clubs, Eight)}
	tricks[7].Cards = []Card{c(Diamonds, Jack), c(Diamonds, Queen), c(Clubs, Nine), c(Spades, Queen)}
	return tricks
}

func scoredState(tricks []Trick, value BidValue, multiplier int) *GameState {
	return &GameState{
		Rules:    StandardRules(),
		Dealer:   3,
		Phase:    PhaseScored,
		Contract: Contract{Seat: 0, Value: value, Trump: TrumpSpades, Multiplier: multiplier},
		Tricks:   tricks,
	}
}

func TestScoreContractMade(t *testing.T) {
	gs := scoredState(baseTricks(), 100, 1)
	score := gs.Score()

	require.Equal(t, [2]int{105, 57}, score.TrickPoints, "95 card points plus the last trick")
	require.Equal(t, -1, score.BeloteTeam)
	require.Equal(t, -1, score.CapotTeam)
	require.True(t, score.ContractMade, "105 covers a bid of 100")
	require.Equal(t, [2]int{105, 0}, score.Totals, "defenders take nothing from a made contract")
}

func TestScoreContractFailed(t *testing.T) {
	t.Run("defense sweeps every point", func(t *testing.T) {
		gs := scoredState(baseTricks(), 110, 1)
		score := gs.Score()

		require.False(t, score.ContractMade, "105 falls short of 110")
		require.Equal(t, [2]int{0, 162}, score.Totals)
	})

	t.Run("coinche doubles the sweep", func(t *testing.T) {
		gs := scoredState(baseTricks(), 110, 2)
		require.Equal(t, [2]int{0, 324}, gs.Score().Totals)
	})

	t.Run("surcoinche quadruples it", func(t *testing.T) {
		gs := scoredState(baseTricks(), 110, 4)
		require.Equal(t, [2]int{0, 648}, gs.Score().Totals)
	})
}

func TestScoreBelote(t *testing.T) {
	t.Run("belote counts toward the contract", func(t *testing.T) {
		gs := scoredState(beloteTricks(), 120, 1)
		score := gs.Score()

		require.Equal(t, 0, score.BeloteTeam)
		require.Equal(t, [2]int{105, 57}, score.TrickPoints, "belote is a bonus, not trick points")
		require.True(t, score.ContractMade, "105 plus 20 belote covers 120")
		require.Equal(t, [2]int{125, 0}, score.Totals)
	})

	t.Run("belote survives a failed contract", func(t *testing.T) {
		gs := scoredState(beloteTricks(), 140, 1)
		score := gs.Score()

		require.False(t, score.ContractMade)
		require.Equal(t, [2]int{20, 162}, score.Totals, "the failing side keeps only its belote")
	})

	t.Run("defender belote is multiplied with the sweep", func(t *testing.T) {
		tricks := baseTricks()
		// Hand both trump honours to seat 3.
		tricks[3].Cards = []Card{c(Spades, King), c(Clubs, Jack), c(Clubs, Seven), c(Clubs, Eight)}
		tricks[7].Cards = []Card{c(Diamonds, Jack), c(Diamonds, Queen), c(Clubs, Nine), c(Spades, Queen)}
		tricks[3].Leader = 3 // the trump king now falls from seat 3
		tricks[7].Leader = 0 // and so does the trump queen
		gs := scoredState(tricks, 140, 2)
		score := gs.Score()

		require.Equal(t, 1, score.BeloteTeam)
		require.False(t, score.ContractMade)
		require.Equal(t, [2]int{0, (162 + 20) * 2}, score.Totals)
	})
}

func TestScoreCapot(t *testing.T) {
	sweep := []Trick{
		{Leader: 0, Cards: []Card{c(Spades, Jack), c(Spades, Nine), c(Spades, Ace), c(Spades, Ten)}},
		{Leader: 0, Cards: []Card{c(Spades, King), c(Spades, Queen), c(Spades, Eight), c(Spades, Seven)}},
		{Leader: 0, Cards: []Card{c(Hearts, Ace), c(Hearts, King), c(Hearts, Queen), c(Hearts, Jack)}},
		{Leader: 0, Cards: []Card{c(Hearts, Ten), c(Hearts, Nine), c(Hearts, Eight), c(Hearts, Seven)}},
		{Leader: 0, Cards: []Card{c(Diamonds, Ace), c(Diamonds, King), c(Diamonds, Queen), c(Diamonds, Jack)}},
		{Leader: 0, Cards: []Card{c(Diamonds, Ten), c(Diamonds, Nine), c(Diamonds, Eight), c(Diamonds, Seven)}},
		{Leader: 0, Cards: []Card{c(Clubs, Ace), c(Clubs, King), c(Clubs, Queen), c(Clubs, Jack)}},
		{Leader: 0, Cards: []Card{c(Clubs, Ten), c(Clubs, Nine), c(Clubs, Eight), c(Clubs, Seven)}},
	}

	t.Run("capot bonus on top of a made contract", func(t *testing.T) {
		gs := scoredState(sweep, 100, 1)
		score := gs.Score()

		require.Equal(t, 0, score.CapotTeam)
		require.Equal(t, [2]int{162, 0}, score.TrickPoints)
		require.Equal(t, [2]int{162 + 250, 0}, score.Totals)
	})

	t.Run("capot contract requires all eight tricks", func(t *testing.T) {
		gs := scoredState(baseTricks(), Capot, 1)
		score := gs.Score()

		require.False(t, score.ContractMade, "105 trick points, but a trick was lost")
		require.Equal(t, [2]int{0, 162}, score.Totals)
	})

	t.Run("capot contract made", func(t *testing.T) {
		gs := scoredState(sweep, Capot, 1)
		score := gs.Score()

		require.True(t, score.ContractMade)
		require.Equal(t, [2]int{162 + 250, 0}, score.Totals)
	})

	t.Run("regional capot bonus", func(t *testing.T) {
		gs := scoredState(sweep, 100, 1)
		gs.Rules.CapotBonus = 90
		require.Equal(t, [2]int{162 + 90, 0}, gs.Score().Totals)
	})
}

func TestScoreDefenderVariant(t *testing.T) {
	gs := scoredState(baseTricks(), 100, 1)
	gs.Rules.DefendersScoreOnSuccess = true
	require.Equal(t, [2]int{105, 57}, gs.Score().Totals,
		"variant keeps the defenders' trick points on a made contract")
}

func TestPointConservation(t *testing.T) {
	// Random full deals: 152 card points plus the last-trick bonus must land
	// somewhere, whatever the trump mode.
	rng := rand.New(rand.NewSource(23))
	deals := 0
	for deals < 25 {
		dealer := Seat(deals % 4)
		gs := NewDeal(StandardRules(), dealer, DealHands(rng, dealer))
		for !gs.Terminal() {
			moves := gs.LegalMoves()
			gs = gs.Play(moves[rng.Intn(len(moves))]).(*GameState)
		}
		if gs.Phase == PhaseVoided {
			continue
		}
		deals++
		score := gs.Score()
		require.Equal(t, 162, score.TrickPoints[0]+score.TrickPoints[1],
			"trump %s", gs.Contract.Trump)
		if score.BeloteTeam >= 0 {
			require.LessOrEqual(t, score.Totals[0]+score.Totals[1], (162+20)*4)
		}
	}
}
