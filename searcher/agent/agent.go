// Package agent wraps move selection behind a single interface, so the
// match loop can mix searching players, random players and remote ones.
package agent

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"contree/game"
	"contree/searcher"
)

type Agent interface {
	// ChooseAction returns the move the seat plays in the given state.
	ChooseAction(ctx context.Context, gs *game.GameState, seat game.Seat) (game.Move, error)
}

type mctsAgent struct {
	mcts *searcher.MCTS
}

// NewMCTSAgent returns an agent that plays the pooled-best search move.
func NewMCTSAgent(mcts *searcher.MCTS) Agent {
	return mctsAgent{mcts: mcts}
}

func (a mctsAgent) ChooseAction(ctx context.Context, gs *game.GameState, seat game.Seat) (game.Move, error) {
	move, err := a.mcts.ChooseMove(ctx, gs, seat)
	if err != nil {
		return game.Move{}, err
	}
	// The engine rejects illegal moves and forfeits the offender, so guard
	// the search output before committing to it.
	legal := gs.LegalMovesFor(seat)
	for _, m := range legal {
		if m == move {
			return move, nil
		}
	}
	log.Warn().Msgf("search chose illegal move %s for %s: falling back to %s", move, seat, legal[0])
	return legal[0], nil
}

type randomAgent struct {
	rng *rand.Rand
}

// NewRandomAgent returns a uniform random baseline player.
func NewRandomAgent(seed uint64) Agent {
	return randomAgent{rng: rand.New(rand.NewSource(seed))}
}

func (a randomAgent) ChooseAction(_ context.Context, gs *game.GameState, seat game.Seat) (game.Move, error) {
	legal := gs.LegalMovesFor(seat)
	if len(legal) == 0 {
		return game.Move{}, searcher.ErrNotToAct
	}
	return legal[a.rng.Intn(len(legal))], nil
}
