package searcher

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"contree/determinize"
	"contree/game"
)

// MaxCutoff plays every line out to the end of the deal.
const MaxCutoff = 1 << 30

// ErrNotToAct is returned when a move is requested for a seat that has no
// legal actions in the given state.
var ErrNotToAct = errors.New("searcher: seat is not to act")

type Option func(m *MCTS)

// MCTS searches an observed deal by sampling consistent completions of the
// hidden hands and running an independent UCT tree on each sample. One
// instance is safe for concurrent use.
type MCTS struct {
	goroutines int
	duration   time.Duration
	episodes   int // per determinized sample
	samples    int
	cutoff     int
	evaluate   Evaluator
	seed       uint64
	calls      atomic.Uint64
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

// WithEpisodes budgets the playouts spent on each determinized sample.
func WithEpisodes(episodes int) Option {
	return func(m *MCTS) {
		if episodes > 0 {
			m.episodes = episodes
		}
	}
}

// WithSamples sets how many hidden-hand completions are searched per move.
func WithSamples(samples int) Option {
	return func(m *MCTS) {
		if samples > 0 {
			m.samples = samples
		}
	}
}

func WithCutoff(depth int) Option {
	return func(m *MCTS) {
		if depth > 0 {
			m.cutoff = depth
		}
	}
}

func WithEvaluator(evaluate Evaluator) Option {
	return func(m *MCTS) {
		if evaluate != nil {
			m.evaluate = evaluate
		}
	}
}

// WithSeed makes every ChooseMove call deterministic given the call order.
func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
	}
}

func NewMCTS(goroutines int, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines: goroutines,
		samples:    16,
		cutoff:     MaxCutoff,
		evaluate:   Heuristic{},
		seed:       uint64(time.Now().UnixNano()),
	}
	for _, option := range options {
		option(m)
	}
	if m.episodes <= 0 && m.duration <= 0 {
		panic("Must specify search episodes or duration")
	}
	return m
}

// ChooseMove returns the pooled-best legal move for the seat to act. The
// context bounds the whole search; on cancellation the best move of the
// statistics gathered so far is returned.
func (m *MCTS) ChooseMove(ctx context.Context, gs *game.GameState, seat game.Seat) (game.Move, error) {
	legal := gs.LegalMovesFor(seat)
	if len(legal) == 0 {
		return game.Move{}, ErrNotToAct
	}
	if len(legal) == 1 {
		return legal[0], nil
	}

	if m.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.duration)
		defer cancel()
	}

	seed := m.seed + m.calls.Add(1)*0x9E3779B97F4A7C15
	rng := rand.New(rand.NewSource(seed))
	order := m.orderer()

	pooled := make(map[game.Move]nodeStat, len(legal))
	infeasible := 0
	for s := 0; s < m.samples && ctx.Err() == nil; s++ {
		det, err := determinize.Sample(gs, seat, rng)
		if err != nil {
			infeasible++
			continue
		}

		root := newDecision(nil, det, order)
		sampleCtx := ctx
		var cancel context.CancelFunc
		if m.duration > 0 {
			// Spread the time budget evenly over the samples.
			sampleCtx, cancel = context.WithTimeout(ctx, m.duration/time.Duration(m.samples))
		}
		m.search(sampleCtx, root, det, order, seed+uint64(s+1))
		if cancel != nil {
			cancel()
		}
		for move, stat := range root.stats() {
			prev := pooled[move]
			pooled[move] = nodeStat{visits: prev.visits + stat.visits, rewards: prev.rewards + stat.rewards}
		}
	}

	if infeasible > 0 {
		log.Warn().Msgf("%d of %d determinizations infeasible for %s", infeasible, m.samples, seat)
	}

	best, ok := robustMove(pooled)
	if !ok {
		// No statistics at all: every sample infeasible, or cancelled
		// before the first playout. Any legal move keeps the game going.
		log.Warn().Msgf("search for %s produced no statistics: playing at random", seat)
		return legal[rng.Intn(len(legal))], nil
	}
	return best, nil
}

// robustMove picks the most visited move, breaking ties by mean reward and
// finally by move encoding, so the choice never depends on map order.
func robustMove(pooled map[game.Move]nodeStat) (game.Move, bool) {
	type scored struct {
		move game.Move
		stat nodeStat
	}
	ranked := make([]scored, 0, len(pooled))
	for move, stat := range pooled {
		if stat.visits > 0 {
			ranked = append(ranked, scored{move, stat})
		}
	}
	if len(ranked) == 0 {
		return game.Move{}, false
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.stat.visits != b.stat.visits {
			return a.stat.visits > b.stat.visits
		}
		am := a.stat.rewards / float64(a.stat.visits)
		bm := b.stat.rewards / float64(b.stat.visits)
		if am != bm {
			return am > bm
		}
		return moveLess(a.move, b.move)
	})
	return ranked[0].move, true
}

func moveLess(a, b game.Move) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	if a.Trump != b.Trump {
		return a.Trump < b.Trump
	}
	return a.Card < b.Card
}

// search runs the playout budget for one determinized sample, spreading
// episodes over the worker pool. With no episode budget the workers run
// until the context expires.
func (m *MCTS) search(ctx context.Context, root *decision, state game.State, order moveOrderer, seed uint64) {
	var task chan struct{}
	if m.episodes > 0 {
		task = make(chan struct{}, m.episodes)
		for i := 0; i < m.episodes; i++ {
			task <- struct{}{}
		}
		close(task)
	}

	var wg sync.WaitGroup
	for i := 0; i < m.goroutines; i++ {
		wg.Add(1)
		go func(workerSeed uint64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(workerSeed))

			if task == nil {
				for ctx.Err() == nil {
					m.simulate(root, state, order, rng)
				}
				return
			}
			for range task {
				if ctx.Err() != nil {
					return
				}
				m.simulate(root, state, order, rng)
			}
		}(seed + uint64(i)*0xA24BAED4963EE407)
	}
	wg.Wait()
}

func (m *MCTS) simulate(root *decision, state game.State, order moveOrderer, rng *rand.Rand) {
	node, nodeState := selectThenExpand(root, state, order)
	result := m.rollout(nodeState, rng)
	backup(node, result)
}

func selectThenExpand(root *decision, state game.State, order moveOrderer) (*decision, game.State) {
	parent := root
	child, childState, selected := parent.SelectOrExpand(state, order)
	for selected && child != parent {
		parent = child
		child, childState, selected = parent.SelectOrExpand(childState, order)
	}
	return child, childState
}

// rollout plays the line out at random, stopping at the cutoff to consult
// the evaluator. An evaluator error downgrades the line to a full playout.
func (m *MCTS) rollout(state game.State, rng *rand.Rand) [2]float64 {
	depth := 0
	for !state.Terminal() && depth < m.cutoff {
		moves := state.LegalMoves()
		state = state.Play(moves[rng.Intn(len(moves))])
		depth++
	}
	if state.Terminal() {
		return state.Result()
	}

	gs := state.(*game.GameState)
	if _, value, err := m.evaluate.Evaluate(gs, gs.Player()); err == nil {
		team := gs.Player().Team()
		var result [2]float64
		result[team] = value
		result[team.Other()] = 1 - value
		return result
	}

	for !state.Terminal() {
		moves := state.LegalMoves()
		state = state.Play(moves[rng.Intn(len(moves))])
	}
	return state.Result()
}

func backup(node *decision, result [2]float64) {
	for node != nil {
		node = node.Backup(result)
	}
}

// orderer expands policy-favoured moves first, so shallow searches spend
// their budget on plausible lines.
func (m *MCTS) orderer() moveOrderer {
	if m.evaluate == nil {
		return nil
	}
	return func(state game.State, moves []game.Move) {
		gs, ok := state.(*game.GameState)
		if !ok {
			return
		}
		policy, _, err := m.evaluate.Evaluate(gs, gs.Player())
		if err != nil || len(policy) == 0 {
			return
		}
		sort.SliceStable(moves, func(i, j int) bool {
			return policy[moves[i]] > policy[moves[j]]
		})
	}
}
