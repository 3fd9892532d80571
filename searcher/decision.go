package searcher

import (
	"math"
	"sync"

	"contree/game"
)

// decision is one node of a single-sample search tree. Workers share the
// tree, so statistics sit behind the lock and a virtual loss discourages
// two workers from walking the same line at once.
type decision struct {
	sync.RWMutex
	parent   *decision
	player   game.Seat
	team     game.Team // perspective of the move leading into this node
	moves    []game.Move
	children []*decision
	rewards  float64
	visits   int
}

// moveOrderer permutes the expansion order of a node's untried moves.
type moveOrderer func(state game.State, moves []game.Move)

func newDecision(parent *decision, state game.State, order moveOrderer) *decision {
	var moves []game.Move
	if !state.Terminal() {
		moves = state.LegalMoves()
		if order != nil {
			order(state, moves)
		}
	}

	team := state.Player().Team()
	if parent != nil {
		team = parent.player.Team()
	}

	return &decision{
		parent:   parent,
		player:   state.Player(),
		team:     team,
		moves:    moves,
		children: make([]*decision, 0, len(moves)),
	}
}

// SelectOrExpand walks one step down the tree: expand the next untried
// move, or descend into the UCB1-best child of a fully expanded node. The
// third return reports whether the walk should continue below the child.
func (d *decision) SelectOrExpand(state game.State, order moveOrderer) (*decision, game.State, bool) {
	d.Lock()
	defer d.Unlock()

	if len(d.moves) == 0 { // Terminal node
		return d, state, false
	}

	if len(d.moves) > len(d.children) { // Expandable node
		child, childState := d.addChild(state, order)
		child.applyLoss()
		return child, childState, false
	}

	// Fully expanded node
	ith := d.pickChild()
	child := d.children[ith]
	child.applyLoss()
	return child, state.Play(d.moves[ith]), true
}

func (d *decision) addChild(state game.State, order moveOrderer) (*decision, game.State) {
	move := d.moves[len(d.children)]
	childState := state.Play(move)
	child := newDecision(d, childState, order)
	d.children = append(d.children, child)
	return child, childState
}

func (d *decision) pickChild() int {
	// Workers can fully expand a node before any backup reaches it, so a
	// zero visit count just means no exploration bonus yet.
	normalizer := 0.0
	if d.visits > 0 {
		normalizer = C_SQUARED * math.Log(float64(d.visits))
	}

	maxIndex := -1
	maxScore := math.Inf(-1)
	for i, child := range d.children {
		score := child.score(normalizer)
		if score == math.Inf(1) {
			return i
		}
		if score > maxScore {
			maxScore = score
			maxIndex = i
		}
	}
	return maxIndex
}

func (d *decision) applyLoss() {
	d.Lock()
	defer d.Unlock()

	d.rewards += LOSS
	d.visits++
}

func (d *decision) score(normalizer float64) float64 {
	d.RLock()
	defer d.RUnlock()

	return ucb1(d.rewards, d.visits, normalizer)
}

// Backup folds a playout result into the node and returns its parent, so
// the caller can walk the chain up to the root. The result indexes by team:
// each node banks the share of the side that chose the move into it.
func (d *decision) Backup(result [2]float64) *decision {
	d.Lock()
	defer d.Unlock()

	if d.parent != nil { // Non-root node
		d.reverseLoss()
	}

	d.rewards += result[d.team]
	d.visits++

	return d.parent
}

func (d *decision) reverseLoss() {
	d.rewards -= LOSS
	d.visits--
}

func (d *decision) Visits() int {
	d.RLock()
	defer d.RUnlock()

	return d.visits
}

// stats snapshots the per-move visit and reward counts of the node's
// children, keyed by move for pooling across samples.
func (d *decision) stats() map[game.Move]nodeStat {
	d.RLock()
	defer d.RUnlock()

	out := make(map[game.Move]nodeStat, len(d.children))
	for i, child := range d.children {
		child.RLock()
		out[d.moves[i]] = nodeStat{visits: child.visits, rewards: child.rewards}
		child.RUnlock()
	}
	return out
}

type nodeStat struct {
	visits  int
	rewards float64
}
