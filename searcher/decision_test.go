package searcher

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"contree/game"
)

// mockState is a hand-built game.State for exercising the tree mechanics
// without dealing a full contrée deal.
type mockState struct {
	player game.Seat
	moves  []game.Move
	result [2]float64
	next   func(game.Move) game.State
}

func (s mockState) Player() game.Seat       { return s.player }
func (s mockState) LegalMoves() []game.Move { return s.moves }
func (s mockState) Terminal() bool          { return len(s.moves) == 0 }
func (s mockState) Result() [2]float64      { return s.result }
func (s mockState) Hash() game.StateHash    { return 0 }
func (s mockState) Play(m game.Move) game.State {
	if s.next != nil {
		return s.next(m)
	}
	return mockState{player: s.player.Next()}
}

func TestDecisionSelectOrExpand(t *testing.T) {
	moves := []game.Move{game.Pass(), game.CoincheMove()}

	t.Run("selecting a fully expanded node", func(t *testing.T) {
		maxChild := &decision{team: 0, rewards: 1, visits: 1}
		otherChild := &decision{team: 0, rewards: 0, visits: 1}
		node := &decision{
			player:   0,
			moves:    moves,
			children: []*decision{maxChild, otherChild},
			visits:   2,
		}
		state := mockState{player: 0, moves: moves}

		gotChild, gotState, gotSelected := node.SelectOrExpand(state, nil)

		require.Same(t, maxChild, gotChild, "Node should select the max UCB1 child")
		require.True(t, gotSelected, "Selection should continue below the child")
		require.Equal(t, 1.0, gotChild.rewards, "A virtual loss adds no reward")
		require.Equal(t, 2, gotChild.visits, "Visit count should include the virtual loss")
		require.IsType(t, mockState{}, gotState)
	})

	t.Run("expanding an expandable node", func(t *testing.T) {
		node := &decision{player: 0, moves: moves, children: []*decision{}}
		state := mockState{player: 0, moves: moves}

		gotChild, _, gotSelected := node.SelectOrExpand(state, nil)

		require.Len(t, node.children, 1, "Node should add exactly one child")
		require.Same(t, node.children[0], gotChild)
		require.False(t, gotSelected, "Expansion ends the walk")
		require.Equal(t, node, gotChild.parent)
		require.Equal(t, game.Team(0), gotChild.team, "Child keeps the expanding player's perspective")
		require.Equal(t, 1, gotChild.visits, "New child should carry the virtual loss")
	})

	t.Run("terminal node returns itself", func(t *testing.T) {
		node := &decision{player: 0}
		state := mockState{player: 0}

		gotChild, gotState, gotSelected := node.SelectOrExpand(state, nil)

		require.Same(t, node, gotChild)
		require.False(t, gotSelected)
		require.Equal(t, state, gotState)
	})
}

func TestDecisionBackup(t *testing.T) {
	root := &decision{player: 0, team: 0, visits: 1}
	child := &decision{parent: root, player: 1, team: 0, rewards: LOSS, visits: 1}
	result := [2]float64{0.75, 0.25}

	gotParent := child.Backup(result)

	require.Same(t, root, gotParent)
	require.Equal(t, 0.75, child.rewards, "Child banks its own team's share after reversing the loss")
	require.Equal(t, 1, child.visits)

	require.Nil(t, root.Backup(result), "Root has no parent")
	require.Equal(t, 0.75, root.rewards, "Root keeps its visit from the walk, no loss to reverse")
	require.Equal(t, 2, root.visits)
}

func TestDecisionRace(t *testing.T) {
	// Shared expansion, selection and backup from many workers; run under
	// the race detector.
	moves := []game.Move{
		game.Play(game.NewCard(game.Spades, game.Seven)),
		game.Play(game.NewCard(game.Spades, game.Eight)),
		game.Play(game.NewCard(game.Spades, game.Nine)),
	}
	state := mockState{player: 0, moves: moves}
	root := newDecision(nil, state, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				node, nodeState := selectThenExpand(root, state, nil)
				backup(node, nodeState.(mockState).result)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 800, root.Visits())
	require.Len(t, root.children, 3, "Every legal move should be expanded")
}
