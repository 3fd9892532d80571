// Package engine runs complete matches: dealing, querying each seat's
// agent through the information-set boundary, validating its action and
// accumulating the score until one side reaches the target.
package engine

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"contree/game"
	"contree/searcher/agent"
)

// DealRecord is the settled outcome of one deal, published on the feed as
// soon as the deal ends. Final carries the terminal state: its auction
// history and trick list are the complete action sequence of the deal.
type DealRecord struct {
	Number   int
	Dealer   game.Seat
	Voided   bool
	Contract game.Contract
	Score    game.DealScore
	Totals   [2]int // cumulative match score after this deal
	Final    *game.GameState
}

type Option func(m *Match)

func WithRules(rules game.Rules) Option {
	return func(m *Match) {
		m.rules = rules
	}
}

func WithSeed(seed uint64) Option {
	return func(m *Match) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// WithFeed registers a callback invoked after every finished deal.
func WithFeed(feed func(DealRecord)) Option {
	return func(m *Match) {
		if feed != nil {
			m.feed = feed
		}
	}
}

func WithDealer(dealer game.Seat) Option {
	return func(m *Match) {
		m.dealer = dealer
	}
}

// Match is one table of four agents playing to the target score. A Match
// is single-use: Run plays it out once.
type Match struct {
	rules  game.Rules
	agents [4]agent.Agent
	rng    *rand.Rand
	feed   func(DealRecord)
	dealer game.Seat
	scores [2]int
	deals  int
}

func NewMatch(agents [4]agent.Agent, options ...Option) *Match {
	m := &Match{
		rules:  game.StandardRules(),
		agents: agents,
		rng:    rand.New(rand.NewSource(rand.Uint64())),
		feed:   func(DealRecord) {},
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Scores returns the running match score.
func (m *Match) Scores() [2]int { return m.scores }

// Run plays deals until one team reaches the target score and returns the
// final tally. A context error aborts mid-match with the score so far.
func (m *Match) Run(ctx context.Context) ([2]int, error) {
	for m.scores[0] < m.rules.TargetScore && m.scores[1] < m.rules.TargetScore {
		if err := ctx.Err(); err != nil {
			return m.scores, err
		}
		if err := m.playDeal(ctx); err != nil {
			return m.scores, err
		}
	}
	log.Info().Msgf("match over after %d deals: %d - %d", m.deals, m.scores[0], m.scores[1])
	return m.scores, nil
}

func (m *Match) playDeal(ctx context.Context) error {
	m.deals++
	gs := game.NewDeal(m.rules, m.dealer, game.DealHands(m.rng, m.dealer))

	for !gs.Terminal() {
		if err := ctx.Err(); err != nil {
			return err
		}
		seat := gs.Player()
		// Agents only ever see their own hand.
		move, err := m.agents[seat].ChooseAction(ctx, gs.Observe(seat), seat)
		if err != nil {
			return err
		}
		gs, err = gs.Apply(move)
		if err != nil {
			return err
		}
	}

	record := DealRecord{
		Number: m.deals,
		Dealer: m.dealer,
		Voided: gs.Phase == game.PhaseVoided,
		Final:  gs,
	}
	if !record.Voided {
		record.Contract = gs.Contract
		record.Score = gs.Score()
		m.scores[0] += record.Score.Totals[0]
		m.scores[1] += record.Score.Totals[1]
		log.Info().Msgf("deal %d: %s by %s, made=%t, totals %d - %d",
			m.deals, record.Contract.Value, record.Contract.Seat,
			record.Score.ContractMade, m.scores[0], m.scores[1])
	} else {
		log.Info().Msgf("deal %d: all passed, redeal", m.deals)
	}
	record.Totals = m.scores
	m.dealer = m.dealer.Next()
	m.feed(record)
	return nil
}
