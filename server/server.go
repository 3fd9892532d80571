// Package server exposes matches over HTTP: create a table, inspect the
// deal from one seat's point of view, submit actions and ask the searcher
// for a suggestion. Hidden hands never leave the process.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"contree/game"
	"contree/searcher"
)

// table is one running match: the current deal plus the accumulated score.
type table struct {
	mu     sync.Mutex
	rules  game.Rules
	rng    *rand.Rand
	gs     *game.GameState
	dealer game.Seat
	scores [2]int
	deals  int
	over   bool
}

func (tb *table) redeal() {
	tb.deals++
	tb.gs = game.NewDeal(tb.rules, tb.dealer, game.DealHands(tb.rng, tb.dealer))
}

// settle folds a finished deal into the match score and starts the next
// deal, unless a side has reached the target.
func (tb *table) settle() {
	if tb.gs.Phase == game.PhaseScored {
		score := tb.gs.Score()
		tb.scores[0] += score.Totals[0]
		tb.scores[1] += score.Totals[1]
	}
	tb.dealer = tb.dealer.Next()
	if tb.scores[0] >= tb.rules.TargetScore || tb.scores[1] >= tb.rules.TargetScore {
		tb.over = true
		return
	}
	tb.redeal()
}

type Server struct {
	mu     sync.Mutex
	rules  game.Rules
	seed   uint64
	nextID int
	tables map[string]*table
	mcts   *searcher.MCTS
}

type Option func(s *Server)

func WithRules(rules game.Rules) Option {
	return func(s *Server) {
		s.rules = rules
	}
}

func WithSeed(seed uint64) Option {
	return func(s *Server) {
		s.seed = seed
	}
}

// WithSearcher sets the engine answering /suggest requests.
func WithSearcher(mcts *searcher.MCTS) Option {
	return func(s *Server) {
		s.mcts = mcts
	}
}

func New(options ...Option) *Server {
	s := &Server{
		rules:  game.StandardRules(),
		seed:   rand.Uint64(),
		tables: make(map[string]*table),
		mcts:   searcher.NewMCTS(2, searcher.WithEpisodes(200), searcher.WithSamples(8)),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"ok": true})
	})
	r.Post("/games", s.createGame)
	r.Route("/games/{id}", func(r chi.Router) {
		r.Get("/", s.getGame)
		r.Get("/moves", s.getMoves)
		r.Post("/moves", s.postMove)
		r.Post("/suggest", s.postSuggest)
	})
	return r
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seed *uint64 `json:"seed"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	s.mu.Lock()
	s.nextID++
	id := strconv.Itoa(s.nextID)
	seed := s.seed + uint64(s.nextID)
	if req.Seed != nil {
		seed = *req.Seed
	}
	tb := &table{rules: s.rules, rng: rand.New(rand.NewSource(seed))}
	tb.redeal()
	s.tables[id] = tb
	s.mu.Unlock()

	log.Info().Msgf("table %s created", id)
	writeJSON(w, map[string]any{"id": id})
}

func (s *Server) lookup(r *http.Request) (*table, error) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	tb, ok := s.tables[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no table %q", id)
	}
	return tb, nil
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	tb, err := s.lookup(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	seat, hasSeat, err := seatParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()
	writeJSON(w, snapshotOf(tb, seat, hasSeat))
}

func (s *Server) getMoves(w http.ResponseWriter, r *http.Request) {
	tb, err := s.lookup(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	seat, hasSeat, err := seatParam(r)
	if err != nil || !hasSeat {
		writeError(w, http.StatusBadRequest, errors.New("seat parameter required"))
		return
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()
	moves := []moveJSON{}
	if !tb.over {
		for _, m := range tb.gs.LegalMovesFor(seat) {
			moves = append(moves, encodeMove(m))
		}
	}
	writeJSON(w, map[string]any{"seat": seat.String(), "moves": moves})
}

func (s *Server) postMove(w http.ResponseWriter, r *http.Request) {
	tb, err := s.lookup(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var req struct {
		Seat string   `json:"seat"`
		Move moveJSON `json:"move"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	seat, err := parseSeat(req.Seat)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	move, err := parseMove(req.Move)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.over {
		writeError(w, http.StatusConflict, errors.New("match is over"))
		return
	}
	if seat != tb.gs.Player() {
		writeError(w, http.StatusUnprocessableEntity,
			&game.IllegalActionError{Seat: seat, Move: move, Reason: "not your turn"})
		return
	}
	next, err := tb.gs.Apply(move)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	tb.gs = next
	if tb.gs.Terminal() {
		tb.settle()
	}
	writeJSON(w, snapshotOf(tb, seat, true))
}

func (s *Server) postSuggest(w http.ResponseWriter, r *http.Request) {
	tb, err := s.lookup(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	seat, hasSeat, err := seatParam(r)
	if err != nil || !hasSeat {
		writeError(w, http.StatusBadRequest, errors.New("seat parameter required"))
		return
	}

	tb.mu.Lock()
	if tb.over || seat != tb.gs.Player() {
		tb.mu.Unlock()
		writeError(w, http.StatusConflict, errors.New("seat is not to act"))
		return
	}
	observed := tb.gs.Observe(seat)
	tb.mu.Unlock()

	// Search outside the table lock: suggestions must not block play.
	move, err := s.mcts.ChooseMove(r.Context(), observed, seat)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, map[string]any{"seat": seat.String(), "move": encodeMove(move)})
}

func seatParam(r *http.Request) (game.Seat, bool, error) {
	raw := r.URL.Query().Get("seat")
	if raw == "" {
		return 0, false, nil
	}
	seat, err := parseSeat(raw)
	return seat, err == nil, err
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": err.Error()})
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	log.Info().Msgf("listening on %s", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
