package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"contree/engine"
	"contree/game"
	"contree/searcher"
	"contree/searcher/agent"
	"contree/server"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	var (
		serve      = flag.Bool("serve", false, "run the HTTP server instead of self-play")
		addr       = flag.String("addr", envOr("CONTREE_ADDR", ":8080"), "HTTP listen address")
		rulesPath  = flag.String("rules", os.Getenv("CONTREE_RULES"), "YAML rule variant file")
		matches    = flag.Int("matches", 1, "self-play matches to run")
		goroutines = flag.Int("goroutines", 4, "search workers per decision")
		episodes   = flag.Int("episodes", 200, "playouts per determinized sample")
		samples    = flag.Int("samples", 8, "determinized samples per decision")
		duration   = flag.Duration("duration", 0, "time budget per decision (overrides episodes)")
		seed       = flag.Uint64("seed", uint64(time.Now().UnixNano()), "master random seed")
	)
	flag.Parse()

	rules := game.StandardRules()
	if *rulesPath != "" {
		loaded, err := game.LoadRules(*rulesPath)
		if err != nil {
			log.Fatal().Err(err).Msgf("loading rules from %s", *rulesPath)
		}
		rules = loaded
	}

	options := []searcher.Option{
		searcher.WithSamples(*samples),
		searcher.WithSeed(*seed),
	}
	if *duration > 0 {
		options = append(options, searcher.WithDuration(*duration))
	} else {
		options = append(options, searcher.WithEpisodes(*episodes))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *serve {
		srv := server.New(
			server.WithRules(rules),
			server.WithSeed(*seed),
			server.WithSearcher(searcher.NewMCTS(*goroutines, options...)),
		)
		if err := srv.ListenAndServe(ctx, *addr); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
		return
	}

	selfPlay(ctx, rules, *matches, *goroutines, *seed, options)
}

// selfPlay runs full matches of four searching seats and logs the outcomes.
func selfPlay(ctx context.Context, rules game.Rules, matches, goroutines int, seed uint64, options []searcher.Option) {
	rng := rand.New(rand.NewSource(seed))
	var wins [2]int
	for i := 0; i < matches; i++ {
		var table [4]agent.Agent
		for s := range table {
			table[s] = agent.NewMCTSAgent(searcher.NewMCTS(goroutines,
				append(options, searcher.WithSeed(rng.Uint64()))...))
		}
		m := engine.NewMatch(table,
			engine.WithRules(rules),
			engine.WithSeed(rng.Uint64()),
			engine.WithDealer(game.Seat(i%4)),
		)

		scores, err := m.Run(ctx)
		if err != nil {
			log.Error().Err(err).Msgf("match %d aborted", i+1)
			return
		}
		winner := 0
		if scores[1] > scores[0] {
			winner = 1
		}
		wins[winner]++
		log.Info().Msgf("match %d: team %d wins %d - %d", i+1, winner, scores[0], scores[1])
	}
	log.Info().Msgf("self-play done: %d - %d over %d matches", wins[0], wins[1], matches)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
