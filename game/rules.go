package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BidValue is the contract value of a bid, 80..180 in steps of 10, or Capot.
type BidValue int

// Capot commits the bidding side to taking all eight tricks. It outbids
// every numeric value.
const Capot BidValue = 250

func (v BidValue) String() string {
	if v == Capot {
		return "capot"
	}
	return fmt.Sprintf("%d", int(v))
}

// Rules carries every variant-dependent constant of the game. The engine
// consumes a Rules value at construction; nothing in this package reads
// global state, so multiple variants can run side by side.
//
// Point and order tables are indexed by Rank. Each per-suit points column
// sums to 38 under no-trump and all-trump, and to 30 plain / 62 trump under
// a suit contract, so a full deal is always worth 152 card points.
type Rules struct {
	PlainPoints    [8]int `yaml:"plain_points"`
	TrumpPoints    [8]int `yaml:"trump_points"`
	NoTrumpPoints  [8]int `yaml:"no_trump_points"`
	AllTrumpPoints [8]int `yaml:"all_trump_points"`

	PlainOrder [8]int `yaml:"plain_order"`
	TrumpOrder [8]int `yaml:"trump_order"`

	BeloteBonus    int `yaml:"belote_bonus"`
	LastTrickBonus int `yaml:"last_trick_bonus"`
	CapotBonus     int `yaml:"capot_bonus"`

	MinBid  BidValue `yaml:"min_bid"`
	MaxBid  BidValue `yaml:"max_bid"`
	BidStep BidValue `yaml:"bid_step"`

	TargetScore int `yaml:"target_score"`

	AllowNoTrump  bool `yaml:"allow_no_trump"`
	AllowAllTrump bool `yaml:"allow_all_trump"`

	// DiscardIfPartnerMaster waives the trump obligation entirely when the
	// player's partner is winning the trick (regional rule). When false a
	// void player must still trump; only the overtrump duty is waived.
	DiscardIfPartnerMaster bool `yaml:"discard_if_partner_master"`

	// DefendersScoreOnSuccess lets the defending side keep its trick points
	// when the contract is made, instead of scoring zero.
	DefendersScoreOnSuccess bool `yaml:"defenders_score_on_success"`
}

// StandardRules is the tournament contrée ruleset.
func StandardRules() Rules {
	return Rules{
		//                 7  8   9  10   J  Q  K   A
		PlainPoints:    [8]int{0, 0, 0, 10, 2, 3, 4, 11},
		TrumpPoints:    [8]int{0, 0, 14, 10, 20, 3, 4, 11},
		NoTrumpPoints:  [8]int{0, 0, 0, 10, 2, 3, 4, 19},
		AllTrumpPoints: [8]int{0, 0, 9, 5, 14, 1, 3, 6},
		PlainOrder:     [8]int{0, 1, 2, 6, 3, 4, 5, 7},
		TrumpOrder:     [8]int{0, 1, 6, 4, 7, 2, 3, 5},
		BeloteBonus:    20,
		LastTrickBonus: 10,
		CapotBonus:     250,
		MinBid:         80,
		MaxBid:         180,
		BidStep:        10,
		TargetScore:    1500,
		AllowNoTrump:   true,
		AllowAllTrump:  true,
	}
}

// LoadRules reads a YAML variant file over the standard baseline, so a file
// only needs the fields it changes.
func LoadRules(path string) (Rules, error) {
	r := StandardRules()
	data, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("load rules: %w", err)
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("load rules %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return r, fmt.Errorf("load rules %s: %w", path, err)
	}
	return r, nil
}

func (r Rules) Validate() error {
	if r.BidStep <= 0 || r.MinBid <= 0 || r.MaxBid < r.MinBid {
		return fmt.Errorf("invalid bid ladder %v..%v step %v", r.MinBid, r.MaxBid, r.BidStep)
	}
	if r.TargetScore <= 0 {
		return fmt.Errorf("invalid target score %d", r.TargetScore)
	}
	seen := [2][8]bool{}
	for rank := 0; rank < 8; rank++ {
		for i, table := range [2][8]int{r.PlainOrder, r.TrumpOrder} {
			o := table[rank]
			if o < 0 || o > 7 || seen[i][o] {
				return fmt.Errorf("order table %d is not a permutation", i)
			}
			seen[i][o] = true
		}
	}
	return nil
}

// CardPoints returns the point value of c under trump mode m.
func (r Rules) CardPoints(c Card, m TrumpMode) int {
	switch m {
	case NoTrump:
		return r.NoTrumpPoints[c.Rank()]
	case AllTrump:
		return r.AllTrumpPoints[c.Rank()]
	default:
		if m.IsTrump(c.Suit()) {
			return r.TrumpPoints[c.Rank()]
		}
		return r.PlainPoints[c.Rank()]
	}
}

// CardOrder returns the trick-taking strength of c under trump mode m,
// comparable only between cards of the same suit (trump beats plain by rule,
// not by order).
func (r Rules) CardOrder(c Card, m TrumpMode) int {
	if m.IsTrump(c.Suit()) {
		return r.TrumpOrder[c.Rank()]
	}
	return r.PlainOrder[c.Rank()]
}

// BidLadder enumerates the biddable values strictly above prev (zero for an
// opening bid), ending with Capot.
func (r Rules) BidLadder(prev BidValue) []BidValue {
	var out []BidValue
	start := r.MinBid
	if prev >= r.MinBid {
		start = prev + r.BidStep
	}
	for v := start; v <= r.MaxBid; v += r.BidStep {
		out = append(out, v)
	}
	if prev < Capot {
		out = append(out, Capot)
	}
	return out
}

// TrumpModes enumerates the announceable trump modes under this variant.
func (r Rules) TrumpModes() []TrumpMode {
	modes := []TrumpMode{TrumpSpades, TrumpHearts, TrumpDiamonds, TrumpClubs}
	if r.AllowNoTrump {
		modes = append(modes, NoTrump)
	}
	if r.AllowAllTrump {
		modes = append(modes, AllTrump)
	}
	return modes
}
