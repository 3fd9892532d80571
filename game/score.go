package game

// DealScore is the settled outcome of one deal. Totals already include the
// contract resolution and coinche multiplier and are what the match score
// accumulates; the other fields expose the raw tally for feeds and tests.
type DealScore struct {
	TrickPoints  [2]int // card points plus the last-trick bonus
	BeloteTeam   int    // team holding belote+rebelote, -1 if none
	CapotTeam    int    // team that took all eight tricks, -1 if none
	ContractMade bool
	Totals       [2]int
}

// Score tallies a finished deal. Calling it on a voided deal returns the
// zero outcome (redeal, no movement).
func (gs *GameState) Score() DealScore {
	score := DealScore{BeloteTeam: -1, CapotTeam: -1}
	if gs.Phase != PhaseScored {
		return score
	}

	rules := gs.Rules
	trump := gs.Contract.Trump
	var tricksWon [2]int
	for i := range gs.Tricks {
		t := &gs.Tricks[i]
		winner := t.Winner(rules, trump).Team()
		tricksWon[winner]++
		score.TrickPoints[winner] += t.Points(rules, trump)
		if i == len(gs.Tricks)-1 {
			score.TrickPoints[winner] += rules.LastTrickBonus
		}
	}
	for team := 0; team < 2; team++ {
		if tricksWon[team] == 8 {
			score.CapotTeam = team
		}
	}
	score.BeloteTeam = gs.beloteTeam()

	bid := int(gs.Contract.Seat.Team())
	def := 1 - bid
	mult := gs.Contract.Multiplier

	bidPoints := score.TrickPoints[bid]
	if score.BeloteTeam == bid {
		bidPoints += rules.BeloteBonus
	}
	if gs.Contract.Value == Capot {
		score.ContractMade = score.CapotTeam == bid
	} else {
		score.ContractMade = bidPoints >= int(gs.Contract.Value)
	}

	if score.ContractMade {
		score.Totals[bid] = bidPoints * mult
		if score.CapotTeam == bid {
			score.Totals[bid] += rules.CapotBonus
		}
		if score.BeloteTeam == def {
			score.Totals[def] += rules.BeloteBonus
		}
		if rules.DefendersScoreOnSuccess {
			score.Totals[def] += score.TrickPoints[def]
		}
		return score
	}

	// Dans les choux: every trick point of the deal goes to the defense.
	// Belote alone is kept by its holder whatever the outcome.
	defPoints := score.TrickPoints[0] + score.TrickPoints[1]
	if score.BeloteTeam == def {
		defPoints += rules.BeloteBonus
	}
	score.Totals[def] = defPoints * mult
	if score.CapotTeam == def {
		score.Totals[def] += rules.CapotBonus
	}
	if score.BeloteTeam == bid {
		score.Totals[bid] = rules.BeloteBonus
	}
	return score
}

// beloteTeam finds the team whose player put down both the king and queen
// of trump. Derived from trick history only, never stored.
func (gs *GameState) beloteTeam() int {
	trump := gs.Contract.Trump
	if trump >= NoTrump {
		return -1
	}
	king := NewCard(Suit(trump), King)
	queen := NewCard(Suit(trump), Queen)
	kingSeat, queenSeat := -1, -1
	for i := range gs.Tricks {
		t := &gs.Tricks[i]
		for j, c := range t.Cards {
			switch c {
			case king:
				kingSeat = int(t.SeatAt(j))
			case queen:
				queenSeat = int(t.SeatAt(j))
			}
		}
	}
	if kingSeat >= 0 && kingSeat == queenSeat {
		return int(Seat(kingSeat).Team())
	}
	return -1
}
