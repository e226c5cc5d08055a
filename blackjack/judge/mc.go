package judge

import (
	"math/rand"

	"terminal-blackjack/blackjack/agent"
	"terminal-blackjack/blackjack/engine"
)

// Epsilon is how far, in units of the bet, the chosen action may trail the
// best one and still count as a top action.
const Epsilon = 0.02

// Verdict compares hit and stand for one player decision. EVs are per unit
// of the bet.
type Verdict struct {
	Chosen  engine.Action
	Best    engine.Action
	EVHit   float64
	EVStand float64
	Gap     float64
	IsTop   bool
	Samples int
}

// Evaluate estimates EV(hit) and EV(stand) by sampling the cards the player
// cannot see. The unseen pool is a full deck minus the player's cards and the
// house up-card, so the real deck order never leaks into the estimate. Both
// actions are played out against the same shuffles.
//
// A zero-sample Verdict means the observation was not a player decision.
func Evaluate(obs agent.Observation, chosen engine.Action, samples int, seed int64) Verdict {
	v := Verdict{Chosen: chosen, Best: chosen, IsTop: true}
	if samples <= 0 || !obs.HoleHidden || len(obs.HouseCards) != 1 || len(obs.Legal) == 0 {
		return v
	}
	up := obs.HouseCards[0]

	used := map[engine.Card]bool{up: true}
	for _, c := range obs.PlayerCards {
		used[c] = true
	}
	pool := make([]engine.Card, 0, 52)
	for _, c := range engine.NewDeck(1).Cards() {
		if !used[c] {
			pool = append(pool, c)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	var sumHit, sumStand float64
	for i := 0; i < samples; i++ {
		rng.Shuffle(len(pool), func(a, b int) { pool[a], pool[b] = pool[b], pool[a] })
		sumStand += playOut(obs.PlayerCards, up, pool, false)
		sumHit += playOut(obs.PlayerCards, up, pool, true)
	}
	n := float64(samples)
	v.EVHit, v.EVStand, v.Samples = sumHit/n, sumStand/n, samples

	v.Best = engine.Stand
	evBest := v.EVStand
	if v.EVHit > evBest {
		v.Best, evBest = engine.Hit, v.EVHit
	}
	evChosen := v.EVStand
	if chosen == engine.Hit {
		evChosen = v.EVHit
	}
	v.Gap = evBest - evChosen
	v.IsTop = v.Gap <= Epsilon
	return v
}

// playOut deals from the front of pool: the house hole card first, then any
// player hits, then the house draws. After the first hit the player keeps
// hitting while a further card cannot bust. Returns +1, 0 or -1.
func playOut(playerCards []engine.Card, up engine.Card, pool []engine.Card, hit bool) float64 {
	next := 0
	draw := func() engine.Card {
		c := pool[next]
		next++
		return c
	}

	house := engine.Hand{Cards: []engine.Card{up, draw()}}
	player := engine.Hand{Cards: append(make([]engine.Card, 0, len(playerCards)+4), playerCards...)}
	if hit {
		player.Add(draw())
		for player.Score() <= 11 {
			player.Add(draw())
		}
		if player.Bust() {
			return -1
		}
	}
	for house.Score() < engine.HouseStandsOn {
		house.Add(draw())
	}
	switch engine.Compare(player.Score(), house.Score()) {
	case engine.Win:
		return 1
	case engine.Loss:
		return -1
	default:
		return 0
	}
}
