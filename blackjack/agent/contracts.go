package agent

import (
	"errors"
	"fmt"
	"strings"

	"terminal-blackjack/blackjack/engine"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrIllegalAction = errors.New("illegal action")
)

// Observation is the table as the player is allowed to see it: the house hole
// card stays hidden until the house plays.
type Observation struct {
	RoundID     string
	Phase       engine.Phase
	Bet         int
	PlayerCards []engine.Card
	PlayerScore int
	Soft        bool
	HouseCards  []engine.Card // up-card only while the hole is hidden
	HouseScore  int           // score of HouseCards
	HoleHidden  bool
	Legal       []engine.Action
}

func BuildObservation(r *engine.Round) Observation {
	house := append([]engine.Card(nil), r.House.Cards...)
	if r.HoleHidden() && len(house) > 1 {
		house = house[:1]
	}
	visible := engine.Hand{Cards: house}
	return Observation{
		RoundID:     r.ID,
		Phase:       r.Phase,
		Bet:         r.Bet,
		PlayerCards: append([]engine.Card(nil), r.Player.Cards...),
		PlayerScore: r.Player.Score(),
		Soft:        r.Player.Soft(),
		HouseCards:  house,
		HouseScore:  visible.Score(),
		HoleHidden:  r.HoleHidden(),
		Legal:       r.Legal(),
	}
}

// ParseAction maps console input (H/S, hit/stand, any case) to an action.
func ParseAction(s string) (engine.Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "hit":
		return engine.Hit, nil
	case "s", "stand":
		return engine.Stand, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownAction)
}

// Validate checks the action against the observation's legal actions.
func Validate(o Observation, a engine.Action) error {
	for _, la := range o.Legal {
		if la == a {
			return nil
		}
	}
	return fmt.Errorf("%s (legal: %v): %w", a, o.Legal, ErrIllegalAction)
}
