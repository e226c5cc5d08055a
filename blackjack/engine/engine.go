package engine

import (
	"errors"
	"fmt"
)

var (
	ErrWrongPhase = errors.New("action not allowed in this phase")
	ErrBadBet     = errors.New("bet must be positive")
)

// Round is one hand of blackjack between the player and the house. The bet is
// already escrowed from the player's balance when the round is created; Payout
// is what goes back to the balance once the round is done.
type Round struct {
	ID      string
	Deck    *Deck
	Bet     int
	Player  *Hand
	House   *Hand
	Phase   Phase
	Outcome Outcome
	History []Step
}

func NewRound(id string, deck *Deck, bet int) (*Round, error) {
	if bet <= 0 {
		return nil, ErrBadBet
	}
	return &Round{
		ID: id, Deck: deck, Bet: bet,
		Player: &Hand{}, House: &Hand{},
		Phase: Dealing,
	}, nil
}

// Deal gives two cards each, player first. A player natural ends the round at
// once: a push if the house has one too, a blackjack otherwise.
func (r *Round) Deal() error {
	if r.Phase != Dealing {
		return fmt.Errorf("deal in %s: %w", r.Phase, ErrWrongPhase)
	}
	for i := 0; i < 2; i++ {
		if err := r.draw(PlayerParty, ""); err != nil {
			return err
		}
		if err := r.draw(HouseParty, ""); err != nil {
			return err
		}
	}
	switch {
	case r.Player.Natural() && r.House.Natural():
		r.finish(Push)
	case r.Player.Natural():
		r.finish(Blackjack)
	default:
		r.Phase = PlayerTurn
	}
	return nil
}

func (r *Round) Legal() []Action {
	if r.Phase != PlayerTurn {
		return nil
	}
	return []Action{Hit, Stand}
}

// Apply runs one player decision. Busting ends the round; reaching 21 stands
// automatically.
func (r *Round) Apply(a Action) error {
	if r.Phase != PlayerTurn {
		return fmt.Errorf("%s in %s: %w", a, r.Phase, ErrWrongPhase)
	}
	switch a {
	case Hit:
		if err := r.draw(PlayerParty, Hit); err != nil {
			return err
		}
		switch s := r.Player.Score(); {
		case s > BlackjackScore:
			r.finish(Loss)
		case s == BlackjackScore:
			r.Phase = HouseTurn
		}
	case Stand:
		r.History = append(r.History, Step{Party: PlayerParty, Action: Stand, Score: r.Player.Score()})
		r.Phase = HouseTurn
	default:
		return fmt.Errorf("unknown action %q", a)
	}
	return nil
}

// PlayHouse draws for the house while it is under 17.
func (r *Round) PlayHouse() error {
	if r.Phase != HouseTurn {
		return fmt.Errorf("house turn in %s: %w", r.Phase, ErrWrongPhase)
	}
	for r.House.Score() < HouseStandsOn {
		if err := r.draw(HouseParty, Hit); err != nil {
			return err
		}
	}
	r.Phase = Settlement
	return nil
}

func (r *Round) Settle() (Outcome, error) {
	if r.Phase != Settlement {
		return Pending, fmt.Errorf("settle in %s: %w", r.Phase, ErrWrongPhase)
	}
	r.finish(Compare(r.Player.Score(), r.House.Score()))
	return r.Outcome, nil
}

// Compare settles two final scores for a player who has not busted.
func Compare(player, house int) Outcome {
	switch {
	case house > BlackjackScore:
		return Win
	case player > house:
		return Win
	case player < house:
		return Loss
	default:
		return Push
	}
}

// Payout is the amount credited back to the balance for the escrowed bet.
func (r *Round) Payout() int { return PayoutFor(r.Outcome, r.Bet) }

// Net is the balance change over the whole round.
func (r *Round) Net() int {
	if r.Outcome == Pending {
		return 0
	}
	return r.Payout() - r.Bet
}

func PayoutFor(o Outcome, bet int) int {
	switch o {
	case Blackjack:
		return bet + bet*3/2
	case Win:
		return 2 * bet
	case Push:
		return bet
	default:
		return 0
	}
}

// HoleHidden reports whether the house's second card is still face down.
func (r *Round) HoleHidden() bool {
	return r.Phase == Dealing || r.Phase == PlayerTurn
}

// Upcard is the house's first card.
func (r *Round) Upcard() (Card, bool) {
	if r.House.Len() == 0 {
		return Card{}, false
	}
	return r.House.Cards[0], true
}

// Discard clears both hands once the round has been recorded.
func (r *Round) Discard() {
	r.Player.Clear()
	r.House.Clear()
}

func (r *Round) finish(o Outcome) {
	r.Outcome = o
	r.Phase = Done
}

func (r *Round) draw(p Party, a Action) error {
	c, err := r.Deck.Draw()
	if err != nil {
		return fmt.Errorf("round %s: %s draw: %w", r.ID, p, err)
	}
	h := r.Player
	if p == HouseParty {
		h = r.House
	}
	h.Add(c)
	r.History = append(r.History, Step{Party: p, Action: a, Card: &c, Score: h.Score()})
	return nil
}
