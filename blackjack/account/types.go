package account

import (
	"context"
	"fmt"
	"time"
)

// Player is the persisted record: name, pin code and balance.
type Player struct {
	Name    string
	PIN     string
	Balance int
}

// PlaceBet escrows bet from the balance. The bet must be at least min and no
// more than the balance.
func (p *Player) PlaceBet(bet, min int) error {
	if min < 1 {
		min = 1
	}
	if bet < min || bet > p.Balance {
		return fmt.Errorf("bet %d with balance %d: %w", bet, p.Balance, ErrInvalidBet)
	}
	p.Balance -= bet
	return nil
}

func (p *Player) Credit(amount int) {
	if amount > 0 {
		p.Balance += amount
	}
}

// Repository stores one record per player name. Load returns ErrNotFound when
// no record exists.
type Repository interface {
	Load(ctx context.Context, name string) (Player, error)
	Save(ctx context.Context, p Player) error
}

// RoundRecord is one settled round in the history log.
type RoundRecord struct {
	ID          string
	Player      string
	Result      string // Win | Loss | Tie
	Bet         int
	Net         int
	PlayerScore int
	HouseScore  int
	At          time.Time
}

type History interface {
	Append(ctx context.Context, rec RoundRecord) error
}
