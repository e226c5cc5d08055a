package engine

type Suit byte

const (
	Spades   Suit = 's'
	Hearts   Suit = 'h'
	Diamonds Suit = 'd'
	Clubs    Suit = 'c'
)

// Suits in canonical deck order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	}
	return "?"
}

// Rank runs 2..14 with Jack=11, Queen=12, King=13, Ace=14.
type Rank int

const (
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

func (r Rank) String() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	if r >= 2 && r <= 10 {
		return [...]string{"2", "3", "4", "5", "6", "7", "8", "9", "10"}[r-2]
	}
	return "?"
}

// Value is the base blackjack value; an Ace counts 11 until the hand downgrades it.
func (r Rank) Value() int {
	switch {
	case r == Ace:
		return 11
	case r >= 10:
		return 10
	default:
		return int(r)
	}
}

type Card struct {
	Rank Rank
	Suit Suit
} // e.g. {Ace, Spades} => "A♠"

type Party string

const (
	PlayerParty Party = "player"
	HouseParty  Party = "house"
)

type Action string

const (
	Hit   Action = "hit"
	Stand Action = "stand"
)

type Phase string

const (
	Betting    Phase = "betting"
	Dealing    Phase = "dealing"
	PlayerTurn Phase = "player_turn"
	HouseTurn  Phase = "house_turn"
	Settlement Phase = "settlement"
	Done       Phase = "done"
)

type Outcome string

const (
	Pending   Outcome = ""
	Blackjack Outcome = "blackjack"
	Win       Outcome = "win"
	Loss      Outcome = "loss"
	Push      Outcome = "push"
)

// Label is the history-file result for an outcome: Win, Loss or Tie.
func (o Outcome) Label() string {
	switch o {
	case Blackjack, Win:
		return "Win"
	case Loss:
		return "Loss"
	case Push:
		return "Tie"
	}
	return ""
}

// Step is one entry in a round's history.
type Step struct {
	Party  Party
	Action Action // empty for deal cards
	Card   *Card  // nil for a stand
	Score  int
}
