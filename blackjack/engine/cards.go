package engine

import (
	"errors"
	"math/rand"
	"time"
)

var ErrDeckEmpty = errors.New("deck is empty")

type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck returns the 52 cards in suit-major order, unshuffled. A zero seed
// picks a time-based one.
func NewDeck(seed int64) *Deck {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	d := &Deck{rng: rand.New(rand.NewSource(seed)), cards: make([]Card, 0, 52)}
	for _, s := range Suits {
		for rnk := Rank(2); rnk <= Ace; rnk++ {
			d.cards = append(d.cards, Card{Rank: rnk, Suit: s})
		}
	}
	return d
}

// DeckFrom builds a deck that draws cards in the given order.
func DeckFrom(cards ...Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...), rng: rand.New(rand.NewSource(1))}
}

func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckEmpty
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, nil
}

func (d *Deck) Remaining() int { return len(d.cards) }

// Cards returns a copy of the undrawn cards in draw order.
func (d *Deck) Cards() []Card { return append([]Card(nil), d.cards...) }

func (c Card) String() string { return c.Rank.String() + c.Suit.String() }
