package engine

import "strings"

const (
	BlackjackScore = 21
	HouseStandsOn  = 17
)

type Hand struct {
	Cards []Card
}

func (h *Hand) Add(c Card) { h.Cards = append(h.Cards, c) }
func (h *Hand) Clear()     { h.Cards = h.Cards[:0] }
func (h *Hand) Len() int   { return len(h.Cards) }

// Score counts every Ace as 11, then downgrades Aces to 1 one at a time while
// the total is over 21.
func (h *Hand) Score() int {
	total, _ := h.tally()
	return total
}

// Soft reports whether an Ace is still counted as 11.
func (h *Hand) Soft() bool {
	_, soft := h.tally()
	return soft > 0
}

func (h *Hand) Bust() bool { return h.Score() > BlackjackScore }

// Natural is a two-card 21.
func (h *Hand) Natural() bool { return len(h.Cards) == 2 && h.Score() == BlackjackScore }

func (h *Hand) tally() (total, soft int) {
	for _, c := range h.Cards {
		total += c.Rank.Value()
		if c.Rank == Ace {
			soft++
		}
	}
	for total > BlackjackScore && soft > 0 {
		total -= 10
		soft--
	}
	return total, soft
}

func (h *Hand) String() string {
	parts := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
