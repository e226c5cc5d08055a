package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terminal-blackjack/blackjack/account"
	"terminal-blackjack/blackjack/config"
	"terminal-blackjack/blackjack/engine"
)

type memRepo struct {
	players map[string]account.Player
	loadErr error
	saveErr error
	saves   int
}

func newMemRepo(ps ...account.Player) *memRepo {
	m := &memRepo{players: map[string]account.Player{}}
	for _, p := range ps {
		m.players[p.Name] = p
	}
	return m
}

func (m *memRepo) Load(_ context.Context, name string) (account.Player, error) {
	if m.loadErr != nil {
		return account.Player{}, m.loadErr
	}
	p, ok := m.players[name]
	if !ok {
		return account.Player{}, account.ErrNotFound
	}
	return p, nil
}

func (m *memRepo) Save(_ context.Context, p account.Player) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.players[p.Name] = p
	return nil
}

type memHistory struct{ recs []account.RoundRecord }

func (h *memHistory) Append(_ context.Context, rec account.RoundRecord) error {
	h.recs = append(h.recs, rec)
	return nil
}

func card(r engine.Rank, s engine.Suit) engine.Card { return engine.Card{Rank: r, Suit: s} }

// deal stacks a deck in deal order: player, house, player, house, then extras.
func deal(p1, h1, p2, h2 engine.Card, rest ...engine.Card) *engine.Deck {
	return engine.DeckFrom(append([]engine.Card{p1, h1, p2, h2}, rest...)...)
}

type harness struct {
	s    *Session
	repo *memRepo
	hist *memHistory
	out  *bytes.Buffer
}

func newHarness(t *testing.T, input string, repo *memRepo, decks ...*engine.Deck) *harness {
	t.Helper()
	cfg := config.Config{
		RecordHistory:    true,
		StartingBalance:  100,
		MinBet:           1,
		TopUpAmount:      100,
		MaxLoginAttempts: 3,
		DeckSeed:         1,
	}
	h := &harness{repo: repo, hist: &memHistory{}, out: &bytes.Buffer{}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.s = NewSession(cfg, strings.NewReader(input), h.out, repo, h.hist, log)
	h.s.newDeck = func(int64) *engine.Deck {
		require.NotEmpty(t, decks, "no stacked deck left")
		d := decks[0]
		decks = decks[1:]
		return d
	}
	ids := 0
	h.s.newID = func() string {
		ids++
		return "round-" + string(rune('0'+ids))
	}
	h.s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return h
}

func lines(ls ...string) string { return strings.Join(ls, "\n") + "\n" }

func TestSessionNewPlayerBlackjack(t *testing.T) {
	h := newHarness(t, lines("N", "alice", "1234", "10", "N"), newMemRepo(),
		deal(card(engine.Ace, engine.Spades), card(9, engine.Hearts), card(engine.King, engine.Spades), card(7, engine.Clubs)))

	require.NoError(t, h.s.Run(context.Background()))

	assert.Contains(t, h.out.String(), "Congratulations! You have Blackjack!")
	assert.Equal(t, account.Player{Name: "alice", PIN: "1234", Balance: 115}, h.repo.players["alice"])
	require.Len(t, h.hist.recs, 1)
	rec := h.hist.recs[0]
	assert.Equal(t, "Win", rec.Result)
	assert.Equal(t, 15, rec.Net)
	assert.Equal(t, "round-1", rec.ID)
	assert.Equal(t, 1, h.s.stats.Naturals)
	assert.Contains(t, h.out.String(), "Goodbye!")
}

func TestSessionBothNaturalsPush(t *testing.T) {
	h := newHarness(t, lines("N", "alice", "1", "10", "N"), newMemRepo(),
		deal(card(engine.Ace, engine.Spades), card(engine.Ace, engine.Hearts), card(engine.King, engine.Spades), card(engine.Queen, engine.Clubs)))

	require.NoError(t, h.s.Run(context.Background()))
	assert.Contains(t, h.out.String(), "both have Blackjack")
	assert.Equal(t, 100, h.repo.players["alice"].Balance)
	assert.Equal(t, "Tie", h.hist.recs[0].Result)
}

func TestSessionHitTo21StandsAutomatically(t *testing.T) {
	repo := newMemRepo(account.Player{Name: "alice", PIN: "1234", Balance: 50})
	h := newHarness(t, lines("Y", "alice", "1234", "10", "H", "N"), repo,
		deal(card(5, engine.Spades), card(10, engine.Hearts), card(6, engine.Clubs), card(8, engine.Diamonds),
			card(engine.King, engine.Spades)))

	require.NoError(t, h.s.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "You have 21!")
	assert.Contains(t, out, "You win!")
	assert.NotContains(t, out, "Invalid input")
	assert.Equal(t, 60, repo.players["alice"].Balance)
}

func TestSessionBetValidation(t *testing.T) {
	h := newHarness(t, lines("N", "bob", "1", "abc", "0", "-5", "500", "20", "S", "N"), newMemRepo(),
		deal(card(10, engine.Spades), card(10, engine.Hearts), card(8, engine.Clubs), card(9, engine.Diamonds)))

	require.NoError(t, h.s.Run(context.Background()))

	assert.Equal(t, 4, strings.Count(h.out.String(), "Invalid bet amount"))
	assert.Contains(t, h.out.String(), "You lose!")
	assert.Equal(t, 80, h.repo.players["bob"].Balance)
}

func TestSessionRejectsUnknownAction(t *testing.T) {
	h := newHarness(t, lines("N", "bob", "1", "10", "x", "double", "S", "N"), newMemRepo(),
		deal(card(10, engine.Spades), card(10, engine.Hearts), card(9, engine.Clubs), card(8, engine.Diamonds)))

	require.NoError(t, h.s.Run(context.Background()))

	assert.Equal(t, 2, strings.Count(h.out.String(), "Invalid input. Please enter 'H' or 'S'."))
	assert.Equal(t, 110, h.repo.players["bob"].Balance)
}

func TestSessionBustThenTopUp(t *testing.T) {
	repo := newMemRepo(account.Player{Name: "carol", PIN: "9", Balance: 10})
	h := newHarness(t, lines("Y", "carol", "9", "10", "h", "Y", "N"), repo,
		deal(card(10, engine.Spades), card(7, engine.Hearts), card(6, engine.Clubs), card(10, engine.Diamonds),
			card(engine.Queen, engine.Hearts)))

	require.NoError(t, h.s.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Busted! You lose.")
	assert.Contains(t, out, "Your balance is $0.")
	assert.Equal(t, 100, repo.players["carol"].Balance)
	assert.Equal(t, 1, h.s.stats.Busts)
	assert.Equal(t, "Loss", h.hist.recs[0].Result)
}

func TestSessionDeclinedTopUpEnds(t *testing.T) {
	repo := newMemRepo(account.Player{Name: "carol", PIN: "9", Balance: 0})
	h := newHarness(t, lines("Y", "carol", "9", "N"), repo)

	require.NoError(t, h.s.Run(context.Background()))
	assert.Contains(t, h.out.String(), "Goodbye!")
	assert.Empty(t, h.hist.recs)
}

func TestSessionCredentialRetryIsBounded(t *testing.T) {
	repo := newMemRepo(account.Player{Name: "alice", PIN: "1234", Balance: 50})
	h := newHarness(t, lines("Y", "alice", "0000", "Y", "alice", "1111", "Y", "alice", "2222", "dave", "5"), repo)

	require.NoError(t, h.s.Run(context.Background()))

	out := h.out.String()
	assert.Equal(t, 3, strings.Count(out, "Player name and pin code do not match."))
	assert.Contains(t, out, "Too many attempts")
	assert.Equal(t, 100, repo.players["dave"].Balance)
	assert.Equal(t, 50, repo.players["alice"].Balance)
}

func TestSessionCredentialRetrySucceeds(t *testing.T) {
	repo := newMemRepo(account.Player{Name: "alice", PIN: "1234", Balance: 50})
	h := newHarness(t, lines("Y", "alice", "0000", "Y", "alice", "1234"), repo)

	require.NoError(t, h.s.Run(context.Background()))
	assert.Contains(t, h.out.String(), "Welcome, alice!")
	assert.Equal(t, "alice", h.s.player.Name)
	assert.Equal(t, 50, h.s.player.Balance)
}

func TestSessionUnknownReturningPlayerRegisters(t *testing.T) {
	h := newHarness(t, lines("y", "erin", "1", "erin", "42"), newMemRepo())

	require.NoError(t, h.s.Run(context.Background()))
	assert.Contains(t, h.out.String(), "Player not found. Starting as a new player.")
	assert.Equal(t, account.Player{Name: "erin", PIN: "42", Balance: 100}, h.repo.players["erin"])
}

func TestSessionEOFEndsGracefully(t *testing.T) {
	h := newHarness(t, "", newMemRepo())
	require.NoError(t, h.s.Run(context.Background()))
	assert.Contains(t, h.out.String(), "Welcome to Blackjack")
	assert.Contains(t, h.out.String(), "Thank you for playing!")
}

func TestSessionSaveFailureKeepsPlaying(t *testing.T) {
	repo := newMemRepo()
	repo.saveErr = errors.New("disk full")
	h := newHarness(t, lines("N", "frank", "1", "10", "S", "N"), repo,
		deal(card(10, engine.Spades), card(10, engine.Hearts), card(9, engine.Clubs), card(8, engine.Diamonds)))

	require.NoError(t, h.s.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Could not save your record")
	assert.Contains(t, out, "Could not save your balance")
	assert.Equal(t, 110, h.s.player.Balance)
	assert.Len(t, h.hist.recs, 1)
}

func TestSessionEmptyDeckIsFatal(t *testing.T) {
	h := newHarness(t, lines("N", "gina", "1", "10"), newMemRepo(),
		engine.DeckFrom(card(10, engine.Spades), card(10, engine.Hearts)))

	err := h.s.Run(context.Background())
	assert.ErrorIs(t, err, engine.ErrDeckEmpty)
}

func TestSessionJudgesDecisions(t *testing.T) {
	h := newHarness(t, lines("N", "hank", "1", "10", "S", "N"), newMemRepo(),
		deal(card(engine.King, engine.Spades), card(6, engine.Hearts), card(engine.Queen, engine.Clubs), card(10, engine.Diamonds),
			card(5, engine.Clubs)))
	h.s.cfg.Judge = true
	h.s.cfg.JudgeSamples = 300

	require.NoError(t, h.s.Run(context.Background()))

	assert.Equal(t, 1, h.s.stats.JudgeTotal)
	assert.Equal(t, 1, h.s.stats.JudgeGood)
	assert.Contains(t, h.out.String(), "Decisions matching the best EV: 1/1")
}

func TestSessionUnreadableRecordIsNeverOverwritten(t *testing.T) {
	repo := newMemRepo(account.Player{Name: "alice", PIN: "secret", Balance: 5000})
	repo.loadErr = errors.New("player record: balance \"5000x\": invalid syntax")
	h := newHarness(t, lines("N", "alice", "hijack", "10", "S", "N"), repo,
		deal(card(10, engine.Spades), card(10, engine.Hearts), card(9, engine.Clubs), card(8, engine.Diamonds)))

	require.NoError(t, h.s.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Playing without saving.")
	assert.Contains(t, out, "You win!")
	assert.Equal(t, 110, h.s.player.Balance)
	assert.Zero(t, repo.saves)
	assert.Equal(t, account.Player{Name: "alice", PIN: "secret", Balance: 5000}, repo.players["alice"])
	assert.Empty(t, h.hist.recs)
}

func TestSessionOverlongBetLineReprompts(t *testing.T) {
	h := newHarness(t, lines("N", "bob", "1", strings.Repeat("9", 70000), "10", "S", "N"), newMemRepo(),
		deal(card(10, engine.Spades), card(10, engine.Hearts), card(9, engine.Clubs), card(8, engine.Diamonds)))

	require.NoError(t, h.s.Run(context.Background()))
	assert.Contains(t, h.out.String(), "Input too long")
	assert.Equal(t, 110, h.repo.players["bob"].Balance)
}

func TestSessionInputEndingMidRoundReturnsBet(t *testing.T) {
	h := newHarness(t, lines("N", "bob", "1", "40"), newMemRepo(),
		deal(card(10, engine.Spades), card(10, engine.Hearts), card(6, engine.Clubs), card(8, engine.Diamonds)))

	require.NoError(t, h.s.Run(context.Background()))

	assert.Equal(t, 100, h.s.player.Balance)
	assert.Equal(t, 100, h.repo.players["bob"].Balance)
	assert.Contains(t, h.out.String(), "Final balance: $100")
	assert.Empty(t, h.hist.recs)
}
