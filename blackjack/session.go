package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"terminal-blackjack/blackjack/account"
	"terminal-blackjack/blackjack/agent"
	"terminal-blackjack/blackjack/config"
	"terminal-blackjack/blackjack/engine"
	"terminal-blackjack/blackjack/judge"
	"terminal-blackjack/blackjack/store"
)

// tallier is implemented by history backends that can report a player's
// lifetime record.
type tallier interface {
	PlayerTally(ctx context.Context, name string) (store.Tally, error)
}

// Session is one sitting at the table: a single player, any number of rounds.
type Session struct {
	cfg      config.Config
	io       *Prompter
	accounts *account.Service
	history  account.History
	log      *slog.Logger

	seeds   seedStream
	newDeck func(seed int64) *engine.Deck
	newID   func() string
	now     func() time.Time

	player *account.Player
	stats  SessionStats
	// unsaved is set when the player's name could not be checked against the
	// store; nothing is written for the rest of the session.
	unsaved bool
}

func NewSession(cfg config.Config, in io.Reader, out io.Writer, repo account.Repository, history account.History, log *slog.Logger) *Session {
	return &Session{
		cfg:      cfg,
		io:       NewPrompter(in, out),
		accounts: account.NewService(repo, cfg.StartingBalance),
		history:  history,
		log:      log,
		seeds:    newSeedStream(baseSeed(cfg.DeckSeed)),
		newDeck: func(seed int64) *engine.Deck {
			d := engine.NewDeck(seed)
			d.Shuffle()
			return d
		},
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Run plays until the player quits, runs dry and declines a top-up, or the
// input ends. Only engine failures are returned.
func (s *Session) Run(ctx context.Context) error {
	s.io.Println(bold("--- Welcome to Blackjack! ---"))
	err := s.play(ctx)
	if errors.Is(err, ErrInputClosed) {
		s.log.Info("input closed, ending session")
		err = nil
	}
	if s.player != nil {
		s.summary(ctx)
	}
	s.io.Println("Thank you for playing!")
	return err
}

func (s *Session) play(ctx context.Context) error {
	p, err := s.login(ctx)
	if err != nil {
		return err
	}
	s.player = p
	s.io.section("Welcome, " + p.Name + "!")
	s.io.Printf("Your current balance: $%d\n", p.Balance)

	for {
		ok, err := s.ensureFunds(ctx)
		if err != nil || !ok {
			return err
		}
		if err := s.playRound(ctx); err != nil {
			return err
		}
		s.io.section("Play Again")
		if ok, err := s.ensureFunds(ctx); err != nil || !ok {
			return err
		}
		again, err := s.io.YesNo("Do you want to play again? (Y/N): ")
		if err != nil {
			return err
		}
		if !again {
			s.io.Println("Goodbye!")
			return nil
		}
	}
}

//
// ===== login =====
//

func (s *Session) login(ctx context.Context) (*account.Player, error) {
	returning, err := s.io.YesNo("Are you a returning player? (Y/N): ")
	if err != nil {
		return nil, err
	}
	if returning {
		p, err := s.loginReturning(ctx)
		if err != nil || p != nil {
			return p, err
		}
	}
	return s.register(ctx)
}

// loginReturning gives the player MaxLoginAttempts tries. A nil player with a
// nil error means fall through to registration.
func (s *Session) loginReturning(ctx context.Context) (*account.Player, error) {
	name, err := s.io.Ask("Enter your name: ")
	if err != nil {
		return nil, err
	}
	for attempt := 1; ; attempt++ {
		pin, err := s.io.Ask("Enter your pin code: ")
		if err != nil {
			return nil, err
		}
		p, err := s.accounts.Login(ctx, name, pin)
		switch {
		case err == nil:
			s.log.Info("player logged in", "player", p.Name, "balance", p.Balance)
			return p, nil
		case errors.Is(err, account.ErrNotFound):
			s.io.Println("Player not found. Starting as a new player.")
			return nil, nil
		case errors.Is(err, account.ErrBadCredentials):
			s.log.Info("login rejected", "player", name, "attempt", attempt)
			s.io.Println(bad("Player name and pin code do not match."))
		default:
			s.log.Warn("player lookup failed", "player", name, "error", err)
			s.io.Println(warn(fmt.Sprintf("Could not read player records (%v). Starting as a new player.", err)))
			return nil, nil
		}

		if attempt >= s.cfg.MaxLoginAttempts {
			s.io.Println("Too many attempts. Starting as a new player.")
			return nil, nil
		}
		retry, err := s.io.YesNo("Would you like to re-enter your name? (Y/N): ")
		if err != nil {
			return nil, err
		}
		if !retry {
			return nil, nil
		}
		if name, err = s.io.Ask("Enter your name: "); err != nil {
			return nil, err
		}
	}
}

func (s *Session) register(ctx context.Context) (*account.Player, error) {
	for {
		name, err := s.io.Ask("Enter your name: ")
		if err != nil {
			return nil, err
		}
		pin, err := s.io.Ask("Create a new pin: ")
		if err != nil {
			return nil, err
		}
		p, err := s.accounts.Register(ctx, name, pin)
		switch {
		case err == nil:
			s.log.Info("player registered", "player", p.Name)
			return p, nil
		case errors.Is(err, account.ErrInvalidName):
			s.io.Println(warn(`Names must not be empty, have outer spaces or contain / \ : * ? " < > |.`))
		case errors.Is(err, account.ErrNameTaken):
			s.io.Println(warn("That name is already taken. Please choose another."))
		case errors.Is(err, account.ErrUnverified) && p != nil:
			s.log.Warn("player lookup failed, session will not be saved", "player", p.Name, "error", err)
			s.io.Println(warn(fmt.Sprintf("Could not check player records (%v). Playing without saving.", err)))
			s.unsaved = true
			return p, nil
		case p != nil:
			s.log.Warn("new player not saved", "player", p.Name, "error", err)
			s.io.Println(warn(fmt.Sprintf("Could not save your record (%v). Playing on anyway.", err)))
			return p, nil
		default:
			return nil, err
		}
	}
}

//
// ===== rounds =====
//

// ensureFunds offers a top-up when the balance cannot cover the minimum bet.
// It reports false when the player declines.
func (s *Session) ensureFunds(ctx context.Context) (bool, error) {
	if s.player.Balance >= s.cfg.MinBet {
		return true, nil
	}
	s.io.Printf("Your balance is $%d.\n", s.player.Balance)
	add, err := s.io.YesNo("Would you like to add money? (Y/N): ")
	if err != nil {
		return false, err
	}
	if !add {
		s.io.Println("Goodbye!")
		return false, nil
	}
	s.player.Credit(s.cfg.TopUpAmount)
	s.log.Info("balance topped up", "player", s.player.Name, "amount", s.cfg.TopUpAmount)
	s.savePlayer(ctx)
	s.io.Printf("Added $%d. Your current balance: $%d\n", s.cfg.TopUpAmount, s.player.Balance)
	return true, nil
}

func (s *Session) askBet() (int, error) {
	s.io.Printf("Your current balance: $%d\n", s.player.Balance)
	for {
		ans, err := s.io.Ask(fmt.Sprintf("Enter your bet amount ($%d minimum): ", s.cfg.MinBet))
		if err != nil {
			return 0, err
		}
		bet, convErr := strconv.Atoi(ans)
		if convErr == nil {
			if err := s.player.PlaceBet(bet, s.cfg.MinBet); err == nil {
				return bet, nil
			}
		}
		s.io.Println(warn(fmt.Sprintf("Invalid bet amount. Your balance is $%d", s.player.Balance)))
	}
}

func (s *Session) playRound(ctx context.Context) error {
	s.io.section("New Round")
	bet, err := s.askBet()
	if err != nil {
		return err
	}
	settled := false
	defer func() {
		if !settled {
			s.player.Credit(bet)
			s.log.Info("unsettled bet returned", "player", s.player.Name, "bet", bet)
		}
	}()

	seed := int64(s.seeds.next())
	r, err := engine.NewRound(s.newID(), s.newDeck(seed), bet)
	if err != nil {
		return err
	}
	log := s.log.With("player", s.player.Name, "round", r.ID)
	log.Debug("round started", "bet", bet, "seed", seed)

	if err := r.Deal(); err != nil {
		return fmt.Errorf("deal: %w", err)
	}
	s.showTable(r)

	for r.Phase == engine.PlayerTurn {
		ans, err := s.io.Ask("Do you want to hit or stand? (H/S): ")
		if err != nil {
			return err
		}
		a, err := agent.ParseAction(ans)
		if err != nil {
			s.io.Println(warn("Invalid input. Please enter 'H' or 'S'."))
			continue
		}
		obs := agent.BuildObservation(r)
		if err := agent.Validate(obs, a); err != nil {
			return err
		}
		if s.cfg.Judge {
			v := judge.Evaluate(obs, a, s.cfg.JudgeSamples, seed+int64(len(r.History)))
			s.stats.AddVerdict(v)
			log.Debug("decision judged", "chosen", a, "best", v.Best,
				"ev_hit", v.EVHit, "ev_stand", v.EVStand, "top", v.IsTop)
		}
		if err := r.Apply(a); err != nil {
			return fmt.Errorf("player %s: %w", a, err)
		}
		if a == engine.Stand {
			s.io.Println("You chose to stand.")
			continue
		}
		last := r.Player.Cards[r.Player.Len()-1]
		s.io.Printf("You drew a %s\n", cyan(last.String()))
		s.showHand("Player's", r.Player)
		if r.Phase == engine.HouseTurn {
			s.io.Println(good("You have 21!"))
		}
	}

	if r.Phase == engine.HouseTurn {
		drawn := r.House.Len()
		if err := r.PlayHouse(); err != nil {
			return fmt.Errorf("house turn: %w", err)
		}
		s.showHand("House's", &engine.Hand{Cards: r.House.Cards[:drawn]})
		for _, card := range r.House.Cards[drawn:] {
			s.io.Printf("House drew a %s\n", cyan(card.String()))
		}
		if r.House.Len() > drawn {
			s.showHand("House's", r.House)
		}
	}
	if r.Phase == engine.Settlement {
		if _, err := r.Settle(); err != nil {
			return err
		}
	}

	settled = true
	s.player.Credit(r.Payout())
	s.announce(r)
	s.io.Printf("Your current balance: $%d\n", s.player.Balance)
	log.Info("round settled", "outcome", r.Outcome, "bet", r.Bet, "net", r.Net(), "balance", s.player.Balance)

	s.stats.AddRound(r)
	s.record(ctx, r)
	r.Discard()
	return nil
}

func (s *Session) showHand(owner string, h *engine.Hand) {
	s.io.Printf("\n%s Hand: %s\n", owner, h)
	s.io.Printf("%s Hand Value: %d\n", owner, h.Score())
}

func (s *Session) showTable(r *engine.Round) {
	s.showHand("Player's", r.Player)
	if up, ok := r.Upcard(); ok && r.HoleHidden() {
		s.io.Printf("\nHouse's Hand: %s %s\n", up, dim("[Hidden]"))
		return
	}
	s.showHand("House's", r.House)
}

func (s *Session) announce(r *engine.Round) {
	switch r.Outcome {
	case engine.Blackjack:
		s.io.Println(good("Congratulations! You have Blackjack!"))
	case engine.Push:
		if r.Player.Natural() && r.House.Natural() {
			s.io.Println("You and the house both have Blackjack. It's a tie.")
			return
		}
		s.io.Println("It's a tie.")
	case engine.Win:
		if r.House.Bust() {
			s.io.Println(good("House busted! You win!"))
			return
		}
		s.io.Println(good("You win!"))
	case engine.Loss:
		if r.Player.Bust() {
			s.io.Println(bad("Busted! You lose."))
			return
		}
		s.io.Println(bad("You lose!"))
	}
}

//
// ===== persistence =====
//

func (s *Session) savePlayer(ctx context.Context) {
	if s.unsaved {
		return
	}
	if err := s.accounts.Save(ctx, s.player); err != nil {
		s.log.Warn("save player failed", "player", s.player.Name, "error", err)
		s.io.Println(warn(fmt.Sprintf("Could not save your balance (%v). Your session continues.", err)))
	}
}

func (s *Session) record(ctx context.Context, r *engine.Round) {
	s.savePlayer(ctx)
	if s.unsaved || s.history == nil || !s.cfg.RecordHistory {
		return
	}
	rec := account.RoundRecord{
		ID:          r.ID,
		Player:      s.player.Name,
		Result:      r.Outcome.Label(),
		Bet:         r.Bet,
		Net:         r.Net(),
		PlayerScore: r.Player.Score(),
		HouseScore:  r.House.Score(),
		At:          s.now(),
	}
	if err := s.history.Append(ctx, rec); err != nil {
		s.log.Warn("append history failed", "player", s.player.Name, "round", r.ID, "error", err)
		s.io.Println(warn(fmt.Sprintf("Could not record the round (%v).", err)))
	}
}

func (s *Session) summary(ctx context.Context) {
	st := s.stats
	s.io.section("Session Summary")
	s.io.Printf("Rounds: %d  Wins: %d  Losses: %d  Ties: %d\n", st.Rounds, st.Wins, st.Losses, st.Pushes)
	if st.Rounds > 0 {
		lo, hi := WilsonCI95(st.Wins, 0, st.Rounds)
		s.io.Printf("Win rate: %.1f%% %s\n", 100*st.WinRate(), dim(fmt.Sprintf("(95%% CI %.1f-%.1f%%)", 100*lo, 100*hi)))
		s.io.Printf("Blackjacks: %d  Busts: %d  Net: %+d\n", st.Naturals, st.Busts, st.NetChips)
	}
	if st.JudgeTotal > 0 {
		s.io.Printf("Decisions matching the best EV: %d/%d (%.0f%%)\n", st.JudgeGood, st.JudgeTotal, 100*st.JudgeAccuracy())
	}
	s.io.Printf("Final balance: $%d\n", s.player.Balance)

	if s.unsaved {
		s.io.Println(dim("This session was not saved."))
		return
	}
	t, ok := s.history.(tallier)
	if !ok || !s.cfg.RecordHistory {
		return
	}
	lt, err := t.PlayerTally(ctx, s.player.Name)
	if err != nil {
		s.log.Warn("lifetime tally failed", "player", s.player.Name, "error", err)
		return
	}
	s.io.Printf("Lifetime record: %d wins, %d losses, %d ties\n", lt.Wins, lt.Losses, lt.Ties)
}
