package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service applies the registration and login rules on top of a Repository.
type Service struct {
	repo            Repository
	startingBalance int
}

func NewService(repo Repository, startingBalance int) *Service {
	return &Service{repo: repo, startingBalance: startingBalance}
}

// ValidateName rejects names that cannot double as a record key or file name.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	if strings.ContainsAny(name, `/\:*?"<>|`) || strings.TrimSpace(name) != name {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%q: %w", name, ErrInvalidName)
		}
	}
	return nil
}

// Login loads the player and checks the pin code.
func (s *Service) Login(ctx context.Context, name, pin string) (*Player, error) {
	if err := ValidateName(name); err != nil {
		return nil, ErrNotFound
	}
	p, err := s.repo.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if p.Name != name || p.PIN != pin {
		return nil, ErrBadCredentials
	}
	return &p, nil
}

// Register creates and saves a new player with the starting balance. The
// player is returned even when saving fails so the session can go on. When
// the lookup itself fails nothing is saved and the error wraps ErrUnverified:
// the returned player must not be saved under that name, since a record may
// already exist.
func (s *Service) Register(ctx context.Context, name, pin string) (*Player, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	p := &Player{Name: name, PIN: pin, Balance: s.startingBalance}
	_, err := s.repo.Load(ctx, name)
	switch {
	case err == nil:
		return nil, ErrNameTaken
	case !errors.Is(err, ErrNotFound):
		return p, fmt.Errorf("look up player %q: %w: %w", name, ErrUnverified, err)
	}
	if err := s.repo.Save(ctx, *p); err != nil {
		return p, fmt.Errorf("save new player: %w", err)
	}
	return p, nil
}

func (s *Service) Save(ctx context.Context, p *Player) error {
	return s.repo.Save(ctx, *p)
}
