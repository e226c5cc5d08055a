package main

import (
	"math"

	"terminal-blackjack/blackjack/engine"
	"terminal-blackjack/blackjack/judge"
)

type SessionStats struct {
	Rounds   int
	Wins     int
	Losses   int
	Pushes   int
	Naturals int
	Busts    int
	NetChips int

	JudgeGood  int
	JudgeTotal int
}

// AddRound counts a finished round. Call it before the hands are discarded.
func (s *SessionStats) AddRound(r *engine.Round) {
	if r.Phase != engine.Done {
		return
	}
	s.Rounds++
	s.NetChips += r.Net()
	switch r.Outcome {
	case engine.Blackjack:
		s.Wins++
		s.Naturals++
	case engine.Win:
		s.Wins++
	case engine.Push:
		s.Pushes++
	case engine.Loss:
		s.Losses++
		if r.Player.Bust() {
			s.Busts++
		}
	}
}

func (s *SessionStats) AddVerdict(v judge.Verdict) {
	if v.Samples == 0 {
		return
	}
	s.JudgeTotal++
	if v.IsTop {
		s.JudgeGood++
	}
}

// WinRate is wins over rounds played; pushes count as rounds, not wins.
func (s *SessionStats) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Rounds)
}

func (s *SessionStats) JudgeAccuracy() float64 {
	if s.JudgeTotal == 0 {
		return 0
	}
	return float64(s.JudgeGood) / float64(s.JudgeTotal)
}

// WilsonCI95 for Bernoulli win rate using wins/ties/total; ties count half.
func WilsonCI95(wins, ties, total int) (low, hi float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := (float64(wins) + 0.5*float64(ties)) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}
