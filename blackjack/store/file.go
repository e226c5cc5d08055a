package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"terminal-blackjack/blackjack/account"
)

// TimeLayout is the history timestamp format, yyyy-MM-dd HH:mm:ss.
const TimeLayout = "2006-01-02 15:04:05"

// Files keeps one text record per player under Dir: name, pin code and
// balance on three lines.
type Files struct {
	Dir string
}

func NewFiles(dir string) *Files { return &Files{Dir: dir} }

func (f *Files) path(name string) string { return filepath.Join(f.Dir, name+".txt") }

func (f *Files) Load(_ context.Context, name string) (account.Player, error) {
	if err := account.ValidateName(name); err != nil {
		return account.Player{}, account.ErrNotFound
	}
	b, err := os.ReadFile(f.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return account.Player{}, account.ErrNotFound
		}
		return account.Player{}, err
	}
	return parseRecord(string(b))
}

func parseRecord(s string) (account.Player, error) {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if len(lines) < 3 {
		return account.Player{}, fmt.Errorf("player record: want 3 lines, got %d", len(lines))
	}
	bal, err := strconv.Atoi(strings.TrimSpace(lines[2]))
	if err != nil {
		return account.Player{}, fmt.Errorf("player record: balance %q: %w", lines[2], err)
	}
	return account.Player{Name: lines[0], PIN: lines[1], Balance: bal}, nil
}

// Save writes the record to a temp file and renames it into place so a
// reader never sees a partial record.
func (f *Files) Save(_ context.Context, p account.Player) error {
	if err := account.ValidateName(p.Name); err != nil {
		return err
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.Dir, "."+p.Name+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := fmt.Fprintf(tmp, "%s\n%s\n%d\n", p.Name, p.PIN, p.Balance); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(p.Name))
}

// HistoryFile appends one block per round to a shared text log.
type HistoryFile struct {
	Path string
}

func NewHistoryFile(path string) *HistoryFile { return &HistoryFile{Path: path} }

func (h *HistoryFile) Append(_ context.Context, rec account.RoundRecord) error {
	if dir := filepath.Dir(h.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	fh, err := os.OpenFile(h.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(fh)
	w.WriteString(FormatBlock(rec))
	if err := w.Flush(); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// FormatBlock renders a round as the three-line history block.
func FormatBlock(rec account.RoundRecord) string {
	return fmt.Sprintf("Player: %s\nResult: %s\nTime: %s\n", rec.Player, rec.Result, rec.At.Format(TimeLayout))
}

// PlayerTally counts the player's results in the log. A missing log is an
// empty tally.
func (h *HistoryFile) PlayerTally(_ context.Context, name string) (Tally, error) {
	fh, err := os.Open(h.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Tally{}, nil
		}
		return Tally{}, err
	}
	defer fh.Close()

	var t Tally
	current := ""
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "Player: "):
			current = strings.TrimPrefix(line, "Player: ")
		case strings.HasPrefix(line, "Result: ") && current == name:
			switch strings.TrimPrefix(line, "Result: ") {
			case "Win":
				t.Wins++
			case "Loss":
				t.Losses++
			case "Tie":
				t.Ties++
			}
		}
	}
	return t, sc.Err()
}
