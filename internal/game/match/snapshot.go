package match

import (
	"sort"
	"strings"

	"github.com/z26games/wof/internal/game/phrase"
)

// SeatView is one seat's public state.
type SeatView struct {
	Name       string `json:"name"`
	Bot        bool   `json:"bot"`
	RoundScore int    `json:"roundScore"`
	TotalScore int    `json:"totalScore"`
}

// Snapshot is the pull-based view of a match. It never contains the unsolved
// puzzle text, only the mask.
type Snapshot struct {
	ID         string     `json:"id"`
	State      string     `json:"state"`
	Round      int        `json:"round,omitempty"`
	Rounds     int        `json:"rounds"`
	Category   string     `json:"category,omitempty"`
	Masked     string     `json:"masked,omitempty"`
	WheelValue int        `json:"wheelValue"`
	VowelsOnly bool       `json:"vowelsOnly"`
	Current    string     `json:"current,omitempty"`
	Winner     string     `json:"winner,omitempty"`
	Guessed    []string   `json:"guessed,omitempty"`
	Players    []SeatView `json:"players"`
}

// Snapshot returns the current public state of the match.
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		ID:         m.id,
		State:      m.state.String(),
		Round:      m.round,
		Rounds:     m.rules.Rounds,
		WheelValue: m.wheelValue,
		Winner:     m.winner,
		Players:    make([]SeatView, len(m.seats)),
	}
	for i, s := range m.seats {
		snap.Players[i] = SeatView{
			Name:       s.player.Name,
			Bot:        s.player.IsBot(),
			RoundScore: s.roundScore,
			TotalScore: s.totalScore,
		}
	}
	if m.state == StateInProgress {
		snap.Category = m.puzzle.Category
		snap.Masked = m.maskedLocked()
		snap.VowelsOnly = m.vowelsOnlyLocked()
		snap.Current = m.seats[m.turn].player.Name
		snap.Guessed = m.guessedLocked()
	}
	return snap
}

// maskedLocked renders the puzzle with unrevealed letters as underscores.
// Digits, spaces, and punctuation always show.
func (m *Match) maskedLocked() string {
	var b strings.Builder
	for _, r := range strings.ToUpper(m.puzzle.Text) {
		if phrase.IsLetter(r) && !m.revealed[r] {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// guessedLocked returns the guessed letters in alphabetical order.
func (m *Match) guessedLocked() []string {
	out := make([]string, 0, len(m.guessed))
	for r := range m.guessed {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}
