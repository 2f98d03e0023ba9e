// Package match implements the per-game state machine: seating, rounds,
// wheel spins, letter and phrase guesses, scoring, and the win condition.
package match

import (
	"errors"
	"sync"

	"github.com/z26games/wof/internal/game/phrase"
	"github.com/z26games/wof/internal/game/player"
	"github.com/z26games/wof/internal/game/wheel"
)

// Capacity is the exact number of seats a started game holds.
const Capacity = 3

// State is the lifecycle phase of a Match.
type State int

const (
	StateWaiting State = iota
	StateInProgress
	StateEnded
)

// String returns the wire label for the state.
func (s State) String() string {
	switch s {
	case StateInProgress:
		return "IN_PROGRESS"
	case StateEnded:
		return "ENDED"
	default:
		return "WAITING"
	}
}

// Rules are the knobs that decide when a match ends.
type Rules struct {
	// Rounds is the maximum number of rounds before the match ends.
	Rounds int
	// TargetScore ends the match early once any player's total reaches it.
	TargetScore int
}

// DefaultRules returns the stock five-round, $10000-target rules.
func DefaultRules() Rules {
	return Rules{Rounds: 5, TargetScore: 10000}
}

var (
	ErrNotInProgress  = errors.New("match: not in progress")
	ErrNotYourTurn    = errors.New("match: not your turn")
	ErrAlreadySpun    = errors.New("match: wheel already spun, guess a letter")
	ErrMustSpinFirst  = errors.New("match: spin the wheel first")
	ErrNotALetter     = errors.New("match: guess a single letter")
	ErrAlreadyGuessed = errors.New("match: letter already guessed")
	ErrVowelsOnly     = errors.New("match: only vowels remain")
	ErrAlreadyStarted = errors.New("match: game already started")
	ErrGameOver       = errors.New("match: game is over, start a new game")
	ErrNotEnded       = errors.New("match: game not ended")
	ErrNoSeats        = errors.New("match: no seated players")
	ErrNoPuzzles      = errors.New("match: no puzzles to play")
	ErrNotSeated      = errors.New("match: player not seated")
)

// seat is one turn-order slot and its scores. Replacing the occupant keeps
// the slot's position and scores.
type seat struct {
	player     player.Player
	roundScore int
	totalScore int
}

// Match holds the live state of a single game. All methods are safe for
// concurrent use; the Match never performs I/O and never calls back into the
// session directory.
type Match struct {
	mu    sync.Mutex
	id    string
	rules Rules
	wheel *wheel.Wheel

	state State
	seats []*seat
	// turn is the index of the current actor in seats.
	turn int
	// round is 1-based once the match starts.
	round int

	// puzzles holds one phrase per round, cycled when shorter than Rules.Rounds.
	puzzles    []phrase.Phrase
	puzzle     phrase.Phrase
	normalized string
	revealed   map[rune]bool
	guessed    map[rune]bool
	// wheelValue is the pending cash value for the next letter guess; 0 means
	// the current player must spin.
	wheelValue int
	winner     string
}

// New creates an empty WAITING match.
//
// Precondition: w must be non-nil; rules must have Rounds >= 1 and
// TargetScore >= 1.
func New(id string, rules Rules, w *wheel.Wheel) *Match {
	return &Match{id: id, rules: rules, wheel: w, state: StateWaiting}
}

// ID returns the match identifier.
func (m *Match) ID() string { return m.id }

// Rules returns the match's rules.
func (m *Match) Rules() Rules { return m.rules }

// State returns the current lifecycle phase.
func (m *Match) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SeatCount returns the number of occupied seats.
func (m *Match) SeatCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seats)
}

// Players returns the seated players in turn order.
func (m *Match) Players() []player.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]player.Player, len(m.seats))
	for i, s := range m.seats {
		out[i] = s.player
	}
	return out
}

// HumanNames returns the names of the seated human players in turn order.
func (m *Match) HumanNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.seats {
		if !s.player.IsBot() {
			out = append(out, s.player.Name)
		}
	}
	return out
}

// Seated reports whether a player with the given name occupies a seat.
func (m *Match) Seated(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seatLocked(name) != nil
}

// Current returns the player whose turn it is. ok is false unless the match
// is IN_PROGRESS.
func (m *Match) Current() (player.Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateInProgress || len(m.seats) == 0 {
		return player.Player{}, false
	}
	return m.seats[m.turn].player, true
}

// TryJoin seats p if the match is WAITING, has a free seat, and no seated
// player already uses the name.
//
// Postcondition: Returns true iff p now occupies a seat.
func (m *Match) TryJoin(p player.Player) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateWaiting || len(m.seats) >= Capacity {
		return false
	}
	if m.seatLocked(p.Name) != nil {
		return false
	}
	m.seats = append(m.seats, &seat{player: p})
	return true
}

// ReplaceSeat hands name's seat to repl, keeping the slot's turn position and
// scores. Used when a human leaves an IN_PROGRESS game.
//
// Precondition: name must be seated.
func (m *Match) ReplaceSeat(name string, repl player.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.seatLocked(name)
	if s == nil {
		return ErrNotSeated
	}
	s.player = repl
	return nil
}

// Vacate removes name's seat entirely. Only legal while the match is not
// IN_PROGRESS; a live game must use ReplaceSeat so the turn order keeps its
// length.
func (m *Match) Vacate(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateInProgress {
		return ErrNotEnded
	}
	for i, s := range m.seats {
		if s.player.Name == name {
			m.seats = append(m.seats[:i], m.seats[i+1:]...)
			return nil
		}
	}
	return ErrNotSeated
}

// HasHumans reports whether any seated player is human.
func (m *Match) HasHumans() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.seats {
		if !s.player.IsBot() {
			return true
		}
	}
	return false
}

// Reset returns the match to an empty, reusable WAITING state with zero
// seated players. Applied when every remaining seat is automated.
func (m *Match) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateWaiting
	m.seats = nil
	m.turn = 0
	m.round = 0
	m.puzzles = nil
	m.puzzle = phrase.Phrase{}
	m.normalized = ""
	m.revealed = nil
	m.guessed = nil
	m.wheelValue = 0
	m.winner = ""
}

// NewGame rematches an ENDED game: the seats stay, everything else resets to
// WAITING. A fresh Start with new puzzles begins the next match.
func (m *Match) NewGame() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateEnded {
		return ErrNotEnded
	}
	m.state = StateWaiting
	m.turn = 0
	m.round = 0
	m.puzzles = nil
	m.puzzle = phrase.Phrase{}
	m.normalized = ""
	m.revealed = nil
	m.guessed = nil
	m.wheelValue = 0
	m.winner = ""
	for _, s := range m.seats {
		s.roundScore = 0
		s.totalScore = 0
	}
	return nil
}

// Start transitions WAITING → IN_PROGRESS with one puzzle per round, fixing
// the turn order to the seating order. The puzzle list cycles when shorter
// than the round count.
//
// Postcondition: on success the match is IN_PROGRESS in round 1 with a fresh
// mask and the wheel unspun.
func (m *Match) Start(puzzles []phrase.Phrase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateInProgress {
		return ErrAlreadyStarted
	}
	if m.state == StateEnded {
		return ErrGameOver
	}
	if len(m.seats) == 0 {
		return ErrNoSeats
	}
	if len(puzzles) == 0 {
		return ErrNoPuzzles
	}
	m.puzzles = make([]phrase.Phrase, len(puzzles))
	copy(m.puzzles, puzzles)
	for _, s := range m.seats {
		s.roundScore = 0
		s.totalScore = 0
	}
	m.state = StateInProgress
	m.round = 1
	m.beginRoundLocked()
	return nil
}

// beginRoundLocked loads the round's puzzle, clears the mask and guesses, and
// rotates the opening turn one seat per round.
func (m *Match) beginRoundLocked() {
	m.puzzle = m.puzzles[(m.round-1)%len(m.puzzles)]
	m.normalized = phrase.Normalize(m.puzzle.Text)
	m.revealed = make(map[rune]bool)
	m.guessed = make(map[rune]bool)
	m.wheelValue = 0
	m.turn = (m.round - 1) % len(m.seats)
	for _, s := range m.seats {
		s.roundScore = 0
	}
}

// seatLocked returns the seat occupied by name, or nil.
func (m *Match) seatLocked(name string) *seat {
	for _, s := range m.seats {
		if s.player.Name == name {
			return s
		}
	}
	return nil
}
