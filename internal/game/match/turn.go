package match

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/z26games/wof/internal/game/phrase"
	"github.com/z26games/wof/internal/game/wheel"
)

// ActionKind selects which gameplay action Apply performs.
type ActionKind int

const (
	ActionSpin ActionKind = iota
	ActionGuessLetter
	ActionGuessPhrase
)

// Action is one gameplay move by the current player.
type Action struct {
	Kind   ActionKind
	Letter rune
	Phrase string
}

// Result reports what an applied action did.
type Result struct {
	// Events are human-readable entries describing each consequence, in order.
	Events []string
	// RoundEnded is true when the action finished the round.
	RoundEnded bool
	// Ended is true when the action finished the match.
	Ended bool
	// Winner is the winning player's name when Ended is true.
	Winner string
}

// Apply performs one gameplay action for the named player.
//
// Precondition: the match is IN_PROGRESS and name is the current actor.
// Invalid actions return a sentinel error and mutate nothing.
func (m *Match) Apply(name string, act Action) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateInProgress {
		return Result{}, ErrNotInProgress
	}
	cur := m.seats[m.turn]
	if cur.player.Name != name {
		return Result{}, ErrNotYourTurn
	}
	switch act.Kind {
	case ActionSpin:
		return m.applySpinLocked(cur)
	case ActionGuessLetter:
		return m.applyLetterLocked(cur, act.Letter)
	case ActionGuessPhrase:
		return m.applyPhraseLocked(cur, act.Phrase)
	default:
		return Result{}, fmt.Errorf("match: unknown action kind %d", act.Kind)
	}
}

func (m *Match) applySpinLocked(cur *seat) (Result, error) {
	if m.wheelValue != 0 {
		return Result{}, ErrAlreadySpun
	}
	sector := m.wheel.Spin()
	name := cur.player.Name
	switch sector.Kind {
	case wheel.SectorLoseTurn:
		m.advanceTurnLocked()
		return Result{Events: []string{fmt.Sprintf("%s spun LOSE TURN", name)}}, nil
	case wheel.SectorBankrupt:
		cur.roundScore = 0
		m.advanceTurnLocked()
		return Result{Events: []string{fmt.Sprintf("%s spun BANKRUPT", name)}}, nil
	default:
		m.wheelValue = sector.Value
		return Result{Events: []string{fmt.Sprintf("%s spun %s", name, sector)}}, nil
	}
}

func (m *Match) applyLetterLocked(cur *seat, letter rune) (Result, error) {
	if m.wheelValue == 0 {
		return Result{}, ErrMustSpinFirst
	}
	if !phrase.IsLetter(letter) {
		return Result{}, ErrNotALetter
	}
	r := unicode.ToUpper(letter)
	if m.guessed[r] {
		return Result{}, ErrAlreadyGuessed
	}
	if m.vowelsOnlyLocked() && !phrase.IsVowel(r) {
		return Result{}, ErrVowelsOnly
	}

	m.guessed[r] = true
	value := m.wheelValue
	m.wheelValue = 0
	name := cur.player.Name

	count := strings.Count(strings.ToUpper(m.puzzle.Text), string(r))
	if count == 0 {
		m.advanceTurnLocked()
		return Result{Events: []string{fmt.Sprintf("%s called %c: not in the phrase", name, r)}}, nil
	}

	m.revealed[r] = true
	earned := value * count
	cur.roundScore += earned
	events := []string{fmt.Sprintf("%s called %c: %d in the phrase for $%d", name, r, count, earned)}
	if m.fullyRevealedLocked() {
		return m.endRoundLocked(cur, events), nil
	}
	return Result{Events: events}, nil
}

func (m *Match) applyPhraseLocked(cur *seat, guess string) (Result, error) {
	name := cur.player.Name
	if phrase.Normalize(guess) != m.normalized {
		m.advanceTurnLocked()
		return Result{Events: []string{fmt.Sprintf("%s guessed the phrase wrong", name)}}, nil
	}

	// Solving the puzzle collects every other seat's round score as a pool.
	pool := 0
	for _, s := range m.seats {
		if s != cur {
			pool += s.roundScore
			s.roundScore = 0
		}
	}
	cur.roundScore += pool
	for l := range phrase.Letters(m.puzzle.Text) {
		m.revealed[l] = true
	}
	m.wheelValue = 0

	event := fmt.Sprintf("%s solved the phrase", name)
	if pool > 0 {
		event = fmt.Sprintf("%s solved the phrase and takes the $%d pool", name, pool)
	}
	return m.endRoundLocked(cur, []string{event}), nil
}

// endRoundLocked banks the round winner's score, then either finishes the
// match or begins the next round.
func (m *Match) endRoundLocked(winner *seat, events []string) Result {
	banked := winner.roundScore
	winner.totalScore += banked
	for _, s := range m.seats {
		s.roundScore = 0
	}
	events = append(events, fmt.Sprintf("%s banks $%d to end round %d", winner.player.Name, banked, m.round))

	if winner.totalScore >= m.rules.TargetScore || m.round >= m.rules.Rounds {
		m.state = StateEnded
		m.winner = m.leaderLocked()
		best := m.seatLocked(m.winner)
		events = append(events, fmt.Sprintf("%s wins with $%d", m.winner, best.totalScore))
		return Result{Events: events, RoundEnded: true, Ended: true, Winner: m.winner}
	}

	m.round++
	m.beginRoundLocked()
	events = append(events, fmt.Sprintf("round %d begins: %s", m.round, m.puzzle.Category))
	return Result{Events: events, RoundEnded: true}
}

// leaderLocked returns the name with the highest total score, earliest seat
// winning ties.
func (m *Match) leaderLocked() string {
	best := m.seats[0]
	for _, s := range m.seats[1:] {
		if s.totalScore > best.totalScore {
			best = s
		}
	}
	return best.player.Name
}

// advanceTurnLocked moves to the next seat and resets the pending wheel value.
func (m *Match) advanceTurnLocked() {
	m.turn = (m.turn + 1) % len(m.seats)
	m.wheelValue = 0
}

// vowelsOnlyLocked reports whether no unrevealed consonant remains in the
// puzzle. Consonant guesses are rejected while it holds.
func (m *Match) vowelsOnlyLocked() bool {
	for l := range phrase.Letters(m.puzzle.Text) {
		if !phrase.IsVowel(l) && !m.revealed[l] {
			return false
		}
	}
	return true
}

// fullyRevealedLocked reports whether every letter of the puzzle is revealed.
func (m *Match) fullyRevealedLocked() bool {
	for l := range phrase.Letters(m.puzzle.Text) {
		if !m.revealed[l] {
			return false
		}
	}
	return true
}
