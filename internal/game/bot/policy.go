// Package bot provides automated players: name synthesis and the decision
// policies that pick their moves.
package bot

import (
	"github.com/z26games/wof/internal/game/phrase"
	"github.com/z26games/wof/internal/game/wheel"
)

// View is the state a policy sees when deciding a move. It carries exactly
// what a human player would see: the masked puzzle, never the solution.
type View struct {
	Category   string
	Masked     string
	Guessed    []string
	WheelValue int
	VowelsOnly bool
	RoundScore int
}

// DecisionKind selects the move a policy wants to make.
type DecisionKind int

const (
	DecideSpin DecisionKind = iota
	DecideLetter
	DecidePhrase
)

// Decision is a policy's chosen move.
type Decision struct {
	Kind   DecisionKind
	Letter rune
	Phrase string
}

// Policy decides one move from a view of the game. Implementations MUST be
// safe for concurrent use; a single policy instance serves every bot.
type Policy interface {
	Decide(v View) Decision
}

// letterWeights approximates English letter frequency in tenths of a percent.
// Higher weight means the letter is guessed sooner on average.
var letterWeights = map[rune]int{
	'E': 127, 'T': 91, 'A': 82, 'O': 75, 'I': 70, 'N': 67, 'S': 63,
	'H': 61, 'R': 60, 'D': 43, 'L': 40, 'C': 28, 'U': 28, 'M': 24,
	'W': 24, 'F': 22, 'G': 20, 'Y': 20, 'P': 19, 'B': 15, 'V': 10,
	'K': 8, 'J': 2, 'X': 2, 'Q': 1, 'Z': 1,
}

// WeightedPolicy is the reference policy: spin whenever the wheel is unspun,
// otherwise guess an unguessed letter chosen at random with a weighted
// preference for high-frequency letters. It never attempts to solve.
type WeightedPolicy struct {
	src wheel.Source
}

// NewWeightedPolicy creates a WeightedPolicy drawing randomness from src.
//
// Precondition: src must be non-nil.
func NewWeightedPolicy(src wheel.Source) *WeightedPolicy {
	return &WeightedPolicy{src: src}
}

// Decide implements Policy.
//
// Postcondition: the decision is legal for the view except when every letter
// has been guessed, which cannot occur on a live turn.
func (p *WeightedPolicy) Decide(v View) Decision {
	if v.WheelValue == 0 {
		return Decision{Kind: DecideSpin}
	}

	guessed := make(map[rune]bool, len(v.Guessed))
	for _, l := range v.Guessed {
		for _, r := range l {
			guessed[r] = true
		}
	}

	var candidates []rune
	total := 0
	for r := 'A'; r <= 'Z'; r++ {
		if guessed[r] {
			continue
		}
		if v.VowelsOnly && !phrase.IsVowel(r) {
			continue
		}
		candidates = append(candidates, r)
		total += letterWeights[r]
	}
	if len(candidates) == 0 {
		return Decision{Kind: DecideSpin}
	}

	pick := p.src.Intn(total)
	for _, r := range candidates {
		pick -= letterWeights[r]
		if pick < 0 {
			return Decision{Kind: DecideLetter, Letter: r}
		}
	}
	return Decision{Kind: DecideLetter, Letter: candidates[len(candidates)-1]}
}
