// Package storage defines the persistence boundary for the phrase
// catalogue and the leaderboard. Backends live in subpackages; the
// process entry point picks one and owns its lifecycle.
package storage

import (
	"context"
	"errors"

	"github.com/z26games/wof/internal/game/phrase"
)

// ErrNoPhrases is returned when the catalogue holds no usable phrase.
var ErrNoPhrases = errors.New("storage: no phrases available")

// ErrPhraseExists is returned when inserting a phrase that is already
// in the catalogue.
var ErrPhraseExists = errors.New("storage: phrase already exists")

// LeaderboardRecord is one player's best recorded score.
type LeaderboardRecord struct {
	PlayerName string
	Score      int
}

// Store is the persistence boundary used by the game server and the
// import tooling.
type Store interface {
	// RandomPhrases returns n phrases drawn at random from the catalogue,
	// cycling when the catalogue holds fewer than n.
	//
	// Postcondition: Returns exactly n phrases, or ErrNoPhrases when the
	// catalogue is empty.
	RandomPhrases(ctx context.Context, n int) ([]phrase.Phrase, error)

	// PhrasesByCategory returns the whole catalogue as a text → category map.
	PhrasesByCategory(ctx context.Context) (map[string]string, error)

	// Categories lists the distinct categories in the catalogue, sorted.
	Categories(ctx context.Context) ([]string, error)

	// AddPhrase inserts p into the catalogue.
	//
	// Postcondition: Returns ErrPhraseExists when p.Text is already present.
	AddPhrase(ctx context.Context, p phrase.Phrase) error

	// HighScores returns up to limit records, best score first, ties by name.
	HighScores(ctx context.Context, limit int) ([]LeaderboardRecord, error)

	// RecordScore stores score for name, keeping the better of the stored
	// and offered scores.
	RecordScore(ctx context.Context, name string, score int) error

	// Close releases the backend's resources.
	Close()
}
