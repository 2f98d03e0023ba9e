// Package memory provides an in-memory storage.Store for standalone
// play and tests. Nothing survives a restart.
package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/z26games/wof/internal/game/phrase"
	"github.com/z26games/wof/internal/storage"
)

// Store keeps the phrase catalogue and leaderboard in process memory.
type Store struct {
	mu      sync.RWMutex
	phrases map[string]string // text → category
	scores  map[string]int    // player name → best score
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		phrases: make(map[string]string),
		scores:  make(map[string]int),
	}
}

var _ storage.Store = (*Store)(nil)

// RandomPhrases returns n random catalogue phrases, cycling the drawn
// set when the catalogue holds fewer than n.
//
// Postcondition: Returns exactly n phrases, or storage.ErrNoPhrases when
// the catalogue is empty.
func (s *Store) RandomPhrases(_ context.Context, n int) ([]phrase.Phrase, error) {
	if n <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.phrases) == 0 {
		return nil, storage.ErrNoPhrases
	}

	texts := make([]string, 0, len(s.phrases))
	for text := range s.phrases {
		texts = append(texts, text)
	}
	sort.Strings(texts)
	rand.Shuffle(len(texts), func(i, j int) {
		texts[i], texts[j] = texts[j], texts[i]
	})

	out := make([]phrase.Phrase, n)
	for i := range out {
		text := texts[i%len(texts)]
		out[i] = phrase.Phrase{Text: text, Category: s.phrases[text]}
	}
	return out, nil
}

// PhrasesByCategory returns the whole catalogue as a text → category map.
func (s *Store) PhrasesByCategory(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.phrases))
	for text, category := range s.phrases {
		out[text] = category
	}
	return out, nil
}

// Categories lists the distinct phrase categories in sorted order.
func (s *Store) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	for _, category := range s.phrases {
		seen[category] = true
	}
	out := make([]string, 0, len(seen))
	for category := range seen {
		out = append(out, category)
	}
	sort.Strings(out)
	return out, nil
}

// AddPhrase inserts p into the catalogue.
//
// Postcondition: Returns storage.ErrPhraseExists when the text is taken.
func (s *Store) AddPhrase(_ context.Context, p phrase.Phrase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.phrases[p.Text]; exists {
		return storage.ErrPhraseExists
	}
	s.phrases[p.Text] = p.Category
	return nil
}

// HighScores returns up to limit records, best score first, ties by name.
func (s *Store) HighScores(_ context.Context, limit int) ([]storage.LeaderboardRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storage.LeaderboardRecord, 0, len(s.scores))
	for name, score := range s.scores {
		out = append(out, storage.LeaderboardRecord{PlayerName: name, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PlayerName < out[j].PlayerName
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RecordScore stores score for name, keeping the better of the stored
// and offered scores.
func (s *Store) RecordScore(_ context.Context, name string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if best, ok := s.scores[name]; !ok || score > best {
		s.scores[name] = score
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() {}
