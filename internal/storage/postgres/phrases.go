package postgres

import (
	"context"
	"fmt"

	"github.com/z26games/wof/internal/game/phrase"
	"github.com/z26games/wof/internal/storage"
)

// RandomPhrases returns n random catalogue phrases, cycling the drawn
// set when the catalogue holds fewer than n.
//
// Postcondition: Returns exactly n phrases, or storage.ErrNoPhrases when
// the catalogue is empty.
func (s *Store) RandomPhrases(ctx context.Context, n int) ([]phrase.Phrase, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT text, category FROM phrases ORDER BY random() LIMIT $1`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("querying random phrases: %w", err)
	}
	defer rows.Close()

	var drawn []phrase.Phrase
	for rows.Next() {
		var p phrase.Phrase
		if err := rows.Scan(&p.Text, &p.Category); err != nil {
			return nil, fmt.Errorf("scanning phrase: %w", err)
		}
		drawn = append(drawn, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading phrases: %w", err)
	}
	if len(drawn) == 0 {
		return nil, storage.ErrNoPhrases
	}

	out := make([]phrase.Phrase, n)
	for i := range out {
		out[i] = drawn[i%len(drawn)]
	}
	return out, nil
}

// PhrasesByCategory returns the whole catalogue as a text → category map.
func (s *Store) PhrasesByCategory(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT text, category FROM phrases`)
	if err != nil {
		return nil, fmt.Errorf("querying phrases: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var text, category string
		if err := rows.Scan(&text, &category); err != nil {
			return nil, fmt.Errorf("scanning phrase: %w", err)
		}
		out[text] = category
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading phrases: %w", err)
	}
	return out, nil
}

// Categories lists the distinct phrase categories in sorted order.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT category FROM phrases ORDER BY category`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out = append(out, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	return out, nil
}

// AddPhrase inserts p into the catalogue.
//
// Precondition: p.Text and p.Category must be non-empty.
// Postcondition: Returns storage.ErrPhraseExists when the text is taken.
func (s *Store) AddPhrase(ctx context.Context, p phrase.Phrase) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO phrases (text, category) VALUES ($1, $2)`,
		p.Text, p.Category,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrPhraseExists
		}
		return fmt.Errorf("inserting phrase: %w", err)
	}
	return nil
}
