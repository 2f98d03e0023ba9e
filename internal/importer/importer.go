// Package importer loads phrase packs into a store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/z26games/wof/internal/game/phrase"
	"github.com/z26games/wof/internal/storage"
)

// Stats reports what an import run did.
type Stats struct {
	Imported int
	Skipped  int
}

// Importer orchestrates phrase import from a Source into a store.
type Importer struct {
	source Source
	logger *zap.Logger
}

// New constructs an Importer backed by the given Source.
//
// Precondition: source and logger must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(source Source, logger *zap.Logger) *Importer {
	return &Importer{source: source, logger: logger}
}

// Run loads the pack at path and inserts every phrase into store. Phrases
// already present are skipped, so re-importing a pack is harmless.
//
// Precondition: path must satisfy the source's format requirements.
// Postcondition: every phrase in the pack exists in store, and the returned
// Stats splits them into newly imported versus already present.
func (imp *Importer) Run(ctx context.Context, path string, store storage.Store) (Stats, error) {
	start := time.Now()

	pack, err := imp.source.Load(path)
	if err != nil {
		return Stats{}, fmt.Errorf("loading pack: %w", err)
	}

	// Insert in a stable order so failures point at the same phrase on
	// every run.
	categories := make([]string, 0, len(pack.Categories))
	for category := range pack.Categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var stats Stats
	for _, category := range categories {
		for _, text := range pack.Categories[category] {
			err := store.AddPhrase(ctx, phrase.Phrase{Text: text, Category: category})
			switch {
			case errors.Is(err, storage.ErrPhraseExists):
				stats.Skipped++
				imp.logger.Debug("phrase already present",
					zap.String("text", text),
					zap.String("category", category))
			case err != nil:
				return stats, fmt.Errorf("inserting phrase %q: %w", text, err)
			default:
				stats.Imported++
			}
		}
	}

	imp.logger.Info("phrase pack imported",
		zap.String("path", path),
		zap.Int("categories", len(pack.Categories)),
		zap.Int("imported", stats.Imported),
		zap.Int("skipped", stats.Skipped),
		zap.Duration("elapsed", time.Since(start)))
	return stats, nil
}
