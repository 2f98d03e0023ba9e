package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z26games/wof/internal/game/phrase"
	"github.com/z26games/wof/internal/storage"
)

func seedStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	ctx := context.Background()
	for _, p := range []phrase.Phrase{
		{Text: "GO FOR IT", Category: "sayings"},
		{Text: "BREAK A LEG", Category: "sayings"},
		{Text: "MOUNT EVEREST", Category: "places"},
	} {
		require.NoError(t, s.AddPhrase(ctx, p))
	}
	return s
}

func TestStore_AddPhraseDuplicate(t *testing.T) {
	s := seedStore(t)
	err := s.AddPhrase(context.Background(), phrase.Phrase{Text: "GO FOR IT", Category: "sayings"})
	assert.ErrorIs(t, err, storage.ErrPhraseExists)
}

func TestStore_RandomPhrasesEmptyCatalogue(t *testing.T) {
	s := New()
	_, err := s.RandomPhrases(context.Background(), 3)
	assert.ErrorIs(t, err, storage.ErrNoPhrases)
}

func TestStore_RandomPhrasesExactCount(t *testing.T) {
	s := seedStore(t)

	got, err := s.RandomPhrases(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, p := range got {
		assert.NotEmpty(t, p.Text)
		assert.NotEmpty(t, p.Category)
	}
}

func TestStore_RandomPhrasesCyclesShortCatalogue(t *testing.T) {
	s := New()
	require.NoError(t, s.AddPhrase(context.Background(), phrase.Phrase{Text: "GO FOR IT", Category: "sayings"}))

	got, err := s.RandomPhrases(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for _, p := range got {
		assert.Equal(t, "GO FOR IT", p.Text)
	}
}

func TestStore_RandomPhrasesZero(t *testing.T) {
	s := seedStore(t)
	got, err := s.RandomPhrases(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_PhrasesByCategory(t *testing.T) {
	s := seedStore(t)

	got, err := s.PhrasesByCategory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"GO FOR IT":     "sayings",
		"BREAK A LEG":   "sayings",
		"MOUNT EVEREST": "places",
	}, got)

	// The returned map is a copy.
	got["INTRUDER"] = "nope"
	again, err := s.PhrasesByCategory(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, again, "INTRUDER")
}

func TestStore_Categories(t *testing.T) {
	s := seedStore(t)

	got, err := s.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"places", "sayings"}, got)
}

func TestStore_RecordScoreKeepsBest(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.RecordScore(ctx, "ann", 4200))
	require.NoError(t, s.RecordScore(ctx, "ann", 1000))
	require.NoError(t, s.RecordScore(ctx, "ann", 9000))
	require.NoError(t, s.RecordScore(ctx, "ann", 8000))

	got, err := s.HighScores(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, storage.LeaderboardRecord{PlayerName: "ann", Score: 9000}, got[0])
}

func TestStore_HighScoresOrderAndLimit(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.RecordScore(ctx, "ann", 3000))
	require.NoError(t, s.RecordScore(ctx, "ben", 5000))
	require.NoError(t, s.RecordScore(ctx, "cal", 5000))
	require.NoError(t, s.RecordScore(ctx, "dee", 1000))

	got, err := s.HighScores(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "ben", got[0].PlayerName, "ties break by name")
	assert.Equal(t, "cal", got[1].PlayerName)
	assert.Equal(t, "ann", got[2].PlayerName)
}

func TestStore_ConcurrentUse(t *testing.T) {
	s := New()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_ = s.AddPhrase(ctx, phrase.Phrase{
				Text:     fmt.Sprintf("PHRASE NUMBER %d", i),
				Category: "generated",
			})
		}(i)
		go func(i int) {
			defer wg.Done()
			_ = s.RecordScore(ctx, fmt.Sprintf("player%d", i), i*100)
		}(i)
	}
	wg.Wait()

	phrases, err := s.PhrasesByCategory(ctx)
	require.NoError(t, err)
	assert.Len(t, phrases, n)

	scores, err := s.HighScores(ctx, n)
	require.NoError(t, err)
	assert.Len(t, scores, n)
}
