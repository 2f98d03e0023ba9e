package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z26games/wof/internal/game/phrase"
	"github.com/z26games/wof/internal/storage"
	"github.com/z26games/wof/internal/testutil"
)

func setupStore(t *testing.T) *testutil.PostgresContainer {
	t.Helper()
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc
}

func seedPhrases(t *testing.T, pc *testutil.PostgresContainer, phrases []phrase.Phrase) {
	t.Helper()
	ctx := context.Background()
	for _, p := range phrases {
		require.NoError(t, pc.Store.AddPhrase(ctx, p), "seeding phrase %q", p.Text)
	}
}

func TestStore_AddPhrase(t *testing.T) {
	pc := setupStore(t)
	ctx := context.Background()

	seedPhrases(t, pc, []phrase.Phrase{
		{Text: "GO FOR IT", Category: "Phrase"},
		{Text: "BREAK A LEG", Category: "Phrase"},
		{Text: "NEW YORK CITY", Category: "Place"},
	})

	err := pc.Store.AddPhrase(ctx, phrase.Phrase{Text: "GO FOR IT", Category: "Phrase"})
	assert.ErrorIs(t, err, storage.ErrPhraseExists, "duplicate text should be rejected")

	byCategory, err := pc.Store.PhrasesByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"GO FOR IT":     "Phrase",
		"BREAK A LEG":   "Phrase",
		"NEW YORK CITY": "Place",
	}, byCategory)

	categories, err := pc.Store.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Phrase", "Place"}, categories, "categories should be distinct and sorted")
}

func TestStore_RandomPhrases(t *testing.T) {
	pc := setupStore(t)
	ctx := context.Background()

	_, err := pc.Store.RandomPhrases(ctx, 3)
	assert.ErrorIs(t, err, storage.ErrNoPhrases, "empty catalogue should be an error")

	seedPhrases(t, pc, []phrase.Phrase{
		{Text: "GO FOR IT", Category: "Phrase"},
		{Text: "BREAK A LEG", Category: "Phrase"},
	})

	none, err := pc.Store.RandomPhrases(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	two, err := pc.Store.RandomPhrases(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.NotEqual(t, two[0].Text, two[1].Text, "a large enough catalogue should yield distinct draws")

	// More puzzles than the catalogue holds: the draw cycles.
	five, err := pc.Store.RandomPhrases(ctx, 5)
	require.NoError(t, err)
	require.Len(t, five, 5)
	for _, p := range five {
		assert.Contains(t, []string{"GO FOR IT", "BREAK A LEG"}, p.Text)
		assert.Equal(t, "Phrase", p.Category)
	}
}

func TestStore_Leaderboard(t *testing.T) {
	pc := setupStore(t)
	ctx := context.Background()

	require.NoError(t, pc.Store.RecordScore(ctx, "ann", 4200))
	require.NoError(t, pc.Store.RecordScore(ctx, "ann", 1000), "lower score must not overwrite")
	require.NoError(t, pc.Store.RecordScore(ctx, "ben", 9000))
	require.NoError(t, pc.Store.RecordScore(ctx, "cal", 9000))

	records, err := pc.Store.HighScores(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []storage.LeaderboardRecord{
		{PlayerName: "ben", Score: 9000},
		{PlayerName: "cal", Score: 9000},
		{PlayerName: "ann", Score: 4200},
	}, records, "ordered by score, ties broken by name")

	require.NoError(t, pc.Store.RecordScore(ctx, "ann", 9500), "higher score replaces")
	records, err = pc.Store.HighScores(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []storage.LeaderboardRecord{
		{PlayerName: "ann", Score: 9500},
		{PlayerName: "ben", Score: 9000},
	}, records)

	none, err := pc.Store.HighScores(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_Health(t *testing.T) {
	pc := setupStore(t)
	assert.NoError(t, pc.Store.Health(context.Background(), 5*time.Second))
}
