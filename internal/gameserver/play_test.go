package gameserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z26games/wof/internal/game/bot"
	"github.com/z26games/wof/internal/game/match"
	"github.com/z26games/wof/internal/game/phrase"
	"github.com/z26games/wof/internal/netwire"
	"github.com/z26games/wof/internal/storage"
)

func decodeGame(t *testing.T, msg netwire.Message) match.Snapshot {
	t.Helper()
	require.Equal(t, netwire.ActionState, msg.Action)
	var snap match.Snapshot
	require.NoError(t, json.Unmarshal(msg.Game, &snap))
	return snap
}

// goForIt holds every letter of the test puzzle in a solvable order.
var goForIt = []rune{'G', 'O', 'F', 'R', 'I', 'T'}

func TestServer_StartDealsOpeningState(t *testing.T) {
	s, sender, _ := newTestServer(t, match.DefaultRules(), &scriptedPolicy{},
		phrase.Phrase{Text: "GO FOR IT", Category: "Phrase"},
	)

	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionLoginJoin, Player: "ann"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionStart, Player: "ann"})

	assert.Equal(t, []string{
		netwire.ActionLoginJoinConf,
		netwire.ActionJoinOther,
		netwire.ActionJoinOther,
		netwire.ActionStart,
		netwire.ActionState,
	}, sender.actions("10.0.0.1:1"), "a solo start backfills two bots before dealing the board")

	snap := decodeGame(t, sender.last(t, "10.0.0.1:1"))
	assert.Equal(t, "IN_PROGRESS", snap.State)
	assert.Equal(t, 1, snap.Round)
	assert.Equal(t, "ann", snap.Current, "the starter opens round one")
	assert.Equal(t, "Phrase", snap.Category)
	assert.Equal(t, "__ ___ __", snap.Masked)
	assert.Len(t, snap.Players, match.Capacity)
}

func TestServer_StartWithEmptyCatalogue(t *testing.T) {
	s, sender, _ := newTestServer(t, match.DefaultRules(), &scriptedPolicy{})

	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionLoginJoin, Player: "ann"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionStart, Player: "ann"})

	msg := sender.last(t, "10.0.0.1:1")
	assert.Equal(t, netwire.ActionError, msg.Action)
	assert.Equal(t, "no puzzles available", msg.Text)
}

func TestServer_HumanPlaysRoundToWin(t *testing.T) {
	rules := match.Rules{Rounds: 1, TargetScore: 1000000}
	s, sender, store := newTestServer(t, rules, &scriptedPolicy{},
		phrase.Phrase{Text: "GO FOR IT", Category: "Phrase"},
	)

	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionLoginJoin, Player: "ann"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionStart, Player: "ann"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionSpin, Player: "ann"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionGuessLetter, Player: "ann", Letter: "O"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionGuessPhrase, Player: "ann", Phrase: "go for it"})

	msg := sender.last(t, "10.0.0.1:1")
	snap := decodeGame(t, msg)
	assert.Equal(t, "ENDED", snap.State)
	assert.Equal(t, "ann", snap.Winner)
	assert.Contains(t, msg.Event, "ann solved the phrase")
	assert.Contains(t, msg.Event, "ann wins with $1000")

	require.Equal(t, "ann", snap.Players[0].Name)
	assert.Equal(t, 1000, snap.Players[0].TotalScore, "two O hits at $500 each, banked on the solve")

	scores, err := store.HighScores(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []storage.LeaderboardRecord{{PlayerName: "ann", Score: 1000}}, scores,
		"only human seats reach the leaderboard")
}

func TestServer_StateErrorRepliesToCallerOnly(t *testing.T) {
	s, sender, _ := newTestServer(t, match.DefaultRules(), &scriptedPolicy{},
		phrase.Phrase{Text: "GO FOR IT", Category: "Phrase"},
	)

	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionLoginJoin, Player: "ann"})
	handle(s, "10.0.0.2:1", netwire.Message{Action: netwire.ActionLoginJoin, Player: "ben"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionStart, Player: "ann"})
	annSeen := len(sender.messages("10.0.0.1:1"))

	handle(s, "10.0.0.2:1", netwire.Message{Action: netwire.ActionSpin, Player: "ben"})

	msg := sender.last(t, "10.0.0.2:1")
	assert.Equal(t, netwire.ActionError, msg.Action)
	assert.Equal(t, "match: not your turn", msg.Text)
	assert.Len(t, sender.messages("10.0.0.1:1"), annSeen, "a rejected move is invisible to the table")
}

func TestServer_BotsFinishMatchAfterHumanMiss(t *testing.T) {
	rules := match.Rules{Rounds: 2, TargetScore: 1000000}
	s, sender, store := newTestServer(t, rules, &scriptedPolicy{letters: goForIt},
		phrase.Phrase{Text: "GO FOR IT", Category: "Phrase"},
	)

	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionLoginJoin, Player: "ann"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionStart, Player: "ann"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionSpin, Player: "ann"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionGuessLetter, Player: "ann", Letter: "Z"})

	snap := decodeGame(t, sender.last(t, "10.0.0.1:1"))
	assert.Equal(t, "ENDED", snap.State, "the bots play both rounds out on their own")
	assert.True(t, strings.HasPrefix(snap.Winner, bot.NamePrefix), "winner %q should be a bot", snap.Winner)

	scores, err := store.HighScores(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []storage.LeaderboardRecord{{PlayerName: "ann", Score: 0}}, scores,
		"the human's empty total is still recorded; bot scores are not")
}

func TestServer_NewGameRematch(t *testing.T) {
	rules := match.Rules{Rounds: 1, TargetScore: 1000000}
	s, sender, _ := newTestServer(t, rules, &scriptedPolicy{},
		phrase.Phrase{Text: "GO FOR IT", Category: "Phrase"},
	)

	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionLoginJoin, Player: "ann"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionStart, Player: "ann"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionSpin, Player: "ann"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionGuessPhrase, Player: "ann", Phrase: "go for it"})
	require.Equal(t, "ENDED", decodeGame(t, sender.last(t, "10.0.0.1:1")).State)

	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionNewGame, Player: "ann"})
	msg := sender.last(t, "10.0.0.1:1")
	snap := decodeGame(t, msg)
	assert.Equal(t, "WAITING", snap.State)
	assert.Empty(t, snap.Winner)
	assert.Contains(t, msg.Event, "ann called for a rematch")
	require.Len(t, snap.Players, match.Capacity, "the table survives a rematch")
	for _, p := range snap.Players {
		assert.Zero(t, p.TotalScore, "%s carries no score into the rematch", p.Name)
	}

	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionStart, Player: "ann"})
	snap = decodeGame(t, sender.last(t, "10.0.0.1:1"))
	assert.Equal(t, "IN_PROGRESS", snap.State)
	assert.Equal(t, "ann", snap.Current)
}

func TestServer_NewGameRequiresEnded(t *testing.T) {
	s, sender, _ := newTestServer(t, match.DefaultRules(), &scriptedPolicy{},
		phrase.Phrase{Text: "GO FOR IT", Category: "Phrase"},
	)

	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionLoginJoin, Player: "ann"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionStart, Player: "ann"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionNewGame, Player: "ann"})

	msg := sender.last(t, "10.0.0.1:1")
	assert.Equal(t, netwire.ActionError, msg.Action)
	assert.Equal(t, "match: game not ended", msg.Text)
}

func TestServer_LeaveHandsTurnToReplacementBot(t *testing.T) {
	rules := match.Rules{Rounds: 1, TargetScore: 1000000}
	s, sender, store := newTestServer(t, rules, &scriptedPolicy{letters: goForIt},
		phrase.Phrase{Text: "GO FOR IT", Category: "Phrase"},
	)

	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionLoginJoin, Player: "ann"})
	handle(s, "10.0.0.2:1", netwire.Message{Action: netwire.ActionLoginJoin, Player: "ben"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionStart, Player: "ann"})
	handle(s, "10.0.0.1:1", netwire.Message{Action: netwire.ActionLeave, Player: "ann"})

	var left netwire.Message
	for _, m := range sender.messages("10.0.0.2:1") {
		if m.Action == netwire.ActionLeft {
			left = m
		}
	}
	require.Equal(t, netwire.ActionLeft, left.Action, "ben hears that ann left")
	assert.Equal(t, "ann", left.Player)
	assert.True(t, strings.HasPrefix(left.Repl, bot.NamePrefix), "replacement %q should be a bot", left.Repl)

	snap := decodeGame(t, sender.last(t, "10.0.0.2:1"))
	assert.Equal(t, "ENDED", snap.State, "the replacement bot inherits the turn and plays the round out")

	scores, err := store.HighScores(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []storage.LeaderboardRecord{{PlayerName: "ben", Score: 0}}, scores,
		"the leaver is not recorded; the remaining human is")
}
