package bot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/z26games/wof/internal/game/bot"
)

// fixedPolicy always returns the same decision; used as the Lua fallback.
type fixedPolicy struct {
	dec bot.Decision
}

func (f fixedPolicy) Decide(bot.View) bot.Decision { return f.dec }

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.lua")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// TestNewLuaPolicy_RequiresDecideFunction verifies load-time validation.
func TestNewLuaPolicy_RequiresDecideFunction(t *testing.T) {
	fallback := fixedPolicy{dec: bot.Decision{Kind: bot.DecideSpin}}

	_, err := bot.NewLuaPolicy(writeScript(t, `x = 1`), 0, fallback, zap.NewNop())
	assert.Error(t, err, "a script without decide() must be rejected")

	_, err = bot.NewLuaPolicy(writeScript(t, `this is not lua`), 0, fallback, zap.NewNop())
	assert.Error(t, err, "a script that fails to parse must be rejected")

	_, err = bot.NewLuaPolicy(filepath.Join(t.TempDir(), "missing.lua"), 0, fallback, zap.NewNop())
	assert.Error(t, err, "a missing script must be rejected")
}

// TestLuaPolicy_MapsDecisions verifies the three action shapes and that the
// view reaches the script.
func TestLuaPolicy_MapsDecisions(t *testing.T) {
	fallback := fixedPolicy{dec: bot.Decision{Kind: bot.DecideSpin}}
	p, err := bot.NewLuaPolicy(writeScript(t, `
		function decide(view)
			if view.wheelValue == 0 then
				return { action = "spin" }
			end
			if view.vowelsOnly then
				return { action = "letter", letter = "e" }
			end
			return { action = "phrase", phrase = view.masked }
		end
	`), 0, fallback, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, bot.Decision{Kind: bot.DecideSpin},
		p.Decide(bot.View{WheelValue: 0}))

	dec := p.Decide(bot.View{WheelValue: 300, VowelsOnly: true})
	assert.Equal(t, bot.Decision{Kind: bot.DecideLetter, Letter: 'E'}, dec,
		"script letters are uppercased")

	dec = p.Decide(bot.View{WheelValue: 300, Masked: "_O _O____"})
	assert.Equal(t, bot.Decision{Kind: bot.DecidePhrase, Phrase: "_O _O____"}, dec)
}

// TestLuaPolicy_SeesGuessedLetters verifies the guessed array marshalling.
func TestLuaPolicy_SeesGuessedLetters(t *testing.T) {
	fallback := fixedPolicy{dec: bot.Decision{Kind: bot.DecideSpin}}
	p, err := bot.NewLuaPolicy(writeScript(t, `
		function decide(view)
			return { action = "letter", letter = view.guessed[#view.guessed] }
		end
	`), 0, fallback, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	dec := p.Decide(bot.View{WheelValue: 100, Guessed: []string{"A", "B", "C"}})
	assert.Equal(t, bot.Decision{Kind: bot.DecideLetter, Letter: 'C'}, dec)
}

// TestLuaPolicy_FallsBackOnErrorsAndMalformedReturns verifies that a broken
// script never stalls a game.
func TestLuaPolicy_FallsBackOnErrorsAndMalformedReturns(t *testing.T) {
	fallback := fixedPolicy{dec: bot.Decision{Kind: bot.DecideLetter, Letter: 'T'}}

	p, err := bot.NewLuaPolicy(writeScript(t, `
		function decide(view)
			error("boom")
		end
	`), 0, fallback, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, fallback.dec, p.Decide(bot.View{WheelValue: 100}),
		"runtime errors fall back")

	p2, err := bot.NewLuaPolicy(writeScript(t, `
		function decide(view)
			return { action = "dance" }
		end
	`), 0, fallback, zap.NewNop())
	require.NoError(t, err)
	defer p2.Close()
	assert.Equal(t, fallback.dec, p2.Decide(bot.View{WheelValue: 100}),
		"unknown actions fall back")

	p3, err := bot.NewLuaPolicy(writeScript(t, `
		function decide(view)
			return 42
		end
	`), 0, fallback, zap.NewNop())
	require.NoError(t, err)
	defer p3.Close()
	assert.Equal(t, fallback.dec, p3.Decide(bot.View{WheelValue: 100}),
		"non-table returns fall back")

	p4, err := bot.NewLuaPolicy(writeScript(t, `
		function decide(view)
			return { action = "letter" }
		end
	`), 0, fallback, zap.NewNop())
	require.NoError(t, err)
	defer p4.Close()
	assert.Equal(t, fallback.dec, p4.Decide(bot.View{WheelValue: 100}),
		"letter decisions without a letter fall back")
}

// TestLuaPolicy_RunawayCallDoesNotPoisonLaterCalls verifies the per-call
// instruction budget: one looping decision falls back, and the policy keeps
// answering afterwards.
func TestLuaPolicy_RunawayCallDoesNotPoisonLaterCalls(t *testing.T) {
	fallback := fixedPolicy{dec: bot.Decision{Kind: bot.DecideLetter, Letter: 'T'}}
	p, err := bot.NewLuaPolicy(writeScript(t, `
		function decide(view)
			if view.wheelValue == 7 then
				while true do end
			end
			return { action = "spin" }
		end
	`), 500, fallback, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, bot.Decision{Kind: bot.DecideSpin}, p.Decide(bot.View{}))
	assert.Equal(t, fallback.dec, p.Decide(bot.View{WheelValue: 7}),
		"a looping call hits the budget and falls back")
	assert.Equal(t, bot.Decision{Kind: bot.DecideSpin}, p.Decide(bot.View{}),
		"the next call gets a fresh budget")
}
