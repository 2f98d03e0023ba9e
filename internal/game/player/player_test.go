package player_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/z26games/wof/internal/game/player"
)

// TestNewHuman_NewBot verifies the kind assignment of the constructors.
func TestNewHuman_NewBot(t *testing.T) {
	h := player.NewHuman("zoe")
	assert.Equal(t, "zoe", h.Name)
	assert.False(t, h.IsBot())
	assert.Equal(t, "human", h.Kind.String())

	b := player.NewBot("Bot-1a2b")
	assert.Equal(t, "Bot-1a2b", b.Name)
	assert.True(t, b.IsBot())
	assert.Equal(t, "bot", b.Kind.String())
}

// TestValidName verifies that the reserved system name and the empty name can
// never be claimed.
func TestValidName(t *testing.T) {
	assert.True(t, player.ValidName("zoe"))
	assert.False(t, player.ValidName(""))
	assert.False(t, player.ValidName(player.ReservedName))
	assert.True(t, player.ValidName("system"), "reservation is exact, not case-folded")
}
