// Package player defines the participants of the phrase-guessing game.
package player

// Kind distinguishes human players from automated players.
type Kind int

const (
	KindHuman Kind = iota
	KindBot
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	if k == KindBot {
		return "bot"
	}
	return "human"
}

// ReservedName is the sender name the server uses for its own messages.
// It can never be claimed at login.
const ReservedName = "SYSTEM"

// Player represents one participant: a human reachable at a remote address,
// or a server-driven automated player.
//
// Invariant: Name never changes once the Player is created.
type Player struct {
	Name string
	Kind Kind
}

// NewHuman returns a human player with the given name.
func NewHuman(name string) Player {
	return Player{Name: name, Kind: KindHuman}
}

// NewBot returns an automated player with the given name.
func NewBot(name string) Player {
	return Player{Name: name, Kind: KindBot}
}

// IsBot reports whether this player is automated.
//
// Postcondition: Returns true iff Kind == KindBot.
func (p Player) IsBot() bool { return p.Kind == KindBot }

// ValidName reports whether name may be claimed at login: non-empty and not
// the reserved system name.
func ValidName(name string) bool {
	return name != "" && name != ReservedName
}
