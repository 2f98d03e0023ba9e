// Package netwire implements the newline-delimited JSON protocol spoken
// between the game server and its clients. Each line on the wire is a
// single flat Message object; the action field selects the operation.
package netwire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Client-to-server actions.
const (
	ActionLogin       = "login"
	ActionLogout      = "logout"
	ActionJoin        = "join"
	ActionLoginJoin   = "laj"
	ActionLeave       = "leave"
	ActionStart       = "start"
	ActionUpdate      = "update"
	ActionSpin        = "spin"
	ActionGuessLetter = "guessletter"
	ActionGuessPhrase = "guessphrase"
	ActionNewGame     = "newgame"
)

// Server-to-client actions. ActionStart and ActionUpdate travel in both
// directions.
const (
	ActionLoginConf     = "loginconf"
	ActionJoinConf      = "joinconf"
	ActionLoginJoinConf = "lajconf"
	ActionJoinOther     = "joinoth"
	ActionLeft          = "left"
	ActionState         = "state"
	ActionError         = "error"
)

// ErrMissingAction reports a wire line without an action field.
var ErrMissingAction = errors.New("netwire: message has no action")

// Message is the single wire envelope. Every field except Action is
// optional; omitempty keeps lines short. Game carries an opaque state
// snapshot produced by the game layer so this package stays free of
// game types.
type Message struct {
	Action      string            `json:"action"`
	Player      string            `json:"player,omitempty"`
	Text        string            `json:"message,omitempty"`
	Players     []string          `json:"players,omitempty"`
	Repl        string            `json:"repl,omitempty"`
	Letter      string            `json:"letter,omitempty"`
	Phrase      string            `json:"phrase,omitempty"`
	Phrases     map[string]string `json:"phrases,omitempty"`
	Leaderboard map[string]int    `json:"leaderboard,omitempty"`
	Event       string            `json:"event,omitempty"`
	Game        json.RawMessage   `json:"game,omitempty"`
}

// Encode serializes msg as one wire line, including the trailing newline.
//
// Precondition: msg.Action must be non-empty.
// Postcondition: Returns a single line of JSON terminated by '\n'.
func Encode(msg Message) ([]byte, error) {
	if msg.Action == "" {
		return nil, ErrMissingAction
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding %s message: %w", msg.Action, err)
	}
	return append(data, '\n'), nil
}

// Decode parses one wire line into a Message. The line may carry a
// trailing newline.
//
// Postcondition: Returns ErrMissingAction when the parsed object has an
// empty action field.
func Decode(line []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		return Message{}, fmt.Errorf("decoding wire line: %w", err)
	}
	if msg.Action == "" {
		return Message{}, ErrMissingAction
	}
	return msg, nil
}
