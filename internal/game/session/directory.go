// Package session tracks logged-in players, binds them to network
// addresses, and places them into games.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/z26games/wof/internal/game/bot"
	"github.com/z26games/wof/internal/game/match"
	"github.com/z26games/wof/internal/game/phrase"
	"github.com/z26games/wof/internal/game/player"
	"github.com/z26games/wof/internal/game/wheel"
	"github.com/z26games/wof/internal/netwire"
)

var (
	ErrNotLoggedIn = errors.New("session: player not logged in")
	ErrNotInGame   = errors.New("session: player not in a game")
)

// Login outcome messages, sent verbatim to clients.
const (
	LoginSuccess   = "success"
	LoginDuplicate = "You are already logged in"
	LoginRejected  = "Invalid user name"
)

// LoginResult reports the outcome of a login attempt.
type LoginResult struct {
	OK bool
	// Message is the verbatim text for the confirmation reply.
	Message string
}

// outbound is a message held back until the directory lock is released.
type outbound struct {
	addr string
	msg  netwire.Message
}

// Directory is the server's registry of logged-in players and live games.
// All methods are safe for concurrent use. The directory may take a
// match's lock while holding its own; match code never calls back into
// the directory. Network sends always happen after every lock is
// released.
type Directory struct {
	mu     sync.Mutex
	logger *zap.Logger
	sender netwire.Sender

	rules match.Rules
	wheel *wheel.Wheel

	players map[string]player.Player // name → logged-in human
	addrs   map[string]string        // name → remote address
	inGame  map[string]*match.Match  // name → current game
	games   []*match.Match           // creation order
}

// NewDirectory creates an empty directory.
//
// Precondition: w, sender, and logger must be non-nil; rules must be valid.
// Postcondition: Returns a Directory with no players and no games.
func NewDirectory(rules match.Rules, w *wheel.Wheel, sender netwire.Sender, logger *zap.Logger) *Directory {
	return &Directory{
		logger:  logger,
		sender:  sender,
		rules:   rules,
		wheel:   w,
		players: make(map[string]player.Player),
		addrs:   make(map[string]string),
		inGame:  make(map[string]*match.Match),
	}
}

// Login registers name as a human player bound to addr.
//
// Postcondition: Returns the outcome with its client-facing message. A
// rejected login changes nothing.
func (d *Directory) Login(name, addr string) LoginResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, bound := d.players[name]; bound {
		return LoginResult{Message: LoginDuplicate}
	}
	if !player.ValidName(name) {
		return LoginResult{Message: LoginRejected}
	}

	d.players[name] = player.NewHuman(name)
	d.addrs[name] = addr

	d.logger.Info("player logged in",
		zap.String("player", name),
		zap.String("remote_addr", addr),
	)
	return LoginResult{OK: true, Message: LoginSuccess}
}

// Logout removes name from the directory, leaving their game first if
// they are in one. Unknown names are ignored.
//
// Postcondition: name is no longer registered or bound to an address.
// The returned game is the one name left, nil if they were not in one.
func (d *Directory) Logout(name string) *match.Match {
	d.mu.Lock()
	var out []outbound
	var left *match.Match
	if _, ok := d.players[name]; ok {
		if m := d.inGame[name]; m != nil {
			left = m
			out = d.leaveLocked(name)
		}
		delete(d.players, name)
		delete(d.addrs, name)
		d.logger.Info("player logged out", zap.String("player", name))
	}
	d.mu.Unlock()

	d.deliver(out)
	return left
}

// Join places name into a game: the first waiting game with a free seat
// in creation order, or a freshly created one. Calling Join while
// already in a game returns that game unchanged.
//
// Postcondition: On success name is seated in exactly one game and the
// returned roster lists its players in seat order. Other seated humans
// have been told about the newcomer.
func (d *Directory) Join(name string) (*match.Match, []string, error) {
	d.mu.Lock()
	if _, ok := d.players[name]; !ok {
		d.mu.Unlock()
		return nil, nil, ErrNotLoggedIn
	}

	if m := d.inGame[name]; m != nil {
		roster := rosterOf(m)
		d.mu.Unlock()
		return m, roster, nil
	}

	p := d.players[name]
	var joined *match.Match
	for _, m := range d.games {
		if m.TryJoin(p) {
			joined = m
			break
		}
	}
	if joined == nil {
		joined = match.New(uuid.NewString(), d.rules, d.wheel)
		d.games = append(d.games, joined)
		joined.TryJoin(p)
		d.logger.Info("game created",
			zap.String("game_id", joined.ID()),
			zap.String("player", name),
		)
	}
	d.inGame[name] = joined

	out := d.humansLocked(joined, netwire.Message{
		Action: netwire.ActionJoinOther,
		Player: name,
	}, name)
	roster := rosterOf(joined)
	d.logger.Debug("player joined game",
		zap.String("game_id", joined.ID()),
		zap.String("player", name),
		zap.Strings("roster", roster),
	)
	d.mu.Unlock()

	d.deliver(out)
	return joined, roster, nil
}

// Start begins name's game, seating automated players until the game is
// full. Starting a game that is already running is a no-op, reported by
// the started flag.
//
// Precondition: puzzles must be non-empty.
// Postcondition: On success the game is IN_PROGRESS with a full table
// and every seated human has received the backfill and start notices.
func (d *Directory) Start(name string, puzzles []phrase.Phrase) (*match.Match, bool, error) {
	d.mu.Lock()
	if _, ok := d.players[name]; !ok {
		d.mu.Unlock()
		return nil, false, ErrNotLoggedIn
	}
	m := d.inGame[name]
	if m == nil {
		d.mu.Unlock()
		return nil, false, ErrNotInGame
	}

	switch m.State() {
	case match.StateInProgress:
		d.mu.Unlock()
		return m, false, nil
	case match.StateEnded:
		d.mu.Unlock()
		return m, false, match.ErrGameOver
	}

	var out []outbound
	for m.SeatCount() < match.Capacity {
		b := d.seatBotLocked(m)
		out = append(out, d.humansLocked(m, netwire.Message{
			Action: netwire.ActionJoinOther,
			Player: b.Name,
		}, "")...)
	}

	if err := m.Start(puzzles); err != nil {
		d.mu.Unlock()
		// The backfilled bots are seated regardless, so their notices go out.
		d.deliver(out)
		return m, false, err
	}
	out = append(out, d.humansLocked(m, netwire.Message{
		Action: netwire.ActionStart,
		Player: name,
	}, "")...)
	d.logger.Info("game started",
		zap.String("game_id", m.ID()),
		zap.String("player", name),
		zap.Int("seats", m.SeatCount()),
	)
	d.mu.Unlock()

	d.deliver(out)
	return m, true, nil
}

// Leave removes name from their current game.
//
// Postcondition: An IN_PROGRESS game keeps its turn order by seating a
// replacement bot in name's slot; otherwise the seat is vacated. A game
// left with no humans is reset to empty WAITING. The returned game is
// the one name left.
func (d *Directory) Leave(name string) (*match.Match, error) {
	d.mu.Lock()
	if _, ok := d.players[name]; !ok {
		d.mu.Unlock()
		return nil, ErrNotLoggedIn
	}
	m := d.inGame[name]
	if m == nil {
		d.mu.Unlock()
		return nil, ErrNotInGame
	}
	out := d.leaveLocked(name)
	d.mu.Unlock()

	d.deliver(out)
	return m, nil
}

// Resolve returns name's current game for gameplay dispatch.
func (d *Directory) Resolve(name string) (*match.Match, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.players[name]; !ok {
		return nil, ErrNotLoggedIn
	}
	m := d.inGame[name]
	if m == nil {
		return nil, ErrNotInGame
	}
	return m, nil
}

// BroadcastExcept sends msg to every human seated in m except the named
// player. An empty except name sends to every seated human.
func (d *Directory) BroadcastExcept(msg netwire.Message, except string, m *match.Match) {
	d.mu.Lock()
	out := d.humansLocked(m, msg, except)
	d.mu.Unlock()

	d.deliver(out)
}

// Rules returns the rules every game in this directory plays under.
func (d *Directory) Rules() match.Rules {
	return d.rules
}

// PlayerCount returns the number of logged-in players.
func (d *Directory) PlayerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.players)
}

// GameCount returns the number of games ever created, including reset ones.
func (d *Directory) GameCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.games)
}

// LoggedIn reports whether name is currently registered.
func (d *Directory) LoggedIn(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.players[name]
	return ok
}

// leaveLocked removes name's seat, installing a replacement bot when the
// game is live, and returns the notices for the remaining humans. Resets
// the game instead when no human remains.
func (d *Directory) leaveLocked(name string) []outbound {
	m := d.inGame[name]
	delete(d.inGame, name)

	msg := netwire.Message{Action: netwire.ActionLeft, Player: name}
	if m.State() == match.StateInProgress {
		b := d.freshBotLocked(m)
		_ = m.ReplaceSeat(name, b)
		msg.Repl = b.Name
		d.logger.Info("player replaced by bot",
			zap.String("game_id", m.ID()),
			zap.String("player", name),
			zap.String("repl", b.Name),
		)
	} else {
		_ = m.Vacate(name)
		d.logger.Info("player left game",
			zap.String("game_id", m.ID()),
			zap.String("player", name),
		)
	}

	if !m.HasHumans() {
		m.Reset()
		d.logger.Info("game reset, no humans remain", zap.String("game_id", m.ID()))
		return nil
	}
	return d.humansLocked(m, msg, name)
}

// seatBotLocked seats a freshly named bot in m, retrying name collisions.
func (d *Directory) seatBotLocked(m *match.Match) player.Player {
	for {
		b := d.freshBotLocked(m)
		if m.TryJoin(b) {
			d.logger.Debug("bot seated",
				zap.String("game_id", m.ID()),
				zap.String("bot", b.Name),
			)
			return b
		}
	}
}

// freshBotLocked returns a bot whose name collides with no logged-in
// player and no seat in m.
func (d *Directory) freshBotLocked(m *match.Match) player.Player {
	for {
		b := player.NewBot(bot.NewName())
		if _, taken := d.players[b.Name]; taken {
			continue
		}
		if m.Seated(b.Name) {
			continue
		}
		return b
	}
}

// humansLocked builds one outbound per human seated in m, skipping except.
func (d *Directory) humansLocked(m *match.Match, msg netwire.Message, except string) []outbound {
	var out []outbound
	for _, name := range m.HumanNames() {
		if name == except {
			continue
		}
		addr, ok := d.addrs[name]
		if !ok {
			continue
		}
		out = append(out, outbound{addr: addr, msg: msg})
	}
	return out
}

// deliver sends held-back messages. Must be called without the lock.
func (d *Directory) deliver(out []outbound) {
	for _, o := range out {
		d.sender.Send(o.addr, o.msg)
	}
}

// rosterOf lists m's players in seat order.
func rosterOf(m *match.Match) []string {
	players := m.Players()
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	return names
}
