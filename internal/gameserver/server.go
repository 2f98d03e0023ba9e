// Package gameserver dispatches wire messages to game operations: it is
// the glue between the transport, the session directory, the matches, and
// the store.
package gameserver

import (
	"context"

	"go.uber.org/zap"

	"github.com/z26games/wof/internal/game/bot"
	"github.com/z26games/wof/internal/game/match"
	"github.com/z26games/wof/internal/game/session"
	"github.com/z26games/wof/internal/netwire"
	"github.com/z26games/wof/internal/storage"
)

// leaderboardLimit caps how many records an update reply carries.
const leaderboardLimit = 10

var _ netwire.Handler = (*Server)(nil)

// Server implements netwire.Handler. It parses each inbound Message,
// invokes directory, match, and store operations, and sends replies and
// fan-out notifications through the Sender. Store I/O happens here, never
// under the directory or match locks.
type Server struct {
	directory *session.Directory
	store     storage.Store
	sender    netwire.Sender
	policy    bot.Policy
	logger    *zap.Logger
}

// NewServer creates a Server with the given dependencies.
//
// Precondition: every dependency must be non-nil.
// Postcondition: Returns a fully initialised Server.
func NewServer(
	directory *session.Directory,
	store storage.Store,
	sender netwire.Sender,
	policy bot.Policy,
	logger *zap.Logger,
) *Server {
	return &Server{
		directory: directory,
		store:     store,
		sender:    sender,
		policy:    policy,
		logger:    logger,
	}
}

// HandleMessage dispatches one inbound message. Protocol violations
// (missing player, unknown action, caller not logged in or not in a game)
// are logged and dropped; state errors go back to the caller as an error
// message.
func (s *Server) HandleMessage(ctx context.Context, addr string, msg netwire.Message) {
	name := msg.Player
	if name == "" {
		s.logger.Warn("dropping message without player",
			zap.String("action", msg.Action),
			zap.String("remote_addr", addr),
		)
		return
	}

	switch msg.Action {
	case netwire.ActionLogin:
		s.handleLogin(addr, name)
	case netwire.ActionLogout:
		s.handleLogout(ctx, name)
	case netwire.ActionJoin:
		s.handleJoin(addr, name)
	case netwire.ActionLoginJoin:
		s.handleLoginJoin(addr, name)
	case netwire.ActionLeave:
		s.handleLeave(ctx, addr, name)
	case netwire.ActionStart:
		s.handleStart(ctx, addr, name)
	case netwire.ActionUpdate:
		s.handleUpdate(ctx, addr, name)
	case netwire.ActionSpin:
		s.handlePlay(ctx, addr, name, match.Action{Kind: match.ActionSpin})
	case netwire.ActionGuessLetter:
		s.handlePlay(ctx, addr, name, match.Action{Kind: match.ActionGuessLetter, Letter: firstRune(msg.Letter)})
	case netwire.ActionGuessPhrase:
		s.handlePlay(ctx, addr, name, match.Action{Kind: match.ActionGuessPhrase, Phrase: msg.Phrase})
	case netwire.ActionNewGame:
		s.handleNewGame(addr, name)
	default:
		s.logger.Warn("dropping unknown action",
			zap.String("action", msg.Action),
			zap.String("player", name),
			zap.String("remote_addr", addr),
		)
	}
}

// handleLogin registers the player at the sender's address. The reply
// carries the outcome message whether or not the login succeeded.
func (s *Server) handleLogin(addr, name string) {
	res := s.directory.Login(name, addr)
	s.sender.Send(addr, netwire.Message{
		Action: netwire.ActionLoginConf,
		Text:   res.Message,
	})
}

// handleLogout removes the player. Their vacated game may leave a bot
// holding the turn, so bot play is driven afterwards.
func (s *Server) handleLogout(ctx context.Context, name string) {
	if m := s.directory.Logout(name); m != nil {
		s.runBots(ctx, m)
	}
}

func (s *Server) handleJoin(addr, name string) {
	_, roster, err := s.directory.Join(name)
	if err != nil {
		s.logger.Warn("dropping join",
			zap.String("player", name),
			zap.Error(err),
		)
		return
	}
	s.sender.Send(addr, netwire.Message{
		Action:  netwire.ActionJoinConf,
		Players: roster,
	})
}

// handleLoginJoin is the composite login-and-join. A failed login replies
// with the failure message; a successful one replies with the roster.
func (s *Server) handleLoginJoin(addr, name string) {
	res := s.directory.Login(name, addr)
	if !res.OK {
		s.sender.Send(addr, netwire.Message{
			Action: netwire.ActionLoginJoinConf,
			Text:   res.Message,
		})
		return
	}
	_, roster, err := s.directory.Join(name)
	if err != nil {
		s.logger.Warn("dropping join after login",
			zap.String("player", name),
			zap.Error(err),
		)
		return
	}
	s.sender.Send(addr, netwire.Message{
		Action:  netwire.ActionLoginJoinConf,
		Text:    res.Message,
		Players: roster,
	})
}

func (s *Server) handleLeave(ctx context.Context, addr string, name string) {
	m, err := s.directory.Leave(name)
	if err != nil {
		s.logger.Warn("dropping leave",
			zap.String("player", name),
			zap.Error(err),
		)
		return
	}
	// The replacement bot may now hold the turn.
	s.runBots(ctx, m)
}

// handleUpdate replies with the phrase catalogue and the leaderboard.
func (s *Server) handleUpdate(ctx context.Context, addr string, name string) {
	if !s.directory.LoggedIn(name) {
		s.logger.Warn("dropping update from unknown player",
			zap.String("player", name),
		)
		return
	}

	phrases, err := s.store.PhrasesByCategory(ctx)
	if err != nil {
		s.logger.Error("loading phrase catalogue", zap.Error(err))
		s.sendError(addr, "catalogue unavailable")
		return
	}
	records, err := s.store.HighScores(ctx, leaderboardLimit)
	if err != nil {
		s.logger.Error("loading leaderboard", zap.Error(err))
		s.sendError(addr, "leaderboard unavailable")
		return
	}
	leaderboard := make(map[string]int, len(records))
	for _, r := range records {
		leaderboard[r.PlayerName] = r.Score
	}

	s.sender.Send(addr, netwire.Message{
		Action:      netwire.ActionUpdate,
		Phrases:     phrases,
		Leaderboard: leaderboard,
	})
}

// sendError reports a rejected operation to the caller only.
func (s *Server) sendError(addr, text string) {
	s.sender.Send(addr, netwire.Message{
		Action: netwire.ActionError,
		Text:   text,
	})
}

// firstRune returns the first rune of s, 0 when s is empty.
func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
