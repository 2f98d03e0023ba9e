package gameserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/z26games/wof/internal/game/bot"
	"github.com/z26games/wof/internal/game/match"
	"github.com/z26games/wof/internal/game/phrase"
	"github.com/z26games/wof/internal/game/session"
	"github.com/z26games/wof/internal/netwire"
)

// maxBotMoves bounds one bot-driving loop. A full game finishes well under
// this many moves; hitting the cap means a policy is stuck.
const maxBotMoves = 512

// handleStart begins the caller's game with freshly drawn puzzles, one per
// round. The puzzles are drawn before the directory is touched so no store
// I/O happens under its lock.
func (s *Server) handleStart(ctx context.Context, addr, name string) {
	puzzles, err := s.store.RandomPhrases(ctx, s.directory.Rules().Rounds)
	if err != nil {
		s.logger.Error("loading puzzles", zap.Error(err))
		s.sendError(addr, "no puzzles available")
		return
	}

	m, started, err := s.directory.Start(name, puzzles)
	switch {
	case errors.Is(err, session.ErrNotLoggedIn), errors.Is(err, session.ErrNotInGame):
		s.logger.Warn("dropping start",
			zap.String("player", name),
			zap.Error(err),
		)
		return
	case err != nil:
		s.sendError(addr, err.Error())
		return
	case !started:
		return
	}

	// Everyone sees the opening board before any move is made.
	s.broadcastState(m, nil)
	s.runBots(ctx, m)
}

// handlePlay applies one gameplay action and publishes the outcome. State
// errors go back to the caller only; nothing is broadcast for them.
func (s *Server) handlePlay(ctx context.Context, addr, name string, act match.Action) {
	m, err := s.directory.Resolve(name)
	if err != nil {
		s.logger.Warn("dropping gameplay action",
			zap.String("player", name),
			zap.Error(err),
		)
		return
	}

	res, err := m.Apply(name, act)
	if err != nil {
		s.sendError(addr, err.Error())
		return
	}

	s.broadcastState(m, res.Events)
	if res.Ended {
		s.recordScores(ctx, m)
	}
	s.runBots(ctx, m)
}

// handleNewGame rematches an ended game: same seats, zeroed scores,
// back to WAITING until someone starts it.
func (s *Server) handleNewGame(addr, name string) {
	m, err := s.directory.Resolve(name)
	if err != nil {
		s.logger.Warn("dropping newgame",
			zap.String("player", name),
			zap.Error(err),
		)
		return
	}
	if err := m.NewGame(); err != nil {
		s.sendError(addr, err.Error())
		return
	}
	s.broadcastState(m, []string{name + " called for a rematch"})
}

// runBots drives policy decisions while the current seat is automated, so
// a round always progresses without human input. An illegal policy move
// falls back to a deterministic legal one; losing the turn to a concurrent
// human action simply stops the loop.
func (s *Server) runBots(ctx context.Context, m *match.Match) {
	for moves := 0; moves < maxBotMoves; moves++ {
		cur, ok := m.Current()
		if !ok || !cur.IsBot() {
			return
		}

		snap := m.Snapshot()
		act, legal := actionFor(s.policy.Decide(viewFor(snap, cur.Name)))
		if !legal {
			act = fallbackFor(snap)
		}

		res, err := m.Apply(cur.Name, act)
		if err != nil {
			s.logger.Debug("bot move rejected, taking fallback",
				zap.String("game_id", m.ID()),
				zap.String("player", cur.Name),
				zap.Error(err),
			)
			res, err = m.Apply(cur.Name, fallbackFor(m.Snapshot()))
			if err != nil {
				return
			}
		}

		s.broadcastState(m, res.Events)
		if res.Ended {
			s.recordScores(ctx, m)
			return
		}
	}
	s.logger.Warn("bot play capped", zap.String("game_id", m.ID()))
}

// broadcastState sends the match snapshot to every seated human.
func (s *Server) broadcastState(m *match.Match, events []string) {
	snap := m.Snapshot()
	game, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("encoding game snapshot",
			zap.String("game_id", m.ID()),
			zap.Error(err),
		)
		return
	}
	s.directory.BroadcastExcept(netwire.Message{
		Action: netwire.ActionState,
		Event:  strings.Join(events, "; "),
		Game:   game,
	}, "", m)
}

// recordScores persists every human seat's final total, keeping each
// player's best across games.
func (s *Server) recordScores(ctx context.Context, m *match.Match) {
	snap := m.Snapshot()
	for _, p := range snap.Players {
		if p.Bot {
			continue
		}
		if err := s.store.RecordScore(ctx, p.Name, p.TotalScore); err != nil {
			s.logger.Error("recording score",
				zap.String("player", p.Name),
				zap.Int("score", p.TotalScore),
				zap.Error(err),
			)
		}
	}
	s.logger.Info("game ended",
		zap.String("game_id", snap.ID),
		zap.String("winner", snap.Winner),
	)
}

// viewFor builds the policy's view of the board for the named seat.
func viewFor(snap match.Snapshot, name string) bot.View {
	v := bot.View{
		Category:   snap.Category,
		Masked:     snap.Masked,
		Guessed:    snap.Guessed,
		WheelValue: snap.WheelValue,
		VowelsOnly: snap.VowelsOnly,
	}
	for _, p := range snap.Players {
		if p.Name == name {
			v.RoundScore = p.RoundScore
		}
	}
	return v
}

// actionFor translates a policy decision into a match action.
func actionFor(d bot.Decision) (match.Action, bool) {
	switch d.Kind {
	case bot.DecideSpin:
		return match.Action{Kind: match.ActionSpin}, true
	case bot.DecideLetter:
		return match.Action{Kind: match.ActionGuessLetter, Letter: d.Letter}, true
	case bot.DecidePhrase:
		return match.Action{Kind: match.ActionGuessPhrase, Phrase: d.Phrase}, true
	default:
		return match.Action{}, false
	}
}

// fallbackFor picks the deterministic legal move for a stuck policy: spin
// when the wheel is unspun, otherwise the first unguessed legal letter.
func fallbackFor(snap match.Snapshot) match.Action {
	if snap.WheelValue == 0 {
		return match.Action{Kind: match.ActionSpin}
	}
	guessed := make(map[string]bool, len(snap.Guessed))
	for _, l := range snap.Guessed {
		guessed[l] = true
	}
	for r := 'A'; r <= 'Z'; r++ {
		if guessed[string(r)] {
			continue
		}
		if snap.VowelsOnly && !phrase.IsVowel(r) {
			continue
		}
		return match.Action{Kind: match.ActionGuessLetter, Letter: r}
	}
	return match.Action{Kind: match.ActionSpin}
}
