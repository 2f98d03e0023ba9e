package postgres

import (
	"context"
	"fmt"

	"github.com/z26games/wof/internal/storage"
)

// HighScores returns up to limit leaderboard records, best score first,
// ties broken by player name.
func (s *Store) HighScores(ctx context.Context, limit int) ([]storage.LeaderboardRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT player_name, score FROM leaderboard
		 ORDER BY score DESC, player_name ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying high scores: %w", err)
	}
	defer rows.Close()

	var out []storage.LeaderboardRecord
	for rows.Next() {
		var rec storage.LeaderboardRecord
		if err := rows.Scan(&rec.PlayerName, &rec.Score); err != nil {
			return nil, fmt.Errorf("scanning leaderboard record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}
	return out, nil
}

// RecordScore stores score for name, keeping the better of the stored
// and offered scores.
//
// Precondition: name must be non-empty; score must be >= 0.
func (s *Store) RecordScore(ctx context.Context, name string, score int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO leaderboard (player_name, score)
		 VALUES ($1, $2)
		 ON CONFLICT (player_name)
		 DO UPDATE SET score = GREATEST(leaderboard.score, EXCLUDED.score)`,
		name, score,
	)
	if err != nil {
		return fmt.Errorf("recording score: %w", err)
	}
	return nil
}
