package stats

import (
	"context"

	"github.com/verte-zerg/tuireact/internal/model"
	"github.com/verte-zerg/tuireact/internal/store"
)

const reportLeaderboardSize = 20

// Report contains precomputed data for stats rendering.
type Report struct {
	Rounds      []model.RoundRecord
	Metrics     Metrics
	Levels      []LevelRow
	Leaderboard []model.LeaderboardEntry
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	rounds, err := st.ListRounds(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(rounds) > cfg.Last {
		rounds = rounds[len(rounds)-cfg.Last:]
	}
	board, err := st.Leaderboard(ctx, reportLeaderboardSize, 0)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Rounds:      rounds,
		Metrics:     RoundMetrics(rounds),
		Levels:      LevelBreakdown(rounds),
		Leaderboard: board,
	}, nil
}
