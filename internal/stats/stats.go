// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/tuireact/internal/model"
)

// Metrics summarizes a set of rounds.
type Metrics struct {
	Rounds      int
	Successes   int
	AvgMs       float64
	BestMs      float64
	HasBest     bool
	SuccessRate float64
	BestScore   int
	MaxLevel    int
}

// RoundMetrics computes summary metrics. Best reaction only counts successes.
func RoundMetrics(rounds []model.RoundRecord) Metrics {
	var m Metrics
	var sum float64
	for _, r := range rounds {
		m.Rounds++
		sum += r.ReactionMs
		if r.TotalScore > m.BestScore {
			m.BestScore = r.TotalScore
		}
		if r.Level > m.MaxLevel {
			m.MaxLevel = r.Level
		}
		if !r.Success {
			continue
		}
		m.Successes++
		if !m.HasBest || r.ReactionMs < m.BestMs {
			m.BestMs = r.ReactionMs
			m.HasBest = true
		}
	}
	if m.Rounds > 0 {
		m.AvgMs = sum / float64(m.Rounds)
		m.SuccessRate = float64(m.Successes) / float64(m.Rounds)
	}
	return m
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// RenderSummary prints a summary block for rounds.
func RenderSummary(w io.Writer, rounds []model.RoundRecord) error {
	if len(rounds) == 0 {
		_, err := fmt.Fprintln(w, "No rounds found.")
		return err
	}
	m := RoundMetrics(rounds)
	best := "--"
	if m.HasBest {
		best = fmt.Sprintf("%.0fms", m.BestMs)
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Rounds: %d", m.Rounds),
		fmt.Sprintf("Success rate: %.1f%%", m.SuccessRate*100),
		fmt.Sprintf("Avg reaction: %.0fms", m.AvgMs),
		fmt.Sprintf("Best reaction: %s", best),
		fmt.Sprintf("Best score: %d", m.BestScore),
		fmt.Sprintf("Highest level: %d", m.MaxLevel),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves plots smoothed reaction times and success rate.
func RenderCurves(w io.Writer, rounds []model.RoundRecord, window, totalWidth, height int, useColor bool) error {
	if len(rounds) == 0 {
		return nil
	}
	reactions := make([]float64, len(rounds))
	successes := make([]float64, len(rounds))
	for i, r := range rounds {
		reactions[i] = r.ReactionMs
		if r.Success {
			successes[i] = 100
		}
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeries(w, "Reaction Curve", []Series{
		{Name: "Reaction", Unit: "ms", Values: MovingAverage(reactions, window)},
		{Name: "Success", Unit: "%", Values: MovingAverage(successes, window)},
	}, width, height, useColor)
}

// LevelRow is the per-level breakdown of a set of rounds.
type LevelRow struct {
	Level   int
	LevelID string
	Metrics Metrics
}

// LevelBreakdown groups rounds by level, ordered by level number.
func LevelBreakdown(rounds []model.RoundRecord) []LevelRow {
	grouped := map[int][]model.RoundRecord{}
	ids := map[int]string{}
	for _, r := range rounds {
		grouped[r.Level] = append(grouped[r.Level], r)
		ids[r.Level] = r.LevelID
	}
	out := make([]LevelRow, 0, len(grouped))
	for lvl, rs := range grouped {
		out = append(out, LevelRow{Level: lvl, LevelID: ids[lvl], Metrics: RoundMetrics(rs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

// RenderLevelTable prints the per-level breakdown.
func RenderLevelTable(w io.Writer, rounds []model.RoundRecord) error {
	rows := LevelBreakdown(rounds)
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No rounds found.")
		return err
	}
	headers := []string{"Level", "Id", "Rounds", "Success", "Avg (ms)", "Best (ms)"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		best := "--"
		if r.Metrics.HasBest {
			best = fmt.Sprintf("%.0f", r.Metrics.BestMs)
		}
		tableRows = append(tableRows, []string{
			fmt.Sprintf("%d", r.Level),
			r.LevelID,
			fmt.Sprintf("%d", r.Metrics.Rounds),
			fmt.Sprintf("%.1f%%", r.Metrics.SuccessRate*100),
			fmt.Sprintf("%.0f", r.Metrics.AvgMs),
			best,
		})
	}
	return writeLines(w, formatTable(headers, tableRows, map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true}))
}

// RenderLeaderboard prints leaderboard entries.
func RenderLeaderboard(w io.Writer, entries []model.LeaderboardEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No scores yet.")
		return err
	}
	headers := []string{"#", "Player", "Best Score", "Best (ms)", "Level", "Runs"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.Rank),
			e.PlayerName,
			fmt.Sprintf("%d", e.BestScore),
			fmt.Sprintf("%.0f", e.BestReactionMs),
			fmt.Sprintf("%d", e.MaxLevel),
			fmt.Sprintf("%d", e.Submissions),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true}))
}

// RenderLevels prints a level table.
func RenderLevels(w io.Writer, levels []model.Level) error {
	headers := []string{"#", "Id", "Name", "Wait (ms)", "Target (ms)", "Points"}
	rows := make([][]string, 0, len(levels))
	for i, lvl := range levels {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			lvl.ID,
			lvl.Name,
			fmt.Sprintf("%d-%d", lvl.MinWait.Milliseconds(), lvl.MaxWait.Milliseconds()),
			fmt.Sprintf("%d", lvl.Target.Milliseconds()),
			fmt.Sprintf("%d", lvl.Points),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 3: true, 4: true, 5: true}))
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
