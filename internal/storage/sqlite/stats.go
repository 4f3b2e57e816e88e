package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
)

const statsColumns = `day, total_tasks, completed_tasks, required_tasks, completed_required,
	day_completed, streak_day, in_first_week, completion_pct, rule, calculated_at`

func scanDayStats(row interface{ Scan(...any) error }) (models.DayStats, error) {
	var st models.DayStats
	var rule, calculatedAt string

	err := row.Scan(&st.Day, &st.TotalTasks, &st.CompletedTasks, &st.RequiredTasks,
		&st.CompletedRequired, &st.DayCompleted, &st.StreakDay, &st.InFirstWeek,
		&st.CompletionPct, &rule, &calculatedAt)
	if err != nil {
		return models.DayStats{}, err
	}

	st.Rule = models.CompletionRule(rule)
	st.CalculatedAt, err = time.Parse(time.RFC3339, calculatedAt)
	if err != nil {
		return models.DayStats{}, fmt.Errorf("failed to parse calculated_at: %w", err)
	}

	return st, nil
}

// UpsertDayStats writes the stats row for a day, replacing any existing row.
// Each day's upsert is its own atomic unit; a failed range recalculation
// leaves previously written days intact.
func (s *Store) UpsertDayStats(stats models.DayStats) error {
	_, err := s.db.Exec(`
		INSERT INTO day_stats (day, total_tasks, completed_tasks, required_tasks,
			completed_required, day_completed, streak_day, in_first_week,
			completion_pct, rule, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			total_tasks = excluded.total_tasks,
			completed_tasks = excluded.completed_tasks,
			required_tasks = excluded.required_tasks,
			completed_required = excluded.completed_required,
			day_completed = excluded.day_completed,
			streak_day = excluded.streak_day,
			in_first_week = excluded.in_first_week,
			completion_pct = excluded.completion_pct,
			rule = excluded.rule,
			calculated_at = excluded.calculated_at`,
		stats.Day, stats.TotalTasks, stats.CompletedTasks, stats.RequiredTasks,
		stats.CompletedRequired, stats.DayCompleted, stats.StreakDay, stats.InFirstWeek,
		stats.CompletionPct, string(stats.Rule), stats.CalculatedAt.Format(time.RFC3339))

	return err
}

func (s *Store) GetDayStats(day string) (models.DayStats, error) {
	row := s.db.QueryRow(`SELECT `+statsColumns+` FROM day_stats WHERE day = ?`, day)

	st, err := scanDayStats(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DayStats{}, fmt.Errorf("stats for %s: %w", day, storage.ErrNotFound)
	}
	return st, err
}

func (s *Store) GetDayStatsRange(startDay, endDay string) ([]models.DayStats, error) {
	rows, err := s.db.Query(`
		SELECT `+statsColumns+`
		FROM day_stats WHERE day >= ? AND day <= ? ORDER BY day`, startDay, endDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.DayStats
	for rows.Next() {
		st, err := scanDayStats(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}

	return stats, rows.Err()
}

func (s *Store) GetAllDayStats() ([]models.DayStats, error) {
	rows, err := s.db.Query(`SELECT ` + statsColumns + ` FROM day_stats ORDER BY day`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.DayStats
	for rows.Next() {
		st, err := scanDayStats(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}

	return stats, rows.Err()
}
