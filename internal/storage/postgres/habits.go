package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
)

const habitColumns = `id, name, description, frequency, interval_days, weekly_target,
	monthly_target, seasonal_target, active, optional, locked, deadline, created_at, archived_at, deleted_at`

func scanHabit(row interface{ Scan(...any) error }) (models.Habit, error) {
	var h models.Habit
	var frequency string
	var archivedAt, deletedAt sql.NullTime

	err := row.Scan(&h.ID, &h.Name, &h.Description, &frequency, &h.IntervalDays,
		&h.WeeklyTarget, &h.MonthlyTarget, &h.SeasonalTarget, &h.Active, &h.Optional,
		&h.Locked, &h.Deadline, &h.CreatedAt, &archivedAt, &deletedAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.Frequency = models.Frequency(frequency)
	if archivedAt.Valid {
		t := archivedAt.Time
		h.ArchivedAt = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		h.DeletedAt = &t
	}

	return h, nil
}

func (s *Store) AddHabit(habit models.Habit) error {
	return s.UpdateHabit(habit)
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT `+habitColumns+`
		FROM habits WHERE id = $1 AND deleted_at IS NULL`, id)

	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	return h, err
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT `+habitColumns+`
		FROM habits WHERE name = $1 AND deleted_at IS NULL`, name)

	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %q: %w", name, storage.ErrNotFound)
	}
	return h, err
}

func (s *Store) GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits WHERE TRUE"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	if !includeArchived {
		query += " AND archived_at IS NULL"
	}
	query += " ORDER BY created_at"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (s *Store) GetActiveHabits() ([]models.Habit, error) {
	rows, err := s.db.Query(`
		SELECT ` + habitColumns + `
		FROM habits
		WHERE active AND archived_at IS NULL AND deleted_at IS NULL
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (s *Store) UpdateHabit(habit models.Habit) error {
	var archivedAt, deletedAt sql.NullTime
	if habit.ArchivedAt != nil {
		archivedAt = sql.NullTime{Time: *habit.ArchivedAt, Valid: true}
	}
	if habit.DeletedAt != nil {
		deletedAt = sql.NullTime{Time: *habit.DeletedAt, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO habits (id, name, description, frequency, interval_days, weekly_target,
			monthly_target, seasonal_target, active, optional, locked, deadline, created_at, archived_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			frequency = EXCLUDED.frequency,
			interval_days = EXCLUDED.interval_days,
			weekly_target = EXCLUDED.weekly_target,
			monthly_target = EXCLUDED.monthly_target,
			seasonal_target = EXCLUDED.seasonal_target,
			active = EXCLUDED.active,
			optional = EXCLUDED.optional,
			locked = EXCLUDED.locked,
			deadline = EXCLUDED.deadline,
			archived_at = EXCLUDED.archived_at,
			deleted_at = EXCLUDED.deleted_at`,
		habit.ID, habit.Name, habit.Description, string(habit.Frequency), habit.IntervalDays,
		habit.WeeklyTarget, habit.MonthlyTarget, habit.SeasonalTarget, habit.Active, habit.Optional,
		habit.Locked, habit.Deadline, habit.CreatedAt, archivedAt, deletedAt)

	return err
}

func (s *Store) ArchiveHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET archived_at = $1 WHERE id = $2 AND deleted_at IS NULL AND archived_at IS NULL`,
		time.Now(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit not found or already archived/deleted")
	}

	return nil
}

func (s *Store) UnarchiveHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET archived_at = NULL WHERE id = $1 AND deleted_at IS NULL AND archived_at IS NOT NULL`,
		id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit not found or not archived")
	}

	return nil
}

func (s *Store) DeleteHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit not found or already deleted")
	}

	return nil
}

func (s *Store) RestoreHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`,
		id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit not found or not deleted")
	}

	return nil
}
