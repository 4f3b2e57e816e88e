package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
)

const completionColumns = `id, habit_id, day, note, created_at, updated_at, deleted_at`

func scanCompletion(row interface{ Scan(...any) error }) (models.Completion, error) {
	var c models.Completion
	var deletedAt sql.NullTime

	err := row.Scan(&c.ID, &c.HabitID, &c.Day, &c.Note, &c.CreatedAt, &c.UpdatedAt, &deletedAt)
	if err != nil {
		return models.Completion{}, err
	}

	if deletedAt.Valid {
		t := deletedAt.Time
		c.DeletedAt = &t
	}

	return c, nil
}

func (s *Store) AddCompletion(completion models.Completion) error {
	var deletedAt sql.NullTime
	if completion.DeletedAt != nil {
		deletedAt = sql.NullTime{Time: *completion.DeletedAt, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO completions (id, habit_id, day, note, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			note = EXCLUDED.note,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at`,
		completion.ID, completion.HabitID, completion.Day, completion.Note,
		completion.CreatedAt, completion.UpdatedAt, deletedAt)

	return err
}

func (s *Store) GetCompletion(habitID, day string) (models.Completion, error) {
	row := s.db.QueryRow(`
		SELECT `+completionColumns+`
		FROM completions WHERE habit_id = $1 AND day = $2 AND deleted_at IS NULL`, habitID, day)

	c, err := scanCompletion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Completion{}, fmt.Errorf("completion for habit %s on %s: %w", habitID, day, storage.ErrNotFound)
	}
	return c, err
}

func (s *Store) GetCompletionsForDay(day string) ([]models.Completion, error) {
	rows, err := s.db.Query(`
		SELECT `+completionColumns+`
		FROM completions WHERE day = $1 AND deleted_at IS NULL ORDER BY created_at`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []models.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}

	return completions, rows.Err()
}

func (s *Store) GetCompletionsForHabit(habitID, startDay, endDay string) ([]models.Completion, error) {
	rows, err := s.db.Query(`
		SELECT `+completionColumns+`
		FROM completions
		WHERE habit_id = $1 AND day >= $2 AND day <= $3 AND deleted_at IS NULL
		ORDER BY day`, habitID, startDay, endDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []models.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}

	return completions, rows.Err()
}

func (s *Store) GetLastCompletionDay(habitID string) (string, error) {
	var day string
	err := s.db.QueryRow(`
		SELECT day FROM completions
		WHERE habit_id = $1 AND deleted_at IS NULL
		ORDER BY day DESC LIMIT 1`, habitID).Scan(&day)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("completions for habit %s: %w", habitID, storage.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return day, nil
}

func (s *Store) GetAllCompletions() ([]models.Completion, error) {
	rows, err := s.db.Query(`SELECT ` + completionColumns + ` FROM completions ORDER BY day`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []models.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}

	return completions, rows.Err()
}

func (s *Store) DeleteCompletion(id string) error {
	result, err := s.db.Exec(`
		UPDATE completions SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("completion not found or already deleted")
	}

	return nil
}
