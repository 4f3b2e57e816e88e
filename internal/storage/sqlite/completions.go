package sqlite

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
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	err := row.Scan(&c.ID, &c.HabitID, &c.Day, &c.Note, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return models.Completion{}, err
	}

	c.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Completion{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	c.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return models.Completion{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if deletedAt.Valid {
		t, err := time.Parse(time.RFC3339, deletedAt.String)
		if err != nil {
			return models.Completion{}, fmt.Errorf("failed to parse deleted_at: %w", err)
		}
		c.DeletedAt = &t
	}

	return c, nil
}

func (s *Store) AddCompletion(completion models.Completion) error {
	var deletedAt sql.NullString
	if completion.DeletedAt != nil {
		deletedAt = sql.NullString{String: completion.DeletedAt.Format(time.RFC3339), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO completions (id, habit_id, day, note, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			note = excluded.note,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`,
		completion.ID, completion.HabitID, completion.Day, completion.Note,
		completion.CreatedAt.Format(time.RFC3339), completion.UpdatedAt.Format(time.RFC3339), deletedAt)

	return err
}

func (s *Store) GetCompletion(habitID, day string) (models.Completion, error) {
	row := s.db.QueryRow(`
		SELECT `+completionColumns+`
		FROM completions WHERE habit_id = ? AND day = ? AND deleted_at IS NULL`, habitID, day)

	c, err := scanCompletion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Completion{}, fmt.Errorf("completion for habit %s on %s: %w", habitID, day, storage.ErrNotFound)
	}
	return c, err
}

func (s *Store) GetCompletionsForDay(day string) ([]models.Completion, error) {
	rows, err := s.db.Query(`
		SELECT `+completionColumns+`
		FROM completions WHERE day = ? AND deleted_at IS NULL ORDER BY created_at`, day)
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
		WHERE habit_id = ? AND day >= ? AND day <= ? AND deleted_at IS NULL
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
		WHERE habit_id = ? AND deleted_at IS NULL
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

// DeleteCompletion soft-deletes a completion (toggle off).
func (s *Store) DeleteCompletion(id string) error {
	result, err := s.db.Exec(`
		UPDATE completions SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().Format(time.RFC3339), id)
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
