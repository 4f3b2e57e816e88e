package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/weeklit/internal/models"
)

func (s *Store) AddAdHocTask(task models.AdHocTask) error {
	return s.UpdateAdHocTask(task)
}

func (s *Store) GetAdHocTasksForDay(day string) ([]models.AdHocTask, error) {
	rows, err := s.db.Query(`
		SELECT id, day, name, done, created_at, deleted_at
		FROM adhoc_tasks WHERE day = ? AND deleted_at IS NULL ORDER BY created_at`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.AdHocTask
	for rows.Next() {
		var t models.AdHocTask
		var createdAt string
		var deletedAt sql.NullString

		if err := rows.Scan(&t.ID, &t.Day, &t.Name, &t.Done, &createdAt, &deletedAt); err != nil {
			return nil, err
		}

		t.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for ad-hoc task %s: %w", t.ID, err)
		}
		if deletedAt.Valid {
			parsed, err := time.Parse(time.RFC3339, deletedAt.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse deleted_at for ad-hoc task %s: %w", t.ID, err)
			}
			t.DeletedAt = &parsed
		}

		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

func (s *Store) GetAllAdHocTasks() ([]models.AdHocTask, error) {
	rows, err := s.db.Query(`SELECT id, day, name, done, created_at, deleted_at FROM adhoc_tasks ORDER BY day`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.AdHocTask
	for rows.Next() {
		var t models.AdHocTask
		var createdAt string
		var deletedAt sql.NullString

		if err := rows.Scan(&t.ID, &t.Day, &t.Name, &t.Done, &createdAt, &deletedAt); err != nil {
			return nil, err
		}

		t.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for ad-hoc task %s: %w", t.ID, err)
		}
		if deletedAt.Valid {
			parsed, err := time.Parse(time.RFC3339, deletedAt.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse deleted_at for ad-hoc task %s: %w", t.ID, err)
			}
			t.DeletedAt = &parsed
		}

		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

func (s *Store) UpdateAdHocTask(task models.AdHocTask) error {
	var deletedAt sql.NullString
	if task.DeletedAt != nil {
		deletedAt = sql.NullString{String: task.DeletedAt.Format(time.RFC3339), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO adhoc_tasks (id, day, name, done, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			done = excluded.done,
			deleted_at = excluded.deleted_at`,
		task.ID, task.Day, task.Name, task.Done, task.CreatedAt.Format(time.RFC3339), deletedAt)

	return err
}

func (s *Store) DeleteAdHocTask(id string) error {
	result, err := s.db.Exec(`
		UPDATE adhoc_tasks SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().Format(time.RFC3339), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("ad-hoc task not found or already deleted")
	}

	return nil
}
