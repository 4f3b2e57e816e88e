package postgres

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
		FROM adhoc_tasks WHERE day = $1 AND deleted_at IS NULL ORDER BY created_at`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.AdHocTask
	for rows.Next() {
		var t models.AdHocTask
		var deletedAt sql.NullTime

		if err := rows.Scan(&t.ID, &t.Day, &t.Name, &t.Done, &t.CreatedAt, &deletedAt); err != nil {
			return nil, err
		}
		if deletedAt.Valid {
			t.DeletedAt = &deletedAt.Time
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
		var deletedAt sql.NullTime

		if err := rows.Scan(&t.ID, &t.Day, &t.Name, &t.Done, &t.CreatedAt, &deletedAt); err != nil {
			return nil, err
		}
		if deletedAt.Valid {
			t.DeletedAt = &deletedAt.Time
		}

		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

func (s *Store) UpdateAdHocTask(task models.AdHocTask) error {
	var deletedAt sql.NullTime
	if task.DeletedAt != nil {
		deletedAt = sql.NullTime{Time: *task.DeletedAt, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO adhoc_tasks (id, day, name, done, created_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			done = EXCLUDED.done,
			deleted_at = EXCLUDED.deleted_at`,
		task.ID, task.Day, task.Name, task.Done, task.CreatedAt, deletedAt)

	return err
}

func (s *Store) DeleteAdHocTask(id string) error {
	result, err := s.db.Exec(`
		UPDATE adhoc_tasks SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now(), id)
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
